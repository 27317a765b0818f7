package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds

	// CORSOrigins restricts cross-origin requests; empty allows every origin
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// RatesConfig holds the presale and swap exchange rates
type RatesConfig struct {
	Slot3     uint64 `mapstructure:"slot3"` // presale units per stablecoin unit
	Slot2     uint64 `mapstructure:"slot2"`
	Slot1     uint64 `mapstructure:"slot1"`
	P2SwapNum uint64 `mapstructure:"p2swap_num"` // main units per barracks unit, as a fraction
	P2SwapDen uint64 `mapstructure:"p2swap_den"`
}

// WindowConfig holds one sale window
type WindowConfig struct {
	DayOffset uint64 `mapstructure:"day_offset"`
	Duration  uint64 `mapstructure:"duration"` // in seconds
}

// ScheduleConfig holds the sale schedule written at genesis
type ScheduleConfig struct {
	StartTime  int64        `mapstructure:"start_time"` // unix seconds, 0 = not scheduled
	Slot3      WindowConfig `mapstructure:"slot3"`
	Slot2      WindowConfig `mapstructure:"slot2"`
	Slot1      WindowConfig `mapstructure:"slot1"`
	Redemption WindowConfig `mapstructure:"redemption"`
	P2Swap     WindowConfig `mapstructure:"p2swap"`
}

// GenesisConfig holds initial supplies, in whole tokens
type GenesisConfig struct {
	MainSupply       uint64 `mapstructure:"main_supply"`
	PresaleSupply    uint64 `mapstructure:"presale_supply"`
	BarracksSupply   uint64 `mapstructure:"barracks_supply"`
	StablecoinSupply uint64 `mapstructure:"stablecoin_supply"`
	SwapHeadroom     uint64 `mapstructure:"swap_headroom"`  // treasury barracks allowance to the sale address
	RewardReserve    uint64 `mapstructure:"reward_reserve"` // main tokens moved from the owner to the reward reserve
}

// LedgerConfig holds the ledger roles, rates and genesis parameters.
// System addresses left empty are derived deterministically.
type LedgerConfig struct {
	Owner         string         `mapstructure:"owner"`
	Treasury      string         `mapstructure:"treasury"`
	SaleAddress   string         `mapstructure:"sale_address"`
	StakingPool   string         `mapstructure:"staking_pool"`
	RewardReserve string         `mapstructure:"reward_reserve"`
	SwapPool      string         `mapstructure:"swap_pool"`
	StakingAPRBps uint64         `mapstructure:"staking_apr_bps"`
	Rates         RatesConfig    `mapstructure:"rates"`
	Schedule      ScheduleConfig `mapstructure:"schedule"`
	Genesis       GenesisConfig  `mapstructure:"genesis"`
}

// RelayConfig holds event relay configuration
type RelayConfig struct {
	BatchSize      int           `mapstructure:"batch_size"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	MaxElapsedTime time.Duration `mapstructure:"max_elapsed_time"` // publish retry budget per event
}

// AuditConfig holds conservation audit configuration
type AuditConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	PoolSize int           `mapstructure:"pool_size"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	Auth       AuthConfig     `mapstructure:"auth"`
	Ledger     LedgerConfig   `mapstructure:"ledger"`
}

// EventRelayConfig holds configuration for event-relay
type EventRelayConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Relay      RelayConfig    `mapstructure:"relay"`
	Audit      AuditConfig    `mapstructure:"audit"`
}

// LedgerCtlConfig holds configuration for ledgerctl
type LedgerCtlConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Ledger     LedgerConfig   `mapstructure:"ledger"`
	Audit      AuditConfig    `mapstructure:"audit"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	setDatabaseDefaults(v)
	setLedgerDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Ledger.Owner == "" {
		return nil, errors.New("ledger.owner is required")
	}

	return &config, nil
}

// LoadEventRelayConfig loads configuration for event-relay
func LoadEventRelayConfig(configFile string, envPath string) (*EventRelayConfig, error) {
	v := configureViper("event-relay", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("nats.connection_name", "event-relay")
	v.SetDefault("relay.batch_size", 100)
	v.SetDefault("relay.poll_interval", "1s")
	v.SetDefault("relay.max_elapsed_time", "30s")
	v.SetDefault("audit.interval", "5m")
	v.SetDefault("audit.pool_size", 4)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config EventRelayConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadLedgerCtlConfig loads configuration for ledgerctl
func LoadLedgerCtlConfig(configFile string, envPath string) (*LedgerCtlConfig, error) {
	v := configureViper("ledgerctl", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	setNATSDefaults(v)
	setLedgerDefaults(v)
	v.SetDefault("nats.connection_name", "ledgerctl")
	v.SetDefault("audit.pool_size", 4)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config LedgerCtlConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "LEDGER_EVENTS")
	v.SetDefault("nats.subject_prefix", "ledger.events")
	v.SetDefault("nats.max_age", "720h")
}

func setLedgerDefaults(v *viper.Viper) {
	const week = 7 * 86400

	v.SetDefault("ledger.staking_apr_bps", 1200)
	v.SetDefault("ledger.rates.slot3", 4)
	v.SetDefault("ledger.rates.slot2", 3)
	v.SetDefault("ledger.rates.slot1", 2)
	v.SetDefault("ledger.rates.p2swap_num", 1)
	v.SetDefault("ledger.rates.p2swap_den", 1)
	v.SetDefault("ledger.schedule.start_time", 0)
	v.SetDefault("ledger.schedule.slot3.day_offset", 0)
	v.SetDefault("ledger.schedule.slot3.duration", week)
	v.SetDefault("ledger.schedule.slot2.day_offset", 7)
	v.SetDefault("ledger.schedule.slot2.duration", week)
	v.SetDefault("ledger.schedule.slot1.day_offset", 14)
	v.SetDefault("ledger.schedule.slot1.duration", week)
	v.SetDefault("ledger.schedule.redemption.day_offset", 21)
	v.SetDefault("ledger.schedule.redemption.duration", week)
	v.SetDefault("ledger.schedule.p2swap.day_offset", 28)
	v.SetDefault("ledger.schedule.p2swap.duration", week)
	v.SetDefault("ledger.genesis.main_supply", 80000)
	v.SetDefault("ledger.genesis.presale_supply", 55000)
	v.SetDefault("ledger.genesis.barracks_supply", 80000)
	v.SetDefault("ledger.genesis.stablecoin_supply", 0)
	v.SetDefault("ledger.genesis.swap_headroom", 80000)
	v.SetDefault("ledger.genesis.reward_reserve", 5000)
}

// readConfig reads the config file; a missing file falls back to environment variables
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in the current directory, the service directory, then config/
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_SALE_LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.max_age",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Ledger
		"ledger.owner",
		"ledger.treasury",
		"ledger.sale_address",
		"ledger.staking_pool",
		"ledger.reward_reserve",
		"ledger.swap_pool",
		"ledger.staking_apr_bps",
		"ledger.rates.slot3",
		"ledger.rates.slot2",
		"ledger.rates.slot1",
		"ledger.rates.p2swap_num",
		"ledger.rates.p2swap_den",
		"ledger.schedule.start_time",
		"ledger.genesis.main_supply",
		"ledger.genesis.presale_supply",
		"ledger.genesis.barracks_supply",
		"ledger.genesis.stablecoin_supply",
		"ledger.genesis.swap_headroom",
		"ledger.genesis.reward_reserve",
		// Relay
		"relay.batch_size",
		"relay.poll_interval",
		"relay.max_elapsed_time",
		// Audit
		"audit.interval",
		"audit.pool_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
