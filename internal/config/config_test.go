package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: 127.0.0.1
  port: 9090
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
auth:
  api_keys: ["k1", "k2"]
ledger:
  owner: "0x0000000000000000000000000000000000000001"
  treasury: "0x0000000000000000000000000000000000000002"
  staking_apr_bps: 500
  rates:
    slot3: 10
  schedule:
    start_time: 1700000000
    slot2:
      day_offset: 3
      duration: 60
  genesis:
    main_supply: 100
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, []string{"k1", "k2"}, cfg.Auth.APIKeys)
				assert.Equal(t, "0x0000000000000000000000000000000000000001", cfg.Ledger.Owner)
				assert.Equal(t, uint64(500), cfg.Ledger.StakingAPRBps)
				assert.Equal(t, uint64(10), cfg.Ledger.Rates.Slot3)
				assert.Equal(t, uint64(3), cfg.Ledger.Rates.Slot2)
				assert.Equal(t, uint64(1), cfg.Ledger.Rates.P2SwapDen)
				assert.Equal(t, int64(1700000000), cfg.Ledger.Schedule.StartTime)
				assert.Equal(t, WindowConfig{DayOffset: 3, Duration: 60}, cfg.Ledger.Schedule.Slot2)
				assert.Equal(t, WindowConfig{DayOffset: 21, Duration: 604800}, cfg.Ledger.Schedule.Redemption)
				assert.Equal(t, uint64(100), cfg.Ledger.Genesis.MainSupply)
				assert.Equal(t, uint64(55000), cfg.Ledger.Genesis.PresaleSupply)
				assert.Equal(t, uint64(80000), cfg.Ledger.Genesis.SwapHeadroom)
			},
		},
		{
			name: "missing owner",
			configFile: `
database:
  host: localhost
`,
			expectError: true,
		},
		{
			name: "invalid port",
			configFile: `
ledger:
  owner: "0x0000000000000000000000000000000000000001"
database:
  port: not-a-number
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAPIConfig(writeConfig(t, tt.configFile), t.TempDir())
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadEventRelayConfig(t *testing.T) {
	cfg, err := LoadEventRelayConfig(writeConfig(t, `
database:
  host: localhost
nats:
  url: "nats://localhost:4222"
relay:
  batch_size: 25
`), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "LEDGER_EVENTS", cfg.NATS.StreamName)
	assert.Equal(t, "ledger.events", cfg.NATS.SubjectPrefix)
	assert.Equal(t, 10, cfg.NATS.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
	assert.Equal(t, "event-relay", cfg.NATS.ConnectionName)
	assert.Equal(t, 25, cfg.Relay.BatchSize)
	assert.Equal(t, time.Second, cfg.Relay.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Relay.MaxElapsedTime)
	assert.Equal(t, 5*time.Minute, cfg.Audit.Interval)
	assert.Equal(t, 4, cfg.Audit.PoolSize)
}

func TestLoadLedgerCtlConfig(t *testing.T) {
	cfg, err := LoadLedgerCtlConfig(writeConfig(t, `
database:
  host: db
ledger:
  owner: "0x0000000000000000000000000000000000000001"
`), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "ledgerctl", cfg.NATS.ConnectionName)
	assert.Equal(t, uint64(1200), cfg.Ledger.StakingAPRBps)
	assert.Equal(t, uint64(4), cfg.Ledger.Rates.Slot3)
	assert.Equal(t, uint64(5000), cfg.Ledger.Genesis.RewardReserve)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "ledger",
		Password: "secret",
		DBName:   "sale",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=ledger password=secret dbname=sale sslmode=disable", cfg.DSN())
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	envDir := t.TempDir()

	// godotenv.Overload sets process environment variables; viper reads them with the FF_SALE_LEDGER_ prefix
	envContent := `FF_SALE_LEDGER_DEBUG=true
FF_SALE_LEDGER_DATABASE_HOST=env-host
FF_SALE_LEDGER_DATABASE_PORT=6543
FF_SALE_LEDGER_LEDGER_STAKING_APR_BPS=800
`
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(envContent), 0600))
	t.Cleanup(func() {
		for _, key := range []string{
			"FF_SALE_LEDGER_DEBUG",
			"FF_SALE_LEDGER_DATABASE_HOST",
			"FF_SALE_LEDGER_DATABASE_PORT",
			"FF_SALE_LEDGER_LEDGER_STAKING_APR_BPS",
		} {
			_ = os.Unsetenv(key)
		}
	})

	configPath := writeConfig(t, `
debug: false
database:
  host: file-host
  port: 5432
ledger:
  owner: "0x0000000000000000000000000000000000000001"
`)

	cfg, err := LoadAPIConfig(configPath, envDir)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, uint64(800), cfg.Ledger.StakingAPRBps)
}
