package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/config"
	"github.com/feral-file/ff-sale-ledger/internal/ledger"
	"github.com/feral-file/ff-sale-ledger/internal/logger"
	"github.com/feral-file/ff-sale-ledger/internal/store"
)

var cmdMain = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operator tooling for the sale ledger",
	Run:   printUsageAndExit1,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.ChdirRepoRoot()
		cfg, err := config.LoadLedgerCtlConfig(flagMain.ConfigFile, flagMain.EnvPath)
		checkf(err, "load config")
		check(logger.Initialize(logger.Config{
			Debug:           cfg.Debug,
			SentryDSN:       cfg.SentryDSN,
			BreadcrumbLevel: zapcore.InfoLevel,
			Tags:            map[string]string{"service": "ledgerctl"},
		}))
		ctlConfig = cfg
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Flush(2 * time.Second)
	},
}

var flagMain struct {
	ConfigFile string
	EnvPath    string
}

// ctlConfig is loaded before any subcommand runs
var ctlConfig *config.LedgerCtlConfig

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.ConfigFile, "config", "c", "", "Path to configuration file")
	cmdMain.PersistentFlags().StringVar(&flagMain.EnvPath, "env", "config/", "Path to environment files")
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		os.Exit(1)
	}
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func checkf(err error, format string, otherArgs ...interface{}) {
	if err != nil {
		fatalf(format+": %v", append(otherArgs, err)...)
	}
}

func openDB() *gorm.DB {
	db, err := gorm.Open(postgres.Open(ctlConfig.Database.DSN()), &gorm.Config{})
	checkf(err, "connect to database")
	return db
}

func openStore() store.Store {
	return store.NewPGStore(openDB())
}

// openEngine returns the ledger engine and the owner address operator commands act as
func openEngine() (*ledger.Engine, ledger.Config) {
	cfg, err := ledger.NewConfig(ctlConfig.Ledger)
	checkf(err, "ledger config")
	return ledger.New(openStore(), adapter.NewClock(), adapter.NewJCS(), cfg), cfg
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
