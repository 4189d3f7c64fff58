// Command tracker-cli prints reports from the tracker database and writes
// exports and charts to files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracker/internal/backend"
	"tracker/internal/cli"
	"tracker/internal/log"
	"tracker/internal/services"
)

// app holds what the subcommands share once the store is open.
type app struct {
	logger    *log.Logger
	backend   *backend.BackendResult
	budgets   *services.BudgetService
	analytics *services.AnalyticsService
}

var current app

var rootCmd = &cobra.Command{
	Use:   "tracker-cli",
	Short: "Query the personal finance tracker",
	Long: `Read-only reports over the tracker database configured by the same
environment as the server (DATA_BACKEND, SQLITE_DB_PATH, LOG_LEVEL).

Examples:
  tracker-cli report
  tracker-cli search --category food --from 2024-01-01
  tracker-cli export --format xml --out transactions.xml
  tracker-cli chart --kind savings --out savings.png
  tracker-cli budgets --month 2024-03`,
	SilenceUsage:      true,
	PersistentPreRunE: openApp,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// openApp logs to stderr so exports written to stdout stay clean.
func openApp(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Output = cmd.ErrOrStderr()
	logger := log.New(lc)

	res, err := cli.OpenStore(cmd.Context(), logger, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	budgets := services.NewBudgetService(res.Store, logger)
	current = app{
		logger:    logger,
		backend:   res,
		budgets:   budgets,
		analytics: services.NewAnalyticsService(res.Store, budgets, logger),
	}
	return nil
}

func closeApp() error {
	if current.backend == nil {
		return nil
	}
	err := current.backend.Cleanup()
	current = app{}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_ = closeApp()
		os.Exit(1)
	}
}
