// auditctl drives the remote KPI audit engine from the terminal: submit
// audits, watch their progress, cancel them, and export finished reports.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"kpiauditor/internal/client"
	"kpiauditor/internal/config"
	"kpiauditor/internal/controller"
	"kpiauditor/internal/domain"
	"kpiauditor/internal/logger"
)

var (
	configPath string
	engineURL  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "auditctl",
	Short: "Client for the college KPI audit engine",
	Long: `auditctl tracks audit jobs on a remote KPI extraction engine.

One audit runs at a time: submitting a new audit replaces the tracked one.
Finished audits can be exported as CSV or JSON reports.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ./configs, cwd)")
	rootCmd.PersistentFlags().StringVar(&engineURL, "engine-url", "", "Engine base URL (overrides config)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfig resolves configuration with the --engine-url flag applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if engineURL != "" {
		cfg.Engine.BaseURL = engineURL
	}
	return cfg, nil
}

// newClient builds the engine client from resolved configuration.
func newClient() (*client.EngineClient, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return client.NewEngineClient(&client.Config{
		BaseURL: cfg.Engine.BaseURL,
		Timeout: cfg.Engine.Timeout,
	}), cfg, nil
}

// newController builds a controller whose hooks render progress to stdout
// and report the terminal snapshot through onTerminal.
func newController(ec *client.EngineClient, interval time.Duration, onTerminal func(*domain.AuditJob)) *controller.Controller {
	return controller.New(ec, interval, controller.Hooks{
		OnUpdate: func(job *domain.AuditJob) {
			printProgress(job)
		},
		OnTerminal: onTerminal,
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		},
	})
}

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
