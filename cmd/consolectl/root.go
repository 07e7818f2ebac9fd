package main

import (
	"fmt"
	"os"

	"github.com/bizconsole/backend/internal/bootstrap"
	"github.com/bizconsole/backend/internal/infrastructure/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "consolectl",
	Short: "Business console server and tooling",
	Long: `consolectl runs the business console and the chores around it.

Examples:
  consolectl serve                          # Run the HTTP server
  consolectl seed --force                   # Regenerate the CRM dataset
  consolectl migrate up                     # Apply postgres migrations
  consolectl logistics list products -p search=bolt`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.Version = bootstrap.Version
}

// loadConfig reads the configuration and builds the logger
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
