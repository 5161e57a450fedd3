package main

import (
	"fmt"
	"os"

	"github.com/boddenberg/finboard-bfa/internal/config"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "finboard",
	Short: "Personal-finance dashboard backend",
	Long: "Serves dashboard data, the user profile and quick transfers over HTTP, " +
		"and runs the same operations from the command line.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "TOML config file (overrides CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
}

// loadConfig reads .env, the config file and the environment, in that order
// of increasing priority. Flags win over all of them.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	if flagConfig != "" {
		os.Setenv("CONFIG_FILE", flagConfig)
	}

	c, err := config.Load()
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		c.LogLevel = flagLogLevel
	}
	cfg = c
	return nil
}
