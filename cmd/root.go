package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-triage/internal/config"
	"github.com/telhawk-systems/telhawk-triage/internal/logging"
)

var (
	cfgFile   string
	cfg       *config.Config
	cfgErr    error
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "TelHawk log triage",
	Long: `triage ranks suspicious activity found in Windows event logs and DNS query logs.

It counts allowlisted Windows event IDs, flags DNS names with unusual
top-level domains or unusual length, and merges both into a single
top-N table and bar chart.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./triage.yaml or ~/.triage/triage.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")
}

func initConfig() {
	cfg, cfgErr = config.Load(cfgFile)
}

// loadedConfig returns the configuration with persistent flag overrides applied.
func loadedConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func newLogger(c *config.Config) *logging.Logger {
	logger := logging.New(logging.ParseLevel(c.Logging.Level), c.Logging.Format)
	logging.SetDefault(logger)
	return logger
}
