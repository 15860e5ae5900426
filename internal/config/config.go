// Package config loads triage settings from flags, environment, config files and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// Config represents the complete triage configuration
type Config struct {
	Windows    SourceConfig     `mapstructure:"windows" yaml:"windows"`
	DNS        SourceConfig     `mapstructure:"dns" yaml:"dns"`
	Heuristics HeuristicsConfig `mapstructure:"heuristics" yaml:"heuristics"`
	Ranking    RankingConfig    `mapstructure:"ranking" yaml:"ranking"`
	Report     ReportConfig     `mapstructure:"report" yaml:"report"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Generator  GeneratorConfig  `mapstructure:"generator" yaml:"generator"`
}

// SourceConfig describes one log file and the field the analyzer reads
type SourceConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Field    string `mapstructure:"field" yaml:"field"`
	Required bool   `mapstructure:"required" yaml:"required"`
}

// HeuristicsConfig holds the fixed detection constants
type HeuristicsConfig struct {
	SuspiciousEventIDs []string `mapstructure:"suspicious_event_ids" yaml:"suspicious_event_ids"`
	SuspiciousTLDs     []string `mapstructure:"suspicious_tlds" yaml:"suspicious_tlds"`
	LongNameThreshold  int      `mapstructure:"long_name_threshold" yaml:"long_name_threshold"`
	TopN               int      `mapstructure:"top_n" yaml:"top_n"`
	FrequentTopN       int      `mapstructure:"frequent_top_n" yaml:"frequent_top_n"`
}

// RankingConfig holds cross-source ranking settings
type RankingConfig struct {
	TopN int `mapstructure:"top_n" yaml:"top_n"`
}

// ReportConfig holds report rendering settings
type ReportConfig struct {
	Output    string  `mapstructure:"output" yaml:"output"` // table, json or yaml
	ChartPath string  `mapstructure:"chart_path" yaml:"chart_path"`
	ChartDPI  float64 `mapstructure:"chart_dpi" yaml:"chart_dpi"`
	Title     string  `mapstructure:"title" yaml:"title"`
}

// MetricsConfig holds metrics export settings
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// GeneratorConfig holds sample log generation settings
type GeneratorConfig struct {
	WindowsCount  int     `mapstructure:"windows_count" yaml:"windows_count"`
	DNSCount      int     `mapstructure:"dns_count" yaml:"dns_count"`
	SuspiciousTLD float64 `mapstructure:"suspicious_tld_ratio" yaml:"suspicious_tld_ratio"`
	LongName      float64 `mapstructure:"long_name_ratio" yaml:"long_name_ratio"`
	Seed          int64   `mapstructure:"seed" yaml:"seed"`
}

var validOutputs = map[string]bool{"table": true, "json": true, "yaml": true}

// Load loads configuration with cascade: flags > env > ./triage.yaml > ~/.triage/triage.yaml > defaults.
// A .env file in the working directory is read into the environment first.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("triage")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TRIAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".triage"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Sources
	v.SetDefault("windows.path", "botsv1.json")
	v.SetDefault("windows.field", "EventCode")
	v.SetDefault("windows.required", true)
	v.SetDefault("dns.path", "")
	v.SetDefault("dns.field", "query")
	v.SetDefault("dns.required", false)

	// Heuristics
	v.SetDefault("heuristics.suspicious_event_ids", models.DefaultSuspiciousEventIDs())
	v.SetDefault("heuristics.suspicious_tlds", models.DefaultSuspiciousTLDs())
	v.SetDefault("heuristics.long_name_threshold", models.DefaultLongNameThreshold)
	v.SetDefault("heuristics.top_n", models.DefaultHeuristicTopN)
	v.SetDefault("heuristics.frequent_top_n", models.DefaultFrequentTopN)

	// Ranking
	v.SetDefault("ranking.top_n", models.DefaultRankingTopN)

	// Report
	v.SetDefault("report.output", "table")
	v.SetDefault("report.chart_path", "top10_suspicious.png")
	v.SetDefault("report.chart_dpi", 150)
	v.SetDefault("report.title", "Top 10 suspicious events")

	// Metrics
	v.SetDefault("metrics.textfile", "")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Generator
	v.SetDefault("generator.windows_count", 500)
	v.SetDefault("generator.dns_count", 300)
	v.SetDefault("generator.suspicious_tld_ratio", 0.15)
	v.SetDefault("generator.long_name_ratio", 0.05)
	v.SetDefault("generator.seed", 0)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Windows.Field == "" {
		return fmt.Errorf("windows.field is required")
	}
	if c.DNS.Field == "" {
		return fmt.Errorf("dns.field is required")
	}
	if c.Heuristics.LongNameThreshold < 0 {
		return fmt.Errorf("heuristics.long_name_threshold must not be negative")
	}
	if c.Heuristics.TopN <= 0 {
		return fmt.Errorf("heuristics.top_n must be greater than 0")
	}
	if c.Heuristics.FrequentTopN < 0 {
		return fmt.Errorf("heuristics.frequent_top_n must not be negative")
	}
	for _, suffix := range c.Heuristics.SuspiciousTLDs {
		if strings.TrimSpace(suffix) == "" {
			return fmt.Errorf("heuristics.suspicious_tlds must not contain empty suffixes")
		}
	}
	if c.Ranking.TopN <= 0 {
		return fmt.Errorf("ranking.top_n must be greater than 0")
	}
	if !validOutputs[c.Report.Output] {
		return fmt.Errorf("report.output must be one of table, json, yaml (got %q)", c.Report.Output)
	}
	if c.Report.ChartPath != "" && c.Report.ChartDPI <= 0 {
		return fmt.Errorf("report.chart_dpi must be greater than 0")
	}
	if c.Generator.SuspiciousTLD < 0 || c.Generator.LongName < 0 || c.Generator.SuspiciousTLD+c.Generator.LongName > 1 {
		return fmt.Errorf("generator ratios must be non-negative and sum to at most 1")
	}
	return nil
}

// Warnings lists settings that are valid but probably not what was meant.
func (c *Config) Warnings() []string {
	var warnings []string
	for _, suffix := range c.Heuristics.SuspiciousTLDs {
		if !strings.HasPrefix(suffix, ".") {
			warnings = append(warnings, fmt.Sprintf("suspicious TLD %q has no leading dot and matches any name ending in %q", suffix, suffix))
		}
	}
	if c.Windows.Path != "" && c.Windows.Path == c.DNS.Path {
		warnings = append(warnings, fmt.Sprintf("windows and dns read the same file %s", c.Windows.Path))
	}
	return warnings
}
