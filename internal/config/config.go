// Package config loads and persists the analyzer configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"callflow/internal/cferrors"
)

// ConfigDirName is the per-project directory holding config, rules, and history.
const ConfigDirName = ".callflow"

// Config represents the complete callflow configuration
type Config struct {
	Version    int      `yaml:"version" mapstructure:"version"`
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
	IgnoreDirs []string `yaml:"ignoreDirs" mapstructure:"ignoreDirs"`
	ReportFile string   `yaml:"reportFile" mapstructure:"reportFile"`
	RulesFile  string   `yaml:"rulesFile" mapstructure:"rulesFile"`

	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// HistoryConfig controls the sqlite run history
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Level  string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:    1,
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"},
		IgnoreDirs: []string{"node_modules", "build", "dist", "out", "coverage", "vendor"},
		ReportFile: "callflow-report.txt",
		RulesFile:  "",
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <root>/.callflow/config.yaml.
// A missing config file yields the defaults.
func Load(root string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(root, ConfigDirName))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, cferrors.New(cferrors.ConfigInvalid, "failed to read config", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, cferrors.New(cferrors.ConfigInvalid, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to <root>/.callflow/config.yaml
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644)
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return cferrors.New(cferrors.ConfigInvalid, "extensions list is empty", nil)
	}
	for _, ext := range c.Extensions {
		if ext == "" || ext[0] != '.' {
			return cferrors.New(cferrors.ConfigInvalid, "extension must start with a dot: "+ext, nil)
		}
	}
	return nil
}
