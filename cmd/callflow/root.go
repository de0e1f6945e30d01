package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"callflow/internal/config"
	"callflow/internal/logging"
	"callflow/internal/version"
)

var (
	// rootFlag is the CLI --root flag value
	rootFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
	// logFormatFlag overrides the configured log format
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "callflow",
	Short: "callflow - call graph and information flow metrics",
	Long: `callflow statically analyzes JavaScript and TypeScript sources, builds a
call graph with resolved anonymous-function identities, and reports fan-in,
fan-out, information-flow complexity, coupling, and cohesion per module.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("callflow version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "",
		"Project root to analyze (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json")
}

// resolveRoot determines the project root from the CLI flag or the working
// directory, as an absolute path.
func resolveRoot() (string, error) {
	root := rootFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	return filepath.Abs(root)
}

// newLogger builds a logger from the loaded config with CLI flag overrides.
// Precedence: CLI flag > config file > defaults.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := cfg.Logging.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(format),
		Level:  logging.LogLevel(level),
	})
}
