package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"callflow/internal/config"
	"callflow/internal/rules"
)

var initWithRules bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration in the project root",
	Long: `Create the .callflow directory with a default config.yaml. With --rules,
also write the built-in ruleset as rules.toml so it can be edited and
referenced from the config.

Examples:
  callflow init
  callflow init --rules`,
	Args: cobra.NoArgs,
	Run:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initWithRules, "rules", false,
		"Also write the built-in ruleset as .callflow/rules.toml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	root, err := resolveRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot resolve project root: %v\n", err)
		os.Exit(1)
	}

	configPath := filepath.Join(root, config.ConfigDirName, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", configPath)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if initWithRules {
		cfg.RulesFile = filepath.Join(config.ConfigDirName, "rules.toml")
	}
	if err := cfg.Save(root); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s\n", configPath)

	if initWithRules {
		rulesPath := filepath.Join(root, config.ConfigDirName, "rules.toml")
		if err := os.WriteFile(rulesPath, rules.DefaultTOML(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write rules: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created %s\n", rulesPath)
	}
}
