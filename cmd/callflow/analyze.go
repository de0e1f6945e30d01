package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"callflow/internal/analyzer"
	"callflow/internal/cferrors"
	"callflow/internal/config"
	"callflow/internal/ingest"
	"callflow/internal/report"
	"callflow/internal/rules"
	"callflow/internal/storage"
)

var (
	analyzeNoReport  bool
	analyzeNoHistory bool
	analyzeRulesFile string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a source tree and report call graph metrics",
	Long: `Analyze every matching source file under the given path (or the project
root), build the call graph, and print fan-in/fan-out, information flow
complexity, coupling, and cohesion.

Examples:
  callflow analyze
  callflow analyze ./src
  callflow analyze --no-report --no-history .
  callflow analyze --rules my-rules.toml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNoReport, "no-report", false,
		"Do not write the report file, print to stdout only")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false,
		"Do not record this run in the history database")
	analyzeCmd.Flags().StringVar(&analyzeRulesFile, "rules", "",
		"Path to a TOML rules file replacing the built-in rules")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	root, err := resolveRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot resolve project root: %v\n", err)
		os.Exit(1)
	}

	target := root
	if len(args) == 1 {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(root, target)
		}
	}

	if !ingest.IsAvailable() {
		fmt.Fprintf(os.Stderr, "Error: analysis requires CGO (tree-sitter)\n")
		fmt.Fprintf(os.Stderr, "This binary was built without CGO support.\n")
		os.Exit(1)
	}

	cfg, err := config.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	rulesPath := analyzeRulesFile
	if rulesPath == "" && cfg.RulesFile != "" {
		rulesPath = cfg.RulesFile
		if !filepath.IsAbs(rulesPath) {
			rulesPath = filepath.Join(root, rulesPath)
		}
	}
	rs, err := rules.Load(rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := analyzer.New(cfg, rs, logger).Run(context.Background(), target)
	if err != nil {
		if cferrors.CodeOf(err) == cferrors.NoSourceFiles {
			fmt.Fprintf(os.Stderr, "Error: no source files found under %s\n", target)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	writer := report.NewWriter(os.Stdout)
	if analyzeNoReport {
		if err := writer.Write(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write report: %v\n", err)
			os.Exit(1)
		}
	} else {
		path, err := writer.WriteFile(result, root, cfg.ReportFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write report: %v\n", err)
			os.Exit(1)
		}
		logger.Info("report written", map[string]interface{}{
			"path": path,
		})
	}

	if cfg.History.Enabled && !analyzeNoHistory {
		db, err := storage.Open(root, logger)
		if err != nil {
			logger.Warn("history unavailable", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		defer db.Close()
		if _, err := db.SaveRun(result); err != nil {
			logger.Warn("failed to record run", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
