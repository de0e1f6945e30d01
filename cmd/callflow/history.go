package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"callflow/internal/config"
	"callflow/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded analysis runs",
	Long: `Show past analysis runs from the local history database, newest first.

Examples:
  callflow history
  callflow history --limit 5`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	root, err := resolveRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot resolve project root: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	db, err := storage.Open(root, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open history database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"When", "Files", "Functions", "Calls", "Top Function", "IFC", "Avg Cohesion"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	for _, r := range runs {
		table.Append([]string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.Files),
			strconv.Itoa(r.Functions),
			strconv.Itoa(r.Calls),
			r.TopFunction,
			strconv.Itoa(r.TopScore),
			fmt.Sprintf("%.2f", r.AvgCohesion),
		})
	}
	table.Render()
}
