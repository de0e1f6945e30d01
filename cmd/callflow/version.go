package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callflow/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print full version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
