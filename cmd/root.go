package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "legtrack",
	Short: "Legislation tracker ingestion and API",
	Long: `legtrack ingests legislative records (federal bills, executive
orders, state bills) from their upstream APIs into PostgreSQL and
serves a read-only query API over the normalized store.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
