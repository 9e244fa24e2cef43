package main

import (
	"github.com/spf13/cobra"

	"NotesNexus/internal/app"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Mirror records from the document store into the ledger",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPass("import", (*app.Application).Import)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
