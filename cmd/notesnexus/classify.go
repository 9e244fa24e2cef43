package main

import (
	"github.com/spf13/cobra"

	"NotesNexus/internal/app"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify pending ledger rows with the language model",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPass("classify", (*app.Application).Classify)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
