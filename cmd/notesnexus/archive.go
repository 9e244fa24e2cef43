package main

import (
	"github.com/spf13/cobra"

	"NotesNexus/internal/app"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive dispatched records at the document store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPass("archive", (*app.Application).Archive)
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}
