package main

import (
	"github.com/spf13/cobra"

	"NotesNexus/internal/app"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Paste approved notes onto the visual board",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPass("dispatch", (*app.Application).Dispatch)
	},
}

func init() {
	rootCmd.AddCommand(dispatchCmd)
}
