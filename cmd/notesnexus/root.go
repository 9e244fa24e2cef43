package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"NotesNexus/internal/app"
	"NotesNexus/internal/config"
	"NotesNexus/internal/logging"
)

var (
	verbose bool
	cfg     config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "notesnexus",
	Short: "Moves quick notes from the document store through classification to the visual board",
	Long: `NotesNexus mirrors notes from a document store into a spreadsheet ledger,
classifies them in batches with a language model, pastes approved notes onto a
visual board, and archives delivered sources. Each subcommand runs one pass;
run executes full cycles.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger = logging.New(level)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func newApplication(ctx context.Context) *app.Application {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	return a
}

// runPass wires the application and executes one pipeline pass.
func runPass(name string, pass func(*app.Application, context.Context) error) {
	ctx := context.Background()
	a := newApplication(ctx)
	if err := pass(a, ctx); err != nil {
		logger.Error("pass failed", "pass", name, "error", err)
		os.Exit(1)
	}
}
