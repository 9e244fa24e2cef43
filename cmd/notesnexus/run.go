package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var every time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run full pipeline cycles",
	Long: `Run executes import, classify, dispatch and archive in order. With --every
the cycle repeats on the given interval until interrupted.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := newApplication(ctx)
		if every <= 0 {
			if err := a.RunOnce(ctx); err != nil {
				logger.Error("cycle failed", "error", err)
				stop()
				os.Exit(1)
			}
			return
		}
		if err := a.RunEvery(ctx, every); err != nil {
			logger.Error("scheduler stopped", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&every, "every", 0, "Repeat the cycle on this interval (for example 30m)")
}
