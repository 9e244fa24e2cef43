package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NotesNexus/internal/config"
	"NotesNexus/internal/infrastructure/board"
	"NotesNexus/internal/infrastructure/llm"
	"NotesNexus/internal/infrastructure/notion"
	"NotesNexus/internal/infrastructure/scheduler"
	"NotesNexus/internal/infrastructure/sheets"
	"NotesNexus/internal/logging"
	"NotesNexus/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. The browser is not part of the
// wiring here; Dispatch starts one per pass and shuts it down afterwards.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	records, err := sheets.NewStore(ctx, cfg.Sheets, cfg.Sheets.RecordSheet)
	if err != nil {
		return nil, fmt.Errorf("open record sheet: %w", err)
	}
	categories, err := sheets.NewStore(ctx, cfg.Sheets, cfg.Sheets.CategorySheet)
	if err != nil {
		return nil, fmt.Errorf("open category sheet: %w", err)
	}

	retryLogger := baseLogger.With("component", "sheets")
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:         notion.NewClient(cfg.Notion),
		Records:        sheets.NewRetryingStore(records, cfg.Sheets.Retry.MaxAttempts, cfg.Sheets.Retry.Delay(), retryLogger),
		Categories:     sheets.NewRetryingStore(categories, cfg.Sheets.Retry.MaxAttempts, cfg.Sheets.Retry.Delay(), retryLogger),
		Chat:           llm.NewClient(cfg.DeepSeek),
		WriteDelay:     cfg.Sheets.WriteDelay(),
		BatchBudget:    cfg.Batch.CharBudget,
		PromptOverhead: cfg.Batch.PromptOverhead,
		Logger:         baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}, nil
}

// Import runs the record import pass.
func (a *Application) Import(ctx context.Context) error {
	_, err := a.pipeline.Import(ctx)
	return err
}

// Classify runs the classification pass.
func (a *Application) Classify(ctx context.Context) error {
	_, err := a.pipeline.Classify(ctx)
	return err
}

// Dispatch runs the board delivery pass with a browser scoped to the pass.
func (a *Application) Dispatch(ctx context.Context) error {
	b, err := board.New(a.cfg.Board, a.logger.With("component", "board"))
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			a.logger.Warn("browser shutdown", "error", cerr)
		}
	}()

	_, err = a.pipeline.Dispatch(ctx, b)
	return err
}

// Archive runs the source archiving pass.
func (a *Application) Archive(ctx context.Context) error {
	_, err := a.pipeline.Archive(ctx)
	return err
}

// RunOnce executes all four passes in pipeline order. A failed pass stops the
// cycle; the ledger keeps unfinished rows for the next one.
func (a *Application) RunOnce(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"import", a.Import},
		{"classify", a.Classify},
		{"dispatch", a.Dispatch},
		{"archive", a.Archive},
	}
	for _, step := range steps {
		a.logger.Info("pass starting", "pass", step.name)
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("%s pass: %w", step.name, err)
		}
	}
	return nil
}

// RunEvery repeats full cycles on a fixed interval until ctx is cancelled.
// A failed cycle is logged and the next one still runs.
func (a *Application) RunEvery(ctx context.Context, every time.Duration) error {
	sched := scheduler.NewIntervalScheduler(every)
	if err := sched.Start(ctx, func() {
		if err := a.RunOnce(ctx); err != nil {
			a.logger.Error("cycle failed", "error", err)
		}
	}); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}
