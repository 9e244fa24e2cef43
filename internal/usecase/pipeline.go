package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NotesNexus/internal/classify"
	"NotesNexus/internal/domain"
	"NotesNexus/internal/ledger"
	"NotesNexus/internal/ports"
)

// PipelineDeps wires all driven adapters into the pipeline passes.
type PipelineDeps struct {
	Source     ports.RecordSource
	Records    ports.TabularStore // record worksheet
	Categories ports.TabularStore // category side table
	Chat       ports.ChatClient
	WriteDelay time.Duration
	// BatchBudget and PromptOverhead together bound one classification
	// request; the assembler sees BatchBudget minus PromptOverhead.
	BatchBudget    int
	PromptOverhead int
	Logger         *slog.Logger
}

// Pipeline executes the four idempotent ledger passes. Each pass is a full
// sweep over the ledger; the ledger itself is the handoff between passes, so
// repeated or overlapping invocations are safe.
type Pipeline struct {
	source   ports.RecordSource
	chat     ports.ChatClient
	importer *ledger.Importer
	registry *ledger.Registry
	writer   *ledger.Writer
	scanner  *ledger.Scanner
	budget   int
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:   deps.Source,
		chat:     deps.Chat,
		importer: ledger.NewImporter(deps.Records, deps.WriteDelay, logger.With("component", "importer")),
		registry: ledger.NewRegistry(deps.Categories),
		writer:   ledger.NewWriter(deps.Records, logger.With("component", "writer")),
		scanner:  ledger.NewScanner(deps.Records),
		budget:   deps.BatchBudget - deps.PromptOverhead,
		logger:   logger,
	}
}

// Import reconciles the full record set from the document store into the
// ledger: new → to_analyse.
func (p *Pipeline) Import(ctx context.Context) (ledger.ImportStats, error) {
	records, err := p.source.FetchAll(ctx)
	if err != nil {
		return ledger.ImportStats{}, fmt.Errorf("fetch records: %w", err)
	}
	p.logger.Info("records fetched", "count", len(records))

	stats, err := p.importer.ImportAll(ctx, records)
	if err != nil {
		return stats, err
	}
	p.logger.Info("import pass complete",
		"inserted", stats.Inserted, "updated", stats.Updated, "skipped", stats.Skipped)
	return stats, nil
}

// Classify sends pending rows to the model in budget-bounded batches and
// writes the results back: to_analyse → classified. Unparseable batches are
// skipped without aborting the remaining ones.
func (p *Pipeline) Classify(ctx context.Context) (int, error) {
	categories, err := p.registry.Categories(ctx)
	if err != nil {
		return 0, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) == 0 {
		return 0, fmt.Errorf("no categories are marked for inclusion")
	}

	pending, err := p.scanner.PendingClassification(ctx)
	if err != nil {
		return 0, err
	}
	p.logger.Info("rows pending classification", "count", len(pending))
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]string, len(pending))
	texts := make([]string, len(pending))
	for i, item := range pending {
		ids[i] = item.ID
		texts[i] = item.Content
	}

	if p.budget <= 0 {
		return 0, fmt.Errorf("batch budget %d leaves no room after prompt overhead", p.budget)
	}
	batches, err := ledger.Assemble(ids, texts, p.budget)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i, batch := range batches {
		n, err := p.classifyBatch(ctx, i+1, batch, categories)
		if err != nil {
			return applied, err
		}
		applied += n
		p.logger.Info("batch applied", "batch", i+1, "batches", len(batches), "rows", n)
	}
	return applied, nil
}

func (p *Pipeline) classifyBatch(ctx context.Context, seq int, batch ledger.Batch, categories []domain.Category) (int, error) {
	raw, err := p.chat.Submit(ctx, classify.SystemInstructions, classify.BuildUserPrompt(batch.IDs, batch.Texts, categories))
	if err != nil {
		return 0, fmt.Errorf("submit batch %d: %w", seq, err)
	}

	results, err := classify.ParseResults(raw)
	if err != nil {
		var rawErr *classify.RawResponseError
		if errors.As(err, &rawErr) {
			p.logger.Warn("skipping unparseable batch", "batch", seq, "response", rawErr.Raw)
			return 0, nil
		}
		return 0, err
	}

	for i := range results {
		results[i].Category = classify.NormalizeCategory(results[i].Category, categories)
	}
	return p.writer.Apply(ctx, results)
}

// Dispatch delivers rows committed to dispatch to the visual board:
// ready_to_dispatch → dispatched. A failed delivery leaves the row for the
// next pass; only confirmed deliveries advance the flag.
func (p *Pipeline) Dispatch(ctx context.Context, board ports.Dispatcher) (int, error) {
	items, err := p.scanner.PendingDispatch(ctx)
	if err != nil {
		return 0, err
	}
	p.logger.Info("rows pending dispatch", "count", len(items))

	done := 0
	for _, item := range items {
		ok, err := board.Dispatch(ctx, item.Content, item.Link)
		if err != nil {
			p.logger.Warn("dispatch failed", "row", item.Row, "error", err)
			continue
		}
		if !ok {
			p.logger.Warn("dispatch not accepted", "row", item.Row)
			continue
		}
		if err := p.scanner.MarkDispatched(ctx, item.Row); err != nil {
			return done, err
		}
		done++
		p.logger.Info("row dispatched", "row", item.Row)
	}
	return done, nil
}

// Archive archives dispatched rows at the document store:
// dispatched → source_archived.
func (p *Pipeline) Archive(ctx context.Context) (int, error) {
	items, err := p.scanner.PendingArchive(ctx)
	if err != nil {
		return 0, err
	}
	p.logger.Info("rows pending archive", "count", len(items))

	done := 0
	for _, item := range items {
		ok, err := p.source.Archive(ctx, item.ID)
		if err != nil {
			p.logger.Warn("archive failed", "row", item.Row, "id", item.ID, "error", err)
			continue
		}
		if !ok {
			p.logger.Warn("archive not accepted", "row", item.Row, "id", item.ID)
			continue
		}
		if err := p.scanner.MarkArchived(ctx, item.Row); err != nil {
			return done, err
		}
		done++
		p.logger.Info("record archived", "row", item.Row, "id", item.ID)
	}
	return done, nil
}
