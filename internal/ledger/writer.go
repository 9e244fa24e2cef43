package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NotesNexus/internal/domain"
	"NotesNexus/internal/ports"
)

// TagDelimiter joins ai_tags for storage in a single cell.
const TagDelimiter = ", "

// Writer maps classification results back onto ledger rows by id and clears
// their to_analyse flag, advancing them toward dispatch.
type Writer struct {
	store  ports.TabularStore
	logger *slog.Logger
}

// NewWriter wires the record worksheet.
func NewWriter(store ports.TabularStore, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{store: store, logger: logger}
}

var writerColumns = []string{
	ColID, ColToAnalyse,
	ColAICategory, ColAITags, ColHasSuggestion, ColSuggestion,
}

// Apply writes each result onto its row: the four ai_* cells in one combined
// range write, then to_analyse=FALSE in a second write (that column is not
// adjacent to the others). Results referencing unknown ids are logged and
// skipped. Returns the number of rows written.
func (w *Writer) Apply(ctx context.Context, results []domain.ClassificationResult) (int, error) {
	cols, err := ResolveColumns(ctx, w.store, writerColumns...)
	if err != nil {
		return 0, err
	}

	ids, err := w.store.ReadColumn(ctx, cols.Col(ColID))
	if err != nil {
		return 0, fmt.Errorf("read id column: %w", err)
	}

	applied := 0
	for _, res := range results {
		row := findRow(ids, res.PageID)
		if row == 0 {
			w.logger.Warn("classification result references unknown row", "id", res.PageID)
			continue
		}
		if err := w.applyOne(ctx, cols, row, res); err != nil {
			return applied, fmt.Errorf("apply result for %s: %w", res.PageID, err)
		}
		applied++
	}
	return applied, nil
}

func (w *Writer) applyOne(ctx context.Context, cols Columns, row int, res domain.ClassificationResult) error {
	cells := map[int]string{
		cols.Col(ColAICategory):    res.Category,
		cols.Col(ColAITags):        strings.Join(res.Tags, TagDelimiter),
		cols.Col(ColHasSuggestion): FormatBool(res.HasLexicalSuggestion),
		cols.Col(ColSuggestion):    res.LexicalSuggestion,
	}

	if err := w.writeCells(ctx, row, cells); err != nil {
		return err
	}
	return w.store.WriteCell(ctx, row, cols.Col(ColToAnalyse), cellFalse)
}

// writeCells emits one range write when the target columns are contiguous,
// falling back to per-cell writes when the sheet lays them out with gaps.
func (w *Writer) writeCells(ctx context.Context, row int, cells map[int]string) error {
	lo, hi := 0, 0
	for col := range cells {
		if lo == 0 || col < lo {
			lo = col
		}
		if col > hi {
			hi = col
		}
	}

	if hi-lo+1 == len(cells) {
		values := make([]string, hi-lo+1)
		for col, v := range cells {
			values[col-lo] = v
		}
		return w.store.WriteRange(ctx, row, lo, [][]string{values})
	}

	for col, v := range cells {
		if err := w.store.WriteCell(ctx, row, col, v); err != nil {
			return err
		}
	}
	return nil
}
