package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NotesNexus/internal/domain"
	"NotesNexus/internal/ports"
)

// Importer reconciles fetched document-store records into ledger rows: an
// idempotent upsert with staleness and freeze checks. It never deletes rows;
// source deletions are reflected later through the archive stage.
type Importer struct {
	store  ports.TabularStore
	delay  time.Duration
	logger *slog.Logger
}

// NewImporter wires the record worksheet and the inter-row write delay.
func NewImporter(store ports.TabularStore, delay time.Duration, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, delay: delay, logger: logger}
}

// ImportStats summarizes one import pass.
type ImportStats struct {
	Inserted int
	Updated  int
	Skipped  int
}

var importColumns = []string{
	ColID, ColCreated, ColEdited, ColContent,
	ColToAnalyse, ColReady, ColDispatched, ColSourceArchived,
}

// ImportAll upserts every record. The source returns newest-first; rows are
// processed oldest-first so first inserts keep the natural creation order.
// A missing required column aborts the whole pass before any write.
func (im *Importer) ImportAll(ctx context.Context, records []domain.Record) (ImportStats, error) {
	cols, err := ResolveColumns(ctx, im.store, importColumns...)
	if err != nil {
		return ImportStats{}, err
	}

	var stats ImportStats
	for i := len(records) - 1; i >= 0; i-- {
		changed, err := im.importOne(ctx, cols, records[i], &stats)
		if err != nil {
			return stats, fmt.Errorf("import record %s: %w", records[i].ID, err)
		}
		if changed {
			im.pause(ctx)
		}
	}
	return stats, nil
}

// importOne reports whether it wrote anything, so the caller can pace writes.
func (im *Importer) importOne(ctx context.Context, cols Columns, rec domain.Record, stats *ImportStats) (bool, error) {
	ids, err := im.store.ReadColumn(ctx, cols.Col(ColID))
	if err != nil {
		return false, fmt.Errorf("read id column: %w", err)
	}

	row := findRow(ids, rec.ID)
	if row == 0 {
		if err := im.insert(ctx, cols, ids, rec); err != nil {
			return false, err
		}
		stats.Inserted++
		im.logger.Debug("row inserted", "id", rec.ID)
		return true, nil
	}

	updated, err := im.update(ctx, cols, row, rec)
	if err != nil {
		return false, err
	}
	if updated {
		stats.Updated++
		im.logger.Debug("row updated", "id", rec.ID, "row", row)
	} else {
		stats.Skipped++
	}
	return updated, nil
}

// insert fills the first gapped slot (a data row whose id cell is blank) or
// extends the ledger by one row. The whole row goes out in a single write.
func (im *Importer) insert(ctx context.Context, cols Columns, ids []string, rec domain.Record) error {
	values := make([]string, cols.Width())
	values[cols.Col(ColID)-1] = rec.ID
	values[cols.Col(ColCreated)-1] = formatCellTime(rec.CreatedAt)
	values[cols.Col(ColEdited)-1] = formatCellTime(rec.UpdatedAt)
	values[cols.Col(ColContent)-1] = rec.Content
	values[cols.Col(ColToAnalyse)-1] = cellTrue
	values[cols.Col(ColReady)-1] = cellFalse
	values[cols.Col(ColDispatched)-1] = cellFalse
	values[cols.Col(ColSourceArchived)-1] = cellFalse

	if slot := firstEmptySlot(ids); slot > 0 {
		if err := im.store.WriteRange(ctx, slot, 1, [][]string{values}); err != nil {
			return fmt.Errorf("fill row %d: %w", slot, err)
		}
		return nil
	}

	if err := im.store.AppendRow(ctx, values); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// update applies the staleness and freeze rules to an existing row. Rows
// already committed to dispatch are frozen against re-import, even when the
// source record is newer.
func (im *Importer) update(ctx context.Context, cols Columns, row int, rec domain.Record) (bool, error) {
	rowVals, err := im.store.ReadRow(ctx, row)
	if err != nil {
		return false, fmt.Errorf("read row %d: %w", row, err)
	}

	if ParseBool(cellAt(rowVals, cols.Col(ColReady))) {
		return false, nil
	}
	if rec.UpdatedAt.IsZero() {
		return false, nil
	}
	stored := parseCellTime(cellAt(rowVals, cols.Col(ColEdited)))
	if !stored.IsZero() && !rec.UpdatedAt.After(stored) {
		return false, nil
	}

	writes := []struct {
		col   int
		value string
	}{
		{cols.Col(ColEdited), formatCellTime(rec.UpdatedAt)},
		{cols.Col(ColContent), rec.Content},
		{cols.Col(ColToAnalyse), cellTrue},
	}
	for _, w := range writes {
		if err := im.store.WriteCell(ctx, row, w.col, w.value); err != nil {
			return false, fmt.Errorf("update row %d: %w", row, err)
		}
	}
	return true, nil
}

// pause spaces out consecutive row writes to respect the store's request
// budget; it returns early when the context ends.
func (im *Importer) pause(ctx context.Context) {
	if im.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(im.delay):
	}
}

// findRow locates the 1-based data row holding id, or 0 when absent.
// Index 0 of the column snapshot is the header cell.
func findRow(ids []string, id string) int {
	for i := 1; i < len(ids); i++ {
		if strings.TrimSpace(ids[i]) == id {
			return i + 1
		}
	}
	return 0
}

// firstEmptySlot returns the first data row whose id cell is blank, or 0
// when the column has no gaps.
func firstEmptySlot(ids []string) int {
	for i := 1; i < len(ids); i++ {
		if strings.TrimSpace(ids[i]) == "" {
			return i + 1
		}
	}
	return 0
}
