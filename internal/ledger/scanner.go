package ledger

import (
	"context"
	"fmt"
	"strings"

	"NotesNexus/internal/ports"
)

// Scanner selects ledger rows ready for the next pipeline stage. Each scan
// takes one bulk snapshot; flags advance only after the stage's side effect
// succeeded, so a failed row simply reappears on the next pass.
type Scanner struct {
	store ports.TabularStore
}

// NewScanner wires the record worksheet.
func NewScanner(store ports.TabularStore) *Scanner {
	return &Scanner{store: store}
}

// PendingItem is a row awaiting classification.
type PendingItem struct {
	Row     int
	ID      string
	Content string
}

// DispatchItem is a row awaiting delivery to the visual board.
type DispatchItem struct {
	Row     int
	Content string
	Link    string
}

// ArchiveItem is a row whose source record awaits archiving.
type ArchiveItem struct {
	Row int
	ID  string
}

var (
	classifyColumns = []string{ColID, ColContent, ColToAnalyse}
	dispatchColumns = []string{ColReady, ColDispatched, ColDispatchContent, ColLink}
	archiveColumns  = []string{ColID, ColDispatched, ColSourceArchived}
)

// PendingClassification returns rows with to_analyse=TRUE and a non-empty id.
func (s *Scanner) PendingClassification(ctx context.Context) ([]PendingItem, error) {
	cols, grid, err := s.snapshot(ctx, classifyColumns)
	if err != nil {
		return nil, err
	}

	var items []PendingItem
	for i, row := range grid {
		if i == 0 {
			continue
		}
		id := strings.TrimSpace(cellAt(row, cols.Col(ColID)))
		if id == "" || !ParseBool(cellAt(row, cols.Col(ColToAnalyse))) {
			continue
		}
		items = append(items, PendingItem{
			Row:     i + 1,
			ID:      id,
			Content: cellAt(row, cols.Col(ColContent)),
		})
	}
	return items, nil
}

// PendingDispatch returns rows with ready_to_dispatch=TRUE and dispatched=FALSE.
func (s *Scanner) PendingDispatch(ctx context.Context) ([]DispatchItem, error) {
	cols, grid, err := s.snapshot(ctx, dispatchColumns)
	if err != nil {
		return nil, err
	}

	var items []DispatchItem
	for i, row := range grid {
		if i == 0 {
			continue
		}
		if !ParseBool(cellAt(row, cols.Col(ColReady))) || ParseBool(cellAt(row, cols.Col(ColDispatched))) {
			continue
		}
		items = append(items, DispatchItem{
			Row:     i + 1,
			Content: cellAt(row, cols.Col(ColDispatchContent)),
			Link:    cellAt(row, cols.Col(ColLink)),
		})
	}
	return items, nil
}

// PendingArchive returns rows with dispatched=TRUE and source_archived=FALSE.
func (s *Scanner) PendingArchive(ctx context.Context) ([]ArchiveItem, error) {
	cols, grid, err := s.snapshot(ctx, archiveColumns)
	if err != nil {
		return nil, err
	}

	var items []ArchiveItem
	for i, row := range grid {
		if i == 0 {
			continue
		}
		if !ParseBool(cellAt(row, cols.Col(ColDispatched))) || ParseBool(cellAt(row, cols.Col(ColSourceArchived))) {
			continue
		}
		id := strings.TrimSpace(cellAt(row, cols.Col(ColID)))
		if id == "" {
			continue
		}
		items = append(items, ArchiveItem{Row: i + 1, ID: id})
	}
	return items, nil
}

// MarkDispatched sets dispatched=TRUE for one row. Call only after the board
// accepted the note; the flag is never reset.
func (s *Scanner) MarkDispatched(ctx context.Context, row int) error {
	return s.mark(ctx, row, ColDispatched)
}

// MarkArchived sets source_archived=TRUE for one row. Call only after the
// document store confirmed archiving.
func (s *Scanner) MarkArchived(ctx context.Context, row int) error {
	return s.mark(ctx, row, ColSourceArchived)
}

func (s *Scanner) mark(ctx context.Context, row int, column string) error {
	cols, err := ResolveColumns(ctx, s.store, column)
	if err != nil {
		return err
	}
	if err := s.store.WriteCell(ctx, row, cols.Col(column), cellTrue); err != nil {
		return fmt.Errorf("mark %s row %d: %w", column, row, err)
	}
	return nil
}

func (s *Scanner) snapshot(ctx context.Context, required []string) (Columns, [][]string, error) {
	cols, err := ResolveColumns(ctx, s.store, required...)
	if err != nil {
		return Columns{}, nil, err
	}
	grid, err := s.store.BulkRead(ctx)
	if err != nil {
		return Columns{}, nil, fmt.Errorf("read ledger snapshot: %w", err)
	}
	return cols, grid, nil
}
