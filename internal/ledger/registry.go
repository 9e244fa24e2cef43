package ledger

import (
	"context"
	"fmt"
	"strings"

	"NotesNexus/internal/domain"
	"NotesNexus/internal/ports"
)

// Category side-table column names.
const (
	ColLabel       = "label"
	ColDescription = "description"
	ColInclude     = "include"
)

// Registry reads the set of valid classification labels from the category
// side table. Nothing is cached; every classification pass sees the current
// table.
type Registry struct {
	store ports.TabularStore
}

// NewRegistry wires the category worksheet.
func NewRegistry(store ports.TabularStore) *Registry {
	return &Registry{store: store}
}

var categoryColumns = []string{ColLabel, ColDescription, ColInclude}

// Categories returns, in source row order, every category whose inclusion
// flag is true. Rows too short to carry all three columns are skipped.
func (r *Registry) Categories(ctx context.Context) ([]domain.Category, error) {
	cols, err := ResolveColumns(ctx, r.store, categoryColumns...)
	if err != nil {
		return nil, err
	}

	grid, err := r.store.BulkRead(ctx)
	if err != nil {
		return nil, fmt.Errorf("read category table: %w", err)
	}

	widest := cols.Col(ColLabel)
	for _, name := range []string{ColDescription, ColInclude} {
		if c := cols.Col(name); c > widest {
			widest = c
		}
	}

	var categories []domain.Category
	for i, row := range grid {
		if i == 0 || len(row) < widest {
			continue
		}
		if !ParseBool(cellAt(row, cols.Col(ColInclude))) {
			continue
		}
		categories = append(categories, domain.Category{
			Label:       strings.TrimSpace(cellAt(row, cols.Col(ColLabel))),
			Description: strings.TrimSpace(cellAt(row, cols.Col(ColDescription))),
		})
	}
	return categories, nil
}
