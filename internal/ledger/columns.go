// Package ledger implements the staging-ledger reconciliation and
// stage-transition engine on top of a tabular store. One row tracks one note
// through the pipeline via monotonic stage flags.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"NotesNexus/internal/ports"
)

// Canonical ledger column names. The header row defines positions; code
// resolves them by name so column order is irrelevant.
const (
	ColID              = "id"
	ColCreated         = "created_time"
	ColEdited          = "last_edited_time"
	ColContent         = "content"
	ColToAnalyse       = "to_analyse"
	ColReady           = "ready_to_dispatch"
	ColDispatched      = "dispatched"
	ColSourceArchived  = "source_archived"
	ColAICategory      = "ai_category"
	ColAITags          = "ai_tags"
	ColHasSuggestion   = "has_lexical_suggestion"
	ColSuggestion      = "lexical_suggestion"
	ColDispatchContent = "content_to_dispatch"
	ColLink            = "link"
)

// ErrMissingColumn is a fatal configuration error: a pass cannot run against
// a sheet whose header lacks one of its required columns.
var ErrMissingColumn = errors.New("required column missing")

// Columns maps header names to 1-based column indices, resolved once per pass.
type Columns struct {
	index map[string]int
	width int
}

// ResolveColumns reads the header row and verifies every required column is
// present, surfacing ErrMissingColumn before any row is touched.
func ResolveColumns(ctx context.Context, store ports.TabularStore, required ...string) (Columns, error) {
	header, err := store.ReadRow(ctx, 1)
	if err != nil {
		return Columns{}, fmt.Errorf("read header row: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = i + 1
		}
	}

	for _, name := range required {
		if _, ok := index[name]; !ok {
			return Columns{}, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	return Columns{index: index, width: len(header)}, nil
}

// Col returns the 1-based index of a resolved column, or 0 when absent.
func (c Columns) Col(name string) int {
	return c.index[name]
}

// Width is the number of header cells, i.e. the row width for bulk writes.
func (c Columns) Width() int {
	return c.width
}

// Boolean columns use the literal tokens TRUE/FALSE, read case-insensitively.
const (
	cellTrue  = "TRUE"
	cellFalse = "FALSE"
)

// ParseBool decodes a boolean cell. Anything other than TRUE (in any case,
// surrounding space ignored) is false.
func ParseBool(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), cellTrue)
}

// FormatBool encodes a boolean for storage.
func FormatBool(v bool) string {
	if v {
		return cellTrue
	}
	return cellFalse
}

// cellTimeLayout is how timestamps are rendered into ledger cells.
const cellTimeLayout = "2006-01-02 15:04:05"

var cellTimeLayouts = []string{
	cellTimeLayout,
	time.RFC3339,
	"2006-01-02",
}

// parseCellTime reads a stored timestamp leniently. A blank or unparseable
// cell yields the zero time, which every comparison treats as "older".
func parseCellTime(cell string) time.Time {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range cellTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatCellTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(cellTimeLayout)
}

// cellAt returns the cell at a 1-based column, tolerating short rows: the
// store trims trailing empty cells, so a missing cell reads as empty.
func cellAt(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}
