package ledger

import (
	"context"

	"NotesNexus/internal/ports"
)

// fakeStore is an in-memory TabularStore mirroring worksheet semantics:
// 1-based addressing, header in row 1, reads trimmed to populated cells.
type fakeStore struct {
	grid   [][]string
	writes int
}

var _ ports.TabularStore = (*fakeStore)(nil)

func newFakeStore(grid [][]string) *fakeStore {
	copied := make([][]string, len(grid))
	for i, row := range grid {
		copied[i] = append([]string(nil), row...)
	}
	return &fakeStore{grid: copied}
}

func (f *fakeStore) ReadRow(_ context.Context, row int) ([]string, error) {
	if row < 1 || row > len(f.grid) {
		return nil, nil
	}
	return append([]string(nil), f.grid[row-1]...), nil
}

func (f *fakeStore) ReadColumn(_ context.Context, col int) ([]string, error) {
	var out []string
	for _, row := range f.grid {
		if col <= len(row) {
			out = append(out, row[col-1])
		} else {
			out = append(out, "")
		}
	}
	// Trim trailing blanks the way the real API does.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeStore) BulkRead(_ context.Context) ([][]string, error) {
	out := make([][]string, len(f.grid))
	for i, row := range f.grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeStore) WriteRange(_ context.Context, row, col int, values [][]string) error {
	f.writes++
	for i, vr := range values {
		for j, v := range vr {
			f.set(row+i, col+j, v)
		}
	}
	return nil
}

func (f *fakeStore) WriteCell(_ context.Context, row, col int, value string) error {
	f.writes++
	f.set(row, col, value)
	return nil
}

func (f *fakeStore) AppendRow(_ context.Context, values []string) error {
	f.writes++
	f.grid = append(f.grid, append([]string(nil), values...))
	return nil
}

func (f *fakeStore) set(row, col int, value string) {
	for len(f.grid) < row {
		f.grid = append(f.grid, nil)
	}
	for len(f.grid[row-1]) < col {
		f.grid[row-1] = append(f.grid[row-1], "")
	}
	f.grid[row-1][col-1] = value
}

// cell is a 1-based accessor for assertions.
func (f *fakeStore) cell(row, col int) string {
	if row > len(f.grid) || col > len(f.grid[row-1]) {
		return ""
	}
	return f.grid[row-1][col-1]
}

// recordHeader is the canonical record worksheet header used across tests.
var recordHeader = []string{
	"id", "created_time", "last_edited_time", "content",
	"to_analyse", "ready_to_dispatch", "dispatched", "source_archived",
	"ai_category", "ai_tags", "has_lexical_suggestion", "lexical_suggestion",
	"content_to_dispatch", "link",
}
