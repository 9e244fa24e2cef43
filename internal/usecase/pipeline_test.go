package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"NotesNexus/internal/domain"
	"NotesNexus/internal/logging"
	"NotesNexus/internal/ports"
)

var recordHeader = []string{
	"id", "created_time", "last_edited_time", "content",
	"to_analyse", "ready_to_dispatch", "dispatched", "source_archived",
	"ai_category", "ai_tags", "has_lexical_suggestion", "lexical_suggestion",
	"content_to_dispatch", "link",
}

var categoryHeader = []string{"label", "description", "include"}

// fakeStore is an in-memory TabularStore with worksheet semantics:
// 1-based addressing, header in row 1, reads trimmed to populated cells.
type fakeStore struct {
	grid [][]string
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
	for i, vr := range values {
		for j, v := range vr {
			f.set(row+i, col+j, v)
		}
	}
	return nil
}

func (f *fakeStore) WriteCell(_ context.Context, row, col int, value string) error {
	f.set(row, col, value)
	return nil
}

func (f *fakeStore) AppendRow(_ context.Context, values []string) error {
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

func (f *fakeStore) cell(row, col int) string {
	if row > len(f.grid) || col > len(f.grid[row-1]) {
		return ""
	}
	return f.grid[row-1][col-1]
}

type fakeSource struct {
	records    []domain.Record
	archived   []string
	archiveErr map[string]error
	rejected   map[string]bool
}

var _ ports.RecordSource = (*fakeSource)(nil)

func (f *fakeSource) FetchAll(context.Context) ([]domain.Record, error) {
	return f.records, nil
}

func (f *fakeSource) Archive(_ context.Context, id string) (bool, error) {
	if err := f.archiveErr[id]; err != nil {
		return false, err
	}
	if f.rejected[id] {
		return false, nil
	}
	f.archived = append(f.archived, id)
	return true, nil
}

type fakeChat struct {
	responses []string
	calls     int
	prompts   []string
	err       error
}

var _ ports.ChatClient = (*fakeChat)(nil)

func (f *fakeChat) Submit(_ context.Context, _, user string) (string, error) {
	f.prompts = append(f.prompts, user)
	if f.err != nil {
		return "", f.err
	}
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return resp, nil
}

type fakeBoard struct {
	sent    []string
	failAt  string
	dropped []string
}

var _ ports.Dispatcher = (*fakeBoard)(nil)

func (f *fakeBoard) Dispatch(_ context.Context, content, destination string) (bool, error) {
	if destination == f.failAt && f.failAt != "" {
		f.dropped = append(f.dropped, content)
		return false, errors.New("board unreachable")
	}
	f.sent = append(f.sent, content)
	return true, nil
}

func newTestPipeline(records, categories ports.TabularStore, src ports.RecordSource, chat ports.ChatClient) *Pipeline {
	return NewPipeline(PipelineDeps{
		Source:         src,
		Records:        records,
		Categories:     categories,
		Chat:           chat,
		BatchBudget:    8000,
		PromptOverhead: 2000,
		Logger:         logging.New("error"),
	})
}

func defaultCategories() *fakeStore {
	return newFakeStore([][]string{
		categoryHeader,
		{"Idea", "a project or product idea", "TRUE"},
		{"Task", "something actionable", "TRUE"},
		{"Junk", "noise", "FALSE"},
	})
}

func TestPipelineImportInsertsNewRecords(t *testing.T) {
	t.Parallel()

	records := newFakeStore([][]string{recordHeader})
	src := &fakeSource{records: []domain.Record{
		{ID: "n1", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Content: "first note"},
	}}
	p := newTestPipeline(records, defaultCategories(), src, &fakeChat{})

	stats, err := p.Import(context.Background())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.Inserted != 1 || stats.Updated != 0 {
		t.Fatalf("stats = %+v, want 1 inserted", stats)
	}
	if got := records.cell(2, 1); got != "n1" {
		t.Errorf("id cell = %q, want n1", got)
	}
	if got := records.cell(2, 5); got != "TRUE" {
		t.Errorf("to_analyse = %q, want TRUE", got)
	}
}

func TestPipelineClassifyRoundTrip(t *testing.T) {
	t.Parallel()

	records := newFakeStore([][]string{
		recordHeader,
		{"n1", "", "", "buy milk", "TRUE", "FALSE", "FALSE", "FALSE"},
		{"n2", "", "", "startup idea", "TRUE", "FALSE", "FALSE", "FALSE"},
	})
	chat := &fakeChat{responses: []string{
		`[{"id":"n1","category":"Task","tags":["errand"],"has_lexical_suggestion":false,"lexical_suggestion":""},` +
			`{"id":"n2","category":"Idea","tags":["startup","product"],"has_lexical_suggestion":true,"lexical_suggestion":"start-up"}]`,
	}}
	p := newTestPipeline(records, defaultCategories(), &fakeSource{}, chat)

	n, err := p.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if n != 2 {
		t.Fatalf("applied = %d, want 2", n)
	}
	if chat.calls != 1 {
		t.Fatalf("chat calls = %d, want 1", chat.calls)
	}
	if got := records.cell(2, 9); got != "Task" {
		t.Errorf("n1 ai_category = %q, want Task", got)
	}
	if got := records.cell(3, 10); got != "startup, product" {
		t.Errorf("n2 ai_tags = %q, want joined tags", got)
	}
	if got := records.cell(3, 11); got != "TRUE" {
		t.Errorf("n2 has_lexical_suggestion = %q, want TRUE", got)
	}
	for row := 2; row <= 3; row++ {
		if got := records.cell(row, 5); got != "FALSE" {
			t.Errorf("row %d to_analyse = %q, want FALSE", row, got)
		}
	}
}

func TestPipelineClassifyNormalizesUnknownCategory(t *testing.T) {
	t.Parallel()

	records := newFakeStore([][]string{
		recordHeader,
		{"n1", "", "", "whatever", "TRUE", "FALSE", "FALSE", "FALSE"},
	})
	chat := &fakeChat{responses: []string{
		`[{"id":"n1","category":"Philosophy","tags":[],"has_lexical_suggestion":false,"lexical_suggestion":""}]`,
	}}
	p := newTestPipeline(records, defaultCategories(), &fakeSource{}, chat)

	if _, err := p.Classify(context.Background()); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got := records.cell(2, 9); got != "Other" {
		t.Errorf("ai_category = %q, want Other", got)
	}
}

func TestPipelineClassifySkipsUnparseableBatch(t *testing.T) {
	t.Parallel()

	records := newFakeStore([][]string{
		recordHeader,
		{"n1", "", "", "some note", "TRUE", "FALSE", "FALSE", "FALSE"},
	})
	chat := &fakeChat{responses: []string{"I cannot help with that."}}
	p := newTestPipeline(records, defaultCategories(), &fakeSource{}, chat)

	n, err := p.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if n != 0 {
		t.Fatalf("applied = %d, want 0", n)
	}
	if got := records.cell(2, 5); got != "TRUE" {
		t.Errorf("to_analyse = %q, want TRUE (row left for the next pass)", got)
	}
}

func TestPipelineClassifyNothingPending(t *testing.T) {
	t.Parallel()

	records := newFakeStore([][]string{
		recordHeader,
		{"n1", "", "", "done already", "FALSE", "FALSE", "FALSE", "FALSE"},
	})
	chat := &fakeChat{responses: []string{"[]"}}
	p := newTestPipeline(records, defaultCategories(), &fakeSource{}, chat)

	n, err := p.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if n != 0 || chat.calls != 0 {
		t.Fatalf("applied = %d, chat calls = %d, want no model traffic", n, chat.calls)
	}
}

func TestPipelineDispatchMarksDeliveredRows(t *testing.T) {
	t.Parallel()

	records := newFakeStore([][]string{
		recordHeader,
		{"n1", "", "", "a", "FALSE", "TRUE", "FALSE", "FALSE", "", "", "", "", "note one", "https://board/one"},
		{"n2", "", "", "b", "FALSE", "TRUE", "FALSE", "FALSE", "", "", "", "", "note two", ""},
		{"n3", "", "", "c", "FALSE", "TRUE", "FALSE", "FALSE", "", "", "", "", "note three", "https://board/broken"},
		{"n4", "", "", "d", "FALSE", "TRUE", "TRUE", "FALSE", "", "", "", "", "already out", "https://board/four"},
	})
	board := &fakeBoard{failAt: "https://board/broken"}
	p := newTestPipeline(records, defaultCategories(), &fakeSource{}, &fakeChat{})

	n, err := p.Dispatch(context.Background(), board)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if n != 2 {
		t.Fatalf("dispatched = %d, want 2", n)
	}
	if got := records.cell(2, 7); got != "TRUE" {
		t.Errorf("n1 dispatched = %q, want TRUE", got)
	}
	if got := records.cell(3, 7); got != "TRUE" {
		t.Errorf("n2 (empty link) dispatched = %q, want TRUE", got)
	}
	if got := records.cell(4, 7); got != "FALSE" {
		t.Errorf("n3 dispatched = %q, want FALSE after delivery failure", got)
	}
	if len(board.sent) != 2 {
		t.Errorf("board received %d notes, want 2", len(board.sent))
	}
}

func TestPipelineArchiveMarksArchivedRows(t *testing.T) {
	t.Parallel()

	records := newFakeStore([][]string{
		recordHeader,
		{"n1", "", "", "a", "FALSE", "TRUE", "TRUE", "FALSE"},
		{"n2", "", "", "b", "FALSE", "TRUE", "TRUE", "FALSE"},
		{"n3", "", "", "c", "FALSE", "TRUE", "TRUE", "TRUE"},
		{"n4", "", "", "d", "FALSE", "TRUE", "TRUE", "FALSE"},
	})
	src := &fakeSource{
		archiveErr: map[string]error{"n2": errors.New("store down")},
		rejected:   map[string]bool{"n4": true},
	}
	p := newTestPipeline(records, defaultCategories(), src, &fakeChat{})

	n, err := p.Archive(context.Background())
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if n != 1 {
		t.Fatalf("archived = %d, want 1", n)
	}
	if got := records.cell(2, 8); got != "TRUE" {
		t.Errorf("n1 source_archived = %q, want TRUE", got)
	}
	if got := records.cell(3, 8); got != "FALSE" {
		t.Errorf("n2 source_archived = %q, want FALSE after store failure", got)
	}
	if got := records.cell(5, 8); got != "FALSE" {
		t.Errorf("n4 source_archived = %q, want FALSE when the store declines", got)
	}
	if len(src.archived) != 1 || src.archived[0] != "n1" {
		t.Errorf("archived ids = %v, want [n1]", src.archived)
	}
}

func TestPipelineClassifyFatalOnChatFailure(t *testing.T) {
	t.Parallel()

	records := newFakeStore([][]string{
		recordHeader,
		{"n1", "", "", "some note", "TRUE", "FALSE", "FALSE", "FALSE"},
	})
	chat := &fakeChat{err: errors.New("model offline")}
	p := newTestPipeline(records, defaultCategories(), &fakeSource{}, chat)

	if _, err := p.Classify(context.Background()); err == nil {
		t.Fatal("Classify succeeded, want transport error")
	}
}
