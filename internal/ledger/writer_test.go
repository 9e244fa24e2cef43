package ledger

import (
	"context"
	"testing"

	"NotesNexus/internal/domain"
)

func pendingRow(id, content string) []string {
	return []string{id, "", "", content, "TRUE", "FALSE", "FALSE", "FALSE", "", "", "", "", "", ""}
}

func TestApplyClassification(t *testing.T) {
	t.Parallel()

	store := newFakeStore([][]string{
		recordHeader,
		pendingRow("a1", "note one"),
		pendingRow("b2", "note two"),
	})
	w := NewWriter(store, nil)

	applied, err := w.Apply(context.Background(), []domain.ClassificationResult{{
		PageID:               "a1",
		Category:             "Food",
		Tags:                 []string{"restaurant", "review"},
		HasLexicalSuggestion: true,
		LexicalSuggestion:    "corrected text",
	}})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied, got %d", applied)
	}

	if got := store.cell(2, 9); got != "Food" {
		t.Fatalf("ai_category = %q", got)
	}
	if got := store.cell(2, 10); got != "restaurant, review" {
		t.Fatalf("ai_tags = %q", got)
	}
	if got := store.cell(2, 11); got != "TRUE" {
		t.Fatalf("has_lexical_suggestion = %q", got)
	}
	if got := store.cell(2, 12); got != "corrected text" {
		t.Fatalf("lexical_suggestion = %q", got)
	}
	if got := store.cell(2, 5); got != "FALSE" {
		t.Fatalf("to_analyse not cleared: %q", got)
	}

	// Round-trip property: the other row stays pending.
	if got := store.cell(3, 5); got != "TRUE" {
		t.Fatalf("unrelated row's to_analyse changed: %q", got)
	}
	if got := store.cell(3, 9); got != "" {
		t.Fatalf("unrelated row's ai_category changed: %q", got)
	}
}

func TestApplyUnknownIDSkipped(t *testing.T) {
	t.Parallel()

	store := newFakeStore([][]string{
		recordHeader,
		pendingRow("a1", "note"),
	})
	w := NewWriter(store, nil)

	applied, err := w.Apply(context.Background(), []domain.ClassificationResult{
		{PageID: "ghost", Category: "Other"},
		{PageID: "a1", Category: "Other"},
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied despite unknown id, got %d", applied)
	}
	if got := store.cell(2, 9); got != "Other" {
		t.Fatalf("known row not written: %q", got)
	}
}

func TestApplyUsesOneRangeWriteForAdjacentColumns(t *testing.T) {
	t.Parallel()

	store := newFakeStore([][]string{
		recordHeader,
		pendingRow("a1", "note"),
	})
	w := NewWriter(store, nil)

	if _, err := w.Apply(context.Background(), []domain.ClassificationResult{{PageID: "a1", Category: "Other"}}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	// One combined range write plus the separate to_analyse write.
	if store.writes != 2 {
		t.Fatalf("expected 2 writes, got %d", store.writes)
	}
}
