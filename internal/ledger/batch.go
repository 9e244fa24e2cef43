package ledger

import (
	"fmt"
	"unicode/utf8"
)

// Batch groups ordered (id, text) items bound for one classification request.
type Batch struct {
	IDs   []string
	Texts []string
}

// OversizedItemError reports a single item whose own length exceeds the batch
// budget. Classification of one item is atomic, so the item can never be
// split or truncated; the caller must not retry it as-is.
type OversizedItemError struct {
	ID     string
	Length int
	Budget int
}

func (e *OversizedItemError) Error() string {
	return fmt.Sprintf("item %s is %d chars, exceeding the batch budget of %d", e.ID, e.Length, e.Budget)
}

// Assemble partitions parallel id/text lists into the minimum number of
// batches whose summed text length stays within budget, preserving input
// order. The budget already nets out the fixed prompt overhead. Lengths are
// counted in characters, not bytes.
func Assemble(ids, texts []string, budget int) ([]Batch, error) {
	if len(ids) != len(texts) {
		return nil, fmt.Errorf("assemble: %d ids but %d texts", len(ids), len(texts))
	}
	if budget <= 0 {
		return nil, fmt.Errorf("assemble: batch budget must be positive, got %d", budget)
	}

	var batches []Batch
	var cur Batch
	used := 0

	flush := func() {
		if len(cur.IDs) > 0 {
			batches = append(batches, cur)
			cur = Batch{}
			used = 0
		}
	}

	for i := range texts {
		n := utf8.RuneCountInString(texts[i])
		if n > budget {
			return nil, &OversizedItemError{ID: ids[i], Length: n, Budget: budget}
		}
		if used+n > budget {
			flush()
		}
		cur.IDs = append(cur.IDs, ids[i])
		cur.Texts = append(cur.Texts, texts[i])
		used += n
	}
	flush()

	return batches, nil
}
