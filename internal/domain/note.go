package domain

import "time"

// Record is an external note as fetched from the document store. The store
// owns it; this system only mirrors it into the ledger.
type Record struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Content   string
}

// Category is a classification label read from the side table.
type Category struct {
	Label       string
	Description string
}

// ClassificationResult is the per-item output produced by the model for one
// batch. It is applied to exactly one ledger row and then discarded.
type ClassificationResult struct {
	PageID               string   `json:"id"`
	Category             string   `json:"category"`
	Tags                 []string `json:"tags"`
	HasLexicalSuggestion bool     `json:"has_lexical_suggestion"`
	LexicalSuggestion    string   `json:"lexical_suggestion"`
}
