// Package classify builds batch classification requests and parses the
// model's structured responses.
package classify

import (
	"fmt"
	"strings"

	"NotesNexus/internal/domain"
)

// FallbackCategory labels anything the model could not place.
const FallbackCategory = "Other"

// SystemInstructions describe the required output schema for every batch.
const SystemInstructions = "You are an AI text analysis assistant. You will receive multiple short items " +
	"in a single request, each with its own id. For each item, you must return ONLY valid JSON with the " +
	"following fields: \"id\", \"category\", \"tags\", \"has_lexical_suggestion\", and \"lexical_suggestion\". " +
	"No extra commentary, just the JSON. The final response must be a JSON array of objects, one object per " +
	"input item, carrying the item's id unchanged."

// BuildUserPrompt renders one batch into the user message: the category
// label→description list followed by the numbered items, each tagged with
// its ledger id so the response can be mapped back row by row.
func BuildUserPrompt(ids, texts []string, categories []domain.Category) string {
	var categoryLines []string
	for _, cat := range categories {
		categoryLines = append(categoryLines, fmt.Sprintf("• %q: %q", cat.Label, cat.Description))
	}

	var items []string
	for i := range texts {
		items = append(items, fmt.Sprintf("%d) [id: %s]\n%s", i+1, ids[i], texts[i]))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Please analyze each of the following items and categorize them. Here are the requirements:

1. "id": Copy the item's id exactly as given.
2. "category": Must be one of the known labels below (or %q if none match).
3. "tags": A list of short keywords describing the text.
4. "has_lexical_suggestion": A boolean, true if the text likely has spelling/grammar/transcription issues.
5. "lexical_suggestion": If has_lexical_suggestion is true, provide a corrected version in the original language; otherwise, leave it empty.

Here are the possible categories (label → description):
%s

Below are the items to analyze. Return your results as a JSON array of length %d, one object per item:

%s

Your final response must be ONLY the JSON array, no extra text. Each element looks like:

{
  "id": "...",
  "category": "...",
  "tags": ["...", "..."],
  "has_lexical_suggestion": false,
  "lexical_suggestion": ""
}`, FallbackCategory, strings.Join(categoryLines, "\n"), len(texts), strings.Join(items, "\n\n"))

	return b.String()
}

// NormalizeCategory coerces labels outside the known set (or blank ones) to
// the fallback so the ledger never stores an invented category.
func NormalizeCategory(label string, categories []domain.Category) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return FallbackCategory
	}
	for _, cat := range categories {
		if strings.EqualFold(cat.Label, label) {
			return cat.Label
		}
	}
	return FallbackCategory
}
