package classify

import (
	"encoding/json"
	"regexp"
	"strings"

	"NotesNexus/internal/domain"
)

// RawResponseError wraps a model response that could not be parsed as the
// expected JSON array. The raw text is preserved verbatim so the caller can
// log it and skip the batch instead of aborting the run.
type RawResponseError struct {
	Raw string
}

func (e *RawResponseError) Error() string {
	return "classification response is not valid JSON"
}

// Models often wrap JSON in a fenced code block (```json ... ```).
var fencePattern = regexp.MustCompile("(?is)```[^\\n]*\\n([\\s\\S]*?)\\n[ \\t]*```")

// ParseResults decodes the raw model response into per-item results,
// stripping a surrounding code fence first. A response that still fails to
// parse comes back as a *RawResponseError.
func ParseResults(raw string) ([]domain.ClassificationResult, error) {
	body := raw
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		body = m[1]
	}
	body = strings.TrimSpace(body)

	var results []domain.ClassificationResult
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		return nil, &RawResponseError{Raw: raw}
	}
	return results, nil
}
