// Package sheets implements the tabular-storage collaborator on the Google
// Sheets API, one Store per worksheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"NotesNexus/internal/config"
	"NotesNexus/internal/ports"
)

// Store gives row/column access to a single worksheet.
type Store struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.TabularStore = (*Store)(nil)

// NewStore authorizes against the Sheets API with a service-account
// credentials file and binds the store to one worksheet.
func NewStore(ctx context.Context, cfg config.SheetsConfig, sheetName string) (*Store, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("new sheets service: %w", err)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// ReadRow returns the cells of one row, trimmed to the populated width.
func (s *Store) ReadRow(ctx context.Context, row int) ([]string, error) {
	ref := fmt.Sprintf("'%s'!%d:%d", s.sheetName, row, row)
	res, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, ref).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("read row", err)
	}
	if len(res.Values) == 0 {
		return nil, nil
	}
	return toCells(res.Values[0]), nil
}

// ReadColumn returns the cells of one column, trimmed to the populated height.
func (s *Store) ReadColumn(ctx context.Context, col int) ([]string, error) {
	letter := a1Column(col)
	ref := fmt.Sprintf("'%s'!%s:%s", s.sheetName, letter, letter)
	res, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, ref).
		MajorDimension("COLUMNS").Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("read column", err)
	}
	if len(res.Values) == 0 {
		return nil, nil
	}
	return toCells(res.Values[0]), nil
}

// BulkRead returns the full populated grid of the worksheet.
func (s *Store) BulkRead(ctx context.Context) ([][]string, error) {
	ref := fmt.Sprintf("'%s'", s.sheetName)
	res, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, ref).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("bulk read", err)
	}
	grid := make([][]string, len(res.Values))
	for i, row := range res.Values {
		grid[i] = toCells(row)
	}
	return grid, nil
}

// WriteRange writes values with the top-left cell at (row, col), RAW input
// so TRUE/FALSE tokens land as checkbox values untouched.
func (s *Store) WriteRange(ctx context.Context, row, col int, values [][]string) error {
	if len(values) == 0 {
		return nil
	}
	width := 0
	for _, r := range values {
		if len(r) > width {
			width = len(r)
		}
	}
	ref := fmt.Sprintf("'%s'!%s%d:%s%d",
		s.sheetName, a1Column(col), row, a1Column(col+width-1), row+len(values)-1)

	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, ref, &sheetsapi.ValueRange{
		Values: toValues(values),
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return wrapErr("write range", err)
	}
	return nil
}

// WriteCell writes a single cell.
func (s *Store) WriteCell(ctx context.Context, row, col int, value string) error {
	return s.WriteRange(ctx, row, col, [][]string{{value}})
}

// AppendRow appends one row after the last populated row.
func (s *Store) AppendRow(ctx context.Context, values []string) error {
	ref := fmt.Sprintf("'%s'!A1", s.sheetName)
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, ref, &sheetsapi.ValueRange{
		Values: toValues([][]string{values}),
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return wrapErr("append row", err)
	}
	return nil
}

// rateLimitError marks quota exhaustion so the retry wrapper can tell it
// apart from permanent failures.
type rateLimitError struct {
	err error
}

func (e *rateLimitError) Error() string     { return e.err.Error() }
func (e *rateLimitError) Unwrap() error     { return e.err }
func (e *rateLimitError) RateLimited() bool { return true }

var _ ports.RateLimited = (*rateLimitError)(nil)

func wrapErr(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 429 || (gerr.Code == 403 && looksLikeQuota(gerr.Message)) {
			return &rateLimitError{err: wrapped}
		}
	}
	return wrapped
}

func looksLikeQuota(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "quota") || strings.Contains(m, "rate limit")
}

// a1Column converts a 1-based column index to its A1 letter form.
func a1Column(col int) string {
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return string(letters)
}

func toCells(row []interface{}) []string {
	cells := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			cells[i] = fmt.Sprint(v)
		}
	}
	return cells
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
