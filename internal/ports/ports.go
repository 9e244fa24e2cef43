package ports

import (
	"context"
	"errors"

	"NotesNexus/internal/domain"
)

// RecordSource pulls note records from the document store and archives them
// there once the pipeline is done with them.
type RecordSource interface {
	// FetchAll returns every record in the source database, newest-first.
	// Pagination is handled internally.
	FetchAll(ctx context.Context) ([]domain.Record, error)
	// Archive marks the record as archived at the source. It reports
	// whether the source accepted the operation.
	Archive(ctx context.Context, id string) (bool, error)
}

// TabularStore is row/column access to one worksheet of the ledger
// spreadsheet. Rows and columns are 1-based; row 1 is the header.
type TabularStore interface {
	ReadRow(ctx context.Context, row int) ([]string, error)
	ReadColumn(ctx context.Context, col int) ([]string, error)
	BulkRead(ctx context.Context) ([][]string, error)
	// WriteRange writes values with its top-left cell at (row, col).
	WriteRange(ctx context.Context, row, col int, values [][]string) error
	WriteCell(ctx context.Context, row, col int, value string) error
	AppendRow(ctx context.Context, values []string) error
}

// ChatClient submits one classification request to the language model and
// returns the raw text response. No streaming, no retry.
type ChatClient interface {
	Submit(ctx context.Context, system, user string) (string, error)
}

// Dispatcher delivers note content to the visual board. An empty destination
// is vacuous success. The bool reports delivery success; a non-nil error
// explains the failure for logging but never advances the stage flag.
type Dispatcher interface {
	Dispatch(ctx context.Context, content, destination string) (bool, error)
}

// Scheduler controls when pipeline cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func()) error
	Stop(ctx context.Context) error
}

// RateLimited marks transient rate/quota errors that are safe to retry.
// Any other error from a TabularStore is permanent for the current pass.
type RateLimited interface {
	RateLimited() bool
}

// IsRateLimited reports whether err is a rate-limit-class store error.
func IsRateLimited(err error) bool {
	var rl RateLimited
	return errors.As(err, &rl) && rl.RateLimited()
}
