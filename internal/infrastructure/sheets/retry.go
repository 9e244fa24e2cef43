package sheets

import (
	"context"
	"log/slog"
	"time"

	"NotesNexus/internal/ports"
)

// RetryingStore decorates a TabularStore with a bounded fixed-delay retry
// policy for rate-limit-class errors. Any other error propagates immediately
// and aborts the current pass.
type RetryingStore struct {
	inner    ports.TabularStore
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

var _ ports.TabularStore = (*RetryingStore)(nil)

// NewRetryingStore wraps inner with the given policy. attempts counts total
// tries, so 1 disables retrying.
func NewRetryingStore(inner ports.TabularStore, attempts int, delay time.Duration, logger *slog.Logger) *RetryingStore {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingStore{inner: inner, attempts: attempts, delay: delay, logger: logger}
}

func (s *RetryingStore) ReadRow(ctx context.Context, row int) ([]string, error) {
	var out []string
	err := s.do(ctx, "read row", func() error {
		var err error
		out, err = s.inner.ReadRow(ctx, row)
		return err
	})
	return out, err
}

func (s *RetryingStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	var out []string
	err := s.do(ctx, "read column", func() error {
		var err error
		out, err = s.inner.ReadColumn(ctx, col)
		return err
	})
	return out, err
}

func (s *RetryingStore) BulkRead(ctx context.Context) ([][]string, error) {
	var out [][]string
	err := s.do(ctx, "bulk read", func() error {
		var err error
		out, err = s.inner.BulkRead(ctx)
		return err
	})
	return out, err
}

func (s *RetryingStore) WriteRange(ctx context.Context, row, col int, values [][]string) error {
	return s.do(ctx, "write range", func() error {
		return s.inner.WriteRange(ctx, row, col, values)
	})
}

func (s *RetryingStore) WriteCell(ctx context.Context, row, col int, value string) error {
	return s.do(ctx, "write cell", func() error {
		return s.inner.WriteCell(ctx, row, col, value)
	})
}

func (s *RetryingStore) AppendRow(ctx context.Context, values []string) error {
	return s.do(ctx, "append row", func() error {
		return s.inner.AppendRow(ctx, values)
	})
}

func (s *RetryingStore) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !ports.IsRateLimited(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if attempt < s.attempts {
			s.logger.Warn("rate limited, retrying",
				"op", op,
				"attempt", attempt,
				"max_attempts", s.attempts,
				"delay_ms", s.delay.Milliseconds(),
			)
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(s.delay):
			}
		}
	}
	return lastErr
}
