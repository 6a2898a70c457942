package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// clock returns the current time for timestamps written by repositories.
type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// nullIfNotPositive maps unknown durations (zero or negative) to NULL.
func nullIfNotPositive(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v > 0}
}

// notFound converts [sql.ErrNoRows] into [ErrNotFound] with context.
func notFound(err error, what, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", what, key, ErrNotFound)
	}
	return fmt.Errorf("failed to query %s: %w", what, err)
}
