// Package store holds the parameterized queries behind every operation.
// Functions take a DBTX so they run the same inside or outside a transaction.
package store

import (
	"context"
	"database/sql"
	"time"
)

// timeLayout matches the text SQLite writes for CURRENT_TIMESTAMP, so stored
// times compare chronologically as strings.
const timeLayout = "2006-01-02 15:04:05"

// dbTime normalizes t for a DATETIME column.
func dbTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// nullableID maps a zero id to SQL NULL.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
