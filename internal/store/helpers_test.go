package store

import (
	"context"
	"fmt"
)

// CountActivity returns the number of entries with the given action.
func CountActivity(ctx context.Context, db DBTX, action string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_logs WHERE action = ?`, action,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting activity: %w", err)
	}
	return n, nil
}
