package store

import (
	"context"
	"fmt"

	"github.com/erazemk/phonestock/internal/model"
)

// RecordActivity appends an audit entry. actorID 0 records a system action.
func RecordActivity(ctx context.Context, db DBTX, actorID int64, action, description string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO activity_logs (user_id, action, description) VALUES (?, ?, ?)`,
		nullableID(actorID), action, description,
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	return nil
}

// ListActivity returns the newest audit entries first.
func ListActivity(ctx context.Context, db DBTX, limit int) ([]model.ActivityLog, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.user_id, COALESCE(u.username, ''), a.action, a.description, a.created_at
		 FROM activity_logs a
		 LEFT JOIN users u ON u.id = a.user_id
		 ORDER BY a.id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	var entries []model.ActivityLog
	for rows.Next() {
		var e model.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Action, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
