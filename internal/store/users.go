package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/model"
)

const userColumns = `id, username, full_name, password_hash, role, status, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser creates a new active user.
func CreateUser(ctx context.Context, db DBTX, username, fullName, passwordHash, role string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, full_name, password_hash, role, status) VALUES (?, ?, ?, ?, ?)`,
		username, fullName, passwordHash, role, model.UserStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if none exists.
func GetUser(ctx context.Context, db DBTX, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username, or nil if none exists.
func GetUserByUsername(ctx context.Context, db DBTX, username string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// GetFirstAdmin returns the admin with the lowest ID, or nil if there is none.
func GetFirstAdmin(ctx context.Context, db DBTX) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY id LIMIT 1`, model.RoleAdmin,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by ID.
func ListUsers(ctx context.Context, db DBTX) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetEmployeeStatus moves a user to status and audits the change in the same
// transaction. It reports whether anything was written; setting the current
// status again is a successful no-op.
func SetEmployeeStatus(ctx context.Context, db *sql.DB, id int64, status string, actorID int64) (*model.User, bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := GetUser(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "Employee not found")
	}

	changed, err := model.Transition(model.KindEmployee, user.Status, status)
	if err != nil || !changed {
		return user, false, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET status = ? WHERE id = ?`, status, id,
	); err != nil {
		return nil, false, fmt.Errorf("updating employee status: %w", err)
	}

	action := model.ActionDeactivateEmployee
	if status == model.UserStatusActive {
		action = model.ActionActivateEmployee
	}
	desc := fmt.Sprintf("Changed status of employee %s to %s", user.DisplayName(), status)
	if err := RecordActivity(ctx, tx, actorID, action, desc); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing employee status: %w", err)
	}

	user.Status = status
	return user, true, nil
}

// ResetAdminPassword replaces the first admin's password hash, re-activates the
// account and audits the reset. actorID 0 records a system action.
func ResetAdminPassword(ctx context.Context, db *sql.DB, passwordHash string, actorID int64) (*model.User, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	admin, err := resetAdminPassword(ctx, tx, passwordHash, actorID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing admin password reset: %w", err)
	}
	return admin, nil
}

// ResetAdminPasswordWithSetupToken consumes a one-time setup token digest and
// resets the admin password in the same transaction, so a failed reset does
// not burn the token.
func ResetAdminPasswordWithSetupToken(ctx context.Context, db *sql.DB, digest, passwordHash string) (*model.User, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	fresh, err := ConsumeSetupToken(ctx, tx, digest)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Setup token has already been used")
	}

	admin, err := resetAdminPassword(ctx, tx, passwordHash, 0)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing admin password reset: %w", err)
	}
	return admin, nil
}

func resetAdminPassword(ctx context.Context, tx DBTX, passwordHash string, actorID int64) (*model.User, error) {
	admin, err := GetFirstAdmin(ctx, tx)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Admin account not found")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, status = ? WHERE id = ?`,
		passwordHash, model.UserStatusActive, admin.ID,
	); err != nil {
		return nil, fmt.Errorf("resetting admin password: %w", err)
	}

	desc := fmt.Sprintf("Reset password of admin %s", admin.DisplayName())
	if err := RecordActivity(ctx, tx, actorID, model.ActionResetAdminPassword, desc); err != nil {
		return nil, err
	}

	admin.PasswordHash = passwordHash
	admin.Status = model.UserStatusActive
	return admin, nil
}
