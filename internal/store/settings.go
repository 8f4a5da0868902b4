package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	settingJWTSecret     = "jwt_secret"
	settingSetupTokenPfx = "setup_token_used:"
)

// GetSetting returns a setting value and whether it exists.
func GetSetting(ctx context.Context, db DBTX, name string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE name = ?`, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying setting %s: %w", name, err)
	}
	return value, true, nil
}

// insertSettingOnce stores value under name unless the name already exists.
// It reports whether this call stored the value.
func insertSettingOnce(ctx context.Context, db DBTX, name, value string) (bool, error) {
	if _, exists, err := GetSetting(ctx, db, name); err != nil || exists {
		return false, err
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO settings (name, value) VALUES (?, ?)`, name, value,
	); err != nil {
		// Lost a race against another writer: the row exists now.
		if _, exists, getErr := GetSetting(ctx, db, name); getErr == nil && exists {
			return false, nil
		}
		return false, fmt.Errorf("storing setting %s: %w", name, err)
	}
	return true, nil
}

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
func GetJWTSecret(ctx context.Context, db DBTX) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	if _, err := insertSettingOnce(ctx, db, settingJWTSecret, hex.EncodeToString(buf)); err != nil {
		return "", err
	}

	// Always read back (either our insert or the existing value).
	secret, _, err := GetSetting(ctx, db, settingJWTSecret)
	if err != nil {
		return "", err
	}
	return secret, nil
}

// ConsumeSetupToken marks a setup token digest as used. It returns false if
// the digest was already consumed.
func ConsumeSetupToken(ctx context.Context, db DBTX, digest string) (bool, error) {
	return insertSettingOnce(ctx, db, settingSetupTokenPfx+digest, "1")
}
