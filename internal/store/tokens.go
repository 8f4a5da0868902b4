package store

import (
	"context"
	"fmt"
	"time"
)

// RevokeToken adds a token's JTI to the revocation list. Revoking twice is not an error.
func RevokeToken(ctx context.Context, db DBTX, jti string, expiresAt time.Time) error {
	revoked, err := IsTokenRevoked(ctx, db, jti)
	if err != nil {
		return err
	}
	if !revoked {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
			jti, dbTime(expiresAt),
		); err != nil {
			// A concurrent logout may have inserted it first.
			if again, checkErr := IsTokenRevoked(ctx, db, jti); checkErr != nil || !again {
				return fmt.Errorf("revoking token: %w", err)
			}
		}
	}

	// Opportunistically clean up expired revocations.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, dbTime(time.Now()),
	)

	return nil
}

// IsTokenRevoked checks if a token's JTI has been revoked.
func IsTokenRevoked(ctx context.Context, db DBTX, jti string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}
