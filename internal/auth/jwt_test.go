package auth

import (
	"testing"
	"time"

	"github.com/erazemk/phonestock/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}
}

func TestGenerateAndValidateToken(t *testing.T) {
	tokens := NewTokens("test-secret-key", 0)

	token, issued, err := tokens.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username 'admin', got %q", claims.Username)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Errorf("expected JTI %q, got %q", issued.ID, claims.ID)
	}
}

func TestTokensHaveUniqueIDs(t *testing.T) {
	tokens := NewTokens("secret", 0)

	_, a, _ := tokens.Generate(testUser())
	_, b, _ := tokens.Generate(testUser())
	if a.ID == b.ID {
		t.Error("expected distinct JTIs")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, _ := NewTokens("secret1", 0).Generate(testUser())

	_, err := NewTokens("secret2", 0).Validate(token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := NewTokens("secret", 0).Validate("not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenExpiry(t *testing.T) {
	tokens := NewTokens("test", time.Hour)
	token, _, _ := tokens.Generate(testUser())
	claims, _ := tokens.Validate(token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(time.Hour)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tokens := NewTokens("test", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, _ := tokens.Generate(testUser())

	tokens.now = time.Now
	if _, err := tokens.Validate(token); err == nil {
		t.Error("expected error for expired token")
	}
}
