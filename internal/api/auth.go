package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/phonestock/internal/auth"
	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/model"
	"github.com/erazemk/phonestock/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB           *sql.DB
	Tokens       *auth.Tokens
	Logger       *logger.Logger
	CookieSecure bool
	TrustProxy   bool
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	user, err := store.GetUserByUsername(ctx, h.DB, req.Username)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		var actor int64
		if user != nil {
			actor = user.ID
		}
		desc := fmt.Sprintf("Failed login attempt for %s", req.Username)
		if err := store.RecordActivity(ctx, h.DB, actor, model.ActionLoginFailed, desc); err != nil {
			h.Logger.Error(ctx, "recording failed login", err)
		}
		h.Logger.Warn(h.Logger.WithFields(ctx, map[string]any{
			"username": req.Username,
			"remote":   clientIP(r, h.TrustProxy),
		}), "login failed")
		writeError(ctx, h.Logger, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid username or password"))
		return
	}

	if !user.Active() {
		writeError(ctx, h.Logger, w, pkgerrors.New(pkgerrors.CodeForbidden, "Account is inactive"))
		return
	}

	token, claims, err := h.Tokens.Generate(user)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	if err := store.RecordActivity(ctx, h.DB, user.ID, model.ActionLogin, fmt.Sprintf("User %s logged in", user.Username)); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.Logger.Info(h.Logger.WithUser(ctx, user.ID, user.Username), "user logged in")
	jsonSuccess(w, "Login successful", loginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	})
}

// Logout handles POST /api/auth/logout. The token stays revoked until it
// would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := GetClaims(ctx)
	user := CurrentUser(ctx)
	if claims == nil || user == nil {
		writeError(ctx, h.Logger, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required"))
		return
	}

	if err := store.RevokeToken(ctx, h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	if err := store.RecordActivity(ctx, h.DB, user.ID, model.ActionLogout, fmt.Sprintf("User %s logged out", user.Username)); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.Logger.Info(ctx, "user logged out")
	jsonSuccess(w, "Logged out", nil)
}
