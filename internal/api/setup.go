package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/phonestock/internal/auth"
	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/model"
	"github.com/erazemk/phonestock/internal/store"
)

// SetupHandler serves the one-time admin recovery endpoint.
type SetupHandler struct {
	DB *sql.DB
	// Token enables the endpoint when non-empty. Each token works once.
	Token      string
	Logger     *logger.Logger
	TrustProxy bool
}

type resetAdminRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,max=200"`
}

type resetAdminResponse struct {
	Username string `json:"username"`
}

// ResetAdminPassword handles POST /setup/reset-admin-password.
func (h *SetupHandler) ResetAdminPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Token == "" {
		writeError(ctx, h.Logger, w, pkgerrors.New(pkgerrors.CodeNotFound, "Setup is disabled"))
		return
	}

	var req resetAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	if !auth.SetupTokenMatches(h.Token, req.Token) {
		h.Logger.Warn(h.Logger.WithField(ctx, "remote", clientIP(r, h.TrustProxy)), "setup token rejected")
		writeError(ctx, h.Logger, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid setup token"))
		return
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(ctx, h.Logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	admin, err := store.ResetAdminPasswordWithSetupToken(ctx, h.DB, auth.SetupTokenDigest(req.Token), hash)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	h.Logger.Info(h.Logger.WithField(ctx, "admin", admin.Username), "admin password reset with setup token")
	jsonSuccess(w, "Admin password reset", resetAdminResponse{Username: admin.Username})
}
