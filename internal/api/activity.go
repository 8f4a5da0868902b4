package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/model"
	"github.com/erazemk/phonestock/internal/store"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ActivityHandler exposes the audit log.
type ActivityHandler struct {
	DB     *sql.DB
	Logger *logger.Logger
}

// List handles GET /api/activity?limit=N.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := parseQueryInt(r, "limit", defaultActivityLimit, 1, maxActivityLimit)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	entries, err := store.ListActivity(ctx, h.DB, limit)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	if entries == nil {
		entries = []model.ActivityLog{}
	}

	jsonSuccess(w, "Activity loaded", entries)
}
