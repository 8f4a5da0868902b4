package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/store"
)

// AccessoriesHandler handles accessory endpoints.
type AccessoriesHandler struct {
	DB     *sql.DB
	Logger *logger.Logger
}

// Delete handles GET /api/accessories/delete?id= and DELETE /api/accessories/{id}.
func (h *AccessoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(idParam(r), "Invalid accessory ID")
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	acc, changed, err := store.MarkAccessoryUnavailable(ctx, h.DB, id, actorID(ctx))
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	if changed {
		h.Logger.Info(h.Logger.WithField(ctx, "accessory_id", acc.ID), "accessory marked unavailable")
	}
	jsonSuccess(w, "Accessory marked as unavailable", nil)
}
