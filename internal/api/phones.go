package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/store"
)

// PhonesHandler handles phone endpoints.
type PhonesHandler struct {
	DB     *sql.DB
	Logger *logger.Logger
}

// Delete handles GET /api/phones/delete?id= and DELETE /api/phones/{id}.
// The phone is marked unavailable, never removed.
func (h *PhonesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(idParam(r), "Invalid phone ID")
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	phone, changed, err := store.MarkPhoneUnavailable(ctx, h.DB, id, actorID(ctx))
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	if changed {
		h.Logger.Info(h.Logger.WithFields(ctx, map[string]any{"phone_id": phone.ID, "imei": phone.IMEI}), "phone marked unavailable")
	}
	jsonSuccess(w, "Phone marked as unavailable", nil)
}

// idParam returns the {id} path parameter, falling back to the id query parameter.
func idParam(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return r.URL.Query().Get("id")
}
