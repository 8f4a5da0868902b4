package api

import (
	"bytes"
	"database/sql"
	"net/http"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/inspect"
	"github.com/erazemk/phonestock/internal/logger"
)

// SchemaHandler serves the diagnostic schema report.
type SchemaHandler struct {
	DB     *sql.DB
	Driver string
	Page   *inspect.Page
	Logger *logger.Logger
}

// Show handles GET /admin/schema. Inspection failures are part of the
// report; only rendering failures produce an error response.
func (h *SchemaHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rep := inspect.Inspect(ctx, h.DB, h.Driver)

	if r.URL.Query().Get("format") == "json" {
		jsonSuccess(w, "Schema loaded", rep)
		return
	}

	var buf bytes.Buffer
	if err := h.Page.Render(&buf, rep); err != nil {
		writeError(ctx, h.Logger, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering schema page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
