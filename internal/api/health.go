package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/logger"
)

// Pinger is a dependency that can report its own health.
type Pinger interface {
	Ping(context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	DB     *sql.DB
	Redis  Pinger
	Env    string
	Logger *logger.Logger
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Phonestock-Env", h.Env)
	jsonSuccess(w, "live", map[string]string{"status": "live"})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("X-Phonestock-Env", h.Env)
	if err := h.DB.PingContext(ctx); err != nil {
		writeError(ctx, h.Logger, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
		return
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx); err != nil {
			writeError(ctx, h.Logger, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
			return
		}
	}
	jsonSuccess(w, "ready", map[string]string{"status": "ready"})
}
