package api

import (
	"database/sql"
	"fmt"
	"net/http"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/model"
	"github.com/erazemk/phonestock/internal/store"
)

// EmployeesHandler handles employee endpoints.
type EmployeesHandler struct {
	DB     *sql.DB
	Logger *logger.Logger
}

type employeeStatusRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// SetStatus handles POST /api/employees/status. The request is fully
// validated before the store is touched.
func (h *EmployeesHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req employeeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	actor := actorID(ctx)
	if req.UserID == actor && req.Status == model.UserStatusInactive {
		writeError(ctx, h.Logger, w, pkgerrors.New(pkgerrors.CodeValidation, "You cannot deactivate your own account"))
		return
	}

	user, changed, err := store.SetEmployeeStatus(ctx, h.DB, req.UserID, req.Status, actor)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	if changed {
		h.Logger.Info(h.Logger.WithFields(ctx, map[string]any{
			"employee_id": user.ID,
			"status":      user.Status,
		}), "employee status changed")
	}
	jsonSuccess(w, fmt.Sprintf("Employee status updated to %s", req.Status), nil)
}

// List handles GET /api/employees.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonSuccess(w, "Employees loaded", users)
}
