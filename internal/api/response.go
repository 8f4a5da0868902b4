package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/logger"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The status line is already sent; nothing useful can be reported.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// jsonSuccess writes a 200 success envelope.
func jsonSuccess(w http.ResponseWriter, message string, data any) {
	jsonResponse(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// jsonFailure writes a failure envelope with a caller-safe message.
func jsonFailure(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, envelope{Success: false, Message: message})
}

// writeError maps err to a status and public message. Errors whose details
// must not reach the caller are logged in full.
func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	status, message := pkgerrors.Public(err)
	if status >= http.StatusInternalServerError && logg != nil {
		typed := pkgerrors.As(err)
		code := pkgerrors.CodeInternal
		if typed != nil {
			code = typed.Code()
		}
		logg.Error(logg.WithField(ctx, "error_code", string(code)), "request.error", err)
	}

	jsonFailure(w, status, message)
}
