package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/erazemk/phonestock/internal/auth"
	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/metrics"
	"github.com/erazemk/phonestock/internal/model"
	"github.com/erazemk/phonestock/internal/store"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	userKey   contextKey = "user"
)

const (
	requestIDHeader = "X-Request-Id"
	tokenCookie     = "token"
)

// RequestID tags every request with an id, taken from the caller when present.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := logg.WithRequestID(r.Context(), reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Logging logs HTTP requests with method, path, status, and duration.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			ctx = logg.WithFields(ctx, map[string]any{
				"status":      rec.code(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, "request.complete")
		})
	}
}

// Recoverer turns a panic into a 500 failure envelope.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err := fmt.Errorf("panic: %v", rec)
					writeError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records request counts and latency per route pattern.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			m.ObserveRequest(r.Method, route, rec.code(), time.Since(start))
		})
	}
}

// requestToken returns the bearer token or, failing that, the token cookie.
func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// authenticate resolves the caller from the request token. The user is
// reloaded so that deactivated accounts lose access immediately.
func authenticate(ctx context.Context, r *http.Request, tokens *auth.Tokens, db *sql.DB) (*auth.Claims, *model.User, error) {
	tokenStr := requestToken(r)
	if tokenStr == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}

	claims, err := tokens.Validate(tokenStr)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid or expired token")
	}

	revoked, err := store.IsTokenRevoked(ctx, db, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token has been revoked")
	}

	user, err := store.GetUser(ctx, db, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !user.Active() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Account is not active")
	}

	return claims, user, nil
}

func withIdentity(ctx context.Context, logg *logger.Logger, claims *auth.Claims, user *model.User) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	ctx = context.WithValue(ctx, userKey, user)
	return logg.WithUser(ctx, user.ID, user.Username)
}

// AuthMiddleware validates the caller's token and adds the identity to the context.
func AuthMiddleware(tokens *auth.Tokens, db *sql.DB, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, user, err := authenticate(r.Context(), r, tokens, db)
			if err != nil {
				writeError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), logg, claims, user)))
		})
	}
}

// RedirectMiddleware is AuthMiddleware plus a role check for page and file
// endpoints: callers without a usable admin identity are sent to loginURL.
func RedirectMiddleware(tokens *auth.Tokens, db *sql.DB, logg *logger.Logger, minimum, loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, user, err := authenticate(r.Context(), r, tokens, db)
			if err != nil {
				if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
					writeError(r.Context(), logg, w, err)
					return
				}
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}
			if !model.RoleAtLeast(user.Role, minimum) {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), logg, claims, user)))
		})
	}
}

// RequireRole returns middleware that checks if the user has at least the given role.
func RequireRole(logg *logger.Logger, minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required"))
				return
			}
			if !model.RoleAtLeast(user.Role, minimum) {
				writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// CurrentUser retrieves the authenticated user from the context.
func CurrentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// actorID returns the authenticated user's id, or 0 for system actions.
func actorID(ctx context.Context) int64 {
	if user := CurrentUser(ctx); user != nil {
		return user.ID
	}
	return 0
}
