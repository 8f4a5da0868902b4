package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/phonestock/internal/auth"
	"github.com/erazemk/phonestock/internal/inspect"
	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/metrics"
	"github.com/erazemk/phonestock/internal/model"
)

// Options carries the router's dependencies.
type Options struct {
	DB     *sql.DB
	Driver string
	Tokens *auth.Tokens
	Logger *logger.Logger
	// Metrics may be nil; collection is then skipped.
	Metrics *metrics.Metrics
	// SchemaPage renders /admin/schema.
	SchemaPage *inspect.Page

	// Limiter throttles logins when set.
	Limiter   RateLimiter
	LoginRate LoginRateLimitPolicy
	// Redis is pinged by the readiness probe when set.
	Redis Pinger

	Env          string
	LoginURL     string
	CookieSecure bool
	// TrustProxy reads client addresses from X-Forwarded-For.
	TrustProxy bool
	SetupToken string
	Now        func() time.Time
}

// NewRouter creates the HTTP router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	loginURL := opts.LoginURL
	if loginURL == "" {
		loginURL = "/login"
	}

	loginRate := opts.LoginRate
	loginRate.TrustProxy = opts.TrustProxy

	authHandler := &AuthHandler{DB: opts.DB, Tokens: opts.Tokens, Logger: logg, CookieSecure: opts.CookieSecure, TrustProxy: opts.TrustProxy}
	phonesHandler := &PhonesHandler{DB: opts.DB, Logger: logg}
	accessoriesHandler := &AccessoriesHandler{DB: opts.DB, Logger: logg}
	employeesHandler := &EmployeesHandler{DB: opts.DB, Logger: logg}
	inventoryHandler := &InventoryHandler{DB: opts.DB, Logger: logg, Metrics: opts.Metrics, Now: opts.Now}
	activityHandler := &ActivityHandler{DB: opts.DB, Logger: logg}
	schemaHandler := &SchemaHandler{DB: opts.DB, Driver: opts.Driver, Page: opts.SchemaPage, Logger: logg}
	setupHandler := &SetupHandler{DB: opts.DB, Token: opts.SetupToken, Logger: logg, TrustProxy: opts.TrustProxy}
	healthHandler := &HealthHandler{DB: opts.DB, Redis: opts.Redis, Env: opts.Env, Logger: logg}

	authMW := AuthMiddleware(opts.Tokens, opts.DB, logg)
	requireAdmin := RequireRole(logg, model.RoleAdmin)
	redirectAdmin := RedirectMiddleware(opts.Tokens, opts.DB, logg, model.RoleAdmin, loginURL)

	r := chi.NewRouter()
	r.Use(RequestID(logg))
	r.Use(Logging(logg))
	r.Use(Recoverer(logg))
	r.Use(Metrics(opts.Metrics))

	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Post("/setup/reset-admin-password", setupHandler.ResetAdminPassword)

	r.Route("/api", func(r chi.Router) {
		// Public: login.
		r.With(LoginRateLimit(loginRate, opts.Limiter, opts.Metrics, logg)).
			Post("/auth/login", authHandler.Login)

		// File download: browsers without a session are sent to the login page.
		r.With(redirectAdmin).Get("/inventory/export", inventoryHandler.Export)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Post("/auth/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)

				r.Get("/phones/delete", phonesHandler.Delete)
				r.Delete("/phones/{id}", phonesHandler.Delete)

				r.Get("/accessories/delete", accessoriesHandler.Delete)
				r.Delete("/accessories/{id}", accessoriesHandler.Delete)

				r.Get("/employees", employeesHandler.List)
				r.Post("/employees/status", employeesHandler.SetStatus)

				r.Get("/inventory", inventoryHandler.List)
				r.Get("/activity", activityHandler.List)
			})
		})
	})

	if opts.SchemaPage != nil {
		r.With(authMW, requireAdmin).Get("/admin/schema", schemaHandler.Show)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonFailure(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
