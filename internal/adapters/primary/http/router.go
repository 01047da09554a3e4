package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/helpdesk-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-backend/internal/config"
	"github.com/lorrc/helpdesk-backend/internal/core/domain"
)

// RouterDeps groups everything the router mounts. The rate limiters, the
// metrics observer and the metrics handler are optional.
type RouterDeps struct {
	Config        *config.Config
	Logger        *slog.Logger
	Authenticator *mw.Authenticator

	Auth      *AuthHandler
	Tickets   *TicketHandler
	Users     *UserHandler
	Health    *HealthHandler
	WebSocket http.Handler

	GeneralLimiter *mw.RateLimiter
	AuthLimiter    *mw.RateLimiter
	CallerLimiter  *mw.RateLimitByKey

	HTTPObserver   mw.HTTPObserver
	MetricsHandler http.Handler
}

// NewRouter builds the chi router serving the whole API.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(d.Logger))
	r.Use(mw.RecoveryLogger(d.Logger))
	if d.HTTPObserver != nil {
		r.Use(mw.Metrics(d.HTTPObserver))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORS.AllowedOrigins,
		AllowedMethods:   d.Config.CORS.AllowedMethods,
		AllowedHeaders:   d.Config.CORS.AllowedHeaders,
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: d.Config.CORS.AllowCredentials,
		MaxAge:           d.Config.CORS.MaxAge,
	}))
	if d.GeneralLimiter != nil {
		r.Use(d.GeneralLimiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteErrors(w, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteErrors(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Probes and scraping stay outside /api/v1.
	d.Health.RegisterRoutes(r)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, d.Config.Metrics.Path, d.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware)
			}
			r.Route("/auth", d.Auth.RegisterRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(d.Authenticator.Middleware)
			if d.CallerLimiter != nil {
				r.Use(d.CallerLimiter.PerCaller)
			}

			r.Get("/ws", d.WebSocket.ServeHTTP)
			r.Route("/tickets", d.Tickets.RegisterRoutes)
			r.Route("/users", func(r chi.Router) {
				r.Use(mw.RequireRole(domain.RoleAdmin))
				d.Users.RegisterRoutes(r)
			})
		})
	})

	return r
}
