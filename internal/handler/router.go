package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/librarydb/librarydb/internal/middleware"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Logger   *slog.Logger
	Security middleware.SecurityConfig

	// Session attaches the session and identity to each request.
	Session func(http.Handler) http.Handler
	// SearchLimit throttles the public mini search endpoints.
	SearchLimit func(http.Handler) http.Handler

	API      *APIHandler
	Panel    *PanelHandler
	Sessions *SessionHandler
	Health   *HealthHandler
	Metrics  *MetricsHandler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))

	// Probes and metrics (no session)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(cfg.Session)

		r.Get("/", cfg.Panel.Home)
		r.Get("/darkmode", cfg.Sessions.DarkMode)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", cfg.Sessions.LoginForm)
			r.Post("/login", cfg.Sessions.Login)
			r.Get("/logout", cfg.Sessions.Logout)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.RequirePage("/me/profile"))
			r.Get("/", cfg.Panel.Me)
			r.Get("/profile", cfg.Panel.Profile)
			r.Get("/borrowings", cfg.Panel.Borrowings)
			r.Post("/delete", cfg.Panel.Delete)
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/media/{mediaID}", cfg.API.MediaDetail)

			r.Route("/mini_search", func(r chi.Router) {
				if cfg.SearchLimit != nil {
					r.Use(cfg.SearchLimit)
				}
				r.Post("/author", cfg.API.SearchAuthors)
				r.Post("/media", cfg.API.SearchMedia)
			})

			r.Route("/user", func(r chi.Router) {
				r.Use(middleware.RequireSession())
				r.Post("/borrow/{mediaID}", cfg.API.Borrow)
				r.Post("/update/{field}", cfg.API.UpdateField)
				r.Post("/delete", cfg.API.DeleteAccount)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}
