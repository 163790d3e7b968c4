package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kontobank/kontobank/internal/middleware"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Index    *Handler
	Health   *HealthHandler
	Metrics  *MetricsHandler
	Auth     *AuthHandler
	Accounts *AccountHandler

	Logger      *slog.Logger
	Security    middleware.SecurityConfig
	CORS        middleware.CORSConfig
	PrintStacks bool
}

// NewRouter builds the chi router with global middleware and all routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.PrintStacks))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Security.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	}

	r.NotFound(cfg.Index.NotFound)
	r.MethodNotAllowed(cfg.Index.MethodNotAllowed)

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", cfg.Metrics.Metrics)
	r.Get("/", cfg.Index.Index)
	r.Get("/openapi.yaml", cfg.Index.OpenAPI)

	r.Post("/users", cfg.Auth.Register)
	r.Post("/sessions", cfg.Auth.Login)
	r.Delete("/sessions", cfg.Auth.Logout)

	r.Get("/me/accounts", cfg.Accounts.Balance)
	r.Post("/me/accounts", cfg.Accounts.Balance)
	r.Post("/me/accounts/transactions", cfg.Accounts.Deposit)

	return r
}
