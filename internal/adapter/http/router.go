package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quayside/walletd/internal/adapter/http/handler"
	"github.com/quayside/walletd/internal/adapter/http/middleware"
	"github.com/quayside/walletd/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	WalletHandler      *handler.WalletHandler
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler
	JWTManager         *auth.JWTManager
	Logging            *middleware.LoggingMiddleware
	Metrics            *middleware.MetricsMiddleware
	Recovery           *middleware.RecoveryMiddleware
	Idempotency        *middleware.IdempotencyMiddleware
	LoginLimiter       *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(cfg.Recovery.Wrap)
	r.Use(cfg.Logging.Wrap)
	r.Use(cfg.Metrics.Wrap)

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)

			r.Group(func(r chi.Router) {
				if cfg.LoginLimiter != nil {
					r.Use(cfg.LoginLimiter.Limit)
				}
				r.Post("/login", cfg.AuthHandler.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
				r.Get("/me", cfg.AuthHandler.Me)
			})
		})

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			if cfg.Idempotency != nil {
				r.Use(cfg.Idempotency.Wrap)
			}

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", cfg.WalletHandler.Get)
				r.Post("/deposit", cfg.WalletHandler.Deposit)
				r.Post("/withdraw", cfg.WalletHandler.Withdraw)
				r.Post("/transfer", cfg.WalletHandler.Transfer)
				r.Get("/transactions", cfg.WalletHandler.ListTransactions)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/{id}", cfg.TransactionHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", cfg.TransactionHandler.List)
					r.Post("/{id}/reverse", cfg.TransactionHandler.Reverse)
				})
			})
		})
	})

	return r
}
