package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pravino/tapcore/internal/adapter/http/handler"
	"github.com/pravino/tapcore/internal/adapter/http/middleware"
	"github.com/pravino/tapcore/internal/infrastructure/auth"
	"github.com/pravino/tapcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PaymentHandler    *handler.PaymentHandler
	LedgerHandler     *handler.LedgerHandler
	PredictionHandler *handler.PredictionHandler
	SpinHandler       *handler.SpinHandler
	WithdrawalHandler *handler.WithdrawalHandler
	SettlementHandler *handler.SettlementHandler
	OracleHandler     *handler.OracleHandler
	HealthHandler     *handler.HealthHandler

	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	Metrics          *middleware.MetricsMiddleware
	Logging          *middleware.LoggingMiddleware
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Create)
			r.Get("/{txHash}", cfg.PaymentHandler.Get)
			r.Get("/{txHash}/allocations", cfg.PaymentHandler.ListAllocations)
		})

		// Per-user resources
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/ledger", cfg.LedgerHandler.ListEntries)
			r.Get("/ledger/verify", cfg.LedgerHandler.VerifyChain)
			r.Post("/spins", cfg.SpinHandler.Spin)
			r.Get("/spins", cfg.SpinHandler.History)
		})

		// Predictions
		r.Post("/predictions", cfg.PredictionHandler.Submit)

		// Withdrawals
		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", cfg.WithdrawalHandler.Create)
			r.Get("/{id}", cfg.WithdrawalHandler.Get)

			// Admin review operations
			r.Group(func(r chi.Router) {
				if cfg.JWTManager != nil {
					r.Use(middleware.AdminAuth(cfg.JWTManager))
				}
				r.Post("/batch", cfg.WithdrawalHandler.Batch)
				r.Post("/{id}/release", cfg.WithdrawalHandler.Release)
				r.Post("/{id}/approve", cfg.WithdrawalHandler.Approve)
				r.Post("/{id}/reject", cfg.WithdrawalHandler.Reject)
			})
		})

		// Settlement summaries and oracle status
		r.Get("/settlements", cfg.SettlementHandler.ListSummaries)
		r.Get("/oracle", cfg.OracleHandler.Status)
	})

	return r
}
