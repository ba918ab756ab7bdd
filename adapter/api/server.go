// Package api exposes the portal's subscription, promo and checkout operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// Server is the portal HTTP API server.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	handler *Handler
	auth    *Authenticator
	health  *observability.HealthRegistry
	metrics http.Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ServerDeps are the pieces a Server routes to. Health and Metrics are optional.
type ServerDeps struct {
	Handler *Handler
	Auth    *Authenticator
	Health  *observability.HealthRegistry
	Metrics http.Handler
	Timings observability.Metrics
}

// NewServer creates a new portal API server.
func NewServer(cfg ServerConfig, deps ServerDeps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	timings := deps.Timings
	if timings == nil {
		timings = observability.NoopMetrics{}
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		handler: deps.Handler,
		auth:    deps.Auth,
		health:  deps.Health,
		metrics: deps.Metrics,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      RequestContext(Instrument(s.mux, timings, logger)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	h := s.handler
	authed := func(fn http.HandlerFunc) http.Handler { return s.auth.Require(fn) }
	coach := func(fn http.HandlerFunc) http.Handler { return s.auth.Require(RequireCoach(fn)) }

	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}

	s.mux.HandleFunc("GET /api/v1/plans", h.ListPlans)

	// Subscriptions
	s.mux.Handle("GET /api/v1/subscription/status", authed(h.SubscriptionStatus))
	s.mux.Handle("GET /api/v1/subscription/progress", authed(h.SubscriptionProgress))
	s.mux.Handle("GET /api/v1/subscriptions", authed(h.SubscriptionHistory))
	s.mux.Handle("POST /api/v1/subscriptions/{id}/cancel", authed(h.CancelSubscription))

	// Promo codes
	s.mux.Handle("POST /api/v1/promo/validate", authed(h.ValidatePromo))
	s.mux.Handle("POST /api/v1/promo/apply", coach(h.ApplyPromo))
	s.mux.Handle("GET /api/v1/promo/codes", coach(h.ListPromoCodes))
	s.mux.Handle("POST /api/v1/promo/codes", coach(h.CreatePromoCode))

	// Checkout
	s.mux.Handle("POST /api/v1/checkout/sessions", authed(h.StartCheckout))
	s.mux.Handle("GET /api/v1/checkout/sessions/{id}", authed(h.GetCheckout))
	s.mux.Handle("POST /api/v1/checkout/sessions/{id}/{action}", authed(h.CheckoutAction))

	// Plan content, gated on an active subscription
	s.mux.Handle("GET /api/v1/workouts", s.auth.Require(h.Gate(http.HandlerFunc(h.Workouts))))
	s.mux.Handle("GET /api/v1/diets", s.auth.Require(h.Gate(http.HandlerFunc(h.Diets))))
}

// handleHealth reports the aggregated dependency health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": string(observability.HealthStatusHealthy),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting portal API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down portal API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}
