package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/bank-be/internal/auth"
	"github.com/hongminglow/bank-be/internal/config"
	"github.com/hongminglow/bank-be/internal/http/handlers"
	"github.com/hongminglow/bank-be/internal/metrics"
	"github.com/hongminglow/bank-be/internal/middleware"
)

// UserService authenticates users and loads their profiles.
type UserService interface {
	handlers.Authenticator
	handlers.UserFinder
}

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Users      UserService
	Bills      handlers.BillLister
	Currencies handlers.CurrencyLister
	Tokens     *auth.TokenManager
	Metrics    *metrics.Registry
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner  *http.Server
	health *handlers.HealthHandler
}

// New wires up middleware, routes, and returns a server whose health endpoint
// reports "starting" until MarkReady is called.
func New(cfg config.Config, deps Deps) *Server {
	mux := http.NewServeMux()

	health := handlers.NewHealthHandler(time.Now())
	health.Register(mux)
	handlers.NewAuthHandler(deps.Users, deps.Tokens).Register(mux, middleware.NewClientLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst).Middleware)
	handlers.NewCurrencyHandler(deps.Currencies).Register(mux)
	requireAuth := middleware.RequireAuth(deps.Tokens)
	handlers.NewUserHandler(deps.Users).Register(mux, requireAuth)
	handlers.NewBillHandler(deps.Bills).Register(mux, requireAuth)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Metrics.Gatherer(), promhttp.HandlerOpts{}))
	}

	handler := middleware.RequestID(middleware.CORS(cfg.CORSOrigins, middleware.Logging(deps.Metrics, mux)))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, health: health}
}

// Handler exposes the routed handler chain.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// MarkReady switches the health endpoint to "ok".
func (s *Server) MarkReady() {
	s.health.MarkReady()
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
