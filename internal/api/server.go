// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and the login
handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/gatehouse/internal/login"
	"github.com/taibuivan/gatehouse/internal/platform/config"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/middleware"
	"github.com/taibuivan/gatehouse/internal/platform/throttle"
	"github.com/taibuivan/gatehouse/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups the HTTP handler sets and the session plumbing they rely on.
type Handlers struct {
	// Liveness is the /health handler. It answers 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It answers 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Metrics exposes the Prometheus registry. Optional.
	Metrics http.Handler

	// Login handles the unified login routes.
	Login *login.Handler

	// SessionVerifier validates the session cookie signature.
	SessionVerifier middleware.SessionVerifier

	// SessionStarter loads or starts the guard session of each API request.
	SessionStarter middleware.SessionStarter

	// RateLimit is the global per-IP policy. Nil disables it.
	RateLimit throttle.Policy

	// TrustedProxies are the peers allowed to report the client address.
	TrustedProxies []netip.Prefix
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()

	limiter := h.RateLimit
	if limiter == nil {
		limiter = throttle.Unlimited{}
	}

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.TrustedRealIP(h.TrustedProxies))
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.RateLimit(limiter))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health checks for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}

	// # Application API
	// Every API route sees the visitor's guard session.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.LoadSession(cfg.SessionCookieName, h.SessionVerifier, h.SessionStarter))

		api.Mount("/auth", h.Login.Routes())

		api.With(middleware.RequireGuard(session.GuardAdmin)).
			Get("/admin/dashboard", landing(session.GuardAdmin))
		api.With(middleware.RequireGuard(session.GuardStaff)).
			Get("/staff/profile", landing(session.GuardStaff))
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the root router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
