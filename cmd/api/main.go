// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Gatehouse HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire sessions, throttling and the audit trail.
//  7. Wire the login orchestrator and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/taibuivan/gatehouse/internal/api"
	"github.com/taibuivan/gatehouse/internal/audit"
	"github.com/taibuivan/gatehouse/internal/identity"
	"github.com/taibuivan/gatehouse/internal/login"
	"github.com/taibuivan/gatehouse/internal/platform/config"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/migration"
	pgstore "github.com/taibuivan/gatehouse/internal/platform/postgres"
	redisstore "github.com/taibuivan/gatehouse/internal/platform/redis"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/platform/throttle"
	"github.com/taibuivan/gatehouse/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "gatehouse"))
	slog.SetDefault(log)

	log.Info("[Gatehouse] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "gatehouse"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_driver", cfg.SessionDriver),
		slog.String("throttle_driver", cfg.LoginThrottleDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Sessions, Throttling & Audit ───────────────────────────────────
	signer, err := sec.NewSessionSigner(cfg.SessionSecret, constants.SessionIssuer)
	must(log, err, "initialize session signer")

	store, stopStore := newSessionStore(cfg, rdb)
	defer stopStore()

	sessions := session.NewManager(store, cfg.SessionLifetime, cfg.SessionRememberLifetime, log)

	loginThrottles, closeThrottles := newLoginThrottles(cfg, rdb)
	defer closeThrottles()

	trustedProxies, err := cfg.TrustedProxyPrefixes()
	must(log, err, "parse trusted proxies")

	globalLimiter := throttle.NewMemory(rate.Limit(constants.DefaultRateLimitRPS), constants.DefaultRateLimitBurst)
	defer globalLimiter.Close()

	recorder := audit.NewAsyncRecorder(audit.NewPostgresRecorder(pool), cfg.AuditQueueSize, log)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := recorder.Close(drainCtx); err != nil {
			log.Error("audit_drain_failed", slog.Any("error", err))
		}
	}()

	// ── 7. Login Wiring ───────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	decoyHash, err := sec.NewDecoyHash()
	must(log, err, "generate decoy hash")

	orchestrator := login.NewOrchestrator(
		sessions,
		sec.BcryptVerifier{},
		recorder,
		[]login.Authenticator{
			login.NewAdminAuthenticator(identity.NewAdminRepository(pool)),
			login.NewStaffAuthenticator(identity.NewStaffRepository(pool)),
		},
		login.WithParallelLookup(cfg.LoginParallelLookup),
		login.WithMetrics(login.NewMetrics(registry)),
		login.WithDecoyHash(decoyHash),
	)

	loginHandler := login.NewHandler(orchestrator, sessions, signer, loginThrottles, login.HandlerConfig{
		CookieName:   cfg.SessionCookieName,
		CookieSecure: cfg.CookieSecure,
		Landing: map[login.Destination]string{
			login.DestinationAdminDashboard: cfg.AdminLandingPath,
			login.DestinationStaffProfile:   cfg.StaffLandingPath,
		},
	})

	// Health handlers (wired with real dependency checkers)
	liveness, readiness := api.NewHealthHandlers([]api.DependencyCheck{
		{Name: "postgres", Ping: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Ping: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Handlers{
		Liveness:        liveness,
		Readiness:       readiness,
		Metrics:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Login:           loginHandler,
		SessionVerifier: signer,
		SessionStarter:  sessions,
		RateLimit:       globalLimiter,
		TrustedProxies:  trustedProxies,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
	}

	log.Info("server stopped")
}

// newSessionStore picks the guard session backend configured by SESSION_DRIVER.
func newSessionStore(cfg *config.Config, rdb *redis.Client) (session.Store, func()) {
	if cfg.SessionDriver == config.DriverMemory {
		memory := session.NewMemoryStore()
		return memory, memory.StartSweeper(constants.SessionSweepInterval)
	}
	return session.NewRedisStore(rdb), func() {}
}

// newLoginThrottles picks the login quota backend. Both quotas share the window;
// the per email one has its own, larger limit.
func newLoginThrottles(cfg *config.Config, rdb *redis.Client) (login.Throttles, func()) {
	if cfg.LoginThrottleDriver == config.DriverMemory {
		perClient := throttle.NewMemoryWindow(cfg.LoginThrottleLimit, cfg.LoginThrottleWindow)
		perEmail := throttle.NewMemoryWindow(cfg.LoginEmailThrottleLimit, cfg.LoginThrottleWindow)
		return login.Throttles{PerClient: perClient, PerEmail: perEmail}, func() {
			perClient.Close()
			perEmail.Close()
		}
	}
	return login.Throttles{
		PerClient: throttle.NewRedis(rdb, cfg.LoginThrottleLimit, cfg.LoginThrottleWindow),
		PerEmail:  throttle.NewRedis(rdb, cfg.LoginEmailThrottleLimit, cfg.LoginThrottleWindow),
	}, func() {}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
