// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/gatehouse/internal/api"
	"github.com/taibuivan/gatehouse/internal/audit"
	"github.com/taibuivan/gatehouse/internal/identity"
	"github.com/taibuivan/gatehouse/internal/login"
	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/config"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type adminTable map[string]*identity.AdminPrincipal

func (table adminTable) FindByEmail(_ context.Context, email string) (*identity.AdminPrincipal, error) {
	if row, ok := table[email]; ok {
		return row, nil
	}
	return nil, apperr.NotFound("Admin")
}

type staffTable map[string]*identity.StaffPrincipal

func (table staffTable) FindByEmail(_ context.Context, email string) (*identity.StaffPrincipal, error) {
	if row, ok := table[email]; ok {
		return row, nil
	}
	return nil, apperr.NotFound("Staff")
}

func newTestServer(t *testing.T, checks []api.DependencyCheck) http.Handler {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		ServerPort:        "0",
		Environment:       "test",
		SessionCookieName: "gatehouse_session",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	signer, err := sec.NewSessionSigner(testSecret, "gatehouse-test")
	require.NoError(t, err)
	manager := session.NewManager(session.NewMemoryStore(), time.Hour, 24*time.Hour, logger)

	registry := prometheus.NewRegistry()
	orchestrator := login.NewOrchestrator(
		manager,
		sec.BcryptVerifier{},
		audit.NopRecorder{},
		[]login.Authenticator{
			login.NewAdminAuthenticator(adminTable{"a@x.com": {ID: "admin-1", Email: "a@x.com", PasswordHash: string(hash)}}),
			login.NewStaffAuthenticator(staffTable{}),
		},
		login.WithMetrics(login.NewMetrics(registry)),
		login.WithDecoyHash(string(hash)),
	)

	liveness, readiness := api.NewHealthHandlers(checks, logger)
	server := api.NewServer(cfg, logger, api.Handlers{
		Liveness:        liveness,
		Readiness:       readiness,
		Metrics:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Login:           login.NewHandler(orchestrator, manager, signer, login.Throttles{}, login.HandlerConfig{CookieName: cfg.SessionCookieName}),
		SessionVerifier: signer,
		SessionStarter:  manager,
	})
	return server.Handler()
}

/*
TestServer_Health verifies the liveness and readiness endpoints.
*/
func TestServer_Health(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		checks []api.DependencyCheck
		want   int
		status string
	}{
		{"liveness", "/health", nil, http.StatusOK, "ok"},
		{"ready", "/ready", []api.DependencyCheck{
			{Name: "postgres", Ping: func(context.Context) error { return nil }},
		}, http.StatusOK, "ready"},
		{"degraded", "/ready", []api.DependencyCheck{
			{Name: "postgres", Ping: func(context.Context) error { return nil }},
			{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
		}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			newTestServer(t, tt.checks).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.want, recorder.Code)

			var payload struct {
				Data struct {
					Status string `json:"status"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
			assert.Equal(t, tt.status, payload.Data.Status)
		})
	}
}

/*
TestServer_GuardedLanding verifies that landing routes require their own guard.
*/
func TestServer_GuardedLanding(t *testing.T) {
	handler := newTestServer(t, nil)

	// Anonymous visitors are refused everywhere
	for _, path := range []string{"/api/v1/admin/dashboard", "/api/v1/staff/profile"} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, path)
	}

	// Sign in as admin
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/auth/unified-login",
		strings.NewReader(`{"email":"a@x.com","password":"Secret1"}`)))
	require.Equal(t, http.StatusOK, recorder.Code)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/admin/dashboard", http.StatusOK},
		{"/api/v1/staff/profile", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		request := httptest.NewRequest(http.MethodGet, tt.path, nil)
		request.AddCookie(cookies[0])

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, tt.want, recorder.Code, tt.path)
	}
}

/*
TestServer_Metrics verifies that login counters are exposed.
*/
func TestServer_Metrics(t *testing.T) {
	handler := newTestServer(t, nil)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/auth/unified-login",
		strings.NewReader(`{"email":"nobody@x.com","password":"whatever"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `gatehouse_login_attempts_total{guard="none",outcome="rejected"} 1`)
}
