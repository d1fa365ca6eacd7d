// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/middleware"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/platform/throttle"
	"github.com/taibuivan/gatehouse/internal/session"
)

const (
	testCookie = "gatehouse_session"
	testSecret = "0123456789abcdef0123456789abcdef"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

type stubPolicy struct {
	decision throttle.Decision
	err      error
	keys     []string
}

func (policy *stubPolicy) Allow(_ context.Context, key string) (throttle.Decision, error) {
	policy.keys = append(policy.keys, key)
	return policy.decision, policy.err
}

type failingStarter struct{}

func (failingStarter) Start(context.Context, string) (*session.Session, error) {
	return nil, errors.New("redis down")
}

/*
TestRequestID verifies generation and propagation of correlation IDs.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	t.Run("Generates when missing", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
	})

	t.Run("Keeps client value", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Request-ID", "client-id")
		handler.ServeHTTP(httptest.NewRecorder(), request)

		assert.Equal(t, "client-id", seen)
	})
}

/*
TestRateLimit verifies quota enforcement and fail-open behaviour.
*/
func TestRateLimit(t *testing.T) {
	t.Run("Rejects with Retry-After", func(t *testing.T) {
		policy := &stubPolicy{decision: throttle.Decision{Allowed: false, RetryAfter: 1500 * time.Millisecond}}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Real-IP", "10.0.0.9")
		recorder := httptest.NewRecorder()

		middleware.RateLimit(policy)(okHandler).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
		assert.Equal(t, "2", recorder.Header().Get("Retry-After"))
		assert.Equal(t, []string{"ip:192.0.2.1"}, policy.keys, "untrusted headers never pick the key")
	})

	t.Run("Fails open on policy error", func(t *testing.T) {
		policy := &stubPolicy{err: errors.New("redis down")}
		recorder := httptest.NewRecorder()

		middleware.RateLimit(policy)(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestPanicRecovery verifies that panics become a 500 response.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

/*
TestLoadSession verifies cookie verification and session resolution.
*/
func TestLoadSession(t *testing.T) {
	ctx := context.Background()
	signer, err := sec.NewSessionSigner(testSecret, "gatehouse")
	require.NoError(t, err)

	manager := session.NewManager(session.NewMemoryStore(), time.Hour, 24*time.Hour, nil)

	sess, err := manager.Start(ctx, "")
	require.NoError(t, err)
	require.NoError(t, manager.Login(ctx, sess, session.GuardStaff, session.Principal{ID: "s-1", Email: "s@x.com"}, false))

	token, err := signer.Sign(sess.ID, time.Hour)
	require.NoError(t, err)

	var loaded *session.Session
	handler := middleware.LoadSession(testCookie, signer, manager)(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		loaded = ctxutil.GetSession(request.Context())
	}))

	tests := []struct {
		name       string
		cookie     string
		wantActive bool
	}{
		{"Valid cookie", token, true},
		{"No cookie", "", false},
		{"Tampered cookie", token + "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loaded = nil
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: testCookie, Value: tt.cookie})
			}

			handler.ServeHTTP(httptest.NewRecorder(), request)

			require.NotNil(t, loaded)
			assert.Equal(t, tt.wantActive, loaded.Active(session.GuardStaff))
		})
	}

	t.Run("Store failure aborts", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		middleware.LoadSession(testCookie, signer, failingStarter{})(okHandler).
			ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})
}

/*
TestRequireGuard verifies per-guard access checks.
*/
func TestRequireGuard(t *testing.T) {
	staff := session.New("s")
	staff.Slots[session.GuardStaff] = session.Slot{Principal: session.Principal{ID: "s-1"}}

	tests := []struct {
		name   string
		sess   *session.Session
		guard  session.Guard
		wantOK bool
	}{
		{"Matching guard", staff, session.GuardStaff, true},
		{"Other guard", staff, session.GuardAdmin, false},
		{"Anonymous", session.New("a"), session.GuardStaff, false},
		{"No session", nil, session.GuardAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.sess != nil {
				request = request.WithContext(ctxutil.WithSession(request.Context(), tt.sess))
			}
			recorder := httptest.NewRecorder()

			middleware.RequireGuard(tt.guard)(okHandler).ServeHTTP(recorder, request)

			if tt.wantOK {
				assert.Equal(t, http.StatusOK, recorder.Code)
			} else {
				assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			}
		})
	}
}

type corsConfig struct {
	development bool
	origins     []string
}

func (cfg corsConfig) IsDevelopment() bool      { return cfg.development }
func (cfg corsConfig) AllowedOrigins() []string { return cfg.origins }

/*
TestCORS verifies origin filtering outside development.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(corsConfig{origins: []string{"https://admin.example.com"}})(okHandler)

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"Allowed origin", "https://admin.example.com", "https://admin.example.com"},
		{"Foreign origin", "https://evil.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.want, recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
