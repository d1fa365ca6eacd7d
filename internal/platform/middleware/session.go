// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/session"
)

// # Contracts

// SessionVerifier validates the signed session cookie.
type SessionVerifier interface {
	Verify(token string) (*sec.SessionClaims, error)
}

// SessionStarter resolves a session identifier into a guard session.
type SessionStarter interface {
	Start(context context.Context, id string) (*session.Session, error)
}

// # Session Loading

// LoadSession attaches the visitor's guard session to the request context.
//
// A missing, tampered or expired cookie yields an anonymous session. Only a
// failing session store aborts the request.
func LoadSession(cookieName string, verifier SessionVerifier, starter SessionStarter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			logger := ctxutil.GetLogger(ctx)

			// 1. Extract the session id from a verified cookie
			sessionID := ""
			if cookie, err := request.Cookie(cookieName); err == nil && cookie.Value != "" {
				claims, err := verifier.Verify(cookie.Value)
				if err != nil {
					logger.DebugContext(ctx, "session_cookie_rejected", slog.Any("error", err))
				} else {
					sessionID = claims.SessionID
				}
			}

			// 2. Load the stored record or start an anonymous session
			sess, err := starter.Start(ctx, sessionID)
			if err != nil {
				respond.Error(writer, request, apperr.ServiceUnavailable("Session store unavailable").WithCause(err))
				return
			}

			// 3. Tag downstream logs with the authenticated guard
			if guard, ok := sess.ActiveGuard(); ok {
				principal, _ := sess.Principal(guard)
				logger = logger.With(
					slog.String("guard", guard.String()),
					slog.String("principal_id", principal.ID),
				)
				ctx = ctxutil.WithLogger(ctx, logger)
			}

			ctx = ctxutil.WithSession(ctx, sess)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Access Control

// RequireGuard rejects requests whose session is not authenticated under guard.
func RequireGuard(guard session.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !ctxutil.GetSession(request.Context()).Active(guard) {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
