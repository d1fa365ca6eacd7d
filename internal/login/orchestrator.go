// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package login implements the unified admin/staff sign-in.

One email/password submission is tried against every principal type in a fixed
priority order (admin, then staff). The first type whose record accepts the
password wins and becomes the only authenticated guard of the session.

Architecture:

  - Authenticator: one strategy per principal type (lookup + guard + landing).
  - Orchestrator: clears every guard, folds over the strategies, establishes at
    most one guard and writes one audit record per call.
  - Handler: HTTP transport, validation, throttling and the session cookie.

Every failure cause (unknown email, wrong password, inactive staff) is reported to
callers as the same [ErrAuthenticationFailed]. The cause survives only in the
audit trail.
*/
package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/gatehouse/internal/audit"
	"github.com/taibuivan/gatehouse/internal/identity"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/session"
)

// ErrAuthenticationFailed is the single outcome of every rejected login.
var ErrAuthenticationFailed = errors.New("login: authentication failed")

// # Contracts & Types

// PasswordVerifier compares a plain-text password with a stored hash.
type PasswordVerifier interface {
	Verify(password, hash string) bool
}

// SessionGuards is the part of the session manager the orchestrator drives.
type SessionGuards interface {
	ClearAllGuards(context context.Context, sess *session.Session) error
	Login(context context.Context, sess *session.Session, guard session.Guard, principal session.Principal, remember bool) error
}

// Credentials is one login submission plus its request metadata.
type Credentials struct {
	Email     string
	Password  string
	Remember  bool
	IPAddress string
	UserAgent string
}

// Result describes the guard a successful login established.
type Result struct {
	Guard       session.Guard
	Destination Destination
	Principal   session.Principal
}

// Orchestrator is the only component that decides which guard becomes active.
type Orchestrator struct {
	authenticators []Authenticator
	sessions       SessionGuards
	verifier       PasswordVerifier
	recorder       audit.Recorder
	metrics        *Metrics
	parallel       bool
	decoyHash      func() string
	now            func() time.Time
}

// Option customizes an [Orchestrator].
type Option func(*Orchestrator)

// WithParallelLookup issues every principal lookup concurrently before folding.
func WithParallelLookup(enabled bool) Option {
	return func(orchestrator *Orchestrator) { orchestrator.parallel = enabled }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(metrics *Metrics) Option {
	return func(orchestrator *Orchestrator) { orchestrator.metrics = metrics }
}

// WithDecoyHash replaces the hash compared to pad rejected attempts.
func WithDecoyHash(hash string) Option {
	return func(orchestrator *Orchestrator) { orchestrator.decoyHash = func() string { return hash } }
}

// NewOrchestrator constructs an [Orchestrator] trying authenticators in the given order.
func NewOrchestrator(
	sessions SessionGuards,
	verifier PasswordVerifier,
	recorder audit.Recorder,
	authenticators []Authenticator,
	options ...Option,
) *Orchestrator {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}

	orchestrator := &Orchestrator{
		authenticators: authenticators,
		sessions:       sessions,
		verifier:       verifier,
		recorder:       recorder,
		decoyHash:      sec.DecoyHash,
		now:            time.Now,
	}
	for _, option := range options {
		option(orchestrator)
	}

	return orchestrator
}

// # Authentication Flow

/*
Authenticate signs credentials into exactly one guard of sess, or none.

Description: Every guard of sess is cleared first, whatever the outcome. The
authenticators are then tried in priority order and the first whose principal
can authenticate and accepts the password wins. When none does, decoy hashes are
compared until one bcrypt verification per authenticator has run, so a rejection
costs the same whether the email matched zero, one or several identity tables.

Parameters:
  - context: context.Context
  - sess: *session.Session (the visitor's session, mutated in place)
  - credentials: Credentials

Returns:
  - *Result: Established guard and landing route
  - err: ErrAuthenticationFailed, or an infrastructure error
*/
func (orchestrator *Orchestrator) Authenticate(context context.Context, sess *session.Session, credentials Credentials) (*Result, error) {
	if sess == nil {
		return nil, fmt.Errorf("login_authenticate_failed: %w", session.ErrNoSession)
	}

	attempt := audit.LoginAttempt{
		Email:     credentials.Email,
		IPAddress: credentials.IPAddress,
		UserAgent: credentials.UserAgent,
		CreatedAt: orchestrator.now().UTC(),
	}

	// 1. Exclusivity holds from here on, even if every attempt fails
	if err := orchestrator.sessions.ClearAllGuards(context, sess); err != nil {
		return nil, orchestrator.abort(context, attempt, fmt.Errorf("login_clear_guards_failed: %w", err))
	}

	// 2. Parallel mode resolves every table up front; the fold order is unchanged
	var prefetched []identity.Principal
	if orchestrator.parallel {
		found, err := orchestrator.lookupAll(context, credentials.Email)
		if err != nil {
			return nil, orchestrator.abort(context, attempt, err)
		}
		prefetched = found
	}

	// 3. Fold over strategies in priority order, stop at the first success
	failure := failureTracker{reason: audit.ReasonNotFound}
	compared := 0

	for index, authenticator := range orchestrator.authenticators {
		guard := authenticator.Guard()

		var principal identity.Principal
		if prefetched != nil {
			principal = prefetched[index]
		} else {
			found, err := authenticator.Lookup(context, credentials.Email)
			if err != nil {
				return nil, orchestrator.abort(context, attempt, fmt.Errorf("login_lookup_%s_failed: %w", guard, err))
			}
			principal = found
		}

		if principal == nil {
			continue
		}

		if !principal.CanAuthenticate() {
			failure.observe(audit.ReasonInactive, guard)
			continue
		}

		identityCredentials := principal.Credentials()
		compared++
		if !orchestrator.verifier.Verify(credentials.Password, identityCredentials.PasswordHash) {
			failure.observe(audit.ReasonBadPassword, guard)
			continue
		}

		// 4. Establish the single guard session
		reference := session.Principal{ID: identityCredentials.ID, Email: identityCredentials.Email}
		if err := orchestrator.sessions.Login(context, sess, guard, reference, credentials.Remember); err != nil {
			attempt.Guard = guard.String()
			return nil, orchestrator.abort(context, attempt, fmt.Errorf("login_establish_%s_failed: %w", guard, err))
		}

		attempt.Guard = guard.String()
		attempt.Successful = true
		orchestrator.record(context, attempt)
		orchestrator.metrics.attempt(attempt.Guard, outcomeSuccess)

		return &Result{Guard: guard, Destination: authenticator.Destination(), Principal: reference}, nil
	}

	// 5. Uniform rejection
	for ; compared < len(orchestrator.authenticators); compared++ {
		orchestrator.verifier.Verify(credentials.Password, orchestrator.decoyHash())
	}

	attempt.Guard = failure.guard.String()
	attempt.FailureReason = failure.reason
	orchestrator.record(context, attempt)
	orchestrator.metrics.attempt(attempt.Guard, outcomeRejected)

	ctxutil.GetLogger(context).InfoContext(context, "login_rejected",
		slog.String("reason", string(failure.reason)),
		slog.String("guard", attempt.Guard),
	)

	return nil, ErrAuthenticationFailed
}

// lookupAll resolves every authenticator concurrently, keeping priority order.
func (orchestrator *Orchestrator) lookupAll(context context.Context, email string) ([]identity.Principal, error) {
	found := make([]identity.Principal, len(orchestrator.authenticators))

	group, groupContext := errgroup.WithContext(context)
	for index, authenticator := range orchestrator.authenticators {
		group.Go(func() error {
			principal, err := authenticator.Lookup(groupContext, email)
			if err != nil {
				return fmt.Errorf("login_lookup_%s_failed: %w", authenticator.Guard(), err)
			}
			found[index] = principal
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

// abort records an infrastructure failure and returns err unchanged.
func (orchestrator *Orchestrator) abort(context context.Context, attempt audit.LoginAttempt, err error) error {
	attempt.Successful = false
	attempt.FailureReason = audit.ReasonError
	orchestrator.record(context, attempt)
	orchestrator.metrics.attempt(attempt.Guard, outcomeError)
	return err
}

// record writes the audit entry without letting the sink affect the outcome.
func (orchestrator *Orchestrator) record(context context.Context, attempt audit.LoginAttempt) {
	recordContext, cancel := contextWithAuditTimeout(context)
	defer cancel()

	if err := orchestrator.recorder.Record(recordContext, attempt); err != nil {
		orchestrator.metrics.auditFailed()
		ctxutil.GetLogger(context).ErrorContext(context, "login_attempt_record_failed",
			slog.String("guard", attempt.Guard),
			slog.Bool("successful", attempt.Successful),
			slog.Any("error", err),
		)
	}
}

// contextWithAuditTimeout detaches from request cancellation and bounds the write.
func contextWithAuditTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), constants.AuditWriteTimeout)
}

// # Failure Classification

// failureRank orders reasons from least to most specific.
var failureRank = map[audit.FailureReason]int{
	audit.ReasonNotFound:    0,
	audit.ReasonBadPassword: 1,
	audit.ReasonInactive:    2,
}

// failureTracker keeps the most specific reason seen and the guard it came from.
type failureTracker struct {
	reason audit.FailureReason
	guard  session.Guard
}

func (tracker *failureTracker) observe(reason audit.FailureReason, guard session.Guard) {
	if failureRank[reason] > failureRank[tracker.reason] {
		tracker.reason = reason
		tracker.guard = guard
	}
}
