// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit records login attempts in an append-only trail.

Recording is best-effort: a failing sink never changes an authentication
decision. Records are written once and never updated or deleted by this service.

Recorders:

  - PostgresRecorder: INSERT into auth.loginattempt.
  - AsyncRecorder: bounded queue in front of another recorder.
  - NopRecorder: discards everything.
*/
package audit

import (
	"context"
	"time"
)

// FailureReason classifies a failed attempt. It is stored, never shown to callers.
type FailureReason string

const (
	// ReasonNone marks a successful attempt.
	ReasonNone FailureReason = ""

	// ReasonNotFound means no principal table holds the email.
	ReasonNotFound FailureReason = "not_found"

	// ReasonBadPassword means a principal was found but the password did not match.
	ReasonBadPassword FailureReason = "bad_password"

	// ReasonInactive means the matching staff account is deactivated.
	ReasonInactive FailureReason = "inactive"

	// ReasonError means the attempt was aborted by an infrastructure failure.
	ReasonError FailureReason = "error"
)

// LoginAttempt is one immutable audit record.
type LoginAttempt struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	IPAddress     string        `json:"ip_address"`
	UserAgent     string        `json:"user_agent"`
	Guard         string        `json:"guard,omitempty"`
	Successful    bool          `json:"successful"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Recorder accepts append-only writes of login attempts.
type Recorder interface {

	/*
		Record appends a single attempt to the trail.

		Parameters:
		  - context: context.Context
		  - attempt: LoginAttempt

		Returns:
		  - error: Sink failures; callers log them and carry on
	*/
	Record(context context.Context, attempt LoginAttempt) error
}

// NopRecorder discards every attempt.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, LoginAttempt) error {
	return nil
}
