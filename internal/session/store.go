// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"time"
)

// # Session Data Access

// Store defines the persistence contract for session records.
type Store interface {

	/*
		Load returns the session stored under id.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Session: Hydrated session with ID set
		  - error: apperr.NotFound when absent or expired, storage failures otherwise
	*/
	Load(context context.Context, id string) (*Session, error)

	/*
		Save writes the session record, replacing any previous value.

		Parameters:
		  - context: context.Context
		  - session: *Session
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Save(context context.Context, session *Session, ttl time.Duration) error

	/*
		Delete removes the session record. Deleting a missing record is not an error.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}
