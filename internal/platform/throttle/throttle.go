// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package throttle provides pluggable request quotas.

Policies:

  - Memory: token bucket per key (golang.org/x/time/rate), single instance only.
  - Redis: fixed window counter shared by every instance.

Callers build the key (client IP, email plus IP); policies never inspect it.
*/
package throttle

import (
	"context"
	"time"
)

// Decision is the outcome of a single quota check.
type Decision struct {
	Allowed bool

	// RetryAfter is how long the caller should wait when Allowed is false.
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below one.
func (d Decision) RetryAfterSeconds() int {
	seconds := int((d.RetryAfter + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

// Policy decides whether one more event for key fits in its quota.
type Policy interface {
	Allow(context context.Context, key string) (Decision, error)
}

// Unlimited is a Policy that allows everything.
type Unlimited struct{}

// Allow implements Policy.
func (Unlimited) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}
