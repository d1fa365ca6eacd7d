// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements guard-scoped sessions for the two principal types.

A visitor owns one session record. The record holds one slot per guard
("admin", "staff"); a filled slot means that guard is authenticated.

Architecture:

  - Guard: closed enum of authentication contexts, in priority order.
  - Session: the enum-keyed slot map carried through the request context.
  - Store: persistence of session records (Redis in production, memory in tests).
  - Manager: the only component that mutates slots. It enforces that at most
    one guard is active per session.
*/
package session

import (
	"fmt"
)

// Guard names an authentication context with its own session slot.
type Guard string

const (
	// GuardAdmin is the authentication context of admin principals.
	GuardAdmin Guard = "admin"

	// GuardStaff is the authentication context of staff principals.
	GuardStaff Guard = "staff"
)

// Guards lists every configured guard in login priority order.
var Guards = []Guard{GuardAdmin, GuardStaff}

// Valid reports whether g is one of the configured guards.
func (g Guard) Valid() bool {
	for _, configured := range Guards {
		if g == configured {
			return true
		}
	}
	return false
}

// String implements [fmt.Stringer].
func (g Guard) String() string {
	return string(g)
}

// ParseGuard converts a raw guard name into a [Guard].
func ParseGuard(raw string) (Guard, error) {
	guard := Guard(raw)
	if !guard.Valid() {
		return "", fmt.Errorf("session: unknown guard %q", raw)
	}
	return guard, nil
}
