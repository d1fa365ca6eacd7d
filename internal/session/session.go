// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"time"
)

// Principal is the reference to an authenticated identity kept in a slot.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Slot is the authenticated state of one guard.
type Slot struct {
	Principal       Principal `json:"principal"`
	Remember        bool      `json:"remember"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
}

// Session is a visitor's guard state.
//
// The identifier is never serialized into the stored value. Stores key records
// by a digest of it.
type Session struct {
	ID    string         `json:"-"`
	Slots map[Guard]Slot `json:"slots"`
}

// New returns an anonymous session with the given identifier.
func New(id string) *Session {
	return &Session{ID: id, Slots: make(map[Guard]Slot)}
}

// Active reports whether guard currently holds an authenticated slot.
func (s *Session) Active(guard Guard) bool {
	if s == nil {
		return false
	}
	_, ok := s.Slots[guard]
	return ok
}

// ActiveGuard returns the first active guard in priority order.
func (s *Session) ActiveGuard() (Guard, bool) {
	for _, guard := range Guards {
		if s.Active(guard) {
			return guard, true
		}
	}
	return "", false
}

// Principal returns the principal authenticated under guard.
func (s *Session) Principal(guard Guard) (Principal, bool) {
	if s == nil {
		return Principal{}, false
	}
	slot, ok := s.Slots[guard]
	return slot.Principal, ok
}

// Empty reports whether no guard is authenticated.
func (s *Session) Empty() bool {
	return s == nil || len(s.Slots) == 0
}

// remembered reports whether any active slot asked for a long-lived session.
func (s *Session) remembered() bool {
	for _, slot := range s.Slots {
		if slot.Remember {
			return true
		}
	}
	return false
}
