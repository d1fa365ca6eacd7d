// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// IDLength is the number of random bytes in a session identifier.
const IDLength = 32

// ErrGuardOccupied is returned by [Manager.Login] when a different guard is still active.
var ErrGuardOccupied = errors.New("session: another guard is active")

// ErrNoSession is returned when a guard is bound to a nil session.
var ErrNoSession = errors.New("session: no session")

// Manager owns every mutation of guard slots.
//
// Each mutation is persisted before the call returns, so the stored record always
// reflects either the state before or the state after a single step.
type Manager struct {
	store            Store
	lifetime         time.Duration
	rememberLifetime time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// NewManager constructs a [Manager] with the given lifetime policy.
func NewManager(store Store, lifetime, rememberLifetime time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:            store,
		lifetime:         lifetime,
		rememberLifetime: rememberLifetime,
		logger:           logger,
		now:              time.Now,
	}
}

// # Lifecycle

/*
Start resolves the session a request belongs to.

Description: An empty id, or an id with no stored record, yields a fresh anonymous
session. Anonymous sessions are not persisted until a guard authenticates.

Parameters:
  - context: context.Context
  - id: string (identifier carried by the verified cookie, may be empty)

Returns:
  - *Session: Loaded or anonymous session
  - error: Storage failures
*/
func (manager *Manager) Start(context context.Context, id string) (*Session, error) {
	if id != "" {
		session, err := manager.store.Load(context, id)
		if err == nil {
			return session, nil
		}
		if !apperr.IsNotFound(err) {
			return nil, fmt.Errorf("session_manager_load_failed: %w", err)
		}
	}

	freshID, err := sec.GenerateSecureToken(IDLength)
	if err != nil {
		return nil, fmt.Errorf("session_manager_id_failed: %w", err)
	}
	return New(freshID), nil
}

// Check reports whether guard is authenticated in session.
func (manager *Manager) Check(session *Session, guard Guard) bool {
	return session.Active(guard)
}

// Active returns the authenticated guard of session, if any.
func (manager *Manager) Active(session *Session) (Guard, bool) {
	return session.ActiveGuard()
}

// Lifetime returns the TTL applied to a session with the given remember flag.
func (manager *Manager) Lifetime(remember bool) time.Duration {
	if remember {
		return manager.rememberLifetime
	}
	return manager.lifetime
}

// # Guard Exclusivity

/*
ClearAllGuards terminates every active guard slot of session.

Description: Idempotent. A session with no active guard is left untouched and
nothing is written to the store.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (manager *Manager) ClearAllGuards(context context.Context, session *Session) error {
	return manager.clear(context, session, "")
}

/*
ClearAllGuardsExcept terminates every active guard slot of session except keep.

Parameters:
  - context: context.Context
  - session: *Session
  - keep: Guard

Returns:
  - error: Storage failures
*/
func (manager *Manager) ClearAllGuardsExcept(context context.Context, session *Session, keep Guard) error {
	return manager.clear(context, session, keep)
}

func (manager *Manager) clear(context context.Context, session *Session, keep Guard) error {
	if session == nil {
		return nil
	}

	var cleared []Guard
	for _, guard := range Guards {
		if guard == keep || !session.Active(guard) {
			continue
		}
		delete(session.Slots, guard)
		cleared = append(cleared, guard)
	}

	if len(cleared) == 0 {
		return nil
	}

	if err := manager.persist(context, session); err != nil {
		return fmt.Errorf("session_manager_clear_failed: %w", err)
	}

	manager.logger.DebugContext(context, "guards_cleared", slog.Any("guards", cleared))
	return nil
}

// # Authentication

/*
Login places principal into the slot of guard.

Description: Refuses when a different guard is active; callers clear guards first.
The session identifier is regenerated so a pre-login identifier can never carry an
authenticated slot.

Parameters:
  - context: context.Context
  - session: *Session
  - guard: Guard
  - principal: Principal
  - remember: bool (selects the long session lifetime)

Returns:
  - error: ErrNoSession, ErrGuardOccupied or storage failures
*/
func (manager *Manager) Login(context context.Context, session *Session, guard Guard, principal Principal, remember bool) error {
	if session == nil {
		return fmt.Errorf("session_manager_login_failed: %w", ErrNoSession)
	}
	if !guard.Valid() {
		return fmt.Errorf("session_manager_login_failed: %w", apperr.ValidationError("Unknown guard"))
	}

	for _, other := range Guards {
		if other != guard && session.Active(other) {
			return ErrGuardOccupied
		}
	}

	freshID, err := sec.GenerateSecureToken(IDLength)
	if err != nil {
		return fmt.Errorf("session_manager_id_failed: %w", err)
	}

	previousID := session.ID
	hadRecord := !session.Empty()

	session.ID = freshID
	if session.Slots == nil {
		session.Slots = make(map[Guard]Slot)
	}
	session.Slots[guard] = Slot{
		Principal:       principal,
		Remember:        remember,
		AuthenticatedAt: manager.now().UTC(),
	}

	if err := manager.store.Save(context, session, manager.Lifetime(remember)); err != nil {
		delete(session.Slots, guard)
		session.ID = previousID
		return fmt.Errorf("session_manager_login_failed: %w", err)
	}

	// The previous record is superseded by the regenerated one.
	if hadRecord && previousID != "" {
		if err := manager.store.Delete(context, previousID); err != nil {
			manager.logger.WarnContext(context, "session_previous_delete_failed", slog.Any("error", err))
		}
	}

	return nil
}

/*
Logout terminates the slot of a single guard.

Parameters:
  - context: context.Context
  - session: *Session
  - guard: Guard

Returns:
  - error: Storage failures
*/
func (manager *Manager) Logout(context context.Context, session *Session, guard Guard) error {
	if !session.Active(guard) {
		return nil
	}
	delete(session.Slots, guard)

	if err := manager.persist(context, session); err != nil {
		return fmt.Errorf("session_manager_logout_failed: %w", err)
	}
	return nil
}

// persist writes the session, or deletes its record once no guard remains.
func (manager *Manager) persist(context context.Context, session *Session) error {
	if session.Empty() {
		return manager.store.Delete(context, session.ID)
	}
	return manager.store.Save(context, session, manager.Lifetime(session.remembered()))
}
