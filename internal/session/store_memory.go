// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore implements Store in process memory.
//
// Records are stored encoded so callers never share maps with the store.
// Expired records are dropped on Load and by Sweep; long running processes
// should call StartSweeper. Suitable for a single instance and for tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory session Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load implements Store.
func (store *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	store.mu.Lock()
	entry, ok := store.entries[id]
	if ok && !store.now().Before(entry.expiresAt) {
		delete(store.entries, id)
		ok = false
	}
	store.mu.Unlock()

	if !ok {
		return nil, apperr.NotFound("Session")
	}

	session := New(id)
	if err := json.Unmarshal(entry.payload, session); err != nil {
		return nil, fmt.Errorf("memory_session_decode_failed: %w", err)
	}
	if session.Slots == nil {
		session.Slots = make(map[Guard]Slot)
	}
	return session, nil
}

// Save implements Store.
func (store *MemoryStore) Save(_ context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("memory_session_encode_failed: %w", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.entries[session.ID] = memoryEntry{payload: payload, expiresAt: store.now().Add(ttl)}
	return nil
}

// Delete implements Store.
func (store *MemoryStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.entries, id)
	return nil
}

// Sweep removes every expired record and returns how many were dropped.
func (store *MemoryStore) Sweep() int {
	now := store.now()

	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0
	for id, entry := range store.entries {
		if !now.Before(entry.expiresAt) {
			delete(store.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until the returned stop function is
// called. Stop waits for the goroutine to exit and is safe to call more than once.
func (store *MemoryStore) StartSweeper(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	var (
		once sync.Once
		wg   sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				store.Sweep()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
		wg.Wait()
	}
}

// Len returns the number of stored records, expired ones included.
func (store *MemoryStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}
