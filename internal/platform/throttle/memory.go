// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

type memoryClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is an in-process token bucket Policy keyed by caller-defined strings.
//
// A background goroutine evicts idle keys; stop it with Close.
type Memory struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*memoryClient
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewMemory creates a token bucket policy refilling at limit with the given burst.
func NewMemory(limit rate.Limit, burst int) *Memory {
	memory := &Memory{
		limit:   limit,
		burst:   burst,
		clients: make(map[string]*memoryClient),
		now:     time.Now,
		done:    make(chan struct{}),
	}

	memory.wg.Add(1)
	go memory.cleanup(constants.RateLimitCleanupInterval, constants.RateLimitClientTTL)

	return memory
}

// NewMemoryWindow allows attempts events per window, refilling evenly.
func NewMemoryWindow(attempts int, window time.Duration) *Memory {
	return NewMemory(rate.Every(window/time.Duration(attempts)), attempts)
}

// Allow implements Policy.
func (memory *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := memory.now()

	memory.mu.Lock()
	defer memory.mu.Unlock()

	// Initialize a new limiter if this is a fresh key
	client, found := memory.clients[key]
	if !found {
		client = &memoryClient{limiter: rate.NewLimiter(memory.limit, memory.burst)}
		memory.clients[key] = client
	}
	client.lastSeen = now

	if client.limiter.AllowN(now, 1) {
		return Decision{Allowed: true}, nil
	}

	// Measure the wait without consuming a token
	reservation := client.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)

	return Decision{Allowed: false, RetryAfter: delay}, nil
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (memory *Memory) Close() {
	memory.closeOnce.Do(func() {
		close(memory.done)
	})
	memory.wg.Wait()
}

func (memory *Memory) cleanup(interval, idleTTL time.Duration) {
	defer memory.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			memory.evictIdle(idleTTL)
		case <-memory.done:
			return
		}
	}
}

func (memory *Memory) evictIdle(idleTTL time.Duration) {
	now := memory.now()

	memory.mu.Lock()
	defer memory.mu.Unlock()

	for key, client := range memory.clients {
		if now.Sub(client.lastSeen) > idleTTL {
			delete(memory.clients, key)
		}
	}
}
