// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

It backs the two volatile stores of the login flow: guard session records and
login throttle counters.

Core Responsibilities:

  - Volatility: Handles data with TTL (Time-To-Live).
  - Speed: Low-latency access compared to persistent SQL storage.
  - Safety: Manages connection pooling and retry logic automatically.

Session state never touches PostgreSQL; only principals and the audit trail do.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Opinionated default timeouts for Redis operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

const (
	maxMemoryPolicy = "maxmemory-policy"
	noEviction      = "noeviction"
)

// NewClient parses a Redis URL and returns a ready-to-use client.
//
// # Parameters
//   - context: Context for the initial ping.
//   - redisURL: Redis connection URL.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	// Pool configuration Tuning
	options.PoolSize = 10
	options.MinIdleConns = 2
	options.MaxIdleConns = 5

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	// Validate connectivity immediately at startup.
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	// Session records carry a TTL, so any policy but noeviction may drop live logins
	policy, retained, err := EvictionPolicy(context, client)
	switch {
	case err != nil:
		logger.Debug("redis_eviction_policy_unknown", slog.Any("error", err))
	case !retained:
		logger.Warn("redis_eviction_policy_drops_sessions", slog.String("policy", policy))
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}

// ConfigReader is the part of the client that reads server settings.
type ConfigReader interface {
	ConfigGet(context stdctx.Context, parameter string) *redis.MapStringStringCmd
}

/*
EvictionPolicy reads maxmemory-policy and reports whether it keeps session keys.

Only noeviction retains them; every volatile-* and allkeys-* policy may evict a
key that still has TTL left.

Returns:
  - string: The configured policy
  - bool: true when session records are never evicted under memory pressure
  - error: CONFIG GET failures, common on managed Redis
*/
func EvictionPolicy(context stdctx.Context, client ConfigReader) (string, bool, error) {
	queryCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	values, err := client.ConfigGet(queryCtx, maxMemoryPolicy).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis: config get failed: %w", err)
	}

	policy, ok := values[maxMemoryPolicy]
	if !ok {
		return "", false, fmt.Errorf("redis: %s not reported", maxMemoryPolicy)
	}
	return policy, policy == noEviction, nil
}
