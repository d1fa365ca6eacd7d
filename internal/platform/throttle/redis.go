// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// Redis is a fixed window Policy shared across instances.
//
// The first event of a window creates the counter with the window as expiry;
// later events only increment it.
type Redis struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
}

// NewRedis allows limit events per key in every window.
func NewRedis(client redis.Cmdable, limit int, window time.Duration) *Redis {
	return &Redis{client: client, limit: int64(limit), window: window}
}

/*
Allow increments the counter of key and compares it with the limit.

Parameters:
  - context: context.Context
  - key: string (hashed before use, so raw emails never reach Redis)

Returns:
  - Decision: Allowed, or the remaining window as RetryAfter
  - error: Connectivity errors
*/
func (policy *Redis) Allow(context context.Context, key string) (Decision, error) {
	redisKey := constants.RedisPrefixThrottle + sec.HashToken(key)

	var (
		count *redis.IntCmd
		ttl   *redis.DurationCmd
	)

	_, err := policy.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(context, redisKey)
		pipe.ExpireNX(context, redisKey, policy.window)
		ttl = pipe.PTTL(context, redisKey)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("redis_throttle_incr_failed: %w", err)
	}

	if count.Val() <= policy.limit {
		return Decision{Allowed: true}, nil
	}

	retryAfter := ttl.Val()
	if retryAfter <= 0 {
		retryAfter = policy.window
	}

	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}
