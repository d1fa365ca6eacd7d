// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// RedisStore implements Store using Redis string keys with expiry.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a new Redis-backed session Store.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string {
	return constants.RedisPrefixSession + sec.HashToken(id)
}

/*
Load retrieves and decodes the session stored under id.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Session: Hydrated session
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisStore) Load(context context.Context, id string) (*Session, error) {

	// Get the encoded record
	payload, err := repository.client.Get(context, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	// Decode the slot map
	session := New(id)
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}
	if session.Slots == nil {
		session.Slots = make(map[Guard]Slot)
	}

	return session, nil
}

/*
Save encodes the session and stores it with the given TTL.

Parameters:
  - context: context.Context
  - session: *Session
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisStore) Save(context context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	if err := repository.client.Set(context, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	return nil
}

/*
Delete removes the session record from Redis.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisStore) Delete(context context.Context, id string) error {
	if err := repository.client.Del(context, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
