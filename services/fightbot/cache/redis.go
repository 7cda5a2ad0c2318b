// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Distributed is the best-effort shared cache tier in front of the local
// expiring caches. Implementations must treat every operation as optional:
// the store swallows all errors and degrades to the local tier, so a flaky
// or absent backend only costs latency, never correctness.
type Distributed interface {
	// GetBytes returns the raw bytes stored under key, or (nil, false)
	// on miss or on any backend error.
	GetBytes(ctx context.Context, key string) ([]byte, bool)

	// SetBytes stores val under key with the given TTL. Failures are
	// logged and dropped.
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration)

	// FlushAll clears the shared tier. Best-effort.
	FlushAll(ctx context.Context)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) bool
}

// RedisCache implements Distributed on a go-redis client.
//
// Thread Safety: safe for concurrent use; the underlying client pools
// connections.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache wraps an existing client. logger may be nil.
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, logger: logger}
}

// GetBytes returns the bytes under key. A redis.Nil miss is silent; any
// other error is logged at debug and counted, then treated as a miss.
func (r *RedisCache) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			redisErrors.WithLabelValues("get").Inc()
			r.logger.Debug("redis get failed, falling back", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// SetBytes stores val under key with the given TTL, logging and dropping
// any failure.
func (r *RedisCache) SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		redisErrors.WithLabelValues("set").Inc()
		r.logger.Debug("redis set failed, local tier only", "key", key, "error", err)
	}
}

// FlushAll clears the backing database. Used by the admin cache flush.
func (r *RedisCache) FlushAll(ctx context.Context) {
	if err := r.client.FlushAll(ctx).Err(); err != nil {
		redisErrors.WithLabelValues("flushall").Inc()
		r.logger.Warn("redis flushall failed", "error", err)
	}
}

// Ping reports backend reachability for the health endpoint.
func (r *RedisCache) Ping(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

var _ Distributed = (*RedisCache)(nil)
