// Package rediscache provides a Redis-backed implementation of the scoped
// cache Store. Expiry is delegated to Redis key TTLs, so expired entries
// never need an explicit sweep.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/papertrail/internal/cache"
)

const keyPrefix = "papertrail:cache"

// Store implements cache.Store on top of a Redis client.
type Store struct {
	client  redis.Cmdable
	timeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout bounds each Redis operation. The default is 2 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// New creates a Redis-backed cache store. Panics if client is nil.
func New(client redis.Cmdable, opts ...Option) *Store {
	if client == nil {
		panic("rediscache: client must not be nil")
	}

	s := &Store{
		client:  client,
		timeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func entryKey(scope cache.Scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, scope, key)
}

// Get implements cache.Store.
func (s *Store) Get(ctx context.Context, scope cache.Scope, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.client.Get(ctx, entryKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", scope, err)
	}
	return content, nil
}

// Set implements cache.Store. A non-positive ttl stores the entry without
// expiry.
func (s *Store) Set(ctx context.Context, scope cache.Scope, key string, content string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, entryKey(scope, key), content, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", scope, err)
	}
	return nil
}

// DeleteExpired implements cache.Store. Redis expires keys natively, so
// there is never anything to sweep.
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	return 0, nil
}
