package cache

import (
	"context"
	"errors"
	"time"

	"github.com/vnykmshr/papertrail/pkg/metrics"
)

// InstrumentedStore wraps a Store and records hit, miss, and error counts
// per scope.
type InstrumentedStore struct {
	inner    Store
	registry *metrics.Registry
}

// NewInstrumentedStore wraps store with metric recording. Panics if registry
// is nil.
func NewInstrumentedStore(store Store, registry *metrics.Registry) *InstrumentedStore {
	if registry == nil {
		panic("cache: registry must not be nil")
	}
	return &InstrumentedStore{inner: store, registry: registry}
}

// Get implements Store.
func (s *InstrumentedStore) Get(ctx context.Context, scope Scope, key string) (string, error) {
	content, err := s.inner.Get(ctx, scope, key)
	switch {
	case err == nil:
		s.registry.CacheHits.WithLabelValues(string(scope)).Inc()
	case errors.Is(err, ErrNotFound):
		s.registry.CacheMisses.WithLabelValues(string(scope)).Inc()
	default:
		s.registry.CacheErrors.WithLabelValues(string(scope)).Inc()
	}
	return content, err
}

// Set implements Store.
func (s *InstrumentedStore) Set(ctx context.Context, scope Scope, key string, content string, ttl time.Duration) error {
	err := s.inner.Set(ctx, scope, key, content, ttl)
	if err != nil {
		s.registry.CacheErrors.WithLabelValues(string(scope)).Inc()
	}
	return err
}

// DeleteExpired implements Store.
func (s *InstrumentedStore) DeleteExpired(ctx context.Context) (int, error) {
	return s.inner.DeleteExpired(ctx)
}
