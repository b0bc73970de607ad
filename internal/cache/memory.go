package cache

import (
	"context"
	"sync"
	"time"
)

type memoryKey struct {
	scope Scope
	key   string
}

// MemoryStore is an in-process Store backed by a map. It is the default
// when no Redis address is configured, and the store of choice in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[memoryKey]Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[memoryKey]Entry),
		now:     time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, scope Scope, key string) (string, error) {
	s.mu.RLock()
	entry, ok := s.entries[memoryKey{scope, key}]
	s.mu.RUnlock()

	if !ok || entry.Expired(s.now()) {
		return "", ErrNotFound
	}
	return entry.Content, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, scope Scope, key string, content string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[memoryKey{scope, key}] = Entry{
		Scope:      scope,
		Key:        key,
		Content:    content,
		TTL:        ttl,
		InsertedAt: s.now(),
	}
	return nil
}

// DeleteExpired implements Store.
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, including expired ones not yet
// swept by DeleteExpired.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
