// Package cache defines the scoped cache used to avoid repeated calls to
// upstream scholarly sources and the summarization model. Entries are keyed
// by (scope, key) and may carry a time-to-live after which they are treated
// as absent.
package cache

import (
	"context"
	"errors"
	"time"
)

// Scope partitions cache entries by the operation that produced them.
type Scope string

// Cache scopes for each cacheable operation.
const (
	ScopeAuthorFilled       Scope = "scholarly-author-filled"
	ScopePublicationFilled  Scope = "scholarly-publication-filled"
	ScopeSearchKeywords     Scope = "scholarly-search-keywords"
	ScopeSearchPublications Scope = "scholarly-search-publications"
	ScopeAuthorSummary      Scope = "author-publication-summary"
)

// ErrNotFound is returned by Get when no live entry exists for the
// given scope and key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is a stored cache record.
type Entry struct {
	Scope      Scope
	Key        string
	Content    string
	TTL        time.Duration // zero means no expiry
	InsertedAt time.Time
}

// Expired reports whether the entry's TTL has elapsed at the given time.
func (e Entry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.After(e.InsertedAt.Add(e.TTL))
}

// Store is a scoped key-value cache. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the content stored under (scope, key), or ErrNotFound
	// if the entry is missing or expired.
	Get(ctx context.Context, scope Scope, key string) (string, error)

	// Set stores content under (scope, key), replacing any previous entry.
	// A non-positive ttl stores the entry without expiry.
	Set(ctx context.Context, scope Scope, key string, content string, ttl time.Duration) error

	// DeleteExpired removes entries whose TTL has elapsed and reports how
	// many were removed.
	DeleteExpired(ctx context.Context) (int, error)
}
