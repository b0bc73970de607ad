package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vnykmshr/papertrail/internal/cache"
	"github.com/vnykmshr/papertrail/internal/domain"
	"github.com/vnykmshr/papertrail/internal/platform/logger"
)

// searchCacheTTL bounds how long search result lists stay fresh. Filled
// author profiles are kept indefinitely; their content rarely changes.
const searchCacheTTL = 24 * time.Hour

// CachedLibrary wraps a Library with a scoped cache. Cache failures are
// logged and treated as misses so the upstream provider remains reachable
// when the cache is down.
type CachedLibrary struct {
	inner Library
	store cache.Store
}

// NewCachedLibrary wraps library with the given cache store. Panics if
// either is nil.
func NewCachedLibrary(library Library, store cache.Store) *CachedLibrary {
	if library == nil {
		panic("source: library must not be nil")
	}
	if store == nil {
		panic("source: store must not be nil")
	}
	return &CachedLibrary{inner: library, store: store}
}

// SearchAuthors implements Library.
func (c *CachedLibrary) SearchAuthors(ctx context.Context, keywords []string, limit int) ([]domain.Author, error) {
	key := fmt.Sprintf("%s|%d", strings.Join(keywords, ","), limit)

	var cached []domain.Author
	if c.lookup(ctx, cache.ScopeSearchKeywords, key, &cached) {
		return cached, nil
	}

	authors, err := c.inner.SearchAuthors(ctx, keywords, limit)
	if err != nil {
		return nil, err
	}

	c.save(ctx, cache.ScopeSearchKeywords, key, authors, searchCacheTTL)
	return authors, nil
}

// SearchPublications implements Library.
func (c *CachedLibrary) SearchPublications(ctx context.Context, query string, limit int) ([]domain.Publication, error) {
	key := fmt.Sprintf("%s|%d", query, limit)

	var cached []domain.Publication
	if c.lookup(ctx, cache.ScopeSearchPublications, key, &cached) {
		return cached, nil
	}

	publications, err := c.inner.SearchPublications(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	c.save(ctx, cache.ScopeSearchPublications, key, publications, searchCacheTTL)
	return publications, nil
}

// FillAuthor implements Library.
func (c *CachedLibrary) FillAuthor(ctx context.Context, author domain.Author) (domain.Author, error) {
	var cached domain.Author
	if c.lookup(ctx, cache.ScopeAuthorFilled, author.ScholarID, &cached) {
		return cached, nil
	}

	filled, err := c.inner.FillAuthor(ctx, author)
	if err != nil {
		return domain.Author{}, err
	}

	c.save(ctx, cache.ScopeAuthorFilled, author.ScholarID, filled, 0)
	return filled, nil
}

// lookup reports whether a live cache entry was found and decoded into out.
func (c *CachedLibrary) lookup(ctx context.Context, scope cache.Scope, key string, out any) bool {
	content, err := c.store.Get(ctx, scope, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logger.FromContext(ctx).Warn("cache lookup failed",
				"scope", scope, "error", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		logger.FromContext(ctx).Warn("discarding undecodable cache entry",
			"scope", scope, "error", err)
		return false
	}
	return true
}

func (c *CachedLibrary) save(ctx context.Context, scope cache.Scope, key string, value any, ttl time.Duration) {
	content, err := json.Marshal(value)
	if err != nil {
		logger.FromContext(ctx).Warn("cache encode failed", "scope", scope, "error", err)
		return
	}

	if err := c.store.Set(ctx, scope, key, string(content), ttl); err != nil {
		logger.FromContext(ctx).Warn("cache store failed", "scope", scope, "error", err)
	}
}
