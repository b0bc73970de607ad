package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/vnykmshr/papertrail/internal/cache"
	"github.com/vnykmshr/papertrail/internal/domain"
	"github.com/vnykmshr/papertrail/internal/platform/logger"
)

// CachedSummarizer wraps a Summarizer with the scoped cache so repeated
// queries for the same author never pay for a second model call.
type CachedSummarizer struct {
	inner Summarizer
	store cache.Store
}

// NewCachedSummarizer wraps summarizer with the given cache store. Panics
// if either is nil.
func NewCachedSummarizer(summarizer Summarizer, store cache.Store) *CachedSummarizer {
	if summarizer == nil {
		panic("summary: summarizer must not be nil")
	}
	if store == nil {
		panic("summary: store must not be nil")
	}
	return &CachedSummarizer{inner: summarizer, store: store}
}

// CacheKey derives the cache key for an author and query pair.
func CacheKey(author domain.Author, query string) string {
	digest := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", author.ScholarID, query)))
	return hex.EncodeToString(digest[:])
}

// SummarizeAuthor implements Summarizer.
func (c *CachedSummarizer) SummarizeAuthor(ctx context.Context, author domain.Author, query string) (string, error) {
	key := CacheKey(author, query)
	log := logger.FromContext(ctx)

	cached, err := c.store.Get(ctx, cache.ScopeAuthorSummary, key)
	if err == nil && cached != "" {
		log.Debug("summary cache hit", "author", author.Name, "key", key)
		return cached, nil
	}
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		log.Warn("summary cache lookup failed", "error", err)
	}

	log.Debug("summary cache miss", "author", author.Name, "key", key)

	generated, err := c.inner.SummarizeAuthor(ctx, author, query)
	if err != nil {
		return "", err
	}

	if err := c.store.Set(ctx, cache.ScopeAuthorSummary, key, generated, 0); err != nil {
		log.Warn("summary cache store failed", "error", err)
	}
	return generated, nil
}
