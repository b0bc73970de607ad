package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/papertrail/internal/cache"
	"github.com/vnykmshr/papertrail/internal/domain"
)

type fakeSummarizer struct {
	calls  int
	result string
	err    error
}

func (f *fakeSummarizer) SummarizeAuthor(ctx context.Context, author domain.Author, query string) (string, error) {
	f.calls++
	return f.result, f.err
}

func TestDisabledSummarizer(t *testing.T) {
	_, err := Disabled{}.SummarizeAuthor(context.Background(), domain.Author{}, "q")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCacheKeyIsStablePerAuthorAndQuery(t *testing.T) {
	author := domain.Author{ScholarID: "a1"}

	assert.Equal(t, CacheKey(author, "q"), CacheKey(author, "q"))
	assert.NotEqual(t, CacheKey(author, "q"), CacheKey(author, "other"))
	assert.NotEqual(t, CacheKey(author, "q"), CacheKey(domain.Author{ScholarID: "a2"}, "q"))
	assert.Len(t, CacheKey(author, "q"), 64)
}

func TestCachedSummarizerCachesResults(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSummarizer{result: "studies distributed systems"}
	cached := NewCachedSummarizer(fake, cache.NewMemoryStore())

	author := domain.Author{ScholarID: "a1", Name: "Leslie Lamport"}

	first, err := cached.SummarizeAuthor(ctx, author, "paxos")
	require.NoError(t, err)
	assert.Equal(t, "studies distributed systems", first)

	second, err := cached.SummarizeAuthor(ctx, author, "paxos")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.calls)
}

func TestCachedSummarizerDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSummarizer{err: errors.New("model overloaded")}
	cached := NewCachedSummarizer(fake, cache.NewMemoryStore())

	author := domain.Author{ScholarID: "a1", Name: "Leslie Lamport"}

	_, err := cached.SummarizeAuthor(ctx, author, "paxos")
	require.Error(t, err)

	fake.err = nil
	fake.result = "recovered"

	result, err := cached.SummarizeAuthor(ctx, author, "paxos")
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 2, fake.calls)
}
