package source

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/papertrail/internal/cache"
	"github.com/vnykmshr/papertrail/internal/domain"
)

// fakeLibrary counts calls so tests can observe cache hits.
type fakeLibrary struct {
	mu               sync.Mutex
	searchAuthors    int
	searchPubs       int
	fills            int
	failSearch       bool
	authorsResult    []domain.Author
	pubsResult       []domain.Publication
	fillResultFilled bool
}

func (f *fakeLibrary) SearchAuthors(ctx context.Context, keywords []string, limit int) ([]domain.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchAuthors++
	if f.failSearch {
		return nil, errors.New("upstream unavailable")
	}
	return f.authorsResult, nil
}

func (f *fakeLibrary) SearchPublications(ctx context.Context, query string, limit int) ([]domain.Publication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchPubs++
	return f.pubsResult, nil
}

func (f *fakeLibrary) FillAuthor(ctx context.Context, author domain.Author) (domain.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fills++
	author.Filled = f.fillResultFilled
	return author, nil
}

func TestCachedSearchAuthors(t *testing.T) {
	ctx := context.Background()
	fake := &fakeLibrary{authorsResult: []domain.Author{{ScholarID: "a1", Name: "Ada"}}}
	lib := NewCachedLibrary(fake, cache.NewMemoryStore())

	first, err := lib.SearchAuthors(ctx, []string{"computing"}, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := lib.SearchAuthors(ctx, []string{"computing"}, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.searchAuthors)

	// A different limit is a different cache key.
	_, err = lib.SearchAuthors(ctx, []string{"computing"}, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.searchAuthors)
}

func TestCachedSearchPublications(t *testing.T) {
	ctx := context.Background()
	fake := &fakeLibrary{pubsResult: []domain.Publication{{Bib: domain.BibEntry{Title: "Sketchpad"}}}}
	lib := NewCachedLibrary(fake, cache.NewMemoryStore())

	_, err := lib.SearchPublications(ctx, "interactive graphics", 10)
	require.NoError(t, err)
	_, err = lib.SearchPublications(ctx, "interactive graphics", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.searchPubs)
}

func TestCachedFillAuthor(t *testing.T) {
	ctx := context.Background()
	fake := &fakeLibrary{fillResultFilled: true}
	lib := NewCachedLibrary(fake, cache.NewMemoryStore())

	author := domain.Author{ScholarID: "a1", Name: "Ada"}

	filled, err := lib.FillAuthor(ctx, author)
	require.NoError(t, err)
	assert.True(t, filled.Filled)

	_, err = lib.FillAuthor(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.fills)
}

func TestSearchErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	fake := &fakeLibrary{failSearch: true}
	lib := NewCachedLibrary(fake, cache.NewMemoryStore())

	_, err := lib.SearchAuthors(ctx, []string{"x"}, 10)
	require.Error(t, err)

	fake.failSearch = false
	fake.authorsResult = []domain.Author{{ScholarID: "a1", Name: "Ada"}}

	authors, err := lib.SearchAuthors(ctx, []string{"x"}, 10)
	require.NoError(t, err)
	assert.Len(t, authors, 1)
	assert.Equal(t, 2, fake.searchAuthors)
}
