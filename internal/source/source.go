// Package source defines the interface to upstream scholarly data providers
// and a caching decorator that every provider is wrapped in before use.
package source

import (
	"context"
	"errors"

	"github.com/vnykmshr/papertrail/internal/domain"
)

// ErrAuthorNotFound is returned by FillAuthor when the provider has no
// record for the given author.
var ErrAuthorNotFound = errors.New("author not found")

// Library fetches authors and publications from a scholarly data provider.
// Implementations must be safe for concurrent use.
type Library interface {
	// SearchAuthors returns up to limit authors matching the given
	// keywords. The returned authors are unfilled.
	SearchAuthors(ctx context.Context, keywords []string, limit int) ([]domain.Author, error)

	// SearchPublications returns up to limit publications matching the
	// free-text query.
	SearchPublications(ctx context.Context, query string, limit int) ([]domain.Publication, error)

	// FillAuthor fetches the complete profile for an author found by
	// SearchAuthors, including its publication list.
	FillAuthor(ctx context.Context, author domain.Author) (domain.Author, error)
}
