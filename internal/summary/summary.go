// Package summary defines the author summarization interface and its
// caching decorator. Summaries describe an author's research in relation
// to the query that surfaced them.
package summary

import (
	"context"
	"errors"

	"github.com/vnykmshr/papertrail/internal/domain"
)

// Summarization errors.
var (
	// ErrTooManyPublications is returned when an author carries more
	// publications than a summarizer accepts. Rank them first.
	ErrTooManyPublications = errors.New("too many publications to summarize")

	// ErrUnavailable is returned when no summarization backend is
	// configured.
	ErrUnavailable = errors.New("summarization unavailable")

	// ErrInvalidResponse is returned when the model's response cannot
	// be used.
	ErrInvalidResponse = errors.New("invalid summarization response")

	// ErrContentBlocked is returned when the model refuses the request.
	ErrContentBlocked = errors.New("summarization content blocked")
)

// Summarizer produces a short description of an author's research scoped
// to a search query.
type Summarizer interface {
	// SummarizeAuthor returns a summary of the author's publications in
	// the context of query. The author should already carry a ranked
	// publication list.
	SummarizeAuthor(ctx context.Context, author domain.Author, query string) (string, error)
}

// Disabled is a Summarizer used when no backend is configured. Every call
// returns ErrUnavailable.
type Disabled struct{}

// SummarizeAuthor implements Summarizer.
func (Disabled) SummarizeAuthor(ctx context.Context, author domain.Author, query string) (string, error) {
	return "", ErrUnavailable
}
