// Package search implements the streaming global search: initial author and
// publication lookups run concurrently, and every discovered author spawns a
// follow-up task that fills, ranks, and summarizes their profile. Results
// are delivered in completion order through a dynamic task iterator.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vnykmshr/papertrail/internal/config"
	"github.com/vnykmshr/papertrail/internal/domain"
	"github.com/vnykmshr/papertrail/internal/platform/logger"
	"github.com/vnykmshr/papertrail/internal/platform/postgres"
	"github.com/vnykmshr/papertrail/internal/ranking"
	"github.com/vnykmshr/papertrail/internal/source"
	"github.com/vnykmshr/papertrail/internal/streamable"
	"github.com/vnykmshr/papertrail/internal/summary"
	"github.com/vnykmshr/papertrail/pkg/metrics"
	"github.com/vnykmshr/papertrail/pkg/streaming/dynamic"
)

// ErrEmptyQuery is returned when a stream is requested for a blank query.
var ErrEmptyQuery = errors.New("search query cannot be empty")

// topicAuthorLimit bounds how many topic-ranked authors join the stream.
const topicAuthorLimit = 10

// topicLimit bounds how many topics feed author ranking.
const topicLimit = 50

// TopicRanker ranks authors by their affinity to a query's topics. It is
// satisfied by the PostgreSQL topic store.
type TopicRanker interface {
	RankAuthors(ctx context.Context, query string, topicLimit, limit int) ([]postgres.RankedAuthor, error)
}

// Deps carries the collaborators a search Service needs.
type Deps struct {
	// Library fetches authors and publications. Required.
	Library source.Library

	// Summarizer produces author research summaries. Required; use
	// summary.Disabled when no backend is configured.
	Summarizer summary.Summarizer

	// Ranker orders an author's publications before summarization.
	// Required.
	Ranker *ranking.Ranker

	// Topics ranks additional authors by topic affinity. Optional.
	Topics TopicRanker

	// Metrics defaults to the process-wide registry.
	Metrics *metrics.Registry

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service builds streaming search iterators.
type Service struct {
	deps Deps
	cfg  config.SearchConfig

	sliceSize int
}

// New creates a search Service. Panics if a required dependency is missing.
func New(deps Deps, cfg config.SearchConfig, sliceSize int) *Service {
	if deps.Library == nil {
		panic("search: Library is required")
	}
	if deps.Summarizer == nil {
		panic("search: Summarizer is required")
	}
	if deps.Ranker == nil {
		panic("search: Ranker is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.DefaultRegistry
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if sliceSize <= 0 {
		sliceSize = 10
	}

	return &Service{deps: deps, cfg: cfg, sliceSize: sliceSize}
}

// Stream starts a global search for query and returns an iterator over its
// results. The caller owns the iterator and must drain or close it.
func (s *Service) Stream(ctx context.Context, query string) (*dynamic.Iterator[streamable.Message], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	initial := []dynamic.Task[streamable.Message]{
		s.searchAuthorsTask(query),
		s.searchPublicationsTask(query),
	}
	if s.deps.Topics != nil {
		initial = append(initial, s.topicAuthorsTask(query))
	}

	return dynamic.NewIterator(initial, dynamic.Config{
		MaxConcurrentTasks: s.cfg.MaxConcurrentTasks,
		MaxTotalTasks:      s.cfg.MaxTotalTasks,
		Name:               "search",
		Logger:             s.deps.Logger,
		Metrics:            s.deps.Metrics,
	}), nil
}

// searchAuthorsTask looks up authors by the query's comma-separated
// keywords, publishes the initial list, and spawns a fill task per author.
func (s *Service) searchAuthorsTask(query string) dynamic.Task[streamable.Message] {
	keywords := splitKeywords(query)

	return s.task("search:authors", func(ctx context.Context) (dynamic.Result[streamable.Message], error) {
		authors, err := s.deps.Library.SearchAuthors(ctx, keywords, s.sliceSize)
		if err != nil {
			return dynamic.Result[streamable.Message]{}, err
		}

		followUps := make([]dynamic.Task[streamable.Message], 0, len(authors))
		for _, author := range authors {
			followUps = append(followUps, s.fillAuthorTask(author, query))
		}

		return dynamic.Publish[streamable.Message](
			streamable.SetAuthorList{Payload: authors},
			followUps...,
		), nil
	})
}

// searchPublicationsTask looks up publications matching the query.
func (s *Service) searchPublicationsTask(query string) dynamic.Task[streamable.Message] {
	return s.task("search:publications", func(ctx context.Context) (dynamic.Result[streamable.Message], error) {
		publications, err := s.deps.Library.SearchPublications(ctx, query, s.sliceSize)
		if err != nil {
			return dynamic.Result[streamable.Message]{}, err
		}

		return dynamic.Publish[streamable.Message](
			streamable.SetPublicationList{Payload: publications},
		), nil
	})
}

// topicAuthorsTask ranks catalog authors by topic affinity and spawns fill
// tasks for them. Authors already discovered by the keyword search share
// fill task IDs, so duplicates are skipped by the pool.
func (s *Service) topicAuthorsTask(query string) dynamic.Task[streamable.Message] {
	return s.task("topics:authors", func(ctx context.Context) (dynamic.Result[streamable.Message], error) {
		ranked, err := s.deps.Topics.RankAuthors(ctx, query, topicLimit, topicAuthorLimit)
		if err != nil {
			return dynamic.Result[streamable.Message]{}, err
		}

		followUps := make([]dynamic.Task[streamable.Message], 0, len(ranked))
		for _, candidate := range ranked {
			author := domain.Author{
				ScholarID: candidate.AuthorID,
				Name:      candidate.DisplayName,
			}
			followUps = append(followUps, s.fillAuthorTask(author, query))
		}

		return dynamic.Spawn(followUps...), nil
	})
}

// fillAuthorTask fetches the author's full profile, ranks their publications
// against the query, and attaches a summary when a backend is available.
func (s *Service) fillAuthorTask(author domain.Author, query string) dynamic.Task[streamable.Message] {
	return s.task("fill:"+author.ScholarID, func(ctx context.Context) (dynamic.Result[streamable.Message], error) {
		filled, err := s.deps.Library.FillAuthor(ctx, author)
		if err != nil {
			return dynamic.Result[streamable.Message]{}, err
		}

		filled.Publications = s.deps.Ranker.Rank(query, filled.Publications)

		text, err := s.deps.Summarizer.SummarizeAuthor(ctx, filled, query)
		switch {
		case err == nil:
			filled.SetSummary(text)
		case errors.Is(err, summary.ErrUnavailable):
			// No backend configured; stream the profile without one.
		default:
			logger.FromContext(ctx).Warn("author summarization failed",
				"author", filled.Name, "error", err)
		}

		return dynamic.Publish[streamable.Message](
			streamable.UpdateAuthor{Payload: filled},
		), nil
	})
}

func (s *Service) task(id string, op dynamic.Operation[streamable.Message]) dynamic.Task[streamable.Message] {
	task, err := dynamic.NewTask(id, op, s.cfg.TaskTimeout)
	if err != nil {
		// Operations are always non-nil here.
		panic(err)
	}
	return task
}

// splitKeywords splits a query on commas, the same separator clients use
// when composing keyword searches.
func splitKeywords(query string) []string {
	parts := strings.Split(query, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}
