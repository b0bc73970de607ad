package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/papertrail/internal/config"
	"github.com/vnykmshr/papertrail/internal/domain"
	"github.com/vnykmshr/papertrail/internal/platform/postgres"
	"github.com/vnykmshr/papertrail/internal/ranking"
	"github.com/vnykmshr/papertrail/internal/streamable"
	"github.com/vnykmshr/papertrail/internal/summary"
)

type fakeLibrary struct {
	authors  []domain.Author
	pubs     []domain.Publication
	fillErr  map[string]error
	fillSeen map[string]int
}

func (f *fakeLibrary) SearchAuthors(ctx context.Context, keywords []string, limit int) ([]domain.Author, error) {
	return f.authors, nil
}

func (f *fakeLibrary) SearchPublications(ctx context.Context, query string, limit int) ([]domain.Publication, error) {
	return f.pubs, nil
}

func (f *fakeLibrary) FillAuthor(ctx context.Context, author domain.Author) (domain.Author, error) {
	if f.fillSeen != nil {
		f.fillSeen[author.ScholarID]++
	}
	if err := f.fillErr[author.ScholarID]; err != nil {
		return domain.Author{}, err
	}
	author.Filled = true
	author.Publications = []domain.Publication{
		{Bib: domain.BibEntry{Title: "Collected works"}, NumCitations: 10},
	}
	return author, nil
}

type fakeSummarizer struct {
	err error
}

func (f *fakeSummarizer) SummarizeAuthor(ctx context.Context, author domain.Author, query string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "summary for " + author.Name, nil
}

type fakeTopics struct {
	ranked []postgres.RankedAuthor
}

func (f *fakeTopics) RankAuthors(ctx context.Context, query string, topicLimit, limit int) ([]postgres.RankedAuthor, error) {
	return f.ranked, nil
}

func testConfig() config.SearchConfig {
	return config.SearchConfig{
		MaxConcurrentTasks: 5,
		MaxTotalTasks:      100,
		TaskTimeout:        5 * time.Second,
		TopKPublications:   10,
	}
}

func newService(lib *fakeLibrary, sum summary.Summarizer, topics TopicRanker) *Service {
	return New(Deps{
		Library:    lib,
		Summarizer: sum,
		Ranker:     ranking.New(10),
		Topics:     topics,
	}, testConfig(), 10)
}

func collect(t *testing.T, s *Service, query string) []streamable.Message {
	t.Helper()

	it, err := s.Stream(context.Background(), query)
	require.NoError(t, err)

	messages, err := it.ToSlice(context.Background())
	require.NoError(t, err)
	return messages
}

func countByType(messages []streamable.Message) map[string]int {
	counts := make(map[string]int)
	for _, msg := range messages {
		counts[msg.MessageType()]++
	}
	return counts
}

func TestStreamRejectsEmptyQuery(t *testing.T) {
	s := newService(&fakeLibrary{}, &fakeSummarizer{}, nil)

	_, err := s.Stream(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestStreamDeliversListsAndAuthorUpdates(t *testing.T) {
	lib := &fakeLibrary{
		authors: []domain.Author{
			{ScholarID: "a1", Name: "Ada Lovelace"},
			{ScholarID: "a2", Name: "Alan Turing"},
		},
		pubs: []domain.Publication{
			{Bib: domain.BibEntry{Title: "On Computable Numbers"}},
		},
	}
	s := newService(lib, &fakeSummarizer{}, nil)

	messages := collect(t, s, "computability")
	counts := countByType(messages)

	assert.Equal(t, 1, counts[streamable.TypeSetAuthorList])
	assert.Equal(t, 1, counts[streamable.TypeSetPublicationList])
	assert.Equal(t, 2, counts[streamable.TypeUpdateAuthor])

	for _, msg := range messages {
		if update, ok := msg.(streamable.UpdateAuthor); ok {
			assert.True(t, update.Payload.Filled)
			require.NotNil(t, update.Payload.Summary)
			assert.Contains(t, *update.Payload.Summary, "summary for")
		}
	}
}

func TestStreamWithoutSummarizerBackend(t *testing.T) {
	lib := &fakeLibrary{authors: []domain.Author{{ScholarID: "a1", Name: "Ada"}}}
	s := newService(lib, summary.Disabled{}, nil)

	messages := collect(t, s, "computing")

	for _, msg := range messages {
		if update, ok := msg.(streamable.UpdateAuthor); ok {
			assert.True(t, update.Payload.Filled)
			assert.Nil(t, update.Payload.Summary)
		}
	}
	assert.Equal(t, 1, countByType(messages)[streamable.TypeUpdateAuthor])
}

func TestStreamToleratesSummarizerFailure(t *testing.T) {
	lib := &fakeLibrary{authors: []domain.Author{{ScholarID: "a1", Name: "Ada"}}}
	s := newService(lib, &fakeSummarizer{err: errors.New("model overloaded")}, nil)

	messages := collect(t, s, "computing")
	counts := countByType(messages)

	assert.Equal(t, 1, counts[streamable.TypeUpdateAuthor])
}

func TestStreamAbsorbsFillFailures(t *testing.T) {
	lib := &fakeLibrary{
		authors: []domain.Author{
			{ScholarID: "a1", Name: "Ada"},
			{ScholarID: "a2", Name: "Alan"},
		},
		fillErr: map[string]error{"a1": errors.New("profile unavailable")},
	}
	s := newService(lib, &fakeSummarizer{}, nil)

	messages := collect(t, s, "computing")
	counts := countByType(messages)

	// The failing fill is absorbed; the healthy one still streams.
	assert.Equal(t, 1, counts[streamable.TypeUpdateAuthor])
	assert.Equal(t, 1, counts[streamable.TypeSetAuthorList])
}

func TestStreamIncludesTopicRankedAuthors(t *testing.T) {
	lib := &fakeLibrary{
		authors:  []domain.Author{{ScholarID: "a1", Name: "Ada"}},
		fillSeen: make(map[string]int),
	}
	topics := &fakeTopics{ranked: []postgres.RankedAuthor{
		{AuthorID: "a2", DisplayName: "Grace Hopper"},
	}}
	s := newService(lib, &fakeSummarizer{}, topics)

	messages := collect(t, s, "computing")
	counts := countByType(messages)

	assert.Equal(t, 2, counts[streamable.TypeUpdateAuthor])
	assert.Equal(t, 1, lib.fillSeen["a1"])
	assert.Equal(t, 1, lib.fillSeen["a2"])
}

func TestStreamDeduplicatesFillTasksAcrossSources(t *testing.T) {
	lib := &fakeLibrary{
		authors:  []domain.Author{{ScholarID: "a1", Name: "Ada"}},
		fillSeen: make(map[string]int),
	}
	// The topic ranker surfaces the same author the keyword search found.
	topics := &fakeTopics{ranked: []postgres.RankedAuthor{
		{AuthorID: "a1", DisplayName: "Ada"},
	}}
	s := newService(lib, &fakeSummarizer{}, topics)

	messages := collect(t, s, "computing")
	counts := countByType(messages)

	assert.LessOrEqual(t, counts[streamable.TypeUpdateAuthor], 2)
	assert.GreaterOrEqual(t, counts[streamable.TypeUpdateAuthor], 1)
}
