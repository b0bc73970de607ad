package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to the database named by PAPERTRAIL_TEST_DATABASE_URL,
// applies migrations, and skips the test when none is configured.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("PAPERTRAIL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PAPERTRAIL_TEST_DATABASE_URL not set, skipping database integration test")
	}

	db, err := Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db))

	// Each test starts from an empty catalog.
	_, err = db.Exec("TRUNCATE author_topics, authors, topics")
	require.NoError(t, err)
	return db
}

func seedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()

	for _, stmt := range []struct {
		query string
		args  []any
	}{
		{"INSERT INTO topics (id, display_name) VALUES ($1, $2)", []any{"T1", "Distributed Computing"}},
		{"INSERT INTO topics (id, display_name) VALUES ($1, $2)", []any{"T2", "Machine Learning"}},
		{"INSERT INTO topics (id, display_name) VALUES ($1, $2)", []any{"T3", "Medieval History"}},
		{"INSERT INTO authors (id, display_name) VALUES ($1, $2)", []any{"A1", "Leslie Lamport"}},
		{"INSERT INTO authors (id, display_name) VALUES ($1, $2)", []any{"A2", "Fei-Fei Li"}},
		{"INSERT INTO author_topics (author_id, topic_id, value) VALUES ($1, $2, $3)", []any{"A1", "T1", 0.9}},
		{"INSERT INTO author_topics (author_id, topic_id, value) VALUES ($1, $2, $3)", []any{"A2", "T2", 0.8}},
		{"INSERT INTO author_topics (author_id, topic_id, value) VALUES ($1, $2, $3)", []any{"A2", "T1", 0.1}},
	} {
		_, err := db.ExecContext(ctx, stmt.query, stmt.args...)
		require.NoError(t, err)
	}
}

func TestNewTopicStorePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewTopicStore(nil, nil) })
}

func TestRankTopics(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	store := NewTopicStore(db, nil)

	topics, err := store.RankTopics(context.Background(), "distributed computing", 10)
	require.NoError(t, err)
	require.NotEmpty(t, topics)

	assert.Equal(t, "T1", topics[0].ID)
	assert.Greater(t, topics[0].HybridScore, 0.0)
}

func TestRankAuthors(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	store := NewTopicStore(db, nil)

	authors, err := store.RankAuthors(context.Background(), "distributed computing", 10, 10)
	require.NoError(t, err)
	require.NotEmpty(t, authors)

	assert.Equal(t, "A1", authors[0].AuthorID)
	assert.NotEmpty(t, authors[0].Topics)
	assert.Greater(t, authors[0].TotalScore, 0.0)
}

func TestRankTopicsNoMatches(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	store := NewTopicStore(db, nil)

	topics, err := store.RankTopics(context.Background(), "xylophone acoustics", 10)
	require.NoError(t, err)
	// Trigram similarity may surface weak matches, but nothing should
	// outrank an exact topic hit.
	for _, topic := range topics {
		assert.Less(t, topic.HybridScore, 0.5)
	}
}
