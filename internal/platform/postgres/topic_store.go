package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// DefaultAlpha weights full-text rank against trigram similarity in the
// hybrid topic score. Zero is similarity only, one is full-text only.
const DefaultAlpha = 0.2

// RankedTopic is a topic scored against a search query.
type RankedTopic struct {
	ID          string
	DisplayName string
	TextScore   float64
	SimScore    float64
	HybridScore float64
}

// TopicContribution records how much a single topic contributed to an
// author's ranking.
type TopicContribution struct {
	TopicID     string  `json:"topicId"`
	TopicName   string  `json:"topicName"`
	AuthorValue float64 `json:"authorValue"`
	TopicScore  float64 `json:"topicScore"`
	Weighted    float64 `json:"contribution"`
}

// RankedAuthor is an author scored by the weighted sum of its affinities
// to the query's topics.
type RankedAuthor struct {
	AuthorID    string
	DisplayName string
	TotalScore  float64
	TopicCount  int
	Topics      []TopicContribution
}

// TopicStore ranks topics and authors against free-text queries.
type TopicStore struct {
	db     DBTX
	logger *slog.Logger
	alpha  float64
}

// NewTopicStore creates a TopicStore. Panics if db is nil; a nil logger
// falls back to the default.
func NewTopicStore(db DBTX, logger *slog.Logger) *TopicStore {
	if db == nil {
		panic("postgres: db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_store")),
		alpha:  DefaultAlpha,
	}
}

// hybridTopicQuery scores every topic by a convex combination of its
// normalized full-text rank and trigram similarity to the query.
const hybridTopicQuery = `
WITH fts AS (
    SELECT
        id,
        display_name,
        ts_rank_cd(tsv, plainto_tsquery('english', $1)) AS text_score
    FROM topics
),
trgm AS (
    SELECT
        id,
        similarity(display_name, $1) AS sim_score
    FROM topics
),
bounds AS (
    SELECT
        MIN(text_score) FILTER (WHERE text_score > 0) AS min_text,
        MAX(text_score) FILTER (WHERE text_score > 0) AS max_text
    FROM fts
),
normalized AS (
    SELECT
        fts.id,
        fts.display_name,
        fts.text_score AS raw_text_score,
        trgm.sim_score AS raw_sim_score,
        CASE
            WHEN bounds.max_text IS NULL OR bounds.max_text = bounds.min_text THEN 0
            ELSE (fts.text_score - bounds.min_text) / (bounds.max_text - bounds.min_text)
        END AS norm_text_score,
        GREATEST(trgm.sim_score, 0) AS norm_sim_score
    FROM fts
    JOIN trgm ON trgm.id = fts.id
    CROSS JOIN bounds
)
SELECT
    id,
    display_name,
    raw_text_score,
    raw_sim_score,
    ($2::double precision * norm_text_score + (1 - $2::double precision) * norm_sim_score) AS hybrid_score
FROM normalized
WHERE raw_text_score > 0 OR raw_sim_score > 0
ORDER BY hybrid_score DESC
LIMIT $3`

// RankTopics returns up to limit topics scored against query, best first.
func (s *TopicStore) RankTopics(ctx context.Context, query string, limit int) ([]RankedTopic, error) {
	rows, err := s.db.QueryContext(ctx, hybridTopicQuery, query, s.alpha, limit)
	if err != nil {
		return nil, fmt.Errorf("rank topics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var topics []RankedTopic
	for rows.Next() {
		var topic RankedTopic
		if err := rows.Scan(&topic.ID, &topic.DisplayName, &topic.TextScore, &topic.SimScore, &topic.HybridScore); err != nil {
			return nil, fmt.Errorf("scan ranked topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranked topics: %w", err)
	}

	s.logger.DebugContext(ctx, "ranked topics", "query", query, "count", len(topics))
	return topics, nil
}

// rankAuthorsQuery weights each author's topic affinities by the hybrid
// topic scores and aggregates per-topic contributions into a JSON array.
const rankAuthorsQuery = `
WITH relevant_topics AS (
    %s
),
author_topic_scores AS (
    SELECT
        at.author_id,
        a.display_name,
        at.topic_id,
        rt.display_name AS topic_name,
        at.value AS author_topic_value,
        rt.hybrid_score AS topic_score,
        (rt.hybrid_score * at.value) AS weighted_contribution
    FROM author_topics at
    JOIN authors a ON a.id = at.author_id
    JOIN relevant_topics rt ON rt.id = at.topic_id
)
SELECT
    author_id,
    display_name,
    SUM(weighted_contribution) AS total_weighted_score,
    COUNT(DISTINCT topic_id) AS topic_count,
    json_agg(json_build_object(
        'topicId', topic_id,
        'topicName', topic_name,
        'authorValue', author_topic_value,
        'topicScore', topic_score,
        'contribution', weighted_contribution)) AS topics_details
FROM author_topic_scores
GROUP BY author_id, display_name
ORDER BY total_weighted_score DESC
LIMIT $4`

// RankAuthors scores authors by relevance to the query's topics. topicLimit
// bounds how many topics feed the ranking and limit bounds the result.
func (s *TopicStore) RankAuthors(ctx context.Context, query string, topicLimit, limit int) ([]RankedAuthor, error) {
	fullQuery := fmt.Sprintf(rankAuthorsQuery, hybridTopicQuery)

	rows, err := s.db.QueryContext(ctx, fullQuery, query, s.alpha, topicLimit, limit)
	if err != nil {
		return nil, fmt.Errorf("rank authors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var authors []RankedAuthor
	for rows.Next() {
		var author RankedAuthor
		var details []byte
		if err := rows.Scan(&author.AuthorID, &author.DisplayName, &author.TotalScore, &author.TopicCount, &details); err != nil {
			return nil, fmt.Errorf("scan ranked author: %w", err)
		}
		if err := json.Unmarshal(details, &author.Topics); err != nil {
			return nil, fmt.Errorf("decode topic contributions: %w", err)
		}
		authors = append(authors, author)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranked authors: %w", err)
	}

	s.logger.DebugContext(ctx, "ranked authors by topic relevance",
		"query", query, "count", len(authors))
	return authors, nil
}
