// Package openalex implements the scholarly source Library against the
// OpenAlex REST API. Requests are rate limited client-side to stay within
// the API's politeness policy, and carry a mailto parameter when one is
// configured so OpenAlex routes them to the polite pool.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vnykmshr/papertrail/internal/domain"
	"github.com/vnykmshr/papertrail/internal/platform/logger"
	"github.com/vnykmshr/papertrail/internal/source"
	"github.com/vnykmshr/papertrail/pkg/metrics"
)

const sourceName = "openalex"

// Config holds the settings for an OpenAlex client.
type Config struct {
	// BaseURL is the API root, normally https://api.openalex.org/.
	BaseURL string

	// MailTo, when set, is sent with every request per the OpenAlex
	// polite pool convention.
	MailTo string

	// RequestsPerSecond caps the client-side request rate. Defaults to 5.
	RequestsPerSecond float64

	// HTTPClient is the underlying HTTP client. Defaults to a client
	// with a 15 second timeout.
	HTTPClient *http.Client

	// Metrics records request counts and latencies. Defaults to the
	// process-wide registry.
	Metrics *metrics.Registry
}

// Client talks to the OpenAlex API. It implements source.Library.
type Client struct {
	baseURL    string
	mailTo     string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Registry
}

// New creates an OpenAlex client. Panics if cfg.BaseURL is empty.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		panic("openalex: BaseURL must not be empty")
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.DefaultRegistry
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		mailTo:     cfg.MailTo,
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		metrics:    cfg.Metrics,
	}
}

// SearchAuthors implements source.Library.
func (c *Client) SearchAuthors(ctx context.Context, keywords []string, limit int) ([]domain.Author, error) {
	query := url.Values{
		"search":   {strings.Join(keywords, " ")},
		"per-page": {strconv.Itoa(limit)},
	}

	var resp authorListResponse
	if err := c.get(ctx, "search_authors", "/authors", query, &resp); err != nil {
		return nil, err
	}

	authors := make([]domain.Author, 0, len(resp.Results))
	for _, record := range resp.Results {
		authors = append(authors, record.toDomain())
	}
	return authors, nil
}

// SearchPublications implements source.Library.
func (c *Client) SearchPublications(ctx context.Context, query string, limit int) ([]domain.Publication, error) {
	params := url.Values{
		"search":   {query},
		"per-page": {strconv.Itoa(limit)},
		"filter":   {"is_paratext:false"},
	}

	var resp workListResponse
	if err := c.get(ctx, "search_publications", "/works", params, &resp); err != nil {
		return nil, err
	}

	publications := make([]domain.Publication, 0, len(resp.Results))
	for _, record := range resp.Results {
		publications = append(publications, record.toDomain())
	}
	return publications, nil
}

// FillAuthor implements source.Library. It fetches the author's most cited
// works and returns a filled copy.
func (c *Client) FillAuthor(ctx context.Context, author domain.Author) (domain.Author, error) {
	if author.ScholarID == "" {
		return domain.Author{}, source.ErrAuthorNotFound
	}

	params := url.Values{
		"filter":   {"author.id:" + author.ScholarID},
		"sort":     {"cited_by_count:desc"},
		"per-page": {"50"},
	}

	var resp workListResponse
	if err := c.get(ctx, "fill_author", "/works", params, &resp); err != nil {
		return domain.Author{}, err
	}

	filled := author
	filled.Publications = make([]domain.Publication, 0, len(resp.Results))
	for _, record := range resp.Results {
		filled.Publications = append(filled.Publications, record.toDomain())
	}
	filled.Filled = true
	return filled, nil
}

func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("openalex rate limit wait: %w", err)
	}

	if c.mailTo != "" {
		query.Set("mailto", c.mailTo)
	}

	reqURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("openalex build request: %w", err)
	}

	start := time.Now()
	c.metrics.SourceRequests.WithLabelValues(sourceName, operation).Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.SourceErrors.WithLabelValues(sourceName, operation).Inc()
		return fmt.Errorf("openalex %s: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	elapsed := time.Since(start)
	c.metrics.SourceRequestDuration.WithLabelValues(sourceName, operation).Observe(elapsed.Seconds())

	if resp.StatusCode == http.StatusNotFound {
		return source.ErrAuthorNotFound
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.SourceErrors.WithLabelValues(sourceName, operation).Inc()
		return fmt.Errorf("openalex %s: unexpected status %d", operation, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.SourceErrors.WithLabelValues(sourceName, operation).Inc()
		return fmt.Errorf("openalex %s: decode response: %w", operation, err)
	}

	logger.FromContext(ctx).Debug("openalex request completed",
		"operation", operation, "duration", elapsed)
	return nil
}
