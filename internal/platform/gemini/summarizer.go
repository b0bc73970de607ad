// Package gemini implements author summarization using Google's Gemini API.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/vnykmshr/papertrail/internal/config"
	"github.com/vnykmshr/papertrail/internal/domain"
	"github.com/vnykmshr/papertrail/internal/summary"
)

// maxPublicationsToSummarize bounds the prompt size. Authors carrying more
// publications must be ranked down first.
const maxPublicationsToSummarize = 10

const defaultMaxRetries = 3

const promptTemplateText = `Write a short blurb about the author {{.AuthorName}}'s research based on two factors:

1. The query: {{.Query}}
2. The author's publications:
{{range .Publications}}- **{{.Title}}** ({{.Venue}}, cited {{.Citations}} times)
{{end}}
The blurb should be a single paragraph of no more than 70 words.
Do not make assertions about the author's influence or standing in the field.
Go straight to a summary of the work itself, with no opinions about the researcher.
Do not output anything other than the summary.

Summary:`

type promptData struct {
	AuthorName   string
	Query        string
	Publications []promptPublication
}

type promptPublication struct {
	Title     string
	Venue     string
	Citations int
}

// Summarizer produces author summaries through the Gemini API. It
// implements summary.Summarizer.
type Summarizer struct {
	logger         *slog.Logger
	client         *genai.Client
	model          string
	promptTemplate *template.Template
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewSummarizer creates a Gemini-backed summarizer from the LLM
// configuration. Returns an error if the API key is missing or the client
// cannot be created.
func NewSummarizer(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*Summarizer, error) {
	if log == nil {
		return nil, errors.New("gemini: logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini: %w: API key not configured", summary.ErrUnavailable)
	}
	if cfg.ModelName == "" {
		return nil, errors.New("gemini: model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	promptTemplate, err := template.New("author-summary").Parse(promptTemplateText)
	if err != nil {
		return nil, fmt.Errorf("gemini: parse prompt template: %w", err)
	}

	return &Summarizer{
		logger:         log,
		client:         client,
		model:          cfg.ModelName,
		promptTemplate: promptTemplate,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: 2 * time.Second,
	}, nil
}

// SummarizeAuthor implements summary.Summarizer.
func (s *Summarizer) SummarizeAuthor(ctx context.Context, author domain.Author, query string) (string, error) {
	if len(author.Publications) > maxPublicationsToSummarize {
		return "", fmt.Errorf("%w: %d publications, at most %d allowed",
			summary.ErrTooManyPublications, len(author.Publications), maxPublicationsToSummarize)
	}

	prompt, err := s.buildPrompt(author, query)
	if err != nil {
		return "", err
	}

	return s.callWithRetry(ctx, author.Name, prompt)
}

func (s *Summarizer) buildPrompt(author domain.Author, query string) (string, error) {
	data := promptData{
		AuthorName: author.Name,
		Query:      query,
	}
	for _, pub := range author.Publications {
		title := pub.Bib.Title
		if title == "" {
			title = "Untitled"
		}
		venue := pub.Bib.Venue
		if venue == "" {
			venue = "Unknown venue"
		}
		data.Publications = append(data.Publications, promptPublication{
			Title:     title,
			Venue:     venue,
			Citations: pub.NumCitations,
		})
	}

	var buf bytes.Buffer
	if err := s.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("gemini: execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callWithRetry calls the Gemini API with exponential backoff and jitter.
// Permanent errors (blocked content, unusable responses) are returned
// without retrying.
func (s *Summarizer) callWithRetry(ctx context.Context, authorName, prompt string) (string, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		s.logger.DebugContext(ctx, "calling Gemini API",
			"author", authorName,
			"attempt", attempt+1,
			"max_attempts", s.maxRetries+1)

		text, err := s.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if errors.Is(err, summary.ErrContentBlocked) || errors.Is(err, summary.ErrInvalidResponse) {
			return "", err
		}

		s.logger.WarnContext(ctx, "Gemini API call failed",
			"author", authorName,
			"attempt", attempt+1,
			"error", err)

		if attempt == s.maxRetries {
			break
		}

		backoff := time.Duration(float64(s.retryBaseDelay) * math.Pow(2, float64(attempt)))
		jitter := time.Duration(rng.Int63n(int64(s.retryBaseDelay)))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("gemini: all %d attempts failed: %w", s.maxRetries+1, lastErr)
}

func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return extractText(resp)
}

// extractText pulls the summary text out of a generation response,
// classifying unusable responses as ErrInvalidResponse and safety stops as
// ErrContentBlocked.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", summary.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: safety filters", summary.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content", summary.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", fmt.Errorf("%w: no text parts in response", summary.ErrInvalidResponse)
	}
	return result, nil
}
