package gemini

import (
	"context"
	"log/slog"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/vnykmshr/papertrail/internal/config"
	"github.com/vnykmshr/papertrail/internal/domain"
	"github.com/vnykmshr/papertrail/internal/summary"
)

func testSummarizer(t *testing.T) *Summarizer {
	t.Helper()

	tmpl, err := template.New("author-summary").Parse(promptTemplateText)
	require.NoError(t, err)

	return &Summarizer{
		logger:         slog.Default(),
		model:          "gemini-2.0-flash",
		promptTemplate: tmpl,
	}
}

func TestNewSummarizerRequiresAPIKey(t *testing.T) {
	_, err := NewSummarizer(context.Background(), slog.Default(), config.LLMConfig{
		ModelName: "gemini-2.0-flash",
	})
	assert.ErrorIs(t, err, summary.ErrUnavailable)
}

func TestNewSummarizerRequiresLogger(t *testing.T) {
	_, err := NewSummarizer(context.Background(), nil, config.LLMConfig{
		GeminiAPIKey: "key",
		ModelName:    "gemini-2.0-flash",
	})
	assert.Error(t, err)
}

func TestSummarizeAuthorRejectsUnrankedPublications(t *testing.T) {
	s := testSummarizer(t)

	author := domain.Author{ScholarID: "a1", Name: "Ada"}
	for i := 0; i < maxPublicationsToSummarize+1; i++ {
		author.Publications = append(author.Publications, domain.Publication{
			Bib: domain.BibEntry{Title: "Paper"},
		})
	}

	_, err := s.SummarizeAuthor(context.Background(), author, "computing")
	assert.ErrorIs(t, err, summary.ErrTooManyPublications)
}

func TestBuildPrompt(t *testing.T) {
	s := testSummarizer(t)

	author := domain.Author{
		Name: "Barbara Liskov",
		Publications: []domain.Publication{
			{
				Bib:          domain.BibEntry{Title: "A History of CLU", Venue: "SIGPLAN"},
				NumCitations: 500,
			},
			{
				Bib: domain.BibEntry{},
			},
		},
	}

	prompt, err := s.buildPrompt(author, "programming languages")
	require.NoError(t, err)

	assert.Contains(t, prompt, "Barbara Liskov")
	assert.Contains(t, prompt, "programming languages")
	assert.Contains(t, prompt, "**A History of CLU** (SIGPLAN, cited 500 times)")
	assert.Contains(t, prompt, "**Untitled** (Unknown venue, cited 0 times)")
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestExtractText(t *testing.T) {
	text, err := extractText(textResponse(
		&genai.Part{Text: "Works on distributed systems"},
		&genai.Part{Text: " and consensus."},
	))
	require.NoError(t, err)
	assert.Equal(t, "Works on distributed systems and consensus.", text)
}

func TestExtractTextTrimsWhitespace(t *testing.T) {
	text, err := extractText(textResponse(&genai.Part{Text: "  summary  \n"}))
	require.NoError(t, err)
	assert.Equal(t, "summary", text)
}

func TestExtractTextNoCandidates(t *testing.T) {
	_, err := extractText(nil)
	assert.ErrorIs(t, err, summary.ErrInvalidResponse)

	_, err = extractText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, summary.ErrInvalidResponse)
}

func TestExtractTextSafetyStop(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{FinishReason: genai.FinishReasonSafety},
		},
	}
	_, err := extractText(resp)
	assert.ErrorIs(t, err, summary.ErrContentBlocked)
}

func TestExtractTextEmptyContent(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}
	_, err := extractText(resp)
	assert.ErrorIs(t, err, summary.ErrInvalidResponse)

	_, err = extractText(textResponse(&genai.Part{}))
	assert.ErrorIs(t, err, summary.ErrInvalidResponse)
}
