package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"chatmate/internal/domain"
	"chatmate/internal/extractor"
	"chatmate/internal/pipeline"
	"chatmate/internal/summarizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	calls   int
	content domain.ExtractedContent
	err     error
}

func (s *stubExtractor) Extract(context.Context, string, string) (domain.ExtractedContent, error) {
	s.calls++
	return s.content, s.err
}

type stubSummarizer struct {
	calls int
	input summarizer.Input
	text  string
	err   error
}

func (s *stubSummarizer) Summarize(_ context.Context, input summarizer.Input) (string, error) {
	s.calls++
	s.input = input

	return s.text, s.err
}

type recordingTranscripts struct {
	calls        int
	languageCode string
	err          error
}

func (r *recordingTranscripts) FetchTranscript(
	_ context.Context,
	_ *url.URL,
	languageCode string,
) ([]domain.Document, error) {
	r.calls++
	r.languageCode = languageCode
	if r.err != nil {
		return nil, r.err
	}

	return []domain.Document{{PageContent: "नमस्ते दुनिया"}}, nil
}

type recordingPages struct {
	calls int
	docs  []domain.Document
}

func (r *recordingPages) FetchPage(context.Context, *url.URL) ([]domain.Document, error) {
	r.calls++
	return r.docs, nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunStopsOnInputError(t *testing.T) {
	ext := &stubExtractor{}
	sum := &stubSummarizer{}
	p := pipeline.NewWithStages(ext, sum, discard())

	_, err := p.Run(context.Background(), domain.Request{URL: "https://example.com"})
	require.Error(t, err)

	assert.Equal(t, domain.KindMissingToken, domain.KindOf(err))
	assert.Zero(t, ext.calls)
	assert.Zero(t, sum.calls)
}

func TestRunMissingTranscriptNeverSummarizes(t *testing.T) {
	transcripts := &recordingTranscripts{err: errors.New(`no transcript in language "hi"`)}
	pages := &recordingPages{}
	sum := &stubSummarizer{text: "unused"}

	p := pipeline.NewWithStages(extractor.NewWithFetchers(transcripts, pages, discard()), sum, discard())

	_, err := p.Run(context.Background(), domain.Request{
		Token:    "abc123",
		URL:      "https://youtu.be/dQw4w9WgXcQ",
		Language: domain.Hindi,
	})
	require.Error(t, err)

	var perr *domain.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.StageExtraction, perr.Stage)
	assert.Equal(t, domain.KindFetchFailed, perr.Kind)
	assert.Zero(t, sum.calls)
}

func TestRunNoContentNeverSummarizes(t *testing.T) {
	pages := &recordingPages{docs: []domain.Document{{PageContent: "  "}}}
	sum := &stubSummarizer{text: "unused"}

	p := pipeline.NewWithStages(
		extractor.NewWithFetchers(&recordingTranscripts{}, pages, discard()),
		sum,
		discard(),
	)

	_, err := p.Run(context.Background(), domain.Request{
		Token:    "abc123",
		URL:      "https://example.com/empty",
		Language: domain.English,
	})
	require.Error(t, err)

	assert.Equal(t, domain.KindNoContentFound, domain.KindOf(err))
	assert.Zero(t, sum.calls)
}

func TestRunGenericArticle(t *testing.T) {
	ext := &stubExtractor{content: domain.ExtractedContent{Documents: []domain.Document{
		{PageContent: "Article body about something interesting."},
	}}}
	sum := &stubSummarizer{text: "The article is about something interesting."}
	p := pipeline.NewWithStages(ext, sum, discard())

	res, err := p.Run(context.Background(), domain.Request{
		Token:    "abc123",
		URL:      "https://example.com/article",
		Language: domain.ParseLanguage("English (en)"),
	})
	require.NoError(t, err)

	require.Len(t, res.Content.Documents, 1)
	assert.NotEmpty(t, res.Content.Documents[0].PageContent)
	assert.NotEmpty(t, res.Summary.Text)
	assert.LessOrEqual(t, len(strings.Fields(res.Summary.Text)), 300)
	assert.Equal(t, "abc123", sum.input.Token)
	assert.Equal(t, "https://example.com/article", sum.input.SourceURL)
	assert.Equal(t, "Article body about something interesting.", sum.input.Text)
}

func TestRunVideoUsesTranscriptStrategyWithLanguage(t *testing.T) {
	transcripts := &recordingTranscripts{}
	pages := &recordingPages{}
	sum := &stubSummarizer{text: "सारांश"}

	p := pipeline.NewWithStages(extractor.NewWithFetchers(transcripts, pages, discard()), sum, discard())

	res, err := p.Run(context.Background(), domain.Request{
		Token:    "abc123",
		URL:      "https://youtu.be/dQw4w9WgXcQ",
		Language: domain.ParseLanguage("Hindi (hi)"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, transcripts.calls)
	assert.Equal(t, "hi", transcripts.languageCode)
	assert.Zero(t, pages.calls)
	assert.Equal(t, "सारांश", res.Summary.Text)
}

func TestRunKeepsContentOnSummarizationError(t *testing.T) {
	ext := &stubExtractor{content: domain.ExtractedContent{Documents: []domain.Document{{PageContent: "body"}}}}
	sum := &stubSummarizer{err: errors.New("connection reset")}
	p := pipeline.NewWithStages(ext, sum, discard())

	res, err := p.Run(context.Background(), domain.Request{Token: "abc123", URL: "https://example.com"})
	require.Error(t, err)

	assert.Equal(t, domain.KindTransportOrServerError, domain.KindOf(err))
	assert.Equal(t, "body", res.Content.Preview())
	assert.Empty(t, res.Summary.Text)
}

func TestRunDefaultsLanguageToEnglish(t *testing.T) {
	transcripts := &recordingTranscripts{}
	p := pipeline.NewWithStages(
		extractor.NewWithFetchers(transcripts, &recordingPages{}, discard()),
		&stubSummarizer{text: "ok"},
		discard(),
	)

	_, err := p.Run(context.Background(), domain.Request{Token: "abc123", URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, "en", transcripts.languageCode)
}

func TestRunEndToEndOverHTTP(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "Go is an open source programming language.")
	}))
	t.Cleanup(page.Close)

	var prompt string
	hf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) > 0 {
			prompt = body.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "1", "object": "chat.completion", "created": 1, "model": "m",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Go is a language."}}]}`)
	}))
	t.Cleanup(hf.Close)

	cfg := pipeline.DefaultConfig()
	cfg.Extractor.InsecureTLS = false
	cfg.Summarizer.BaseURL = hf.URL
	cfg.Summarizer.PromptTemplate = "Summarize briefly: {text}"

	p := pipeline.New(cfg, discard())

	res, err := p.Run(context.Background(), domain.Request{
		Token:    "abc123",
		URL:      page.URL + "/article",
		Language: domain.English,
	})
	require.NoError(t, err)

	assert.Equal(t, "Go is a language.", res.Summary.Text)
	assert.Equal(t, "Summarize briefly: Go is an open source programming language.", prompt)
}

func TestRunEndToEndRateLimited(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "content")
	}))
	t.Cleanup(page.Close)

	hf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error": {"message": "rate limited"}}`)
	}))
	t.Cleanup(hf.Close)

	cfg := pipeline.DefaultConfig()
	cfg.Summarizer.BaseURL = hf.URL

	_, err := pipeline.New(cfg, discard()).Run(context.Background(), domain.Request{
		Token: "abc123",
		URL:   page.URL,
	})
	require.Error(t, err)

	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
	assert.Equal(t,
		"Rate limit exceeded. Please wait a moment and try again or use a different API key.",
		domain.UserMessage(err))
}
