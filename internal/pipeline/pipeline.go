package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"chatmate/internal/domain"
	"chatmate/internal/extractor"
	"chatmate/internal/summarizer"
)

// ContentExtractor turns a URL into documents.
type ContentExtractor interface {
	Extract(ctx context.Context, rawURL string, languageCode string) (domain.ExtractedContent, error)
}

// Config groups everything that shapes a run. Tests replace the summarizer
// settings (prompt template, model, generation parameters) here.
type Config struct {
	Extractor  extractor.Config
	Summarizer summarizer.Config
}

func DefaultConfig() Config {
	return Config{
		Extractor: extractor.Config{
			InsecureTLS: true,
			Timeout:     30 * time.Second,
		},
		Summarizer: summarizer.DefaultConfig(),
	}
}

type Result struct {
	Content domain.ExtractedContent
	Summary domain.Summary
}

type Pipeline struct {
	extractor  ContentExtractor
	summarizer summarizer.Summarizer
	log        *slog.Logger
}

// New wires the default extractor and the Hugging Face summarizer.
func New(cfg Config, log *slog.Logger) *Pipeline {
	return NewWithStages(
		extractor.New(cfg.Extractor, log),
		summarizer.NewHuggingFaceSummarizer(cfg.Summarizer, nil, log),
		log,
	)
}

func NewWithStages(ext ContentExtractor, sum summarizer.Summarizer, log *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor:  ext,
		summarizer: sum,
		log:        log,
	}
}

// Run validates the request, extracts content and summarizes it. Every
// returned error is a *domain.Error. On summarization failure the extracted
// content is still returned.
func (p *Pipeline) Run(ctx context.Context, req domain.Request) (Result, error) {
	if err := Validate(req.Token, req.URL); err != nil {
		p.log.InfoContext(ctx, "Request is rejected",
			"kind", domain.KindOf(err),
			"url", req.URL)

		return Result{}, err
	}

	rawURL := strings.TrimSpace(req.URL)

	language := req.Language
	if language.Code == "" {
		language = domain.English
	}

	start := time.Now()

	content, err := p.extractor.Extract(ctx, rawURL, language.Code)
	if err != nil {
		if domain.KindOf(err) == "" {
			err = domain.ExtractionError(domain.KindFetchFailed, err)
		}
		return Result{}, err
	}

	text, err := p.summarizer.Summarize(ctx, summarizer.Input{
		Text:      content.Text(),
		SourceURL: rawURL,
		Token:     req.Token,
	})
	if err != nil {
		if domain.KindOf(err) == "" {
			err = domain.SummarizationError(domain.KindTransportOrServerError, err)
		}
		return Result{Content: content}, err
	}

	p.log.InfoContext(ctx, "Summary is ready",
		"url", rawURL,
		"languageCode", language.Code,
		"documentCount", len(content.Documents),
		"summaryWords", len(strings.Fields(text)),
		"duration", time.Since(start).String())

	return Result{
		Content: content,
		Summary: domain.Summary{Text: text},
	}, nil
}
