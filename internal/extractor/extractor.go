package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"chatmate/internal/domain"
)

// Strategy is resolved once per request from the URL host.
type Strategy int

const (
	StrategyPage Strategy = iota
	StrategyTranscript
)

func (s Strategy) String() string {
	switch s {
	case StrategyTranscript:
		return "transcript"
	case StrategyPage:
		return "page"
	default:
		return "unknown"
	}
}

//nolint:gochecknoglobals // Immutable host list.
var videoHosts = []string{
	"youtube.com",
	"youtu.be",
	"youtube-nocookie.com",
}

// SelectStrategy picks the transcript strategy for video-hosting domains and
// the generic page strategy for everything else.
func SelectStrategy(u *url.URL) Strategy {
	if u == nil {
		return StrategyPage
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	for _, h := range videoHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return StrategyTranscript
		}
	}

	return StrategyPage
}

type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoURL *url.URL, languageCode string) ([]domain.Document, error)
}

type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL *url.URL) ([]domain.Document, error)
}

type Config struct {
	InsecureTLS bool
	Timeout     time.Duration
}

type Extractor struct {
	transcripts TranscriptFetcher
	pages       PageFetcher
	log         *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Extractor {
	return NewWithFetchers(
		NewYouTubeTranscripts(NewHTTPClient(false, cfg.Timeout), log),
		NewWebPages(NewHTTPClient(cfg.InsecureTLS, cfg.Timeout), log),
		log,
	)
}

func NewWithFetchers(transcripts TranscriptFetcher, pages PageFetcher, log *slog.Logger) *Extractor {
	return &Extractor{
		transcripts: transcripts,
		pages:       pages,
		log:         log,
	}
}

// Extract makes a single fetch attempt with the strategy matching rawURL.
func (e *Extractor) Extract(
	ctx context.Context,
	rawURL string,
	languageCode string,
) (domain.ExtractedContent, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return domain.ExtractedContent{}, domain.ExtractionError(
			domain.KindFetchFailed,
			fmt.Errorf("parse URL: %w", err),
		)
	}

	strategy := SelectStrategy(u)

	var docs []domain.Document
	switch strategy {
	case StrategyTranscript:
		docs, err = e.transcripts.FetchTranscript(ctx, u, languageCode)
		if err != nil {
			err = fmt.Errorf("fetch transcript: %w", err)
		}
	case StrategyPage:
		docs, err = e.pages.FetchPage(ctx, u)
		if err != nil {
			err = fmt.Errorf("fetch page: %w", err)
		}
	default:
		err = fmt.Errorf("unknown strategy %d", strategy)
	}

	if err != nil {
		e.log.WarnContext(ctx, "Failed to extract content",
			"error", err,
			"url", u.String(),
			"strategy", strategy.String(),
			"languageCode", languageCode)

		return domain.ExtractedContent{}, domain.ExtractionError(domain.KindFetchFailed, err)
	}

	nonEmpty := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		d.PageContent = strings.TrimSpace(d.PageContent)
		if d.PageContent == "" {
			continue
		}
		nonEmpty = append(nonEmpty, d)
	}

	if len(nonEmpty) == 0 {
		e.log.WarnContext(ctx, "No content is extracted",
			"url", u.String(),
			"strategy", strategy.String(),
			"documentCount", len(docs))

		return domain.ExtractedContent{}, domain.ExtractionError(
			domain.KindNoContentFound,
			errors.New("zero content items"),
		)
	}

	e.log.InfoContext(ctx, "Content is extracted",
		"url", u.String(),
		"strategy", strategy.String(),
		"languageCode", languageCode,
		"documentCount", len(nonEmpty))

	return domain.ExtractedContent{Documents: nonEmpty}, nil
}
