package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"chatmate/internal/domain"

	"github.com/mmcdole/gofeed"
)

// WebPages downloads an arbitrary URL and turns it into documents.
type WebPages struct {
	client *http.Client
	log    *slog.Logger
}

func NewWebPages(client *http.Client, log *slog.Logger) *WebPages {
	return &WebPages{
		client: client,
		log:    log,
	}
}

func (p *WebPages) FetchPage(ctx context.Context, pageURL *url.URL) ([]domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	setBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			p.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", pageURL.String(),
				"operation", "FetchPage")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	return p.parseBody(ctx, body, resp.Header.Get("Content-Type"), finalURL), nil
}

func (p *WebPages) parseBody(
	ctx context.Context,
	body []byte,
	contentType string,
	pageURL *url.URL,
) []domain.Document {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}

	source := pageURL.String()

	if mediaType == "text/plain" {
		return []domain.Document{{
			PageContent: normalizeLines(string(body)),
			Metadata:    map[string]string{"source": source},
		}}
	}

	if gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown {
		docs, feedErr := p.parseFeed(ctx, body, source)
		if feedErr == nil {
			return docs
		}

		p.log.WarnContext(ctx, "Failed to parse feed so HTML extraction will be used",
			"error", feedErr,
			"url", source)
	}

	title, text := extractArticle(body, pageURL)

	meta := map[string]string{"source": source}
	if title != "" {
		meta["title"] = title
	}

	return []domain.Document{{PageContent: text, Metadata: meta}}
}

// parseFeed produces one document per feed item. gofeed.Parser keeps
// per-parse state, so each call gets its own.
func (p *WebPages) parseFeed(ctx context.Context, body []byte, source string) ([]domain.Document, error) {
	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	docs := make([]domain.Document, 0, len(parsed.Items))

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		content := item.Content
		if strings.TrimSpace(content) == "" {
			content = item.Description
		}

		var sb strings.Builder
		if title := strings.TrimSpace(item.Title); title != "" {
			sb.WriteString(title)
			sb.WriteString("\n\n")
		}
		sb.WriteString(stripTags(content))

		meta := map[string]string{
			"source":     source,
			"feed_title": strings.TrimSpace(parsed.Title),
			"title":      strings.TrimSpace(item.Title),
			"link":       strings.TrimSpace(item.Link),
		}
		if item.PublishedParsed != nil {
			meta["published"] = item.PublishedParsed.UTC().Format("2006-01-02T15:04:05Z")
		}

		docs = append(docs, domain.Document{
			PageContent: strings.TrimSpace(sb.String()),
			Metadata:    meta,
		})
	}

	p.log.DebugContext(ctx, "Feed is parsed",
		"url", source,
		"feedType", parsed.FeedType,
		"itemCount", len(docs))

	return docs, nil
}
