package extractor

import (
	"bytes"
	"html"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Readability sometimes returns only a byline or title; shorter output falls
// back to paragraph extraction.
const minReadableChars = 200

const (
	noiseSelectors = "script, style, noscript, template, svg, iframe, embed, object, " +
		"canvas, nav, header, footer, aside, " +
		"[role=navigation], [role=banner], [role=contentinfo]"
	blockSelectors = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td"
)

// extractArticle returns the page title and its main readable text.
func extractArticle(body []byte, pageURL *url.URL) (string, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", stripTags(string(body))
	}

	title := pageTitle(doc)

	doc.Find(noiseSelectors).Remove()

	cleaned, err := doc.Html()
	if err != nil {
		cleaned = string(body)
	}

	if text := readableText(cleaned, pageURL); len(text) >= minReadableChars {
		return title, text
	}

	if text := blockText(doc); text != "" {
		return title, text
	}

	return title, stripTags(cleaned)
}

func readableText(rawHTML string, pageURL *url.URL) string {
	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	if err = article.RenderText(&sb); err != nil {
		return ""
	}

	return normalizeLines(sb.String())
}

func blockText(doc *goquery.Document) string {
	var paragraphs []string

	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are emitted by their innermost match.
		if s.Find(blockSelectors).Length() > 0 {
			return
		}

		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		if n := len(paragraphs); n > 0 && paragraphs[n-1] == text {
			return
		}

		paragraphs = append(paragraphs, text)
	})

	return strings.Join(paragraphs, "\n\n")
}

func pageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if content, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok {
		if content = strings.TrimSpace(content); content != "" {
			return content
		}
	}

	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// stripTags drops all markup and returns whitespace-normalized text.
func stripTags(raw string) string {
	return normalizeLines(html.UnescapeString(bluemonday.StrictPolicy().Sanitize(raw)))
}

// normalizeLines collapses runs of spaces inside lines and drops blank lines.
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}
