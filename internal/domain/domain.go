package domain

import (
	"regexp"
	"strings"
)

// Request is a single summarize action. It is never stored.
type Request struct {
	Token    string
	URL      string
	Language Language
}

type Language struct {
	Code  string
	Label string
}

//nolint:gochecknoglobals // Immutable option list.
var (
	English = Language{Code: "en", Label: "English (en)"}
	Hindi   = Language{Code: "hi", Label: "Hindi (hi)"}

	Languages = []Language{English, Hindi}
)

var languageCodeRe = regexp.MustCompile(`\(([A-Za-z]{2})\)\s*$`)

// ParseLanguage accepts either a bare code ("hi") or a selector label
// ("Hindi (hi)"). Unknown values fall back to English.
func ParseLanguage(raw string) Language {
	raw = strings.TrimSpace(raw)

	code := strings.ToLower(raw)
	if m := languageCodeRe.FindStringSubmatch(raw); len(m) == 2 {
		code = strings.ToLower(m[1])
	}

	for _, l := range Languages {
		if l.Code == code {
			return l
		}
	}

	return English
}

type Document struct {
	PageContent string
	Metadata    map[string]string
}

type ExtractedContent struct {
	Documents []Document
}

// Text joins all document contents the way a single "stuff" prompt expects.
func (c ExtractedContent) Text() string {
	parts := make([]string, 0, len(c.Documents))
	for _, d := range c.Documents {
		if text := strings.TrimSpace(d.PageContent); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n")
}

// Preview is the content shown in the "View Extracted Content" block.
func (c ExtractedContent) Preview() string {
	if len(c.Documents) == 0 {
		return ""
	}

	return strings.TrimSpace(c.Documents[0].PageContent)
}

type Summary struct {
	Text string
}

const (
	SummaryFileName = "summary.txt"
	SummaryMIMEType = "text/plain"
)
