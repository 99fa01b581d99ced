package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"chatmate/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Language
	}{
		{"English (en)", domain.English},
		{"Hindi (hi)", domain.Hindi},
		{"hi", domain.Hindi},
		{" EN ", domain.English},
		{"", domain.English},
		{"Klingon (tl)", domain.English},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseLanguage(tt.raw))
		})
	}
}

func TestExtractedContentText(t *testing.T) {
	c := domain.ExtractedContent{Documents: []domain.Document{
		{PageContent: " first "},
		{PageContent: "   "},
		{PageContent: "second"},
	}}

	assert.Equal(t, "first\n\nsecond", c.Text())
	assert.Equal(t, "first", c.Preview())
	assert.Empty(t, domain.ExtractedContent{}.Preview())
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("run: %w", domain.SummarizationError(domain.KindRateLimited, errors.New("429")))

	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"missing token", domain.InputError(domain.KindMissingToken), "Please provide a HuggingFace API token."},
		{"missing url", domain.InputError(domain.KindMissingURL), "Please enter a URL to proceed."},
		{
			"rate limited",
			domain.SummarizationError(domain.KindRateLimited, errors.New("429")),
			"Rate limit exceeded. Please wait a moment and try again or use a different API key.",
		},
		{
			"fetch failed",
			domain.ExtractionError(domain.KindFetchFailed, errors.New("boom")),
			"Error loading content from the URL: boom",
		},
		{
			"http status",
			&domain.Error{
				Stage:      domain.StageSummarization,
				Kind:       domain.KindTransportOrServerError,
				StatusCode: 503,
				Err:        errors.New("503 Service Unavailable"),
			},
			"HTTP Error: 503 Service Unavailable",
		},
		{
			"transport failure",
			domain.SummarizationError(domain.KindTransportOrServerError, errors.New("connection reset")),
			"Error during summarization: connection reset",
		},
		{"unclassified", errors.New("boom"), "Error during summarization: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.UserMessage(tt.err))
		})
	}
}
