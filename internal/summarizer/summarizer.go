package summarizer

import (
	"context"
	"strings"
)

const DefaultPromptTemplate = `
Provide a summary of the following content in 300 words:
Content: {text}
`

const textPlaceholder = "{text}"

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the extracted plain text to summarise.
	Text string
	// SourceURL is optional metadata used only for logging.
	SourceURL string
	// Token is the caller-supplied credential for the inference endpoint.
	Token string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

// Config holds the build-time generation settings.
type Config struct {
	BaseURL        string
	Model          string
	MaxTokens      int64
	Temperature    float64
	PromptTemplate string
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://router.huggingface.co/v1",
		Model:          "mistralai/Mistral-7B-Instruct-v0.3",
		MaxTokens:      512,
		Temperature:    0.7,
		PromptTemplate: DefaultPromptTemplate,
	}
}

// RenderPrompt substitutes text into the template's {text} placeholder.
func RenderPrompt(template string, text string) string {
	if template == "" {
		template = DefaultPromptTemplate
	}

	return strings.ReplaceAll(template, textPlaceholder, text)
}
