package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"chatmate/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// HuggingFaceSummarizer calls the Hugging Face OpenAI-compatible router.
// The credential is attached per call, so one instance serves every user.
type HuggingFaceSummarizer struct {
	client openai.Client
	cfg    Config
	log    *slog.Logger
}

// NewHuggingFaceSummarizer builds a new summarizer instance.
func NewHuggingFaceSummarizer(cfg Config, httpClient *http.Client, log *slog.Logger) *HuggingFaceSummarizer {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &HuggingFaceSummarizer{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		log:    log,
	}
}

// Summarize renders the prompt and returns the generated text.
func (s *HuggingFaceSummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", domain.SummarizationError(
			domain.KindTransportOrServerError,
			errors.New("input is empty"),
		)
	}

	prompt := RenderPrompt(s.cfg.PromptTemplate, text)

	resp, err := s.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(s.cfg.Model),
			MaxTokens:   openai.Int(s.cfg.MaxTokens),
			Temperature: openai.Float(s.cfg.Temperature),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		},
		option.WithAPIKey(strings.TrimSpace(input.Token)),
	)
	if err != nil {
		kind, status := classify(err)
		s.log.WarnContext(ctx, "Summarization request failed",
			"error", err,
			"kind", kind,
			"statusCode", status,
			"model", s.cfg.Model,
			"sourceURL", input.SourceURL)

		summErr := domain.SummarizationError(kind, fmt.Errorf("do request: %w", err))
		summErr.StatusCode = status

		return "", summErr
	}

	if len(resp.Choices) == 0 {
		return "", domain.SummarizationError(
			domain.KindTransportOrServerError,
			errors.New("response has no choices"),
		)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", domain.SummarizationError(
			domain.KindTransportOrServerError,
			fmt.Errorf("output text is missing (finishReason = %s)", resp.Choices[0].FinishReason),
		)
	}

	s.log.DebugContext(ctx, "Summary is generated",
		"model", s.cfg.Model,
		"promptChars", len(prompt),
		"summaryChars", len(summary),
		"completionTokens", resp.Usage.CompletionTokens)

	return summary, nil
}

// classify returns the error kind and, for HTTP error responses, the status.
func classify(err error) (domain.ErrorKind, int) {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return domain.KindTransportOrServerError, 0
	}

	if apiErr.StatusCode == http.StatusTooManyRequests {
		return domain.KindRateLimited, apiErr.StatusCode
	}

	return domain.KindTransportOrServerError, apiErr.StatusCode
}
