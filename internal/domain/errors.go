package domain

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageInput         Stage = "input"
	StageExtraction    Stage = "extraction"
	StageSummarization Stage = "summarization"
)

type ErrorKind string

const (
	KindMissingToken ErrorKind = "missing_token"
	KindMissingURL   ErrorKind = "missing_url"
	KindMalformedURL ErrorKind = "malformed_url"

	KindFetchFailed    ErrorKind = "fetch_failed"
	KindNoContentFound ErrorKind = "no_content_found"

	KindRateLimited            ErrorKind = "rate_limited"
	KindTransportOrServerError ErrorKind = "transport_or_server_error"
)

// Error is a classified pipeline failure. Err is optional. StatusCode is set
// when a remote endpoint answered with an HTTP error status.
type Error struct {
	Stage      Stage
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	}

	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InputError(kind ErrorKind) *Error {
	return &Error{Stage: StageInput, Kind: kind}
}

func ExtractionError(kind ErrorKind, err error) *Error {
	return &Error{Stage: StageExtraction, Kind: kind, Err: err}
}

func SummarizationError(kind ErrorKind, err error) *Error {
	return &Error{Stage: StageSummarization, Kind: kind, Err: err}
}

// KindOf returns the classification of err, or "" when err is not a *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

// UserMessage converts any pipeline error into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("Error during summarization: %v", err)
	}

	switch e.Kind {
	case KindMissingToken:
		return "Please provide a HuggingFace API token."
	case KindMissingURL:
		return "Please enter a URL to proceed."
	case KindMalformedURL:
		return "Please enter a valid URL. It should be a YouTube video or a website URL."
	case KindFetchFailed:
		return fmt.Sprintf("Error loading content from the URL: %v", e.Err)
	case KindNoContentFound:
		return "No content could be extracted from the provided URL. " +
			"Please check if the URL is correct and accessible."
	case KindRateLimited:
		return "Rate limit exceeded. Please wait a moment and try again or use a different API key."
	case KindTransportOrServerError:
		if e.StatusCode != 0 {
			return fmt.Sprintf("HTTP Error: %v", e.Err)
		}
		return fmt.Sprintf("Error during summarization: %v", e.Err)
	default:
		return e.Error()
	}
}
