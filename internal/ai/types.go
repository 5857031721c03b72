package ai

import (
	"context"
	"errors"
	"fmt"
)

// InlineImage is a compressed screenshot ready for inline transport.
type InlineImage struct {
	MIME       string
	DataBase64 string
}

// Turn is one prior message threaded into the request for debug continuity.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Request represents a generic model inference request.
type Request struct {
	Model   string
	System  string
	Prompt  string
	Images  []InlineImage // empty on the OCR+text path
	History []Turn
}

// Response carries the raw model output.
type Response struct {
	Text         string
	UsedFallback bool
	TokensIn     int
	TokensOut    int
}

// Client interface for providers like OpenAI, Gemini.
type Client interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// ErrMissingKey marks a provider configured without credentials.
var ErrMissingKey = errors.New("missing api key")

// APIError is an upstream model failure with enough structure for retry decisions.
type APIError struct {
	Provider   string
	StatusCode int
	Retryable  bool
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// NewAPIError classifies a status code per the retry policy: 429 and 503 are retryable.
func NewAPIError(provider string, status int, msg string) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: status,
		Retryable:  status == 429 || status == 503,
		Message:    msg,
	}
}

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}
