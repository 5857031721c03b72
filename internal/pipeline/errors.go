package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/local/answerpipe/internal/ai"
)

// NoScreenshotsError is a precondition failure: the queue feeding the request is empty.
// Never retried, surfaced before any network call.
type NoScreenshotsError struct {
	Queue string // "main" or "extra"
}

func (e *NoScreenshotsError) Error() string {
	return fmt.Sprintf("no screenshots in %s queue", e.Queue)
}

// OCRError marks a failed mandatory extraction: the configured model cannot accept
// images, so empty OCR output leaves nothing to send.
type OCRError struct {
	Reason string
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("ocr extraction failed: %s", e.Reason)
}

// ConfigError marks missing credentials or an unusable model configuration.
// The user must remediate externally; no retry.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ErrNoPriorResponse rejects a debug request with no previous assistant reply to debug.
var ErrNoPriorResponse = errors.New("no prior response to debug")

// Error kinds carried on sink events so the shell can pick a toast and always
// resolve its processing indicator.
const (
	KindNoScreenshots = "no_screenshots"
	KindAPI           = "api"
	KindOCR           = "ocr"
	KindConfig        = "config"
	KindCancelled     = "cancelled"
	KindUnknown       = "unknown"
)

// Categorize maps an error to its kind for the sink.
func Categorize(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return KindCancelled
	}
	var noShots *NoScreenshotsError
	if errors.As(err, &noShots) {
		return KindNoScreenshots
	}
	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return KindOCR
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return KindConfig
	}
	if errors.Is(err, ErrNoPriorResponse) {
		return KindConfig
	}
	if errors.Is(err, ai.ErrMissingKey) {
		return KindConfig
	}
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) {
		return KindAPI
	}
	return KindUnknown
}
