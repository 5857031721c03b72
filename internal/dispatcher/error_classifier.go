package dispatcher

import (
	"context"
	"errors"
	"strings"

	"github.com/local/answerpipe/internal/ai"
)

// isRetryable reports whether a failed attempt should be retried: upstream 429/503
// or a network-level timeout/reset. Fatal errors (bad request, missing credentials)
// fail the dispatch on the spot.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *ai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}

	// Per-attempt timeout; overall cancellation is filtered out by the caller.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if errors.Is(err, ai.ErrMissingKey) {
		return false
	}

	// Network errors without structure
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "eof") {
		return true
	}

	return false
}
