package scraper

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/job-agent/internal/types"
)

// defaultCaptchaMarkers identify challenge pages across common providers.
// Sources may extend the list via configuration.
var defaultCaptchaMarkers = []string{
	"g-recaptcha",
	"h-captcha",
	"cf-challenge",
	"are you a robot",
	"unusual traffic",
}

// SourceError is the terminal failure marker for one source's search. It is
// data, not a fatal fault: the orchestrator records it and continues with
// other sources.
type SourceError struct {
	Source  string
	Kind    types.FailureKind
	Message string
	// Selector carries diagnostic context for structural mismatches.
	Selector string
	Cause    error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("source %s failed (%s): %s", e.Source, e.Kind, e.Message)
	if e.Selector != "" {
		msg += fmt.Sprintf(" (selector %q)", e.Selector)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// classifyResponse inspects a fetch outcome and classifies the failure, if
// any. A nil return means the response is usable.
//
// Order matters: CAPTCHA detection wins over status-based rate limiting
// because a challenge page must abort the source rather than trigger a retry.
func classifyResponse(source *SourceConfig, result *FetchResult, fetchErr error) *SourceError {
	if fetchErr != nil {
		return &SourceError{
			Source:  source.Name,
			Kind:    types.FailureTransportError,
			Message: "request failed",
			Cause:   fetchErr,
		}
	}

	body := strings.ToLower(result.Body)
	for _, marker := range append(defaultCaptchaMarkers, source.CaptchaMarkers...) {
		if marker != "" && strings.Contains(body, strings.ToLower(marker)) {
			return &SourceError{
				Source:  source.Name,
				Kind:    types.FailureCaptchaBlocked,
				Message: fmt.Sprintf("captcha marker %q detected", marker),
			}
		}
	}

	switch result.StatusCode {
	case http.StatusTooManyRequests, http.StatusForbidden, http.StatusServiceUnavailable:
		return &SourceError{
			Source:  source.Name,
			Kind:    types.FailureRateLimited,
			Message: fmt.Sprintf("HTTP status %d", result.StatusCode),
		}
	}

	for _, marker := range source.BlockMarkers {
		if marker != "" && strings.Contains(body, strings.ToLower(marker)) {
			return &SourceError{
				Source:  source.Name,
				Kind:    types.FailureRateLimited,
				Message: fmt.Sprintf("block marker %q detected", marker),
			}
		}
	}

	if result.StatusCode < 200 || result.StatusCode >= 300 {
		return &SourceError{
			Source:  source.Name,
			Kind:    types.FailureTransportError,
			Message: fmt.Sprintf("unexpected HTTP status %d", result.StatusCode),
		}
	}

	return nil
}

// retryable reports whether a failure kind participates in backoff-and-retry.
// CAPTCHA and structural failures abort the source immediately.
func retryable(kind types.FailureKind) bool {
	return kind == types.FailureRateLimited || kind == types.FailureTransportError
}
