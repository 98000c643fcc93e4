package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// QuotaError indicates the provider rejected a request because the usage
// quota is exhausted. Quota exhaustion pauses the pipeline rather than being
// retried per job, so it must stay distinguishable from other failures.
type QuotaError struct {
	Model string
	Cause error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("LLM quota exceeded for model %s: %v", e.Model, e.Cause)
}

func (e *QuotaError) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates a collaborator call exceeded its deadline. Callers
// fall back to the heuristic scorer instead of discarding the posting.
type TimeoutError struct {
	Model string
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("LLM request timed out for model %s: %v", e.Model, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// IsQuotaExceeded reports whether err (anywhere in its chain) is a QuotaError.
func IsQuotaExceeded(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// IsTimeout reports whether err is a TimeoutError or a context deadline.
func IsTimeout(err error) bool {
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// classifyProviderError wraps raw provider errors into the typed failures the
// pipeline distinguishes. Gemini surfaces quota exhaustion as HTTP 429 /
// RESOURCE_EXHAUSTED in the error text.
func classifyProviderError(model string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Model: model, Cause: err}
	}
	msg := err.Error()
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429") ||
		strings.Contains(strings.ToLower(msg), "quota") {
		return &QuotaError{Model: model, Cause: err}
	}
	return fmt.Errorf("failed to generate content: %w", err)
}
