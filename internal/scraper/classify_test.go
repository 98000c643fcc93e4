package scraper

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/types"
)

func TestClassifyResponse(t *testing.T) {
	source := &SourceConfig{
		Name:           "boards",
		CaptchaMarkers: []string{"press-and-hold"},
		BlockMarkers:   []string{"access denied"},
	}

	tests := []struct {
		name     string
		result   *FetchResult
		fetchErr error
		want     types.FailureKind
	}{
		{
			name:     "network failure",
			fetchErr: errors.New("dial tcp: timeout"),
			want:     types.FailureTransportError,
		},
		{
			name:   "recaptcha marker",
			result: &FetchResult{Body: `<div class="g-recaptcha">`, StatusCode: http.StatusOK},
			want:   types.FailureCaptchaBlocked,
		},
		{
			name:   "source-specific captcha marker",
			result: &FetchResult{Body: "Press-and-Hold to continue", StatusCode: http.StatusOK},
			want:   types.FailureCaptchaBlocked,
		},
		{
			name:   "captcha wins over rate-limit status",
			result: &FetchResult{Body: "unusual traffic from your network", StatusCode: http.StatusTooManyRequests},
			want:   types.FailureCaptchaBlocked,
		},
		{
			name:   "429 rate limited",
			result: &FetchResult{Body: "slow down", StatusCode: http.StatusTooManyRequests},
			want:   types.FailureRateLimited,
		},
		{
			name:   "403 treated as rate limited",
			result: &FetchResult{Body: "", StatusCode: http.StatusForbidden},
			want:   types.FailureRateLimited,
		},
		{
			name:   "block marker on 200",
			result: &FetchResult{Body: "Access Denied", StatusCode: http.StatusOK},
			want:   types.FailureRateLimited,
		},
		{
			name:   "server error",
			result: &FetchResult{Body: "oops", StatusCode: http.StatusBadGateway},
			want:   types.FailureTransportError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcErr := classifyResponse(source, tt.result, tt.fetchErr)
			require.NotNil(t, srcErr)
			assert.Equal(t, tt.want, srcErr.Kind)
			assert.Equal(t, "boards", srcErr.Source)
		})
	}
}

func TestClassifyResponse_UsableResponse(t *testing.T) {
	source := &SourceConfig{Name: "boards"}
	assert.Nil(t, classifyResponse(source, &FetchResult{Body: "{}", StatusCode: http.StatusOK}, nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(types.FailureRateLimited))
	assert.True(t, retryable(types.FailureTransportError))
	assert.False(t, retryable(types.FailureCaptchaBlocked))
	assert.False(t, retryable(types.FailureStructuralMismatch))
}

func TestSourceError_Message(t *testing.T) {
	cause := errors.New("boom")
	err := &SourceError{
		Source:   "boards",
		Kind:     types.FailureStructuralMismatch,
		Message:  "card title missing",
		Selector: ".job-title",
		Cause:    cause,
	}
	assert.Contains(t, err.Error(), "boards")
	assert.Contains(t, err.Error(), ".job-title")
	assert.ErrorIs(t, err, cause)
}
