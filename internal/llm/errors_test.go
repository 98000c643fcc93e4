package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyProviderError_Quota(t *testing.T) {
	raw := errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")
	err := classifyProviderError("gemini-2.5-flash", raw)

	require.Error(t, err)
	assert.True(t, IsQuotaExceeded(err))
	assert.False(t, IsTimeout(err))

	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "gemini-2.5-flash", qe.Model)
}

func TestClassifyProviderError_Timeout(t *testing.T) {
	err := classifyProviderError("m", fmt.Errorf("rpc failed: %w", context.DeadlineExceeded))

	assert.True(t, IsTimeout(err))
	assert.False(t, IsQuotaExceeded(err))
}

func TestClassifyProviderError_Generic(t *testing.T) {
	raw := errors.New("connection reset by peer")
	err := classifyProviderError("m", raw)

	require.Error(t, err)
	assert.False(t, IsQuotaExceeded(err))
	assert.False(t, IsTimeout(err))
	assert.ErrorIs(t, err, raw)
}

func TestClassifyProviderError_Nil(t *testing.T) {
	assert.NoError(t, classifyProviderError("m", nil))
}
