package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobPosting_SourceID(t *testing.T) {
	p := JobPosting{Source: "boards", ExternalID: "ext-42"}
	assert.Equal(t, "boards:ext-42", p.SourceID())
}

func TestJobPosting_Validate(t *testing.T) {
	valid := JobPosting{Source: "boards", ExternalID: "1", Title: "Engineer"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		posting JobPosting
	}{
		{"missing source", JobPosting{ExternalID: "1", Title: "Engineer"}},
		{"missing external id", JobPosting{Source: "boards", Title: "Engineer"}},
		{"missing title", JobPosting{Source: "boards", ExternalID: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.posting.Validate())
		})
	}
}

func TestComputeContentHash_NormalizesWhitespaceAndCase(t *testing.T) {
	a := ComputeContentHash("Build   Go\nservices")
	b := ComputeContentHash("build go services")
	assert.Equal(t, a, b)

	c := ComputeContentHash("build go services at scale")
	assert.NotEqual(t, a, c)
}

func TestJobPosting_Stamp(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	p := JobPosting{Description: "work"}
	p.Stamp(now)
	assert.Equal(t, now, p.DiscoveredAt)
	assert.Equal(t, now, p.LastSeenAt)
	assert.Equal(t, ComputeContentHash("work"), p.ContentHash)

	// Re-stamping refreshes LastSeenAt but preserves discovery time.
	later := now.Add(24 * time.Hour)
	p.Stamp(later)
	assert.Equal(t, now, p.DiscoveredAt)
	assert.Equal(t, later, p.LastSeenAt)
}
