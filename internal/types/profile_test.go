package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() CandidateProfile {
	return CandidateProfile{
		UserID:          "u1",
		Version:         1,
		Skills:          []string{"Go", "PostgreSQL"},
		ExperienceYears: 5,
	}
}

func TestCandidateProfile_Validate(t *testing.T) {
	p := validProfile()
	require.NoError(t, p.Validate())

	p = validProfile()
	p.UserID = " "
	assert.Error(t, p.Validate())

	p = validProfile()
	p.Version = 0
	assert.Error(t, p.Validate())

	p = validProfile()
	p.ExperienceYears = -1
	assert.Error(t, p.Validate())
}

func TestCandidateProfile_Confirmed(t *testing.T) {
	p := validProfile()
	assert.False(t, p.Confirmed())

	now := time.Now()
	p.ConfirmedAt = &now
	assert.True(t, p.Confirmed())
}

func TestCandidateProfile_AcceptsLocation(t *testing.T) {
	p := validProfile()
	assert.True(t, p.AcceptsLocation("Anywhere"), "no preferences means no constraint")
	assert.False(t, p.HasLocationConstraint())

	p.PreferredLocations = []string{"Berlin", "Remote"}
	assert.True(t, p.HasLocationConstraint())

	tests := []struct {
		location string
		want     bool
	}{
		{"Berlin, Germany", true},
		{"berlin", true},
		{"Remote (EU)", true},
		{"Munich", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.AcceptsLocation(tt.location), tt.location)
	}
}

func TestCandidateProfile_MatchesTitle(t *testing.T) {
	p := validProfile()
	assert.True(t, p.MatchesTitle("Anything"), "no preferred titles matches everything")

	p.PreferredTitles = []string{"Backend Engineer", "SRE"}
	assert.True(t, p.MatchesTitle("Senior Backend Engineer (Go)"))
	assert.True(t, p.MatchesTitle("sre II"))
	assert.False(t, p.MatchesTitle("Product Designer"))
}
