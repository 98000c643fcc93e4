// Package types defines the core domain types shared across the job agent pipeline.
package types

import (
	"fmt"
	"strings"
	"time"
)

// CandidateProfile is the structured profile derived from a candidate's resume
// and clarification answers. Profiles are versioned: a confirmed profile is
// never mutated in place, only superseded by a new version.
type CandidateProfile struct {
	UserID             string            `json:"user_id"`
	Version            int               `json:"version"`
	Skills             []string          `json:"skills"`
	ExperienceYears    float64           `json:"experience_years"`
	PreferredTitles    []string          `json:"preferred_titles"`
	PreferredLocations []string          `json:"preferred_locations"`
	SalaryFloor        *int              `json:"salary_floor,omitempty"`
	Answers            map[string]string `json:"answers,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	ConfirmedAt        *time.Time        `json:"confirmed_at,omitempty"`
}

// Validate checks that the profile has the minimum fields required by the
// matching pipeline.
func (p *CandidateProfile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("profile user_id is required")
	}
	if p.Version < 1 {
		return fmt.Errorf("profile version must be >= 1, got %d", p.Version)
	}
	if p.ExperienceYears < 0 {
		return fmt.Errorf("experience_years cannot be negative")
	}
	return nil
}

// Confirmed reports whether the profile has been confirmed by the candidate.
// Only confirmed profiles participate in discovery cycles.
func (p *CandidateProfile) Confirmed() bool {
	return p.ConfirmedAt != nil
}

// HasLocationConstraint reports whether the profile restricts postings by
// location. An empty preference set means no constraint.
func (p *CandidateProfile) HasLocationConstraint() bool {
	return len(p.PreferredLocations) > 0
}

// AcceptsLocation reports whether a posting location satisfies the profile's
// location preferences (case-insensitive substring match in either direction).
func (p *CandidateProfile) AcceptsLocation(location string) bool {
	if !p.HasLocationConstraint() {
		return true
	}
	loc := strings.ToLower(strings.TrimSpace(location))
	for _, pref := range p.PreferredLocations {
		pl := strings.ToLower(strings.TrimSpace(pref))
		if pl == "" {
			continue
		}
		if strings.Contains(loc, pl) || strings.Contains(pl, loc) {
			return true
		}
	}
	return false
}

// MatchesTitle reports whether any preferred title appears in the posting
// title (case-insensitive substring). An empty preference list matches
// everything.
func (p *CandidateProfile) MatchesTitle(title string) bool {
	if len(p.PreferredTitles) == 0 {
		return true
	}
	t := strings.ToLower(title)
	for _, pref := range p.PreferredTitles {
		if pt := strings.ToLower(strings.TrimSpace(pref)); pt != "" && strings.Contains(t, pt) {
			return true
		}
	}
	return false
}
