package types

import "fmt"

// Decision is the matcher's verdict for one posting.
type Decision string

const (
	// DecisionMatched means the posting should proceed to application.
	DecisionMatched Decision = "matched"
	// DecisionRejected means the posting does not fit the profile.
	DecisionRejected Decision = "rejected"
	// DecisionNeedsReview means the fit is too ambiguous for an automatic
	// decision and a human must approve or reject.
	DecisionNeedsReview Decision = "needs_review"
)

// Valid returns true if the decision is one of the defined values.
func (d Decision) Valid() bool {
	return d == DecisionMatched || d == DecisionRejected || d == DecisionNeedsReview
}

// MatchResult is the matcher's scored fit decision for one posting.
type MatchResult struct {
	Score     float64  `json:"score"` // 0..1
	Rationale string   `json:"rationale"`
	Decision  Decision `json:"decision"`
	// Heuristic is true when the score came from the skill-overlap fallback
	// rather than the semantic scorer (collaborator outage or timeout).
	Heuristic bool `json:"heuristic,omitempty"`
}

// Validate checks the result invariants.
func (m *MatchResult) Validate() error {
	if m.Score < 0 || m.Score > 1 {
		return fmt.Errorf("match score %f out of range [0,1]", m.Score)
	}
	if !m.Decision.Valid() {
		return fmt.Errorf("invalid match decision %q", m.Decision)
	}
	return nil
}
