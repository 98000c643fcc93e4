// Package matcher scores job postings against candidate profiles, producing
// a fit decision for the ledger.
package matcher

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/job-agent/internal/llm"
	"github.com/jonathan/job-agent/internal/types"
)

// Default decision thresholds. Deployments override these via configuration.
const (
	DefaultMatchThreshold  = 0.6
	DefaultReviewThreshold = 0.35
	// DefaultDescriptionBudget caps posting text sent to the semantic scorer
	// to bound prompt cost.
	DefaultDescriptionBudget = 4000
)

// Config holds the matcher's decision thresholds.
type Config struct {
	// MatchThreshold is the minimum score for an automatic match.
	MatchThreshold float64
	// ReviewThreshold is the minimum score for the needs-review band;
	// scores below it are rejected.
	ReviewThreshold float64
	// DescriptionBudget caps the posting description length (in characters)
	// included in scorer prompts.
	DescriptionBudget int
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:    DefaultMatchThreshold,
		ReviewThreshold:   DefaultReviewThreshold,
		DescriptionBudget: DefaultDescriptionBudget,
	}
}

// Validate checks threshold ordering.
func (c Config) Validate() error {
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match threshold %f out of range (0,1]", c.MatchThreshold)
	}
	if c.ReviewThreshold < 0 || c.ReviewThreshold >= c.MatchThreshold {
		return fmt.Errorf("review threshold %f must be in [0, match threshold)", c.ReviewThreshold)
	}
	return nil
}

// Matcher applies the deterministic rule layer, then delegates surviving
// postings to a pluggable semantic scorer with a heuristic fallback.
type Matcher struct {
	config Config
	scorer SemanticScorer
}

// New creates a Matcher. scorer may be nil, in which case every surviving
// posting is scored by the skill-overlap heuristic and flagged for review.
func New(config Config, scorer SemanticScorer) (*Matcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{config: config, scorer: scorer}, nil
}

// Score produces a fit decision for one posting.
//
// The rule layer rejects outright on location or title mismatch without
// consuming scorer quota. A scorer outage or timeout falls back to the
// skill-overlap heuristic and flags needsReview, never rejected: an outage
// must not silently discard a potentially good match. Quota exhaustion is
// returned as an error so the orchestrator can pause the cycle.
func (m *Matcher) Score(ctx context.Context, profile *types.CandidateProfile, posting *types.JobPosting) (*types.MatchResult, error) {
	// Deterministic rule layer first.
	if !profile.AcceptsLocation(posting.Location) {
		return &types.MatchResult{
			Score:     0,
			Rationale: fmt.Sprintf("location %q not in preferred locations", posting.Location),
			Decision:  types.DecisionRejected,
		}, nil
	}
	if !profile.MatchesTitle(posting.Title) {
		return &types.MatchResult{
			Score:     0,
			Rationale: fmt.Sprintf("title %q matches no preferred title", posting.Title),
			Decision:  types.DecisionRejected,
		}, nil
	}

	if m.scorer != nil {
		score, rationale, err := m.scorer.ScoreFit(ctx, profile, posting)
		if err == nil {
			return &types.MatchResult{
				Score:     score,
				Rationale: rationale,
				Decision:  m.decide(score),
			}, nil
		}
		if llm.IsQuotaExceeded(err) {
			// Quota exhaustion pauses the whole cycle; not a per-posting failure.
			return nil, err
		}
		log.Printf("[matcher] semantic scorer failed for %s, falling back to heuristic: %v", posting.SourceID(), err)
	}

	score, matched := SkillOverlapScore(profile, posting)
	return &types.MatchResult{
		Score:     score,
		Rationale: heuristicRationale(score, matched),
		Decision:  types.DecisionNeedsReview,
		Heuristic: true,
	}, nil
}

// decide maps a semantic score onto the configured decision bands.
func (m *Matcher) decide(score float64) types.Decision {
	switch {
	case score >= m.config.MatchThreshold:
		return types.DecisionMatched
	case score >= m.config.ReviewThreshold:
		return types.DecisionNeedsReview
	default:
		return types.DecisionRejected
	}
}

func heuristicRationale(score float64, matched []string) string {
	if len(matched) == 0 {
		return fmt.Sprintf("heuristic skill overlap %.2f, no skills matched; semantic scorer unavailable", score)
	}
	return fmt.Sprintf("heuristic skill overlap %.2f, matched skills: %v; semantic scorer unavailable", score, matched)
}
