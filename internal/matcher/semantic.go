package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/job-agent/internal/llm"
	"github.com/jonathan/job-agent/internal/prompts"
	"github.com/jonathan/job-agent/internal/schemas"
	"github.com/jonathan/job-agent/internal/types"
)

// SemanticScorer is the language-model collaborator contract: given a profile
// summary and posting text, return a fit score in [0,1] with a short
// rationale. Implementations must bound their own latency; errors are
// classified by the caller.
type SemanticScorer interface {
	ScoreFit(ctx context.Context, profile *types.CandidateProfile, posting *types.JobPosting) (score float64, rationale string, err error)
}

// fitResponse is the expected JSON payload from the LLM.
type fitResponse struct {
	FitScore  float64 `json:"fit_score"`
	Rationale string  `json:"rationale"`
}

// LLMScorer scores postings with the LLM collaborator.
type LLMScorer struct {
	client            llm.Client
	descriptionBudget int
}

// NewLLMScorer creates a scorer backed by the given client. descriptionBudget
// caps posting text length; zero applies the default.
func NewLLMScorer(client llm.Client, descriptionBudget int) *LLMScorer {
	if descriptionBudget <= 0 {
		descriptionBudget = DefaultDescriptionBudget
	}
	return &LLMScorer{client: client, descriptionBudget: descriptionBudget}
}

// ScoreFit sends the scoring prompt and parses the validated response.
func (s *LLMScorer) ScoreFit(ctx context.Context, profile *types.CandidateProfile, posting *types.JobPosting) (float64, string, error) {
	template, err := prompts.Get(prompts.Matching, prompts.ScorePosting)
	if err != nil {
		return 0, "", err
	}

	prompt := prompts.Format(template, map[string]string{
		"Skills":          strings.Join(profile.Skills, ", "),
		"ExperienceYears": fmt.Sprintf("%.1f", profile.ExperienceYears),
		"PreferredTitles": strings.Join(profile.PreferredTitles, ", "),
		"Title":           posting.Title,
		"Company":         posting.Company,
		"Location":        posting.Location,
		"Description":     llm.Truncate(posting.Description, s.descriptionBudget),
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return 0, "", err
	}

	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.MatchResult, raw); err != nil {
		return 0, "", fmt.Errorf("scorer returned invalid payload: %w", err)
	}

	var resp fitResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return 0, "", fmt.Errorf("failed to parse scorer response: %w (content: %s)", err, raw)
	}

	// Keep the score within [0,1].
	if resp.FitScore < 0 {
		resp.FitScore = 0
	}
	if resp.FitScore > 1 {
		resp.FitScore = 1
	}

	return resp.FitScore, resp.Rationale, nil
}
