package attempter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/job-agent/internal/llm"
	"github.com/jonathan/job-agent/internal/prompts"
	"github.com/jonathan/job-agent/internal/types"
)

// Drafter produces answers for custom free-text questions on application
// forms.
type Drafter interface {
	DraftAnswer(ctx context.Context, profile types.CandidateProfile, posting types.JobPosting, question string) (string, error)
}

// LLMDrafter drafts answers with the language-model collaborator.
type LLMDrafter struct {
	client llm.Client
}

// NewLLMDrafter creates a Drafter over the given collaborator.
func NewLLMDrafter(client llm.Client) *LLMDrafter {
	return &LLMDrafter{client: client}
}

// DraftAnswer generates a short first-person answer to one form question.
func (d *LLMDrafter) DraftAnswer(ctx context.Context, profile types.CandidateProfile, posting types.JobPosting, question string) (string, error) {
	template, err := prompts.Get(prompts.Answers, prompts.DraftAnswer)
	if err != nil {
		return "", err
	}
	prompt := prompts.Format(template, map[string]string{
		"Question":        question,
		"Skills":          strings.Join(profile.Skills, ", "),
		"ExperienceYears": fmt.Sprintf("%.1f", profile.ExperienceYears),
		"Title":           posting.Title,
		"Company":         posting.Company,
	})

	answer, err := d.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", fmt.Errorf("answer drafting failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// AnswerFor resolves the answer to a form question: the candidate's stored
// answer when one exists under the question key, otherwise a drafted one.
// With no drafter available the stored answers are all there is, and an
// unanswered question returns empty.
func AnswerFor(ctx context.Context, drafter Drafter, profile types.CandidateProfile, posting types.JobPosting, key, question string) (string, error) {
	if stored, ok := profile.Answers[key]; ok && strings.TrimSpace(stored) != "" {
		return stored, nil
	}
	if drafter == nil {
		return "", nil
	}
	return drafter.DraftAnswer(ctx, profile, posting, question)
}
