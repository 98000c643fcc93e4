package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-agent/internal/llm"
	"github.com/jonathan/job-agent/internal/prompts"
	"github.com/jonathan/job-agent/internal/schemas"
	"github.com/jonathan/job-agent/internal/types"
)

// MaxClarifyingQuestions bounds how many preference questions the intake asks.
const MaxClarifyingQuestions = 6

// resumeBudget caps resume text sent to the extraction prompt.
const resumeBudget = 12000

// TextExtractor turns an uploaded resume document into plain text. The byte
// format (PDF, DOCX) is the extractor's concern; intake only sees text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// PlainText is a TextExtractor for resumes that are already plain text.
type PlainText struct{}

// Extract validates and returns the input as UTF-8 text.
func (PlainText) Extract(_ context.Context, data []byte, filename string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8 text; convert the resume to plain text first", filename)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s is empty", filename)
	}
	return text, nil
}

// Extraction is the structured output of resume analysis.
type Extraction struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	SuggestedTitles []string `json:"suggested_titles"`
}

// Intake drives resume analysis: extraction, clarifying questions, and
// assembly of a new profile version.
type Intake struct {
	client llm.Client
	store  *Store
}

// NewIntake creates an Intake over the given collaborator and store.
func NewIntake(client llm.Client, store *Store) *Intake {
	return &Intake{client: client, store: store}
}

// ExtractFromResume analyzes resume text and returns the structured
// extraction.
func (i *Intake) ExtractFromResume(ctx context.Context, resumeText string) (*Extraction, error) {
	template, err := prompts.Get(prompts.Profile, prompts.ExtractProfile)
	if err != nil {
		return nil, err
	}
	prompt := prompts.Format(template, map[string]string{
		"ResumeText": llm.Truncate(resumeText, resumeBudget),
	})

	raw, err := i.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("resume extraction failed: %w", err)
	}
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.ProfileExtraction, cleaned); err != nil {
		return nil, fmt.Errorf("resume extraction returned invalid JSON: %w", err)
	}

	var extraction Extraction
	if err := json.Unmarshal([]byte(cleaned), &extraction); err != nil {
		return nil, fmt.Errorf("resume extraction returned invalid JSON: %w", err)
	}
	return &extraction, nil
}

// ClarifyingQuestions generates short preference questions for the candidate
// based on an extraction.
func (i *Intake) ClarifyingQuestions(ctx context.Context, extraction *Extraction) ([]string, error) {
	template, err := prompts.Get(prompts.Profile, prompts.ClarifyingQuestions)
	if err != nil {
		return nil, err
	}
	prompt := prompts.Format(template, map[string]string{
		"MaxQuestions":    fmt.Sprintf("%d", MaxClarifyingQuestions),
		"Skills":          strings.Join(extraction.Skills, ", "),
		"ExperienceYears": fmt.Sprintf("%.1f", extraction.ExperienceYears),
		"SuggestedTitles": strings.Join(extraction.SuggestedTitles, ", "),
	})

	raw, err := i.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.QuestionList, cleaned); err != nil {
		return nil, fmt.Errorf("question generation returned invalid JSON: %w", err)
	}

	var questions []string
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("question generation returned invalid JSON: %w", err)
	}
	if len(questions) > MaxClarifyingQuestions {
		questions = questions[:MaxClarifyingQuestions]
	}
	return questions, nil
}

// BuildVersion assembles a new unconfirmed profile version from an extraction
// and the candidate's preference answers, and persists it. Recognized answer
// keys (preferred_titles, preferred_locations) become structured fields; the
// rest are kept verbatim for form filling.
func (i *Intake) BuildVersion(ctx context.Context, userID string, extraction *Extraction, answers map[string]string) (*types.CandidateProfile, error) {
	profile := types.CandidateProfile{
		UserID:          userID,
		Skills:          extraction.Skills,
		ExperienceYears: extraction.ExperienceYears,
		PreferredTitles: extraction.SuggestedTitles,
		Answers:         map[string]string{},
	}

	for key, value := range answers {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch key {
		case "preferred_titles":
			profile.PreferredTitles = splitList(value)
		case "preferred_locations":
			profile.PreferredLocations = splitList(value)
		default:
			profile.Answers[key] = value
		}
	}

	return i.store.Save(ctx, profile)
}

// splitList parses a comma-separated answer into a cleaned list.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
