package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }

func (f *fakeLLM) Close() error { return nil }

func TestPlainTextExtractor(t *testing.T) {
	text, err := PlainText{}.Extract(context.Background(), []byte("  resume body  "), "cv.txt")
	require.NoError(t, err)
	assert.Equal(t, "resume body", text)

	_, err = PlainText{}.Extract(context.Background(), []byte{0xff, 0xfe}, "cv.pdf")
	assert.ErrorContains(t, err, "not valid UTF-8")

	_, err = PlainText{}.Extract(context.Background(), []byte("   "), "cv.txt")
	assert.ErrorContains(t, err, "empty")
}

func TestExtractFromResume(t *testing.T) {
	client := &fakeLLM{response: "```json\n" +
		`{"skills": ["Go", "PostgreSQL"], "experience_years": 6.5, "suggested_titles": ["Backend Engineer"]}` +
		"\n```"}
	intake := NewIntake(client, newTestStore())

	extraction, err := intake.ExtractFromResume(context.Background(), "worked on Go services")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, extraction.Skills)
	assert.Equal(t, 6.5, extraction.ExperienceYears)
	assert.Equal(t, []string{"Backend Engineer"}, extraction.SuggestedTitles)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "worked on Go services")
}

func TestExtractFromResume_RejectsInvalidShape(t *testing.T) {
	client := &fakeLLM{response: `{"skills": "Go"}`}
	intake := NewIntake(client, newTestStore())

	_, err := intake.ExtractFromResume(context.Background(), "resume")
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestClarifyingQuestions(t *testing.T) {
	client := &fakeLLM{response: `["What are your top 3 desired job titles?", "Are you open to remote roles?"]`}
	intake := NewIntake(client, newTestStore())

	questions, err := intake.ClarifyingQuestions(context.Background(), &Extraction{
		Skills:          []string{"Go"},
		ExperienceYears: 6,
		SuggestedTitles: []string{"Backend Engineer"},
	})
	require.NoError(t, err)
	assert.Len(t, questions, 2)
	assert.Contains(t, client.prompts[0], "Backend Engineer")
}

func TestClarifyingQuestions_RejectsNonArray(t *testing.T) {
	client := &fakeLLM{response: `{"questions": []}`}
	intake := NewIntake(client, newTestStore())

	_, err := intake.ClarifyingQuestions(context.Background(), &Extraction{})
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestBuildVersion(t *testing.T) {
	intake := NewIntake(&fakeLLM{}, newTestStore())

	extraction := &Extraction{
		Skills:          []string{"Go"},
		ExperienceYears: 6,
		SuggestedTitles: []string{"Backend Engineer"},
	}
	answers := map[string]string{
		"preferred_titles":    "Platform Engineer, SRE",
		"preferred_locations": "Berlin, Remote",
		"visa_status":         "EU citizen",
		"blank":               "   ",
	}

	saved, err := intake.BuildVersion(context.Background(), "u1", extraction, answers)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)
	assert.False(t, saved.Confirmed())
	assert.Equal(t, []string{"Platform Engineer", "SRE"}, saved.PreferredTitles,
		"answers override suggested titles")
	assert.Equal(t, []string{"Berlin", "Remote"}, saved.PreferredLocations)
	assert.Equal(t, "EU citizen", saved.Answers["visa_status"])
	assert.NotContains(t, saved.Answers, "blank")
}

func TestBuildVersion_KeepsSuggestedTitlesWithoutAnswer(t *testing.T) {
	s := newTestStore()
	intake := NewIntake(&fakeLLM{}, s)

	saved, err := intake.BuildVersion(context.Background(), "u1", &Extraction{
		Skills:          []string{"Go"},
		ExperienceYears: 3,
		SuggestedTitles: []string{"Backend Engineer"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Backend Engineer"}, saved.PreferredTitles)

	// A persisted version is retrievable through the store.
	got, err := s.Get(context.Background(), "u1", saved.Version)
	require.NoError(t, err)
	assert.Equal(t, saved.Skills, got.Skills)
}
