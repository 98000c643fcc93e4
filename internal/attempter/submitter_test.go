package attempter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/types"
)

// scriptedDrafter returns a fixed answer and records the questions it saw.
type scriptedDrafter struct {
	answer    string
	err       error
	questions []string
}

func (d *scriptedDrafter) DraftAnswer(_ context.Context, _ types.CandidateProfile, _ types.JobPosting, question string) (string, error) {
	d.questions = append(d.questions, question)
	return d.answer, d.err
}

func testApplyPosting() types.JobPosting {
	return types.JobPosting{
		Source:     "boards",
		ExternalID: "42",
		Title:      "Backend Engineer",
		Company:    "Acme",
		ApplyURL:   "https://example.test/apply/42",
	}
}

func TestBrowserFieldValues_StoredAnswers(t *testing.T) {
	b := NewBrowser(0, false, nil)
	profile := types.CandidateProfile{Answers: map[string]string{
		"full_name": "Sam Doe",
		"email":     "sam@example.test",
	}}

	values := b.fieldValues(context.Background(), testApplyPosting(), profile)
	require.Len(t, values, 2)
	assert.Equal(t, "Sam Doe", values[`input[name*="name" i]`])
	assert.Equal(t, "sam@example.test", values[`input[type="email"], input[name*="email" i]`])
}

func TestBrowserFieldValues_DraftsFreeTextWhenMissing(t *testing.T) {
	drafter := &scriptedDrafter{answer: "I build Go services."}
	b := NewBrowser(0, false, drafter)
	profile := types.CandidateProfile{Answers: map[string]string{"phone": "555-0100"}}

	values := b.fieldValues(context.Background(), testApplyPosting(), profile)
	require.Len(t, values, 2)
	assert.Equal(t, "I build Go services.",
		values[`textarea[name*="cover" i], textarea[name*="motivation" i], textarea[name*="why" i]`])
	require.Len(t, drafter.questions, 1)
	assert.Equal(t, "Why are you interested in this role?", drafter.questions[0])
}

func TestBrowserFieldValues_StoredFreeTextSkipsDrafter(t *testing.T) {
	drafter := &scriptedDrafter{answer: "drafted"}
	b := NewBrowser(0, false, drafter)
	profile := types.CandidateProfile{Answers: map[string]string{
		"cover_letter": "I already wrote this one.",
	}}

	values := b.fieldValues(context.Background(), testApplyPosting(), profile)
	assert.Equal(t, "I already wrote this one.",
		values[`textarea[name*="cover" i], textarea[name*="motivation" i], textarea[name*="why" i]`])
	assert.Empty(t, drafter.questions, "stored answers must not consume model quota")
}

func TestBrowserFieldValues_DraftFailureSkipsField(t *testing.T) {
	drafter := &scriptedDrafter{err: errors.New("provider down")}
	b := NewBrowser(0, false, drafter)
	profile := types.CandidateProfile{Answers: map[string]string{"full_name": "Sam Doe"}}

	values := b.fieldValues(context.Background(), testApplyPosting(), profile)
	require.Len(t, values, 1, "a drafting failure must not fail the submission")
	assert.Equal(t, "Sam Doe", values[`input[name*="name" i]`])
}

func TestSubmitError_Format(t *testing.T) {
	err := &SubmitError{Outcome: types.OutcomeCaptchaBlocked, Message: "challenge page"}
	assert.Contains(t, err.Error(), "captcha_blocked")
	assert.Contains(t, err.Error(), "challenge page")
}
