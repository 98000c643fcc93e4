package attempter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/job-agent/internal/types"
)

// Submission is the result of a successful application submission.
type Submission struct {
	Confirmation string
}

// SubmitError is a failed submission, classified by attempt outcome.
type SubmitError struct {
	Outcome types.AttemptOutcome
	Message string
	Cause   error
}

func (e *SubmitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("submission failed (%s): %s: %v", e.Outcome, e.Message, e.Cause)
	}
	return fmt.Sprintf("submission failed (%s): %s", e.Outcome, e.Message)
}

func (e *SubmitError) Unwrap() error {
	return e.Cause
}

// Submitter performs one application submission for a posting. Failures must
// be returned as *SubmitError so the attempter can classify them; any other
// error is treated as transient.
type Submitter interface {
	Submit(ctx context.Context, posting types.JobPosting, profile types.CandidateProfile) (*Submission, error)
}

// Simulated is a dry-run submitter. It never touches the network and always
// reports success, which makes full pipeline runs safe by default.
type Simulated struct {
	Delay time.Duration
}

// Submit pretends to apply.
func (s *Simulated) Submit(ctx context.Context, posting types.JobPosting, _ types.CandidateProfile) (*Submission, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, &SubmitError{Outcome: types.OutcomeTransientError, Message: "cancelled", Cause: ctx.Err()}
		case <-timer.C:
		}
	}
	return &Submission{Confirmation: "simulated submission for " + posting.SourceID()}, nil
}

// captchaMarkers identify challenge pages on application forms.
var captchaMarkers = []string{"g-recaptcha", "h-captcha", "cf-challenge", "are you a robot"}

// Browser submits applications through a headless browser. It navigates to
// the posting's apply URL, fills the fields it can locate, and submits the
// first form on the page. Free-text fields are resolved through the drafter
// when the profile has no stored answer.
type Browser struct {
	Timeout time.Duration
	Verbose bool
	drafter Drafter
}

// NewBrowser creates a headless browser submitter. A nil drafter leaves
// free-text fields to the profile's stored answers.
func NewBrowser(timeout time.Duration, verbose bool, drafter Drafter) *Browser {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Browser{Timeout: timeout, Verbose: verbose, drafter: drafter}
}

// formField maps a profile answer key to the input selectors commonly used on
// application forms. Fields with a question are free text and may be drafted.
type formField struct {
	key      string
	selector string
	question string
}

var formFields = []formField{
	{key: "full_name", selector: `input[name*="name" i]`},
	{key: "email", selector: `input[type="email"], input[name*="email" i]`},
	{key: "phone", selector: `input[type="tel"], input[name*="phone" i]`},
	{
		key:      "cover_letter",
		selector: `textarea[name*="cover" i], textarea[name*="motivation" i], textarea[name*="why" i]`,
		question: "Why are you interested in this role?",
	},
}

// fieldValues resolves the value for each fillable form field. Contact fields
// come from the profile's stored answers; free-text fields go through
// AnswerFor so the drafter can fill gaps. A drafting failure skips the field
// rather than failing the submission.
func (b *Browser) fieldValues(ctx context.Context, posting types.JobPosting, profile types.CandidateProfile) map[string]string {
	values := make(map[string]string)
	for _, field := range formFields {
		value := profile.Answers[field.key]
		if field.question != "" {
			resolved, err := AnswerFor(ctx, b.drafter, profile, posting, field.key, field.question)
			if err != nil {
				log.Printf("[attempter] %s: drafting %q failed, leaving field blank: %v", posting.SourceID(), field.key, err)
				continue
			}
			value = resolved
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		values[field.selector] = value
	}
	return values
}

// Submit drives a real browser through the application form.
func (b *Browser) Submit(ctx context.Context, posting types.JobPosting, profile types.CandidateProfile) (*Submission, error) {
	if strings.TrimSpace(posting.ApplyURL) == "" {
		return nil, &SubmitError{Outcome: types.OutcomeFormMismatch, Message: "posting has no apply URL"}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, b.Timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(posting.ApplyURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &SubmitError{Outcome: types.OutcomeTransientError, Message: "failed to load apply page", Cause: err}
	}

	lower := strings.ToLower(html)
	for _, marker := range captchaMarkers {
		if strings.Contains(lower, marker) {
			return nil, &SubmitError{
				Outcome: types.OutcomeCaptchaBlocked,
				Message: fmt.Sprintf("captcha marker %q on apply page", marker),
			}
		}
	}
	if !strings.Contains(lower, "<form") {
		return nil, &SubmitError{Outcome: types.OutcomeFormMismatch, Message: "no form on apply page"}
	}

	actions := []chromedp.Action{}
	for selector, value := range b.fieldValues(ctx, posting, profile) {
		sel, val := selector, value
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			// Absent fields are skipped, not errors.
			fillCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			_ = chromedp.SendKeys(sel, val, chromedp.ByQuery).Do(fillCtx)
			return nil
		}))
	}
	actions = append(actions, chromedp.Submit("form", chromedp.ByQuery))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, &SubmitError{Outcome: types.OutcomeFormMismatch, Message: "form submission failed", Cause: err}
	}
	return &Submission{Confirmation: "submitted via " + posting.ApplyURL}, nil
}
