// Package attempter executes application attempts against matched job
// records, enforcing the per-record attempt ceiling and recording every
// attempt in the ledger's history.
package attempter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-agent/internal/ledger"
	"github.com/jonathan/job-agent/internal/types"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 5 * time.Second
)

// Config tunes the attempter's retry policy.
type Config struct {
	// MaxAttempts is the per-record attempt ceiling, counted across the
	// record's whole history.
	MaxAttempts int
	// RetryDelay is the pause before re-submitting after a transient failure.
	// Retry n waits n × RetryDelay.
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// PreconditionError indicates a record is not in a state the attempter may
// act on.
type PreconditionError struct {
	Key   string
	State types.JobState
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("record %q is %s, not eligible for an application attempt", e.Key, e.State)
}

// Result reports what one Attempt call did to a record.
type Result struct {
	Record  *types.JobRecord
	Outcome types.AttemptOutcome
	// Refused is true when the attempt ceiling stopped the attempt before
	// any submission.
	Refused bool
	// Confirmation carries the submitter's receipt on success.
	Confirmation string
}

// Attempter drives application submissions for matched records.
type Attempter struct {
	ledger    *ledger.Ledger
	submitter Submitter
	config    Config

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates an Attempter. A nil submitter gets the simulated one.
func New(l *ledger.Ledger, submitter Submitter, config Config) *Attempter {
	if submitter == nil {
		submitter = &Simulated{}
	}
	return &Attempter{
		ledger:    l,
		submitter: submitter,
		config:    config.withDefaults(),
		sleep:     sleepContext,
		now:       time.Now,
	}
}

// Attempt applies to the posting behind a matched record. Transient failures
// are retried in place until the record's attempt ceiling is reached; CAPTCHA
// and form-mismatch failures stop immediately. A record already at its
// ceiling is refused and closed without a submission.
func (a *Attempter) Attempt(ctx context.Context, record *types.JobRecord, profile types.CandidateProfile) (*Result, error) {
	switch record.State {
	case types.StateMatched, types.StateApplicationFailed:
	default:
		return nil, &PreconditionError{Key: record.DedupKey(), State: record.State}
	}

	if record.AttemptCount() >= a.config.MaxAttempts {
		closed, err := a.ledger.Transition(ctx, record.UserID, record.ProfileVersion, record.SourceID, types.StateClosed)
		if err != nil {
			return nil, err
		}
		log.Printf("[attempter] %s: attempt ceiling %d reached, closing", record.DedupKey(), a.config.MaxAttempts)
		return &Result{Record: closed, Refused: true}, nil
	}

	current, err := a.ledger.Transition(ctx, record.UserID, record.ProfileVersion, record.SourceID, types.StateApplying)
	if err != nil {
		return nil, err
	}

	for {
		submission, submitErr := a.submitter.Submit(ctx, current.Posting, profile)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if submitErr == nil {
			updated, err := a.recordAttempt(ctx, current, types.OutcomeSuccess, submission.Confirmation, types.StateApplied, nil)
			if err != nil {
				return nil, err
			}
			return &Result{Record: updated, Outcome: types.OutcomeSuccess, Confirmation: submission.Confirmation}, nil
		}

		outcome, detail, kind := classifySubmitError(submitErr)
		updated, err := a.recordAttempt(ctx, current, outcome, detail, types.StateApplicationFailed, &kind)
		if err != nil {
			return nil, err
		}
		current = updated

		if outcome != types.OutcomeTransientError {
			log.Printf("[attempter] %s: %s, not retrying", current.DedupKey(), outcome)
			return &Result{Record: current, Outcome: outcome}, nil
		}
		if current.AttemptCount() >= a.config.MaxAttempts {
			log.Printf("[attempter] %s: transient failure at attempt ceiling %d", current.DedupKey(), a.config.MaxAttempts)
			return &Result{Record: current, Outcome: outcome}, nil
		}

		delay := time.Duration(current.AttemptCount()) * a.config.RetryDelay
		log.Printf("[attempter] %s: transient failure, retrying in %s (attempt %d/%d)",
			current.DedupKey(), delay, current.AttemptCount(), a.config.MaxAttempts)
		if err := a.sleep(ctx, delay); err != nil {
			return nil, err
		}

		current, err = a.ledger.Transition(ctx, current.UserID, current.ProfileVersion, current.SourceID, types.StateApplying)
		if err != nil {
			return nil, err
		}
	}
}

// recordAttempt appends one attempt entry and moves the record accordingly.
func (a *Attempter) recordAttempt(ctx context.Context, record *types.JobRecord, outcome types.AttemptOutcome, detail string, to types.JobState, kind *types.FailureKind) (*types.JobRecord, error) {
	return a.ledger.AppendAttempt(ctx, record.UserID, record.ProfileVersion, record.SourceID, types.AttemptRecord{
		ID:        uuid.New(),
		Timestamp: a.now(),
		Outcome:   outcome,
		Detail:    detail,
	}, to, kind)
}

// classifySubmitError maps a submission failure to its attempt outcome and
// reportable failure kind. Errors that are not *SubmitError count as
// transient.
func classifySubmitError(err error) (types.AttemptOutcome, string, types.FailureKind) {
	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		return types.OutcomeTransientError, err.Error(), types.FailureTransportError
	}
	switch submitErr.Outcome {
	case types.OutcomeCaptchaBlocked:
		return submitErr.Outcome, submitErr.Message, types.FailureCaptchaBlocked
	case types.OutcomeFormMismatch:
		return submitErr.Outcome, submitErr.Message, types.FailureStructuralMismatch
	case types.OutcomeRejectedBySite:
		return submitErr.Outcome, submitErr.Message, types.FailureStructuralMismatch
	default:
		return types.OutcomeTransientError, submitErr.Message, types.FailureTransportError
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
