package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobState represents where a job record sits in the application lifecycle.
//
// Valid state graph:
//
//	discovered ──► matched ──► applying ──► applied ──► interviewing
//	    │             ▲            │            │
//	    ├─► needsReview            │            └─► rejectedBySite
//	    │        │                 ▼
//	    └─► rejected      applicationFailed ──► applying (bounded retries)
//
// Every non-terminal state may move to closed. rejected and closed are
// terminal.
type JobState string

const (
	// StateDiscovered is the initial state of every recorded posting.
	StateDiscovered JobState = "discovered"
	// StateMatched means the matcher accepted the posting for application.
	StateMatched JobState = "matched"
	// StateRejected means the matcher (or a human reviewer) declined the posting.
	StateRejected JobState = "rejected"
	// StateNeedsReview means the match confidence was too ambiguous for an
	// automatic decision; promotion requires an explicit human action.
	StateNeedsReview JobState = "needs_review"
	// StateApplying means an application attempt has claimed the record.
	StateApplying JobState = "applying"
	// StateApplied means a submission succeeded. Never reverted automatically.
	StateApplied JobState = "applied"
	// StateApplicationFailed means the last attempt failed; the record stays
	// eligible for a bounded number of re-attempts.
	StateApplicationFailed JobState = "application_failed"
	// StateInterviewing is set by an external/manual update after applying.
	StateInterviewing JobState = "interviewing"
	// StateRejectedBySite is set externally when the site declines the application.
	StateRejectedBySite JobState = "rejected_by_site"
	// StateClosed is the terminal state reachable from any non-terminal state.
	StateClosed JobState = "closed"
)

// ParseJobState converts a raw string to a JobState, returning an error for
// unknown values.
func ParseJobState(s string) (JobState, error) {
	st := JobState(strings.ToLower(strings.TrimSpace(s)))
	if st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("unknown job state %q", s)
}

// Valid returns true if the JobState is one of the defined states.
func (s JobState) Valid() bool {
	switch s {
	case StateDiscovered, StateMatched, StateRejected, StateNeedsReview,
		StateApplying, StateApplied, StateApplicationFailed,
		StateInterviewing, StateRejectedBySite, StateClosed:
		return true
	}
	return false
}

// Terminal returns true for states with no outgoing transitions.
func (s JobState) Terminal() bool {
	return s == StateRejected || s == StateClosed
}

// AttemptOutcome classifies the result of one application attempt.
type AttemptOutcome string

const (
	// OutcomeSuccess means the submission went through.
	OutcomeSuccess AttemptOutcome = "success"
	// OutcomeCaptchaBlocked means a CAPTCHA challenge stopped the attempt.
	OutcomeCaptchaBlocked AttemptOutcome = "captcha_blocked"
	// OutcomeFormMismatch means the application form did not match expectations.
	OutcomeFormMismatch AttemptOutcome = "form_mismatch"
	// OutcomeTransientError means a network or timeout failure occurred.
	OutcomeTransientError AttemptOutcome = "transient_error"
	// OutcomeRejectedBySite means the site actively refused the submission.
	OutcomeRejectedBySite AttemptOutcome = "rejected_by_site"
)

// Valid returns true if the outcome is one of the defined kinds.
func (o AttemptOutcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeCaptchaBlocked, OutcomeFormMismatch,
		OutcomeTransientError, OutcomeRejectedBySite:
		return true
	}
	return false
}

// FailureKind classifies a contained pipeline failure for reporting.
type FailureKind string

const (
	// FailureRateLimited indicates the source throttled or blocked requests.
	FailureRateLimited FailureKind = "rate_limited"
	// FailureCaptchaBlocked indicates a CAPTCHA challenge was detected.
	FailureCaptchaBlocked FailureKind = "captcha_blocked"
	// FailureStructuralMismatch indicates expected page structure was absent.
	FailureStructuralMismatch FailureKind = "structural_mismatch"
	// FailureTransportError indicates a network-level failure.
	FailureTransportError FailureKind = "transport_error"
	// FailureQuotaExceeded indicates the language-model quota ran out.
	FailureQuotaExceeded FailureKind = "quota_exceeded"
)

// AttemptRecord is one entry in a job record's append-only attempt history.
// Entries are strictly time-ordered and never mutated after creation.
type AttemptRecord struct {
	ID        uuid.UUID      `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Outcome   AttemptOutcome `json:"outcome"`
	Detail    string         `json:"detail,omitempty"`
}

// JobRecord wraps one posting for one candidate profile version and tracks it
// through the application lifecycle. At most one record exists per
// (source id, profile version) pair.
type JobRecord struct {
	SourceID       string          `json:"source_id"`
	UserID         string          `json:"user_id"`
	ProfileVersion int             `json:"profile_version"`
	Posting        JobPosting      `json:"posting"`
	State          JobState        `json:"state"`
	MatchScore     float64         `json:"match_score"`
	MatchRationale string          `json:"match_rationale,omitempty"`
	Attempts       []AttemptRecord `json:"attempts,omitempty"`
	LastError      *FailureKind    `json:"last_error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DedupKey returns the unique identifier for this record: the posting's
// source id combined with the profile version it was matched against.
func (r *JobRecord) DedupKey() string {
	return DedupKey(r.SourceID, r.ProfileVersion)
}

// DedupKey builds the (source id, profile version) deduplication key.
func DedupKey(sourceID string, profileVersion int) string {
	return fmt.Sprintf("%s@v%d", sourceID, profileVersion)
}

// AttemptCount returns the number of application attempts made so far.
func (r *JobRecord) AttemptCount() int {
	return len(r.Attempts)
}

// LastAttempt returns the most recent attempt, or nil when none was made.
func (r *JobRecord) LastAttempt() *AttemptRecord {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}
