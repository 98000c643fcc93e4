package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobState(t *testing.T) {
	st, err := ParseJobState("  Needs_Review ")
	require.NoError(t, err)
	assert.Equal(t, StateNeedsReview, st)

	_, err = ParseJobState("pending")
	assert.Error(t, err)
}

func TestJobState_Valid(t *testing.T) {
	for _, st := range []JobState{
		StateDiscovered, StateMatched, StateRejected, StateNeedsReview,
		StateApplying, StateApplied, StateApplicationFailed,
		StateInterviewing, StateRejectedBySite, StateClosed,
	} {
		assert.True(t, st.Valid(), string(st))
	}
	assert.False(t, JobState("archived").Valid())
	assert.False(t, JobState("").Valid())
}

func TestJobState_Terminal(t *testing.T) {
	assert.True(t, StateRejected.Terminal())
	assert.True(t, StateClosed.Terminal())
	assert.False(t, StateApplied.Terminal())
	assert.False(t, StateDiscovered.Terminal())
}

func TestAttemptOutcome_Valid(t *testing.T) {
	assert.True(t, OutcomeSuccess.Valid())
	assert.True(t, OutcomeCaptchaBlocked.Valid())
	assert.False(t, AttemptOutcome("gave_up").Valid())
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "boards:ext-42@v3", DedupKey("boards:ext-42", 3))

	r := JobRecord{SourceID: "boards:ext-42", ProfileVersion: 3}
	assert.Equal(t, "boards:ext-42@v3", r.DedupKey())

	other := JobRecord{SourceID: "boards:ext-42", ProfileVersion: 4}
	assert.NotEqual(t, r.DedupKey(), other.DedupKey(),
		"a new profile version yields a distinct record identity")
}

func TestJobRecord_Attempts(t *testing.T) {
	r := JobRecord{}
	assert.Equal(t, 0, r.AttemptCount())
	assert.Nil(t, r.LastAttempt())

	first := AttemptRecord{ID: uuid.New(), Timestamp: time.Now(), Outcome: OutcomeTransientError}
	second := AttemptRecord{ID: uuid.New(), Timestamp: time.Now().Add(time.Minute), Outcome: OutcomeSuccess}
	r.Attempts = append(r.Attempts, first, second)

	assert.Equal(t, 2, r.AttemptCount())
	require.NotNil(t, r.LastAttempt())
	assert.Equal(t, second.ID, r.LastAttempt().ID)
}
