package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchResult_Validate(t *testing.T) {
	valid := MatchResult{Score: 0.7, Decision: DecisionMatched}
	assert.NoError(t, valid.Validate())

	outOfRange := MatchResult{Score: 1.2, Decision: DecisionMatched}
	assert.Error(t, outOfRange.Validate())

	badDecision := MatchResult{Score: 0.5, Decision: Decision("maybe")}
	assert.Error(t, badDecision.Validate())
}

func TestDecision_Valid(t *testing.T) {
	assert.True(t, DecisionMatched.Valid())
	assert.True(t, DecisionRejected.Valid())
	assert.True(t, DecisionNeedsReview.Valid())
	assert.False(t, Decision("").Valid())
}
