package ledger

import (
	"errors"
	"fmt"

	"github.com/jonathan/job-agent/internal/types"
)

// NotFoundError indicates no job record exists for the requested identity.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job record %q not found", e.Key)
}

// InvalidTransitionError indicates a requested state change is not an edge of
// the lifecycle graph. The record is left untouched.
type InvalidTransitionError struct {
	Key  string
	From types.JobState
	To   types.JobState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job record %q: invalid transition %s -> %s", e.Key, e.From, e.To)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
