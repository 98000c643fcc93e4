package ledger

import "github.com/jonathan/job-agent/internal/types"

// allowedTransitions is the edge set of the job record lifecycle. A state
// absent from the map (rejected, closed) is terminal. Every non-terminal
// state also carries an edge to closed so a candidate can abandon tracking.
var allowedTransitions = map[types.JobState][]types.JobState{
	types.StateDiscovered: {
		types.StateMatched,
		types.StateRejected,
		types.StateNeedsReview,
		types.StateClosed,
	},
	types.StateNeedsReview: {
		types.StateMatched,
		types.StateRejected,
		types.StateClosed,
	},
	types.StateMatched: {
		types.StateApplying,
		types.StateClosed,
	},
	types.StateApplying: {
		types.StateApplied,
		types.StateApplicationFailed,
		types.StateClosed,
	},
	types.StateApplicationFailed: {
		types.StateApplying,
		types.StateClosed,
	},
	types.StateApplied: {
		types.StateInterviewing,
		types.StateRejectedBySite,
		types.StateClosed,
	},
	types.StateInterviewing: {
		types.StateRejectedBySite,
		types.StateClosed,
	},
	types.StateRejectedBySite: {
		types.StateClosed,
	},
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to types.JobState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
