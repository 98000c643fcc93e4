// Package notify delivers human-facing pipeline updates: cycle summaries and
// records that need attention.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jonathan/job-agent/internal/types"
)

// Summary aggregates one discovery cycle's outcome counts.
type Summary struct {
	Found       int `json:"found"`
	Matched     int `json:"matched"`
	NeedsReview int `json:"needs_review"`
	Applied     int `json:"applied"`
	Failed      int `json:"failed"`
}

// Notifier receives pipeline events for a human. Implementations must be
// safe for concurrent use.
type Notifier interface {
	// Notify delivers a one-line message.
	Notify(text string)
	// ReviewRequested flags a record waiting on a human decision.
	ReviewRequested(record *types.JobRecord)
	// CycleSummary reports one finished discovery cycle.
	CycleSummary(summary Summary)
}

// Console writes notifications to a writer, one line each.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console notifier. A nil writer defaults to stdout.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Notify(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

func (c *Console) ReviewRequested(record *types.JobRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "needs review: %s: %s at %s (score %.2f: %s)\n",
		record.SourceID, record.Posting.Title, record.Posting.Company,
		record.MatchScore, record.MatchRationale)
}

func (c *Console) CycleSummary(summary Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "cycle done: %d found, %d matched, %d need review, %d applied, %d failed\n",
		summary.Found, summary.Matched, summary.NeedsReview, summary.Applied, summary.Failed)
}

// Discard drops all notifications.
type Discard struct{}

func (Discard) Notify(string) {}

func (Discard) ReviewRequested(*types.JobRecord) {}

func (Discard) CycleSummary(Summary) {}
