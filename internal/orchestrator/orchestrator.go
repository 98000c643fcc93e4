// Package orchestrator runs discovery cycles: scrape every configured source,
// match the findings against the candidate profile, record them in the ledger
// and drive application attempts for accepted postings.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-agent/internal/attempter"
	"github.com/jonathan/job-agent/internal/ledger"
	"github.com/jonathan/job-agent/internal/llm"
	"github.com/jonathan/job-agent/internal/matcher"
	"github.com/jonathan/job-agent/internal/notify"
	"github.com/jonathan/job-agent/internal/scraper"
	"github.com/jonathan/job-agent/internal/types"
)

// DefaultSourceConcurrency bounds how many sources are scraped in parallel.
const DefaultSourceConcurrency = 3

// Config tunes one orchestrator.
type Config struct {
	// Sources are the job sources queried each cycle.
	Sources []scraper.SourceConfig
	// AutoApply submits applications without a human approval step. When
	// false, matched records wait for an explicit approval.
	AutoApply bool
	// SourceConcurrency bounds parallel source scraping.
	SourceConcurrency int
}

func (c Config) withDefaults() Config {
	if c.SourceConcurrency <= 0 {
		c.SourceConcurrency = DefaultSourceConcurrency
	}
	return c
}

// QuotaPausedError reports that a cycle stopped early because the language
// model quota ran out. The cycle's partial summary is preserved; re-running
// the cycle later picks up where it left off.
type QuotaPausedError struct {
	Summary notify.Summary
	Cause   error
}

func (e *QuotaPausedError) Error() string {
	return fmt.Sprintf("cycle paused: model quota exhausted: %v", e.Cause)
}

func (e *QuotaPausedError) Unwrap() error {
	return e.Cause
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	scraper   *scraper.Scraper
	matcher   *matcher.Matcher
	ledger    *ledger.Ledger
	attempter *attempter.Attempter
	notifier  notify.Notifier
	config    Config
}

// New creates an Orchestrator. A nil notifier discards notifications.
func New(s *scraper.Scraper, m *matcher.Matcher, l *ledger.Ledger, a *attempter.Attempter, n notify.Notifier, config Config) *Orchestrator {
	if n == nil {
		n = notify.Discard{}
	}
	return &Orchestrator{
		scraper:   s,
		matcher:   m,
		ledger:    l,
		attempter: a,
		notifier:  n,
		config:    config.withDefaults(),
	}
}

// RunCycle executes one full discovery cycle for a confirmed profile:
// discover, match, apply, summarize. Source failures are contained and
// reported; a quota exhaustion pauses the cycle with a QuotaPausedError
// carrying the partial summary.
func (o *Orchestrator) RunCycle(ctx context.Context, profile types.CandidateProfile) (notify.Summary, error) {
	var summary notify.Summary
	if err := profile.Validate(); err != nil {
		return summary, err
	}
	if !profile.Confirmed() {
		return summary, fmt.Errorf("profile %s v%d is not confirmed; discovery requires a confirmed profile", profile.UserID, profile.Version)
	}

	found, err := o.discover(ctx, profile)
	summary.Found = found
	if err != nil {
		return summary, err
	}

	if err := o.match(ctx, profile, &summary); err != nil {
		if llm.IsQuotaExceeded(err) {
			o.notifier.Notify("model quota exhausted; pausing this cycle, unprocessed postings remain queued")
			o.notifier.CycleSummary(summary)
			return summary, &QuotaPausedError{Summary: summary, Cause: err}
		}
		return summary, err
	}

	if o.config.AutoApply {
		if err := o.apply(ctx, profile, &summary); err != nil {
			return summary, err
		}
	}

	o.notifier.CycleSummary(summary)
	return summary, nil
}

// discover scrapes every configured source concurrently and records findings
// in the ledger. One source failing does not stop the others.
func (o *Orchestrator) discover(ctx context.Context, profile types.CandidateProfile) (int, error) {
	queries := buildQueries(profile)

	var mu sync.Mutex
	found := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.config.SourceConcurrency)

	for _, source := range o.config.Sources {
		for _, query := range queries {
			source, query := source, query
			group.Go(func() error {
				n, err := o.scrapeOne(groupCtx, profile, source, query)
				mu.Lock()
				found += n
				mu.Unlock()
				return err
			})
		}
	}
	err := group.Wait()
	return found, err
}

// scrapeOne runs one (source, query) search to exhaustion, recording every
// posting. Source-level failures are reported as data, not returned.
func (o *Orchestrator) scrapeOne(ctx context.Context, profile types.CandidateProfile, source scraper.SourceConfig, query scraper.Query) (int, error) {
	stream, err := o.scraper.Search(source, query)
	if err != nil {
		return 0, fmt.Errorf("source %s: %w", source.Name, err)
	}

	found := 0
	for {
		posting, err := stream.Next(ctx)
		if err != nil {
			var srcErr *scraper.SourceError
			if errors.As(err, &srcErr) {
				log.Printf("[orchestrator] source %s gave up: %v", source.Name, srcErr)
				o.notifier.Notify(fmt.Sprintf("source %s unavailable (%s)", source.Name, srcErr.Kind))
				return found, nil
			}
			return found, err
		}
		if posting == nil {
			return found, nil
		}
		found++
		if _, _, err := o.ledger.Record(ctx, profile.UserID, profile.Version, *posting); err != nil {
			return found, err
		}
	}
}

// match scores every discovered record and moves it to its post-match state.
// Quota errors abort immediately; other scorer failures were already absorbed
// by the matcher's heuristic fallback.
func (o *Orchestrator) match(ctx context.Context, profile types.CandidateProfile, summary *notify.Summary) error {
	discovered, err := o.ledger.ListByState(ctx, profile.UserID, profile.Version, types.StateDiscovered)
	if err != nil {
		return err
	}

	for _, record := range discovered {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := o.matcher.Score(ctx, &profile, &record.Posting)
		if err != nil {
			return err
		}

		updated, err := o.ledger.RecordMatch(ctx, record.UserID, record.ProfileVersion, record.SourceID, *result)
		if err != nil {
			return err
		}
		switch updated.State {
		case types.StateMatched:
			summary.Matched++
		case types.StateNeedsReview:
			summary.NeedsReview++
			o.notifier.ReviewRequested(updated)
		}
	}
	return nil
}

// apply runs application attempts for every matched record. Records stranded
// in applying by an interrupted run are swept back through applicationFailed
// first, so a crash mid-attempt never parks a record forever.
func (o *Orchestrator) apply(ctx context.Context, profile types.CandidateProfile, summary *notify.Summary) error {
	stale, err := o.ledger.ListByState(ctx, profile.UserID, profile.Version, types.StateApplying)
	if err != nil {
		return err
	}
	pending := make([]*types.JobRecord, 0, len(stale))
	for _, record := range stale {
		log.Printf("[orchestrator] %s: recovering interrupted application attempt", record.DedupKey())
		recovered, err := o.ledger.Transition(ctx, record.UserID, record.ProfileVersion, record.SourceID, types.StateApplicationFailed)
		if err != nil {
			return err
		}
		pending = append(pending, recovered)
	}

	matched, err := o.ledger.ListByState(ctx, profile.UserID, profile.Version, types.StateMatched)
	if err != nil {
		return err
	}
	pending = append(pending, matched...)

	for _, record := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := o.attempter.Attempt(ctx, record, profile)
		if err != nil {
			return err
		}
		switch {
		case result.Refused:
			summary.Failed++
		case result.Outcome == types.OutcomeSuccess:
			summary.Applied++
			o.notifier.Notify(fmt.Sprintf("applied: %s (%s at %s)",
				result.Record.SourceID, result.Record.Posting.Title, result.Record.Posting.Company))
		default:
			summary.Failed++
			o.notifier.Notify(fmt.Sprintf("application failed: %s (%s)", result.Record.SourceID, result.Outcome))
		}
	}
	return nil
}

// Approve promotes a needs-review record to matched, on an explicit human
// decision.
func (o *Orchestrator) Approve(ctx context.Context, userID string, profileVersion int, sourceID string) (*types.JobRecord, error) {
	return o.ledger.Transition(ctx, userID, profileVersion, sourceID, types.StateMatched)
}

// Reject declines a needs-review record.
func (o *Orchestrator) Reject(ctx context.Context, userID string, profileVersion int, sourceID string) (*types.JobRecord, error) {
	return o.ledger.Transition(ctx, userID, profileVersion, sourceID, types.StateRejected)
}

// buildQueries derives source queries from the profile's preferences: one
// query per preferred title. A profile without preferred titles falls back to
// its first skill as the search term.
func buildQueries(profile types.CandidateProfile) []scraper.Query {
	location := ""
	if len(profile.PreferredLocations) > 0 {
		location = profile.PreferredLocations[0]
	}

	titles := profile.PreferredTitles
	if len(titles) == 0 && len(profile.Skills) > 0 {
		titles = profile.Skills[:1]
	}
	if len(titles) == 0 {
		return []scraper.Query{{Location: location}}
	}

	queries := make([]scraper.Query, 0, len(titles))
	for _, title := range titles {
		queries = append(queries, scraper.Query{Title: title, Location: location})
	}
	return queries
}
