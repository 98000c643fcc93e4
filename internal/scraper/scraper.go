package scraper

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/job-agent/internal/types"
)

// Scraper fetches job postings from configured sources. It owns the
// per-source pacing state; one Scraper instance serves one candidate's
// pipeline so independent candidates do not share rate-limit state.
type Scraper struct {
	fetcher Fetcher
	browser Fetcher
	pacer   *Pacer
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

// New creates a Scraper. browser may be nil when no configured source
// requires headless rendering.
func New(fetcher Fetcher, browser Fetcher) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		browser: browser,
		pacer:   NewPacer(),
		sleep:   sleepContext,
		now:     time.Now,
	}
}

// Search starts a search against one source and returns its posting stream.
// The stream is lazy and finite, and cannot be restarted mid-sequence: a
// fresh search re-issues the fetches.
func (s *Scraper) Search(source SourceConfig, query Query) (*Stream, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	return &Stream{
		scraper: s,
		source:  source.withDefaults(),
		query:   query,
		page:    1,
	}, nil
}

// Stream is the lazy sequence of postings from one source search.
type Stream struct {
	scraper *Scraper
	source  SourceConfig
	query   Query
	page    int
	buffer  []types.JobPosting
	done    bool
	failure *SourceError
}

// Next returns the next posting in the sequence.
//
//   - (posting, nil): one more posting
//   - (nil, nil): the sequence ended normally
//   - (nil, *SourceError): the source failed; this is the terminal marker,
//     the stream yields nothing further
//
// Context cancellation propagates as ctx.Err().
func (st *Stream) Next(ctx context.Context) (*types.JobPosting, error) {
	for {
		if len(st.buffer) > 0 {
			posting := st.buffer[0]
			st.buffer = st.buffer[1:]
			return &posting, nil
		}
		if st.done {
			if st.failure != nil {
				return nil, st.failure
			}
			return nil, nil
		}
		if err := st.fetchPage(ctx); err != nil {
			return nil, err
		}
	}
}

// Failure returns the terminal source failure, if any, once the stream ended.
func (st *Stream) Failure() *SourceError {
	return st.failure
}

// fetchPage retrieves and parses the next result page, applying the retry
// policy. It only returns an error for context cancellation; source failures
// land in st.failure.
func (st *Stream) fetchPage(ctx context.Context) error {
	if st.page > st.source.MaxPages {
		st.done = true
		return nil
	}

	pageURL := expandURL(st.source.URL, st.query, st.page)
	fetcher := st.scraper.fetcher
	if st.source.RequiresBrowser && st.scraper.browser != nil {
		fetcher = st.scraper.browser
	}

	for attempt := 0; ; attempt++ {
		if err := st.scraper.pacer.Wait(ctx, st.source.Name, st.source.MinDelay); err != nil {
			return err
		}

		result, fetchErr := fetcher.Fetch(ctx, pageURL)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		srcErr := classifyResponse(&st.source, result, fetchErr)
		if srcErr == nil {
			st.parseInto(result.Body)
			return nil
		}

		if !retryable(srcErr.Kind) || attempt+1 >= st.source.MaxAttempts {
			st.fail(srcErr)
			return nil
		}

		delay := BackoffDelay(st.source.BackoffBase, st.source.BackoffCap, attempt)
		log.Printf("[scraper] %s: %s, retrying in %s (attempt %d/%d)",
			st.source.Name, srcErr.Kind, delay, attempt+1, st.source.MaxAttempts)
		// Push the source's next slot out too so concurrent searches of the
		// same source respect the backoff.
		st.scraper.pacer.Defer(st.source.Name, delay)
		if err := st.scraper.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// parseInto extracts postings from a page body into the buffer and advances
// pagination state.
func (st *Stream) parseInto(body string) {
	now := st.scraper.now()

	var postings []types.JobPosting
	var srcErr *SourceError
	switch st.source.Kind {
	case KindHTML:
		postings, srcErr = parseHTMLPage(&st.source, body, st.page == 1, now)
	default:
		postings, srcErr = parseAPIPage(&st.source, body, now)
	}
	if srcErr != nil {
		st.fail(srcErr)
		return
	}

	if len(postings) == 0 {
		st.done = true
		return
	}
	st.buffer = append(st.buffer, postings...)
	st.page++
}

// fail marks the stream as terminally failed for this source.
func (st *Stream) fail(srcErr *SourceError) {
	log.Printf("[scraper] %v", srcErr)
	st.failure = srcErr
	st.done = true
}
