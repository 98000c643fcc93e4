package scraper

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces per-source minimum inter-request delays. Each source owns an
// earliest-next-allowed timestamp; different sources proceed independently,
// so there is no global lock around the waiting itself.
type Pacer struct {
	mu   sync.Mutex
	next map[string]time.Time
	now  func() time.Time
}

// NewPacer creates an empty pacer.
func NewPacer() *Pacer {
	return &Pacer{
		next: make(map[string]time.Time),
		now:  time.Now,
	}
}

// reserve claims the next request slot for a source and returns how long the
// caller must wait before issuing the request. Claiming under the lock keeps
// concurrent callers from sharing one slot.
func (p *Pacer) reserve(source string, minDelay time.Duration) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	earliest, ok := p.next[source]
	if !ok || earliest.Before(now) {
		earliest = now
	}
	p.next[source] = earliest.Add(minDelay)
	return earliest.Sub(now)
}

// Wait blocks until the source's next request slot arrives, or ctx is done.
func (p *Pacer) Wait(ctx context.Context, source string, minDelay time.Duration) error {
	delay := p.reserve(source, minDelay)
	if delay <= 0 {
		return nil
	}
	return sleepContext(ctx, delay)
}

// Defer pushes the source's earliest-next-allowed time out by at least d,
// used after a rate-limit response so the backoff also covers concurrent
// callers of the same source.
func (p *Pacer) Defer(source string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	notBefore := p.now().Add(d)
	if current, ok := p.next[source]; !ok || current.Before(notBefore) {
		p.next[source] = notBefore
	}
}

// sleepContext sleeps for d unless ctx finishes first.
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
