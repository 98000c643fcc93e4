package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrozenPacer(start time.Time) (*Pacer, *time.Time) {
	clock := start
	p := NewPacer()
	p.now = func() time.Time { return clock }
	return p, &clock
}

func TestPacer_ReserveSpacesRequests(t *testing.T) {
	p, _ := newFrozenPacer(time.Unix(1000, 0))

	assert.Equal(t, time.Duration(0), p.reserve("boards", 2*time.Second))
	assert.Equal(t, 2*time.Second, p.reserve("boards", 2*time.Second))
	assert.Equal(t, 4*time.Second, p.reserve("boards", 2*time.Second))
}

func TestPacer_SourcesAreIndependent(t *testing.T) {
	p, _ := newFrozenPacer(time.Unix(1000, 0))

	p.reserve("boards", 2*time.Second)
	assert.Equal(t, time.Duration(0), p.reserve("other", 2*time.Second),
		"pacing one source must not delay another")
}

func TestPacer_ElapsedTimeClearsDebt(t *testing.T) {
	p, clock := newFrozenPacer(time.Unix(1000, 0))

	p.reserve("boards", 2*time.Second)
	*clock = clock.Add(10 * time.Second)
	assert.Equal(t, time.Duration(0), p.reserve("boards", 2*time.Second))
}

func TestPacer_DeferPushesNextSlotOut(t *testing.T) {
	p, _ := newFrozenPacer(time.Unix(1000, 0))

	p.reserve("boards", time.Second)
	p.Defer("boards", 30*time.Second)
	assert.Equal(t, 30*time.Second, p.reserve("boards", time.Second))

	// A shorter defer never pulls the slot back in.
	p.Defer("boards", time.Second)
	assert.Equal(t, 31*time.Second, p.reserve("boards", time.Second))
}

func TestPacer_WaitHonorsContext(t *testing.T) {
	p := NewPacer()
	require.NoError(t, p.Wait(context.Background(), "boards", time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Wait(ctx, "boards", time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
