// Package ledger is the system of record for job postings as they move
// through the application lifecycle. It owns deduplication, the state
// machine, and the append-only attempt history of each record.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/job-agent/internal/store"
	"github.com/jonathan/job-agent/internal/types"
)

const keyPrefix = "record/"

// Ledger tracks job records in a KV store. All mutations of one record are
// serialized through a per-record lock, so concurrent pipeline stages never
// interleave a read-modify-write.
type Ledger struct {
	kv    store.KV
	locks *keyedLocks
	now   func() time.Time
}

// New creates a Ledger backed by the given store.
func New(kv store.KV) *Ledger {
	return &Ledger{
		kv:    kv,
		locks: newKeyedLocks(),
		now:   time.Now,
	}
}

// recordKey builds the storage key for one record. Keys sort by user, then
// profile version, then source id, which makes per-user listing a prefix
// scan.
func recordKey(userID string, profileVersion int, sourceID string) string {
	return fmt.Sprintf("%s%s/%d/%s", keyPrefix, userID, profileVersion, sourceID)
}

// Record registers a discovered posting, creating a new job record in state
// discovered. Registering an already-known (source id, profile version) pair
// is not an error: the stored posting's LastSeenAt is refreshed and the
// existing record is returned with created=false. State, score and attempt
// history are never touched by rediscovery. A posting whose content hash no
// longer matches the stored one is a different offer wearing the same id; it
// is recorded as a new record under a hash-suffixed external id.
func (l *Ledger) Record(ctx context.Context, userID string, profileVersion int, posting types.JobPosting) (*types.JobRecord, bool, error) {
	if err := posting.Validate(); err != nil {
		return nil, false, err
	}
	key := recordKey(userID, profileVersion, posting.SourceID())
	unlock := l.locks.lock(key)

	existing, err := l.load(ctx, key)
	if err != nil && !IsNotFound(err) {
		unlock()
		return nil, false, err
	}
	if existing != nil && contentDrifted(existing.Posting, posting) {
		unlock()
		posting.ExternalID = driftedExternalID(posting)
		key = recordKey(userID, profileVersion, posting.SourceID())
		unlock = l.locks.lock(key)
		existing, err = l.load(ctx, key)
		if err != nil && !IsNotFound(err) {
			unlock()
			return nil, false, err
		}
	}
	defer unlock()

	if existing != nil {
		existing.Posting.LastSeenAt = l.now()
		existing.UpdatedAt = l.now()
		if err := l.save(ctx, key, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	now := l.now()
	record := &types.JobRecord{
		SourceID:       posting.SourceID(),
		UserID:         userID,
		ProfileVersion: profileVersion,
		Posting:        posting,
		State:          types.StateDiscovered,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := l.save(ctx, key, record); err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// contentDrifted reports whether a rediscovered posting's description no
// longer matches what was recorded for its id.
func contentDrifted(recorded, seen types.JobPosting) bool {
	return recorded.ContentHash != "" && seen.ContentHash != "" &&
		recorded.ContentHash != seen.ContentHash
}

// driftedExternalID derives a stable external id for a changed posting from
// its content hash, so the same revision rediscovered later dedups onto the
// same record.
func driftedExternalID(p types.JobPosting) string {
	base := p.ExternalID
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	suffix := p.ContentHash
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return base + "#" + suffix
}

// Get retrieves one job record.
func (l *Ledger) Get(ctx context.Context, userID string, profileVersion int, sourceID string) (*types.JobRecord, error) {
	return l.load(ctx, recordKey(userID, profileVersion, sourceID))
}

// Transition moves a record to a new lifecycle state. Requests that are not
// edges of the lifecycle graph fail with InvalidTransitionError and leave the
// record unchanged.
func (l *Ledger) Transition(ctx context.Context, userID string, profileVersion int, sourceID string, to types.JobState) (*types.JobRecord, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown job state %q", to)
	}
	return l.update(ctx, userID, profileVersion, sourceID, func(r *types.JobRecord) error {
		return l.applyTransition(r, to)
	})
}

// RecordMatch stores the matcher's verdict and moves the record out of
// discovered accordingly.
func (l *Ledger) RecordMatch(ctx context.Context, userID string, profileVersion int, sourceID string, result types.MatchResult) (*types.JobRecord, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}
	target := map[types.Decision]types.JobState{
		types.DecisionMatched:     types.StateMatched,
		types.DecisionRejected:    types.StateRejected,
		types.DecisionNeedsReview: types.StateNeedsReview,
	}[result.Decision]

	return l.update(ctx, userID, profileVersion, sourceID, func(r *types.JobRecord) error {
		if err := l.applyTransition(r, target); err != nil {
			return err
		}
		r.MatchScore = result.Score
		r.MatchRationale = result.Rationale
		return nil
	})
}

// AppendAttempt appends one attempt to the record's history and moves the
// record to the state the attempt's outcome dictates. History is append-only
// and strictly time-ordered; an attempt stamped before the previous one is
// rejected.
func (l *Ledger) AppendAttempt(ctx context.Context, userID string, profileVersion int, sourceID string, attempt types.AttemptRecord, to types.JobState, lastErr *types.FailureKind) (*types.JobRecord, error) {
	if !attempt.Outcome.Valid() {
		return nil, fmt.Errorf("unknown attempt outcome %q", attempt.Outcome)
	}
	return l.update(ctx, userID, profileVersion, sourceID, func(r *types.JobRecord) error {
		if last := r.LastAttempt(); last != nil && attempt.Timestamp.Before(last.Timestamp) {
			return fmt.Errorf("attempt history for %q is time-ordered: %s is before %s",
				r.DedupKey(), attempt.Timestamp.Format(time.RFC3339), last.Timestamp.Format(time.RFC3339))
		}
		if err := l.applyTransition(r, to); err != nil {
			return err
		}
		r.Attempts = append(r.Attempts, attempt)
		r.LastError = lastErr
		return nil
	})
}

// ListByState returns one profile version's records currently in the given
// state, ordered by storage key. Records are tracked per (source id, profile
// version), so listings never mix versions. Ordering by key keeps repeated
// listings stable, so an interrupted pass over the results can resume.
func (l *Ledger) ListByState(ctx context.Context, userID string, profileVersion int, state types.JobState) ([]*types.JobRecord, error) {
	return l.list(ctx, versionPrefix(userID, profileVersion), func(r *types.JobRecord) bool {
		return r.State == state
	})
}

// ListAll returns every record of one (user, profile version), ordered by
// storage key.
func (l *Ledger) ListAll(ctx context.Context, userID string, profileVersion int) ([]*types.JobRecord, error) {
	return l.list(ctx, versionPrefix(userID, profileVersion), func(*types.JobRecord) bool { return true })
}

// ListAllVersions returns every record a user has across all profile
// versions, for history display.
func (l *Ledger) ListAllVersions(ctx context.Context, userID string) ([]*types.JobRecord, error) {
	return l.list(ctx, keyPrefix+userID+"/", func(*types.JobRecord) bool { return true })
}

func versionPrefix(userID string, profileVersion int) string {
	return fmt.Sprintf("%s%s/%d/", keyPrefix, userID, profileVersion)
}

func (l *Ledger) list(ctx context.Context, prefix string, keep func(*types.JobRecord) bool) ([]*types.JobRecord, error) {
	keys, err := l.kv.ListKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	records := make([]*types.JobRecord, 0, len(keys))
	for _, key := range keys {
		record, err := l.load(ctx, key)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if keep(record) {
			records = append(records, record)
		}
	}
	return records, nil
}

// applyTransition validates and performs a state change on a loaded record.
func (l *Ledger) applyTransition(r *types.JobRecord, to types.JobState) error {
	if !CanTransition(r.State, to) {
		return &InvalidTransitionError{Key: r.DedupKey(), From: r.State, To: to}
	}
	r.State = to
	return nil
}

// update runs a mutation against one record under its lock and persists the
// result. The mutation sees the freshly loaded record; if it returns an
// error nothing is written.
func (l *Ledger) update(ctx context.Context, userID string, profileVersion int, sourceID string, mutate func(*types.JobRecord) error) (*types.JobRecord, error) {
	key := recordKey(userID, profileVersion, sourceID)
	unlock := l.locks.lock(key)
	defer unlock()

	record, err := l.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := mutate(record); err != nil {
		return nil, err
	}
	record.UpdatedAt = l.now()
	if err := l.save(ctx, key, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (l *Ledger) load(ctx context.Context, key string) (*types.JobRecord, error) {
	raw, ok, err := l.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Key: strings.TrimPrefix(key, keyPrefix)}
	}
	var record types.JobRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("corrupt job record at %q: %w", key, err)
	}
	return &record, nil
}

func (l *Ledger) save(ctx context.Context, key string, record *types.JobRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode job record %q: %w", record.DedupKey(), err)
	}
	return l.kv.Put(ctx, key, raw)
}

// keyedLocks hands out one mutex per record key.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
