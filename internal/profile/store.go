// Package profile manages versioned candidate profiles: persistence, resume
// intake and clarifying-question generation.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/job-agent/internal/store"
	"github.com/jonathan/job-agent/internal/types"
)

// NotFoundError indicates no profile exists for the requested identity.
type NotFoundError struct {
	UserID  string
	Version int
}

func (e *NotFoundError) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("no profile for user %q version %d", e.UserID, e.Version)
	}
	return fmt.Sprintf("no profile for user %q", e.UserID)
}

// Store persists candidate profiles. Profiles are versioned and immutable
// once confirmed: saving always writes a new version, never overwrites.
type Store struct {
	kv  store.KV
	now func() time.Time
}

// NewStore creates a profile store over the given KV backend.
func NewStore(kv store.KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// profileKey builds the storage key for one profile version. Zero-padding
// keeps lexicographic key order equal to version order.
func profileKey(userID string, version int) string {
	return fmt.Sprintf("profile/%s/v%06d", userID, version)
}

// Save assigns the profile the next free version for its user and persists
// it. The caller's Version field is ignored.
func (s *Store) Save(ctx context.Context, profile types.CandidateProfile) (*types.CandidateProfile, error) {
	latest, err := s.Latest(ctx, profile.UserID)
	if err != nil {
		if _, ok := err.(*NotFoundError); !ok {
			return nil, err
		}
	}

	profile.Version = 1
	if latest != nil {
		profile.Version = latest.Version + 1
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now()
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(&profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile %s v%d: %w", profile.UserID, profile.Version, err)
	}
	if err := s.kv.Put(ctx, profileKey(profile.UserID, profile.Version), raw); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Get retrieves one profile version.
func (s *Store) Get(ctx context.Context, userID string, version int) (*types.CandidateProfile, error) {
	raw, ok, err := s.kv.Get(ctx, profileKey(userID, version))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{UserID: userID, Version: version}
	}
	var profile types.CandidateProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("corrupt profile %s v%d: %w", userID, version, err)
	}
	return &profile, nil
}

// Latest returns the newest profile version for a user.
func (s *Store) Latest(ctx context.Context, userID string) (*types.CandidateProfile, error) {
	keys, err := s.kv.ListKeys(ctx, fmt.Sprintf("profile/%s/", userID))
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, &NotFoundError{UserID: userID}
	}

	raw, ok, err := s.kv.Get(ctx, keys[len(keys)-1])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{UserID: userID}
	}
	var profile types.CandidateProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("corrupt profile for %s: %w", userID, err)
	}
	return &profile, nil
}

// History returns every stored version for a user, oldest first.
func (s *Store) History(ctx context.Context, userID string) ([]*types.CandidateProfile, error) {
	keys, err := s.kv.ListKeys(ctx, fmt.Sprintf("profile/%s/", userID))
	if err != nil {
		return nil, err
	}
	profiles := make([]*types.CandidateProfile, 0, len(keys))
	for _, key := range keys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var profile types.CandidateProfile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return nil, fmt.Errorf("corrupt profile at %q: %w", key, err)
		}
		profiles = append(profiles, &profile)
	}
	return profiles, nil
}

// Confirm marks a profile version as confirmed by the candidate. Confirming
// an already-confirmed profile is a no-op.
func (s *Store) Confirm(ctx context.Context, userID string, version int) (*types.CandidateProfile, error) {
	profile, err := s.Get(ctx, userID, version)
	if err != nil {
		return nil, err
	}
	if profile.Confirmed() {
		return profile, nil
	}

	now := s.now()
	profile.ConfirmedAt = &now
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile %s v%d: %w", userID, version, err)
	}
	if err := s.kv.Put(ctx, profileKey(userID, version), raw); err != nil {
		return nil, err
	}
	return profile, nil
}
