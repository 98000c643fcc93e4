// Package store provides the key-value persistence contract used by the
// profile store and the job ledger, with Postgres, Redis and in-memory
// backends.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// KV is the narrow persistence contract the pipeline depends on. Backing
// technology is unconstrained; keys are namespaced with '/'-separated
// prefixes (e.g. "profile/u1/v0003", "record/u1/3/boards:ext-42").
type KV interface {
	// Get retrieves the value stored under key. The second return value is
	// false when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value under key, overwriting any existing value.
	Put(ctx context.Context, key string, value []byte) error
	// ListKeys returns all keys beginning with prefix, sorted ascending.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// Close releases any resources held by the store.
	Close() error
}

// Error represents a storage-layer failure.
type Error struct {
	Op      string
	Key     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store %s %q: %s: %v", e.Op, e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("store %s %q: %s", e.Op, e.Key, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Memory is an in-process KV implementation used by tests and by runs that
// do not configure a database.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get retrieves a value from the in-memory map.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	// Copy so callers cannot mutate stored bytes.
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Put stores a value in the in-memory map.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// ListKeys returns all keys with the given prefix, sorted.
func (m *Memory) ListKeys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0)
	for k := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
