package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Redis is a KV implementation backed by a Redis instance.
type Redis struct {
	client *redis.Client
}

// ConnectRedis parses redisURL and verifies connectivity.
func ConnectRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{client: client}, nil
}

// Get retrieves the value stored under key.
func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, &Error{Op: "get", Key: key, Message: "redis get failed", Cause: err}
	}
	return value, true, nil
}

// Put stores the value under key without expiry; ledger entries must survive
// process restarts.
func (s *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return &Error{Op: "put", Key: key, Message: "redis set failed", Cause: err}
	}
	return nil
}

// ListKeys scans for all keys beginning with prefix, sorted ascending.
func (s *Redis) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, &Error{Op: "list", Key: prefix, Message: "redis scan failed", Cause: err}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the underlying client.
func (s *Redis) Close() error {
	return s.client.Close()
}
