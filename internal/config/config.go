// Package config loads the agent's configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// StoreBackend selects the persistence backend.
type StoreBackend string

const (
	BackendMemory   StoreBackend = "memory"
	BackendPostgres StoreBackend = "postgres"
	BackendRedis    StoreBackend = "redis"
)

// Config is the agent's full configuration, loaded from environment
// variables (with .env support in main).
type Config struct {
	// UserID identifies the candidate this agent instance works for.
	UserID string `env:"JOB_AGENT_USER" envDefault:"default"`

	// GeminiAPIKey authenticates the language-model collaborator. Empty
	// disables semantic scoring; the heuristic fallback takes over.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// SourcesFile points to the JSON file describing job sources.
	SourcesFile string `env:"JOB_AGENT_SOURCES" envDefault:"sources.json"`

	// Verbose enables boxed diagnostic output.
	Verbose bool `env:"JOB_AGENT_VERBOSE" envDefault:"false"`

	Store     StoreConfig     `envPrefix:"JOB_AGENT_STORE_"`
	Matcher   MatcherConfig   `envPrefix:"JOB_AGENT_MATCH_"`
	Attempter AttempterConfig `envPrefix:"JOB_AGENT_APPLY_"`
	Watch     WatchConfig     `envPrefix:"JOB_AGENT_WATCH_"`
}

// StoreConfig selects and parametrizes the persistence backend.
type StoreConfig struct {
	// Backend is one of memory, postgres, redis.
	Backend StoreBackend `env:"BACKEND" envDefault:"memory"`
	// PostgresDSN is the pgx connection string for the postgres backend.
	PostgresDSN string `env:"POSTGRES_DSN" envDefault:"postgres://localhost:5432/jobagent"`
	// RedisURL is the connection URL for the redis backend.
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

// MatcherConfig holds the decision thresholds.
type MatcherConfig struct {
	// Threshold is the minimum score for an automatic match.
	Threshold float64 `env:"THRESHOLD" envDefault:"0.6"`
	// ReviewThreshold is the floor of the needs-review band.
	ReviewThreshold float64 `env:"REVIEW_THRESHOLD" envDefault:"0.35"`
}

// AttempterConfig holds the application attempt policy.
type AttempterConfig struct {
	// AutoApply submits applications without a human approval step.
	AutoApply bool `env:"AUTO" envDefault:"false"`
	// MaxAttempts is the per-record attempt ceiling.
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"3"`
	// RetryDelay is the base pause between transient retries.
	RetryDelay time.Duration `env:"RETRY_DELAY" envDefault:"5s"`
	// UseBrowser submits through the headless browser instead of the
	// simulated submitter.
	UseBrowser bool `env:"USE_BROWSER" envDefault:"false"`
	// BrowserTimeout bounds one browser submission.
	BrowserTimeout time.Duration `env:"BROWSER_TIMEOUT" envDefault:"2m"`
}

// WatchConfig drives the recurring discovery schedule.
type WatchConfig struct {
	// Schedule is a cron expression for recurring cycles.
	Schedule string `env:"SCHEDULE" envDefault:"0 */6 * * *"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies guardrails to loaded values.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q (want memory, postgres or redis)", c.Store.Backend)
	}
	if c.Matcher.Threshold <= 0 || c.Matcher.Threshold > 1 {
		return fmt.Errorf("match threshold %f out of range (0,1]", c.Matcher.Threshold)
	}
	if c.Matcher.ReviewThreshold < 0 || c.Matcher.ReviewThreshold >= c.Matcher.Threshold {
		return fmt.Errorf("review threshold %f must be in [0, match threshold)", c.Matcher.ReviewThreshold)
	}
	if c.Attempter.MaxAttempts < 1 {
		return fmt.Errorf("attempt ceiling must be at least 1, got %d", c.Attempter.MaxAttempts)
	}
	if strings.TrimSpace(c.Watch.Schedule) == "" {
		return fmt.Errorf("watch schedule cannot be empty")
	}
	return nil
}
