// Package scraper fetches job postings from configured sources, enforcing
// per-source pacing, retry/backoff policy and failure classification.
// Site-specific selectors and markers are configuration data, not code.
package scraper

import (
	"fmt"
	"strings"
	"time"
)

// SourceKind selects the extraction strategy for a source.
type SourceKind string

const (
	// KindAPI is a JSON search API source (Adzuna-style result envelope).
	KindAPI SourceKind = "api"
	// KindHTML is a selector-driven HTML listing source.
	KindHTML SourceKind = "html"
)

// Default policy values, overridable per source.
const (
	DefaultMinDelay    = 2 * time.Second
	DefaultMaxAttempts = 4
	DefaultBackoffBase = 1 * time.Second
	DefaultBackoffCap  = 2 * time.Minute
	DefaultMaxPages    = 3
)

// Selectors holds the CSS selectors for an HTML source. Item locates one job
// card; the rest are evaluated relative to it.
type Selectors struct {
	Item        string `json:"item"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Link        string `json:"link"` // anchor whose href is the apply URL
}

// SourceConfig describes one configured job source and its request policy.
type SourceConfig struct {
	Name string     `json:"name"`
	Kind SourceKind `json:"kind"`
	// URL is the search endpoint. Placeholders {{query}}, {{location}} and
	// {{page}} are substituted per request.
	URL string `json:"url"`
	// MinDelay is the minimum spacing between requests to this source.
	MinDelay time.Duration `json:"min_delay"`
	// MaxAttempts bounds retries for rate-limited and transport failures.
	MaxAttempts int `json:"max_attempts"`
	// BackoffBase and BackoffCap parametrize exponential backoff.
	BackoffBase time.Duration `json:"backoff_base"`
	BackoffCap  time.Duration `json:"backoff_cap"`
	// MaxPages bounds result pagination.
	MaxPages int `json:"max_pages"`
	// RequiresBrowser routes fetches through the headless browser fetcher
	// for JavaScript-rendered listings.
	RequiresBrowser bool `json:"requires_browser"`
	// CaptchaMarkers are substrings whose presence in a response body
	// identifies a CAPTCHA challenge page.
	CaptchaMarkers []string `json:"captcha_markers"`
	// BlockMarkers identify explicit block/throttle pages that arrive with
	// a 200 status.
	BlockMarkers []string `json:"block_markers"`
	// Selectors apply to KindHTML sources.
	Selectors Selectors `json:"selectors"`
}

// Validate checks the source configuration.
func (c *SourceConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("source name is required")
	}
	if c.Kind != KindAPI && c.Kind != KindHTML {
		return fmt.Errorf("source %s: unknown kind %q", c.Name, c.Kind)
	}
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("source %s: url is required", c.Name)
	}
	if c.Kind == KindHTML && strings.TrimSpace(c.Selectors.Item) == "" {
		return fmt.Errorf("source %s: html source needs an item selector", c.Name)
	}
	return nil
}

// withDefaults returns a copy with zero policy fields filled in.
func (c SourceConfig) withDefaults() SourceConfig {
	if c.MinDelay <= 0 {
		c.MinDelay = DefaultMinDelay
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = DefaultBackoffCap
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	return c
}

// Query is one search request against a source.
type Query struct {
	Title    string
	Location string
}

// expandURL substitutes query placeholders into the source URL template.
func expandURL(template string, query Query, page int) string {
	out := strings.ReplaceAll(template, "{{query}}", urlEscape(query.Title))
	out = strings.ReplaceAll(out, "{{location}}", urlEscape(query.Location))
	out = strings.ReplaceAll(out, "{{page}}", fmt.Sprintf("%d", page))
	return out
}
