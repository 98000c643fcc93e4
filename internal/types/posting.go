package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// JobPosting is a job offer discovered at a source. Postings are immutable
// once recorded: re-scraping the same source identifier only refreshes
// LastSeenAt. A materially changed description produces a new posting with a
// different content hash.
type JobPosting struct {
	Source       string    `json:"source"`      // configured source name
	ExternalID   string    `json:"external_id"` // site-native identifier
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	ApplyURL     string    `json:"apply_url"`
	ContentHash  string    `json:"content_hash"`
	DiscoveredAt time.Time `json:"discovered_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// SourceID returns the global deduplication identifier for this posting:
// the source name combined with the site-native identifier.
func (p *JobPosting) SourceID() string {
	return p.Source + ":" + p.ExternalID
}

// Validate checks that the posting carries the fields the pipeline depends on.
func (p *JobPosting) Validate() error {
	if strings.TrimSpace(p.Source) == "" {
		return fmt.Errorf("posting source is required")
	}
	if strings.TrimSpace(p.ExternalID) == "" {
		return fmt.Errorf("posting external_id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("posting title is required")
	}
	return nil
}

// ComputeContentHash returns the SHA-256 hash of the normalized description.
// Whitespace runs are collapsed first so cosmetic reformatting on the source
// site does not register as content drift.
func ComputeContentHash(description string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(description)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// Stamp fills in the content hash and discovery timestamps for a freshly
// scraped posting.
func (p *JobPosting) Stamp(now time.Time) {
	p.ContentHash = ComputeContentHash(p.Description)
	if p.DiscoveredAt.IsZero() {
		p.DiscoveredAt = now
	}
	p.LastSeenAt = now
}
