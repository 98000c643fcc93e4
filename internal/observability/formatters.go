// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs a human-readable summary of a candidate profile.
func (p *Printer) PrintProfile(profile *types.CandidateProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("User:       %s (version %d)\n", profile.UserID, profile.Version))
	sb.WriteString(fmt.Sprintf("Experience: %.1f years\n", profile.ExperienceYears))
	if profile.Confirmed() {
		sb.WriteString(fmt.Sprintf("Confirmed:  %s\n", profile.ConfirmedAt.Format("2006-01-02")))
	} else {
		sb.WriteString("Confirmed:  no\n")
	}
	sb.WriteString("\n")

	if len(profile.Skills) > 0 {
		sb.WriteString("Skills:\n")
		count := min(len(profile.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", profile.Skills[i]))
		}
		if len(profile.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Skills)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(profile.PreferredTitles) > 0 {
		sb.WriteString(fmt.Sprintf("Titles:     %s\n", strings.Join(profile.PreferredTitles, ", ")))
	}
	if len(profile.PreferredLocations) > 0 {
		sb.WriteString(fmt.Sprintf("Locations:  %s\n", strings.Join(profile.PreferredLocations, ", ")))
	}

	p.printBox("CANDIDATE PROFILE", strings.TrimRight(sb.String(), "\n"))
}

// PrintRecord outputs a human-readable summary of one job record.
func (p *Printer) PrintRecord(record *types.JobRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:    %s\n", record.Posting.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", record.Posting.Company))
	sb.WriteString(fmt.Sprintf("Location: %s\n", record.Posting.Location))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", record.SourceID))
	sb.WriteString(fmt.Sprintf("State:    %s\n", record.State))
	if record.MatchRationale != "" {
		sb.WriteString(fmt.Sprintf("Match:    %.2f (%s)\n", record.MatchScore, record.MatchRationale))
	}

	if len(record.Attempts) > 0 {
		sb.WriteString("\nAttempts:\n")
		start := 0
		if len(record.Attempts) > maxItemsToShow {
			start = len(record.Attempts) - maxItemsToShow
			sb.WriteString(fmt.Sprintf("  ... %d earlier\n", start))
		}
		for _, attempt := range record.Attempts[start:] {
			sb.WriteString(fmt.Sprintf("  • %s  %s", attempt.Timestamp.Format("01-02 15:04"), attempt.Outcome))
			if attempt.Detail != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", attempt.Detail))
			}
			sb.WriteString("\n")
		}
	}
	if record.LastError != nil {
		sb.WriteString(fmt.Sprintf("\nLast error: %s\n", *record.LastError))
	}

	p.printBox("JOB RECORD", strings.TrimRight(sb.String(), "\n"))
}

// PrintMatchResult outputs a scored match verdict for one posting.
func (p *Printer) PrintMatchResult(posting *types.JobPosting, result *types.MatchResult) {
	if posting == nil || result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Posting:   %s at %s\n", posting.Title, posting.Company))
	sb.WriteString(fmt.Sprintf("Decision:  %s\n", result.Decision))
	sb.WriteString(fmt.Sprintf("Score:     %.2f", result.Score))
	if result.Heuristic {
		sb.WriteString(" (heuristic fallback)")
	}
	sb.WriteString("\n")
	if result.Rationale != "" {
		sb.WriteString(fmt.Sprintf("Rationale: %s\n", result.Rationale))
	}

	p.printBox("MATCH RESULT", strings.TrimRight(sb.String(), "\n"))
}
