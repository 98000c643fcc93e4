package matcher

import (
	"sort"
	"strings"

	"github.com/jonathan/job-agent/internal/types"
)

// stopwords excluded from posting keyword extraction.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "you": true,
	"are": true, "our": true, "will": true, "have": true, "this": true,
	"that": true, "your": true, "from": true, "work": true, "team": true,
	"about": true, "what": true, "who": true, "all": true, "not": true,
	"can": true, "has": true, "was": true, "but": true, "they": true,
	"their": true, "them": true, "more": true, "than": true, "into": true,
	"also": true, "other": true, "such": true, "well": true, "able": true,
}

// SkillOverlapScore computes the Jaccard similarity between the profile's
// skill set and the keyword terms extracted from the posting title and
// description. Returns the score and the sorted list of matched skills.
// This is the fallback when the semantic scorer is unavailable.
func SkillOverlapScore(profile *types.CandidateProfile, posting *types.JobPosting) (float64, []string) {
	skills := make(map[string]bool)
	for _, s := range profile.Skills {
		if n := normalizeTerm(s); n != "" {
			skills[n] = true
		}
	}
	if len(skills) == 0 {
		return 0, nil
	}

	terms := ExtractKeywords(posting.Title + " " + posting.Description)
	if len(terms) == 0 {
		return 0, nil
	}

	var matched []string
	union := len(terms)
	for skill := range skills {
		if skillInTerms(skill, terms) {
			matched = append(matched, skill)
		} else {
			union++
		}
	}
	sort.Strings(matched)

	return float64(len(matched)) / float64(union), matched
}

// skillInTerms reports whether a skill appears in the extracted term set.
// Multi-word skills match when every component token is present.
func skillInTerms(skill string, terms map[string]bool) bool {
	if terms[skill] {
		return true
	}
	parts := strings.Fields(skill)
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if !terms[p] {
			return false
		}
	}
	return true
}

// ExtractKeywords tokenizes text into a set of normalized candidate terms,
// dropping stopwords and short tokens.
func ExtractKeywords(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, raw := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '#' || r == '.')
	}) {
		term := strings.Trim(raw, ".")
		if len(term) < 2 || stopwords[term] {
			continue
		}
		terms[term] = true
	}
	return terms
}

// normalizeTerm lowercases and trims a skill name so single-word skills align
// with extracted keywords.
func normalizeTerm(s string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(s)), ".")
}
