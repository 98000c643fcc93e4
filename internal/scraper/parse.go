package scraper

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-agent/internal/types"
)

// apiEnvelope mirrors the search API's top-level JSON response.
type apiEnvelope struct {
	Results *[]apiResult `json:"results"`
}

// apiResult mirrors a single API job listing.
type apiResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	RedirectURL string `json:"redirect_url"`
}

// parseAPIPage extracts postings from a JSON API response. A missing results
// envelope or listings without identifiers are structural mismatches: the
// source's response shape no longer matches expectations.
func parseAPIPage(source *SourceConfig, body string, now time.Time) ([]types.JobPosting, *SourceError) {
	var envelope apiEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, &SourceError{
			Source:   source.Name,
			Kind:     types.FailureStructuralMismatch,
			Message:  "response is not valid JSON",
			Selector: "results",
			Cause:    err,
		}
	}
	if envelope.Results == nil {
		return nil, &SourceError{
			Source:   source.Name,
			Kind:     types.FailureStructuralMismatch,
			Message:  "results field absent from response",
			Selector: "results",
		}
	}

	postings := make([]types.JobPosting, 0, len(*envelope.Results))
	for _, r := range *envelope.Results {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Title) == "" {
			return nil, &SourceError{
				Source:   source.Name,
				Kind:     types.FailureStructuralMismatch,
				Message:  "listing missing id or title",
				Selector: "results[].id",
			}
		}
		posting := types.JobPosting{
			Source:      source.Name,
			ExternalID:  r.ID,
			Title:       strings.TrimSpace(r.Title),
			Company:     strings.TrimSpace(r.Company.DisplayName),
			Location:    strings.TrimSpace(r.Location.DisplayName),
			Description: strings.TrimSpace(r.Description),
			ApplyURL:    r.RedirectURL,
		}
		posting.Stamp(now)
		postings = append(postings, posting)
	}
	return postings, nil
}

// parseHTMLPage extracts postings from a selector-driven HTML listing page.
// firstPage distinguishes a broken item selector (structural mismatch) from
// the natural end of pagination.
func parseHTMLPage(source *SourceConfig, body string, firstPage bool, now time.Time) ([]types.JobPosting, *SourceError) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &SourceError{
			Source:  source.Name,
			Kind:    types.FailureStructuralMismatch,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	sel := source.Selectors
	cards := doc.Find(sel.Item)
	if cards.Length() == 0 {
		if firstPage {
			return nil, &SourceError{
				Source:   source.Name,
				Kind:     types.FailureStructuralMismatch,
				Message:  "no job cards found on first page",
				Selector: sel.Item,
			}
		}
		return nil, nil // end of pagination
	}

	var postings []types.JobPosting
	var mismatch *SourceError
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := strings.TrimSpace(card.Find(sel.Title).First().Text())
		if title == "" {
			mismatch = &SourceError{
				Source:   source.Name,
				Kind:     types.FailureStructuralMismatch,
				Message:  "job card missing title",
				Selector: sel.Title,
			}
			return false
		}

		posting := types.JobPosting{
			Source:      source.Name,
			Title:       title,
			Company:     strings.TrimSpace(card.Find(sel.Company).First().Text()),
			Location:    strings.TrimSpace(card.Find(sel.Location).First().Text()),
			Description: strings.TrimSpace(card.Find(sel.Description).First().Text()),
		}
		if href, ok := card.Find(sel.Link).First().Attr("href"); ok {
			posting.ApplyURL = href
		}
		posting.ExternalID = htmlExternalID(&posting)
		posting.Stamp(now)
		postings = append(postings, posting)
		return true
	})
	if mismatch != nil {
		return nil, mismatch
	}
	return postings, nil
}

// htmlExternalID derives a stable site-native identifier for listings that do
// not expose one directly: the apply URL when present, otherwise a hash of
// the card's identity fields.
func htmlExternalID(p *types.JobPosting) string {
	if p.ApplyURL != "" {
		return p.ApplyURL
	}
	return types.ComputeContentHash(p.Title + "|" + p.Company + "|" + p.Location)[:16]
}
