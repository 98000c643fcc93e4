package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/types"
)

var parseNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestParseAPIPage(t *testing.T) {
	source := &SourceConfig{Name: "boards", Kind: KindAPI}
	body := `{"results": [{
		"id": "42",
		"title": "  Backend Engineer  ",
		"description": "Build services in Go",
		"company": {"display_name": "Acme"},
		"location": {"display_name": "Berlin"},
		"redirect_url": "https://example.test/j/42"
	}]}`

	postings, srcErr := parseAPIPage(source, body, parseNow)
	require.Nil(t, srcErr)
	require.Len(t, postings, 1)

	p := postings[0]
	assert.Equal(t, "boards:42", p.SourceID())
	assert.Equal(t, "Backend Engineer", p.Title)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "Berlin", p.Location)
	assert.Equal(t, "https://example.test/j/42", p.ApplyURL)
	assert.Equal(t, parseNow, p.DiscoveredAt)
	assert.NotEmpty(t, p.ContentHash)
}

func TestParseAPIPage_StructuralMismatches(t *testing.T) {
	source := &SourceConfig{Name: "boards", Kind: KindAPI}

	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>nope</html>"},
		{"missing results envelope", `{"jobs": []}`},
		{"listing without id", `{"results": [{"title": "Engineer"}]}`},
		{"listing without title", `{"results": [{"id": "1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postings, srcErr := parseAPIPage(source, tt.body, parseNow)
			assert.Nil(t, postings)
			require.NotNil(t, srcErr)
			assert.Equal(t, types.FailureStructuralMismatch, srcErr.Kind)
		})
	}
}

func TestParseAPIPage_EmptyResults(t *testing.T) {
	source := &SourceConfig{Name: "boards", Kind: KindAPI}
	postings, srcErr := parseAPIPage(source, `{"results": []}`, parseNow)
	assert.Nil(t, srcErr)
	assert.Empty(t, postings)
}

func htmlTestSource() *SourceConfig {
	return &SourceConfig{
		Name: "careers",
		Kind: KindHTML,
		Selectors: Selectors{
			Item:        "div.job-card",
			Title:       "h2",
			Company:     ".company",
			Location:    ".location",
			Description: ".summary",
			Link:        "a.apply",
		},
	}
}

func TestParseHTMLPage(t *testing.T) {
	body := `<html><body>
		<div class="job-card">
			<h2>Platform Engineer</h2>
			<span class="company">Initech</span>
			<span class="location">Remote</span>
			<p class="summary">Keep the lights on.</p>
			<a class="apply" href="https://careers.test/p/9">Apply</a>
		</div>
		<div class="job-card">
			<h2>SRE</h2>
			<span class="company">Initech</span>
			<span class="location">Austin</span>
			<p class="summary">On call.</p>
		</div>
	</body></html>`

	postings, srcErr := parseHTMLPage(htmlTestSource(), body, true, parseNow)
	require.Nil(t, srcErr)
	require.Len(t, postings, 2)

	assert.Equal(t, "Platform Engineer", postings[0].Title)
	assert.Equal(t, "https://careers.test/p/9", postings[0].ApplyURL)
	assert.Equal(t, "https://careers.test/p/9", postings[0].ExternalID,
		"apply URL doubles as the site-native identifier")

	assert.Equal(t, "SRE", postings[1].Title)
	assert.Empty(t, postings[1].ApplyURL)
	assert.Len(t, postings[1].ExternalID, 16, "cards without a link get a hash identifier")
}

func TestParseHTMLPage_NoCardsFirstPage(t *testing.T) {
	postings, srcErr := parseHTMLPage(htmlTestSource(), "<html><body></body></html>", true, parseNow)
	assert.Nil(t, postings)
	require.NotNil(t, srcErr)
	assert.Equal(t, types.FailureStructuralMismatch, srcErr.Kind)
	assert.Equal(t, "div.job-card", srcErr.Selector)
}

func TestParseHTMLPage_NoCardsLaterPage(t *testing.T) {
	postings, srcErr := parseHTMLPage(htmlTestSource(), "<html><body></body></html>", false, parseNow)
	assert.Nil(t, srcErr, "empty later page is the end of pagination")
	assert.Empty(t, postings)
}

func TestParseHTMLPage_CardMissingTitle(t *testing.T) {
	body := `<div class="job-card"><span class="company">Initech</span></div>`
	postings, srcErr := parseHTMLPage(htmlTestSource(), body, true, parseNow)
	assert.Nil(t, postings)
	require.NotNil(t, srcErr)
	assert.Equal(t, types.FailureStructuralMismatch, srcErr.Kind)
	assert.Equal(t, "h2", srcErr.Selector)
}

func TestExpandURL(t *testing.T) {
	url := expandURL("https://api.test/search/{{page}}?what={{query}}&where={{location}}",
		Query{Title: "go engineer", Location: "New York"}, 2)
	assert.Equal(t, "https://api.test/search/2?what=go+engineer&where=New+York", url)
}

func TestSourceConfig_Defaults(t *testing.T) {
	c := SourceConfig{Name: "boards", Kind: KindAPI, URL: "u"}.withDefaults()
	assert.Equal(t, DefaultMinDelay, c.MinDelay)
	assert.Equal(t, DefaultMaxAttempts, c.MaxAttempts)
	assert.Equal(t, DefaultBackoffBase, c.BackoffBase)
	assert.Equal(t, DefaultBackoffCap, c.BackoffCap)
	assert.Equal(t, DefaultMaxPages, c.MaxPages)
}
