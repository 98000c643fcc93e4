package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/types"
)

// fakeFetcher serves scripted responses in order, repeating the last one.
type fakeFetcher struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	body   string
	status int
	err    error
}

func (f *fakeFetcher) Fetch(_ context.Context, urlStr string) (*FetchResult, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	r := f.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return &FetchResult{URL: urlStr, Body: r.body, StatusCode: status}, nil
}

// newTestScraper builds a scraper with no pacing delays and instant sleeps,
// recording every backoff delay.
func newTestScraper(fetcher Fetcher) (*Scraper, *[]time.Duration) {
	delays := &[]time.Duration{}
	s := New(fetcher, nil)
	s.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	base := time.Now()
	s.pacer.now = func() time.Time {
		// Advance far enough that pacing never blocks in tests.
		base = base.Add(time.Hour)
		return base
	}
	return s, delays
}

func apiSource() SourceConfig {
	return SourceConfig{
		Name:     "boards",
		Kind:     KindAPI,
		URL:      "https://example.test/search/{{page}}?q={{query}}",
		MinDelay: time.Millisecond,
		MaxPages: 2,
	}
}

func apiBody(ids ...string) string {
	results := ""
	for i, id := range ids {
		if i > 0 {
			results += ","
		}
		results += fmt.Sprintf(`{"id":%q,"title":"Engineer %s","description":"Go work","company":{"display_name":"Acme"},"location":{"display_name":"Remote"},"redirect_url":"https://example.test/j/%s"}`, id, id, id)
	}
	return `{"results":[` + results + `]}`
}

func drain(t *testing.T, st *Stream) ([]types.JobPosting, error) {
	t.Helper()
	var postings []types.JobPosting
	for {
		p, err := st.Next(context.Background())
		if err != nil {
			return postings, err
		}
		if p == nil {
			return postings, nil
		}
		postings = append(postings, *p)
	}
}

func TestSearch_APIPagination(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		{body: apiBody("1", "2")},
		{body: apiBody("3")},
		{body: apiBody()}, // guard: MaxPages stops before a third request
	}}
	s, _ := newTestScraper(fetcher)

	st, err := s.Search(apiSource(), Query{Title: "engineer"})
	require.NoError(t, err)

	postings, err := drain(t, st)
	require.NoError(t, err)
	require.Len(t, postings, 3)
	assert.Equal(t, "boards:1", postings[0].SourceID())
	assert.Equal(t, "Engineer 3", postings[2].Title)
	assert.NotEmpty(t, postings[0].ContentHash)
	assert.Equal(t, 2, fetcher.calls, "MaxPages bounds pagination")
}

func TestSearch_CaptchaAbortsImmediately(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		{body: `<html><div class="g-recaptcha"></div></html>`},
	}}
	s, delays := newTestScraper(fetcher)

	st, err := s.Search(apiSource(), Query{})
	require.NoError(t, err)

	postings, err := drain(t, st)
	assert.Empty(t, postings)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, types.FailureCaptchaBlocked, srcErr.Kind)
	assert.Equal(t, 1, fetcher.calls, "captcha must not be retried")
	assert.Empty(t, *delays, "captcha must not trigger backoff")
	assert.Same(t, srcErr, st.Failure())
}

func TestSearch_RateLimitedRetriesThenFails(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		{status: http.StatusTooManyRequests},
	}}
	s, delays := newTestScraper(fetcher)

	source := apiSource()
	source.MaxAttempts = 3
	source.BackoffBase = time.Second
	source.BackoffCap = time.Minute

	st, err := s.Search(source, Query{})
	require.NoError(t, err)

	_, err = drain(t, st)
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, types.FailureRateLimited, srcErr.Kind)
	assert.Equal(t, 3, fetcher.calls)

	// Backoff delays are non-decreasing and bounded.
	require.Len(t, *delays, 2)
	prev := time.Duration(0)
	for _, d := range *delays {
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, time.Duration(float64(time.Minute)*(1+jitterFraction)))
		prev = d
	}
}

func TestSearch_RateLimitedThenRecovers(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		{status: http.StatusTooManyRequests},
		{body: apiBody("7")},
		{body: apiBody()},
	}}
	s, _ := newTestScraper(fetcher)

	st, err := s.Search(apiSource(), Query{})
	require.NoError(t, err)

	postings, err := drain(t, st)
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "boards:7", postings[0].SourceID())
}

func TestSearch_TransportErrorClassified(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		{err: errors.New("connection refused")},
	}}
	s, _ := newTestScraper(fetcher)

	source := apiSource()
	source.MaxAttempts = 2

	st, err := s.Search(source, Query{})
	require.NoError(t, err)

	_, err = drain(t, st)
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, types.FailureTransportError, srcErr.Kind)
}

func TestSearch_StructuralMismatchAbortsSource(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		{body: `{"jobs": []}`}, // results envelope absent
	}}
	s, _ := newTestScraper(fetcher)

	st, err := s.Search(apiSource(), Query{})
	require.NoError(t, err)

	_, err = drain(t, st)
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, types.FailureStructuralMismatch, srcErr.Kind)
	assert.Equal(t, "results", srcErr.Selector)
	assert.Equal(t, 1, fetcher.calls, "structural mismatch must not be retried")
}

func TestSearch_ContextCancellation(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{{body: apiBody("1")}}}
	s, _ := newTestScraper(fetcher)

	st, err := s.Search(apiSource(), Query{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = st.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_InvalidSource(t *testing.T) {
	s, _ := newTestScraper(&fakeFetcher{responses: []fakeResponse{{}}})

	_, err := s.Search(SourceConfig{Name: "x", Kind: "ftp", URL: "u"}, Query{})
	assert.Error(t, err)

	_, err = s.Search(SourceConfig{Name: "x", Kind: KindHTML, URL: "u"}, Query{})
	assert.Error(t, err, "html source without item selector")
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "JobAgent")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(5 * time.Second)
	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, result.StatusCode)
	assert.Equal(t, "short and stout", result.Body)
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher(time.Second)
	_, err := f.Fetch(context.Background(), "not a url")
	assert.Error(t, err)
}
