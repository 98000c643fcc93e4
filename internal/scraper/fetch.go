package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultFetchTimeout is the per-request HTTP timeout.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; JobAgent/1.0)"

// browserRenderTimeout bounds a full headless-browser page render.
const browserRenderTimeout = 60 * time.Second

// FetchResult holds one fetched page.
type FetchResult struct {
	URL        string
	Body       string
	StatusCode int
}

// Fetcher retrieves one URL. Implementations must honor ctx cancellation and
// bound their own latency; errors are classified by the scraper.
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) (*FetchResult, error)
}

// HTTPFetcher fetches pages over plain HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with a shared HTTP client.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: DefaultUserAgent,
	}
}

// Fetch retrieves the URL body. Non-2xx statuses are returned in the result,
// not as errors; the scraper classifies them.
func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResult, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: %w", urlStr, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &FetchResult{
		URL:        urlStr,
		Body:       string(bodyBytes),
		StatusCode: resp.StatusCode,
	}, nil
}

// BrowserFetcher renders pages in a headless browser for JavaScript-heavy
// sources. Requires Chrome/Chromium on the system.
type BrowserFetcher struct {
	timeout time.Duration
	verbose bool
}

// NewBrowserFetcher creates a headless browser fetcher.
func NewBrowserFetcher(timeout time.Duration, verbose bool) *BrowserFetcher {
	if timeout <= 0 {
		timeout = browserRenderTimeout
	}
	return &BrowserFetcher{timeout: timeout, verbose: verbose}
}

// Fetch renders the page and returns the final HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResult, error) {
	if f.verbose {
		log.Printf("[browser] rendering %s", urlStr)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, f.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		// Let client-side rendering settle before extracting.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}

	if f.verbose {
		log.Printf("[browser] rendered %d bytes", len(html))
	}

	// Rendered pages have no HTTP status; a successful render reads as 200.
	return &FetchResult{URL: urlStr, Body: html, StatusCode: http.StatusOK}, nil
}

// urlEscape escapes a query fragment for URL substitution.
func urlEscape(s string) string {
	return url.QueryEscape(s)
}
