package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var productLinkPattern = regexp.MustCompile(`(?s)<article class="product_pod">.*?<h3>.*?<a href="(.*?)"`)

// Fetcher crawls the paginated catalog listing and fetches detail pages.
// It keeps no crawl state between invocations; every ListCandidateURLs call
// starts again from page 1.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewFetcher(baseURL, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

// ListCandidateURLs walks listing pages 1..maxPages and returns every
// discovered detail-page URL, resolved against the listing page it came from.
// A page with a non-success status is counted as a fetch failure and skipped;
// the crawl continues with the next page. A page without product links ends
// the crawl (end of catalog).
func (f *Fetcher) ListCandidateURLs(ctx context.Context, maxPages int) ([]string, int, error) {
	var urls []string
	seen := make(map[string]bool)
	fetchFailures := 0

	for page := 1; page <= maxPages; page++ {
		pageURL := f.listingPageURL(page)

		html, err := f.FetchPage(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return urls, fetchFailures, ctx.Err()
			}
			fetchFailures++
			slog.Warn("Listing page fetch failed",
				slog.String("type", "scrape"),
				slog.Int("page", page),
				slog.String("url", pageURL),
				slog.Any("error", err))
			continue
		}

		matches := productLinkPattern.FindAllStringSubmatch(html, -1)
		if len(matches) == 0 {
			break
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			fetchFailures++
			continue
		}
		for _, m := range matches {
			ref, err := url.Parse(m[1])
			if err != nil {
				continue
			}
			full := base.ResolveReference(ref).String()
			if !seen[full] {
				seen[full] = true
				urls = append(urls, full)
			}
		}
	}

	return urls, fetchFailures, nil
}

// FetchPage performs one GET and returns the response body as a string.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}

func (f *Fetcher) listingPageURL(page int) string {
	if page == 1 {
		return f.baseURL + "index.html"
	}
	return fmt.Sprintf("%scatalogue/page-%d.html", f.baseURL, page)
}
