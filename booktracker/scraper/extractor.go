package scraper

import (
	"fmt"
	"regexp"
	"strings"
)

// RawBookFields is the untyped field set pulled out of one detail page.
// Title and PriceText are mandatory; the rest default to empty and are
// resolved to sentinels by the normalizer.
type RawBookFields struct {
	URL              string
	Title            string
	Genre            string
	PriceText        string
	AvailabilityText string
	RatingWord       string
	CoverURL         string
}

// ExtractionError reports a detail page missing a mandatory field.
type ExtractionError struct {
	URL          string
	MissingField string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: missing %s", e.URL, e.MissingField)
}

var (
	titlePattern        = regexp.MustCompile(`<h1>([^<]+)</h1>`)
	titleMetaPattern    = regexp.MustCompile(`(?i)<title>\s*(.*?)\s*\|\s*Books to Scrape`)
	genrePattern        = regexp.MustCompile(`(?s)<ul class="breadcrumb">.*?<li>.*?</li>.*?<li>.*?</li>.*?<li>(.*?)</li>`)
	pricePattern        = regexp.MustCompile(`£\s*\d+\.\d{2}`)
	availabilityPattern = regexp.MustCompile(`(?i)<p\s+class="instock availability">([\s\S]*?)</p>`)
	ratingPattern       = regexp.MustCompile(`<p class="star-rating\s+(\w+)">`)
	coverPattern        = regexp.MustCompile(`(?s)<div[^>]*id="product_gallery"[^>]*>.*?<img src="([^"]+)"`)
)

// ExtractRaw parses one detail page into its raw field set. Title and price
// are mandatory; genre, availability, rating and cover are best-effort.
// Parsing is regex-driven on purpose: the extraction strategy stays behind
// this function so callers never depend on it.
func ExtractRaw(pageURL, html string) (*RawBookFields, error) {
	raw := &RawBookFields{URL: pageURL}

	if m := titlePattern.FindStringSubmatch(html); m != nil {
		raw.Title = strings.TrimSpace(m[1])
	} else if m := titleMetaPattern.FindStringSubmatch(html); m != nil {
		raw.Title = strings.TrimSpace(m[1])
	}
	if raw.Title == "" {
		return nil, &ExtractionError{URL: pageURL, MissingField: "title"}
	}

	raw.PriceText = pricePattern.FindString(html)
	if raw.PriceText == "" {
		return nil, &ExtractionError{URL: pageURL, MissingField: "price"}
	}

	// Deepest breadcrumb segment is the genre.
	if m := genrePattern.FindStringSubmatch(html); m != nil {
		raw.Genre = m[1]
	}
	if m := availabilityPattern.FindStringSubmatch(html); m != nil {
		raw.AvailabilityText = m[1]
	}
	if m := ratingPattern.FindStringSubmatch(html); m != nil {
		raw.RatingWord = m[1]
	}
	if m := coverPattern.FindStringSubmatch(html); m != nil {
		raw.CoverURL = m[1]
	}

	return raw, nil
}
