package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
)

// NormalizationError reports raw text that could not be converted to a
// typed value.
type NormalizationError struct {
	Field string
	Text  string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization failed: bad %s %q", e.Field, e.Text)
}

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	numericPattern = regexp.MustCompile(`\d+\.\d{2}`)
)

var ratingWords = map[string]int{
	"One":   1,
	"Two":   2,
	"Three": 3,
	"Four":  4,
	"Five":  5,
}

// Normalize converts a raw field set into a typed Book. Pure function, no
// I/O. A price that does not contain a numeric pattern is an error; an
// unmatched rating word or missing genre/availability normalizes to
// sentinels instead.
func Normalize(raw *RawBookFields) (*models.Book, error) {
	priceText := cleanText(raw.PriceText)
	m := numericPattern.FindString(priceText)
	if m == "" {
		return nil, &NormalizationError{Field: "price", Text: raw.PriceText}
	}
	price, err := strconv.ParseFloat(m, 64)
	if err != nil || price < 0 {
		return nil, &NormalizationError{Field: "price", Text: raw.PriceText}
	}

	book := &models.Book{
		URL:          raw.URL,
		Title:        cleanText(raw.Title),
		Genre:        models.GenreUnknown,
		Availability: normalizeAvailability(cleanText(raw.AvailabilityText)),
		Rating:       ratingWords[raw.RatingWord],
		CurrentPrice: price,
		CoverURL:     resolveCoverURL(raw.URL, raw.CoverURL),
	}

	if genre := cleanText(raw.Genre); genre != "" {
		book.Genre = genre
	}

	return book, nil
}

// cleanText strips HTML markup and surrounding whitespace.
func cleanText(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

func normalizeAvailability(text string) string {
	switch {
	case text == "":
		return models.AvailabilityUnknown
	case strings.Contains(strings.ToLower(text), "in stock"):
		return models.AvailabilityInStock
	default:
		return models.AvailabilityOutOfStock
	}
}

func resolveCoverURL(pageURL, coverRef string) string {
	if coverRef == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(coverRef)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
