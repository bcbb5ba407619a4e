package scraper

import (
	"errors"
	"reflect"
	"testing"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     *RawBookFields
		want    *models.Book
		wantErr bool
	}{
		{
			name: "full field set",
			raw: &RawBookFields{
				URL:              "http://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html",
				Title:            "A Light in the Attic",
				Genre:            `<a href="../category/books/poetry_23/index.html">Poetry</a>`,
				PriceText:        "£51.77",
				AvailabilityText: "\n<i class=\"icon-ok\"></i>\nIn stock (22 available)\n",
				RatingWord:       "Three",
				CoverURL:         "../../media/cache/fe/72/cover.jpg",
			},
			want: &models.Book{
				URL:          "http://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html",
				Title:        "A Light in the Attic",
				Genre:        "Poetry",
				Availability: models.AvailabilityInStock,
				Rating:       3,
				CurrentPrice: 51.77,
				CoverURL:     "http://books.toscrape.com/media/cache/fe/72/cover.jpg",
			},
		},
		{
			name: "missing optional fields use sentinels",
			raw: &RawBookFields{
				URL:       "http://books.toscrape.com/catalogue/soumission_998/index.html",
				Title:     "Soumission",
				PriceText: "£50.10",
			},
			want: &models.Book{
				URL:          "http://books.toscrape.com/catalogue/soumission_998/index.html",
				Title:        "Soumission",
				Genre:        models.GenreUnknown,
				Availability: models.AvailabilityUnknown,
				Rating:       0,
				CurrentPrice: 50.10,
			},
		},
		{
			name: "unmatched rating word normalizes to unrated",
			raw: &RawBookFields{
				URL:        "http://books.toscrape.com/catalogue/x_1/index.html",
				Title:      "X",
				PriceText:  "£12.00",
				RatingWord: "Eleven",
			},
			want: &models.Book{
				URL:          "http://books.toscrape.com/catalogue/x_1/index.html",
				Title:        "X",
				Genre:        models.GenreUnknown,
				Availability: models.AvailabilityUnknown,
				Rating:       0,
				CurrentPrice: 12.00,
			},
		},
		{
			name: "availability without in stock marker",
			raw: &RawBookFields{
				URL:              "http://books.toscrape.com/catalogue/x_1/index.html",
				Title:            "X",
				PriceText:        "£12.00",
				AvailabilityText: "Temporarily unavailable",
			},
			want: &models.Book{
				URL:          "http://books.toscrape.com/catalogue/x_1/index.html",
				Title:        "X",
				Genre:        models.GenreUnknown,
				Availability: models.AvailabilityOutOfStock,
				Rating:       0,
				CurrentPrice: 12.00,
			},
		},
		{
			name: "price without numeric pattern",
			raw: &RawBookFields{
				URL:       "http://books.toscrape.com/catalogue/x_1/index.html",
				Title:     "X",
				PriceText: "£free",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				var normErr *NormalizationError
				if !errors.As(err, &normErr) {
					t.Fatalf("Normalize() error = %v, want *NormalizationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() unexpected error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() got = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`<a href="x.html">Poetry</a>`, "Poetry"},
		{"  \n\tIn stock (22 available)\n ", "In stock (22 available)"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
