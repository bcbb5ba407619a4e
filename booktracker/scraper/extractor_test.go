package scraper

import (
	"errors"
	"reflect"
	"testing"
)

const detailPageHTML = `<!DOCTYPE html>
<html>
<head><title>A Light in the Attic | Books to Scrape - Sandbox</title></head>
<body>
<ul class="breadcrumb">
	<li><a href="../../index.html">Home</a></li>
	<li><a href="../category/books_1/index.html">Books</a></li>
	<li><a href="../category/books/poetry_23/index.html">Poetry</a></li>
	<li class="active">A Light in the Attic</li>
</ul>
<div id="product_gallery" class="carousel">
	<img src="../../media/cache/fe/72/fe72f0532301ec28892ae79a629a293c.jpg" alt="A Light in the Attic"/>
</div>
<div class="col-sm-6 product_main">
	<h1>A Light in the Attic</h1>
	<p class="star-rating Three"></p>
	<p class="price_color">£51.77</p>
	<p class="instock availability">
		<i class="icon-ok"></i>
		In stock (22 available)
	</p>
</div>
</body>
</html>`

func TestExtractRaw(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		want         *RawBookFields
		wantErrField string
	}{
		{
			name: "full detail page",
			html: detailPageHTML,
			want: &RawBookFields{
				URL:              "http://example.com/catalogue/a-light-in-the-attic_1000/index.html",
				Title:            "A Light in the Attic",
				Genre:            `<a href="../category/books/poetry_23/index.html">Poetry</a>`,
				PriceText:        "£51.77",
				AvailabilityText: "\n\t\t<i class=\"icon-ok\"></i>\n\t\tIn stock (22 available)\n\t",
				RatingWord:       "Three",
				CoverURL:         "../../media/cache/fe/72/fe72f0532301ec28892ae79a629a293c.jpg",
			},
		},
		{
			name: "title from meta fallback",
			html: `<html><head><title>  Sharp Objects | Books to Scrape</title></head>
<body><p class="price_color">£47.82</p></body></html>`,
			want: &RawBookFields{
				URL:       "http://example.com/catalogue/a-light-in-the-attic_1000/index.html",
				Title:     "Sharp Objects",
				PriceText: "£47.82",
			},
		},
		{
			name:         "missing title",
			html:         `<html><body><p class="price_color">£10.00</p></body></html>`,
			wantErrField: "title",
		},
		{
			name:         "missing price",
			html:         `<html><body><h1>Soumission</h1></body></html>`,
			wantErrField: "price",
		},
		{
			name:         "malformed price ignored",
			html:         `<html><body><h1>Soumission</h1><p class="price_color">fifty quid</p></body></html>`,
			wantErrField: "price",
		},
	}

	const pageURL = "http://example.com/catalogue/a-light-in-the-attic_1000/index.html"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractRaw(pageURL, tt.html)
			if tt.wantErrField != "" {
				var extractErr *ExtractionError
				if !errors.As(err, &extractErr) {
					t.Fatalf("ExtractRaw() error = %v, want *ExtractionError", err)
				}
				if extractErr.MissingField != tt.wantErrField {
					t.Errorf("ExtractRaw() missing field = %q, want %q", extractErr.MissingField, tt.wantErrField)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractRaw() unexpected error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractRaw() got = %+v, want %+v", got, tt.want)
			}
		})
	}
}
