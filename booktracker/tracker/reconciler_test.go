package tracker

import (
	"database/sql"
	"testing"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
)

func TestReconcileNewBook(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	incoming := &models.Book{
		URL:          "http://books.toscrape.com/catalogue/x_1/index.html",
		Title:        "X",
		CurrentPrice: 19.99,
	}

	plan := Reconcile(nil, incoming, now)

	if !plan.IsNew {
		t.Error("Reconcile() IsNew = false, want true")
	}
	if plan.Book.PreviousPrice.Valid {
		t.Error("Reconcile() new book must not carry a previous price")
	}
	if plan.Book.PriceChange.Valid {
		t.Error("Reconcile() new book must not carry a price change")
	}
	if plan.Book.LastCheckedAt != now {
		t.Errorf("Reconcile() LastCheckedAt = %v, want %v", plan.Book.LastCheckedAt, now)
	}
	if plan.Observation == nil {
		t.Fatal("Reconcile() must always produce an observation")
	}
	if plan.Observation.Price != 19.99 || plan.Observation.BookURL != incoming.URL || plan.Observation.ObservedAt != now {
		t.Errorf("Reconcile() observation = %+v", plan.Observation)
	}
}

func TestReconcileExistingBook(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		existingPrice float64
		incomingPrice float64
		wantChange    float64
	}{
		{"price increase", 19.99, 24.50, 4.51},
		{"price decrease", 24.50, 19.99, -4.51},
		{"unchanged price", 19.99, 19.99, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &models.Book{
				ID:            7,
				URL:           "http://books.toscrape.com/catalogue/x_1/index.html",
				Title:         "X",
				CurrentPrice:  tt.existingPrice,
				PreviousPrice: sql.NullFloat64{Float64: 1.00, Valid: true},
				CreatedAt:     now.Add(-48 * time.Hour),
			}
			incoming := &models.Book{
				URL:          existing.URL,
				Title:        "X",
				CurrentPrice: tt.incomingPrice,
			}

			plan := Reconcile(existing, incoming, now)

			if plan.IsNew {
				t.Error("Reconcile() IsNew = true, want false")
			}
			if plan.Book.ID != existing.ID {
				t.Errorf("Reconcile() ID = %d, want %d", plan.Book.ID, existing.ID)
			}
			if plan.Book.CreatedAt != existing.CreatedAt {
				t.Errorf("Reconcile() CreatedAt = %v, want %v", plan.Book.CreatedAt, existing.CreatedAt)
			}
			// Previous price is exactly the prior cycle's current price,
			// never the older stored previous.
			if !plan.Book.PreviousPrice.Valid || plan.Book.PreviousPrice.Float64 != tt.existingPrice {
				t.Errorf("Reconcile() PreviousPrice = %+v, want %v", plan.Book.PreviousPrice, tt.existingPrice)
			}
			if !plan.Book.PriceChange.Valid || plan.Book.PriceChange.Float64 != tt.wantChange {
				t.Errorf("Reconcile() PriceChange = %+v, want %v", plan.Book.PriceChange, tt.wantChange)
			}
			if plan.Observation == nil || plan.Observation.Price != tt.incomingPrice {
				t.Errorf("Reconcile() observation = %+v, want price %v", plan.Observation, tt.incomingPrice)
			}
		})
	}
}

func TestReconcileKeepsExistingCover(t *testing.T) {
	now := time.Now().UTC()
	existing := &models.Book{
		URL:          "http://books.toscrape.com/catalogue/x_1/index.html",
		CurrentPrice: 10,
		CoverURL:     "https://cdn.example.com/covers/x.jpg",
	}
	incoming := &models.Book{
		URL:          existing.URL,
		CurrentPrice: 10,
	}

	plan := Reconcile(existing, incoming, now)

	if plan.Book.CoverURL != existing.CoverURL {
		t.Errorf("Reconcile() CoverURL = %q, want existing %q", plan.Book.CoverURL, existing.CoverURL)
	}
}
