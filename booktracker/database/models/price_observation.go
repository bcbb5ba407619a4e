package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PriceObservation is one append-only price fact for a book. Rows are never
// updated or deleted; every refresh cycle appends one per processed book.
type PriceObservation struct {
	bun.BaseModel `bun:"table:price_history,alias:ph"`

	ID         int64     `bun:"id,pk,autoincrement"`
	BookURL    string    `bun:"book_url,notnull"`
	Price      float64   `bun:"price,notnull"`
	ObservedAt time.Time `bun:"observed_at,notnull"`
}
