package models

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// Availability values stored in books.availability.
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityUnknown    = "unknown"
)

// GenreUnknown is the sentinel stored when no breadcrumb genre was found.
const GenreUnknown = "unknown"

// Book is one catalog item, identified by its source URL. CurrentPrice is
// always the latest observed price; PreviousPrice and PriceChange reflect
// exactly the prior refresh cycle, never older ones.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID            int64           `bun:"id,pk,autoincrement"`
	URL           string          `bun:"url,notnull,unique"`
	Title         string          `bun:"title,notnull"`
	Genre         string          `bun:"genre,notnull,default:'unknown'"`
	Availability  string          `bun:"availability,notnull,default:'unknown'"`
	Rating        int             `bun:"rating,notnull,default:0"` // 1-5, 0 = unrated
	CurrentPrice  float64         `bun:"current_price,notnull"`
	PreviousPrice sql.NullFloat64 `bun:"previous_price"`
	PriceChange   sql.NullFloat64 `bun:"price_change"`
	CoverURL      string          `bun:"cover_url"`
	LastCheckedAt time.Time       `bun:"last_checked_at,notnull"`
	CreatedAt     time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// InStock reports whether the book was available at the last refresh.
func (b *Book) InStock() bool {
	return b.Availability == AvailabilityInStock
}
