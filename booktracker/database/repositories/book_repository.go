package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/models"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"
	"github.com/uptrace/bun"
)

// BookRepository is the catalog store consumed by the refresh cycle and the
// game engines. Upsert is the only write path; everything else is read-only.
type BookRepository interface {
	GetByURL(ctx context.Context, url string) (*models.Book, error)
	Upsert(ctx context.Context, book *models.Book, observation *models.PriceObservation) error
	Search(ctx context.Context, filters SearchFilters, offset, limit int) ([]*models.Book, int, error)
	Cheapest(ctx context.Context, genre string) (*models.Book, error)
	RandomInStock(ctx context.Context, excludeURL string) (*models.Book, error)
	RandomAny(ctx context.Context) (*models.Book, error)
	InStock(ctx context.Context) ([]*models.Book, error)
	Page(ctx context.Context, offset, limit int) ([]*models.Book, error)
	Count(ctx context.Context) (int64, error)
	PriceHistory(ctx context.Context, url string, limit int) ([]*models.PriceObservation, error)
}

// ErrNotFound is returned when a lookup matches no book.
var ErrNotFound = errors.New("book not found")

type cachedEntry struct {
	value     interface{}
	timestamp time.Time
}

type bookRepository struct {
	db    *bun.DB
	cache *lru.Cache
}

func NewBookRepository(db *bun.DB) BookRepository {
	cache, _ := lru.New(config.CacheSize)
	return &bookRepository{
		db:    db,
		cache: cache,
	}
}

func (r *bookRepository) getFromCache(key string) (interface{}, bool) {
	if v, ok := r.cache.Get(key); ok {
		entry := v.(cachedEntry)
		if time.Since(entry.timestamp) < config.CacheExpiration {
			return entry.value, true
		}
		r.cache.Remove(key)
	}
	return nil, false
}

func (r *bookRepository) setCache(key string, value interface{}) {
	r.cache.Add(key, cachedEntry{value: value, timestamp: time.Now()})
}

func (r *bookRepository) GetByURL(ctx context.Context, url string) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	book := new(models.Book)
	err := r.db.NewSelect().
		Model(book).
		Where("url = ?", url).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return book, nil
}

// Upsert writes the book and appends its observation in one transaction, so
// readers never see a book whose history row is missing.
func (r *bookRepository) Upsert(ctx context.Context, book *models.Book, observation *models.PriceObservation) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		book.UpdatedAt = now
		if book.CreatedAt.IsZero() {
			book.CreatedAt = now
		}

		_, err := tx.NewInsert().
			Model(book).
			On("CONFLICT (url) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("genre = EXCLUDED.genre").
			Set("availability = EXCLUDED.availability").
			Set("rating = EXCLUDED.rating").
			Set("current_price = EXCLUDED.current_price").
			Set("previous_price = EXCLUDED.previous_price").
			Set("price_change = EXCLUDED.price_change").
			Set("cover_url = EXCLUDED.cover_url").
			Set("last_checked_at = EXCLUDED.last_checked_at").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert book: %w", err)
		}

		if _, err := tx.NewInsert().Model(observation).Exec(ctx); err != nil {
			return fmt.Errorf("failed to append price observation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Cached pools are stale after any write.
	r.cache.Purge()
	return nil
}

func (r *bookRepository) applyFilters(q *bun.SelectQuery, filters SearchFilters) *bun.SelectQuery {
	if filters.Genre != "" {
		q = q.Where("genre ILIKE ?", "%"+filters.Genre+"%")
	}
	if filters.MaxPrice > 0 {
		q = q.Where("current_price <= ?", filters.MaxPrice)
	}
	if filters.MinRating > 0 {
		q = q.Where("rating >= ?", filters.MinRating)
	}
	if filters.InStockOnly {
		q = q.Where("availability = ?", models.AvailabilityInStock)
	}
	return q
}

// bookTitles implements fuzzy.Source for title matching.
type bookTitles []*models.Book

func (b bookTitles) String(i int) string { return b[i].Title }
func (b bookTitles) Len() int            { return len(b) }

// Search applies the SQL filters, then narrows by fuzzy title match when a
// title query is present. Returns the page plus the total match count.
func (r *bookRepository) Search(ctx context.Context, filters SearchFilters, offset, limit int) ([]*models.Book, int, error) {
	ctx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	column := "current_price"
	if filters.SortBy == "title" {
		column = "title"
	}
	direction := "ASC"
	if filters.SortDesc {
		direction = "DESC"
	}
	order := column + " " + direction

	var books []*models.Book
	q := r.applyFilters(r.db.NewSelect().Model(&books), filters).Order(order)
	if err := q.Scan(ctx); err != nil {
		return nil, 0, err
	}

	if filters.Title != "" {
		matches := fuzzy.FindFrom(filters.Title, bookTitles(books))
		matched := make([]*models.Book, 0, len(matches))
		for _, m := range matches {
			matched = append(matched, books[m.Index])
		}
		books = matched
	}

	total := len(books)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return books[offset:end], total, nil
}

func (r *bookRepository) Cheapest(ctx context.Context, genre string) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	cacheKey := "cheapest:" + genre
	if cached, ok := r.getFromCache(cacheKey); ok {
		return cached.(*models.Book), nil
	}

	book := new(models.Book)
	q := r.db.NewSelect().Model(book)
	if genre != "" {
		q = q.Where("genre ILIKE ?", "%"+genre+"%")
	}
	err := q.Order("current_price ASC").Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r.setCache(cacheKey, book)
	return book, nil
}

func (r *bookRepository) RandomInStock(ctx context.Context, excludeURL string) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	book := new(models.Book)
	q := r.db.NewSelect().
		Model(book).
		Where("availability = ?", models.AvailabilityInStock)
	if excludeURL != "" {
		q = q.Where("url != ?", excludeURL)
	}
	err := q.OrderExpr("random()").Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return book, nil
}

func (r *bookRepository) RandomAny(ctx context.Context) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	book := new(models.Book)
	err := r.db.NewSelect().
		Model(book).
		OrderExpr("random()").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return book, nil
}

func (r *bookRepository) InStock(ctx context.Context) ([]*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	if cached, ok := r.getFromCache("instock"); ok {
		return cached.([]*models.Book), nil
	}

	var books []*models.Book
	err := r.db.NewSelect().
		Model(&books).
		Where("availability = ?", models.AvailabilityInStock).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	r.setCache("instock", books)
	return books, nil
}

func (r *bookRepository) Page(ctx context.Context, offset, limit int) ([]*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StatsQueryTimeout)
	defer cancel()

	var books []*models.Book
	err := r.db.NewSelect().
		Model(&books).
		Order("current_price ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	return books, err
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Book)(nil)).
		Count(ctx)

	return int64(count), err
}

func (r *bookRepository) PriceHistory(ctx context.Context, url string, limit int) ([]*models.PriceObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var observations []*models.PriceObservation
	q := r.db.NewSelect().
		Model(&observations).
		Where("book_url = ?", url).
		Order("observed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(ctx)

	return observations, err
}
