package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
	"github.com/booktrackerbot/booktracker/booktracker/scraper"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config points at the legacy MongoDB deployment the first bot generation
// wrote to.
type Config struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	BatchSize  int    `toml:"batch_size"`
}

// Stats tracks one import run.
type Stats struct {
	Books        int
	Observations int
	Skipped      int
	Took         time.Duration
}

// legacyBook mirrors the document shape of the old bot's collection.
type legacyBook struct {
	URL          string  `bson:"url"`
	Title        string  `bson:"title"`
	Genre        string  `bson:"genre"`
	Availability string  `bson:"availability"`
	Rating       string  `bson:"rating"`
	LastPrice    float64 `bson:"last_price"`
	PrevPrice    *float64 `bson:"prev_price"`
	PriceChange  *float64 `bson:"price_change"`
	LastChecked  time.Time `bson:"last_checked"`
	History      []struct {
		Price     float64   `bson:"price"`
		Timestamp time.Time `bson:"timestamp"`
	} `bson:"history"`
}

// Migrator copies the legacy book collection into Postgres. One-shot tool,
// safe to re-run: books upsert on URL and history rows are appended only
// for imported documents.
type Migrator struct {
	pgDB *bun.DB
	cfg  Config
}

func NewMigrator(pgDB *bun.DB, cfg Config) *Migrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Collection == "" {
		cfg.Collection = "books"
	}
	return &Migrator{pgDB: pgDB, cfg: cfg}
}

func (m *Migrator) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to legacy mongo: %w", err)
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	coll := client.Database(m.cfg.Database).Collection(m.cfg.Collection)
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy collection: %w", err)
	}
	defer cursor.Close(ctx)

	var pendingObservations []*models.PriceObservation

	for cursor.Next(ctx) {
		var doc legacyBook
		if err := cursor.Decode(&doc); err != nil {
			stats.Skipped++
			slog.Warn("Skipping undecodable legacy document", slog.Any("error", err))
			continue
		}

		book, err := m.convert(doc)
		if err != nil {
			stats.Skipped++
			slog.Warn("Skipping legacy document",
				slog.String("url", doc.URL),
				slog.Any("error", err))
			continue
		}

		_, err = m.pgDB.NewInsert().
			Model(book).
			On("CONFLICT (url) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("genre = EXCLUDED.genre").
			Set("availability = EXCLUDED.availability").
			Set("rating = EXCLUDED.rating").
			Set("current_price = EXCLUDED.current_price").
			Set("previous_price = EXCLUDED.previous_price").
			Set("price_change = EXCLUDED.price_change").
			Set("last_checked_at = EXCLUDED.last_checked_at").
			Exec(ctx)
		if err != nil {
			return stats, fmt.Errorf("failed to insert book %s: %w", book.URL, err)
		}
		stats.Books++

		for _, h := range doc.History {
			pendingObservations = append(pendingObservations, &models.PriceObservation{
				BookURL:    book.URL,
				Price:      h.Price,
				ObservedAt: h.Timestamp,
			})
		}

		if len(pendingObservations) >= m.cfg.BatchSize {
			if err := m.flushObservations(ctx, &pendingObservations, stats); err != nil {
				return stats, err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return stats, fmt.Errorf("legacy cursor failed: %w", err)
	}

	if err := m.flushObservations(ctx, &pendingObservations, stats); err != nil {
		return stats, err
	}

	stats.Took = time.Since(start)
	slog.Info("Legacy import finished",
		slog.Int("books", stats.Books),
		slog.Int("observations", stats.Observations),
		slog.Int("skipped", stats.Skipped),
		slog.Duration("took", stats.Took))

	return stats, nil
}

// convert runs a legacy document through the same normalizer the scraper
// uses, so sentinel handling stays identical across both ingest paths.
func (m *Migrator) convert(doc legacyBook) (*models.Book, error) {
	raw := &scraper.RawBookFields{
		URL:              doc.URL,
		Title:            doc.Title,
		Genre:            doc.Genre,
		PriceText:        fmt.Sprintf("£%.2f", doc.LastPrice),
		AvailabilityText: doc.Availability,
		RatingWord:       doc.Rating,
	}

	book, err := scraper.Normalize(raw)
	if err != nil {
		return nil, err
	}

	if doc.PrevPrice != nil {
		book.PreviousPrice = sql.NullFloat64{Float64: *doc.PrevPrice, Valid: true}
	}
	if doc.PriceChange != nil {
		book.PriceChange = sql.NullFloat64{Float64: *doc.PriceChange, Valid: true}
	}
	book.LastCheckedAt = doc.LastChecked
	if book.LastCheckedAt.IsZero() {
		book.LastCheckedAt = time.Now().UTC()
	}

	return book, nil
}

func (m *Migrator) flushObservations(ctx context.Context, pending *[]*models.PriceObservation, stats *Stats) error {
	if len(*pending) == 0 {
		return nil
	}
	if _, err := m.pgDB.NewInsert().Model(pending).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert price history batch: %w", err)
	}
	stats.Observations += len(*pending)
	*pending = (*pending)[:0]
	return nil
}
