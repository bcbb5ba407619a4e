package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/booktrackerbot/booktracker/booktracker/logger"
	"github.com/booktrackerbot/booktracker/booktracker/scraper"
	"github.com/booktrackerbot/booktracker/booktracker/services"
	"golang.org/x/sync/errgroup"
)

// CycleSummary reports one full refresh cycle. Per-item failures are
// absorbed here; only storage failures abort a cycle.
type CycleSummary struct {
	CandidateURLs int
	Processed     int
	Created       int
	Updated       int
	FetchFailures int
	ItemFailures  int
	Took          time.Duration
}

// Refresher drives one Fetcher->Extractor->Normalizer->Reconciler pass over
// all discoverable items. It holds no state between cycles.
type Refresher struct {
	fetcher  *scraper.Fetcher
	repo     repositories.BookRepository
	covers   *services.CoverService // nil disables cover mirroring
	maxPages int
	workers  int
}

func NewRefresher(fetcher *scraper.Fetcher, repo repositories.BookRepository, covers *services.CoverService, maxPages, workers int) *Refresher {
	if workers < 1 {
		workers = 1
	}
	return &Refresher{
		fetcher:  fetcher,
		repo:     repo,
		covers:   covers,
		maxPages: maxPages,
		workers:  workers,
	}
}

// RunCycle crawls the catalog and reconciles every reachable item. A
// failure to extract or normalize one item skips that item only; a storage
// failure cancels the remaining work and is returned to the caller.
func (r *Refresher) RunCycle(ctx context.Context) (*CycleSummary, error) {
	start := time.Now()

	urls, fetchFailures, err := r.fetcher.ListCandidateURLs(ctx, r.maxPages)
	if err != nil {
		return nil, fmt.Errorf("listing crawl failed: %w", err)
	}

	var processed, created, updated, itemFailures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, pageURL := range urls {
		g.Go(func() error {
			isNew, err := r.processItem(gctx, pageURL)
			if err != nil {
				var storageErr *StorageError
				if errors.As(err, &storageErr) {
					return err
				}
				itemFailures.Add(1)
				slog.Warn("Item skipped",
					slog.String("type", "scrape"),
					slog.String("url", pageURL),
					slog.Any("error", err))
				return nil
			}
			processed.Add(1)
			if isNew {
				created.Add(1)
			} else {
				updated.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &CycleSummary{
		CandidateURLs: len(urls),
		Processed:     int(processed.Load()),
		Created:       int(created.Load()),
		Updated:       int(updated.Load()),
		FetchFailures: fetchFailures,
		ItemFailures:  int(itemFailures.Load()),
		Took:          time.Since(start),
	}

	logger.LogScrape("Refresh cycle finished",
		slog.Int("candidates", summary.CandidateURLs),
		slog.Int("processed", summary.Processed),
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("fetch_failures", summary.FetchFailures),
		slog.Int("item_failures", summary.ItemFailures),
		slog.Duration("took", summary.Took))

	return summary, nil
}

// StorageError marks failures of the catalog store, which abort the cycle
// instead of being absorbed per item.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (r *Refresher) processItem(ctx context.Context, pageURL string) (bool, error) {
	html, err := r.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return false, err
	}

	raw, err := scraper.ExtractRaw(pageURL, html)
	if err != nil {
		return false, err
	}

	book, err := scraper.Normalize(raw)
	if err != nil {
		return false, err
	}

	existing, err := r.repo.GetByURL(ctx, pageURL)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return false, &StorageError{Op: "lookup", Err: err}
	}

	r.mirrorCover(ctx, existing, book)

	plan := Reconcile(existing, book, time.Now().UTC())
	if err := r.repo.Upsert(ctx, plan.Book, plan.Observation); err != nil {
		return false, &StorageError{Op: "upsert", Err: err}
	}

	return plan.IsNew, nil
}

// mirrorCover uploads the cover for books we have not mirrored yet. Upload
// failures leave the scraped source URL in place.
func (r *Refresher) mirrorCover(ctx context.Context, existing, book *models.Book) {
	if r.covers == nil || book.CoverURL == "" {
		return
	}
	if existing != nil && existing.CoverURL != "" && existing.CoverURL != book.CoverURL {
		// Already mirrored on a previous cycle.
		book.CoverURL = existing.CoverURL
		return
	}

	mirrored, err := r.covers.MirrorCover(ctx, book.CoverURL)
	if err != nil {
		slog.Warn("Cover mirror failed",
			slog.String("type", "scrape"),
			slog.String("url", book.URL),
			slog.Any("error", err))
		return
	}
	book.CoverURL = mirrored
}
