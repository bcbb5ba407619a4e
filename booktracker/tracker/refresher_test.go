package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/booktrackerbot/booktracker/booktracker/scraper"
)

// fakeRepo is an in-memory BookRepository covering the methods the refresh
// cycle touches. The rest panic so an unexpected call fails loudly.
type fakeRepo struct {
	mu        sync.Mutex
	books     map[string]*models.Book
	history   []*models.PriceObservation
	upsertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{books: make(map[string]*models.Book)}
}

func (r *fakeRepo) GetByURL(_ context.Context, url string) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.books[url]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *book
	return &copied, nil
}

func (r *fakeRepo) Upsert(_ context.Context, book *models.Book, observation *models.PriceObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.books[book.URL] = book
	r.history = append(r.history, observation)
	return nil
}

func (r *fakeRepo) Search(context.Context, repositories.SearchFilters, int, int) ([]*models.Book, int, error) {
	panic("not expected")
}

func (r *fakeRepo) Cheapest(context.Context, string) (*models.Book, error) { panic("not expected") }

func (r *fakeRepo) RandomInStock(context.Context, string) (*models.Book, error) {
	panic("not expected")
}

func (r *fakeRepo) RandomAny(context.Context) (*models.Book, error) { panic("not expected") }

func (r *fakeRepo) InStock(context.Context) ([]*models.Book, error) { panic("not expected") }

func (r *fakeRepo) Page(context.Context, int, int) ([]*models.Book, error) { panic("not expected") }

func (r *fakeRepo) Count(context.Context) (int64, error) { panic("not expected") }

func (r *fakeRepo) PriceHistory(context.Context, string, int) ([]*models.PriceObservation, error) {
	panic("not expected")
}

func detailHTML(title, price string) string {
	return fmt.Sprintf(`<html><body>
<h1>%s</h1>
<p class="price_color">%s</p>
<p class="instock availability">In stock (5 available)</p>
</body></html>`, title, price)
}

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.html":
			fmt.Fprint(w, `<article class="product_pod"><h3><a href="catalogue/alpha_1/index.html">a</a></h3></article>
<article class="product_pod"><h3><a href="catalogue/beta_2/index.html">b</a></h3></article>
<article class="product_pod"><h3><a href="catalogue/broken_3/index.html">c</a></h3></article>`)
		case "/catalogue/alpha_1/index.html":
			fmt.Fprint(w, detailHTML("Alpha", "£10.00"))
		case "/catalogue/beta_2/index.html":
			fmt.Fprint(w, detailHTML("Beta", "£25.50"))
		case "/catalogue/broken_3/index.html":
			fmt.Fprint(w, "<html><body><h1>Broken</h1><p>no price here</p></body></html>")
		default:
			fmt.Fprint(w, "<html><body></body></html>")
		}
	}))
	return srv
}

func TestRunCycle(t *testing.T) {
	srv := catalogServer(t)
	defer srv.Close()

	repo := newFakeRepo()
	fetcher := scraper.NewFetcher(srv.URL+"/", "test-agent", 0)
	refresher := NewRefresher(fetcher, repo, nil, 5, 2)

	summary, err := refresher.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() unexpected error = %v", err)
	}

	if summary.CandidateURLs != 3 {
		t.Errorf("RunCycle() candidates = %d, want 3", summary.CandidateURLs)
	}
	if summary.Created != 2 {
		t.Errorf("RunCycle() created = %d, want 2", summary.Created)
	}
	// The page without a price is skipped, not fatal.
	if summary.ItemFailures != 1 {
		t.Errorf("RunCycle() item failures = %d, want 1", summary.ItemFailures)
	}
	if len(repo.history) != 2 {
		t.Errorf("RunCycle() appended %d observations, want 2", len(repo.history))
	}

	// Second cycle over the same catalog updates in place and appends
	// another observation per book.
	summary, err = refresher.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() second run unexpected error = %v", err)
	}
	if summary.Created != 0 || summary.Updated != 2 {
		t.Errorf("RunCycle() second run created = %d, updated = %d, want 0/2", summary.Created, summary.Updated)
	}
	if len(repo.history) != 4 {
		t.Errorf("RunCycle() history has %d observations after two cycles, want 4", len(repo.history))
	}

	alpha := repo.books[srv.URL+"/catalogue/alpha_1/index.html"]
	if alpha == nil {
		t.Fatal("RunCycle() alpha not stored")
	}
	if !alpha.PriceChange.Valid || alpha.PriceChange.Float64 != 0 {
		t.Errorf("RunCycle() unchanged price delta = %+v, want valid 0", alpha.PriceChange)
	}
}

func TestRunCycleAbortsOnStorageError(t *testing.T) {
	srv := catalogServer(t)
	defer srv.Close()

	repo := newFakeRepo()
	repo.upsertErr = errors.New("connection refused")
	fetcher := scraper.NewFetcher(srv.URL+"/", "test-agent", 0)
	refresher := NewRefresher(fetcher, repo, nil, 5, 2)

	_, err := refresher.RunCycle(context.Background())
	if err == nil {
		t.Fatal("RunCycle() expected error when storage fails")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("RunCycle() error = %v, want *StorageError", err)
	}
}
