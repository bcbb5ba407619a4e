package games

import (
	"context"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
)

// stubRepo serves a fixed catalog to the game engines. Only the read paths
// the engines use are implemented; the rest panic.
type stubRepo struct {
	inStock []*models.Book
	any     *models.Book
}

func (r *stubRepo) InStock(context.Context) ([]*models.Book, error) {
	return r.inStock, nil
}

func (r *stubRepo) RandomAny(context.Context) (*models.Book, error) {
	if r.any == nil {
		return nil, repositories.ErrNotFound
	}
	return r.any, nil
}

func (r *stubRepo) GetByURL(context.Context, string) (*models.Book, error) { panic("not expected") }

func (r *stubRepo) Upsert(context.Context, *models.Book, *models.PriceObservation) error {
	panic("not expected")
}

func (r *stubRepo) Search(context.Context, repositories.SearchFilters, int, int) ([]*models.Book, int, error) {
	panic("not expected")
}

func (r *stubRepo) Cheapest(context.Context, string) (*models.Book, error) { panic("not expected") }

func (r *stubRepo) RandomInStock(context.Context, string) (*models.Book, error) {
	panic("not expected")
}

func (r *stubRepo) Page(context.Context, int, int) ([]*models.Book, error) { panic("not expected") }

func (r *stubRepo) Count(context.Context) (int64, error) { panic("not expected") }

func (r *stubRepo) PriceHistory(context.Context, string, int) ([]*models.PriceObservation, error) {
	panic("not expected")
}
