package services

import (
	"context"
	"sync"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
)

// BookOfTheDay serves one random in-stock pick per UTC day. Everyone gets
// the same book until the day rolls over.
type BookOfTheDay struct {
	repo repositories.BookRepository

	mu   sync.Mutex
	date string
	book *models.Book
}

func NewBookOfTheDay(repo repositories.BookRepository) *BookOfTheDay {
	return &BookOfTheDay{repo: repo}
}

func (s *BookOfTheDay) Today(ctx context.Context) (*models.Book, error) {
	today := time.Now().UTC().Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.date == today && s.book != nil {
		return s.book, nil
	}

	book, err := s.repo.RandomInStock(ctx, "")
	if err != nil {
		return nil, err
	}

	s.date = today
	s.book = book
	return book, nil
}
