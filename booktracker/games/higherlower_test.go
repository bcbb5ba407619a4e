package games

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
)

func hlCatalog(prices ...float64) []*models.Book {
	books := make([]*models.Book, len(prices))
	for i, price := range prices {
		books[i] = &models.Book{
			Title:        string(rune('A' + i)),
			CurrentPrice: price,
			Availability: models.AvailabilityInStock,
		}
	}
	return books
}

func TestHigherLowerStart(t *testing.T) {
	g := NewHigherLower(&stubRepo{inStock: hlCatalog(10, 20, 30)})

	round, err := g.Start(context.Background(), "chan-1")
	if err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}
	if round.Current == nil || round.Next == nil {
		t.Fatal("Start() round must present two books")
	}
	if round.Current == round.Next {
		t.Error("Start() current and next must be distinct")
	}
}

func TestHigherLowerStartInsufficientCatalog(t *testing.T) {
	g := NewHigherLower(&stubRepo{inStock: hlCatalog(10)})

	if _, err := g.Start(context.Background(), "chan-1"); !errors.Is(err, ErrInsufficientCatalog) {
		t.Errorf("Start() error = %v, want ErrInsufficientCatalog", err)
	}
}

func TestHigherLowerGuess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		currentPrice float64
		nextPrice    float64
		dir          Direction
		wantCorrect  bool
	}{
		{"higher correct", 10, 20, DirectionHigher, true},
		{"higher wrong", 20, 10, DirectionHigher, false},
		{"lower correct", 20, 10, DirectionLower, true},
		{"lower wrong", 10, 20, DirectionLower, false},
		{"tie rewards higher", 15, 15, DirectionHigher, true},
		{"tie rewards lower", 15, 15, DirectionLower, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewHigherLower(&stubRepo{inStock: hlCatalog(1, 2)})
			if _, err := g.Start(ctx, "chan-1"); err != nil {
				t.Fatalf("Start() unexpected error = %v", err)
			}

			// Pin the pair so the guess outcome is deterministic.
			v, _ := g.sessions.Load("chan-1")
			session := v.(*hlSession)
			session.current = &models.Book{Title: "Current", CurrentPrice: tt.currentPrice}
			session.next = &models.Book{Title: "Next", CurrentPrice: tt.nextPrice}

			result, err := g.Guess(ctx, "chan-1", tt.dir)
			if err != nil {
				t.Fatalf("Guess() unexpected error = %v", err)
			}
			if result.Correct != tt.wantCorrect && !result.PerfectRun {
				t.Errorf("Guess() correct = %v, want %v", result.Correct, tt.wantCorrect)
			}
			if !tt.wantCorrect {
				if !result.Finished {
					t.Error("Guess() wrong guess must finish the session")
				}
				if _, err := g.Guess(ctx, "chan-1", tt.dir); !errors.Is(err, ErrNoActiveSession) {
					t.Errorf("Guess() after loss error = %v, want ErrNoActiveSession", err)
				}
			}
		})
	}
}

func TestHigherLowerPerfectRun(t *testing.T) {
	ctx := context.Background()
	// Two books: one guess resolves the whole pool.
	g := NewHigherLower(&stubRepo{inStock: hlCatalog(10, 20)})
	if _, err := g.Start(ctx, "chan-1"); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}

	v, _ := g.sessions.Load("chan-1")
	session := v.(*hlSession)
	dir := DirectionHigher
	if session.next.CurrentPrice < session.current.CurrentPrice {
		dir = DirectionLower
	}

	result, err := g.Guess(ctx, "chan-1", dir)
	if err != nil {
		t.Fatalf("Guess() unexpected error = %v", err)
	}
	if !result.PerfectRun || !result.Finished {
		t.Errorf("Guess() = %+v, want finished perfect run", result)
	}
	if result.Score != 1 {
		t.Errorf("Guess() score = %d, want 1", result.Score)
	}
}

func TestHigherLowerChainContinues(t *testing.T) {
	ctx := context.Background()
	g := NewHigherLower(&stubRepo{inStock: hlCatalog(1, 2, 3, 4, 5)})
	if _, err := g.Start(ctx, "chan-1"); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}

	v, _ := g.sessions.Load("chan-1")
	session := v.(*hlSession)
	dir := DirectionHigher
	if session.next.CurrentPrice < session.current.CurrentPrice {
		dir = DirectionLower
	}
	revealed := session.next

	result, err := g.Guess(ctx, "chan-1", dir)
	if err != nil {
		t.Fatalf("Guess() unexpected error = %v", err)
	}
	if result.Finished {
		t.Fatal("Guess() with pool remaining must continue the chain")
	}
	if result.Round == nil {
		t.Fatal("Guess() continuing chain must present the next pair")
	}
	// The chain advances: the revealed book becomes the new reference.
	if result.Round.Current != revealed {
		t.Error("Guess() next round must lead with the revealed book")
	}
	if result.Round.Next == result.Round.Current {
		t.Error("Guess() next pair must be distinct")
	}
}

func TestHigherLowerInvalidDirection(t *testing.T) {
	g := NewHigherLower(&stubRepo{inStock: hlCatalog(10, 20)})
	if _, err := g.Guess(context.Background(), "chan-1", Direction("sideways")); !errors.Is(err, ErrInvalidGuess) {
		t.Errorf("Guess() error = %v, want ErrInvalidGuess", err)
	}
}

func TestHigherLowerStartReplacesActiveSession(t *testing.T) {
	ctx := context.Background()
	g := NewHigherLower(&stubRepo{inStock: hlCatalog(1, 2, 3, 4)})
	if _, err := g.Start(ctx, "chan-1"); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}

	v, _ := g.sessions.Load("chan-1")
	v.(*hlSession).score = 3

	if _, err := g.Start(ctx, "chan-1"); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}
	v, _ = g.sessions.Load("chan-1")
	if got := v.(*hlSession).score; got != 0 {
		t.Errorf("Start() replacement session score = %d, want 0", got)
	}
}

func TestHigherLowerGuessAgainstReplacedSession(t *testing.T) {
	ctx := context.Background()
	g := NewHigherLower(&stubRepo{inStock: hlCatalog(1, 2, 3, 4)})
	if _, err := g.Start(ctx, "chan-1"); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}

	v, _ := g.sessions.Load("chan-1")
	stale := v.(*hlSession)

	// Hold the old session's lock so an in-flight guess is still pending
	// when a restart replaces the session.
	stale.mu.Lock()

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := g.Guess(ctx, "chan-1", DirectionHigher)
		done <- err
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	if _, err := g.Start(ctx, "chan-1"); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}
	stale.mu.Unlock()

	if err := <-done; !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Guess() against replaced session error = %v, want ErrNoActiveSession", err)
	}

	// The fresh game must be untouched by the stale guess.
	cur, ok := g.sessions.Load("chan-1")
	if !ok {
		t.Fatal("fresh session was removed by a stale guess")
	}
	if cur == v {
		t.Fatal("session was not replaced")
	}
	if _, err := g.Guess(ctx, "chan-1", DirectionHigher); err != nil {
		t.Errorf("Guess() on fresh session unexpected error = %v", err)
	}
}

func TestHigherLowerEnd(t *testing.T) {
	ctx := context.Background()
	g := NewHigherLower(&stubRepo{inStock: hlCatalog(10, 20)})
	if _, err := g.Start(ctx, "chan-1"); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}

	if _, ok := g.End("chan-1"); !ok {
		t.Error("End() = false, want true for active session")
	}
	if _, ok := g.End("chan-1"); ok {
		t.Error("End() = true for already ended session")
	}
}
