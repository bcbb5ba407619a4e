package games

import (
	"context"
	"math/rand"
	"sync"

	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/models"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
)

type Direction string

const (
	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
)

// HLRound is the pair currently shown to the player.
type HLRound struct {
	Current *models.Book
	Next    *models.Book
	Score   int
}

// HLResult is the outcome of one guess.
type HLResult struct {
	Correct    bool
	Revealed   *models.Book // the book whose price was just revealed
	Score      int
	Finished   bool
	PerfectRun bool
	Round      *HLRound // next pair when the run continues
}

type hlSession struct {
	mu      sync.Mutex
	current *models.Book
	next    *models.Book
	pool    []*models.Book
	score   int
}

// HigherLower runs the price-guessing chain game. Sessions are keyed by an
// opaque session key (one per channel); each session serializes its own
// guesses so a second guess can never race a pending one. The engine reads
// the catalog and never writes to it.
type HigherLower struct {
	repo     repositories.BookRepository
	sessions sync.Map // sessionKey -> *hlSession
}

func NewHigherLower(repo repositories.BookRepository) *HigherLower {
	return &HigherLower{repo: repo}
}

// Start draws two distinct in-stock books and opens a session. An already
// active session for the key is replaced.
func (g *HigherLower) Start(ctx context.Context, sessionKey string) (*HLRound, error) {
	books, err := g.repo.InStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(books) < config.HigherLowerMinPool {
		return nil, ErrInsufficientCatalog
	}

	shuffled := make([]*models.Book, len(books))
	copy(shuffled, books)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	session := &hlSession{
		current: shuffled[0],
		next:    shuffled[1],
		pool:    shuffled[2:],
	}
	g.sessions.Store(sessionKey, session)

	return &HLRound{Current: session.current, Next: session.next}, nil
}

// Guess resolves one higher/lower guess. Equal prices count as correct in
// either direction. A wrong guess ends the session; exhausting the pool
// with a correct guess ends it as a perfect run.
func (g *HigherLower) Guess(ctx context.Context, sessionKey string, dir Direction) (*HLResult, error) {
	if dir != DirectionHigher && dir != DirectionLower {
		return nil, ErrInvalidGuess
	}

	v, ok := g.sessions.Load(sessionKey)
	if !ok {
		return nil, ErrNoActiveSession
	}
	session := v.(*hlSession)

	session.mu.Lock()
	defer session.mu.Unlock()

	// The session may have been ended, or replaced by a restart, while this
	// guess waited on the lock. A stale guess must never touch the
	// replacement session.
	if cur, ok := g.sessions.Load(sessionKey); !ok || cur != v {
		return nil, ErrNoActiveSession
	}

	correct := session.next.CurrentPrice == session.current.CurrentPrice ||
		(dir == DirectionHigher && session.next.CurrentPrice > session.current.CurrentPrice) ||
		(dir == DirectionLower && session.next.CurrentPrice < session.current.CurrentPrice)

	revealed := session.next

	if !correct {
		// Only the session that owns the key may remove it.
		g.sessions.CompareAndDelete(sessionKey, v)
		return &HLResult{
			Revealed: revealed,
			Score:    session.score,
			Finished: true,
		}, nil
	}

	session.score++
	session.current = session.next

	if len(session.pool) == 0 {
		g.sessions.CompareAndDelete(sessionKey, v)
		return &HLResult{
			Correct:    true,
			Revealed:   revealed,
			Score:      session.score,
			Finished:   true,
			PerfectRun: true,
		}, nil
	}

	idx := rand.Intn(len(session.pool))
	session.next = session.pool[idx]
	session.pool[idx] = session.pool[len(session.pool)-1]
	session.pool = session.pool[:len(session.pool)-1]

	return &HLResult{
		Correct:  true,
		Revealed: revealed,
		Score:    session.score,
		Round: &HLRound{
			Current: session.current,
			Next:    session.next,
			Score:   session.score,
		},
	}, nil
}

// End explicitly terminates a session, reporting the final score.
func (g *HigherLower) End(sessionKey string) (int, bool) {
	v, ok := g.sessions.LoadAndDelete(sessionKey)
	if !ok {
		return 0, false
	}
	session := v.(*hlSession)
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.score, true
}
