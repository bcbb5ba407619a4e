package games

import "errors"

// Game-engine errors surfaced directly to the player. None of them mutate
// session state: a rejected guess never consumes an attempt or a score.
var (
	ErrNoActiveSession     = errors.New("no active game session")
	ErrInvalidGuess        = errors.New("invalid guess")
	ErrInsufficientCatalog = errors.New("not enough in-stock books to start a game")
	ErrEmptyCatalog        = errors.New("no books available")
)
