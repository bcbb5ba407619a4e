package games

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
)

const maskRune = '·'

// HangmanView is the player-visible state of a hangman session.
type HangmanView struct {
	Masked         string
	TriesLeft      int
	GuessedLetters []string
}

// HangmanResult is the outcome of one letter guess.
type HangmanResult struct {
	View           HangmanView
	Hit            bool
	AlreadyGuessed bool
	Won            bool
	Lost           bool
	Secret         string // revealed when the game is lost
}

type hangmanSession struct {
	mu        sync.Mutex
	secret    []rune // uppercased title; non-letters kept as-is
	display   []rune
	guessed   map[rune]bool
	order     []rune // guess order, for display
	triesLeft int
}

// Hangman runs the title-guessing game. Sessions are keyed per channel and
// serialize their own guesses. Non-alphabetic characters of the title are
// revealed from the start and never consume an attempt.
type Hangman struct {
	repo     repositories.BookRepository
	sessions sync.Map // sessionKey -> *hangmanSession
}

func NewHangman(repo repositories.BookRepository) *Hangman {
	return &Hangman{repo: repo}
}

// Start picks a random book title as the secret and opens a session,
// replacing any active one for the key.
func (g *Hangman) Start(ctx context.Context, sessionKey string) (*HangmanView, error) {
	book, err := g.repo.RandomAny(ctx)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrEmptyCatalog
		}
		return nil, err
	}

	secret := []rune(strings.ToUpper(book.Title))
	display := make([]rune, len(secret))
	for i, ch := range secret {
		if unicode.IsLetter(ch) {
			display[i] = maskRune
		} else {
			display[i] = ch
		}
	}

	session := &hangmanSession{
		secret:    secret,
		display:   display,
		guessed:   make(map[rune]bool),
		triesLeft: config.HangmanMaxTries,
	}
	g.sessions.Store(sessionKey, session)

	return &HangmanView{
		Masked:    maskedString(display),
		TriesLeft: session.triesLeft,
	}, nil
}

// GuessLetter resolves one letter guess. A repeated letter is reported
// distinctly and changes nothing; an invalid guess is rejected without
// touching the session.
func (g *Hangman) GuessLetter(sessionKey, letter string) (*HangmanResult, error) {
	v, ok := g.sessions.Load(sessionKey)
	if !ok {
		return nil, ErrNoActiveSession
	}
	session := v.(*hangmanSession)

	runes := []rune(strings.TrimSpace(letter))
	if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
		return nil, ErrInvalidGuess
	}
	guess := unicode.ToUpper(runes[0])

	session.mu.Lock()
	defer session.mu.Unlock()

	// The session may have been ended, or replaced by a restart, while this
	// guess waited on the lock. A stale guess must never touch the
	// replacement session.
	if cur, ok := g.sessions.Load(sessionKey); !ok || cur != v {
		return nil, ErrNoActiveSession
	}

	if session.guessed[guess] {
		return &HangmanResult{
			View:           session.view(),
			AlreadyGuessed: true,
		}, nil
	}
	session.guessed[guess] = true
	session.order = append(session.order, guess)

	hit := false
	for i, ch := range session.secret {
		if ch == guess {
			session.display[i] = guess
			hit = true
		}
	}

	if hit {
		if !strings.ContainsRune(string(session.display), maskRune) {
			// Only the session that owns the key may remove it.
			g.sessions.CompareAndDelete(sessionKey, v)
			return &HangmanResult{
				View: session.view(),
				Hit:  true,
				Won:  true,
			}, nil
		}
		return &HangmanResult{View: session.view(), Hit: true}, nil
	}

	session.triesLeft--
	if session.triesLeft <= 0 {
		g.sessions.CompareAndDelete(sessionKey, v)
		return &HangmanResult{
			View:   session.view(),
			Lost:   true,
			Secret: string(session.secret),
		}, nil
	}

	return &HangmanResult{View: session.view()}, nil
}

// GiveUp terminates a session and reveals the secret.
func (g *Hangman) GiveUp(sessionKey string) (string, bool) {
	v, ok := g.sessions.LoadAndDelete(sessionKey)
	if !ok {
		return "", false
	}
	session := v.(*hangmanSession)
	session.mu.Lock()
	defer session.mu.Unlock()
	return string(session.secret), true
}

func (s *hangmanSession) view() HangmanView {
	letters := make([]string, len(s.order))
	for i, ch := range s.order {
		letters[i] = string(ch)
	}
	return HangmanView{
		Masked:         maskedString(s.display),
		TriesLeft:      s.triesLeft,
		GuessedLetters: letters,
	}
}

func maskedString(display []rune) string {
	parts := make([]string, len(display))
	for i, ch := range display {
		parts[i] = string(ch)
	}
	return strings.Join(parts, " ")
}
