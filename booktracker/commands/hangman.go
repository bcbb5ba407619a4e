package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/games"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Hangman = discord.SlashCommandCreate{
	Name:        "hangman",
	Description: "🪢 Hangman with a book title",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "start",
			Description: "Start a new game in this channel",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "guess",
			Description: "Guess a letter",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "letter",
					Description: "A single letter",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "giveup",
			Description: "Give up and reveal the title",
		},
	},
}

func HangmanHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		sessionKey := e.ChannelID().String()

		switch *data.SubCommandName {
		case "start":
			view, err := b.Hangman.Start(ctx, sessionKey)
			if err != nil {
				if errors.Is(err, games.ErrEmptyCatalog) {
					return infoEmbed(e, "🪢 Hangman", "No books available for Hangman.")
				}
				return errorEmbed(e, "Failed to start the game. Please try again later.")
			}
			return infoEmbed(e, "🪢 Hangman", formatHangmanView(view, ""))

		case "guess":
			letter := data.String("letter")
			result, err := b.Hangman.GuessLetter(sessionKey, letter)
			if err != nil {
				switch {
				case errors.Is(err, games.ErrNoActiveSession):
					return infoEmbed(e, "🪢 Hangman", "No game running here. Start one with `/hangman start`.")
				case errors.Is(err, games.ErrInvalidGuess):
					return infoEmbed(e, "🪢 Hangman", "Guess a single letter A–Z.")
				default:
					return errorEmbed(e, "That guess could not be processed.")
				}
			}
			return infoEmbed(e, "🪢 Hangman", formatHangmanResult(result, letter))

		case "giveup":
			secret, ok := b.Hangman.GiveUp(sessionKey)
			if !ok {
				return infoEmbed(e, "🪢 Hangman", "No game running here.")
			}
			return infoEmbed(e, "🪢 Hangman", fmt.Sprintf("Game over — the title was `%s`.", secret))

		default:
			return errorEmbed(e, "Unknown subcommand")
		}
	}
}

func formatHangmanView(view *games.HangmanView, note string) string {
	var sb strings.Builder
	if note != "" {
		sb.WriteString(note + "\n")
	}
	sb.WriteString(fmt.Sprintf("`%s` — Tries left: **%d**", view.Masked, view.TriesLeft))
	if len(view.GuessedLetters) > 0 {
		sb.WriteString("\nGuessed: " + strings.Join(view.GuessedLetters, " "))
	}
	return sb.String()
}

func formatHangmanResult(result *games.HangmanResult, letter string) string {
	upper := strings.ToUpper(strings.TrimSpace(letter))

	switch {
	case result.AlreadyGuessed:
		return formatHangmanView(&result.View, fmt.Sprintf("You already tried **%s**.", upper))
	case result.Won:
		return fmt.Sprintf("You win: `%s`", result.View.Masked)
	case result.Lost:
		return fmt.Sprintf("Game over — the title was `%s`.", result.Secret)
	case result.Hit:
		return formatHangmanView(&result.View, fmt.Sprintf("**%s** is in the title!", upper))
	default:
		return formatHangmanView(&result.View, fmt.Sprintf("No **%s** in the title.", upper))
	}
}
