package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/games"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var HigherLower = discord.SlashCommandCreate{
	Name:        "higherlower",
	Description: "🎯 Guess whether the next book is priced higher or lower",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "start",
			Description: "Start a new chain in this channel",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "guess",
			Description: "Make a guess in the running chain",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "direction",
					Description: "Higher or lower than the current book",
					Required:    true,
					Choices: []discord.ApplicationCommandOptionChoiceString{
						{Name: "higher", Value: string(games.DirectionHigher)},
						{Name: "lower", Value: string(games.DirectionLower)},
					},
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "stop",
			Description: "End the running chain",
		},
	},
}

func HigherLowerHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		sessionKey := e.ChannelID().String()

		switch *data.SubCommandName {
		case "start":
			round, err := b.HigherLower.Start(ctx, sessionKey)
			if err != nil {
				if errors.Is(err, games.ErrInsufficientCatalog) {
					return infoEmbed(e, "🎯 Higher–Lower", "Not enough books to start a game.")
				}
				return errorEmbed(e, "Failed to start the game. Please try again later.")
			}
			return infoEmbed(e, "🎯 Higher–Lower",
				fmt.Sprintf("Is **%s** (%s) priced higher or lower than **%s**?\nGuess with `/higherlower guess`.",
					round.Current.Title, formatPrice(round.Current.CurrentPrice), round.Next.Title))

		case "guess":
			direction := games.Direction(data.String("direction"))
			result, err := b.HigherLower.Guess(ctx, sessionKey, direction)
			if err != nil {
				if errors.Is(err, games.ErrNoActiveSession) {
					return infoEmbed(e, "🎯 Higher–Lower", "No game running here. Start one with `/higherlower start`.")
				}
				return errorEmbed(e, "That guess could not be processed.")
			}
			return infoEmbed(e, "🎯 Higher–Lower", formatHLResult(result))

		case "stop":
			score, ok := b.HigherLower.End(sessionKey)
			if !ok {
				return infoEmbed(e, "🎯 Higher–Lower", "No game running here.")
			}
			return infoEmbed(e, "🎯 Higher–Lower", fmt.Sprintf("Game ended. Final score: **%d**.", score))

		default:
			return errorEmbed(e, "Unknown subcommand")
		}
	}
}

func formatHLResult(result *games.HLResult) string {
	if result.Finished {
		if result.PerfectRun {
			return fmt.Sprintf("Perfect run! You guessed all **%d** correctly!", result.Score)
		}
		if result.Correct {
			return fmt.Sprintf("**Correct!** **%s** was %s.\nFinal score: **%d**.",
				result.Revealed.Title, formatPrice(result.Revealed.CurrentPrice), result.Score)
		}
		return fmt.Sprintf("**Wrong!** **%s** was %s.\nFinal score: **%d**.",
			result.Revealed.Title, formatPrice(result.Revealed.CurrentPrice), result.Score)
	}

	return fmt.Sprintf("**Correct!** **%s** was %s. Score: **%d**\n\nNext: Is **%s** (%s) higher or lower than **%s**?",
		result.Revealed.Title, formatPrice(result.Revealed.CurrentPrice), result.Score,
		result.Round.Current.Title, formatPrice(result.Round.Current.CurrentPrice), result.Round.Next.Title)
}
