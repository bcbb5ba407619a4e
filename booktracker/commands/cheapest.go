package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Cheapest = discord.SlashCommandCreate{
	Name:        "cheapest",
	Description: "💸 Show the single cheapest book",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "genre",
			Description: "Limit to one genre",
			Required:    false,
		},
	},
}

func CheapestHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		genre := strings.TrimSpace(e.SlashCommandInteractionData().String("genre"))

		book, err := b.BookRepository.Cheapest(ctx, genre)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return infoEmbed(e, "💸 Cheapest Book", "No matching book found.")
			}
			return errorEmbed(e, "Failed to look up the cheapest book. Please try again later.")
		}

		title := "💸 Cheapest Book"
		if genre != "" {
			title += " in " + genre
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{bookEmbed(title, book)},
		})
	}
}
