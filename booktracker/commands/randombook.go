package commands

import (
	"context"
	"errors"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var RandomBook = discord.SlashCommandCreate{
	Name:        "randombook",
	Description: "🎲 A fresh random in-stock book",
}

func RandomBookHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		book, err := b.BookRepository.RandomInStock(ctx, "")
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return infoEmbed(e, "🎲 Random Book", "No in-stock books to choose from.")
			}
			return errorEmbed(e, "Failed to pick a random book. Please try again later.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{bookEmbed("🎲 Random Book", book)},
		})
	}
}
