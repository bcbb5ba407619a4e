package commands

import (
	"context"
	"errors"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var BookOfTheDay = discord.SlashCommandCreate{
	Name:        "bookoftheday",
	Description: "📖 Today's featured book, same for everyone",
}

func BookOfTheDayHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		book, err := b.BookOfTheDay.Today(ctx)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return infoEmbed(e, "📖 Book of the Day", "No in-stock books available today.")
			}
			return errorEmbed(e, "Failed to fetch the book of the day. Please try again later.")
		}

		today := time.Now().UTC().Format("2006-01-02")
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{bookEmbed("📖 Book of the Day ("+today+")", book)},
		})
	}
}
