package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

const historyEntries = 12

var PriceHistory = discord.SlashCommandCreate{
	Name:        "pricehistory",
	Description: "📈 Recorded price observations for one book",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "title",
			Description:  "The book to look up",
			Required:     true,
			Autocomplete: true,
		},
	},
}

func PriceHistoryHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.SearchTimeout)
		defer cancel()

		title := strings.TrimSpace(e.SlashCommandInteractionData().String("title"))

		books, _, err := b.BookRepository.Search(ctx, repositories.SearchFilters{Title: title}, 0, 1)
		if err != nil {
			return errorEmbed(e, "Lookup failed. Please try again later.")
		}
		if len(books) == 0 {
			return infoEmbed(e, "📈 Price History", fmt.Sprintf("No book matching `%s`.", title))
		}
		book := books[0]

		observations, err := b.BookRepository.PriceHistory(ctx, book.URL, historyEntries)
		if err != nil {
			return errorEmbed(e, "Failed to load the price history. Please try again later.")
		}
		if len(observations) == 0 {
			return infoEmbed(e, "📈 Price History", "No observations recorded yet.")
		}

		var description strings.Builder
		description.WriteString(fmt.Sprintf("**%s** — currently %s %s\n\n",
			book.Title, formatPrice(book.CurrentPrice), formatPriceChange(book)))
		for _, obs := range observations {
			description.WriteString(fmt.Sprintf("`%s` %s\n",
				obs.ObservedAt.UTC().Format("2006-01-02 15:04"), formatPrice(obs.Price)))
		}

		return infoEmbed(e, "📈 Price History", description.String())
	}
}
