package commands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
)

var Stats = discord.SlashCommandCreate{
	Name:        "stats",
	Description: "📊 Price overview of the whole catalog, cheapest first",
}

func StatsHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.StatsQueryTimeout)
		defer cancel()

		total, err := b.BookRepository.Count(ctx)
		if err != nil {
			return errorEmbed(e, "Failed to fetch catalog stats. Please try again later.")
		}
		if total == 0 {
			return infoEmbed(e, "📊 Stats", "The catalog is empty. Try again after the next refresh.")
		}

		totalPages := int(math.Ceil(float64(total) / float64(config.BooksPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				ctx, cancel := context.WithTimeout(context.Background(), config.StatsQueryTimeout)
				defer cancel()

				offset := page * config.BooksPerPage
				books, err := b.BookRepository.Page(ctx, offset, config.BooksPerPage)
				if err != nil {
					embed.
						SetTitle("📊 Stats").
						SetDescription("Failed to load this page.").
						SetColor(config.ErrorColor)
					return
				}

				var description strings.Builder
				for _, book := range books {
					description.WriteString(fmt.Sprintf("**%s** — %s | %s | %s | %s\n",
						book.Title,
						formatPrice(book.CurrentPrice),
						formatPriceChange(book),
						book.Genre,
						formatAvailability(book.Availability),
					))
				}

				embed.
					SetTitle("📊 Stats").
					SetDescription(description.String()).
					SetColor(config.InfoColor).
					SetFooter(fmt.Sprintf("Showing %d–%d of %d", offset+1, offset+len(books), total), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
