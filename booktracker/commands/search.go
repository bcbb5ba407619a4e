package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/sahilm/fuzzy"
)

var Search = discord.SlashCommandCreate{
	Name:        "search",
	Description: "🔍 Search the book catalog",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "title",
			Description:  "Match against book titles",
			Required:     false,
			Autocomplete: true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "genre",
			Description: "Filter by genre",
			Required:    false,
		},
		discord.ApplicationCommandOptionFloat{
			Name:        "max-price",
			Description: "Only books at or below this price",
			Required:    false,
			MinValue:    floatPtr(0),
		},
		discord.ApplicationCommandOptionInt{
			Name:        "min-rating",
			Description: "Only books rated at least this many stars",
			Required:    false,
			MinValue:    intPtr(1),
			MaxValue:    intPtr(5),
		},
		discord.ApplicationCommandOptionBool{
			Name:        "in-stock",
			Description: "Only books currently in stock",
			Required:    false,
		},
	},
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func SearchHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.SearchTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		filters := repositories.SearchFilters{
			Title:       strings.TrimSpace(data.String("title")),
			Genre:       strings.TrimSpace(data.String("genre")),
			InStockOnly: data.Bool("in-stock"),
		}
		if maxPrice, ok := data.OptFloat("max-price"); ok {
			filters.MaxPrice = maxPrice
		}
		if minRating, ok := data.OptInt("min-rating"); ok {
			filters.MinRating = minRating
		}

		books, total, err := b.BookRepository.Search(ctx, filters, 0, 0)
		if err != nil {
			return errorEmbed(e, "Search failed. Please try again later.")
		}
		if total == 0 {
			return infoEmbed(e, "🔍 Search", "No books match your criteria.")
		}

		totalPages := int(math.Ceil(float64(total) / float64(config.BooksPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * config.BooksPerPage
				endIdx := min(startIdx+config.BooksPerPage, len(books))

				var description strings.Builder
				for _, book := range books[startIdx:endIdx] {
					description.WriteString(bookLine(book) + "\n")
				}

				embed.
					SetTitle("🔍 Search Results").
					SetDescription(description.String()).
					SetColor(config.InfoColor).
					SetFooter(fmt.Sprintf("Results %d–%d of %d", startIdx+1, endIdx, total), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

// SearchAutocompleteHandler suggests titles as the user types, fuzzy-matched
// against the in-stock pool.
func SearchAutocompleteHandler(b *booktracker.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "title" {
			return nil
		}

		query := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			query = strings.TrimSpace(s)
		}
		if query == "" {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.SearchTimeout)
		defer cancel()

		books, err := b.BookRepository.InStock(ctx)
		if err != nil {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		titles := make([]string, len(books))
		for i, book := range books {
			titles[i] = book.Title
		}

		matches := fuzzy.Find(query, titles)
		choices := make([]discord.AutocompleteChoice, 0, min(len(matches), 25))
		for _, m := range matches {
			if len(choices) == 25 {
				break
			}
			title := titles[m.Index]
			if len(title) > 100 {
				title = title[:100]
			}
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  title,
				Value: title,
			})
		}

		return e.AutocompleteResult(choices)
	}
}
