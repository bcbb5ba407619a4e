package commands

import (
	"fmt"
	"strings"

	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database/models"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Commands = []discord.ApplicationCommandCreate{
	Search,
	Cheapest,
	BookOfTheDay,
	RandomBook,
	PriceHistory,
	Stats,
	HigherLower,
	Hangman,
	Refresh,
	Info,
	Version,
}

func errorEmbed(e *handler.CommandEvent, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "❌ Error",
			Description: description,
			Color:       config.ErrorColor,
		}},
	})
}

func infoEmbed(e *handler.CommandEvent, title, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       title,
			Description: description,
			Color:       config.InfoColor,
		}},
	})
}

func formatPrice(price float64) string {
	return fmt.Sprintf("£%.2f", price)
}

func formatRating(rating int) string {
	if rating <= 0 {
		return "unrated"
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func formatAvailability(availability string) string {
	switch availability {
	case models.AvailabilityInStock:
		return "In stock"
	case models.AvailabilityOutOfStock:
		return "Out of stock"
	default:
		return "Availability unknown"
	}
}

func formatPriceChange(book *models.Book) string {
	if !book.PriceChange.Valid {
		return "—"
	}
	change := book.PriceChange.Float64
	switch {
	case change > 0:
		return fmt.Sprintf("▲ +£%.2f", change)
	case change < 0:
		return fmt.Sprintf("▼ -£%.2f", -change)
	default:
		return "·"
	}
}

// bookEmbed renders one book as a full embed, used by the single-book
// commands.
func bookEmbed(title string, book *models.Book) discord.Embed {
	description := fmt.Sprintf("**%s** — %s\nGenre: %s | %s | %s\n%s",
		book.Title,
		formatPrice(book.CurrentPrice),
		book.Genre,
		formatRating(book.Rating),
		formatAvailability(book.Availability),
		book.URL,
	)

	embed := discord.Embed{
		Title:       title,
		Description: description,
		Color:       config.InfoColor,
	}
	if book.CoverURL != "" {
		embed.Thumbnail = &discord.EmbedResource{URL: book.CoverURL}
	}
	return embed
}

// bookLine renders one book as a list row, used by the paginated commands.
func bookLine(book *models.Book) string {
	return fmt.Sprintf("**%s** — %s\nGenre: %s | %s | %s\n<%s>\n",
		book.Title,
		formatPrice(book.CurrentPrice),
		book.Genre,
		formatRating(book.Rating),
		formatAvailability(book.Availability),
		book.URL,
	)
}
