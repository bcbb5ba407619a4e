package commands

import (
	"context"
	"fmt"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Info = discord.SlashCommandCreate{
	Name:        "info",
	Description: "ℹ️ What this bot does and what it knows",
}

func InfoHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		total, err := b.BookRepository.Count(ctx)
		if err != nil {
			return errorEmbed(e, "Failed to fetch catalog info. Please try again later.")
		}

		description := fmt.Sprintf(
			"Tracks book prices from %s and refreshes every %s.\n\n"+
				"Books tracked: **%d**\n\n"+
				"Commands: `/search`, `/cheapest`, `/bookoftheday`, `/randombook`, "+
				"`/pricehistory`, `/stats`, `/higherlower`, `/hangman`",
			b.Cfg.Scraper.BaseURL, b.Cfg.Scraper.Interval(), total)

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "ℹ️ BookTracker",
				Description: description,
				Color:       config.InfoColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Version %s (%s)", b.Version, b.Commit),
				},
			}},
		})
	}
}
