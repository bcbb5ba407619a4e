package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"
)

var Refresh = discord.SlashCommandCreate{
	Name:                     "refresh",
	Description:              "🔄 Force a catalog refresh cycle now",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
}

func RefreshHandler(b *booktracker.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		// The cycle outlives the interaction timeout, so it runs detached
		// and edits the deferred response when done.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), config.RefreshCycleBudget)
			defer cancel()

			summary, err := b.Refresher.RunCycle(ctx)

			var embed discord.Embed
			if err != nil {
				embed = discord.Embed{
					Title:       "🔄 Refresh",
					Description: "Refresh cycle failed: " + err.Error(),
					Color:       config.ErrorColor,
				}
			} else {
				embed = discord.Embed{
					Title: "🔄 Refresh",
					Description: fmt.Sprintf(
						"Cycle finished in %s.\nCandidates: **%d** | Updated: **%d** | New: **%d**\nFetch failures: **%d** | Item failures: **%d**",
						summary.Took.Round(time.Second),
						summary.CandidateURLs, summary.Updated, summary.Created,
						summary.FetchFailures, summary.ItemFailures),
					Color: config.SuccessColor,
				}
			}

			_, _ = e.Client().Rest().UpdateInteractionResponse(e.ApplicationID(), e.Token(), discord.MessageUpdate{
				Embeds: &[]discord.Embed{embed},
			})
		}()

		return nil
	}
}
