package booktracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/database"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/booktrackerbot/booktracker/booktracker/games"
	"github.com/booktrackerbot/booktracker/booktracker/services"
	"github.com/booktrackerbot/booktracker/booktracker/tracker"
	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg            Config
	Client         bot.Client
	Paginator      *paginator.Manager
	Version        string
	Commit         string
	DB             *database.DB
	BookRepository repositories.BookRepository
	Refresher      *tracker.Refresher
	Scheduler      *tracker.Scheduler
	HigherLower    *games.HigherLower
	Hangman        *games.Hangman
	BookOfTheDay   *services.BookOfTheDay
	CoverService   *services.CoverService
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("BookTracker Bot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("book prices"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
