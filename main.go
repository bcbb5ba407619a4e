package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker"
	"github.com/booktrackerbot/booktracker/booktracker/commands"
	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database"
	"github.com/booktrackerbot/booktracker/booktracker/database/repositories"
	"github.com/booktrackerbot/booktracker/booktracker/games"
	"github.com/booktrackerbot/booktracker/booktracker/handlers"
	"github.com/booktrackerbot/booktracker/booktracker/logger"
	"github.com/booktrackerbot/booktracker/booktracker/migration"
	"github.com/booktrackerbot/booktracker/booktracker/scraper"
	"github.com/booktrackerbot/booktracker/booktracker/services"
	"github.com/booktrackerbot/booktracker/booktracker/tracker"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting BookTracker Discord Bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	shouldImportLegacy := flag.Bool("import-legacy", false, "Import the legacy MongoDB catalog and exit")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := booktracker.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	logger.LogSystem("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	if err := db.Ping(ctx); err != nil {
		slog.Error("Database ping failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	logger.LogSystem("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	defer db.Close()

	if *shouldImportLegacy {
		importCtx, importCancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer importCancel()

		if _, err := migration.NewMigrator(db.BunDB(), cfg.Legacy).Run(importCtx); err != nil {
			slog.Error("Legacy import failed", slog.Any("error", err))
			os.Exit(-1)
		}
		return
	}

	b := booktracker.New(*cfg, version, commit)
	b.DB = db
	b.BookRepository = repositories.NewBookRepository(db.BunDB())

	if cfg.Spaces.Enabled() {
		b.CoverService = services.NewCoverService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.CoverRoot,
		)
		slog.Info("Cover mirroring enabled",
			slog.String("bucket", cfg.Spaces.Bucket),
			slog.String("region", cfg.Spaces.Region))
	}

	fetcher := scraper.NewFetcher(cfg.Scraper.BaseURL, cfg.Scraper.UserAgent, config.HTTPTimeout)
	b.Refresher = tracker.NewRefresher(fetcher, b.BookRepository, b.CoverService, cfg.Scraper.MaxPages, cfg.Scraper.DetailWorkers)
	b.Scheduler = tracker.NewScheduler(b.Refresher, cfg.Scraper.Interval(), config.RefreshCycleBudget, !cfg.Scraper.SkipInitialRun)

	b.HigherLower = games.NewHigherLower(b.BookRepository)
	b.Hangman = games.NewHangman(b.BookRepository)
	b.BookOfTheDay = services.NewBookOfTheDay(b.BookRepository)

	h := handler.New()

	// System commands
	h.Command("/version", commands.VersionHandler(b))
	h.Command("/info", commands.InfoHandler(b))
	h.Command("/refresh", handlers.WrapWithLogging("refresh", commands.RefreshHandler(b)))

	// Catalog commands
	h.Command("/search", handlers.WrapWithLogging("search", commands.SearchHandler(b)))
	h.Autocomplete("/search", commands.SearchAutocompleteHandler(b))
	h.Command("/cheapest", handlers.WrapWithLogging("cheapest", commands.CheapestHandler(b)))
	h.Command("/bookoftheday", handlers.WrapWithLogging("bookoftheday", commands.BookOfTheDayHandler(b)))
	h.Command("/randombook", handlers.WrapWithLogging("randombook", commands.RandomBookHandler(b)))
	h.Command("/pricehistory", handlers.WrapWithLogging("pricehistory", commands.PriceHistoryHandler(b)))
	h.Autocomplete("/pricehistory", commands.SearchAutocompleteHandler(b))
	h.Command("/stats", handlers.WrapWithLogging("stats", commands.StatsHandler(b)))

	// Game commands
	h.Command("/higherlower", handlers.WrapWithLogging("higherlower", commands.HigherLowerHandler(b)))
	h.Command("/hangman", handlers.WrapWithLogging("hangman", commands.HangmanHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("error_details", fmt.Sprintf("%+v", err)),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	b.Scheduler.Start()
	defer b.Scheduler.Stop()

	logger.LogSystem("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	logger.LogSystem("Shutting down bot...")
}
