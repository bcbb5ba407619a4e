package booktracker

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/database"
	"github.com/booktrackerbot/booktracker/booktracker/migration"
	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.Scraper.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Bot     BotConfig         `toml:"bot"`
	DB      database.DBConfig `toml:"db"`
	Scraper ScraperConfig     `toml:"scraper"`
	Spaces  SpacesConfig      `toml:"spaces"`
	Legacy  migration.Config  `toml:"legacy_mongo"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type ScraperConfig struct {
	BaseURL         string `toml:"base_url"`
	UserAgent       string `toml:"user_agent"`
	MaxPages        int    `toml:"max_pages"`
	IntervalHours   int    `toml:"interval_hours"`
	DetailWorkers   int    `toml:"detail_workers"`
	SkipInitialRun  bool   `toml:"skip_initial_run"`
}

type SpacesConfig struct {
	Key       string `toml:"key"`
	Secret    string `toml:"secret"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	CoverRoot string `toml:"cover_root"`
}

func (c *ScraperConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = config.DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = config.DefaultUserAgent
	}
	if c.MaxPages <= 0 || c.MaxPages > config.MaxListingPages {
		c.MaxPages = config.MaxListingPages
	}
	if c.DetailWorkers <= 0 {
		c.DetailWorkers = config.DetailFetchWorkers
	}
}

// Interval returns the refresh interval, falling back to the 12h policy
// default.
func (c *ScraperConfig) Interval() time.Duration {
	if c.IntervalHours > 0 {
		return time.Duration(c.IntervalHours) * time.Hour
	}
	return config.RefreshInterval
}

// Enabled reports whether cover mirroring is configured.
func (c *SpacesConfig) Enabled() bool {
	return c.Key != "" && c.Secret != "" && c.Bucket != ""
}
