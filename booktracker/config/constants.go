package config

import "time"

// Application-wide constants organized by domain

// UI and Display Constants
const (
	// Pagination
	BooksPerPage    = 10
	DefaultPageSize = 10
	MaxPageSize     = 25

	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
)

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout     = 30 * time.Second
	SearchTimeout           = 10 * time.Second
	StatsQueryTimeout       = 10 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	NetworkDialTimeout      = 5 * time.Second

	// Cache settings
	CacheExpiration = 5 * time.Minute
	CacheSize       = 1024
)

// Scraper Constants
const (
	DefaultBaseURL     = "http://books.toscrape.com/"
	DefaultUserAgent   = "BookTrackerBot/1.0"
	MaxListingPages    = 50
	RefreshInterval    = 12 * time.Hour
	HTTPTimeout        = 15 * time.Second
	RefreshCycleBudget = 30 * time.Minute
	DetailFetchWorkers = 4
)

// Game Constants
const (
	HangmanMaxTries    = 6
	HigherLowerMinPool = 2
)
