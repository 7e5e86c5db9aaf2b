// Package config defines job configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load(ctx) layers
//   file and environment on top.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration for the ingestion jobs.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MongoURI is the document-store connection string. Empty means the
	// publishers run dry: samples are printed and nothing is written.
	MongoURI string `koanf:"mongo_uri"`

	// Database and collection names.
	Database              string `koanf:"database"`
	EventsCollection      string `koanf:"events_collection"`
	RestaurantsCollection string `koanf:"restaurants_collection"`

	// TicketmasterAPIKey enables the ticketing adapter; absent or
	// placeholder keys degrade that adapter to an empty result.
	TicketmasterAPIKey string `koanf:"ticketmaster_api_key"`

	// Webhook collaborator surface. Recognized so one env file serves
	// the whole deployment; the ingestion jobs never read them.
	Token           string `koanf:"token"`
	GeminiAPIKey    string `koanf:"gemini_api_key"`
	PageAccessToken string `koanf:"page_access_token"`

	// Upstream endpoints, overridable for tests and mirrors.
	PermittedURL    string `koanf:"permitted_url"`
	ParksURL        string `koanf:"parks_url"`
	MarketplaceURL  string `koanf:"marketplace_url"`
	TicketmasterURL string `koanf:"ticketmaster_url"`

	// DataDir receives the extractor's JSON artifacts.
	DataDir string `koanf:"data_dir"`

	// MetricsAddr, when set, serves Prometheus metrics on this address
	// for long-running invocations.
	MetricsAddr string `koanf:"metrics_addr"`

	// RunInterval repeats the job on a ticker when positive; zero means
	// run once and exit, which is what cron wants.
	RunInterval time.Duration `koanf:"run_interval"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Database:              "goodrec",
		EventsCollection:      "events",
		RestaurantsCollection: "restaurants",
		PermittedURL:          "https://data.cityofnewyork.us/resource/tvpp-9vvx.json",
		ParksURL:              "https://www.nycgovparks.org/xml/events_300_rss.json",
		MarketplaceURL:        "https://www.eventbrite.com/d/ny--new-york/events/",
		TicketmasterURL:       "https://app.ticketmaster.com/discovery/v2/events.json",
		DataDir:               "data",
	}
}
