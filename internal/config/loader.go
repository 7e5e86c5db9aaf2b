package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// placeholderPattern matches unfilled template values like
// "YOUR_API_KEY_HERE" that ship in example env files. They are treated
// as absent so the jobs degrade instead of sending them upstream.
var placeholderPattern = regexp.MustCompile(`^YOUR_[A-Z0-9_]*_?HERE$`)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GOODREC_CONFIG is set
//  3. env (prefix GOODREC_)
//  4. the fixed legacy names (MONGO_URI et al.) the deployment exports
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("GOODREC_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: GOODREC_LOG_LEVEL, GOODREC_MONGO_URI, ...
	// Map env keys like GOODREC_LOG_LEVEL -> log_level (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("GOODREC_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "goodrec_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// The deployment exports these under fixed names shared with the
	// webhook collaborator; they win over everything else.
	if v := firstEnv("MONGO_URI", "MONGODB_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("TICKETMASTER_API_KEY"); v != "" {
		cfg.TicketmasterAPIKey = v
	}
	if v := os.Getenv("TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("PAGE_ACCESS_TOKEN"); v != "" {
		cfg.PageAccessToken = v
	}

	cfg.scrubPlaceholders()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// firstEnv returns the first non-empty value among the named variables.
func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// scrubPlaceholders blanks credential fields still holding template
// values.
func (c *Config) scrubPlaceholders() {
	for _, f := range []*string{
		&c.MongoURI,
		&c.TicketmasterAPIKey,
		&c.Token,
		&c.GeminiAPIKey,
		&c.PageAccessToken,
	} {
		if placeholderPattern.MatchString(strings.TrimSpace(*f)) {
			*f = ""
		}
	}
}

// validate rejects configurations no job could run with.
func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Database == "" {
		return fmt.Errorf("%w: database must not be empty", ErrInvalidConfig)
	}
	if c.EventsCollection == "" {
		return fmt.Errorf("%w: events_collection must not be empty", ErrInvalidConfig)
	}
	if c.RestaurantsCollection == "" {
		return fmt.Errorf("%w: restaurants_collection must not be empty", ErrInvalidConfig)
	}
	for name, u := range map[string]string{
		"permitted_url":    c.PermittedURL,
		"parks_url":        c.ParksURL,
		"marketplace_url":  c.MarketplaceURL,
		"ticketmaster_url": c.TicketmasterURL,
	} {
		if u == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, name)
		}
	}
	if c.RunInterval < 0 {
		return fmt.Errorf("%w: run_interval must not be negative", ErrInvalidConfig)
	}
	return nil
}
