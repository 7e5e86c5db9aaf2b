// Command ingest-restaurants runs the restaurant enrichment job:
// crawl the marketplace listing pages, upsert the records into the
// restaurants collection, and purge entries past retention.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodrec/nyc-ingest/internal/adapters/http/ops"
	"github.com/goodrec/nyc-ingest/internal/adapters/repository"
	"github.com/goodrec/nyc-ingest/internal/adapters/source"
	service "github.com/goodrec/nyc-ingest/internal/app"
	"github.com/goodrec/nyc-ingest/internal/config"
	"github.com/goodrec/nyc-ingest/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		// The logger may not be up when run fails this early, so report
		// on stderr and exit non-zero for cron.
		os.Stderr.WriteString("ingest-restaurants: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Initialize logging
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := []service.Option{
		service.WithListingFetcher(source.NewMarketplace(source.WithBaseURL(cfg.MarketplaceURL))),
		service.WithLogger(log),
	}

	// Without a document store the job runs dry: crawl and log a sample
	// instead of upserting.
	if cfg.MongoURI != "" {
		store, err := repository.Connect(ctx, cfg.MongoURI,
			repository.WithDatabase(cfg.Database),
			repository.WithRestaurantsCollection(cfg.RestaurantsCollection),
		)
		if err != nil {
			return fmt.Errorf("connect document store: %w", err)
		}
		defer func() {
			if err := store.Close(context.Background()); err != nil {
				log.Warn(ctx, "document store close failed", logger.Error(err))
			}
		}()
		opts = append(opts, service.WithRestaurantWriter(store))
	}

	// Long-running deployments expose liveness and metrics.
	if cfg.MetricsAddr != "" {
		go func() {
			if err := ops.NewServer("ingest-restaurants").Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error(ctx, "ops server failed", logger.Error(err))
			}
		}()
	}

	svc := service.New(opts...)
	return service.RunPeriodically(ctx, cfg.RunInterval, svc.RunRestaurants)
}
