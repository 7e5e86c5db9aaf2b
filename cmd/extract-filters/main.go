// Command extract-filters builds the frontend filter artifacts: the
// category catalog and keyword list derived from the stored events,
// the restaurant filter facets, and the upstream facet vocabularies.
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
		os.Stderr.WriteString("extract-filters: " + err.Error() + "\n")
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
		service.WithFacetFetcher(source.NewFacets(cfg.PermittedURL, cfg.ParksURL)),
		service.WithDataDir(cfg.DataDir),
		service.WithLogger(log),
	}

	// Without a document store only the upstream facet artifact can be
	// produced; the collection-derived artifacts are skipped.
	if cfg.MongoURI != "" {
		store, err := repository.Connect(ctx, cfg.MongoURI,
			repository.WithDatabase(cfg.Database),
			repository.WithEventsCollection(cfg.EventsCollection),
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
		opts = append(opts, service.WithCatalogReader(store))
	}

	// Long-running deployments expose liveness and metrics.
	if cfg.MetricsAddr != "" {
		go func() {
			if err := ops.NewServer("extract-filters").Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error(ctx, "ops server failed", logger.Error(err))
			}
		}()
	}

	svc := service.New(opts...)
	return service.RunPeriodically(ctx, cfg.RunInterval, svc.RunExtract)
}
