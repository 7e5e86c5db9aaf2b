package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/pkg/logger"
	"github.com/goodrec/nyc-ingest/pkg/metrics"
)

// RunRestaurants executes one enrichment pass: deep-crawl the marketplace
// listings, upsert them by URL, then purge rows whose event start fell
// behind the retention horizon. An empty crawl upserts and purges
// nothing; the collection is left exactly as the previous run wrote it.
func (s *Service) RunRestaurants(ctx context.Context) error {
	runID := uuid.NewString()
	started := s.now()
	log := s.log.Named("restaurants")
	defer func() {
		metrics.RecordRunDuration(s.now().Sub(started))
	}()

	log.Info(ctx, "restaurant ingestion starting", logger.String("run_id", runID))

	if s.listings == nil {
		metrics.RecordRun("error")
		return errors.New("no listing fetcher configured")
	}

	fetchStart := time.Now()
	records, err := s.listings.FetchListings(ctx)
	metrics.RecordSourceFetchDuration("marketplace_backfill", time.Since(fetchStart).Seconds())
	if err != nil {
		metrics.RecordErrorByComponent("source.marketplace", "backfill")
		metrics.RecordRun("error")
		return fmt.Errorf("fetch listings: %w", err)
	}
	if len(records) == 0 {
		log.Warn(ctx, "no listings scraped; leaving collection untouched",
			logger.String("run_id", runID))
		metrics.RecordRun("ok")
		return nil
	}

	if s.writer == nil {
		s.logListingSample(ctx, log, records)
		metrics.RecordRun("dry_run")
		return nil
	}

	stats, err := s.writer.UpsertRestaurants(ctx, records)
	if err != nil {
		metrics.RecordErrorByComponent("restaurants", "upsert")
		metrics.RecordRun("error")
		return fmt.Errorf("upsert restaurants: %w", err)
	}
	metrics.RecordRestaurantsUpserted(int(stats.Upserted))
	metrics.RecordRestaurantsModified(int(stats.Modified))

	purged, err := s.writer.PurgeStale(ctx, s.now().Add(-s.retention))
	if err != nil {
		metrics.RecordErrorByComponent("restaurants", "purge")
		metrics.RecordRun("error")
		return fmt.Errorf("purge restaurants: %w", err)
	}
	metrics.RecordRestaurantsPurged(int(purged))
	metrics.RecordRun("ok")

	log.Info(ctx, "restaurant ingestion finished",
		logger.String("run_id", runID),
		logger.Int("scraped", len(records)),
		logger.Any("upserted", stats.Upserted),
		logger.Any("modified", stats.Modified),
		logger.Any("purged", purged),
		logger.Duration("took", s.now().Sub(started)))
	return nil
}

// logListingSample prints what would have been upserted.
func (s *Service) logListingSample(ctx context.Context, log logger.Logger, records []model.Restaurant) {
	n := s.sampleSize
	if n > len(records) {
		n = len(records)
	}
	log.Info(ctx, "dry run: no document store configured",
		logger.Int("restaurants", len(records)),
		logger.Int("sampled", n))
	for _, r := range records[:n] {
		log.Info(ctx, "sample restaurant",
			logger.String("url", r.URL),
			logger.String("name", r.Name),
			logger.String("venue", r.Venue),
			logger.String("price", r.Price))
	}
}
