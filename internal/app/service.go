// Package service wires the ingestion jobs end to end: event snapshot
// ingestion, restaurant enrichment, and filter extraction. Each job is a
// method on Service; the cmd binaries construct one Service with the
// adapters and stores they need.
package service

import (
	"context"
	"time"

	"github.com/goodrec/nyc-ingest/internal/adapters/repository"
	"github.com/goodrec/nyc-ingest/internal/adapters/source"
	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/pkg/logger"
)

// Job defaults.
const (
	defaultSampleSize = 3
	defaultDataDir    = "data"
	defaultRetention  = 21 * 24 * time.Hour
)

// ListingFetcher supplies scraped restaurant listings for the
// enrichment job.
type ListingFetcher interface {
	FetchListings(ctx context.Context) ([]model.Restaurant, error)
}

// FacetFetcher supplies upstream facet vocabularies for the extractor.
type FacetFetcher interface {
	Fetch(ctx context.Context) (source.FacetVocabularies, error)
}

// Service runs the ingestion jobs. Stores are optional: a Service without
// a publisher or writer runs dry, logging samples instead of writing, so
// local runs never need a database.
type Service struct {
	sources    []source.Source
	listings   ListingFetcher
	publisher  repository.EventPublisher
	writer     repository.RestaurantWriter
	reader     repository.CatalogReader
	facets     FacetFetcher
	dataDir    string
	sampleSize int
	retention  time.Duration
	now        func() time.Time
	log        logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSources sets the event source registry. Order matters: it is the
// aggregation order, and earlier sources win dedup collisions.
func WithSources(sources []source.Source) Option {
	return func(s *Service) {
		s.sources = sources
	}
}

// WithListingFetcher sets the restaurant listing scraper.
func WithListingFetcher(f ListingFetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.listings = f
		}
	}
}

// WithEventPublisher sets the snapshot store. Nil leaves the event job in
// dry-run mode.
func WithEventPublisher(p repository.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithRestaurantWriter sets the restaurant store. Nil leaves the
// restaurant job in dry-run mode.
func WithRestaurantWriter(w repository.RestaurantWriter) Option {
	return func(s *Service) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithCatalogReader sets the store the extractor reads.
func WithCatalogReader(r repository.CatalogReader) Option {
	return func(s *Service) {
		if r != nil {
			s.reader = r
		}
	}
}

// WithFacetFetcher sets the upstream facet vocabulary fetcher.
func WithFacetFetcher(f FacetFetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.facets = f
		}
	}
}

// WithDataDir sets the directory receiving the extractor artifacts.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithSampleSize sets how many records dry runs log.
func WithSampleSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithRetention sets how long restaurant rows outlive their event start.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:    defaultDataDir,
		sampleSize: defaultSampleSize,
		retention:  defaultRetention,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Get().Named("service")
	}
	return s
}

// RunPeriodically invokes run immediately and then on every tick until
// the context ends. A non-positive interval means run once: that is what
// cron wants. The first run's error propagates so misconfiguration fails
// fast; later failures only log, and the schedule keeps going.
func RunPeriodically(ctx context.Context, interval time.Duration, run func(context.Context) error) error {
	if err := run(ctx); err != nil {
		return err
	}
	if interval <= 0 {
		return nil
	}

	log := logger.Get().Named("schedule")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := run(ctx); err != nil {
				log.Error(ctx, "scheduled run failed", logger.Error(err))
			}
		}
	}
}
