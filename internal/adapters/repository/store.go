// Package repository is the document-store adapter: event snapshots,
// restaurant upserts, and the catalog reads behind the filter
// extractor.
package repository

import (
	"context"
	"time"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
)

// UpsertStats summarizes one restaurant ingest pass.
type UpsertStats struct {
	Matched  int64
	Modified int64
	Upserted int64
}

// EventPublisher replaces the published snapshot wholesale.
type EventPublisher interface {
	// PublishSnapshot truncates the events collection, inserts the
	// given events with their debug provenance stripped, and ensures
	// the query indexes. Returns the number of inserted documents.
	PublishSnapshot(ctx context.Context, events []model.Event) (int, error)
}

// RestaurantWriter upserts scraped restaurant listings keyed by URL.
type RestaurantWriter interface {
	UpsertRestaurants(ctx context.Context, restaurants []model.Restaurant) (UpsertStats, error)
	// PurgeStale deletes records whose start precedes olderThan and
	// returns how many were removed.
	PurgeStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// CatalogReader exposes the published values the filter extractor
// aggregates over.
type CatalogReader interface {
	CountEvents(ctx context.Context) (int64, error)
	DistinctEventValues(ctx context.Context, field string) ([]string, error)
	CountRestaurants(ctx context.Context) (int64, error)
	DistinctRestaurantValues(ctx context.Context, field string) ([]string, error)
}
