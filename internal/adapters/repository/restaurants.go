package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/pkg/logger"
)

// UpsertRestaurants writes each record keyed by URL. Existing rows are
// refreshed in place, new rows are inserted, and records without a URL are
// skipped. Unlike the event snapshot this is incremental: rows from earlier
// runs survive until PurgeStale removes them.
func (m *Mongo) UpsertRestaurants(ctx context.Context, restaurants []model.Restaurant) (UpsertStats, error) {
	var stats UpsertStats
	coll := m.restaurantsCollection()
	now := time.Now().UTC()

	for _, r := range restaurants {
		if r.URL == "" {
			continue
		}
		update, err := restaurantUpdate(r, now)
		if err != nil {
			return stats, fmt.Errorf("encode restaurant %s: %w", r.URL, err)
		}
		res, err := coll.UpdateOne(ctx, bson.M{"url": r.URL}, update, options.Update().SetUpsert(true))
		if err != nil {
			return stats, fmt.Errorf("upsert restaurant %s: %w", r.URL, err)
		}
		stats.Matched += res.MatchedCount
		stats.Modified += res.ModifiedCount
		stats.Upserted += res.UpsertedCount
	}

	if err := m.ensureRestaurantIndexes(ctx); err != nil {
		m.log.Warn(ctx, "restaurant index ensure failed", logger.Error(err))
	}

	m.log.Info(ctx, "upserted restaurants",
		logger.Int("total", len(restaurants)),
		logger.Any("matched", stats.Matched),
		logger.Any("modified", stats.Modified),
		logger.Any("upserted", stats.Upserted))
	return stats, nil
}

// restaurantUpdate builds the upsert document for one record. Every current
// field lands in $set together with a fresh scrapedAt; createdAt goes in
// $setOnInsert only, so repeat runs never overwrite the original insert time.
func restaurantUpdate(r model.Restaurant, now time.Time) (bson.M, error) {
	raw, err := bson.Marshal(r)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "createdAt")
	doc["scrapedAt"] = now
	if r.Source == "" {
		doc["source"] = model.RestaurantSource
	}
	return bson.M{
		"$set":         doc,
		"$setOnInsert": bson.M{"createdAt": now},
	}, nil
}

// PurgeStale deletes rows whose event start is before the cutoff and
// returns how many were removed.
func (m *Mongo) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := m.restaurantsCollection().DeleteMany(ctx, bson.M{"start": bson.M{"$lt": olderThan}})
	if err != nil {
		return 0, fmt.Errorf("purge stale restaurants: %w", err)
	}
	if res.DeletedCount > 0 {
		m.log.Info(ctx, "purged stale restaurants", logger.Any("deleted", res.DeletedCount))
	}
	return res.DeletedCount, nil
}

func (m *Mongo) ensureRestaurantIndexes(ctx context.Context) error {
	_, err := m.restaurantsCollection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "scrapedAt", Value: 1}}},
	})
	return err
}
