package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/pkg/logger"
)

// PublishSnapshot replaces the events collection with the given snapshot:
// deleteMany over the whole collection followed by a bulk insert. An empty
// snapshot is refused so a failed run can never wipe the live collection.
// The per-source correlation id is stripped before insert; it exists only
// for aggregation and must not leak into the published documents.
func (m *Mongo) PublishSnapshot(ctx context.Context, events []model.Event) (int, error) {
	if len(events) == 0 {
		return 0, ErrEmptySnapshot
	}

	coll := m.eventsCollection()

	deleted, err := coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("clear events: %w", err)
	}

	docs := make([]interface{}, 0, len(events))
	for _, ev := range events {
		ev.SourceID = ""
		docs = append(docs, ev)
	}

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert events: %w", err)
	}

	// Index builds are idempotent; a failure here leaves the data intact,
	// so log and move on rather than failing the publish.
	if err := m.ensureEventIndexes(ctx); err != nil {
		m.log.Warn(ctx, "event index ensure failed", logger.Error(err))
	}

	m.log.Info(ctx, "published event snapshot",
		logger.Int("inserted", len(res.InsertedIDs)),
		logger.Int("replaced", int(deleted.DeletedCount)))
	return len(res.InsertedIDs), nil
}

func (m *Mongo) ensureEventIndexes(ctx context.Context) error {
	_, err := m.eventsCollection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "platform", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "location", Value: "text"},
			},
			Options: options.Index().SetName("event_text_search"),
		},
	})
	return err
}
