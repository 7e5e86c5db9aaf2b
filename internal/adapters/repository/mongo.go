package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/goodrec/nyc-ingest/pkg/logger"
)

// Defaults for the document store.
const (
	defaultDatabase        = "goodrec"
	defaultEventsColl      = "events"
	defaultRestaurantsColl = "restaurants"
	defaultConnectTimeout  = 10 * time.Second
)

// Mongo is the document store behind snapshot publishing, restaurant
// upserts and catalog reads. A single instance is safe for concurrent use.
type Mongo struct {
	client         *mongo.Client
	database       string
	events         string
	restaurants    string
	connectTimeout time.Duration
	log            logger.Logger
}

// Connect dials the store and verifies the connection with a ping against
// the primary. On ping failure the half-open client is disconnected before
// the error is returned.
func Connect(ctx context.Context, uri string, opts ...Option) (*Mongo, error) {
	if uri == "" {
		return nil, ErrNoURI
	}

	m := &Mongo{
		database:       defaultDatabase,
		events:         defaultEventsColl,
		restaurants:    defaultRestaurantsColl,
		connectTimeout: defaultConnectTimeout,
		log:            logger.Get().Named("repository"),
	}
	for _, opt := range opts {
		opt(m)
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	m.client = client
	m.log.Info(ctx, "connected to document store",
		logger.String("database", m.database),
		logger.String("events_collection", m.events),
		logger.String("restaurants_collection", m.restaurants))
	return m, nil
}

// Close releases the underlying connection pool.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *Mongo) eventsCollection() *mongo.Collection {
	return m.client.Database(m.database).Collection(m.events)
}

func (m *Mongo) restaurantsCollection() *mongo.Collection {
	return m.client.Database(m.database).Collection(m.restaurants)
}
