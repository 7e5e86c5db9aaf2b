package repository

import "time"

// Option customises a Mongo store before the first command is issued.
type Option func(*Mongo)

// WithDatabase overrides the database name. Empty values are ignored.
func WithDatabase(name string) Option {
	return func(m *Mongo) {
		if name != "" {
			m.database = name
		}
	}
}

// WithEventsCollection overrides the events collection name.
func WithEventsCollection(name string) Option {
	return func(m *Mongo) {
		if name != "" {
			m.events = name
		}
	}
}

// WithRestaurantsCollection overrides the restaurants collection name.
func WithRestaurantsCollection(name string) Option {
	return func(m *Mongo) {
		if name != "" {
			m.restaurants = name
		}
	}
}

// WithConnectTimeout bounds the initial connect plus ping round trip.
func WithConnectTimeout(d time.Duration) Option {
	return func(m *Mongo) {
		if d > 0 {
			m.connectTimeout = d
		}
	}
}
