package repository

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// CountEvents returns the number of documents in the events collection.
func (m *Mongo) CountEvents(ctx context.Context) (int64, error) {
	n, err := m.eventsCollection().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// DistinctEventValues returns the sorted distinct string values of one
// field across the events collection. Non-string and empty values are
// dropped.
func (m *Mongo) DistinctEventValues(ctx context.Context, field string) ([]string, error) {
	vals, err := m.eventsCollection().Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct events %q: %w", field, err)
	}
	return stringValues(vals), nil
}

// CountRestaurants returns the number of documents in the restaurants
// collection.
func (m *Mongo) CountRestaurants(ctx context.Context) (int64, error) {
	n, err := m.restaurantsCollection().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	return n, nil
}

// DistinctRestaurantValues returns the sorted distinct string values of one
// field across the restaurants collection.
func (m *Mongo) DistinctRestaurantValues(ctx context.Context, field string) ([]string, error) {
	vals, err := m.restaurantsCollection().Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct restaurants %q: %w", field, err)
	}
	return stringValues(vals), nil
}

func stringValues(vals []interface{}) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
