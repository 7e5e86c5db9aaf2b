// Package catalog derives browse vocabularies from the published
// collections: category groups and keywords from the event snapshot, and
// filter facets from the restaurant records.
package catalog

import (
	"context"
	"fmt"
	"time"
)

// EventReader is the slice of the document store the event catalog needs.
type EventReader interface {
	CountEvents(ctx context.Context) (int64, error)
	DistinctEventValues(ctx context.Context, field string) ([]string, error)
}

// RestaurantReader is the slice of the document store the restaurant
// filter extraction needs.
type RestaurantReader interface {
	CountRestaurants(ctx context.Context) (int64, error)
	DistinctRestaurantValues(ctx context.Context, field string) ([]string, error)
}

// EventCatalog is the serialized shape of the event category artifact.
type EventCatalog struct {
	GeneratedAt       time.Time           `json:"generatedAt"`
	TotalEvents       int64               `json:"totalEvents"`
	Platforms         []string            `json:"platforms"`
	Categories        []string            `json:"categories"`
	GroupedCategories map[string][]string `json:"groupedCategories"`
	TopKeywords       []string            `json:"topKeywords"`
}

// RestaurantFilters is the serialized shape of the restaurant filter
// artifact.
type RestaurantFilters struct {
	GeneratedAt      time.Time `json:"generatedAt"`
	TotalRestaurants int64     `json:"totalRestaurants"`
	Cuisines         []string  `json:"cuisines"`
	PriceLevels      []string  `json:"priceLevels"`
	Sources          []string  `json:"sources"`
}

// BuildEventCatalog reads the published events and assembles the category
// catalog. Category matching runs over names, descriptions and locations;
// keyword ranking runs over descriptions only.
func BuildEventCatalog(ctx context.Context, store EventReader, now time.Time) (EventCatalog, error) {
	total, err := store.CountEvents(ctx)
	if err != nil {
		return EventCatalog{}, fmt.Errorf("event catalog: %w", err)
	}

	fields := make(map[string][]string, 4)
	for _, field := range []string{"name", "description", "platform", "location"} {
		vals, err := store.DistinctEventValues(ctx, field)
		if err != nil {
			return EventCatalog{}, fmt.Errorf("event catalog: %w", err)
		}
		fields[field] = vals
	}

	text := make([]string, 0, len(fields["name"])+len(fields["description"])+len(fields["location"]))
	text = append(text, fields["name"]...)
	text = append(text, fields["description"]...)
	text = append(text, fields["location"]...)
	categories, grouped := Categorize(text)

	return EventCatalog{
		GeneratedAt:       now.UTC(),
		TotalEvents:       total,
		Platforms:         fields["platform"],
		Categories:        categories,
		GroupedCategories: grouped,
		TopKeywords:       TopKeywords(fields["description"]),
	}, nil
}

// BuildRestaurantFilters reads the restaurant records and assembles the
// filter facets.
func BuildRestaurantFilters(ctx context.Context, store RestaurantReader, now time.Time) (RestaurantFilters, error) {
	total, err := store.CountRestaurants(ctx)
	if err != nil {
		return RestaurantFilters{}, fmt.Errorf("restaurant filters: %w", err)
	}

	cuisines, err := store.DistinctRestaurantValues(ctx, "cuisineDescription")
	if err != nil {
		return RestaurantFilters{}, fmt.Errorf("restaurant filters: %w", err)
	}
	priceLevels, err := store.DistinctRestaurantValues(ctx, "priceLevel")
	if err != nil {
		return RestaurantFilters{}, fmt.Errorf("restaurant filters: %w", err)
	}
	sources, err := store.DistinctRestaurantValues(ctx, "source")
	if err != nil {
		return RestaurantFilters{}, fmt.Errorf("restaurant filters: %w", err)
	}

	return RestaurantFilters{
		GeneratedAt:      now.UTC(),
		TotalRestaurants: total,
		Cuisines:         cuisines,
		PriceLevels:      priceLevels,
		Sources:          sources,
	}, nil
}
