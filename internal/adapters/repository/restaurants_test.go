package repository

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
)

func TestRestaurantUpdate(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, 3)

	r := model.Restaurant{
		URL:       "https://www.eventbrite.com/e/supper-club-1",
		Name:      "Supper Club",
		Venue:     "The Cellar",
		Price:     "$40",
		Start:     &start,
		CreatedAt: now.AddDate(0, -1, 0),
	}

	update, err := restaurantUpdate(r, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set document, got %T", update["$set"])
	}

	// createdAt may only be written on first insert.
	if _, found := set["createdAt"]; found {
		t.Error("$set must not carry createdAt")
	}
	insert, ok := update["$setOnInsert"].(bson.M)
	if !ok {
		t.Fatalf("expected $setOnInsert document, got %T", update["$setOnInsert"])
	}
	created, ok := insert["createdAt"].(time.Time)
	if !ok || !created.Equal(now) {
		t.Errorf("expected $setOnInsert createdAt %v, got %v", now, insert["createdAt"])
	}

	// Listing fields pass through; scrapedAt and source are stamped.
	if got := set["url"]; got != r.URL {
		t.Errorf("expected url %q, got %v", r.URL, got)
	}
	if got := set["name"]; got != "Supper Club" {
		t.Errorf("expected name Supper Club, got %v", got)
	}
	if got := set["venue"]; got != "The Cellar" {
		t.Errorf("expected venue The Cellar, got %v", got)
	}
	scraped, ok := set["scrapedAt"].(time.Time)
	if !ok || !scraped.Equal(now) {
		t.Errorf("expected scrapedAt %v, got %v", now, set["scrapedAt"])
	}
	if got := set["source"]; got != model.RestaurantSource {
		t.Errorf("expected defaulted source %q, got %v", model.RestaurantSource, got)
	}
	got, ok := set["start"].(primitive.DateTime)
	if !ok || !got.Time().UTC().Equal(start) {
		t.Errorf("expected start %v, got %v", start, set["start"])
	}
}

func TestRestaurantUpdateKeepsExplicitSource(t *testing.T) {
	now := time.Now().UTC()
	r := model.Restaurant{
		URL:    "https://maps.example.com/place/42",
		Name:   "Corner Bistro",
		Source: "google",
	}

	update, err := restaurantUpdate(r, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := update["$set"].(bson.M)
	if got := set["source"]; got != "google" {
		t.Errorf("expected source google to survive, got %v", got)
	}
}

func TestRestaurantUpdateOmitsEmptyFields(t *testing.T) {
	now := time.Now().UTC()
	r := model.Restaurant{URL: "https://www.eventbrite.com/e/bare", Name: "Bare"}

	update, err := restaurantUpdate(r, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := update["$set"].(bson.M)
	for _, field := range []string{"venue", "price", "start", "end", "imageUrl", "fullAddress"} {
		if _, found := set[field]; found {
			t.Errorf("expected empty field %q to be omitted from $set", field)
		}
	}
}
