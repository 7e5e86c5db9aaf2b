// Package model contains domain models passed between layers.
package model

import "strings"

// Source is the fixed brand tag stamped on every published event.
const Source = "GoodRec"

// Platform identifiers, one per ingestion origin.
const (
	PlatformOpenData     = "NYC Open Data"
	PlatformParks        = "NYC Parks"
	PlatformEventbrite   = "Eventbrite"
	PlatformTicketmaster = "Ticketmaster"
)

// Price values outside the "$n" / "$lo - $hi" forms.
const (
	PriceFree        = "Free"
	PriceCheckSource = "Check source"
	PriceCheckSite   = "Check site"
)

// Event is the canonical record published into the events snapshot.
// Field names mirror the documents downstream query code reads.
type Event struct {
	// SourceID is adapter-local provenance kept for debugging; the
	// publisher strips it before insert (omitempty + blanking).
	SourceID string `bson:"_sourceId,omitempty" json:"_sourceId,omitempty"`

	Name        string  `bson:"name" json:"name"`
	Date        string  `bson:"date" json:"date"` // YYYY-MM-DD, America/New_York civil day
	Time        *string `bson:"time" json:"time"` // "h:MM AM/PM" or null
	Location    string  `bson:"location" json:"location"`
	Description string  `bson:"description" json:"description"`
	Link        string  `bson:"link" json:"link"`
	Price       string  `bson:"price" json:"price"`
	Source      string  `bson:"source" json:"source"`
	Platform    string  `bson:"platform" json:"platform"`
	IsActive    bool    `bson:"isActive" json:"isActive"`
}

// Key returns the cross-source dedup key: lowercased name joined with the
// civil date. Two events sharing a key are the same event to the pipeline.
func (e Event) Key() string {
	return strings.ToLower(e.Name) + "|" + e.Date
}

// TimeString is a convenience for building the nullable time field.
func TimeString(s string) *string { return &s }
