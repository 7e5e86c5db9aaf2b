package model

import "time"

// RestaurantSource tags rows maintained by the restaurant ingester.
const RestaurantSource = "eventbrite"

// Restaurant is an upserted enrichment record keyed by URL. Unlike events,
// restaurants are long-lived: repeated ingestion refreshes fields and
// scrapedAt while createdAt survives from the first insert.
//
// Enrichment fields are passed through verbatim when the source provides
// them; scraped rows carry the listing fields (venue, start, price).
type Restaurant struct {
	URL  string `bson:"url" json:"url"`
	Name string `bson:"name" json:"name"`

	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Start       *time.Time `bson:"start,omitempty" json:"start,omitempty"`
	End         *time.Time `bson:"end,omitempty" json:"end,omitempty"`
	Venue       string     `bson:"venue,omitempty" json:"venue,omitempty"`
	Price       string     `bson:"price,omitempty" json:"price,omitempty"`
	ImageURL    string     `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`

	FullAddress        string   `bson:"fullAddress,omitempty" json:"fullAddress,omitempty"`
	CuisineDescription string   `bson:"cuisineDescription,omitempty" json:"cuisineDescription,omitempty"`
	Rating             float64  `bson:"rating,omitempty" json:"rating,omitempty"`
	PriceLevel         string   `bson:"priceLevel,omitempty" json:"priceLevel,omitempty"`
	UserRatingsTotal   int      `bson:"userRatingsTotal,omitempty" json:"userRatingsTotal,omitempty"`
	PhoneNumber        string   `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Website            string   `bson:"website,omitempty" json:"website,omitempty"`
	GoogleMapsURI      string   `bson:"googleMapsUri,omitempty" json:"googleMapsUri,omitempty"`
	OpeningHours       []string `bson:"openingHours,omitempty" json:"openingHours,omitempty"`
	ReviewSummary      string   `bson:"reviewSummary,omitempty" json:"reviewSummary,omitempty"`
	GoogleTypes        []string `bson:"googleTypes,omitempty" json:"googleTypes,omitempty"`

	Source    string    `bson:"source,omitempty" json:"source,omitempty"`
	ScrapedAt time.Time `bson:"scrapedAt,omitempty" json:"scrapedAt,omitempty"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}
