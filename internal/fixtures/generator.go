package fixtures

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/goodrec/nyc-ingest/internal/domain/normalize"
)

// Row shape cases. Most rows are complete; a few are deliberately
// degraded so the jobs exercise their tolerance paths on every run.
const (
	shapeNoClosure   = 5  // street closure fields absent
	shapeNoLocation  = 9  // event location absent
	shapeOutOfWindow = 12 // start beyond the publish horizon
	shapeModulus     = 13

	badDateIndex = 7 // one permitted row with an unparseable start

	// Every collisionStride-th parks row reuses a permitted event's
	// name and date, so cross-source dedup always has work to do.
	collisionStride = 11
)

var cityEventNames = []string{
	"Harlem Summer Stage", "Bronx Night Market", "Queens Jazz Crawl",
	"Brooklyn Bridge Sunrise Run", "Staten Island Food Walk",
	"Washington Square Open Mic", "Prospect Park Community Yoga",
	"Chinatown Lantern Festival", "Astoria Comedy Night",
	"Greenpoint Vinyl Fair", "Lower East Side Gallery Hop",
	"Riverside Salsa Social", "Coney Island Film Night",
	"Flushing Dumpling Crawl", "Gowanus Makers Market",
	"Bushwick Rooftop Sessions", "Union Square Farmers Tasting",
	"Harbor Lights Kayak Tour", "Midtown Sketch Meetup",
	"Red Hook Oyster Festival",
}

var parkEventNames = []string{
	"Forest Bathing Walk", "Beginner Birding", "Sunset Tai Chi",
	"Native Plant Tour", "Family Fishing Clinic", "Stargazing Night",
	"Wetland Canoe Tour", "Pollinator Garden Tour", "Outdoor Chess Club",
	"History Hike on the Ridge",
}

var marketplaceEventNames = []string{
	"Secret Supper Club", "Indie Film Shorts Night", "Latin Dance Social",
	"Craft Beer and Trivia", "Candlelight Strings", "Drag Brunch Spectacular",
	"Startup Founders Mixer", "Pottery and Prosecco", "Vintage Clothing Swap",
	"Midnight Karaoke Lounge",
}

var ticketingEventNames = []string{
	"Arena Rock Revival", "Broadway in Concert", "Championship Boxing Night",
	"Symphony Under the Stars", "Stand-Up All Stars", "The Big Game",
	"World Tour: New York Stop", "Ice Spectacular", "Legends of Hip Hop",
	"An Evening of Opera",
}

var boroughNames = []string{
	"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island",
}

var streetLocations = []string{
	"5th Avenue between 59th and 72nd Street",
	"Broadway between Canal and Houston",
	"Eastern Parkway at Grand Army Plaza",
	"Steinway Street between 28th and 31st Avenue",
	"Arthur Avenue between 184th and 188th Street",
	"Richmond Terrace at Bay Street",
}

var permittedTypes = []string{
	"Street Festival", "Farmers Market", "Parade", "Block Party",
	"Sport - Youth", "Plaza Event", "Production Event",
}

var agencies = []string{
	"Street Activity Permit Office", "Parks Department",
	"Mayor's Office of Media and Entertainment",
}

var closureTypes = []string{
	"Full Closure", "Curb Lane Closure", "Sidewalk Closure",
}

// parkSites pairs a park name with its id; ids lead with the borough
// code the feed encodes.
var parkSites = []struct {
	name string
	id   string
}{
	{"Inwood Hill Park", "M029"},
	{"Central Park", "M010"},
	{"Prospect Park", "B073"},
	{"Marine Park", "B057"},
	{"Flushing Meadows Corona Park", "Q099"},
	{"Forest Park", "Q015"},
	{"Van Cortlandt Park", "X042"},
	{"Pelham Bay Park", "X039"},
	{"Clove Lakes Park", "R006"},
}

var parkCategories = []string{
	"Nature", "Fitness", "Arts & Crafts", "Education", "Tours",
	"Birding", "History",
}

var venueNames = []string{
	"The Greenhouse Loft", "Parlor on 9th", "Bar Bruno",
	"The Tin Rooftop", "Casa Valentina", "The Dumbo Annex",
	"Mezcaleria Roja", "The Velvet Room",
}

var arenaNames = []string{
	"Madison Square Garden", "Barclays Center", "Radio City Music Hall",
	"Forest Hills Stadium", "Kings Theatre",
}

var listingBlurbs = []string{
	"Live jazz, natural wine, and small plates from a rotating guest chef.",
	"An intimate evening of music and cocktails in a candlelit room.",
	"Rooftop views, a resident DJ, and a menu built for sharing.",
	"A neighborhood favorite for brunch, trivia, and late-night karaoke.",
	"Seasonal tasting menu with optional wine pairing from the cellar.",
}

// generator produces deterministic synthetic upstream rows. The same
// seed and civil date yield the same dataset, so a fixture run can be
// reproduced exactly while its dates still track today.
type generator struct {
	rng  *rand.Rand
	now  time.Time
	days int
}

func newGenerator(seed int64, now time.Time, days int) *generator {
	if days <= 0 {
		days = DefaultDays
	}
	return &generator{
		rng:  rand.New(rand.NewSource(seed)),
		now:  now,
		days: days,
	}
}

// start places row i on a civil day inside the spread, at a plausible
// wall-clock hour.
func (g *generator) start(i int) time.Time {
	day := i % g.days
	if i%shapeModulus == shapeOutOfWindow {
		day = g.days + 20
	}
	local := g.now.In(normalize.Location())
	hour := 8 + g.rng.Intn(13)
	minute := 15 * g.rng.Intn(4)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0,
		normalize.Location()).AddDate(0, 0, day)
}

func (g *generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

// permittedRow mirrors the permitted-events dataset columns, including
// the street-closure fields the facet extractor reads.
type permittedRow struct {
	EventID        string `json:"event_id"`
	EventName      string `json:"event_name"`
	EventType      string `json:"event_type"`
	EventBorough   string `json:"event_borough"`
	EventLocation  string `json:"event_location,omitempty"`
	EventAgency    string `json:"event_agency"`
	StartDateTime  string `json:"start_date_time"`
	ClosureType    string `json:"street_closure_type,omitempty"`
	CommunityBoard string `json:"community_board"`
	PolicePrecinct string `json:"police_precinct"`
}

func (g *generator) permittedRows(n int) []permittedRow {
	rows := make([]permittedRow, 0, n)
	for i := 0; i < n; i++ {
		start := g.start(i)
		row := permittedRow{
			EventID:        strconv.Itoa(700000 + i),
			EventName:      cityEventNames[i%len(cityEventNames)],
			EventType:      g.pick(permittedTypes),
			EventBorough:   g.pick(boroughNames),
			EventLocation:  g.pick(streetLocations),
			EventAgency:    g.pick(agencies),
			StartDateTime:  start.Format("2006-01-02T15:04:05.000"),
			ClosureType:    g.pick(closureTypes),
			CommunityBoard: strconv.Itoa(1 + g.rng.Intn(18)),
			PolicePrecinct: strconv.Itoa(1 + g.rng.Intn(120)),
		}
		switch i % shapeModulus {
		case shapeNoClosure:
			row.ClosureType = ""
		case shapeNoLocation:
			row.EventLocation = ""
		}
		if i == badDateIndex {
			row.StartDateTime = "TBD"
		}
		rows = append(rows, row)
	}
	return rows
}

// parksRow mirrors one entry of the parks RSS-as-JSON feed.
type parksRow struct {
	Title      string `json:"title"`
	StartDate  string `json:"startdate"`
	StartTime  string `json:"starttime"`
	Location   string `json:"location"`
	Categories string `json:"categories"`
	ParkIDs    string `json:"parkids"`
	Link       string `json:"link"`
	GUID       string `json:"guid"`
}

func (g *generator) parksRows(n int) []parksRow {
	rows := make([]parksRow, 0, n)
	for i := 0; i < n; i++ {
		start := g.start(i)
		site := parkSites[g.rng.Intn(len(parkSites))]
		title := parkEventNames[i%len(parkEventNames)]
		if i%collisionStride == 0 {
			title = cityEventNames[i%len(cityEventNames)]
		}
		categories := g.pick(parkCategories)
		if g.rng.Intn(3) == 0 {
			categories += ", " + g.pick(parkCategories)
		}
		rows = append(rows, parksRow{
			Title:      title,
			StartDate:  start.Format("2006-01-02"),
			StartTime:  strings.ToLower(start.Format("3:04 PM")),
			Location:   site.name,
			Categories: categories,
			ParkIDs:    site.id,
			Link:       fmt.Sprintf("https://www.nycgovparks.org/events/%d", 90000+i),
			GUID:       fmt.Sprintf("nycparks-events-%d", 90000+i),
		})
	}
	return rows
}

// JSON-LD shells for the marketplace listing pages.
type ldDocument struct {
	Context string       `json:"@context"`
	Type    string       `json:"@type"`
	Items   []ldListItem `json:"itemListElement"`
}

type ldListItem struct {
	Type     string  `json:"@type"`
	Position int     `json:"position"`
	Item     ldEvent `json:"item"`
}

type ldEvent struct {
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	StartDate   string   `json:"startDate"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Image       string   `json:"image"`
	Location    ldPlace  `json:"location"`
	Offers      *ldOffer `json:"offers,omitempty"`
}

type ldPlace struct {
	Type    string    `json:"@type"`
	Name    string    `json:"name"`
	Address ldAddress `json:"address"`
}

type ldAddress struct {
	Type     string `json:"@type"`
	Street   string `json:"streetAddress"`
	Locality string `json:"addressLocality"`
	Region   string `json:"addressRegion"`
	Postal   string `json:"postalCode"`
}

type ldOffer struct {
	Type  string `json:"@type"`
	Price string `json:"price"`
}

func (g *generator) marketplaceItems(n int) []ldListItem {
	items := make([]ldListItem, 0, n)
	for i := 0; i < n; i++ {
		start := g.start(i)
		venue := g.pick(venueNames)
		slug := 3000000 + i

		var offers *ldOffer
		switch g.rng.Intn(3) {
		case 0:
			offers = &ldOffer{Type: "Offer", Price: "0"}
		case 1:
			offers = &ldOffer{Type: "Offer", Price: strconv.Itoa(10 + 5*g.rng.Intn(9))}
		default:
			// No offer block; the pipeline should fall back to the page.
		}

		items = append(items, ldListItem{
			Type:     "ListItem",
			Position: i + 1,
			Item: ldEvent{
				Type:        "Event",
				Name:        marketplaceEventNames[i%len(marketplaceEventNames)],
				StartDate:   start.Format(time.RFC3339),
				Description: g.pick(listingBlurbs),
				URL:         fmt.Sprintf("https://www.eventbrite.com/e/tickets-%d", slug),
				Image:       fmt.Sprintf("https://img.evbuc.com/banner-%d.jpg", slug),
				Location: ldPlace{
					Type: "Place",
					Name: venue,
					Address: ldAddress{
						Type:     "PostalAddress",
						Street:   fmt.Sprintf("%d Kent Avenue", 100+i),
						Locality: "Brooklyn",
						Region:   "NY",
						Postal:   "11249",
					},
				},
				Offers: offers,
			},
		})
	}
	return items
}

// Discovery API payload shells for the ticketing endpoint.
type ticketingPayload struct {
	Embedded ticketingEmbedded `json:"_embedded"`
	Page     ticketingPageInfo `json:"page"`
}

type ticketingEmbedded struct {
	Events []ticketingEvent `json:"events"`
}

type ticketingPageInfo struct {
	TotalPages int `json:"totalPages"`
}

type ticketingEvent struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	URL         string           `json:"url"`
	Info        string           `json:"info,omitempty"`
	Dates       ticketingDates   `json:"dates"`
	PriceRanges []ticketingRange `json:"priceRanges,omitempty"`
	Embedded    ticketingVenues  `json:"_embedded"`
}

type ticketingDates struct {
	Start ticketingStart `json:"start"`
}

type ticketingStart struct {
	LocalDate string `json:"localDate"`
	LocalTime string `json:"localTime"`
	DateTime  string `json:"dateTime"`
}

type ticketingRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ticketingVenues struct {
	Venues []ticketingVenue `json:"venues"`
}

type ticketingVenue struct {
	Name  string         `json:"name"`
	City  ticketingCity  `json:"city"`
	State ticketingState `json:"state"`
}

type ticketingCity struct {
	Name string `json:"name"`
}

type ticketingState struct {
	StateCode string `json:"stateCode"`
}

func (g *generator) ticketingEvents(n int) []ticketingEvent {
	events := make([]ticketingEvent, 0, n)
	for i := 0; i < n; i++ {
		start := g.start(i)

		var ranges []ticketingRange
		if g.rng.Intn(3) != 0 {
			low := float64(25 + 10*g.rng.Intn(10))
			ranges = []ticketingRange{{Min: low, Max: low + float64(20+10*g.rng.Intn(8))}}
		}

		events = append(events, ticketingEvent{
			ID:   fmt.Sprintf("vvG1z%07d", i),
			Name: ticketingEventNames[i%len(ticketingEventNames)],
			URL:  fmt.Sprintf("https://www.ticketmaster.com/event/%07d", i),
			Info: "Doors open one hour before showtime.",
			Dates: ticketingDates{
				Start: ticketingStart{
					LocalDate: start.Format("2006-01-02"),
					LocalTime: start.Format("15:04:05"),
					DateTime:  start.UTC().Format(time.RFC3339),
				},
			},
			PriceRanges: ranges,
			Embedded: ticketingVenues{
				Venues: []ticketingVenue{{
					Name:  g.pick(arenaNames),
					City:  ticketingCity{Name: "New York"},
					State: ticketingState{StateCode: "NY"},
				}},
			},
		})
	}
	return events
}
