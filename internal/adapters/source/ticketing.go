package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/internal/domain/normalize"
	"github.com/goodrec/nyc-ingest/pkg/logger"
	"github.com/goodrec/nyc-ingest/pkg/metrics"
)

const (
	ticketingPageSize  = 100
	ticketingMaxPages  = 3
	ticketingPageDelay = 500 * time.Millisecond

	// The discovery API wants second-resolution UTC instants.
	isoInstant = "2006-01-02T15:04:05Z"
)

// ticketingPage is one page of the discovery API response.
type ticketingPage struct {
	Embedded struct {
		Events []ticketingEvent `json:"events"`
	} `json:"_embedded"`
	Page struct {
		TotalPages int `json:"totalPages"`
	} `json:"page"`
}

type ticketingEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Info  string `json:"info"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
			DateTime  string `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	PriceRanges []struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"priceRanges"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			State struct {
				StateCode string `json:"stateCode"`
			} `json:"state"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// Ticketing ingests the commercial ticketing discovery API. It is the
// only adapter that needs a credential; without one it degrades to an
// empty result so the pipeline keeps running.
type Ticketing struct {
	opts   options
	client *http.Client
	log    logger.Logger
}

// NewTicketing builds the ticketing API adapter.
func NewTicketing(opts ...Option) *Ticketing {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := o.client
	if client == nil {
		client = newHTTPClient(requestTimeout)
	}
	return &Ticketing{
		opts:   o,
		client: client,
		log:    logger.Get().Named("source.ticketing"),
	}
}

// Name implements Source.
func (t *Ticketing) Name() string { return "ticketing" }

// Platform implements Source.
func (t *Ticketing) Platform() string { return model.PlatformTicketmaster }

// Fetch implements Source. Pages are 0-based and walked sequentially
// until totalPages or the soft cap, whichever comes first.
func (t *Ticketing) Fetch(ctx context.Context) ([]model.Event, error) {
	if t.opts.apiKey == "" {
		t.log.Warn(ctx, "ticketing adapter disabled", logger.Error(ErrMissingAPIKey))
		return nil, nil
	}

	maxPages := t.opts.maxPages
	if maxPages <= 0 {
		maxPages = ticketingMaxPages
	}
	delay := t.opts.pageDelay
	if delay < 0 {
		delay = ticketingPageDelay
	}

	window := normalize.NewWindow(t.opts.now())

	var events []model.Event
	for page := 0; page < maxPages; page++ {
		var resp ticketingPage
		if err := getJSON(ctx, t.client, t.pageURL(window, page), &resp); err != nil {
			if len(events) == 0 {
				return nil, err
			}
			t.log.Warn(ctx, "discovery page failed, keeping earlier pages",
				logger.Int("page", page),
				logger.Error(err))
			metrics.RecordSourceError(t.Name())
			break
		}
		metrics.RecordPageScraped(t.Name())

		for _, ev := range resp.Embedded.Events {
			mapped, ok := t.mapEvent(window, ev)
			if !ok {
				continue
			}
			events = append(events, mapped)
		}

		if page+1 >= resp.Page.TotalPages {
			break
		}
		if page+1 < maxPages {
			time.Sleep(delay)
		}
	}

	t.log.Info(ctx, "fetched ticketing events", logger.Int("events", len(events)))
	return events, nil
}

func (t *Ticketing) pageURL(window normalize.Window, page int) string {
	q := url.Values{}
	q.Set("apikey", t.opts.apiKey)
	q.Set("city", "New York")
	q.Set("stateCode", "NY")
	q.Set("startDateTime", window.Start.UTC().Format(isoInstant))
	q.Set("endDateTime", window.End.UTC().Format(isoInstant))
	q.Set("size", strconv.Itoa(ticketingPageSize))
	q.Set("sort", "date,asc")
	q.Set("page", strconv.Itoa(page))
	return t.opts.baseURL + "?" + q.Encode()
}

func (t *Ticketing) mapEvent(window normalize.Window, ev ticketingEvent) (model.Event, bool) {
	if ev.Name == "" {
		metrics.RecordEventDropped("missing_name")
		return model.Event{}, false
	}

	date, clock, ok := ticketingStart(window, ev)
	if !ok {
		return model.Event{}, false
	}

	var venue, city, state string
	if len(ev.Embedded.Venues) > 0 {
		v := ev.Embedded.Venues[0]
		venue, city, state = v.Name, v.City.Name, v.State.StateCode
	}
	location := normalize.ComposeLocation(venue, city, normalize.Borough(state))
	if location == "" {
		location = "New York City"
	}

	price := model.PriceCheckSource
	if len(ev.PriceRanges) > 0 {
		price = normalize.RangePrice(ev.PriceRanges[0].Min, ev.PriceRanges[0].Max)
	}

	return normalize.Canonical(model.Event{
		Name:        ev.Name,
		Date:        date,
		Time:        model.TimeString(clock),
		Location:    location,
		Description: ev.Info,
		Link:        ev.URL,
		Price:       price,
		Platform:    model.PlatformTicketmaster,
		SourceID:    ev.ID,
	}), true
}

// ticketingStart resolves the event's civil date and wall-clock time,
// preferring the venue-local fields over the zoned instant.
func ticketingStart(window normalize.Window, ev ticketingEvent) (date, clock string, ok bool) {
	if start, err := normalize.ParseStart(ev.Dates.Start.LocalDate); err == nil {
		if !window.Contains(start) {
			metrics.RecordEventDropped("out_of_window")
			return "", "", false
		}
		return normalize.CivilDate(start), localClock(ev.Dates.Start.LocalTime), true
	}

	start, err := normalize.ParseStart(ev.Dates.Start.DateTime)
	if err != nil {
		metrics.RecordEventDropped("bad_date")
		return "", "", false
	}
	if !window.Contains(start) {
		metrics.RecordEventDropped("out_of_window")
		return "", "", false
	}
	return normalize.CivilDate(start), normalize.Clock(start), true
}

// localClock formats the API's venue-local "19:30:00" as "7:30 PM".
func localClock(localTime string) string {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, localTime); err == nil {
			return t.Format("3:04 PM")
		}
	}
	return ""
}
