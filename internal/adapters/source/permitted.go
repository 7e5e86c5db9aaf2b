package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/internal/domain/normalize"
	"github.com/goodrec/nyc-ingest/pkg/logger"
	"github.com/goodrec/nyc-ingest/pkg/metrics"
)

const (
	permittedRowLimit = 800

	// The permitted-events API exposes no per-event URLs, so every
	// event links to the dataset landing page.
	permittedLandingPage = "https://data.cityofnewyork.us/City-Government/NYC-Permitted-Event-Information/tvpp-9vvx"
)

// permittedRow mirrors one row of the permitted-events dataset.
type permittedRow struct {
	EventID       string `json:"event_id"`
	EventName     string `json:"event_name"`
	EventType     string `json:"event_type"`
	EventBorough  string `json:"event_borough"`
	EventLocation string `json:"event_location"`
	StartDateTime string `json:"start_date_time"`
}

// Permitted ingests the municipal permitted-events dataset.
type Permitted struct {
	opts   options
	client *http.Client
	log    logger.Logger
}

// NewPermitted builds the permitted-events adapter.
func NewPermitted(opts ...Option) *Permitted {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := o.client
	if client == nil {
		client = newHTTPClient(requestTimeout)
	}
	return &Permitted{
		opts:   o,
		client: client,
		log:    logger.Get().Named("source.permitted"),
	}
}

// Name implements Source.
func (p *Permitted) Name() string { return "permitted" }

// Platform implements Source.
func (p *Permitted) Platform() string { return model.PlatformOpenData }

// Fetch implements Source.
func (p *Permitted) Fetch(ctx context.Context) ([]model.Event, error) {
	window := normalize.NewWindow(p.opts.now())

	q := url.Values{}
	q.Set("$where", fmt.Sprintf("start_date_time >= '%s'", window.StartDate()))
	q.Set("$order", "start_date_time")
	q.Set("$limit", strconv.Itoa(permittedRowLimit))

	var rows []permittedRow
	if err := getJSON(ctx, p.client, p.opts.baseURL+"?"+q.Encode(), &rows); err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		ev, ok := p.mapRow(ctx, window, row)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	p.log.Info(ctx, "fetched permitted events",
		logger.Int("rows", len(rows)),
		logger.Int("events", len(events)))
	return events, nil
}

func (p *Permitted) mapRow(ctx context.Context, window normalize.Window, row permittedRow) (model.Event, bool) {
	if row.EventName == "" {
		metrics.RecordEventDropped("missing_name")
		return model.Event{}, false
	}

	start, err := normalize.ParseStart(row.StartDateTime)
	if err != nil {
		p.log.Debug(ctx, "skipping row with unusable start",
			logger.String("event_id", row.EventID),
			logger.Error(err))
		metrics.RecordEventDropped("bad_date")
		return model.Event{}, false
	}
	if !window.Contains(start) {
		metrics.RecordEventDropped("out_of_window")
		return model.Event{}, false
	}

	location := normalize.ComposeLocation(row.EventLocation, "", normalize.Borough(row.EventBorough))
	if location == "" {
		location = "New York City"
	}

	return normalize.Canonical(model.Event{
		Name:        row.EventName,
		Date:        normalize.CivilDate(start),
		Time:        model.TimeString(normalize.Clock(start)),
		Location:    location,
		Description: row.EventType,
		Link:        permittedLandingPage,
		Price:       model.PriceCheckSource,
		Platform:    model.PlatformOpenData,
		SourceID:    row.EventID,
	}), true
}
