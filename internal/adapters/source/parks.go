package source

import (
	"context"
	"net/http"
	"strings"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/internal/domain/normalize"
	"github.com/goodrec/nyc-ingest/pkg/logger"
	"github.com/goodrec/nyc-ingest/pkg/metrics"
)

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

// Parks ingests the municipal parks department event feed.
type Parks struct {
	opts   options
	client *http.Client
	log    logger.Logger
}

// NewParks builds the parks feed adapter.
func NewParks(opts ...Option) *Parks {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := o.client
	if client == nil {
		client = newHTTPClient(requestTimeout)
	}
	return &Parks{
		opts:   o,
		client: client,
		log:    logger.Get().Named("source.parks"),
	}
}

// Name implements Source.
func (p *Parks) Name() string { return "parks" }

// Platform implements Source.
func (p *Parks) Platform() string { return model.PlatformParks }

// Fetch implements Source.
func (p *Parks) Fetch(ctx context.Context) ([]model.Event, error) {
	window := normalize.NewWindow(p.opts.now())

	var rows []parksRow
	if err := getJSON(ctx, p.client, p.opts.baseURL, &rows); err != nil {
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

	p.log.Info(ctx, "fetched parks events",
		logger.Int("rows", len(rows)),
		logger.Int("events", len(events)))
	return events, nil
}

func (p *Parks) mapRow(ctx context.Context, window normalize.Window, row parksRow) (model.Event, bool) {
	if row.Title == "" {
		metrics.RecordEventDropped("missing_name")
		return model.Event{}, false
	}

	start, err := normalize.ParseStart(row.StartDate)
	if err != nil {
		p.log.Debug(ctx, "skipping entry with unusable start date",
			logger.String("guid", row.GUID),
			logger.Error(err))
		metrics.RecordEventDropped("bad_date")
		return model.Event{}, false
	}
	if !window.Contains(start) {
		metrics.RecordEventDropped("out_of_window")
		return model.Event{}, false
	}

	location := normalize.ComposeLocation(row.Location, "", parkBorough(row.ParkIDs))
	if location == "" {
		location = "NYC Park"
	}

	description := "Free event at NYC Parks."
	if categories := strings.TrimSpace(row.Categories); categories != "" {
		description = categories + ". " + description
	}

	return normalize.Canonical(model.Event{
		Name:        row.Title,
		Date:        normalize.CivilDate(start),
		Time:        model.TimeString(parkClock(row.StartTime)),
		Location:    location,
		Description: description,
		Link:        row.Link,
		Price:       model.PriceFree,
		Platform:    model.PlatformParks,
		SourceID:    row.GUID,
	}), true
}

// parkBorough maps the leading park id character to a borough name.
// Park ids begin with the borough code, e.g. "B123" for Brooklyn.
func parkBorough(parkIDs string) string {
	ids := strings.TrimSpace(parkIDs)
	if ids == "" {
		return ""
	}
	return normalize.Borough(strings.ToUpper(ids[:1]))
}

// parkClock keeps the feed's HH:MM but uppercases the am/pm suffix.
func parkClock(startTime string) string {
	return strings.ToUpper(strings.TrimSpace(startTime))
}
