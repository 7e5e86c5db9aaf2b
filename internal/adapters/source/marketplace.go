package source

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/goodrec/nyc-ingest/internal/domain/dedupe"
	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/internal/domain/normalize"
	"github.com/goodrec/nyc-ingest/pkg/logger"
	"github.com/goodrec/nyc-ingest/pkg/metrics"
)

const (
	marketplaceMaxPages    = 10
	marketplaceParallelism = 2
	marketplacePageDelay   = time.Second

	backfillMaxPages   = 150
	backfillBatchSize  = 5
	backfillBatchDelay = 500 * time.Millisecond
)

// Marketplace scrapes the consumer events marketplace. Listings are
// embedded in the pages as JSON-LD, so the scraper harvests script
// blocks instead of walking the DOM.
type Marketplace struct {
	opts options
	log  logger.Logger
}

// NewMarketplace builds the marketplace scraper adapter.
func NewMarketplace(opts ...Option) *Marketplace {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Marketplace{
		opts: o,
		log:  logger.Get().Named("source.marketplace"),
	}
}

// Name implements Source.
func (m *Marketplace) Name() string { return "marketplace" }

// Platform implements Source.
func (m *Marketplace) Platform() string { return model.PlatformEventbrite }

// Fetch implements Source. Pages are walked in ascending waves of two
// with a courtesy delay between waves, stopping once any page comes
// back without a single listing.
func (m *Marketplace) Fetch(ctx context.Context) ([]model.Event, error) {
	maxPages := m.opts.maxPages
	if maxPages <= 0 {
		maxPages = marketplaceMaxPages
	}
	delay := m.opts.pageDelay
	if delay < 0 {
		delay = marketplacePageDelay
	}

	harvest := newPageHarvest(maxPages)
	c := m.newCollector(ctx, harvest, marketplaceParallelism)

	m.crawl(ctx, c, harvest, maxPages, marketplaceParallelism, delay, func() bool {
		return !harvest.sawEmptyPage()
	})

	if err := harvest.failure(); err != nil {
		return nil, err
	}

	window := normalize.NewWindow(m.opts.now())
	events := m.mapEvents(ctx, window, harvest.listings())

	m.log.Info(ctx, "scraped marketplace events",
		logger.Int("pages", harvest.pagesScraped()),
		logger.Int("listings", harvest.count()),
		logger.Int("events", len(events)))
	return events, nil
}

// FetchListings is the deep-crawl variant used for the restaurant
// backfill. It walks up to 150 pages in batches of five and stops when
// an entire batch comes back empty.
func (m *Marketplace) FetchListings(ctx context.Context) ([]model.Restaurant, error) {
	maxPages := m.opts.maxPages
	if maxPages <= 0 {
		maxPages = backfillMaxPages
	}
	batchSize := m.opts.batchSize
	if batchSize <= 0 {
		batchSize = backfillBatchSize
	}
	delay := m.opts.pageDelay
	if delay < 0 {
		delay = backfillBatchDelay
	}

	harvest := newPageHarvest(maxPages)
	c := m.newCollector(ctx, harvest, batchSize)

	var before int
	m.crawl(ctx, c, harvest, maxPages, batchSize, delay, func() bool {
		added := harvest.count() > before
		before = harvest.count()
		return added
	})

	if err := harvest.failure(); err != nil {
		return nil, err
	}

	restaurants := m.mapListings(harvest.listings())

	m.log.Info(ctx, "scraped marketplace listings",
		logger.Int("pages", harvest.pagesScraped()),
		logger.Int("listings", harvest.count()),
		logger.Int("restaurants", len(restaurants)))
	return restaurants, nil
}

// crawl visits pages in ascending batches of width pages each, waiting
// out every batch before asking keepGoing whether to start the next.
func (m *Marketplace) crawl(ctx context.Context, c *colly.Collector, harvest *pageHarvest, maxPages, width int, delay time.Duration, keepGoing func() bool) {
	for first := 1; first <= maxPages; first += width {
		if first > 1 {
			time.Sleep(delay)
		}
		for page := first; page < first+width && page <= maxPages; page++ {
			if err := c.Visit(pageURL(m.opts.baseURL, page)); err != nil {
				m.log.Warn(ctx, "failed to queue page",
					logger.Int("page", page),
					logger.Error(err))
			}
		}
		c.Wait()

		if !keepGoing() {
			break
		}
	}
}

// newCollector wires a colly collector that feeds harvest. Every page
// request carries the browser user agent; robots directives are
// ignored the same way a browser would.
func (m *Marketplace) newCollector(ctx context.Context, harvest *pageHarvest, parallelism int) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(browserUA),
		colly.Async(true),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(requestTimeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
	}); err != nil {
		m.log.Warn(ctx, "failed to apply crawl limits", logger.Error(err))
	}

	c.OnHTML(`script[type="application/ld+json"]`, func(e *colly.HTMLElement) {
		found := harvestEvents(json.RawMessage(e.Text))
		if len(found) == 0 {
			return
		}
		harvest.add(pageOf(e.Request.URL), found)
	})

	c.OnScraped(func(r *colly.Response) {
		page := pageOf(r.Request.URL)
		if harvest.countFor(page) == 0 {
			harvest.markEmpty(page)
		}
		harvest.pageDone()
		metrics.RecordPageScraped(m.Name())
	})

	c.OnError(func(r *colly.Response, err error) {
		m.log.Warn(ctx, "page scrape failed",
			logger.Int("page", pageOf(r.Request.URL)),
			logger.Int("status", r.StatusCode),
			logger.Error(err))
		metrics.RecordSourceError(m.Name())
		harvest.recordError(err)
	})

	return c
}

// mapEvents turns harvested listings into canonical events, dropping
// out-of-window rows and duplicate listings.
func (m *Marketplace) mapEvents(ctx context.Context, window normalize.Window, listings []ldEvent) []model.Event {
	seen := dedupe.New()
	events := make([]model.Event, 0, len(listings))

	for _, ld := range listings {
		if ld.Name == "" {
			metrics.RecordEventDropped("missing_name")
			continue
		}
		if seen.SeenAndRecord(ctx, strings.ToLower(ld.Name)+"|"+ld.StartDate) {
			metrics.RecordEventDropped("duplicate_listing")
			continue
		}

		start, err := normalize.ParseStart(ld.StartDate)
		if err != nil {
			metrics.RecordEventDropped("bad_date")
			continue
		}
		if !window.Contains(start) {
			metrics.RecordEventDropped("out_of_window")
			continue
		}

		location := normalize.ComposeLocation(
			ld.Location.Name,
			ld.Location.Address.Locality,
			normalize.Borough(ld.Location.Address.Region),
		)
		if location == "" {
			location = "New York City"
		}

		events = append(events, normalize.Canonical(model.Event{
			Name:        ld.Name,
			Date:        normalize.CivilDate(start),
			Time:        model.TimeString(normalize.Clock(start)),
			Location:    location,
			Description: ld.Description,
			Link:        ld.URL,
			Price:       normalize.OfferPrice(ld.Offers.Amount()),
			Platform:    model.PlatformEventbrite,
			SourceID:    ld.URL,
		}))
	}
	return events
}

// mapListings turns harvested listings into restaurant records keyed
// by URL. Unlike events there is no date-window cut: the upsert store
// applies its own retention.
func (m *Marketplace) mapListings(listings []ldEvent) []model.Restaurant {
	seen := make(map[string]struct{}, len(listings))
	restaurants := make([]model.Restaurant, 0, len(listings))

	for _, ld := range listings {
		if ld.URL == "" || ld.Name == "" {
			continue
		}
		if _, dup := seen[ld.URL]; dup {
			continue
		}
		seen[ld.URL] = struct{}{}

		r := model.Restaurant{
			URL:         ld.URL,
			Name:        ld.Name,
			Description: normalize.Sanitize(ld.Description),
			Venue:       ld.Location.Name,
			FullAddress: ld.Location.Address.Full(),
			Price:       normalize.OfferPrice(ld.Offers.Amount()),
			ImageURL:    ld.Image.URL,
		}
		if start, err := normalize.ParseStart(ld.StartDate); err == nil {
			r.Start = &start
		}
		if end, err := normalize.ParseStart(ld.EndDate); err == nil {
			r.End = &end
		}
		restaurants = append(restaurants, r)
	}
	return restaurants
}

// pageHarvest accumulates listings across concurrently scraped pages
// and remembers whether any page came back empty.
type pageHarvest struct {
	mu         sync.Mutex
	items      []ldEvent
	byPage     map[int]int
	scraped    int
	firstErr   error
	maxPages   int
	firstEmpty atomic.Int64
}

func newPageHarvest(maxPages int) *pageHarvest {
	h := &pageHarvest{byPage: make(map[int]int), maxPages: maxPages}
	h.firstEmpty.Store(int64(maxPages + 1))
	return h
}

func (h *pageHarvest) add(page int, found []ldEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, found...)
	h.byPage[page] += len(found)
}

func (h *pageHarvest) countFor(page int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.byPage[page]
}

func (h *pageHarvest) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

func (h *pageHarvest) pageDone() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scraped++
}

func (h *pageHarvest) pagesScraped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scraped
}

func (h *pageHarvest) listings() []ldEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.items
}

// markEmpty lowers the empty-page watermark to page.
func (h *pageHarvest) markEmpty(page int) {
	for {
		cur := h.firstEmpty.Load()
		if int64(page) >= cur {
			return
		}
		if h.firstEmpty.CompareAndSwap(cur, int64(page)) {
			return
		}
	}
}

// sawEmptyPage reports whether any scraped page yielded no listings.
func (h *pageHarvest) sawEmptyPage() bool {
	return h.firstEmpty.Load() <= int64(h.maxPages)
}

func (h *pageHarvest) recordError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.firstErr == nil {
		h.firstErr = err
	}
}

// failure returns the first page error when nothing at all was
// harvested; partial results win over partial errors.
func (h *pageHarvest) failure() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.items) == 0 && h.firstErr != nil {
		return h.firstErr
	}
	return nil
}

// pageURL appends or replaces the page query parameter on base.
func pageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// pageOf reads the page number back out of a request URL.
func pageOf(u *url.URL) int {
	page, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
