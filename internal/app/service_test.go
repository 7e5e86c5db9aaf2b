package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goodrec/nyc-ingest/internal/adapters/repository"
	"github.com/goodrec/nyc-ingest/internal/adapters/source"
	service "github.com/goodrec/nyc-ingest/internal/app"
	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeSource struct {
	name     string
	platform string
	events   []model.Event
	err      error
}

func (f *fakeSource) Name() string     { return f.name }
func (f *fakeSource) Platform() string { return f.platform }

func (f *fakeSource) Fetch(_ context.Context) ([]model.Event, error) {
	return f.events, f.err
}

type fakePublisher struct {
	mu       sync.Mutex
	calls    int
	received []model.Event
	err      error
}

func (f *fakePublisher) PublishSnapshot(_ context.Context, events []model.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.received = append([]model.Event(nil), events...)
	if f.err != nil {
		return 0, f.err
	}
	return len(events), nil
}

type fakeListings struct {
	records []model.Restaurant
	err     error
}

func (f *fakeListings) FetchListings(_ context.Context) ([]model.Restaurant, error) {
	return f.records, f.err
}

type fakeWriter struct {
	upserted    []model.Restaurant
	upsertCalls int
	upsertErr   error
	stats       repository.UpsertStats
	cutoff      time.Time
	purgeCalls  int
	purgeErr    error
	purged      int64
}

func (f *fakeWriter) UpsertRestaurants(_ context.Context, restaurants []model.Restaurant) (repository.UpsertStats, error) {
	f.upsertCalls++
	f.upserted = append([]model.Restaurant(nil), restaurants...)
	if f.upsertErr != nil {
		return repository.UpsertStats{}, f.upsertErr
	}
	return f.stats, nil
}

func (f *fakeWriter) PurgeStale(_ context.Context, olderThan time.Time) (int64, error) {
	f.purgeCalls++
	f.cutoff = olderThan
	return f.purged, f.purgeErr
}

type fakeReader struct {
	events      int64
	eventVals   map[string][]string
	restaurants int64
	restVals    map[string][]string
	err         error
}

func (f *fakeReader) CountEvents(_ context.Context) (int64, error) {
	return f.events, f.err
}

func (f *fakeReader) DistinctEventValues(_ context.Context, field string) ([]string, error) {
	return f.eventVals[field], f.err
}

func (f *fakeReader) CountRestaurants(_ context.Context) (int64, error) {
	return f.restaurants, f.err
}

func (f *fakeReader) DistinctRestaurantValues(_ context.Context, field string) ([]string, error) {
	return f.restVals[field], f.err
}

type fakeFacets struct {
	vocab source.FacetVocabularies
	err   error
}

func (f *fakeFacets) Fetch(_ context.Context) (source.FacetVocabularies, error) {
	return f.vocab, f.err
}

func testEvent(name, date, platform string) model.Event {
	return model.Event{
		Name:        name,
		Date:        date,
		Location:    "New York City",
		Description: name + ". Check " + platform + " for full details.",
		Link:        "https://example.org/" + strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Price:       model.PriceCheckSource,
		Source:      model.Source,
		Platform:    platform,
		IsActive:    true,
	}
}

func TestService_RunEvents(t *testing.T) {
	Convey("Given healthy sources with an overlapping event", t, func() {
		pub := &fakePublisher{}
		openData := &fakeSource{name: "permitted", platform: model.PlatformOpenData, events: []model.Event{
			testEvent("Harlem Week", "2026-03-12", model.PlatformOpenData),
			testEvent("Street Fair", "2026-03-14", model.PlatformOpenData),
		}}
		marketplace := &fakeSource{name: "marketplace", platform: model.PlatformEventbrite, events: []model.Event{
			testEvent("HARLEM WEEK", "2026-03-12", model.PlatformEventbrite),
			testEvent("Rooftop Jazz", "2026-03-13", model.PlatformEventbrite),
		}}
		svc := service.New(
			service.WithSources([]source.Source{openData, marketplace}),
			service.WithEventPublisher(pub),
		)

		Convey("When running the event job", func() {
			err := svc.RunEvents(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the union should publish once in registry order", func() {
				So(pub.calls, ShouldEqual, 1)
				So(pub.received, ShouldHaveLength, 3)
				So(pub.received[0].Name, ShouldEqual, "Harlem Week")
				So(pub.received[1].Name, ShouldEqual, "Street Fair")
				So(pub.received[2].Name, ShouldEqual, "Rooftop Jazz")
			})

			Convey("And the earlier source should win the duplicate key", func() {
				for _, ev := range pub.received {
					if strings.EqualFold(ev.Name, "Harlem Week") {
						So(ev.Platform, ShouldEqual, model.PlatformOpenData)
					}
				}
			})
		})
	})

	Convey("Given one failing source among healthy ones", t, func() {
		pub := &fakePublisher{}
		healthy := &fakeSource{name: "parks", platform: model.PlatformParks, events: []model.Event{
			testEvent("Yoga in the Park", "2026-03-13", model.PlatformParks),
		}}
		silent := &fakeSource{name: "ticketing", platform: model.PlatformTicketmaster}
		broken := &fakeSource{name: "permitted", platform: model.PlatformOpenData, err: errors.New("upstream 500")}
		svc := service.New(
			service.WithSources([]source.Source{broken, healthy, silent}),
			service.WithEventPublisher(pub),
		)

		Convey("When running the event job", func() {
			err := svc.RunEvents(context.Background())

			Convey("Then the failure should cost only its own slice", func() {
				So(err, ShouldBeNil)
				So(pub.calls, ShouldEqual, 1)
				So(pub.received, ShouldHaveLength, 1)
				So(pub.received[0].Name, ShouldEqual, "Yoga in the Park")
			})
		})
	})

	Convey("Given sources with nothing in window", t, func() {
		pub := &fakePublisher{}
		svc := service.New(
			service.WithSources([]source.Source{
				&fakeSource{name: "permitted", platform: model.PlatformOpenData},
				&fakeSource{name: "parks", platform: model.PlatformParks},
			}),
			service.WithEventPublisher(pub),
		)

		Convey("When running the event job", func() {
			err := svc.RunEvents(context.Background())

			Convey("Then the publisher should never be touched", func() {
				So(err, ShouldBeNil)
				So(pub.calls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a publisher that fails", t, func() {
		pub := &fakePublisher{err: errors.New("insert failed")}
		svc := service.New(
			service.WithSources([]source.Source{
				&fakeSource{name: "parks", platform: model.PlatformParks, events: []model.Event{
					testEvent("Nature Walk", "2026-03-15", model.PlatformParks),
				}},
			}),
			service.WithEventPublisher(pub),
		)

		Convey("When running the event job", func() {
			err := svc.RunEvents(context.Background())

			Convey("Then the run should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "publish snapshot")
			})
		})
	})

	Convey("Given no publisher at all", t, func() {
		svc := service.New(
			service.WithSources([]source.Source{
				&fakeSource{name: "parks", platform: model.PlatformParks, events: []model.Event{
					testEvent("Nature Walk", "2026-03-15", model.PlatformParks),
				}},
			}),
		)

		Convey("When running the event job", func() {
			err := svc.RunEvents(context.Background())

			Convey("Then the dry run should still succeed", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestService_RunRestaurants(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	frozen := func() time.Time { return now }

	Convey("Given scraped listings and a working store", t, func() {
		fetcher := &fakeListings{records: []model.Restaurant{
			{URL: "https://www.eventbrite.com/e/supper-1", Name: "Supper Club"},
			{URL: "https://www.eventbrite.com/e/oyster-2", Name: "Oyster Hour"},
		}}
		writer := &fakeWriter{stats: repository.UpsertStats{Matched: 1, Modified: 1, Upserted: 1}, purged: 4}
		svc := service.New(
			service.WithListingFetcher(fetcher),
			service.WithRestaurantWriter(writer),
			service.WithClock(frozen),
		)

		Convey("When running the restaurant job", func() {
			err := svc.RunRestaurants(context.Background())
			So(err, ShouldBeNil)

			Convey("Then every record should be upserted", func() {
				So(writer.upsertCalls, ShouldEqual, 1)
				So(writer.upserted, ShouldHaveLength, 2)
				So(writer.upserted[0].URL, ShouldEqual, "https://www.eventbrite.com/e/supper-1")
			})

			Convey("And the purge cutoff should sit 21 days back", func() {
				So(writer.purgeCalls, ShouldEqual, 1)
				So(writer.cutoff.Equal(now.Add(-21*24*time.Hour)), ShouldBeTrue)
			})
		})

		Convey("When the retention is overridden", func() {
			short := service.New(
				service.WithListingFetcher(fetcher),
				service.WithRestaurantWriter(writer),
				service.WithClock(frozen),
				service.WithRetention(7*24*time.Hour),
			)
			err := short.RunRestaurants(context.Background())

			Convey("Then the cutoff should move accordingly", func() {
				So(err, ShouldBeNil)
				So(writer.cutoff.Equal(now.Add(-7*24*time.Hour)), ShouldBeTrue)
			})
		})
	})

	Convey("Given an empty crawl", t, func() {
		writer := &fakeWriter{}
		svc := service.New(
			service.WithListingFetcher(&fakeListings{}),
			service.WithRestaurantWriter(writer),
		)

		Convey("When running the restaurant job", func() {
			err := svc.RunRestaurants(context.Background())

			Convey("Then the collection should be left untouched", func() {
				So(err, ShouldBeNil)
				So(writer.upsertCalls, ShouldEqual, 0)
				So(writer.purgeCalls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a failing crawl", t, func() {
		writer := &fakeWriter{}
		svc := service.New(
			service.WithListingFetcher(&fakeListings{err: errors.New("blocked")}),
			service.WithRestaurantWriter(writer),
		)

		Convey("When running the restaurant job", func() {
			err := svc.RunRestaurants(context.Background())

			Convey("Then the run should fail without touching the store", func() {
				So(err, ShouldNotBeNil)
				So(writer.upsertCalls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given an upsert failure", t, func() {
		writer := &fakeWriter{upsertErr: errors.New("duplicate key")}
		svc := service.New(
			service.WithListingFetcher(&fakeListings{records: []model.Restaurant{
				{URL: "https://www.eventbrite.com/e/supper-1", Name: "Supper Club"},
			}}),
			service.WithRestaurantWriter(writer),
		)

		Convey("When running the restaurant job", func() {
			err := svc.RunRestaurants(context.Background())

			Convey("Then the purge should not run", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "upsert restaurants")
				So(writer.purgeCalls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given no listing fetcher", t, func() {
		svc := service.New()

		Convey("When running the restaurant job", func() {
			err := svc.RunRestaurants(context.Background())

			Convey("Then the wiring error should surface", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given listings but no store", t, func() {
		svc := service.New(
			service.WithListingFetcher(&fakeListings{records: []model.Restaurant{
				{URL: "https://www.eventbrite.com/e/supper-1", Name: "Supper Club"},
			}}),
		)

		Convey("When running the restaurant job", func() {
			err := svc.RunRestaurants(context.Background())

			Convey("Then the dry run should still succeed", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestService_RunExtract(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	frozen := func() time.Time { return now }

	Convey("Given a populated store and reachable facet origins", t, func() {
		dir := t.TempDir()
		reader := &fakeReader{
			events: 5,
			eventVals: map[string][]string{
				"name":        {"Jazz Night"},
				"description": {"Live jazz tonight"},
				"platform":    {"Eventbrite"},
				"location":    {"Blue Room — East Village"},
			},
			restaurants: 2,
			restVals: map[string][]string{
				"cuisineDescription": {"Italian"},
				"priceLevel":         {"$$"},
				"source":             {"eventbrite"},
			},
		}
		facets := &fakeFacets{vocab: source.FacetVocabularies{
			EventTypes: []string{"Parade"},
			Boroughs:   []string{"Manhattan"},
		}}
		svc := service.New(
			service.WithCatalogReader(reader),
			service.WithFacetFetcher(facets),
			service.WithDataDir(dir),
			service.WithClock(frozen),
		)

		Convey("When running the extract job", func() {
			err := svc.RunExtract(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the category catalog should land on disk", func() {
				doc := readArtifact(dir, "event_categories.json")
				So(doc["totalEvents"], ShouldEqual, 5)
				So(doc["platforms"], ShouldResemble, []any{"Eventbrite"})
				So(doc["categories"], ShouldContain, "jazz")
			})

			Convey("And the upstream filters should land on disk", func() {
				doc := readArtifact(dir, "event_filters.json")
				So(doc["eventTypes"], ShouldResemble, []any{"Parade"})
				So(doc["boroughs"], ShouldResemble, []any{"Manhattan"})
				So(doc["generatedAt"], ShouldNotBeEmpty)
			})

			Convey("And the restaurant filters should land on disk", func() {
				doc := readArtifact(dir, "restaurant_filters.json")
				So(doc["totalRestaurants"], ShouldEqual, 2)
				So(doc["cuisines"], ShouldResemble, []any{"Italian"})
			})
		})
	})

	Convey("Given facet origins that fail", t, func() {
		dir := t.TempDir()
		reader := &fakeReader{events: 1, eventVals: map[string][]string{}, restVals: map[string][]string{}}
		svc := service.New(
			service.WithCatalogReader(reader),
			service.WithFacetFetcher(&fakeFacets{err: errors.New("socrata down")}),
			service.WithDataDir(dir),
		)

		Convey("When running the extract job", func() {
			err := svc.RunExtract(context.Background())

			Convey("Then the run should fail but keep the other artifacts", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "1 failed artifact")
				_, statErr := os.Stat(filepath.Join(dir, "event_categories.json"))
				So(statErr, ShouldBeNil)
				_, statErr = os.Stat(filepath.Join(dir, "event_filters.json"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})

	Convey("Given no document store", t, func() {
		dir := t.TempDir()
		svc := service.New(
			service.WithFacetFetcher(&fakeFacets{vocab: source.FacetVocabularies{EventTypes: []string{"Parade"}}}),
			service.WithDataDir(dir),
		)

		Convey("When running the extract job", func() {
			err := svc.RunExtract(context.Background())

			Convey("Then only the upstream filters should refresh", func() {
				So(err, ShouldBeNil)
				_, statErr := os.Stat(filepath.Join(dir, "event_filters.json"))
				So(statErr, ShouldBeNil)
				_, statErr = os.Stat(filepath.Join(dir, "event_categories.json"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}

func TestRunPeriodically(t *testing.T) {
	Convey("Given a job function", t, func() {
		Convey("When the interval is zero", func() {
			calls := 0
			err := service.RunPeriodically(context.Background(), 0, func(context.Context) error {
				calls++
				return nil
			})

			Convey("Then it should run exactly once", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 1)
			})
		})

		Convey("When the first run fails", func() {
			boom := errors.New("boom")
			err := service.RunPeriodically(context.Background(), time.Minute, func(context.Context) error {
				return boom
			})

			Convey("Then the error should propagate", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When the interval is positive", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			var calls atomic.Int32
			err := service.RunPeriodically(ctx, 5*time.Millisecond, func(context.Context) error {
				if calls.Add(1) >= 3 {
					cancel()
				}
				return nil
			})

			Convey("Then it should keep running until the context ends", func() {
				So(err, ShouldBeNil)
				So(calls.Load(), ShouldBeGreaterThanOrEqualTo, 3)
			})
		})

		Convey("When a later run fails", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			runs := 0
			err := service.RunPeriodically(ctx, 5*time.Millisecond, func(context.Context) error {
				runs++
				if runs >= 2 {
					cancel()
					return errors.New("later failure")
				}
				return nil
			})

			Convey("Then the schedule should swallow it", func() {
				So(err, ShouldBeNil)
				So(runs, ShouldBeGreaterThanOrEqualTo, 2)
			})
		})
	})
}

func readArtifact(dir, name string) map[string]any {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	So(err, ShouldBeNil)
	var doc map[string]any
	So(json.Unmarshal(raw, &doc), ShouldBeNil)
	return doc
}
