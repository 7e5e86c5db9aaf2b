package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/goodrec/nyc-ingest/internal/domain/dedupe"
	"github.com/goodrec/nyc-ingest/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDeduper(t *testing.T) {
	Convey("Given a new deduper", t, func() {
		Convey("When creating with default options", func() {
			d := dedupe.New()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.New()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(context.Background(), "jazz night|2026-08-24")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(context.Background(), "jazz night|2026-08-24")
				seen := d.SeenAndRecord(context.Background(), "jazz night|2026-08-24")

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the same name falls on two dates", func() {
				So(d.SeenAndRecord(context.Background(), "jazz night|2026-08-24"), ShouldBeFalse)
				So(d.SeenAndRecord(context.Background(), "jazz night|2026-08-25"), ShouldBeFalse)

				Convey("Then both keys should be recorded", func() {
					So(d.Size(), ShouldEqual, 2)
				})
			})
		})

		Convey("When unrecording keys", func() {
			d := dedupe.New()

			Convey("And the key exists", func() {
				d.SeenAndRecord(context.Background(), "parade|2026-08-30")
				d.Unrecord(context.Background(), "parade|2026-08-30")

				Convey("Then the slot should reopen", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(context.Background(), "parade|2026-08-30"), ShouldBeFalse)
				})
			})

			Convey("And the key doesn't exist", func() {
				d.Unrecord(context.Background(), "nonexistent")

				Convey("Then size should be unaffected", func() {
					So(d.Size(), ShouldEqual, 0)
				})
			})
		})

		Convey("When bounded with a max size", func() {
			d := dedupe.New(dedupe.WithMaxSize(3))

			for i := 0; i < 3; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", i))
			}

			Convey("And one more key arrives", func() {
				d.SeenAndRecord(context.Background(), "key-3")

				Convey("Then the oldest key should have been evicted", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(context.Background(), "key-0"), ShouldBeFalse)
				})
			})

			Convey("And unrecord works in bounded mode too", func() {
				d.Unrecord(context.Background(), "key-1")

				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(context.Background(), "key-1"), ShouldBeFalse)
			})
		})
	})
}

func TestFirstSeenWins(t *testing.T) {
	Convey("Given events concatenated in fixed source order", t, func() {
		events := []model.Event{
			{Name: "Halloween Parade", Date: "2026-10-31", Platform: model.PlatformOpenData},
			{Name: "Yoga in the Park", Date: "2026-08-26", Platform: model.PlatformParks},
			{Name: "halloween parade", Date: "2026-10-31", Platform: model.PlatformEventbrite},
			{Name: "Jazz Night", Date: "2026-08-25", Platform: model.PlatformTicketmaster},
		}

		Convey("When walking them through the deduper", func() {
			d := dedupe.New()
			var kept []model.Event
			for _, e := range events {
				if d.SeenAndRecord(context.Background(), e.Key()) {
					continue
				}
				kept = append(kept, e)
			}

			Convey("Then the earlier source should win the collision", func() {
				So(len(kept), ShouldEqual, 3)
				So(kept[0].Platform, ShouldEqual, model.PlatformOpenData)
				for _, e := range kept {
					So(e.Name, ShouldNotEqual, "halloween parade")
				}
			})
		})
	})
}

func TestDeduperConcurrency(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		d := dedupe.New()
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", i))
				}
			}(g)
		}
		wg.Wait()

		Convey("Then each distinct key should be recorded exactly once", func() {
			So(d.Size(), ShouldEqual, 200)
		})
	})
}
