package normalize_test

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

// priceEnum is the full set of legal price strings.
var priceEnum = regexp.MustCompile(`^(Free|Check source|Check site|\$\d+(\.\d+)?( - \$\d+(\.\d+)?)?)$`)

func TestWindow(t *testing.T) {
	Convey("Given the publish window", t, func() {
		ny := normalize.Location()
		now := time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)
		w := normalize.NewWindow(now)

		Convey("When computing the bounds", func() {
			Convey("Then the window should start at local midnight today", func() {
				So(w.Start.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, ny)), ShouldBeTrue)
				So(w.StartDate(), ShouldEqual, "2026-03-10")
			})

			Convey("And it should end at the last instant of today+14", func() {
				So(w.EndDate(), ShouldEqual, "2026-03-24")
				So(w.Contains(time.Date(2026, 3, 24, 23, 59, 59, 0, ny)), ShouldBeTrue)
				So(w.Contains(time.Date(2026, 3, 25, 0, 0, 0, 0, ny)), ShouldBeFalse)
			})
		})

		Convey("When checking membership", func() {
			Convey("Then today at midnight is inside", func() {
				So(w.Contains(w.Start), ShouldBeTrue)
			})

			Convey("And yesterday is outside", func() {
				So(w.Contains(time.Date(2026, 3, 9, 12, 0, 0, 0, ny)), ShouldBeFalse)
			})

			Convey("And a zoned instant is judged by its New York civil day", func() {
				// 03:00 UTC on the 25th is still 23:00 on the 24th in NY.
				So(w.Contains(time.Date(2026, 3, 25, 3, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When the window spans the spring-forward transition", func() {
			w := normalize.NewWindow(time.Date(2026, 3, 1, 12, 0, 0, 0, ny))

			Convey("Then civil-day arithmetic should hold", func() {
				So(w.StartDate(), ShouldEqual, "2026-03-01")
				So(w.EndDate(), ShouldEqual, "2026-03-15")
			})
		})
	})
}

func TestParseStart(t *testing.T) {
	Convey("Given permissive start parsing", t, func() {
		Convey("When parsing a zoned RFC3339 timestamp", func() {
			ts, err := normalize.ParseStart("2026-08-24T20:00:00-05:00")

			So(err, ShouldBeNil)
			So(normalize.CivilDate(ts), ShouldEqual, "2026-08-24")
		})

		Convey("When parsing a naive timestamp with milliseconds", func() {
			ts, err := normalize.ParseStart("2026-08-24T18:30:00.000")

			So(err, ShouldBeNil)
			So(normalize.CivilDate(ts), ShouldEqual, "2026-08-24")
			So(normalize.Clock(ts), ShouldEqual, "6:30 PM")
		})

		Convey("When parsing a naive timestamp without milliseconds", func() {
			ts, err := normalize.ParseStart("2026-08-24T09:05:00")

			So(err, ShouldBeNil)
			So(normalize.Clock(ts), ShouldEqual, "9:05 AM")
		})

		Convey("When parsing a bare date", func() {
			ts, err := normalize.ParseStart("2026-08-24")

			So(err, ShouldBeNil)
			So(normalize.CivilDate(ts), ShouldEqual, "2026-08-24")
		})

		Convey("When the date is empty", func() {
			_, err := normalize.ParseStart("")

			So(errors.Is(err, normalize.ErrNoDate), ShouldBeTrue)
		})

		Convey("When the date is garbage", func() {
			_, err := normalize.ParseStart("next Tuesday-ish")

			So(errors.Is(err, normalize.ErrBadDate), ShouldBeTrue)
		})
	})
}

func TestClock(t *testing.T) {
	Convey("Given clock formatting", t, func() {
		ny := normalize.Location()

		Convey("When formatting an evening time", func() {
			So(normalize.Clock(time.Date(2026, 8, 24, 19, 5, 0, 0, ny)), ShouldEqual, "7:05 PM")
		})

		Convey("When formatting a morning time", func() {
			So(normalize.Clock(time.Date(2026, 8, 24, 7, 0, 0, 0, ny)), ShouldEqual, "7:00 AM")
		})

		Convey("When the instant is zoned elsewhere", func() {
			// 23:05 UTC in August is 19:05 in New York.
			So(normalize.Clock(time.Date(2026, 8, 24, 23, 5, 0, 0, time.UTC)), ShouldEqual, "7:05 PM")
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("Given text sanitation", t, func() {
		Convey("When stripping HTML", func() {
			So(normalize.Sanitize("<p>Live <b>jazz</b> tonight</p>"), ShouldEqual, "Live jazz tonight")
		})

		Convey("When decoding entities", func() {
			So(normalize.Sanitize("Dogs &amp; cats"), ShouldEqual, "Dogs & cats")
		})

		Convey("When collapsing whitespace", func() {
			So(normalize.Sanitize("  a \n\t b  c  "), ShouldEqual, "a b c")
		})

		Convey("When the input is already clean", func() {
			clean := "Blue Room — East Village"

			So(normalize.Sanitize(clean), ShouldEqual, clean)
		})

		Convey("Then sanitation should be idempotent", func() {
			inputs := []string{
				"<div>Outdoor&nbsp;movie<br/>night</div>",
				"plain text",
				"  spaced   out  ",
				"Rock &amp; Roll",
				"",
			}
			for _, in := range inputs {
				once := normalize.Sanitize(in)
				So(normalize.Sanitize(once), ShouldEqual, once)
			}
		})
	})
}

func TestDescribe(t *testing.T) {
	Convey("Given description shaping", t, func() {
		Convey("When the description fits", func() {
			out := normalize.Describe("Short and sweet.", "X", "NYC Parks")

			So(out, ShouldEqual, "Short and sweet.")
		})

		Convey("When the description overflows", func() {
			long := strings.Repeat("a", 400)
			out := normalize.Describe(long, "X", "NYC Parks")

			So(len(out), ShouldEqual, 150)
			So(strings.HasSuffix(out, "..."), ShouldBeTrue)
		})

		Convey("When the description is exactly at the bound", func() {
			exact := strings.Repeat("b", 150)
			out := normalize.Describe(exact, "X", "NYC Parks")

			So(out, ShouldEqual, exact)
		})

		Convey("When the description is empty", func() {
			out := normalize.Describe("", "Night Market", "Eventbrite")

			So(out, ShouldEqual, "Night Market. Check Eventbrite for full details.")
		})

		Convey("When the description is only markup", func() {
			out := normalize.Describe("<br/> \n <p></p>", "Night Market", "Eventbrite")

			So(out, ShouldEqual, "Night Market. Check Eventbrite for full details.")
		})

		Convey("Then shaping should be idempotent", func() {
			inputs := []string{
				strings.Repeat("long ", 80),
				"<b>bold</b> claim",
				"",
			}
			for _, in := range inputs {
				once := normalize.Describe(in, "Night Market", "Eventbrite")
				So(normalize.Describe(once, "Night Market", "Eventbrite"), ShouldEqual, once)
				So(len([]rune(once)), ShouldBeLessThanOrEqualTo, 150)
			}
		})
	})
}

func TestComposeLocation(t *testing.T) {
	Convey("Given location composition", t, func() {
		Convey("When all parts are present", func() {
			out := normalize.ComposeLocation("Blue Room", "East Village", "Manhattan")

			So(out, ShouldEqual, "Blue Room — East Village, Manhattan")
		})

		Convey("When the neighborhood is missing the borough is promoted", func() {
			out := normalize.ComposeLocation("Prospect Park", "", "Brooklyn")

			So(out, ShouldEqual, "Prospect Park — Brooklyn")
		})

		Convey("When the borough slot holds state noise it is suppressed", func() {
			So(normalize.ComposeLocation("Blue Room", "East Village", "NY"), ShouldEqual, "Blue Room — East Village")
			So(normalize.ComposeLocation("Blue Room", "East Village", "New York"), ShouldEqual, "Blue Room — East Village")
		})

		Convey("When only the venue is known", func() {
			So(normalize.ComposeLocation("Blue Room", "", ""), ShouldEqual, "Blue Room")
		})

		Convey("When only the borough is known", func() {
			So(normalize.ComposeLocation("", "", "Queens"), ShouldEqual, "Queens")
		})

		Convey("When the neighborhood repeats the borough", func() {
			So(normalize.ComposeLocation("Venue", "Brooklyn", "Brooklyn"), ShouldEqual, "Venue — Brooklyn")
		})

		Convey("When nothing is known", func() {
			So(normalize.ComposeLocation("", "", ""), ShouldEqual, "")
		})
	})
}

func TestBorough(t *testing.T) {
	Convey("Given borough normalization", t, func() {
		Convey("When mapping single-letter codes", func() {
			So(normalize.Borough("M"), ShouldEqual, "Manhattan")
			So(normalize.Borough("B"), ShouldEqual, "Brooklyn")
			So(normalize.Borough("Q"), ShouldEqual, "Queens")
			So(normalize.Borough("X"), ShouldEqual, "Bronx")
			So(normalize.Borough("R"), ShouldEqual, "Staten Island")
		})

		Convey("When mapping full names in any case", func() {
			So(normalize.Borough("BROOKLYN"), ShouldEqual, "Brooklyn")
			So(normalize.Borough("the bronx"), ShouldEqual, "Bronx")
		})

		Convey("When the value is unknown it passes through", func() {
			So(normalize.Borough("Hoboken"), ShouldEqual, "Hoboken")
		})

		Convey("When the value is empty", func() {
			So(normalize.Borough(""), ShouldEqual, "")
		})
	})
}

func TestPrices(t *testing.T) {
	Convey("Given price mapping", t, func() {
		Convey("When mapping marketplace offers", func() {
			So(normalize.OfferPrice("0.00"), ShouldEqual, "Free")
			So(normalize.OfferPrice("0"), ShouldEqual, "Free")
			So(normalize.OfferPrice("35.00"), ShouldEqual, "$35.00")
			So(normalize.OfferPrice("$25"), ShouldEqual, "$25")
			So(normalize.OfferPrice(""), ShouldEqual, "Check site")
			So(normalize.OfferPrice("donation"), ShouldEqual, "Check site")
		})

		Convey("When mapping ticketing ranges", func() {
			So(normalize.RangePrice(35, 35), ShouldEqual, "$35")
			So(normalize.RangePrice(29.5, 120), ShouldEqual, "$29.5 - $120")
		})

		Convey("Then every mapped price should match the enum", func() {
			offers := []string{"0.00", "0", "12", "12.50", "$99", "", "tbd", "-5"}
			for _, o := range offers {
				So(priceEnum.MatchString(normalize.OfferPrice(o)), ShouldBeTrue)
			}
			So(priceEnum.MatchString(normalize.RangePrice(10, 10)), ShouldBeTrue)
			So(priceEnum.MatchString(normalize.RangePrice(10, 95.25)), ShouldBeTrue)
		})
	})
}

func TestCanonical(t *testing.T) {
	Convey("Given event canonicalization", t, func() {
		Convey("When an adapter forgets the defaults", func() {
			e := normalize.Canonical(model.Event{
				Name:     "Test Event",
				Date:     "2026-08-25",
				Platform: model.PlatformOpenData,
			})

			Convey("Then the brand tag and active flag should be set", func() {
				So(e.Source, ShouldEqual, "GoodRec")
				So(e.IsActive, ShouldBeTrue)
				So(e.Price, ShouldEqual, "Check source")
			})

			Convey("And the empty description should be synthesized", func() {
				So(e.Description, ShouldEqual, "Test Event. Check NYC Open Data for full details.")
			})
		})

		Convey("When the time field holds an empty string", func() {
			e := normalize.Canonical(model.Event{
				Name:     "X",
				Platform: model.PlatformParks,
				Time:     model.TimeString("  "),
			})

			So(e.Time, ShouldBeNil)
		})

		Convey("Then canonicalization should be a fixpoint", func() {
			samples := []model.Event{
				{Name: " Jazz  Night ", Description: "<p>live &amp; loud</p>", Platform: model.PlatformEventbrite, Price: "Free"},
				{Name: "Parade", Description: strings.Repeat("x", 300), Platform: model.PlatformOpenData},
				{Name: "Yoga", Platform: model.PlatformParks, Time: model.TimeString("7:00 AM"), Price: "Free"},
			}
			for _, s := range samples {
				once := normalize.Canonical(s)
				So(normalize.Canonical(once), ShouldResemble, once)
			}
		})
	})
}
