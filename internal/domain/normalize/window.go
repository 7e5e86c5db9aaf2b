package normalize

import (
	"fmt"
	"time"
)

// Window constants.
const (
	windowDays = 14 // inclusive horizon in civil days

	// dateLayout is the canonical civil-date form used everywhere an
	// event date crosses a boundary (documents, dedup keys, queries).
	dateLayout = "2006-01-02"
	// clockLayout renders "7:05 PM" style times.
	clockLayout = "3:04 PM"
)

// newYork is the civil calendar all window math runs in. Upstream feeds
// mix zoned and naive timestamps; naive ones are New York local.
var newYork = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(fmt.Sprintf("load America/New_York: %v", err))
	}
	return loc
}()

// Location returns the America/New_York location.
func Location() *time.Location { return newYork }

// Window is the inclusive publish horizon: local midnight today through
// 23:59:59.999 on today+14, New York civil days.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow computes the window containing now.
func NewWindow(now time.Time) Window {
	local := now.In(newYork)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, newYork)
	end := start.AddDate(0, 0, windowDays).
		Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)
	return Window{Start: start, End: end}
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartDate returns the window's first civil date (YYYY-MM-DD).
func (w Window) StartDate() string { return w.Start.Format(dateLayout) }

// EndDate returns the window's last civil date (YYYY-MM-DD).
func (w Window) EndDate() string { return w.End.Format(dateLayout) }

// startLayouts are tried in order by ParseStart. Naive layouts are
// interpreted in New York local time.
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ParseStart parses an event start permissively. Zoned timestamps keep
// their offset; naive ones are read as New York local time.
func ParseStart(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrNoDate
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, newYork); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// CivilDate returns the New York calendar date of t as YYYY-MM-DD.
func CivilDate(t time.Time) string {
	return t.In(newYork).Format(dateLayout)
}

// Clock returns the New York wall-clock time of t as "h:MM AM/PM".
func Clock(t time.Time) string {
	return t.In(newYork).Format(clockLayout)
}
