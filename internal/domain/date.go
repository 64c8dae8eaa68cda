package domain

import (
	"math"
	"time"
	_ "time/tzdata" // display zone must resolve on hosts without zoneinfo
)

// DisplayZone is the single zone every timestamp is rendered in
var DisplayZone = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// DetailFetcher fetches a resource's JSON detail document
type DetailFetcher func(url string) (map[string]any, error)

// DateField is the single authoritative timestamp of a node
type DateField struct {
	t     time.Time
	valid bool
}

// NewDateField derives the date from the first present candidate in
// created, completed, unlock, due, alternate order. When none is present
// and the resource has a detail URL, the detail document's created_at is
// used instead. Any failure leaves the field absent.
func NewDateField(f Fields, fetch DetailFetcher) DateField {
	for _, s := range []*string{f.CreatedAt, f.CompletedAt, f.UnlockAt, f.DueAt, f.AltDate} {
		if s != nil {
			return DateFromString(*s)
		}
	}
	if f.URL != "" && fetch != nil {
		doc, err := fetch(f.URL)
		if err != nil {
			return DateField{}
		}
		if s, ok := doc["created_at"].(string); ok {
			return DateFromString(s)
		}
	}
	return DateField{}
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// DateFromString parses an ISO-8601 timestamp. Timestamps without an
// offset are read in the display zone.
func DateFromString(s string) DateField {
	for i, layout := range isoLayouts {
		var (
			t   time.Time
			err error
		)
		if i < 2 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, DisplayZone)
		}
		if err == nil {
			return DateAt(t)
		}
	}
	return DateField{}
}

// DateAt wraps an explicit instant
func DateAt(t time.Time) DateField {
	return DateField{t: t.In(DisplayZone), valid: true}
}

// Time returns the timestamp in the display zone
func (d DateField) Time() (time.Time, bool) { return d.t, d.valid }

// IsZero reports whether the field is absent
func (d DateField) IsZero() bool { return !d.valid }

// Label renders the date relative to now
func (d DateField) Label(now time.Time) string {
	if !d.valid {
		return ""
	}
	now = now.In(DisplayZone)
	y, m, day := d.t.Date()
	var dayString string
	switch {
	case sameDay(y, m, day, now):
		dayString = "Today"
	case sameDay(y, m, day, now.AddDate(0, 0, -1)):
		dayString = "Yesterday"
	default:
		dayString = d.t.Format("Jan 2, 2006")
	}
	return dayString + " at " + d.t.Format("3:04 PM")
}

// SmartLabel is Label against the current time
func (d DateField) SmartLabel() string { return d.Label(time.Now()) }

func sameDay(y int, m time.Month, d int, t time.Time) bool {
	ty, tm, td := t.Date()
	return y == ty && m == tm && d == td
}

// SortKey is the unix time; an absent date sorts as the minimum
func (d DateField) SortKey() int64 {
	if !d.valid {
		return math.MinInt64
	}
	return d.t.Unix()
}
