package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for the derived scrape date.
const DateLayout = "2006-01-02"

// scrapedAtLayouts are accepted forms for the scrape timestamp, most
// specific first. The scraper emits local ISO-8601 without a zone; layouts
// without a zone keep the wall-clock value as given.
var scrapedAtLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// RawRecord is one scraped observation as produced by the scraper
// collaborator. Measurement fields are pointers: a nil field was missing
// from the source row, which is distinct from present-but-unparseable text.
type RawRecord struct {
	City        string
	TimeText    string
	Temperature *string
	Condition   *string
	Wind        *string
	Humidity    *string
	ScrapedAt   time.Time
}

// Key returns the full-tuple identity of a raw row, used for exact-duplicate
// filtering. Two rows are duplicates only when every field is identical.
func (r RawRecord) Key() string {
	deref := func(p *string) string {
		if p == nil {
			return "\x00"
		}
		return *p
	}
	return strings.Join([]string{
		r.City,
		r.TimeText,
		deref(r.Temperature),
		deref(r.Condition),
		deref(r.Wind),
		deref(r.Humidity),
		r.ScrapedAt.Format(time.RFC3339Nano),
	}, "\x1f")
}

// ParseScrapedAt parses a scrape timestamp in any accepted layout.
func ParseScrapedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range scrapedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized scrape timestamp %q", s)
}

// CleanedRecord is a RawRecord after tolerant parsing and unit derivation.
// Numeric fields are nil when the source text was missing or unparseable.
type CleanedRecord struct {
	City         string
	TimeText     string
	TimeLabel    string
	TemperatureF *int
	TemperatureC *float64
	Condition    *string
	WindMph      *int
	WindKmh      *float64
	HumidityPct  *int
	ScrapedAt    time.Time
	ScrapedDate  string
}

// Empty reports whether all three numeric measurements are absent.
// Such a record carries no measurable signal and is not worth retaining.
func (c CleanedRecord) Empty() bool {
	return c.TemperatureF == nil && c.WindMph == nil && c.HumidityPct == nil
}

// InsertSummary itemizes the outcome of one batch insert against the store:
// rows newly persisted, rows skipped by the uniqueness constraint, and rows
// rejected for any other reason.
type InsertSummary struct {
	Inserted   int
	Duplicates int
	Failed     int
}

// StoredRecord is a CleanedRecord persisted with a store-assigned surrogate
// identifier and creation timestamp. Readers receive copies; rows are never
// updated after insert.
type StoredRecord struct {
	ID        int64
	CreatedAt time.Time
	CleanedRecord
}
