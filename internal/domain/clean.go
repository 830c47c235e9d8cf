package domain

import "strings"

// FieldIssue records one measurement field that could not be parsed while
// cleaning a row. Issues are diagnostic only; they never abort the batch.
type FieldIssue struct {
	Field  string
	Reason string
}

// Clean converts a raw observation into a typed record: each measurement
// field is parsed tolerantly, derived units are computed from the parsed
// values, and the time label is normalized. The returned keep flag is false
// when all three numeric fields came out absent; such rows carry nothing
// worth persisting.
func Clean(raw RawRecord) (CleanedRecord, []FieldIssue, bool) {
	rec := CleanedRecord{
		City:        raw.City,
		TimeText:    raw.TimeText,
		TimeLabel:   NormalizeTimeLabel(raw.TimeText),
		ScrapedAt:   raw.ScrapedAt,
		ScrapedDate: ScrapeDate(raw.ScrapedAt),
	}

	var issues []FieldIssue

	if res := ParseTemperature(raw.Temperature); res.Present {
		f := res.Value
		c := CelsiusFromFahrenheit(f)
		rec.TemperatureF = &f
		rec.TemperatureC = &c
	} else if raw.Temperature != nil {
		issues = append(issues, FieldIssue{Field: "temperature", Reason: res.Reason})
	}

	if res := ParseWind(raw.Wind); res.Present {
		mph := res.Value
		kmh := KmhFromMph(mph)
		rec.WindMph = &mph
		rec.WindKmh = &kmh
	} else if raw.Wind != nil {
		issues = append(issues, FieldIssue{Field: "wind", Reason: res.Reason})
	}

	if res := ParseHumidity(raw.Humidity); res.Present {
		pct := res.Value
		rec.HumidityPct = &pct
	} else if raw.Humidity != nil {
		issues = append(issues, FieldIssue{Field: "humidity", Reason: res.Reason})
	}

	if raw.Condition != nil {
		if cond := strings.TrimSpace(*raw.Condition); cond != "" {
			rec.Condition = &cond
		}
	}

	return rec, issues, !rec.Empty()
}

// NormalizeTimeLabel reduces a scraped time cell to a compact label: the
// first line only, interior whitespace collapsed, am/pm lowercased.
// "1:00 pm\nWed, Aug 27" becomes "1:00 pm".
func NormalizeTimeLabel(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.ToLower(strings.Join(strings.Fields(line), " "))
}
