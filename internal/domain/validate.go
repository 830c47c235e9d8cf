package domain

import "fmt"

// Bounds holds the plausibility ranges applied during validation. The
// ranges are advisory: a violating record is flagged, never discarded.
type Bounds struct {
	TempMinF   int
	TempMaxF   int
	WindMaxMph int
}

// DefaultBounds returns the operational plausibility ranges for a mid-
// latitude city: temperature within [-50,150] °F, wind at most 200 mph.
func DefaultBounds() Bounds {
	return Bounds{TempMinF: -50, TempMaxF: 150, WindMaxMph: 200}
}

// Finding is one range-violation observation over a batch.
type Finding struct {
	Check  string // "temperature_range", "wind_range", or "humidity_range"
	Rows   int    // number of violating records
	Min    int    // smallest observed violating value
	Max    int    // largest observed violating value
	Detail string
}

// Report is the outcome of validating a batch. Findings are advisory range
// violations. Defects are humidity values outside [0,100]: the field parser
// already excludes those, so a non-empty Defects slice signals a parser
// bug, not suspicious weather, and is surfaced separately.
type Report struct {
	Checked  int
	Findings []Finding
	Defects  []Finding
}

// Passed reports whether every check came back clean. The passing case is
// reported explicitly so operators and log scrapers can observe it.
func (r Report) Passed() bool {
	return len(r.Findings) == 0 && len(r.Defects) == 0
}

// Validate applies the plausibility bounds to a batch of cleaned records.
// It never mutates or drops data; persistence decisions belong to the
// store's uniqueness constraint, not to these checks.
func Validate(recs []CleanedRecord, b Bounds) Report {
	report := Report{Checked: len(recs)}

	var tempRows, windRows, humRows int
	var tempMin, tempMax, windMax, humMin, humMax int

	for _, rec := range recs {
		if rec.TemperatureF != nil {
			f := *rec.TemperatureF
			if f < b.TempMinF || f > b.TempMaxF {
				if tempRows == 0 || f < tempMin {
					tempMin = f
				}
				if tempRows == 0 || f > tempMax {
					tempMax = f
				}
				tempRows++
			}
		}
		if rec.WindMph != nil && *rec.WindMph > b.WindMaxMph {
			if windRows == 0 || *rec.WindMph > windMax {
				windMax = *rec.WindMph
			}
			windRows++
		}
		if rec.HumidityPct != nil {
			pct := *rec.HumidityPct
			if pct < 0 || pct > 100 {
				if humRows == 0 || pct < humMin {
					humMin = pct
				}
				if humRows == 0 || pct > humMax {
					humMax = pct
				}
				humRows++
			}
		}
	}

	if tempRows > 0 {
		report.Findings = append(report.Findings, Finding{
			Check:  "temperature_range",
			Rows:   tempRows,
			Min:    tempMin,
			Max:    tempMax,
			Detail: fmt.Sprintf("%d record(s) outside [%d,%d] °F, observed min %d max %d", tempRows, b.TempMinF, b.TempMaxF, tempMin, tempMax),
		})
	}
	if windRows > 0 {
		report.Findings = append(report.Findings, Finding{
			Check:  "wind_range",
			Rows:   windRows,
			Min:    windMax,
			Max:    windMax,
			Detail: fmt.Sprintf("%d record(s) above %d mph, observed max %d", windRows, b.WindMaxMph, windMax),
		})
	}
	if humRows > 0 {
		report.Defects = append(report.Defects, Finding{
			Check:  "humidity_range",
			Rows:   humRows,
			Min:    humMin,
			Max:    humMax,
			Detail: fmt.Sprintf("%d record(s) outside [0,100]%%; the field parser should have excluded these", humRows),
		})
	}

	return report
}
