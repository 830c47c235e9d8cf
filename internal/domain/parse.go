package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// temperatureRe matches an integer with an optional trailing degree
	// marker and unit letter, e.g. "72", "72°", "72 °F", "-60°F".
	temperatureRe = regexp.MustCompile(`^(-?\d+)\s*(?:°\s*[A-Za-z]?)?$`)

	// windUnitRe strips a trailing speed unit, e.g. "8 mph" -> "8".
	windUnitRe = regexp.MustCompile(`(?i)\s*mph$`)

	// windRangeRe matches a gust range, e.g. "10-14".
	windRangeRe = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)
)

// FieldResult is the outcome of parsing one numeric measurement field:
// either a value, or an absence with a human-readable reason. Parsing never
// returns a Go error; absence plus reason is the whole failure surface.
type FieldResult struct {
	Value   int
	Present bool
	Reason  string
}

func absent(format string, args ...any) FieldResult {
	return FieldResult{Reason: fmt.Sprintf(format, args...)}
}

// ParseTemperature parses display text like "72°F" into whole degrees
// Fahrenheit. Missing, blank, or non-numeric input yields an absent result.
func ParseTemperature(raw *string) FieldResult {
	if raw == nil {
		return absent("temperature missing")
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return absent("temperature blank")
	}
	m := temperatureRe.FindStringSubmatch(s)
	if m == nil {
		return absent("unparseable temperature %q", *raw)
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return absent("unparseable temperature %q", *raw)
	}
	return FieldResult{Value: v, Present: true}
}

// ParseWind parses display text like "8 mph" or a gust range like
// "10-14 mph" into whole miles per hour. A range collapses to the mean of
// its bounds, rounded half away from zero.
func ParseWind(raw *string) FieldResult {
	if raw == nil {
		return absent("wind missing")
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return absent("wind blank")
	}
	s = strings.TrimSpace(windUnitRe.ReplaceAllString(s, ""))

	if m := windRangeRe.FindStringSubmatch(s); m != nil {
		lo, errLo := strconv.Atoi(m[1])
		hi, errHi := strconv.Atoi(m[2])
		if errLo != nil || errHi != nil {
			return absent("unparseable wind range %q", *raw)
		}
		return FieldResult{Value: int(math.Round(float64(lo+hi) / 2)), Present: true}
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return absent("unparseable wind %q", *raw)
	}
	return FieldResult{Value: v, Present: true}
}

// ParseHumidity parses display text like "55%" into a whole percentage and
// enforces the physical [0,100] bound. Out-of-range values are reported as
// absent with an "out of range" reason, distinct from unparseable text, so
// operators can tell a bad reading from garbled markup.
func ParseHumidity(raw *string) FieldResult {
	if raw == nil {
		return absent("humidity missing")
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return absent("humidity blank")
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.Atoi(s)
	if err != nil {
		return absent("unparseable humidity %q", *raw)
	}
	if v < 0 || v > 100 {
		return absent("humidity %q out of range", *raw)
	}
	return FieldResult{Value: v, Present: true}
}
