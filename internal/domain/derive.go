package domain

import (
	"math"
	"time"
)

// mphToKmh is the exact statute-mile conversion factor.
const mphToKmh = 1.60934

// CelsiusFromFahrenheit converts whole degrees Fahrenheit to Celsius
// rounded to one decimal place.
func CelsiusFromFahrenheit(f int) float64 {
	return round1(float64(f-32) * 5 / 9)
}

// FahrenheitFromCelsius is the inverse conversion, rounded to the nearest
// whole degree. One-decimal rounding in the stored Celsius value means the
// round trip reproduces the original Fahrenheit only to within ±1 degree.
func FahrenheitFromCelsius(c float64) int {
	return int(math.Round(c*9/5 + 32))
}

// KmhFromMph converts whole miles per hour to kilometres per hour rounded
// to one decimal place.
func KmhFromMph(mph int) float64 {
	return round1(float64(mph) * mphToKmh)
}

// ScrapeDate truncates a scrape timestamp to its calendar date as given.
// The timestamp was parsed without a zone conversion, so the date component
// is exactly the local date the scraper observed.
func ScrapeDate(ts time.Time) string {
	return ts.Format(DateLayout)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
