// Package domain models hourly weather observations scraped from a
// timeanddate.com-style hourly forecast table.
//
// # Data Source
//
// The upstream scraper collaborator drives a browser against the hourly
// weather page for a single city and emits one raw CSV row per table row:
// City, Time, Temperature, Weather, Wind, Humidity, Scraped_At. All
// measurement values arrive as loosely formatted display text.
//
// # Field Conventions
//
// Temperature:
//
//	"<int>°F" with optional whitespace, e.g. "72°F", "72 °F", "-4°".
//	The degree marker and unit letter are stripped before integer parsing.
//
// Wind:
//
//	"<int> mph" for steady wind, e.g. "8 mph".
//	"<a>-<b> mph" for a gusting range, e.g. "10-14 mph"; the range is
//	collapsed to the arithmetic mean of the bounds, rounded half away
//	from zero ("10-14 mph" → 12).
//
// Humidity:
//
//	"<int>%", e.g. "55%". Values outside [0,100] are physically
//	impossible for relative humidity and are treated as parse failures
//	(absent with an "out of range" reason), never stored.
//
// Time labels:
//
//	Display text such as "1 pm" or "1:00 pm\nWed, Aug 27". Only the
//	first line, whitespace-collapsed and lowercased, is kept as the
//	normalized label; the raw text is preserved alongside it.
//
// Scrape timestamps:
//
//	Local ISO-8601 without a zone designator, e.g.
//	"2026-08-27T13:02:41.517305". Parsing keeps the wall-clock value as
//	given so the derived scrape date never shifts across a timezone
//	conversion.
//
// # Absence
//
// A missing field (nil) is distinct from present-but-unparseable text.
// Every parser returns a tagged result carrying either a value or an
// absence with a diagnostic reason; parsing never raises an error to the
// caller, and a single bad field never aborts a batch.
package domain
