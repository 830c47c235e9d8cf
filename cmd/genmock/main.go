// Command genmock generates a mock raw weather CSV shaped like the scraper's
// output, for exercising the ingest pipeline without a live source. The
// fixture mixes clean hourly rows with the defects the pipeline has to
// tolerate: unit-suffixed values, wind ranges, junk text, empty cells, and
// verbatim duplicate rows.
//
// Usage:
//
//	go run ./cmd/genmock -out data/raw_weather.csv -hours 12 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var cities = []string{"New York", "London", "Tokyo", "Sydney", "São Paulo"}

var conditions = []string{
	"Sunny", "Partly Cloudy", "Mostly Cloudy", "Cloudy",
	"Light Rain", "Rain", "Thunderstorms", "Clear", "Fog",
}

var header = []string{"City", "Time", "Temperature", "Weather", "Wind", "Humidity", "Scraped_At"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/raw_weather.csv", "output path for the mock raw CSV")
	hours := flag.Int("hours", 12, "hourly rows to generate per city")
	seed := flag.Int64("seed", 42, "random seed, fixed for reproducible fixtures")
	clean := flag.Bool("clean", false, "emit only well-formed rows")
	dupes := flag.Int("dupes", 3, "verbatim duplicate rows to append")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	scrapedAt := time.Date(2026, time.August, 27, 14, 30, 12, 345678000, time.UTC)
	scrapedText := scrapedAt.Format("2006-01-02T15:04:05.999999999")

	rows := make([][]string, 0, len(cities)*(*hours))
	for _, city := range cities {
		for h := 0; h < *hours; h++ {
			rows = append(rows, hourlyRow(rng, city, h, scrapedText))
		}
	}

	var malformed int
	if !*clean {
		bad := malformedRows(scrapedText)
		rows = append(rows, bad...)
		malformed = len(bad)
	}

	for i := 0; i < *dupes && i < len(rows); i++ {
		rows = append(rows, rows[rng.Intn(len(cities)*(*hours))])
	}

	if err := writeCSV(*out, rows); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}

	log.Printf("wrote %s: %d rows (%d malformed, %d duplicates)",
		*out, len(rows), malformed, *dupes)
	return nil
}

// hourlyRow produces one plausible scraped observation, with the unit
// suffixes and formatting quirks the real source exhibits.
func hourlyRow(rng *rand.Rand, city string, hour int, scrapedText string) []string {
	tempF := 45 + rng.Intn(50)
	windMph := rng.Intn(25)
	humidity := 20 + rng.Intn(75)

	wind := fmt.Sprintf("%d mph", windMph)
	if rng.Intn(5) == 0 {
		wind = fmt.Sprintf("%d-%d mph", windMph, windMph+4)
	}

	label := fmt.Sprintf("%d:00", hour%12)
	if label == "0:00" {
		label = "12:00"
	}
	if hour < 12 {
		label += " am"
	} else {
		label += " pm"
	}

	return []string{
		city,
		label,
		fmt.Sprintf("%d°F", tempF),
		conditions[rng.Intn(len(conditions))],
		wind,
		strconv.Itoa(humidity) + "%",
		scrapedText,
	}
}

// malformedRows covers the defect classes the pipeline must survive:
// junk field text, out-of-range readings, empty cells, and a row with
// nothing usable at all.
func malformedRows(scrapedText string) [][]string {
	return [][]string{
		{"New York", "3:00 pm", "N/A", "Sunny", "12 mph", "55%", scrapedText},
		{"London", "4:00 pm", "68°F", "Cloudy", "calm", "180%", scrapedText},
		{"Tokyo", "5:00 pm", "", "", "", "", scrapedText},
		{"Sydney", "6:00 pm", "--", "--", "--", "--", scrapedText},
	}
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
