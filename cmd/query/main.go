// Command query reads the weather database and prints reports: stored
// records with optional filters, per-city temperature statistics, the
// humidity distribution, a wind speed summary, and record counts by scrape
// date. It never writes to the database.
//
// Usage:
//
//	go run ./cmd/query -db data/weather.db -report summary
//	go run ./cmd/query -db data/weather.db -report records -city "New York" -limit 10
//	go run ./cmd/query -db data/weather.db -report records -condition cloudy -min-temp 60 -max-temp 80
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-runewidth"

	"github.com/mossdale/weather-ingest/internal/adapter/sqlite"
	"github.com/mossdale/weather-ingest/internal/domain"
)

func main() {
	dbPath := flag.String("db", "data/weather.db", "path to the SQLite database file")
	dsn := flag.String("dsn", "", "full SQLite DSN, overrides -db")
	report := flag.String("report", "summary", "report to print: summary, records, temperature, humidity, wind, dates")
	city := flag.String("city", "", "filter records by exact city name")
	date := flag.String("date", "", "filter records by scrape date (YYYY-MM-DD)")
	condition := flag.String("condition", "", "filter records by weather text substring")
	minTemp := flag.String("min-temp", "", "filter records with temperature_f at or above this value")
	maxTemp := flag.String("max-temp", "", "filter records with temperature_f at or below this value")
	limit := flag.Int("limit", 20, "maximum records to list (0 = no limit)")
	flag.Parse()

	filter := sqlite.Filter{
		City:        *city,
		ScrapedDate: *date,
		Condition:   *condition,
		Limit:       *limit,
	}
	if *date != "" {
		if _, err := time.Parse(domain.DateLayout, *date); err != nil {
			fmt.Fprintf(os.Stderr, "-date: %q is not a YYYY-MM-DD date\n", *date)
			os.Exit(2)
		}
	}
	var err error
	if filter.MinTempF, err = parseOptionalInt(*minTemp, "-min-temp"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if filter.MaxTempF, err = parseOptionalInt(*maxTemp, "-max-temp"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if code := run(*dbPath, *dsn, *report, filter); code != 0 {
		os.Exit(code)
	}
}

func run(dbPath, dsn, report string, filter sqlite.Filter) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := sqlite.Open(dbPath, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open database: %v\n", err)
		return 1
	}
	defer db.Close()

	store := sqlite.NewStore(db, clockwork.NewRealClock(), logger)
	ctx := context.Background()

	switch report {
	case "records":
		err = printRecords(ctx, store, filter)
	case "temperature":
		err = printTemperatureStats(ctx, store)
	case "humidity":
		err = printHumidityDistribution(ctx, store)
	case "wind":
		err = printWindAnalysis(ctx, store)
	case "dates":
		err = printCountsByDate(ctx, store)
	case "summary":
		err = printSummary(ctx, store)
	default:
		fmt.Fprintf(os.Stderr, "unknown report %q (allowed: summary, records, temperature, humidity, wind, dates)\n", report)
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	return 0
}

func printSummary(ctx context.Context, store *sqlite.Store) error {
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Println("=== Weather Database Summary ===")
	fmt.Printf("Total records: %d\n", total)
	fmt.Println()

	if err := printTemperatureStats(ctx, store); err != nil {
		return err
	}
	fmt.Println()
	if err := printHumidityDistribution(ctx, store); err != nil {
		return err
	}
	fmt.Println()
	if err := printWindAnalysis(ctx, store); err != nil {
		return err
	}
	fmt.Println()
	return printCountsByDate(ctx, store)
}

func printRecords(ctx context.Context, store *sqlite.Store, filter sqlite.Filter) error {
	recs, err := store.Records(ctx, filter)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No records match the filter.")
		return nil
	}

	rows := make([][]string, 0, len(recs))
	for i := range recs {
		r := &recs[i]
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.City,
			r.TimeLabel,
			intCell(r.TemperatureF, "°F"),
			floatCell(r.TemperatureC, "°C"),
			strCell(r.Condition),
			intCell(r.WindMph, " mph"),
			intCell(r.HumidityPct, "%"),
			r.ScrapedDate,
		})
	}
	printTable(
		[]string{"ID", "City", "Time", "Temp", "Temp C", "Weather", "Wind", "Humidity", "Date"},
		rows,
	)
	fmt.Printf("\n%d record(s)\n", len(recs))
	return nil
}

func printTemperatureStats(ctx context.Context, store *sqlite.Store) error {
	stats, err := store.TemperatureStats(ctx)
	if err != nil {
		return err
	}
	fmt.Println("--- Temperature by City ---")
	if len(stats) == 0 {
		fmt.Println("No temperature readings stored.")
		return nil
	}

	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{
			st.City,
			strconv.Itoa(st.Records),
			fmt.Sprintf("%d°F", st.MinF),
			fmt.Sprintf("%d°F", st.MaxF),
			fmt.Sprintf("%.1f°F", st.AvgF),
			fmt.Sprintf("%.1f°C", st.MinC),
			fmt.Sprintf("%.1f°C", st.MaxC),
			fmt.Sprintf("%.1f°C", st.AvgC),
		})
	}
	printTable([]string{"City", "Records", "Min", "Max", "Avg", "Min C", "Max C", "Avg C"}, rows)
	return nil
}

func printHumidityDistribution(ctx context.Context, store *sqlite.Store) error {
	buckets, err := store.HumidityDistribution(ctx)
	if err != nil {
		return err
	}
	fmt.Println("--- Humidity Distribution ---")
	if len(buckets) == 0 {
		fmt.Println("No humidity readings stored.")
		return nil
	}

	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		avgTemp := "n/a"
		if b.AvgTempF.Valid {
			avgTemp = fmt.Sprintf("%.1f°F", b.AvgTempF.Float64)
		}
		rows = append(rows, []string{b.Range, strconv.Itoa(b.Records), avgTemp})
	}
	printTable([]string{"Humidity", "Records", "Avg Temp"}, rows)
	return nil
}

func printWindAnalysis(ctx context.Context, store *sqlite.Store) error {
	st, err := store.WindAnalysis(ctx)
	if err != nil {
		return err
	}
	fmt.Println("--- Wind Analysis ---")
	if st.Records == 0 {
		fmt.Println("No wind readings stored.")
		return nil
	}
	fmt.Printf("Readings: %d\n", st.Records)
	fmt.Printf("Min:      %d mph\n", st.MinMph.Int64)
	fmt.Printf("Max:      %d mph\n", st.MaxMph.Int64)
	fmt.Printf("Avg:      %.1f mph\n", st.AvgMph.Float64)
	return nil
}

func printCountsByDate(ctx context.Context, store *sqlite.Store) error {
	counts, err := store.CountsByDate(ctx)
	if err != nil {
		return err
	}
	fmt.Println("--- Records by Scrape Date ---")
	if len(counts) == 0 {
		fmt.Println("No records stored.")
		return nil
	}

	rows := make([][]string, 0, len(counts))
	for _, dc := range counts {
		rows = append(rows, []string{dc.Date, strconv.Itoa(dc.Records)})
	}
	printTable([]string{"Date", "Records"}, rows)
	return nil
}

// printTable renders rows as an aligned text table. Column widths use
// display width, so city names outside ASCII still line up.
func printTable(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	printRow(header, widths)
	sep := make([]string, len(header))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	printRow(sep, widths)
	for _, row := range rows {
		printRow(row, widths)
	}
}

func printRow(cells []string, widths []int) {
	var sb strings.Builder
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteString(cell)
		if pad := w - runewidth.StringWidth(cell); pad > 0 && i < len(widths)-1 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		if i < len(widths)-1 {
			sb.WriteString("  ")
		}
	}
	fmt.Println(sb.String())
}

func parseOptionalInt(v, name string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not an integer", name, v)
	}
	return &n, nil
}

func intCell(v *int, suffix string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d%s", *v, suffix)
}

func floatCell(v *float64, suffix string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%s", *v, suffix)
}

func strCell(v *string) string {
	if v == nil {
		return "n/a"
	}
	return *v
}
