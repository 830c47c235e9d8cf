// Package sqlite persists cleaned weather records in a single relational
// table with idempotent insertion, and serves read-back queries for the
// query and dashboard collaborators.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-sqlite3"

	"github.com/mossdale/weather-ingest/internal/domain"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/insert.sql
var insertSQL string

//go:embed sql/temperature-stats.sql
var temperatureStatsSQL string

//go:embed sql/humidity-distribution.sql
var humidityDistributionSQL string

//go:embed sql/wind-stats.sql
var windStatsSQL string

//go:embed sql/counts-by-date.sql
var countsByDateSQL string

// scrapedAtLayout reproduces the scraper's zone-less ISO-8601 text, so a
// re-run of the pipeline writes byte-identical scraped_at values and the
// uniqueness constraint can do its job.
const scrapedAtLayout = "2006-01-02T15:04:05.999999999"

// Store is the durable sink of the pipeline. The (city, time_clean,
// scraped_at) uniqueness constraint is the authoritative duplicate defense;
// everything upstream is advisory.
type Store struct {
	db     *sql.DB
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewStore wraps an open database handle. The clock supplies the
// store-assigned created_at timestamps.
func NewStore(db *sql.DB, clock clockwork.Clock, logger *slog.Logger) *Store {
	return &Store{db: db, clock: clock, logger: logger}
}

// CheckReadiness pings the database, satisfying the HTTP readiness probe.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// EnsureSchema creates the weather table and its supporting indexes if they
// do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM weather").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// InsertBatch persists records one at a time. A uniqueness collision is
// counted as a duplicate; any other per-record failure is counted and
// logged, and the batch continues. Only context cancellation aborts the
// batch early.
func (s *Store) InsertBatch(ctx context.Context, recs []domain.CleanedRecord) (domain.InsertSummary, error) {
	var summary domain.InsertSummary
	for i := range recs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		switch err := s.insert(ctx, recs[i]); {
		case err == nil:
			summary.Inserted++
		case isUniqueViolation(err):
			summary.Duplicates++
		default:
			summary.Failed++
			s.logger.Error("insert failed",
				"city", recs[i].City,
				"time", recs[i].TimeLabel,
				"scraped_at", recs[i].ScrapedAt.Format(scrapedAtLayout),
				"error", err,
			)
		}
	}
	return summary, nil
}

func (s *Store) insert(ctx context.Context, rec domain.CleanedRecord) error {
	_, err := s.db.ExecContext(ctx, insertSQL,
		rec.City,
		rec.TimeText,
		rec.TimeLabel,
		rec.TemperatureF,
		rec.TemperatureC,
		rec.Condition,
		rec.WindMph,
		rec.WindKmh,
		rec.HumidityPct,
		rec.ScrapedAt.Format(scrapedAtLayout),
		rec.ScrapedDate,
		s.clock.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// isUniqueViolation matches only the uniqueness-constraint failure, so a
// broken storage medium is never misclassified as a harmless duplicate.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Filter narrows a read-back listing. Zero values leave a dimension
// unconstrained. The store does not interpret the semantic content of a
// filter; query correctness is the caller's responsibility.
type Filter struct {
	City        string
	ScrapedDate string
	Condition   string // substring match against the weather text
	MinTempF    *int
	MaxTempF    *int
	Limit       int
}

// Records lists stored records matching the filter, newest first.
func (s *Store) Records(ctx context.Context, f Filter) ([]domain.StoredRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.City != "" {
		where = append(where, "city = ?")
		args = append(args, f.City)
	}
	if f.ScrapedDate != "" {
		where = append(where, "scraped_date = ?")
		args = append(args, f.ScrapedDate)
	}
	if f.Condition != "" {
		where = append(where, "weather LIKE '%' || ? || '%'")
		args = append(args, f.Condition)
	}
	if f.MinTempF != nil {
		where = append(where, "temperature_f >= ?")
		args = append(args, *f.MinTempF)
	}
	if f.MaxTempF != nil {
		where = append(where, "temperature_f <= ?")
		args = append(args, *f.MaxTempF)
	}

	query := `SELECT id, city, time, time_clean, temperature_f, temperature_c,
	weather, wind_mph, wind_kmh, humidity_pct, scraped_at, scraped_date, created_at
	FROM weather`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer closeRows(rows, s.logger)

	var out []domain.StoredRecord
	for rows.Next() {
		rec, err := scanStoredRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanStoredRecord(rows *sql.Rows) (domain.StoredRecord, error) {
	var (
		rec       domain.StoredRecord
		tempF     sql.NullInt64
		tempC     sql.NullFloat64
		condition sql.NullString
		windMph   sql.NullInt64
		windKmh   sql.NullFloat64
		humidity  sql.NullInt64
		scrapedAt string
		createdAt string
	)
	if err := rows.Scan(&rec.ID, &rec.City, &rec.TimeText, &rec.TimeLabel,
		&tempF, &tempC, &condition, &windMph, &windKmh, &humidity,
		&scrapedAt, &rec.ScrapedDate, &createdAt); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("scan record: %w", err)
	}

	if tempF.Valid {
		v := int(tempF.Int64)
		rec.TemperatureF = &v
	}
	if tempC.Valid {
		v := tempC.Float64
		rec.TemperatureC = &v
	}
	if condition.Valid {
		v := condition.String
		rec.Condition = &v
	}
	if windMph.Valid {
		v := int(windMph.Int64)
		rec.WindMph = &v
	}
	if windKmh.Valid {
		v := windKmh.Float64
		rec.WindKmh = &v
	}
	if humidity.Valid {
		v := int(humidity.Int64)
		rec.HumidityPct = &v
	}

	var err error
	if rec.ScrapedAt, err = domain.ParseScrapedAt(scrapedAt); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("scan record: %w", err)
	}
	if rec.CreatedAt, err = domain.ParseScrapedAt(createdAt); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("scan record: %w", err)
	}
	return rec, nil
}

// CityTemperatureStats aggregates per-city temperature figures in both units.
type CityTemperatureStats struct {
	City    string
	Records int
	MinF    int
	MaxF    int
	AvgF    float64
	MinC    float64
	MaxC    float64
	AvgC    float64
}

// TemperatureStats aggregates temperatures per city over rows where a
// temperature is present.
func (s *Store) TemperatureStats(ctx context.Context) ([]CityTemperatureStats, error) {
	rows, err := s.db.QueryContext(ctx, temperatureStatsSQL)
	if err != nil {
		return nil, fmt.Errorf("temperature stats: %w", err)
	}
	defer closeRows(rows, s.logger)

	var out []CityTemperatureStats
	for rows.Next() {
		var st CityTemperatureStats
		if err := rows.Scan(&st.City, &st.Records, &st.MinF, &st.MaxF, &st.AvgF,
			&st.MinC, &st.MaxC, &st.AvgC); err != nil {
			return nil, fmt.Errorf("scan temperature stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// HumidityBucket is one band of the humidity distribution.
type HumidityBucket struct {
	Range    string
	Records  int
	AvgTempF sql.NullFloat64
}

// HumidityDistribution buckets stored humidity readings into the reporting
// bands used by the dashboard.
func (s *Store) HumidityDistribution(ctx context.Context) ([]HumidityBucket, error) {
	rows, err := s.db.QueryContext(ctx, humidityDistributionSQL)
	if err != nil {
		return nil, fmt.Errorf("humidity distribution: %w", err)
	}
	defer closeRows(rows, s.logger)

	var out []HumidityBucket
	for rows.Next() {
		var b HumidityBucket
		if err := rows.Scan(&b.Range, &b.Records, &b.AvgTempF); err != nil {
			return nil, fmt.Errorf("scan humidity bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// WindStats summarizes stored wind speeds.
type WindStats struct {
	MinMph  sql.NullInt64
	MaxMph  sql.NullInt64
	AvgMph  sql.NullFloat64
	Records int
}

// WindAnalysis summarizes wind speed over rows where a wind reading is
// present.
func (s *Store) WindAnalysis(ctx context.Context) (WindStats, error) {
	var st WindStats
	err := s.db.QueryRowContext(ctx, windStatsSQL).Scan(&st.MinMph, &st.MaxMph, &st.AvgMph, &st.Records)
	if err != nil {
		return WindStats{}, fmt.Errorf("wind analysis: %w", err)
	}
	return st, nil
}

// DateCount is the number of records captured on one scrape date.
type DateCount struct {
	Date    string
	Records int
}

// CountsByDate lists record counts per scrape date, newest first.
func (s *Store) CountsByDate(ctx context.Context) ([]DateCount, error) {
	rows, err := s.db.QueryContext(ctx, countsByDateSQL)
	if err != nil {
		return nil, fmt.Errorf("counts by date: %w", err)
	}
	defer closeRows(rows, s.logger)

	var out []DateCount
	for rows.Next() {
		var dc DateCount
		if err := rows.Scan(&dc.Date, &dc.Records); err != nil {
			return nil, fmt.Errorf("scan date count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func closeRows(rows *sql.Rows, logger *slog.Logger) {
	if err := rows.Close(); err != nil {
		logger.Error("close rows", "error", err)
	}
}
