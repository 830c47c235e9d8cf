// Package rawcsv reads raw scraped observations from the CSV snapshot
// produced by the scraper collaborator, and maintains the raw archive the
// same-day guard consults between runs.
package rawcsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mossdale/weather-ingest/internal/domain"
)

// ErrMissingInput reports that the raw input artifact does not exist when a
// run starts. Fatal for the run; no partial processing is attempted.
var ErrMissingInput = errors.New("raw input artifact not found")

// header is the column order written by the scraper and by the archive.
var header = []string{"City", "Time", "Temperature", "Weather", "Wind", "Humidity", "Scraped_At"}

// Source is the file-backed input boundary of the pipeline.
type Source struct {
	inputPath   string
	archivePath string
	logger      *slog.Logger
}

// NewSource creates a Source over the given snapshot and archive paths.
// An empty archivePath disables archiving (and with it the same-day guard's
// view of history).
func NewSource(inputPath, archivePath string, logger *slog.Logger) *Source {
	return &Source{inputPath: inputPath, archivePath: archivePath, logger: logger}
}

// Load reads the newly scraped batch. A missing snapshot is ErrMissingInput.
func (s *Source) Load(ctx context.Context) ([]domain.RawRecord, error) {
	recs, err := s.readFile(ctx, s.inputPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, s.inputPath)
	}
	return recs, err
}

// LoadArchive reads the accumulated raw records from prior runs. A missing
// archive simply means no history yet.
func (s *Source) LoadArchive(ctx context.Context) ([]domain.RawRecord, error) {
	if s.archivePath == "" {
		return nil, nil
	}
	recs, err := s.readFile(ctx, s.archivePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return recs, err
}

// AppendArchive appends the batch to the archive after a successful run,
// creating the file (with header) on first use.
func (s *Source) AppendArchive(_ context.Context, batch []domain.RawRecord) error {
	if s.archivePath == "" || len(batch) == 0 {
		return nil
	}

	if dir := filepath.Dir(s.archivePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create archive directory %s: %w", dir, err)
		}
	}

	_, statErr := os.Stat(s.archivePath)
	writeHeader := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(s.archivePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", s.archivePath, err)
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return fmt.Errorf("write archive header: %w", err)
		}
	}
	for _, rec := range batch {
		if err := w.Write(encodeRow(rec)); err != nil {
			_ = f.Close()
			return fmt.Errorf("write archive row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush archive: %w", err)
	}
	return f.Close()
}

func (s *Source) readFile(ctx context.Context, path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	cols := indexColumns(head)

	var out []domain.RawRecord
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", path, line, err)
		}

		rec, err := decodeRow(row, cols)
		if err != nil {
			// A row without a usable identity cannot be ingested; the rest
			// of the file still can.
			s.logger.Warn("skipping malformed raw row", "path", path, "line", line, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func indexColumns(head []string) map[string]int {
	cols := make(map[string]int, len(head))
	for i, name := range head {
		cols[name] = i
	}
	return cols
}

// field returns the named cell as an optional value: a missing column or an
// empty cell is absence, anything else is present text (parseable or not).
func field(row []string, cols map[string]int, name string) *string {
	i, ok := cols[name]
	if !ok || i >= len(row) || row[i] == "" {
		return nil
	}
	v := row[i]
	return &v
}

func decodeRow(row []string, cols map[string]int) (domain.RawRecord, error) {
	city := field(row, cols, "City")
	timeText := field(row, cols, "Time")
	scrapedAt := field(row, cols, "Scraped_At")

	if city == nil {
		return domain.RawRecord{}, errors.New("row has no city")
	}
	if scrapedAt == nil {
		return domain.RawRecord{}, errors.New("row has no scrape timestamp")
	}
	ts, err := domain.ParseScrapedAt(*scrapedAt)
	if err != nil {
		return domain.RawRecord{}, err
	}

	rec := domain.RawRecord{
		City:        *city,
		Temperature: field(row, cols, "Temperature"),
		Condition:   field(row, cols, "Weather"),
		Wind:        field(row, cols, "Wind"),
		Humidity:    field(row, cols, "Humidity"),
		ScrapedAt:   ts,
	}
	if timeText != nil {
		rec.TimeText = *timeText
	}
	return rec, nil
}

func encodeRow(rec domain.RawRecord) []string {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return []string{
		rec.City,
		rec.TimeText,
		deref(rec.Temperature),
		deref(rec.Condition),
		deref(rec.Wind),
		deref(rec.Humidity),
		rec.ScrapedAt.Format("2006-01-02T15:04:05.999999999"),
	}
}
