package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossdale/weather-ingest/internal/domain"
	"github.com/mossdale/weather-ingest/internal/observability"
	"github.com/mossdale/weather-ingest/internal/pipeline"
)

var runClock = clockwork.NewFakeClockAt(time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC))

// --- mocks ---

type mockSource struct {
	batch      []domain.RawRecord
	prior      []domain.RawRecord
	loadErr    error
	archiveErr error
	appendErr  error
	appended   [][]domain.RawRecord
}

func (m *mockSource) Load(_ context.Context) ([]domain.RawRecord, error) {
	return m.batch, m.loadErr
}

func (m *mockSource) LoadArchive(_ context.Context) ([]domain.RawRecord, error) {
	return m.prior, m.archiveErr
}

func (m *mockSource) AppendArchive(_ context.Context, batch []domain.RawRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, batch)
	return nil
}

type mockStore struct {
	batches   [][]domain.CleanedRecord
	insertErr error
	stored    int
	onCount   func()
}

func (m *mockStore) InsertBatch(_ context.Context, recs []domain.CleanedRecord) (domain.InsertSummary, error) {
	if m.insertErr != nil {
		return domain.InsertSummary{}, m.insertErr
	}
	m.batches = append(m.batches, recs)
	m.stored += len(recs)
	return domain.InsertSummary{Inserted: len(recs)}, nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	if m.onCount != nil {
		m.onCount()
	}
	return m.stored, nil
}

func strPtr(s string) *string { return &s }

func rawRow(label, temp, wind, humidity string, scrapedAt time.Time) domain.RawRecord {
	rec := domain.RawRecord{
		City:      "Washington, DC",
		TimeText:  label,
		Condition: strPtr("Sunny"),
		ScrapedAt: scrapedAt,
	}
	if temp != "" {
		rec.Temperature = strPtr(temp)
	}
	if wind != "" {
		rec.Wind = strPtr(wind)
	}
	if humidity != "" {
		rec.Humidity = strPtr(humidity)
	}
	return rec
}

func newPipeline(src *mockSource, store *mockStore, opts pipeline.Options) *pipeline.Pipeline {
	return pipeline.New(src, store, opts, slog.Default(), observability.NewMetricsForTesting(), runClock)
}

func defaultOpts() pipeline.Options {
	return pipeline.Options{Bounds: domain.DefaultBounds(), SameDayGuard: true}
}

// --- tests ---

func TestRun_VerbatimDuplicateCollapsesToOneRecord(t *testing.T) {
	scrapedAt := time.Date(2026, 8, 27, 13, 2, 41, 517305000, time.UTC)
	row := rawRow("1 pm", "72°F", "8 mph", "55%", scrapedAt)

	src := &mockSource{batch: []domain.RawRecord{row, row}}
	store := &mockStore{}

	summary, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RawLoaded)
	assert.Equal(t, 1, summary.DuplicatesDropped)
	assert.Equal(t, domain.InsertSummary{Inserted: 1}, summary.Insert)
	require.Len(t, store.batches, 1)
	require.Len(t, store.batches[0], 1)

	tempF, wind, humidity := 72, 8, 55
	tempC, kmh := 22.2, 12.9
	cond := "Sunny"
	want := domain.CleanedRecord{
		City:         "Washington, DC",
		TimeText:     "1 pm",
		TimeLabel:    "1 pm",
		TemperatureF: &tempF,
		TemperatureC: &tempC,
		Condition:    &cond,
		WindMph:      &wind,
		WindKmh:      &kmh,
		HumidityPct:  &humidity,
		ScrapedAt:    scrapedAt,
		ScrapedDate:  "2026-08-27",
	}
	if diff := cmp.Diff(want, store.batches[0][0]); diff != "" {
		t.Errorf("cleaned record mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SameDayGuardSkipsWholeRun(t *testing.T) {
	scrapedToday := time.Date(2026, 8, 27, 7, 0, 0, 0, time.UTC)

	src := &mockSource{
		batch: []domain.RawRecord{rawRow("1 pm", "72°F", "", "", scrapedToday)},
		prior: []domain.RawRecord{rawRow("6 am", "60°F", "", "", scrapedToday)},
	}
	store := &mockStore{}

	summary, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.SkippedSameDay)
	assert.Empty(t, store.batches, "no cleaning, no storage on a skipped run")
	assert.Empty(t, src.appended)
}

func TestRun_SameDayGuardDisabled(t *testing.T) {
	scrapedToday := time.Date(2026, 8, 27, 7, 0, 0, 0, time.UTC)

	src := &mockSource{
		batch: []domain.RawRecord{rawRow("1 pm", "72°F", "", "", scrapedToday)},
		prior: []domain.RawRecord{rawRow("6 am", "60°F", "", "", scrapedToday)},
	}
	store := &mockStore{}

	opts := defaultOpts()
	opts.SameDayGuard = false

	summary, err := newPipeline(src, store, opts).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, summary.SkippedSameDay)
	assert.Len(t, store.batches, 1)
}

func TestRun_PriorDayArchiveDoesNotTrip(t *testing.T) {
	src := &mockSource{
		batch: []domain.RawRecord{rawRow("1 pm", "72°F", "", "", time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC))},
		prior: []domain.RawRecord{rawRow("1 pm", "70°F", "", "", time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC))},
	}
	store := &mockStore{}

	summary, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, summary.SkippedSameDay)
	assert.Equal(t, 1, summary.Insert.Inserted)
}

func TestRun_BatchResilience(t *testing.T) {
	scrapedAt := time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC)
	batch := []domain.RawRecord{
		rawRow("1 pm", "72°F", "8 mph", "55%", scrapedAt),
		rawRow("2 pm", "not a temp", "10-14 mph", "52%", scrapedAt.Add(time.Hour)),
		rawRow("3 pm", "N/A", "gusty", "150%", scrapedAt.Add(2*time.Hour)),
		rawRow("4 pm", "70°F", "6 mph", "58%", scrapedAt.Add(3*time.Hour)),
	}

	src := &mockSource{batch: batch}
	store := &mockStore{}

	summary, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.NoError(t, err)

	// Row 3 lost every numeric field and is dropped; row 2 survives with
	// only the fields that parsed.
	assert.Equal(t, 4, summary.ParseFailures)
	assert.Equal(t, 1, summary.RecordsDropped)
	assert.Equal(t, 3, summary.Cleaned)
	require.Len(t, store.batches, 1)
	require.Len(t, store.batches[0], 3)

	partial := store.batches[0][1]
	assert.Nil(t, partial.TemperatureF)
	require.NotNil(t, partial.WindMph)
	assert.Equal(t, 12, *partial.WindMph)
	require.NotNil(t, partial.HumidityPct)
	assert.Equal(t, 52, *partial.HumidityPct)
}

func TestRun_ImplausibleTemperatureIsFlaggedAndStored(t *testing.T) {
	scrapedAt := time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC)
	src := &mockSource{batch: []domain.RawRecord{rawRow("1 pm", "-60°F", "", "", scrapedAt)}}
	store := &mockStore{}

	summary, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Validation.Findings, 1)
	assert.Equal(t, "temperature_range", summary.Validation.Findings[0].Check)

	require.Len(t, store.batches, 1)
	require.NotNil(t, store.batches[0][0].TemperatureF)
	assert.Equal(t, -60, *store.batches[0][0].TemperatureF, "finding is advisory; the record is still stored")
}

func TestRun_MissingInputIsFatal(t *testing.T) {
	src := &mockSource{loadErr: errors.New("raw input artifact not found")}
	store := &mockStore{}

	_, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load raw input")
	assert.Empty(t, store.batches)
}

func TestRun_EmptySnapshot(t *testing.T) {
	src := &mockSource{}
	store := &mockStore{}

	summary, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.RawLoaded)
	assert.Empty(t, store.batches)
}

func TestRun_ArchiveAppendFailureIsNotFatal(t *testing.T) {
	scrapedAt := time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC)
	src := &mockSource{
		batch:     []domain.RawRecord{rawRow("1 pm", "72°F", "", "", scrapedAt)},
		appendErr: errors.New("disk full"),
	}
	store := &mockStore{}

	summary, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.NoError(t, err, "the store holds the batch; a failed archive write only weakens the guard")
	assert.Equal(t, 1, summary.Insert.Inserted)
}

func TestRun_InsertErrorIsFatal(t *testing.T) {
	scrapedAt := time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC)
	src := &mockSource{batch: []domain.RawRecord{rawRow("1 pm", "72°F", "", "", scrapedAt)}}
	store := &mockStore{insertErr: context.Canceled}

	_, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_SummaryDurationReflectsElapsedTime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC))
	scrapedAt := time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC)

	src := &mockSource{batch: []domain.RawRecord{rawRow("1 pm", "72°F", "", "", scrapedAt)}}
	// The count read-back is the last store call of a run; advancing the
	// clock there ensures the elapsed time reaches the returned summary.
	store := &mockStore{}
	store.onCount = func() { clock.Advance(3 * time.Second) }

	p := pipeline.New(src, store, defaultOpts(), slog.Default(), observability.NewMetricsForTesting(), clock)
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, summary.Duration)
}

func TestRun_ArchivesKeptBatch(t *testing.T) {
	scrapedAt := time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC)
	row := rawRow("1 pm", "72°F", "", "", scrapedAt)
	src := &mockSource{batch: []domain.RawRecord{row, row}}
	store := &mockStore{}

	_, err := newPipeline(src, store, defaultOpts()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, src.appended, 1)
	assert.Len(t, src.appended[0], 1, "the archive receives the duplicate-filtered batch")
}
