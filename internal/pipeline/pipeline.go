// Package pipeline orchestrates one ingest run: load the raw snapshot,
// apply the deduplication guards, clean and validate the batch, and persist
// it idempotently. Parsing and validation problems never halt a run; only a
// missing input artifact or an unreachable store is fatal.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mossdale/weather-ingest/internal/domain"
	"github.com/mossdale/weather-ingest/internal/observability"
)

// Source supplies the raw snapshot and maintains the raw archive consulted
// by the same-day guard.
type Source interface {
	Load(ctx context.Context) ([]domain.RawRecord, error)
	LoadArchive(ctx context.Context) ([]domain.RawRecord, error)
	AppendArchive(ctx context.Context, batch []domain.RawRecord) error
}

// Store persists cleaned records with idempotent insertion.
type Store interface {
	InsertBatch(ctx context.Context, recs []domain.CleanedRecord) (domain.InsertSummary, error)
	Count(ctx context.Context) (int, error)
}

// Options are the run-behavior knobs passed at construction.
type Options struct {
	Bounds       domain.Bounds
	SameDayGuard bool
}

// Summary itemizes one run for the operator. Every record loaded is
// accounted for in exactly one of the counters.
type Summary struct {
	RunID          string
	SkippedSameDay bool

	RawLoaded         int
	DuplicatesDropped int
	ParseFailures     int
	RecordsDropped    int
	Cleaned           int

	Validation domain.Report
	Insert     domain.InsertSummary

	StoredTotal int
	Duration    time.Duration
}

// Pipeline is the single-threaded, batch-oriented ingest run.
type Pipeline struct {
	source  Source
	store   Store
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// New assembles a Pipeline from its collaborators.
func New(source Source, store Store, opts Options, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	return &Pipeline{
		source:  source,
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// Run processes one snapshot of raw records to completion. It returns an
// error only for run-fatal conditions: a missing input artifact, an
// unreadable archive, or a cancelled context. Everything else is counted in
// the Summary and logged.
func (p *Pipeline) Run(ctx context.Context) (summary Summary, err error) {
	summary = Summary{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", summary.RunID)
	start := p.clock.Now()

	p.metrics.IngestRunning.Set(1)
	defer p.metrics.IngestRunning.Set(0)
	defer func() { summary.Duration = p.clock.Since(start) }()

	batch, err := p.source.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load raw input: %w", err)
	}
	summary.RawLoaded = len(batch)
	p.metrics.RawRecordsRead.Add(float64(len(batch)))
	logger.Info("raw snapshot loaded", "records", len(batch))

	if len(batch) == 0 {
		logger.Warn("raw snapshot is empty, nothing to ingest")
		return summary, nil
	}

	if p.opts.SameDayGuard {
		prior, err := p.source.LoadArchive(ctx)
		if err != nil {
			return summary, fmt.Errorf("load raw archive: %w", err)
		}
		today := p.clock.Now().Format(domain.DateLayout)
		if CapturedToday(prior, today) {
			summary.SkippedSameDay = true
			p.metrics.RunsSkipped.Inc()
			logger.Warn("run skipped: a batch was already captured today",
				"today", today,
				"hint", "delete or rename the raw archive to force a re-run",
			)
			return summary, nil
		}
	}

	kept, dropped := FilterExactDuplicates(batch)
	summary.DuplicatesDropped = dropped
	p.metrics.DuplicatesDropped.Add(float64(dropped))
	p.metrics.BatchSize.Observe(float64(len(kept)))
	if dropped > 0 {
		logger.Info("exact-duplicate raw rows dropped", "dropped", dropped)
	}

	cleaned := p.clean(logger, kept, &summary)
	summary.Cleaned = len(cleaned)

	p.validate(logger, cleaned, &summary)

	ins, err := p.store.InsertBatch(ctx, cleaned)
	if err != nil {
		return summary, fmt.Errorf("insert batch: %w", err)
	}
	summary.Insert = ins
	p.metrics.RowsInserted.Add(float64(ins.Inserted))
	p.metrics.RowsDuplicate.Add(float64(ins.Duplicates))
	p.metrics.RowsFailed.Add(float64(ins.Failed))

	if err := p.source.AppendArchive(ctx, kept); err != nil {
		// The store already holds the batch and re-ingestion is idempotent,
		// so a failed archive write downgrades the guard, not the data.
		logger.Warn("append raw archive failed", "error", err)
	}

	if total, err := p.store.Count(ctx); err != nil {
		logger.Warn("count stored records failed", "error", err)
	} else {
		summary.StoredTotal = total
	}

	p.metrics.RunDuration.Observe(p.clock.Since(start).Seconds())
	logger.Info("run complete",
		"raw_loaded", summary.RawLoaded,
		"raw_duplicates_dropped", summary.DuplicatesDropped,
		"parse_failures", summary.ParseFailures,
		"records_dropped", summary.RecordsDropped,
		"cleaned", summary.Cleaned,
		"inserted", ins.Inserted,
		"duplicates_skipped", ins.Duplicates,
		"insert_failures", ins.Failed,
		"stored_total", summary.StoredTotal,
	)
	return summary, nil
}

// clean converts raw rows to cleaned records, counting parse failures and
// dropping rows with no numeric signal. A bad field never aborts the batch.
func (p *Pipeline) clean(logger *slog.Logger, batch []domain.RawRecord, summary *Summary) []domain.CleanedRecord {
	cleaned := make([]domain.CleanedRecord, 0, len(batch))
	for _, raw := range batch {
		rec, issues, keep := domain.Clean(raw)
		for _, issue := range issues {
			summary.ParseFailures++
			p.metrics.ParseFailures.WithLabelValues(issue.Field).Inc()
			logger.Warn("field parse failure",
				"city", raw.City,
				"time", raw.TimeText,
				"field", issue.Field,
				"reason", issue.Reason,
			)
		}
		if !keep {
			summary.RecordsDropped++
			p.metrics.RecordsDropped.Inc()
			logger.Warn("record dropped: no numeric fields parsed",
				"city", raw.City,
				"time", raw.TimeText,
			)
			continue
		}
		cleaned = append(cleaned, rec)
	}
	return cleaned
}

// validate runs the advisory range checks and reports the outcome. Findings
// never drop data; defects point at a field-parser bug and are logged at
// error level.
func (p *Pipeline) validate(logger *slog.Logger, recs []domain.CleanedRecord, summary *Summary) {
	report := domain.Validate(recs, p.opts.Bounds)
	summary.Validation = report

	for _, f := range report.Findings {
		p.metrics.RangeFindings.WithLabelValues(f.Check).Add(float64(f.Rows))
		logger.Warn("plausibility finding", "check", f.Check, "detail", f.Detail)
	}
	for _, d := range report.Defects {
		p.metrics.ValidatorDefects.Add(float64(d.Rows))
		logger.Error("validator defect: field parser let an invalid value through",
			"check", d.Check, "detail", d.Detail)
	}
	if report.Passed() {
		logger.Info("all validation checks passed", "records", report.Checked)
	}
}
