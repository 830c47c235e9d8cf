package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingest pipeline.
type Metrics struct {
	RawRecordsRead    prometheus.Counter
	DuplicatesDropped prometheus.Counter
	RunsSkipped       prometheus.Counter
	ParseFailures     *prometheus.CounterVec // label: field={temperature,wind,humidity}
	RecordsDropped    prometheus.Counter
	RangeFindings     *prometheus.CounterVec // label: check={temperature_range,wind_range}
	ValidatorDefects  prometheus.Counter
	RowsInserted      prometheus.Counter
	RowsDuplicate     prometheus.Counter
	RowsFailed        prometheus.Counter
	IngestRunning     prometheus.Gauge

	BatchSize   prometheus.Histogram
	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RawRecordsRead,
		m.DuplicatesDropped,
		m.RunsSkipped,
		m.ParseFailures,
		m.RecordsDropped,
		m.RangeFindings,
		m.ValidatorDefects,
		m.RowsInserted,
		m.RowsDuplicate,
		m.RowsFailed,
		m.IngestRunning,
		m.BatchSize,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RawRecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "raw_records_read_total",
			Help:      "Total raw records loaded from the input snapshot.",
		}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "raw_duplicates_dropped_total",
			Help:      "Exact-duplicate raw rows removed before cleaning.",
		}),
		RunsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "runs_skipped_total",
			Help:      "Runs skipped by the same-day capture guard.",
		}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "parse_failures_total",
			Help:      "Measurement fields that failed tolerant parsing, by field.",
		}, []string{"field"}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "records_dropped_total",
			Help:      "Cleaned records dropped because all numeric fields were absent.",
		}),
		RangeFindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "range_findings_total",
			Help:      "Advisory plausibility findings, by check.",
		}, []string{"check"}),
		ValidatorDefects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "validator_defects_total",
			Help:      "Out-of-range humidity seen past the field parser; signals a parser bug.",
		}),
		RowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "rows_inserted_total",
			Help:      "Rows newly inserted into the store.",
		}),
		RowsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "rows_duplicate_total",
			Help:      "Insert attempts skipped by the uniqueness constraint.",
		}),
		RowsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "rows_failed_total",
			Help:      "Insert attempts rejected for reasons other than uniqueness.",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_ingest",
			Name:      "running",
			Help:      "1 while an ingest run is in progress, 0 otherwise.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_ingest",
			Name:      "batch_size",
			Help:      "Raw records per ingest run after duplicate filtering.",
			Buckets:   []float64{1, 6, 12, 24, 48, 96, 192},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_ingest",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete dedupe-clean-validate-store run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
