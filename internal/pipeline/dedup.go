package pipeline

import "github.com/mossdale/weather-ingest/internal/domain"

// FilterExactDuplicates drops rows whose full field tuple already appeared
// earlier in the batch. First occurrence wins; order is preserved. The
// filter only sees the new batch; duplicates against rows from earlier runs
// are caught by the store's uniqueness constraint at insert time.
func FilterExactDuplicates(batch []domain.RawRecord) ([]domain.RawRecord, int) {
	seen := make(map[string]struct{}, len(batch))
	kept := make([]domain.RawRecord, 0, len(batch))
	for _, rec := range batch {
		key := rec.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, rec)
	}
	return kept, len(batch) - len(kept)
}

// CapturedToday reports whether any already-archived record was scraped on
// the given calendar date. When true the whole new batch is treated as
// already captured and the run is skipped end to end.
//
// The guard is deliberately coarse: it is date-level, not row-level, so it
// can falsely skip a legitimate second scrape on the same day. Operators
// who want an intra-day re-run must delete or rename the raw archive. The
// store's uniqueness constraint remains the authoritative duplicate
// defense either way.
func CapturedToday(prior []domain.RawRecord, today string) bool {
	for _, rec := range prior {
		if domain.ScrapeDate(rec.ScrapedAt) == today {
			return true
		}
	}
	return false
}
