package csvdata

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"vesseltrack/internal/domain"
)

// DefaultGapThreshold is the largest sample spacing treated as continuous;
// anything wider gets a synthetic gap marker.
const DefaultGapThreshold = 500 * time.Millisecond

// ErrNoValidRows is returned when no source blob contributed a single row.
var ErrNoValidRows = errors.New("no valid rows in any CSV source")

// MergeResult is the merged, chronologically sorted, gap-annotated row
// sequence plus its bookkeeping counts.
type MergeResult struct {
	Rows           []domain.RawDataRow
	TotalRows      int
	FilesProcessed int
	GapsDetected   int
}

// Merger combines rows from multiple CSV sources into the single sequence
// the journey engine consumes.
type Merger struct {
	reader       *Reader
	gapThreshold time.Duration
	logger       *slog.Logger
}

func NewMerger(gapThreshold time.Duration, logger *slog.Logger) *Merger {
	if gapThreshold <= 0 {
		gapThreshold = DefaultGapThreshold
	}
	return &Merger{
		reader:       NewReader(logger),
		gapThreshold: gapThreshold,
		logger:       logger.With("component", "csv_merger"),
	}
}

// Merge parses every blob, concatenates the rows, sorts them
// chronologically and inserts gap markers. Individual blobs that fail the
// header checks are skipped; only a fully empty combined result is an error.
func (m *Merger) Merge(csvTexts []string, delimiter string) (*MergeResult, error) {
	start := time.Now()

	var combined []domain.RawDataRow
	for i, text := range csvTexts {
		rows := m.reader.ReadBlob(text, delimiter)
		if len(rows) == 0 {
			m.logger.Warn("source yielded no rows", "source", i+1)
			continue
		}
		m.logger.Info("source parsed", "source", i+1, "rows", len(rows))
		combined = append(combined, rows...)
	}

	if len(combined) == 0 {
		return nil, ErrNoValidRows
	}

	sortChronologically(combined)
	merged, gaps := insertGapMarkers(combined, m.gapThreshold)

	m.logger.Info("merge completed",
		"files", len(csvTexts),
		"rows", len(merged),
		"gaps", gaps,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &MergeResult{
		Rows:           merged,
		TotalRows:      len(merged),
		FilesProcessed: len(csvTexts),
		GapsDetected:   gaps,
	}, nil
}

// Meta returns the merge bookkeeping in its wire shape.
func (r *MergeResult) Meta() *domain.MergeMeta {
	return &domain.MergeMeta{
		TotalRows:      r.TotalRows,
		FilesProcessed: r.FilesProcessed,
		GapsDetected:   r.GapsDetected,
	}
}

// sortChronologically orders rows by parsed timestamp. Rows whose timestamp
// cannot be parsed carry no ordering information: they compare equal to
// everything and the stable sort leaves them where they were.
func sortChronologically(rows []domain.RawDataRow) {
	type sortKey struct {
		t  time.Time
		ok bool
	}
	keys := make([]sortKey, len(rows))
	for i := range rows {
		t, ok := rows[i].ParsedTime()
		keys[i] = sortKey{t: t, ok: ok}
	}

	indices := make([]int, len(rows))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ka, kb := keys[indices[a]], keys[indices[b]]
		if !ka.ok || !kb.ok {
			return false
		}
		return ka.t.Before(kb.t)
	})

	sorted := make([]domain.RawDataRow, len(rows))
	for i, idx := range indices {
		sorted[i] = rows[idx]
	}
	copy(rows, sorted)
}

// insertGapMarkers walks the sorted sequence and inserts one synthetic
// marker after every pair of adjacent rows spaced wider than the threshold.
// Pairs with unparseable timestamps are left alone.
func insertGapMarkers(rows []domain.RawDataRow, threshold time.Duration) ([]domain.RawDataRow, int) {
	result := make([]domain.RawDataRow, 0, len(rows))
	gaps := 0

	for i := range rows {
		result = append(result, rows[i])
		if i == len(rows)-1 {
			break
		}

		cur, okCur := rows[i].ParsedTime()
		next, okNext := rows[i+1].ParsedTime()
		if !okCur || !okNext {
			continue
		}

		if delta := next.Sub(cur); delta > threshold {
			result = append(result, newGapMarker(rows[i], delta))
			gaps++
		}
	}

	return result, gaps
}

func newGapMarker(after domain.RawDataRow, delta time.Duration) domain.RawDataRow {
	marker := domain.RawDataRow{
		Timestamp:   after.Timestamp,
		NavStatus:   domain.CodeGap,
		Status:      domain.NavGap,
		IsGapMarker: true,
		GapDuration: domain.FormatGapSeconds(delta),
	}
	if date, tod, ok := domain.SplitTimestamp(after.Timestamp); ok {
		marker.Date = date
		marker.Time = tod
	}
	return marker
}
