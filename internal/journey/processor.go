package journey

import (
	"log/slog"
	"time"

	"vesseltrack/internal/catalog"
	"vesseltrack/internal/csvdata"
	"vesseltrack/internal/domain"
	"vesseltrack/internal/ports"
)

// DefaultPortZoneKm is the radius around a port within which a docked sample
// counts as being at that port.
const DefaultPortZoneKm = 5.0

const (
	errNoData      = "No hay datos para procesar"
	errNoValidRows = "No se pudieron leer filas válidas"
)

// Processor reconstructs port-to-port journeys from merged telemetry rows and
// classifies each journey's intervals. Safe for concurrent use; every run
// gets its own proximity analyzer.
type Processor struct {
	merger     *csvdata.Merger
	catalog    *catalog.Catalog
	portZoneKm float64
	logger     *slog.Logger
}

func NewProcessor(cat *catalog.Catalog, gapThreshold time.Duration, portZoneKm float64, logger *slog.Logger) *Processor {
	if portZoneKm <= 0 {
		portZoneKm = DefaultPortZoneKm
	}
	return &Processor{
		merger:     csvdata.NewMerger(gapThreshold, logger),
		catalog:    cat,
		portZoneKm: portZoneKm,
		logger:     logger.With("component", "journey_processor"),
	}
}

// Merge exposes the CSV merge step on its own; callers that need the merged
// row sequence (replay) use it without re-running classification.
func (p *Processor) Merge(csvTexts []string, delimiter string) (*csvdata.MergeResult, error) {
	return p.merger.Merge(csvTexts, delimiter)
}

// ProcessCSVs runs the full pipeline: parse and merge the CSV blobs, then
// reconstruct journeys from the merged sequence. Failures come back as an
// unsuccessful Result value, never as an error.
func (p *Processor) ProcessCSVs(csvTexts []string, delimiter string) *domain.Result {
	merged, err := p.merger.Merge(csvTexts, delimiter)
	if err != nil {
		return &domain.Result{Success: false, Error: errNoValidRows}
	}

	result := p.ProcessRawData(merged.Rows)
	result.Meta = merged.Meta()
	if result.Data != nil {
		result.Data.Summary.FilesProcessed = merged.FilesProcessed
	}
	return result
}

// ProcessRawData reconstructs journeys from an already merged, sorted,
// gap-annotated row sequence.
func (p *Processor) ProcessRawData(rows []domain.RawDataRow) *domain.Result {
	if len(rows) == 0 {
		return &domain.Result{Success: false, Error: errNoData}
	}

	start := time.Now()
	analyzer := ports.NewAnalyzer(p.catalog.Ports)
	boundaries := DetectBoundaries(rows, analyzer, p.portZoneKm)

	journeys := make([]domain.Journey, 0, len(boundaries))
	gaps := make([]domain.GapInterval, 0)
	totalIntervals := 0
	incompleteJourneys := 0

	for i, b := range boundaries {
		journeyIndex := i + 1

		journeyGaps := DetectGaps(rows, b, journeyIndex)
		gaps = append(gaps, journeyGaps...)

		span := rows[b.StartIndex : b.EndIndex+1]
		samples := withoutMarkers(span)

		// Gaps poison the span: its intervals cannot be trusted, so the
		// journey is reported incomplete and unclassified.
		incomplete := !b.IsComplete || len(journeyGaps) > 0

		var intervals []domain.SimpleInterval
		if incomplete {
			incompleteJourneys++
			intervals = []domain.SimpleInterval{}
		} else {
			intervals = BuildIntervals(samples, b, journeyIndex, analyzer, p.portZoneKm)
			totalIntervals += len(intervals)
		}

		journeys = append(journeys, domain.Journey{
			JourneyIndex: journeyIndex,
			Intervals:    intervals,
			Metadata:     buildMetadata(b, samples, intervals, incomplete),
		})
	}

	p.logger.Info("processing completed",
		"rows", len(rows),
		"journeys", len(journeys),
		"intervals", totalIntervals,
		"gaps", len(gaps),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &domain.Result{
		Success: true,
		Data: &domain.ResultData{
			Journeys: journeys,
			Gaps:     gaps,
			Summary: domain.Summary{
				TotalIntervals:     totalIntervals,
				TotalRows:          len(rows),
				FilesProcessed:     1,
				TotalJourneys:      len(journeys),
				IncompleteJourneys: incompleteJourneys,
				TotalGaps:          len(gaps),
			},
		},
	}
}

func withoutMarkers(rows []domain.RawDataRow) []domain.RawDataRow {
	out := make([]domain.RawDataRow, 0, len(rows))
	for i := range rows {
		if !rows[i].IsMarker() {
			out = append(out, rows[i])
		}
	}
	return out
}

func buildMetadata(b Boundary, samples []domain.RawDataRow, intervals []domain.SimpleInterval, incomplete bool) domain.JourneyMetadata {
	meta := domain.JourneyMetadata{
		StartPort:    b.StartPort,
		EndPort:      b.EndPort,
		IsIncomplete: incomplete,
		Incompleteness: domain.Incompleteness{
			Start: false,
			End:   incomplete,
		},
		IntervalCount:       len(intervals),
		ClassificationTypes: uniqueLabels(intervals),
	}

	if len(samples) > 0 {
		first := &samples[0]
		last := &samples[len(samples)-1]
		meta.StartDate = first.Date
		meta.EndDate = last.Date
		meta.StartTime = first.Timestamp
		meta.EndTime = last.Timestamp
		meta.TotalDuration = domain.FormatTimeDifference(first.Timestamp, last.Timestamp)
	} else {
		meta.TotalDuration = domain.FormatTimeDifference("", "")
	}

	return meta
}

// uniqueLabels deduplicates interval labels preserving first-seen order.
func uniqueLabels(intervals []domain.SimpleInterval) []string {
	labels := make([]string, 0, len(intervals))
	seen := make(map[string]struct{}, len(intervals))
	for i := range intervals {
		label := intervals[i].ClassificationType
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}
