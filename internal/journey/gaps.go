package journey

import (
	"fmt"

	"vesseltrack/internal/domain"
)

// DetectGaps collects the gap markers inside one journey's raw span and turns
// them into gap intervals. journeyIndex is the 1-based index of the enclosing
// journey; a gap marker always sits between two samples of the same journey,
// so both sides report that index.
func DetectGaps(rows []domain.RawDataRow, b Boundary, journeyIndex int) []domain.GapInterval {
	var gaps []domain.GapInterval

	for i := b.StartIndex; i <= b.EndIndex && i < len(rows); i++ {
		row := &rows[i]
		if !row.IsMarker() {
			continue
		}

		endTime := row.Timestamp
		for j := i + 1; j <= b.EndIndex && j < len(rows); j++ {
			if !rows[j].IsMarker() {
				endTime = rows[j].Timestamp
				break
			}
		}

		duration := row.GapDuration
		reason := "Gap detectado: duración desconocida"
		if duration == "" {
			duration = "0s"
		} else {
			reason = fmt.Sprintf("Gap detectado: %s", duration)
		}

		gaps = append(gaps, domain.GapInterval{
			StartTime:          row.Timestamp,
			EndTime:            endTime,
			Duration:           duration,
			Reason:             reason,
			BeforeJourneyIndex: journeyIndex,
			AfterJourneyIndex:  journeyIndex,
		})
	}

	return gaps
}
