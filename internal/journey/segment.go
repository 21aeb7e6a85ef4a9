package journey

import (
	"math"

	"vesseltrack/internal/domain"
	"vesseltrack/internal/ports"
)

// effectiveStatus is the status string used for run grouping. Samples missing
// a status are grouped with docked rows, matching how the telemetry export
// leaves the field blank while at berth.
func effectiveStatus(row *domain.RawDataRow) string {
	if row.NavStatus == "" {
		return domain.CodeStopped
	}
	return row.NavStatus
}

// splitRuns splits a marker-free journey slice into maximal runs of rows
// sharing one effective status, preserving order.
func splitRuns(rows []domain.RawDataRow) [][]domain.RawDataRow {
	if len(rows) == 0 {
		return nil
	}

	var runs [][]domain.RawDataRow
	start := 0
	current := effectiveStatus(&rows[0])
	for i := 1; i < len(rows); i++ {
		if s := effectiveStatus(&rows[i]); s != current {
			runs = append(runs, rows[start:i])
			start = i
			current = s
		}
	}
	runs = append(runs, rows[start:])
	return runs
}

// BuildIntervals segments a complete journey's marker-free rows into
// classified intervals. All runs are built first so every interval is
// classified against the journey's true interval count.
func BuildIntervals(rows []domain.RawDataRow, b Boundary, journeyIndex int, analyzer *ports.Analyzer, portZoneKm float64) []domain.SimpleInterval {
	runs := splitRuns(rows)
	if len(runs) == 0 {
		return nil
	}

	firstManeuverIdx := -1
	for i, run := range runs {
		if effectiveStatus(&run[0]) == domain.CodeManeuvering {
			firstManeuverIdx = i
			break
		}
	}

	intervals := make([]domain.SimpleInterval, 0, len(runs))
	for i, run := range runs {
		first := &run[0]
		last := &run[len(run)-1]

		startAnalysis := analysisForRow(run, analyzer, false)
		endAnalysis := analysisForRow(run, analyzer, true)

		label := ClassifyInterval(classificationInput{
			NavStatus:     first.NavStatus,
			StartAnalysis: startAnalysis,
			EndAnalysis:   endAnalysis,
			Index:         i,
			Total:         len(runs),
			StartPort:     b.StartPort,
			EndPort:       b.EndPort,
			FirstManeuver: i == firstManeuverIdx,
			PortZoneKm:    portZoneKm,
		})

		endDate, endTime := endDateTime(last.Timestamp)

		intervals = append(intervals, domain.SimpleInterval{
			StartDate:          first.Date,
			StartTime:          first.Timestamp,
			EndDate:            endDate,
			EndTime:            endTime,
			NavStatus:          first.NavStatus,
			Duration:           domain.FormatTimeDifference(first.Timestamp, last.Timestamp),
			AvgSpeed:           averageSpeed(run),
			SampleCount:        len(run),
			StartLat:           first.Latitude,
			StartLon:           first.Longitude,
			EndLat:             last.Latitude,
			EndLon:             last.Longitude,
			StartPortDistances: startAnalysis,
			EndPortDistances:   endAnalysis,
			ClassificationType: label,
			JourneyIndex:       journeyIndex,
			IntervalNumber:     i + 1,
			CoordinatePoints:   coordinatePoints(run),
		})
	}

	return intervals
}

// analysisForRow computes port distances for a run endpoint. The endpoint row
// occasionally lacks a position; the nearest positioned row from that end
// stands in. A run with no positions at all classifies as away from every
// port.
func analysisForRow(run []domain.RawDataRow, analyzer *ports.Analyzer, fromEnd bool) *domain.PortAnalysis {
	if fromEnd {
		for i := len(run) - 1; i >= 0; i-- {
			if run[i].HasCoordinates() {
				return analyzer.Analyze(*run[i].Latitude, *run[i].Longitude)
			}
		}
	} else {
		for i := range run {
			if run[i].HasCoordinates() {
				return analyzer.Analyze(*run[i].Latitude, *run[i].Longitude)
			}
		}
	}
	return &domain.PortAnalysis{
		Distances:       map[string]float64{},
		NearestDistance: math.Inf(1),
	}
}

// endDateTime derives an interval's closing date and time strings from its
// last sample's timestamp, with explicit placeholders when the value is
// missing or unsplittable.
func endDateTime(ts string) (string, string) {
	if ts == "" {
		return "Fecha inválida", "Hora inválida"
	}
	if date, _, ok := domain.SplitTimestamp(ts); ok {
		return date, ts
	}
	return ts, ts
}

func averageSpeed(rows []domain.RawDataRow) *float64 {
	sum := 0.0
	count := 0
	for i := range rows {
		if s := rows[i].Speed; s != nil && !math.IsNaN(*s) {
			sum += *s
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

func coordinatePoints(rows []domain.RawDataRow) []domain.CoordinatePoint {
	points := make([]domain.CoordinatePoint, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		points = append(points, domain.CoordinatePoint{
			Lat:       r.Latitude,
			Lon:       r.Longitude,
			Timestamp: r.Timestamp,
			Speed:     r.Speed,
			NavStatus: r.NavStatus,
		})
	}
	return points
}
