package journey

import (
	"fmt"
	"time"

	"vesseltrack/internal/domain"
)

// Coordinates used across the tests: berth positions sit well inside the 5 km
// port zone, the crossing position is outside every zone.
const (
	algecirasLat = 36.128740148
	algecirasLon = -5.439981128
	ceutaLat     = 35.889
	ceutaLon     = -5.307

	nearAlgecirasLat = 36.120
	nearAlgecirasLon = -5.430
	nearCeutaLat     = 35.900
	nearCeutaLon     = -5.310

	midStraitLat = 36.000
	midStraitLon = -5.380
)

func fptr(v float64) *float64 { return &v }

func sampleAt(ts string, lat, lon, speed float64, status string) domain.RawDataRow {
	r := domain.RawDataRow{
		Timestamp: ts,
		Latitude:  fptr(lat),
		Longitude: fptr(lon),
		Speed:     fptr(speed),
		NavStatus: status,
		Status:    domain.ParseNavStatus(status),
	}
	if date, tod, ok := domain.SplitTimestamp(ts); ok {
		r.Date = date
		r.Time = tod
	}
	return r
}

// stamp renders the n-th timestamp of a 30-second cadence starting at
// 2024-03-15 08:00:00.000.
func stamp(n int) string {
	base := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(n) * 30 * time.Second).Format("2006-01-02 15:04:05.000")
}

func gapMarkerAt(ts, duration string) domain.RawDataRow {
	r := domain.RawDataRow{
		Timestamp:   ts,
		NavStatus:   domain.CodeGap,
		Status:      domain.NavGap,
		IsGapMarker: true,
		GapDuration: duration,
	}
	if date, tod, ok := domain.SplitTimestamp(ts); ok {
		r.Date = date
		r.Time = tod
	}
	return r
}

// crossingRows builds a full Algeciras→Ceuta crossing: 4 docked rows, 2
// maneuvering out, 10 underway, 2 maneuvering in, 2 docked at the arrival
// berth. Row 18 closes the journey and opens a trailing incomplete one.
func crossingRows() []domain.RawDataRow {
	rows := make([]domain.RawDataRow, 0, 20)
	for i := 0; i < 4; i++ {
		rows = append(rows, sampleAt(stamp(i), algecirasLat, algecirasLon, 0.1, "0.0"))
	}
	for i := 4; i < 6; i++ {
		rows = append(rows, sampleAt(stamp(i), nearAlgecirasLat, nearAlgecirasLon, 4.5, "1.0"))
	}
	for i := 6; i < 16; i++ {
		lat := midStraitLat - float64(i-6)*0.01
		rows = append(rows, sampleAt(stamp(i), lat, midStraitLon, 22.0, "2.0"))
	}
	for i := 16; i < 18; i++ {
		rows = append(rows, sampleAt(stamp(i), nearCeutaLat, nearCeutaLon, 4.0, "1.0"))
	}
	for i := 18; i < 20; i++ {
		rows = append(rows, sampleAt(stamp(i), ceutaLat, ceutaLon, 0.0, "0.0"))
	}
	return rows
}

// crossingCSVRows renders the crossing as CSV data lines on a 400 ms cadence,
// below the merger's gap threshold so the pipeline sees a continuous feed.
func crossingCSVRows() []string {
	base := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	pos := func(i int) (float64, float64, float64, string) {
		switch {
		case i < 4:
			return algecirasLat, algecirasLon, 0.1, "0.0"
		case i < 6:
			return nearAlgecirasLat, nearAlgecirasLon, 4.5, "1.0"
		case i < 16:
			return midStraitLat - float64(i-6)*0.01, midStraitLon, 22.0, "2.0"
		case i < 18:
			return nearCeutaLat, nearCeutaLon, 4.0, "1.0"
		default:
			return ceutaLat, ceutaLon, 0.0, "0.0"
		}
	}

	lines := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		ts := base.Add(time.Duration(i) * 400 * time.Millisecond).Format("2006-01-02 15:04:05.000")
		lat, lon, speed, status := pos(i)
		lines = append(lines, fmt.Sprintf("%s,%.9f,%.9f,%.1f,%s", ts, lat, lon, speed, status))
	}
	return lines
}

func labelList(intervals []domain.SimpleInterval) []string {
	labels := make([]string, len(intervals))
	for i := range intervals {
		labels[i] = intervals[i].ClassificationType
	}
	return labels
}
