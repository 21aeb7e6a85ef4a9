package journey

import (
	"strings"

	"vesseltrack/internal/domain"
	"vesseltrack/internal/ports"
)

// UnknownPort is the end-port label of a journey the data never closed.
const UnknownPort = "Desconocido"

// Boundary marks one detected journey span over the merged row sequence.
// Indices are inclusive and refer to the raw (marker-carrying) sequence.
type Boundary struct {
	StartIndex int
	EndIndex   int
	StartPort  string
	EndPort    string
	IsComplete bool
}

// DetectBoundaries scans the merged rows for journey boundaries. A journey
// opens on a docked row inside a port zone; it closes on a docked row inside
// a DIFFERENT port's zone — and that same row immediately opens the next
// journey, since one dock event ends a leg and starts the following one.
// Gap markers and rows without coordinates neither open nor close journeys
// and do not disturb an open one. A journey still open after the scan is
// emitted incomplete, spanning to the last row.
func DetectBoundaries(rows []domain.RawDataRow, analyzer *ports.Analyzer, portZoneKm float64) []Boundary {
	var boundaries []Boundary

	openStart := -1
	openPort := ""

	for i := range rows {
		row := &rows[i]
		if row.IsMarker() || !row.HasCoordinates() {
			continue
		}

		if row.Status != domain.NavStopped {
			continue
		}

		analysis := analyzer.Analyze(*row.Latitude, *row.Longitude)
		if analysis.NearestDistance > portZoneKm {
			continue
		}
		port := strings.TrimSpace(analysis.NearestPort)

		if openStart < 0 {
			openStart = i
			openPort = port
			continue
		}

		if port != openPort {
			boundaries = append(boundaries, Boundary{
				StartIndex: openStart,
				EndIndex:   i,
				StartPort:  openPort,
				EndPort:    port,
				IsComplete: true,
			})
			// The closing dock event starts the next leg.
			openStart = i
			openPort = port
		}
	}

	if openStart >= 0 {
		boundaries = append(boundaries, Boundary{
			StartIndex: openStart,
			EndIndex:   len(rows) - 1,
			StartPort:  openPort,
			EndPort:    UnknownPort,
			IsComplete: false,
		})
	}

	return boundaries
}
