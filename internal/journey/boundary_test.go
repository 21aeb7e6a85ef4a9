package journey

import (
	"testing"

	"vesseltrack/internal/catalog"
	"vesseltrack/internal/domain"
	"vesseltrack/internal/ports"
)

func newTestAnalyzer() *ports.Analyzer {
	return ports.NewAnalyzer(catalog.Default().Ports)
}

func TestDetectBoundariesCompleteCrossing(t *testing.T) {
	rows := crossingRows()
	boundaries := DetectBoundaries(rows, newTestAnalyzer(), DefaultPortZoneKm)

	if len(boundaries) != 2 {
		t.Fatalf("expected 2 boundaries, got %d", len(boundaries))
	}

	first := boundaries[0]
	if !first.IsComplete {
		t.Fatal("expected first journey complete")
	}
	if first.StartIndex != 0 || first.EndIndex != 18 {
		t.Fatalf("expected span [0,18], got [%d,%d]", first.StartIndex, first.EndIndex)
	}
	if first.StartPort != "Algeciras" || first.EndPort != "Ceuta" {
		t.Fatalf("expected Algeciras→Ceuta, got %s→%s", first.StartPort, first.EndPort)
	}

	// The closing dock row opens the next journey, which the data never
	// closes.
	second := boundaries[1]
	if second.IsComplete {
		t.Fatal("expected trailing journey incomplete")
	}
	if second.StartIndex != 18 || second.EndIndex != 19 {
		t.Fatalf("expected span [18,19], got [%d,%d]", second.StartIndex, second.EndIndex)
	}
	if second.StartPort != "Ceuta" || second.EndPort != UnknownPort {
		t.Fatalf("expected Ceuta→%s, got %s→%s", UnknownPort, second.StartPort, second.EndPort)
	}
}

func TestDetectBoundariesDockedAtSameQuayNeverCloses(t *testing.T) {
	var rows []domain.RawDataRow
	for i := 0; i < 6; i++ {
		rows = append(rows, sampleAt(stamp(i), algecirasLat, algecirasLon, 0.0, "0.0"))
	}

	boundaries := DetectBoundaries(rows, newTestAnalyzer(), DefaultPortZoneKm)
	if len(boundaries) != 1 {
		t.Fatalf("expected 1 boundary, got %d", len(boundaries))
	}
	if boundaries[0].IsComplete {
		t.Fatal("expected incomplete journey")
	}
	if boundaries[0].EndPort != UnknownPort {
		t.Fatalf("expected end port %q, got %q", UnknownPort, boundaries[0].EndPort)
	}
}

func TestDetectBoundariesIgnoresNonDockedAndBadRows(t *testing.T) {
	rows := []domain.RawDataRow{
		// Maneuvering inside the port zone does not open a journey.
		sampleAt(stamp(0), algecirasLat, algecirasLon, 4.0, "1.0"),
		// Docked but out at sea does not open one either.
		sampleAt(stamp(1), midStraitLat, midStraitLon, 0.0, "0.0"),
		// Markers and rows without coordinates are skipped.
		gapMarkerAt(stamp(2), "2.00s"),
		{Timestamp: stamp(3), NavStatus: "0.0", Status: domain.NavStopped},
	}

	boundaries := DetectBoundaries(rows, newTestAnalyzer(), DefaultPortZoneKm)
	if len(boundaries) != 0 {
		t.Fatalf("expected no boundaries, got %d", len(boundaries))
	}
}

func TestDetectBoundariesBackToBackCrossings(t *testing.T) {
	var rows []domain.RawDataRow
	rows = append(rows, sampleAt(stamp(0), algecirasLat, algecirasLon, 0.0, "0.0"))
	rows = append(rows, sampleAt(stamp(1), midStraitLat, midStraitLon, 22.0, "2.0"))
	rows = append(rows, sampleAt(stamp(2), ceutaLat, ceutaLon, 0.0, "0.0"))
	rows = append(rows, sampleAt(stamp(3), midStraitLat, midStraitLon, 22.0, "2.0"))
	rows = append(rows, sampleAt(stamp(4), algecirasLat, algecirasLon, 0.0, "0.0"))

	boundaries := DetectBoundaries(rows, newTestAnalyzer(), DefaultPortZoneKm)
	if len(boundaries) != 3 {
		t.Fatalf("expected 3 boundaries, got %d", len(boundaries))
	}

	if boundaries[0].EndIndex != 2 || boundaries[1].StartIndex != 2 {
		t.Fatalf("expected journeys to share the dock row at index 2, got end %d / start %d",
			boundaries[0].EndIndex, boundaries[1].StartIndex)
	}
	if boundaries[1].StartPort != "Ceuta" || boundaries[1].EndPort != "Algeciras" {
		t.Fatalf("expected Ceuta→Algeciras, got %s→%s", boundaries[1].StartPort, boundaries[1].EndPort)
	}
	if boundaries[2].IsComplete {
		t.Fatal("expected trailing journey incomplete")
	}
}

func TestDetectBoundariesEmptyInput(t *testing.T) {
	if got := DetectBoundaries(nil, newTestAnalyzer(), DefaultPortZoneKm); len(got) != 0 {
		t.Fatalf("expected no boundaries, got %d", len(got))
	}
}
