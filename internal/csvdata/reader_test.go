package csvdata

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleHeader = "time,00-lathr [deg],01-lonhr [deg],04-speed [knots],06-navstatus [adim]"

func TestReadBlobParsesRows(t *testing.T) {
	blob := sampleHeader + "\n" +
		"2024-03-15 08:00:00.000,36.128740148,-5.439981128,0.1,0.0\n" +
		"2024-03-15 08:00:00.400,36.128740148,-5.439981128,0.2,1.0\n"

	rows := NewReader(discardLogger()).ReadBlob(blob, ",")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Timestamp != "2024-03-15 08:00:00.000" {
		t.Fatalf("unexpected timestamp %q", first.Timestamp)
	}
	if first.Date != "2024-03-15" || first.Time != "08:00:00.000" {
		t.Fatalf("unexpected date/time split %q / %q", first.Date, first.Time)
	}
	if first.Latitude == nil || *first.Latitude != 36.128740148 {
		t.Fatalf("unexpected latitude %v", first.Latitude)
	}
	if first.NavStatus != "0.0" {
		t.Fatalf("unexpected navStatus %q", first.NavStatus)
	}
	if rows[1].NavStatus != "1.0" {
		t.Fatalf("unexpected navStatus %q", rows[1].NavStatus)
	}
}

func TestReadBlobEmptyCellsBecomeNil(t *testing.T) {
	blob := sampleHeader + "\n" +
		"2024-03-15 08:00:00.000,,,,0.0\n"

	rows := NewReader(discardLogger()).ReadBlob(blob, ",")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Latitude != nil || r.Longitude != nil || r.Speed != nil {
		t.Fatalf("expected nil position and speed, got %v %v %v", r.Latitude, r.Longitude, r.Speed)
	}
}

func TestReadBlobUnparseableNumberBecomesNil(t *testing.T) {
	blob := sampleHeader + "\n" +
		"2024-03-15 08:00:00.000,not-a-number,-5.44,12.x,0.0\n"

	rows := NewReader(discardLogger()).ReadBlob(blob, ",")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Latitude != nil {
		t.Fatalf("expected nil latitude, got %v", *rows[0].Latitude)
	}
	if rows[0].Speed != nil {
		t.Fatalf("expected nil speed, got %v", *rows[0].Speed)
	}
	if rows[0].Longitude == nil || *rows[0].Longitude != -5.44 {
		t.Fatalf("expected longitude -5.44, got %v", rows[0].Longitude)
	}
}

func TestReadBlobMissingRequiredHeadersYieldsNoRows(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"no navstatus column", "time,lat,lon\n2024-03-15 08:00:00.000,1,2\n"},
		{"no time column", "timestamp,06-navstatus [adim]\n2024-03-15 08:00:00.000,0.0\n"},
		{"empty blob", ""},
		{"whitespace only", "   \n  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rows := NewReader(discardLogger()).ReadBlob(tt.blob, ","); len(rows) != 0 {
				t.Fatalf("expected no rows, got %d", len(rows))
			}
		})
	}
}

// The navstatus column is located by substring so renamed unit suffixes keep
// working.
func TestReadBlobNavStatusColumnBySubstring(t *testing.T) {
	blob := "time,navstatus [raw]\n2024-03-15 08:00:00.000,2.0\n"
	rows := NewReader(discardLogger()).ReadBlob(blob, ",")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].NavStatus != "2.0" {
		t.Fatalf("expected navStatus 2.0, got %q", rows[0].NavStatus)
	}
}

func TestReadBlobTabDelimiter(t *testing.T) {
	blob := "time\t06-navstatus [adim]\n2024-03-15 08:00:00.000\t0.0\n"
	for _, delim := range []string{"tab", "\t", "\\t"} {
		rows := NewReader(discardLogger()).ReadBlob(blob, delim)
		if len(rows) != 1 {
			t.Fatalf("delimiter %q: expected 1 row, got %d", delim, len(rows))
		}
	}
}

func TestReadBlobWindowsLineEndings(t *testing.T) {
	blob := sampleHeader + "\r\n" +
		"2024-03-15 08:00:00.000,36.1,-5.4,0.1,0.0\r\n"
	rows := NewReader(discardLogger()).ReadBlob(blob, ",")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestColumnNamesFillsUnnamed(t *testing.T) {
	names := columnNames([]string{"time", "", "06-navstatus [adim]"})
	if names[1] != "column_1" {
		t.Fatalf("expected column_1, got %q", names[1])
	}
}
