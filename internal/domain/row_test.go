package domain

import (
	"math"
	"testing"
)

func TestParseNavStatus(t *testing.T) {
	tests := []struct {
		in   string
		want NavStatus
	}{
		{"0.0", NavStopped},
		{"1.0", NavManeuvering},
		{"2.0", NavUnderway},
		{"GAP", NavGap},
		{" 0.0 ", NavStopped},
		{"", NavUnknown},
		{"3.0", NavUnknown},
		{"0", NavUnknown},
	}
	for _, tt := range tests {
		if got := ParseNavStatus(tt.in); got != tt.want {
			t.Fatalf("ParseNavStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNavStatusRoundTrip(t *testing.T) {
	for _, s := range []NavStatus{NavStopped, NavManeuvering, NavUnderway, NavGap} {
		if got := ParseNavStatus(s.Code()); got != s {
			t.Fatalf("round trip of %v via %q gave %v", s, s.Code(), got)
		}
	}
}

func TestHasCoordinates(t *testing.T) {
	lat, lon, nan := 36.1, -5.4, math.NaN()
	tests := []struct {
		name string
		row  RawDataRow
		want bool
	}{
		{"both present", RawDataRow{Latitude: &lat, Longitude: &lon}, true},
		{"missing latitude", RawDataRow{Longitude: &lon}, false},
		{"missing longitude", RawDataRow{Latitude: &lat}, false},
		{"NaN latitude", RawDataRow{Latitude: &nan, Longitude: &lon}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.HasCoordinates(); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	if ts, ok := ParseTimestamp("2024-03-15 08:00:00.250"); !ok || ts.Nanosecond() != 250_000_000 {
		t.Fatalf("expected millisecond parse, got %v ok=%v", ts, ok)
	}
	if _, ok := ParseTimestamp("2024-03-15 08:00:00"); !ok {
		t.Fatal("expected fallback layout to parse")
	}
	for _, bad := range []string{"", "  ", "15/03/2024 08:00", "2024-03-15T08:00:00Z"} {
		if _, ok := ParseTimestamp(bad); ok {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}

func TestSplitTimestamp(t *testing.T) {
	date, tod, ok := SplitTimestamp("2024-03-15 08:00:00.000")
	if !ok || date != "2024-03-15" || tod != "08:00:00.000" {
		t.Fatalf("got (%q, %q, %v)", date, tod, ok)
	}
	if _, _, ok := SplitTimestamp("2024-03-15"); ok {
		t.Fatal("expected split failure without a time part")
	}
}

func TestIsMarker(t *testing.T) {
	if !(&RawDataRow{IsGapMarker: true}).IsMarker() {
		t.Fatal("expected flagged row to be a marker")
	}
	if !(&RawDataRow{Status: NavGap}).IsMarker() {
		t.Fatal("expected GAP status row to be a marker")
	}
	if (&RawDataRow{Status: NavStopped}).IsMarker() {
		t.Fatal("expected plain row not to be a marker")
	}
}
