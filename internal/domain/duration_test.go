package domain

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0h 0m 0s"},
		{90 * time.Second, "0h 1m 30s"},
		{3*time.Hour + 25*time.Minute + 9*time.Second, "3h 25m 9s"},
		{26*time.Hour + 5*time.Minute, "1d 2h 5m 0s"},
		{48 * time.Hour, "2d 0h 0m 0s"},
		{-time.Minute, "0h 0m 0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatTimeDifference(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{"simple", "2024-03-15 08:00:00.000", "2024-03-15 09:30:15.000", "1h 30m 15s"},
		{"across a day", "2024-03-15 23:00:00.000", "2024-03-17 01:00:00.000", "1d 2h 0m 0s"},
		{"without milliseconds", "2024-03-15 08:00:00", "2024-03-15 08:00:30", "0h 0m 30s"},
		{"negative clamps to zero", "2024-03-15 09:00:00.000", "2024-03-15 08:00:00.000", "0h 0m 0s"},
		{"unparseable start", "bogus", "2024-03-15 08:00:00.000", "0h 0m 0s"},
		{"unparseable end", "2024-03-15 08:00:00.000", "", "0h 0m 0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimeDifference(tt.start, tt.end); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatGapSeconds(t *testing.T) {
	if got := FormatGapSeconds(2 * time.Second); got != "2.00s" {
		t.Fatalf("got %q, want 2.00s", got)
	}
	if got := FormatGapSeconds(1500 * time.Millisecond); got != "1.50s" {
		t.Fatalf("got %q, want 1.50s", got)
	}
}
