package domain

import (
	"math"
	"strings"
	"time"
)

// NavStatus is the decoded navigational status of a telemetry sample.
// The feed encodes it as a numeric-looking string; parsing happens once at the
// ingestion boundary and the raw string is kept on the row for output.
type NavStatus int

const (
	NavUnknown NavStatus = iota
	NavStopped
	NavManeuvering
	NavUnderway
	NavGap
)

// Legacy wire codes for navigational status.
const (
	CodeStopped     = "0.0"
	CodeManeuvering = "1.0"
	CodeUnderway    = "2.0"
	CodeGap         = "GAP"
)

func ParseNavStatus(s string) NavStatus {
	switch strings.TrimSpace(s) {
	case CodeStopped:
		return NavStopped
	case CodeManeuvering:
		return NavManeuvering
	case CodeUnderway:
		return NavUnderway
	case CodeGap:
		return NavGap
	default:
		return NavUnknown
	}
}

// Code returns the legacy wire encoding for the status.
func (s NavStatus) Code() string {
	switch s {
	case NavStopped:
		return CodeStopped
	case NavManeuvering:
		return CodeManeuvering
	case NavUnderway:
		return CodeUnderway
	case NavGap:
		return CodeGap
	default:
		return ""
	}
}

func (s NavStatus) String() string {
	switch s {
	case NavStopped:
		return "stopped"
	case NavManeuvering:
		return "maneuvering"
	case NavUnderway:
		return "underway"
	case NavGap:
		return "gap"
	default:
		return "unknown"
	}
}

// RawDataRow is one telemetry sample, or a synthetic gap marker inserted by
// the merger. Gap markers carry no position or speed and must be filtered out
// of journey content, but they survive in the merged sequence as boundary
// signals for the gap detector.
type RawDataRow struct {
	Timestamp   string   `json:"timestamp"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Speed       *float64 `json:"speed"`
	NavStatus   string   `json:"navStatus"`
	IsGapMarker bool     `json:"isGapMarker"`
	GapDuration string   `json:"gapDuration,omitempty"`

	// Status is the decoded NavStatus; derived from the NavStatus string at
	// normalization time.
	Status NavStatus `json:"-"`
}

// IsMarker reports whether the row is a synthetic gap marker rather than a
// real sample.
func (r *RawDataRow) IsMarker() bool {
	return r.IsGapMarker || r.Status == NavGap
}

// HasCoordinates reports whether the row carries a usable position.
func (r *RawDataRow) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil &&
		!math.IsNaN(*r.Latitude) && !math.IsNaN(*r.Longitude)
}

// ParsedTime parses the row's timestamp. ok is false when the timestamp is
// missing or malformed; callers treat such rows as carrying no ordering
// information.
func (r *RawDataRow) ParsedTime() (time.Time, bool) {
	return ParseTimestamp(r.Timestamp)
}

// Timestamp layouts accepted by the feed, most specific first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a feed timestamp ("YYYY-MM-DD HH:MM:SS.mmm", with a
// millisecond-less fallback).
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SplitTimestamp splits a feed timestamp into its date and time-of-day parts.
// ok is false when the value does not contain both parts.
func SplitTimestamp(ts string) (date, tod string, ok bool) {
	parts := strings.SplitN(ts, " ", 2)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
