package domain

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration as "1d 2h 3m 4s", dropping the day
// component when it is zero. Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// FormatTimeDifference renders the elapsed time between two feed timestamps.
// Unparseable input yields "0h 0m 0s" rather than an error: duration strings
// are display data and a bad timestamp must not abort the pipeline.
func FormatTimeDifference(start, end string) string {
	st, okStart := ParseTimestamp(start)
	et, okEnd := ParseTimestamp(end)
	if !okStart || !okEnd {
		return "0h 0m 0s"
	}
	return FormatDuration(et.Sub(st))
}

// FormatGapSeconds renders a gap length in seconds with two decimals, the
// format gap markers carry on the wire.
func FormatGapSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
