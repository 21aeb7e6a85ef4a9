package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"vesseltrack/internal/domain"
)

// Column names the telemetry export uses. The time column must match
// exactly; the navstatus column is located by substring because its unit
// suffix has varied across export versions.
const (
	colTime      = "time"
	colLat       = "00-lathr [deg]"
	colLon       = "01-lonhr [deg]"
	colSpeed     = "04-speed [knots]"
	colNavStatus = "06-navstatus [adim]"

	navStatusHeaderHint = "navstatus"
)

// Reader parses one CSV text blob into normalized telemetry rows.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger.With("component", "csv_reader")}
}

// ReadBlob parses a single CSV blob. A blob without the required time and
// navstatus headers, or without at least one data line, yields zero rows —
// that is a skip, not an error; the merger decides whether the combined
// input is usable.
func (r *Reader) ReadBlob(text, delimiter string) []domain.RawDataRow {
	text = normalizeLineEndings(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = resolveDelimiter(delimiter)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !hasRequiredColumns(header) {
		r.logger.Debug("blob skipped, required headers missing")
		return nil
	}

	names := columnNames(header)

	var rows []domain.RawDataRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.logger.Warn("unreadable CSV line, stopping blob", "error", err)
			break
		}

		cells := make(map[string]*string, len(names))
		for i, name := range names {
			var value string
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			if value == "" {
				cells[name] = nil
			} else {
				v := value
				cells[name] = &v
			}
		}
		rows = append(rows, normalizeRow(cells, names))
	}

	return rows
}

// columnNames assigns a synthetic name to any unnamed column so every cell
// stays addressable.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			names[i] = fmt.Sprintf("column_%d", i)
		} else {
			names[i] = h
		}
	}
	return names
}

func hasRequiredColumns(header []string) bool {
	hasTime, hasNavStatus := false, false
	for _, h := range header {
		if h == colTime {
			hasTime = true
		}
		if strings.Contains(strings.ToLower(h), navStatusHeaderHint) {
			hasNavStatus = true
		}
	}
	return hasTime && hasNavStatus
}

// normalizeRow maps a parsed CSV record onto a typed telemetry row. Cells
// that are missing or fail to parse become nil fields; a bad cell never
// aborts the blob.
func normalizeRow(cells map[string]*string, names []string) domain.RawDataRow {
	row := domain.RawDataRow{
		Latitude:  parseFloatCell(cells[colLat]),
		Longitude: parseFloatCell(cells[colLon]),
		Speed:     parseFloatCell(cells[colSpeed]),
	}

	if ts := cells[colTime]; ts != nil {
		row.Timestamp = *ts
		if date, tod, ok := domain.SplitTimestamp(*ts); ok {
			row.Date = date
			row.Time = tod
		}
	}

	if ns := navStatusCell(cells, names); ns != nil {
		row.NavStatus = *ns
	}
	row.Status = domain.ParseNavStatus(row.NavStatus)

	return row
}

// navStatusCell prefers the canonical column name and falls back to any
// column whose name contains "navstatus".
func navStatusCell(cells map[string]*string, names []string) *string {
	if v, ok := cells[colNavStatus]; ok && v != nil {
		return v
	}
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), navStatusHeaderHint) {
			return cells[name]
		}
	}
	return nil
}

func parseFloatCell(cell *string) *float64 {
	if cell == nil {
		return nil
	}
	f, err := strconv.ParseFloat(*cell, 64)
	if err != nil {
		return nil
	}
	return &f
}

func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func resolveDelimiter(delimiter string) rune {
	switch delimiter {
	case "", ",":
		return ','
	case "tab", "\\t", "\t":
		return '\t'
	default:
		return []rune(delimiter)[0]
	}
}
