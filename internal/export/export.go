// Package export writes a project's metric records as CSV, XLSX, JSON or
// Parquet.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"chronology/internal/jsonutil"
	"chronology/internal/model"
)

// Format is an export file format.
type Format string

const (
	CSV     Format = "csv"
	XLSX    Format = "xlsx"
	JSON    Format = "json"
	Parquet Format = "parquet"
)

// Formats lists the supported formats.
var Formats = []Format{CSV, XLSX, JSON, Parquet}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case JSON:
		return "application/json"
	case Parquet:
		return "application/vnd.apache.parquet"
	}
	return "application/octet-stream"
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename returns "<project-slug>-metrics-YYYY-MM-DD.<ext>".
func Filename(p *model.Project, f Format, now time.Time) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(p.Name), "-"), "-")
	if slug == "" {
		slug = "project"
	}
	return fmt.Sprintf("%s-metrics-%s.%s", slug, now.Format(time.DateOnly), f)
}

// Column is one exported metric column.
type Column struct {
	Key    string
	Header string
}

// Columns returns the project's enabled metrics as export columns.
func Columns(p *model.Project) []Column {
	var cols []Column
	for _, id := range p.Enabled() {
		cols = append(cols, Column{Key: id, Header: p.MetricLabel(id)})
	}
	return cols
}

// Headers returns the header row: Date, Model, Version and one per metric.
func Headers(cols []Column) []string {
	h := []string{"Date", "Model", "Version"}
	for _, c := range cols {
		h = append(h, c.Header)
	}
	return h
}

// Write encodes records of p to w in format f.
func Write(w io.Writer, f Format, p *model.Project, records []model.MetricRecord) error {
	switch f {
	case CSV:
		return writeCSV(w, Columns(p), records)
	case XLSX:
		return writeXLSX(w, Columns(p), records)
	case JSON:
		return writeJSON(w, records)
	case Parquet:
		return writeParquet(w, records)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// cell returns a metric's text: three decimals for numbers, the raw text
// for non-numeric custom values, empty when missing.
func cell(r model.MetricRecord, key string) string {
	if v, ok := r.Value(key); ok {
		return fmt.Sprintf("%.3f", v)
	}
	if raw, ok := r.AdditionalMetrics[key]; ok && !jsonutil.IsEmpty(raw) {
		return jsonutil.ToString(raw)
	}
	return ""
}

func writeCSV(w io.Writer, cols []Column, records []model.MetricRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(cols)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Timestamp.Date(), r.ModelName, r.ModelVersion}
		for _, c := range cols {
			row = append(row, cell(r, c.Key))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, records []model.MetricRecord) error {
	if records == nil {
		records = []model.MetricRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}
