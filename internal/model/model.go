// Package model defines the core Chronology types: projects, timestamped
// metric records and per-project metric settings.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chronology/internal/jsonutil"
)

// Project groups metric records and the metric settings used to display them.
type Project struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	CreatedAt     Timestamp        `json:"createdAt"`
	UpdatedAt     Timestamp        `json:"updatedAt"`
	Records       []MetricRecord   `json:"records"`
	Color         string           `json:"color,omitempty"`
	MetricsConfig []MetricSettings `json:"metricsConfig,omitempty"`
}

// MetricRecord is one observation of a model's metrics at a point in time.
// Built-in metrics are optional; custom metrics live in AdditionalMetrics.
type MetricRecord struct {
	ID                string         `json:"id"`
	ProjectID         string         `json:"projectId"`
	Timestamp         Timestamp      `json:"timestamp"`
	ModelName         string         `json:"modelName"`
	ModelVersion      string         `json:"modelVersion,omitempty"`
	Accuracy          *float64       `json:"accuracy,omitempty"`
	Loss              *float64       `json:"loss,omitempty"`
	Precision         *float64       `json:"precision,omitempty"`
	Recall            *float64       `json:"recall,omitempty"`
	F1Score           *float64       `json:"f1Score,omitempty"`
	AdditionalMetrics map[string]any `json:"additionalMetrics,omitempty"`
}

// Float returns a pointer to v. Used to populate optional metric fields.
func Float(v float64) *float64 { return &v }

// Timestamp is a time that marshals as an ISO-8601 local timestamp and
// accepts date-only input.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// Now returns the current UTC time truncated to microseconds.
func Now() Timestamp { return Timestamp{Time: time.Now().UTC().Truncate(time.Microsecond)} }

// MarshalJSON encodes the timestamp; the zero time encodes as "".
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(FormatTimestamp(t.Time))
}

// UnmarshalJSON accepts any layout ParseTimestamp accepts. Empty strings and
// null decode to the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// String returns the ISO form used on the wire.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return FormatTimestamp(t.Time)
}

// Date returns the YYYY-MM-DD day of the timestamp.
func (t Timestamp) Date() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTimestamp parses ISO date and date-time strings. Values with an
// offset are converted to UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// FormatTimestamp formats t without an offset, with microseconds only when
// present.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02T15:04:05.000000")
	}
	return t.Format("2006-01-02T15:04:05")
}

// Value returns the numeric value of a metric on r. Built-in metrics read
// their field; anything else is looked up in AdditionalMetrics, where numeric
// strings are accepted.
func (r MetricRecord) Value(metricID string) (float64, bool) {
	if p, ok := r.builtin(metricID); ok {
		if p == nil {
			return 0, false
		}
		return *p, true
	}
	v, ok := r.AdditionalMetrics[metricID]
	if !ok {
		return 0, false
	}
	return jsonutil.ToFloat(v)
}

// builtin returns the field for a built-in metric id. The second result is
// false when id is not a built-in metric.
func (r MetricRecord) builtin(id string) (*float64, bool) {
	switch id {
	case MetricAccuracy:
		return r.Accuracy, true
	case MetricLoss:
		return r.Loss, true
	case MetricPrecision:
		return r.Precision, true
	case MetricRecall:
		return r.Recall, true
	case MetricF1Score:
		return r.F1Score, true
	}
	return nil, false
}

// SetBuiltin assigns a built-in metric field. It reports false for ids that
// are not built-in metrics.
func (r *MetricRecord) SetBuiltin(id string, v *float64) bool {
	switch id {
	case MetricAccuracy:
		r.Accuracy = v
	case MetricLoss:
		r.Loss = v
	case MetricPrecision:
		r.Precision = v
	case MetricRecall:
		r.Recall = v
	case MetricF1Score:
		r.F1Score = v
	default:
		return false
	}
	return true
}

// Enabled returns the ids of enabled metrics in configuration order.
func (p *Project) Enabled() []string {
	var ids []string
	for _, s := range p.Config() {
		if s.Enabled {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Config returns the project's metric settings, falling back to the
// default configuration when none are stored.
func (p *Project) Config() []MetricSettings {
	if len(p.MetricsConfig) > 0 {
		return p.MetricsConfig
	}
	return DefaultMetricsConfig()
}

// Setting returns the settings for a metric id.
func (p *Project) Setting(id string) (MetricSettings, bool) {
	for _, s := range p.Config() {
		if s.ID == id {
			return s, true
		}
	}
	return MetricSettings{}, false
}

// MetricLabel returns the display label of a metric.
func (p *Project) MetricLabel(id string) string {
	if s, ok := p.Setting(id); ok && s.Name != "" {
		return s.Name
	}
	return MetricLabel(id)
}

// MetricColor returns the display color of a metric.
func (p *Project) MetricColor(id string) string {
	if s, ok := p.Setting(id); ok && s.Color != "" {
		return s.Color
	}
	return MetricColor(id)
}

// AvailableModels returns the distinct model names across the project's
// records, in first-seen order.
func (p *Project) AvailableModels() []string {
	return UniqueModels(p.Records)
}

// UniqueModels returns distinct non-empty model names in first-seen order.
func UniqueModels(records []MetricRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if r.ModelName == "" || seen[r.ModelName] {
			continue
		}
		seen[r.ModelName] = true
		names = append(names, r.ModelName)
	}
	return names
}
