// Package table holds the derived state behind the metrics table: row
// ordering, the split between built-in and custom metric columns, edit
// value handling and the single-row and bulk edit sessions.
package table

import (
	"slices"
	"strings"

	"chronology/internal/model"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort keys that are not metric ids.
const (
	KeyTimestamp = "timestamp"
	KeyModelName = "modelName"
)

// SortConfig selects the column and direction rows are ordered by.
type SortConfig struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle returns the sort config after a click on key's header: the same
// key sorted ascending flips to descending, anything else sorts ascending.
func Toggle(current *SortConfig, key string) *SortConfig {
	dir := Asc
	if current != nil && current.Key == key && current.Direction == Asc {
		dir = Desc
	}
	return &SortConfig{Key: key, Direction: dir}
}

// Columns are the enabled metric ids split into built-in and custom.
type Columns struct {
	Defaults []string
	Customs  []string
}

// SplitMetrics returns the enabled metrics of config, split into built-in
// and custom ids, in config order.
func SplitMetrics(config []model.MetricSettings) Columns {
	var cols Columns
	for _, s := range config {
		if !s.Enabled {
			continue
		}
		if model.IsDefaultMetric(s.ID) {
			cols.Defaults = append(cols.Defaults, s.ID)
		} else {
			cols.Customs = append(cols.Customs, s.ID)
		}
	}
	return cols
}

// All returns built-in ids followed by custom ids.
func (c Columns) All() []string {
	return append(slices.Clone(c.Defaults), c.Customs...)
}

// Sort returns a sorted copy of records. With a nil config rows are ordered
// by model name, then timestamp. Metric keys only sort when the metric is
// enabled; missing values sort as 0. Unknown keys keep the input order.
func Sort(records []model.MetricRecord, cfg *SortConfig, cols Columns) []model.MetricRecord {
	out := slices.Clone(records)

	if cfg == nil {
		slices.SortStableFunc(out, func(a, b model.MetricRecord) int {
			if c := strings.Compare(a.ModelName, b.ModelName); c != 0 {
				return c
			}
			return a.Timestamp.Compare(b.Timestamp.Time)
		})
		return out
	}

	var cmp func(a, b model.MetricRecord) int
	switch {
	case cfg.Key == KeyTimestamp:
		cmp = func(a, b model.MetricRecord) int { return a.Timestamp.Compare(b.Timestamp.Time) }
	case cfg.Key == KeyModelName:
		cmp = func(a, b model.MetricRecord) int { return strings.Compare(a.ModelName, b.ModelName) }
	case slices.Contains(cols.Defaults, cfg.Key), slices.Contains(cols.Customs, cfg.Key):
		cmp = func(a, b model.MetricRecord) int {
			return compareFloat(valueOrZero(a, cfg.Key), valueOrZero(b, cfg.Key))
		}
	default:
		return out
	}

	if cfg.Direction == Desc {
		asc := cmp
		cmp = func(a, b model.MetricRecord) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func valueOrZero(r model.MetricRecord, key string) float64 {
	v, _ := r.Value(key)
	return v
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Row is a sorted record annotated for display.
type Row struct {
	Record model.MetricRecord
	// FirstOfModel is set when the previous row belongs to another model.
	FirstOfModel bool
}

// Annotate marks the first row of each run of equal model names.
func Annotate(records []model.MetricRecord) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			Record:       r,
			FirstOfModel: i == 0 || records[i-1].ModelName != r.ModelName,
		}
	}
	return rows
}
