package chart

import (
	"fmt"

	"chronology/internal/model"
)

// Improvement is the change of a metric between the two most recent
// records.
type Improvement struct {
	Absolute float64 `json:"absolute"`
	// Percent is relative to the previous value; 0 when that value is 0.
	Percent    float64 `json:"percent"`
	IsPositive bool    `json:"isPositive"`
}

// Stat is the headline figure for one metric.
type Stat struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Value       float64      `json:"value"`
	Improvement *Improvement `json:"improvement,omitempty"`
}

// Summary holds the project's headline stats.
type Summary struct {
	Stats        []Stat `json:"stats"`
	TotalRecords int    `json:"totalRecords"`
	Models       int    `json:"models"`
}

// Stats reports the latest value of each metric and its change from the
// record before it, over records sorted by timestamp. Metrics without a
// latest value are left out.
func Stats(p *model.Project, metrics []string) Summary {
	sum := Summary{
		Stats:        []Stat{},
		TotalRecords: len(p.Records),
		Models:       len(p.AvailableModels()),
	}
	if len(p.Records) == 0 {
		return sum
	}

	sorted := byTime(p.Records)
	latest := sorted[len(sorted)-1]
	for _, id := range metrics {
		v, ok := latest.Value(id)
		if !ok {
			continue
		}
		st := Stat{Key: id, Label: p.MetricLabel(id), Value: v}
		if len(sorted) >= 2 {
			if prev, ok := sorted[len(sorted)-2].Value(id); ok {
				diff := v - prev
				imp := &Improvement{Absolute: diff, IsPositive: diff > 0}
				if prev != 0 {
					imp.Percent = diff / prev * 100
				}
				st.Improvement = imp
			}
		}
		sum.Stats = append(sum.Stats, st)
	}
	return sum
}

// FormatPercent renders a signed percentage with one decimal.
func FormatPercent(v float64) string {
	sign := ""
	if v > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, v)
}

// FormatValue renders a metric value with three decimals, or "-" when
// absent.
func FormatValue(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}
