package chart

import (
	"slices"
	"time"

	"chronology/internal/model"
)

// Point is one chart sample. X is the record's date.
type Point struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// Series is one line on the chart.
type Series struct {
	ID    string  `json:"id"`
	Key   string  `json:"key"`
	Color string  `json:"color"`
	Data  []Point `json:"data"`
}

// Build returns the series for sel. Metric-wise yields one series per
// selected metric for the first selected model, or the first available
// model when none is selected. Model-wise yields one series per selected
// model for the comparison metric, and nothing without one. Records with
// no value or no timestamp are skipped; points follow timestamp order.
func Build(p *model.Project, sel Selection) []Series {
	records := byTime(p.Records)
	out := []Series{}

	switch sel.Mode {
	case ModelWise:
		if sel.Comparison == "" {
			return out
		}
		for i, name := range sel.Models {
			out = append(out, Series{
				ID:    name,
				Key:   name,
				Color: model.ModelColor(name, i),
				Data:  points(records, name, sel.Comparison),
			})
		}
	default:
		var shown string
		if len(sel.Models) > 0 {
			shown = sel.Models[0]
		} else if avail := p.AvailableModels(); len(avail) > 0 {
			shown = avail[0]
		}
		for _, id := range sel.Metrics {
			out = append(out, Series{
				ID:    p.MetricLabel(id),
				Key:   id,
				Color: p.MetricColor(id),
				Data:  points(records, shown, id),
			})
		}
	}
	return out
}

func points(records []model.MetricRecord, modelName, metric string) []Point {
	pts := []Point{}
	for _, r := range records {
		if r.ModelName != modelName || r.Timestamp.IsZero() {
			continue
		}
		v, ok := r.Value(metric)
		if !ok {
			continue
		}
		pts = append(pts, Point{X: r.Timestamp.UTC().Format(time.DateOnly), Y: v})
	}
	return pts
}

// byTime returns records stably sorted by timestamp.
func byTime(records []model.MetricRecord) []model.MetricRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b model.MetricRecord) int {
		return a.Timestamp.Compare(b.Timestamp.Time)
	})
	return out
}

// Dates returns the sorted union of X values across series.
func Dates(series []Series) []string {
	var xs []string
	for _, s := range series {
		for _, pt := range s.Data {
			xs = append(xs, pt.X)
		}
	}
	slices.Sort(xs)
	return slices.Compact(xs)
}
