// Package chart turns a project's records into time series for the
// metric-wise and model-wise chart views, computes headline stats and
// renders series as an ECharts HTML page.
package chart

import (
	"fmt"
	"slices"
)

// ViewMode selects how series are built.
type ViewMode string

const (
	// MetricWise plots several metrics of one model.
	MetricWise ViewMode = "metric-wise"
	// ModelWise plots one metric across several models.
	ModelWise ViewMode = "model-wise"
)

// ParseViewMode parses a mode name. The empty string is MetricWise.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", MetricWise:
		return MetricWise, nil
	case ModelWise:
		return ModelWise, nil
	}
	return "", fmt.Errorf("unknown chart mode %q (want %q or %q)", s, MetricWise, ModelWise)
}

// Selection is the chart's view state.
type Selection struct {
	Mode       ViewMode `json:"mode"`
	Metrics    []string `json:"metrics"`
	Models     []string `json:"models"`
	Comparison string   `json:"comparison,omitempty"`
}

// DefaultSelection is the state a fresh dashboard starts in.
func DefaultSelection() Selection {
	return Selection{
		Mode:       MetricWise,
		Metrics:    []string{"accuracy", "loss"},
		Models:     []string{},
		Comparison: "accuracy",
	}
}

// SetMode switches view mode and fills in what the new mode needs. Going
// model-wise ensures at least one model and a comparison metric. Going
// metric-wise keeps exactly one model and picks the first two enabled
// metrics when none are selected.
func (s *Selection) SetMode(mode ViewMode, enabled, available []string) {
	s.Mode = mode

	if len(s.Models) == 0 && len(available) > 0 {
		s.Models = []string{available[0]}
	}

	switch mode {
	case ModelWise:
		if s.Comparison == "" && len(enabled) > 0 {
			s.Comparison = enabled[0]
		}
	default:
		if len(s.Models) > 1 {
			s.Models = s.Models[:1]
		}
		if len(s.Metrics) == 0 && len(enabled) > 0 {
			s.Metrics = slices.Clone(enabled[:min(2, len(enabled))])
		}
	}
}

// ToggleMetric adds or removes a metric in metric-wise mode; in
// model-wise mode it picks the comparison metric.
func (s *Selection) ToggleMetric(id string) {
	if s.Mode == ModelWise {
		s.Comparison = id
		return
	}
	s.Metrics = toggle(s.Metrics, id)
}

// ToggleModel adds or removes a model in model-wise mode; in metric-wise
// mode it replaces the single selected model.
func (s *Selection) ToggleModel(name string) {
	if s.Mode == ModelWise {
		s.Models = toggle(s.Models, name)
		return
	}
	s.Models = []string{name}
}

func toggle(list []string, v string) []string {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	return append(slices.Clone(list), v)
}
