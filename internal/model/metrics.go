package model

import (
	"errors"
	"fmt"
	"slices"
)

// Built-in metric ids.
const (
	MetricAccuracy  = "accuracy"
	MetricLoss      = "loss"
	MetricPrecision = "precision"
	MetricRecall    = "recall"
	MetricF1Score   = "f1Score"
)

// DefaultMetricIDs lists the built-in metrics in display order.
var DefaultMetricIDs = []string{MetricAccuracy, MetricLoss, MetricPrecision, MetricRecall, MetricF1Score}

// IsDefaultMetric reports whether id names a built-in metric.
func IsDefaultMetric(id string) bool {
	return slices.Contains(DefaultMetricIDs, id)
}

// MetricValueType describes how a metric's values are interpreted.
type MetricValueType string

const (
	TypeInt        MetricValueType = "int"
	TypeFloat      MetricValueType = "float"
	TypePercentage MetricValueType = "percentage"
	TypeString     MetricValueType = "string"
)

// Valid reports whether t is a known value type.
func (t MetricValueType) Valid() bool {
	switch t {
	case TypeInt, TypeFloat, TypePercentage, TypeString:
		return true
	}
	return false
}

// MetricSettings configures one metric for a project.
type MetricSettings struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        MetricValueType `json:"type"`
	Color       string          `json:"color"`
	Unit        string          `json:"unit,omitempty"`
	Enabled     bool            `json:"enabled"`
	Min         *float64        `json:"min,omitempty"`
	Max         *float64        `json:"max,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Validate checks the required fields and the min/max range.
func (s MetricSettings) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.Color == "" {
		errs = append(errs, errors.New("color is required"))
	}
	if !s.Type.Valid() {
		errs = append(errs, fmt.Errorf("type %q must be one of int, float, percentage, string", s.Type))
	}
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		errs = append(errs, fmt.Errorf("min %g exceeds max %g", *s.Min, *s.Max))
	}
	return errors.Join(errs...)
}

// DefaultMetricsConfig returns the settings every new project starts with.
// Each call returns a fresh slice.
func DefaultMetricsConfig() []MetricSettings {
	return []MetricSettings{
		{ID: MetricAccuracy, Name: "Accuracy", Type: TypePercentage, Color: "hsl(200, 100%, 50%)", Unit: "%", Enabled: true, Min: Float(0), Max: Float(1), Description: "Model prediction accuracy"},
		{ID: MetricLoss, Name: "Loss", Type: TypeFloat, Color: "hsl(0, 100%, 50%)", Enabled: true, Min: Float(0), Description: "Training loss value"},
		{ID: MetricPrecision, Name: "Precision", Type: TypePercentage, Color: "hsl(120, 100%, 40%)", Unit: "%", Enabled: true, Min: Float(0), Max: Float(1), Description: "Model precision score"},
		{ID: MetricRecall, Name: "Recall", Type: TypePercentage, Color: "hsl(60, 100%, 50%)", Unit: "%", Enabled: true, Min: Float(0), Max: Float(1), Description: "Model recall score"},
		{ID: MetricF1Score, Name: "F1 Score", Type: TypePercentage, Color: "hsl(280, 100%, 50%)", Unit: "%", Enabled: true, Min: Float(0), Max: Float(1), Description: "F1 score metric"},
	}
}

// DefaultMetricColor is used for metrics with no configured or built-in color.
const DefaultMetricColor = "hsl(200, 70%, 50%)"

var metricColors = map[string]string{
	MetricAccuracy:  "hsl(200, 100%, 50%)",
	MetricLoss:      "hsl(0, 100%, 50%)",
	MetricPrecision: "hsl(120, 100%, 40%)",
	MetricRecall:    "hsl(60, 100%, 50%)",
	MetricF1Score:   "hsl(300, 100%, 50%)",
}

var metricLabels = map[string]string{
	MetricAccuracy:  "Accuracy",
	MetricLoss:      "Loss",
	MetricPrecision: "Precision",
	MetricRecall:    "Recall",
	MetricF1Score:   "F1 Score",
}

// MetricColor returns the built-in color for id, or DefaultMetricColor.
func MetricColor(id string) string {
	if c, ok := metricColors[id]; ok {
		return c
	}
	return DefaultMetricColor
}

// MetricLabel returns the built-in label for id, or id itself.
func MetricLabel(id string) string {
	if l, ok := metricLabels[id]; ok {
		return l
	}
	return id
}

var modelColors = map[string]string{
	"ResNet-50":          "hsl(200, 80%, 60%)",
	"EfficientNet-B0":    "hsl(140, 80%, 60%)",
	"Vision Transformer": "hsl(280, 80%, 60%)",
	"BERT-base":          "hsl(30, 80%, 60%)",
	"RoBERTa-base":       "hsl(60, 80%, 60%)",
	"DistilBERT":         "hsl(90, 80%, 60%)",
	"LSTM":               "hsl(320, 80%, 60%)",
	"GRU":                "hsl(350, 80%, 60%)",
	"Transformer":        "hsl(20, 80%, 60%)",
}

var fallbackModelColors = []string{
	"hsl(180, 70%, 50%)",
	"hsl(240, 70%, 50%)",
	"hsl(300, 70%, 50%)",
	"hsl(120, 70%, 50%)",
	"hsl(60, 70%, 50%)",
}

// ModelColor returns the known color for a model name. Unknown models get
// a fallback chosen by their position in the current selection.
func ModelColor(name string, index int) string {
	if c, ok := modelColors[name]; ok {
		return c
	}
	if index < 0 {
		index = 0
	}
	return fallbackModelColors[index%len(fallbackModelColors)]
}
