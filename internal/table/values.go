package table

import (
	"strings"
	"time"

	"chronology/internal/jsonutil"
	"chronology/internal/model"
)

// Field names in Values that are not metric ids.
const (
	FieldTimestamp    = "timestamp"
	FieldModelName    = "modelName"
	FieldModelVersion = "modelVersion"
)

// Values is a flat field -> value map used while editing a row. Built-in
// and custom metrics share the namespace.
type Values map[string]any

// EditValues flattens a record into editable values. Custom metrics are
// lifted out of AdditionalMetrics.
func EditValues(r model.MetricRecord) Values {
	v := Values{
		FieldTimestamp:    r.Timestamp.String(),
		FieldModelName:    r.ModelName,
		FieldModelVersion: r.ModelVersion,
	}
	for _, id := range model.DefaultMetricIDs {
		if f, ok := r.Value(id); ok {
			v[id] = f
		}
	}
	for k, val := range r.AdditionalMetrics {
		v[k] = val
	}
	return v
}

// InitialValues returns the values of a blank row: today's date and an
// empty model name.
func InitialValues(now time.Time) Values {
	return Values{
		FieldTimestamp: now.Format(time.DateOnly),
		FieldModelName: "",
	}
}

// String returns the field as a trimmed string.
func (v Values) String(field string) string {
	return strings.TrimSpace(jsonutil.ToString(v[field]))
}

// Complete reports whether the values carry both a timestamp and a model
// name, the minimum for a record to be saved.
func (v Values) Complete() bool {
	return v.String(FieldTimestamp) != "" && v.String(FieldModelName) != ""
}

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// SeparateMetrics converts edit values into a record patch. Built-in
// metrics map onto their fields; enabled custom metrics with a non-empty
// value are collected into AdditionalMetrics, which is only set when at
// least one is present. Numeric strings become numbers.
func SeparateMetrics(v Values, customs []string) model.RecordPatch {
	var p model.RecordPatch
	if s := v.String(FieldTimestamp); s != "" {
		p.Timestamp = model.String(s)
	}
	if _, ok := v[FieldModelName]; ok {
		p.ModelName = model.String(v.String(FieldModelName))
	}
	if _, ok := v[FieldModelVersion]; ok {
		p.ModelVersion = model.String(v.String(FieldModelVersion))
	}
	for _, id := range model.DefaultMetricIDs {
		if f, ok := jsonutil.ToFloat(v[id]); ok {
			*p.Builtin(id) = model.Float(f)
		}
	}

	additional := make(map[string]any)
	for _, id := range customs {
		val, ok := v[id]
		if !ok || jsonutil.IsEmpty(val) {
			continue
		}
		if f, ok := jsonutil.ToFloat(val); ok {
			additional[id] = f
		} else {
			additional[id] = val
		}
	}
	if len(additional) > 0 {
		p.AdditionalMetrics = additional
	}
	return p
}
