package model

// RecordPatch carries record fields from a create or update request.
// Nil fields are left untouched on update. On create, Timestamp and
// ModelName are required.
type RecordPatch struct {
	Timestamp         *string        `json:"timestamp,omitempty"`
	ModelName         *string        `json:"modelName,omitempty"`
	ModelVersion      *string        `json:"modelVersion,omitempty"`
	Accuracy          *float64       `json:"accuracy,omitempty"`
	Loss              *float64       `json:"loss,omitempty"`
	Precision         *float64       `json:"precision,omitempty"`
	Recall            *float64       `json:"recall,omitempty"`
	F1Score           *float64       `json:"f1Score,omitempty"`
	AdditionalMetrics map[string]any `json:"additionalMetrics"`
}

// String returns a pointer to s. Used to populate optional patch fields.
func String(s string) *string { return &s }

// Builtin returns the patch field for a built-in metric id.
func (p *RecordPatch) Builtin(id string) **float64 {
	switch id {
	case MetricAccuracy:
		return &p.Accuracy
	case MetricLoss:
		return &p.Loss
	case MetricPrecision:
		return &p.Precision
	case MetricRecall:
		return &p.Recall
	case MetricF1Score:
		return &p.F1Score
	}
	return nil
}

// Complete reports whether the patch has both a timestamp and a model name,
// the minimum needed to create a record.
func (p RecordPatch) Complete() bool {
	return p.Timestamp != nil && *p.Timestamp != "" && p.ModelName != nil && *p.ModelName != ""
}

// Apply copies the non-nil fields of p onto r. The timestamp must already
// be validated by the caller; an unparseable timestamp is an error.
func (p RecordPatch) Apply(r *MetricRecord) error {
	if p.Timestamp != nil {
		t, err := ParseTimestamp(*p.Timestamp)
		if err != nil {
			return err
		}
		r.Timestamp = NewTimestamp(t)
	}
	if p.ModelName != nil {
		r.ModelName = *p.ModelName
	}
	if p.ModelVersion != nil {
		r.ModelVersion = *p.ModelVersion
	}
	for _, id := range DefaultMetricIDs {
		if v := *p.Builtin(id); v != nil {
			val := *v
			r.SetBuiltin(id, &val)
		}
	}
	if p.AdditionalMetrics != nil {
		r.AdditionalMetrics = make(map[string]any, len(p.AdditionalMetrics))
		for k, v := range p.AdditionalMetrics {
			r.AdditionalMetrics[k] = v
		}
	}
	return nil
}

// PatchFromRecord returns a patch that reproduces every field of r.
func PatchFromRecord(r MetricRecord) RecordPatch {
	p := RecordPatch{
		ModelName:         String(r.ModelName),
		ModelVersion:      String(r.ModelVersion),
		Accuracy:          r.Accuracy,
		Loss:              r.Loss,
		Precision:         r.Precision,
		Recall:            r.Recall,
		F1Score:           r.F1Score,
		AdditionalMetrics: r.AdditionalMetrics,
	}
	if !r.Timestamp.IsZero() {
		p.Timestamp = String(r.Timestamp.String())
	}
	return p
}
