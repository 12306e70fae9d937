package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"chronology/internal/model"
)

func rec(id, modelName, date string, acc float64, extra map[string]any) model.MetricRecord {
	t, err := model.ParseTimestamp(date)
	if err != nil {
		panic(err)
	}
	return model.MetricRecord{
		ID:                id,
		ProjectID:         "1",
		Timestamp:         model.NewTimestamp(t),
		ModelName:         modelName,
		Accuracy:          model.Float(acc),
		AdditionalMetrics: extra,
	}
}

func ids(records []model.MetricRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func testRecords() []model.MetricRecord {
	return []model.MetricRecord{
		rec("a", "ResNet", "2024-03-01", 0.80, map[string]any{"auc": 0.7}),
		rec("b", "BERT", "2024-02-01", 0.90, nil),
		rec("c", "ResNet", "2024-01-01", 0.70, map[string]any{"auc": 0.9}),
		rec("d", "BERT", "2024-01-15", 0.85, map[string]any{"auc": "n/a"}),
	}
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name    string
		current *SortConfig
		key     string
		want    SortConfig
	}{
		{"no sort", nil, "accuracy", SortConfig{"accuracy", Asc}},
		{"same key asc", &SortConfig{"accuracy", Asc}, "accuracy", SortConfig{"accuracy", Desc}},
		{"same key desc", &SortConfig{"accuracy", Desc}, "accuracy", SortConfig{"accuracy", Asc}},
		{"other key", &SortConfig{"loss", Asc}, "accuracy", SortConfig{"accuracy", Asc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Toggle(tt.current, tt.key)
			if *got != tt.want {
				t.Errorf("Toggle() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestSplitMetrics(t *testing.T) {
	config := model.DefaultMetricsConfig()
	config[1].Enabled = false // loss
	config = append(config,
		model.MetricSettings{ID: "auc", Name: "AUC", Type: model.TypeFloat, Color: "#000", Enabled: true},
		model.MetricSettings{ID: "latency", Name: "Latency", Type: model.TypeFloat, Color: "#111"},
	)

	cols := SplitMetrics(config)
	want := Columns{
		Defaults: []string{"accuracy", "precision", "recall", "f1Score"},
		Customs:  []string{"auc"},
	}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Errorf("SplitMetrics mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"accuracy", "precision", "recall", "f1Score", "auc"}, cols.All()); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}
}

func TestSort(t *testing.T) {
	cols := Columns{Defaults: []string{"accuracy"}, Customs: []string{"auc"}}

	tests := []struct {
		name string
		cfg  *SortConfig
		want []string
	}{
		{"default model then time", nil, []string{"d", "b", "c", "a"}},
		{"timestamp asc", &SortConfig{KeyTimestamp, Asc}, []string{"c", "d", "b", "a"}},
		{"timestamp desc", &SortConfig{KeyTimestamp, Desc}, []string{"a", "b", "d", "c"}},
		{"model name asc keeps input order within model", &SortConfig{KeyModelName, Asc}, []string{"b", "d", "a", "c"}},
		{"accuracy desc", &SortConfig{"accuracy", Desc}, []string{"b", "d", "a", "c"}},
		{"custom metric missing and non-numeric as zero", &SortConfig{"auc", Asc}, []string{"b", "d", "a", "c"}},
		{"disabled metric keeps order", &SortConfig{"loss", Asc}, []string{"a", "b", "c", "d"}},
		{"unknown key keeps order", &SortConfig{"nope", Desc}, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testRecords()
			got := Sort(in, tt.cfg, cols)
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("Sort mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids(in)); diff != "" {
				t.Errorf("Sort modified its input (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	sorted := Sort(testRecords(), nil, Columns{})
	rows := Annotate(sorted)

	var first []bool
	for _, r := range rows {
		first = append(first, r.FirstOfModel)
	}
	if diff := cmp.Diff([]bool{true, false, true, false}, first); diff != "" {
		t.Errorf("FirstOfModel mismatch (-want +got):\n%s", diff)
	}
	if len(Annotate(nil)) != 0 {
		t.Error("Annotate(nil) should be empty")
	}
}
