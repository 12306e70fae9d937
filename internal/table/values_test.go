package table

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"chronology/internal/model"
)

func TestEditValues(t *testing.T) {
	r := rec("1-1", "ResNet", "2024-03-01T10:30:00", 0.8, map[string]any{"auc": 0.9})
	r.ModelVersion = "v2"
	r.Loss = model.Float(0.2)

	got := EditValues(r)
	want := Values{
		FieldTimestamp:    "2024-03-01T10:30:00",
		FieldModelName:    "ResNet",
		FieldModelVersion: "v2",
		"accuracy":        0.8,
		"loss":            0.2,
		"auc":             0.9,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EditValues mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialValues(t *testing.T) {
	v := InitialValues(time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-01", v[FieldTimestamp])
	assert.Equal(t, "", v[FieldModelName])
	assert.False(t, v.Complete())

	v[FieldModelName] = "  "
	assert.False(t, v.Complete(), "blank model name is incomplete")
	v[FieldModelName] = "GPT"
	assert.True(t, v.Complete())
}

func TestValuesClone(t *testing.T) {
	v := Values{"a": 1.0}
	c := v.Clone()
	c["a"] = 2.0
	assert.Equal(t, 1.0, v["a"])
}

func TestSeparateMetrics(t *testing.T) {
	t.Run("builtins and customs", func(t *testing.T) {
		v := Values{
			FieldTimestamp: "2024-03-01",
			FieldModelName: "ResNet",
			"accuracy":     "0.75",
			"loss":         0.3,
			"precision":    "",
			"auc":          "0.5",
			"notes":        "good run",
			"empty":        "",
			"nil":          nil,
			"disabled":     1.0,
		}
		p := SeparateMetrics(v, []string{"auc", "notes", "empty", "nil", "missing"})

		assert.Equal(t, "2024-03-01", *p.Timestamp)
		assert.Equal(t, "ResNet", *p.ModelName)
		assert.Nil(t, p.ModelVersion)
		assert.Equal(t, 0.75, *p.Accuracy)
		assert.Equal(t, 0.3, *p.Loss)
		assert.Nil(t, p.Precision)
		assert.Equal(t, map[string]any{"auc": 0.5, "notes": "good run"}, p.AdditionalMetrics)
	})

	t.Run("no customs leaves additional metrics nil", func(t *testing.T) {
		p := SeparateMetrics(Values{FieldModelName: "X", "auc": ""}, []string{"auc"})
		assert.Nil(t, p.AdditionalMetrics)
		assert.Nil(t, p.Timestamp)
	})
}
