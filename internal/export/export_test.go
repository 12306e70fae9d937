package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"chronology/internal/model"
)

func testProject() *model.Project {
	config := model.DefaultMetricsConfig()
	config[1].Enabled = false // loss
	config = append(config, model.MetricSettings{
		ID: "notes", Name: "Notes", Type: model.TypeString, Color: "#000", Enabled: true,
	})
	ts, _ := model.ParseTimestamp("2024-03-01T10:30:00")
	return &model.Project{
		ID:            "1",
		Name:          "Image Classification!",
		MetricsConfig: config,
		Records: []model.MetricRecord{
			{
				ID:                "1-1",
				ProjectID:         "1",
				Timestamp:         model.NewTimestamp(ts),
				ModelName:         "ResNet-50",
				ModelVersion:      "v1",
				Accuracy:          model.Float(0.8567),
				Loss:              model.Float(0.5),
				Recall:            model.Float(0.7),
				AdditionalMetrics: map[string]any{"notes": "baseline"},
			},
			{
				ID:        "1-2",
				ProjectID: "1",
				Timestamp: model.NewTimestamp(ts.AddDate(0, 0, 1)),
				ModelName: "ViT",
				F1Score:   model.Float(1),
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("pdf")
	assert.EqualError(t, err, `unsupported export format "pdf"`)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", CSV.ContentType())
	assert.Equal(t, "application/json", JSON.ContentType())
	assert.Contains(t, XLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, "application/octet-stream", Format("x").ContentType())
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "image-classification-metrics-2024-07-01.csv", Filename(testProject(), CSV, now))
	assert.Equal(t, "project-metrics-2024-07-01.json", Filename(&model.Project{Name: "!!"}, JSON, now))
}

func TestWriteCSV(t *testing.T) {
	p := testProject()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, p, p.Records))

	want := "Date,Model,Version,Accuracy,Precision,Recall,F1 Score,Notes\n" +
		"2024-03-01,ResNet-50,v1,0.857,,0.700,,baseline\n" +
		"2024-03-02,ViT,,,,,1.000,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	p := testProject()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, p, p.Records))

	var got []model.MetricRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "1-1", got[0].ID)
	assert.Equal(t, "baseline", got[0].AdditionalMetrics["notes"])

	buf.Reset()
	require.NoError(t, Write(&buf, JSON, p, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	p := testProject()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, p, p.Records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Model", "Version", "Accuracy", "Precision", "Recall", "F1 Score", "Notes"}, rows[0])
	assert.Equal(t, "2024-03-01", rows[1][0])
	assert.Equal(t, "0.857", rows[1][3])
	assert.Equal(t, "baseline", rows[1][7])

	raw, err := f.GetCellValue(sheetName, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.8567", raw, "numbers keep full precision")
}

func TestWriteParquet(t *testing.T) {
	p := testProject()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Parquet, p, p.Records))

	rows, err := parquet.Read[Row](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03-01T10:30:00", rows[0].Timestamp)
	assert.Equal(t, 0.8567, *rows[0].Accuracy)
	assert.Nil(t, rows[0].Precision)
	assert.Equal(t, `{"notes":"baseline"}`, rows[0].AdditionalMetrics)
	assert.Equal(t, "", rows[1].AdditionalMetrics)
}

func TestWriteUnknownFormat(t *testing.T) {
	p := testProject()
	assert.Error(t, Write(&bytes.Buffer{}, Format("pdf"), p, p.Records))
}
