package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"chronology/internal/jsonutil"
	"chronology/internal/model"
)

// Row is the Parquet schema of an exported record. Custom metrics are
// carried as a JSON object string.
type Row struct {
	ID                string   `parquet:"id"`
	ProjectID         string   `parquet:"project_id"`
	Timestamp         string   `parquet:"timestamp"`
	ModelName         string   `parquet:"model_name"`
	ModelVersion      string   `parquet:"model_version"`
	Accuracy          *float64 `parquet:"accuracy,optional"`
	Loss              *float64 `parquet:"loss,optional"`
	Precision         *float64 `parquet:"precision,optional"`
	Recall            *float64 `parquet:"recall,optional"`
	F1Score           *float64 `parquet:"f1_score,optional"`
	AdditionalMetrics string   `parquet:"additional_metrics"`
}

func toRow(r model.MetricRecord) (Row, error) {
	extra, err := jsonutil.MarshalMap(r.AdditionalMetrics)
	if err != nil {
		return Row{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return Row{
		ID:                r.ID,
		ProjectID:         r.ProjectID,
		Timestamp:         r.Timestamp.String(),
		ModelName:         r.ModelName,
		ModelVersion:      r.ModelVersion,
		Accuracy:          r.Accuracy,
		Loss:              r.Loss,
		Precision:         r.Precision,
		Recall:            r.Recall,
		F1Score:           r.F1Score,
		AdditionalMetrics: extra,
	}, nil
}

func writeParquet(w io.Writer, records []model.MetricRecord) error {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		row, err := toRow(r)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
