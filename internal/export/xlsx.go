package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"chronology/internal/model"
)

const sheetName = "Metrics"

// writeXLSX writes one sheet with a bold header row. Numeric metrics are
// stored as numbers formatted to three decimals.
func writeXLSX(w io.Writer, cols []Column, records []model.MetricRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, 0, 3+len(cols))
	for _, h := range Headers(cols) {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	numFmt := "0.000"
	decimals, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	for i, r := range records {
		row := []any{r.Timestamp.Date(), r.ModelName, r.ModelVersion}
		for _, c := range cols {
			if v, ok := r.Value(c.Key); ok {
				row = append(row, v)
			} else {
				row = append(row, cell(r, c.Key))
			}
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, start, &row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", r.ID, err)
		}
	}

	if len(cols) > 0 && len(records) > 0 {
		first, _ := excelize.CoordinatesToCellName(4, 2)
		last, _ := excelize.CoordinatesToCellName(3+len(cols), len(records)+1)
		if err := f.SetCellStyle(sheetName, first, last, decimals); err != nil {
			return fmt.Errorf("failed to style metric cells: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
