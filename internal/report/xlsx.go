package report

import (
	"fmt"
	"io"
	"strconv"

	"farmdash/internal/table"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteXLSX writes a workbook with one sheet of rows under a bold header and
// a second sheet of key metrics. Number columns are stored as numbers.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(r.Schema.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, row := range r.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.cellValues(row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet("Metrics"); err != nil {
		return fmt.Errorf("create metrics sheet: %w", err)
	}
	if err := f.SetSheetRow("Metrics", "A1", &[]any{"Metric", "Value"}); err != nil {
		return err
	}
	if err := f.SetRowStyle("Metrics", 1, 1, bold); err != nil {
		return err
	}
	for i, m := range r.Metrics {
		if err := f.SetSheetRow("Metrics", "A"+strconv.Itoa(i+2), &[]any{m.Title, m.Value}); err != nil {
			return fmt.Errorf("write metric %q: %w", m.Title, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func (r *Report) cellValues(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
		if v == table.Placeholder {
			out[i] = ""
			continue
		}
		if i < len(r.Schema.Columns) && r.Schema.Columns[i].Kind == table.KindNumber {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				out[i] = n
			}
		}
	}
	return out
}

func sheetName(title string) string {
	if len(title) > maxSheetName {
		return title[:maxSheetName]
	}
	return title
}
