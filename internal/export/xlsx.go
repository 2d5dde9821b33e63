package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"macropulse/internal/model"
)

const changesSheet = "Changes"

// WriteChangesXLSX writes the change table as a spreadsheet report with the
// same column layout as WriteChanges. Missing cells stay blank.
func WriteChangesXLSX(path string, rows []model.ChangeRow, metrics []string, startYear, endYear int) error {
	slog.Info("writing xlsx report",
		slog.String("path", path),
		slog.Int("rows", len(rows)))

	workbook := excelize.NewFile()
	defer workbook.Close()
	if err := workbook.SetSheetName("Sheet1", changesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []any{"country", "iso3"}
	for _, metric := range metrics {
		header = append(header,
			fmt.Sprintf("%s_%d", metric, startYear),
			fmt.Sprintf("%s_%d", metric, endYear),
			metric+"_change",
		)
	}
	if err := setRow(workbook, 1, header); err != nil {
		return err
	}

	for i, row := range rows {
		cells := []any{row.Country, row.ISO3}
		for _, metric := range metrics {
			cells = append(cells,
				cellValue(row.Start, metric),
				cellValue(row.End, metric),
				cellValue(row.Change, metric),
			)
		}
		if err := setRow(workbook, i+2, cells); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := workbook.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(workbook *excelize.File, row int, cells []any) error {
	for i, cell := range cells {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to map cell: %w", err)
		}
		if cell == nil {
			continue
		}
		if err := workbook.SetCellValue(changesSheet, name, cell); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", name, err)
		}
	}
	return nil
}

func cellValue(values map[string]float64, metric string) any {
	value, ok := values[metric]
	if !ok {
		return nil
	}
	return value
}
