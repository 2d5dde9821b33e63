package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"macropulse/internal/model"
)

// WriteLong persists long-format records. The error column is included only
// when at least one degraded record exists; degraded records have an empty
// year cell.
func WriteLong(path string, records []model.Observation) error {
	withError := false
	for _, record := range records {
		if record.Err != "" {
			withError = true
			break
		}
	}

	header := []string{"country", "iso3", "year", "indicator", "indicator_code", "value"}
	if withError {
		header = append(header, "error")
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		year := ""
		if record.Err == "" {
			year = strconv.Itoa(record.Year)
		}
		row := []string{
			record.Country,
			record.ISO3,
			year,
			record.Indicator,
			record.IndicatorCode,
			formatOptional(record.Value),
		}
		if withError {
			row = append(row, record.Err)
		}
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}

// WriteWide persists the pivoted table with the given indicator columns.
func WriteWide(path string, wide []model.WideRow, columns []string) error {
	header := append([]string{"country", "iso3", "year"}, columns...)
	rows := make([][]string, 0, len(wide))
	for _, row := range wide {
		cells := []string{row.Country, row.ISO3, strconv.Itoa(row.Year)}
		for _, column := range columns {
			value, ok := row.Values[column]
			if !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, formatFloat(value))
		}
		rows = append(rows, cells)
	}
	return writeCSV(path, header, rows)
}

// ReadWide loads a wide CSV written by WriteWide. It returns the rows and
// the indicator column names in file order. Rows with an unparseable year
// and cells that are empty or non-numeric are skipped quietly.
func ReadWide(path string) ([]model.WideRow, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open wide csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	lines, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read wide csv: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("wide csv %s is empty", path)
	}

	header := lines[0]
	if len(header) < 3 || header[0] != "country" || header[1] != "iso3" || header[2] != "year" {
		return nil, nil, fmt.Errorf("wide csv %s: unexpected header %v", path, header)
	}
	columns := header[3:]

	rows := make([]model.WideRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if len(line) != len(header) {
			continue
		}
		year, err := strconv.Atoi(line[2])
		if err != nil {
			continue
		}
		row := model.WideRow{
			Country: line[0],
			ISO3:    line[1],
			Year:    year,
			Values:  make(map[string]float64),
		}
		for i, column := range columns {
			cell := line[3+i]
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			row.Values[column] = value
		}
		rows = append(rows, row)
	}
	return rows, columns, nil
}

// WriteSnapshot persists the single-year wide table. Error columns
// (<indicator>_error) appear only for indicators that failed at least once,
// after the value columns, in indicator order.
func WriteSnapshot(path string, rows []model.SnapshotRow, indicators []model.Indicator) error {
	errorColumns := make([]string, 0)
	for _, indicator := range indicators {
		for _, row := range rows {
			if _, ok := row.Errors[indicator.Key]; ok {
				errorColumns = append(errorColumns, indicator.Key)
				break
			}
		}
	}

	header := []string{"country", "iso3", "year"}
	for _, indicator := range indicators {
		header = append(header, indicator.Key)
	}
	for _, key := range errorColumns {
		header = append(header, key+"_error")
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{row.Country, row.ISO3, strconv.Itoa(row.Year)}
		for _, indicator := range indicators {
			value, ok := row.Values[indicator.Key]
			if !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, formatFloat(value))
		}
		for _, key := range errorColumns {
			cells = append(cells, row.Errors[key])
		}
		out = append(out, cells)
	}
	return writeCSV(path, header, out)
}

// WriteChanges persists the start→end change table: country, iso3, then
// <metric>_<start>, <metric>_<end>, <metric>_change per metric.
func WriteChanges(path string, rows []model.ChangeRow, metrics []string, startYear, endYear int) error {
	header := []string{"country", "iso3"}
	for _, metric := range metrics {
		header = append(header,
			fmt.Sprintf("%s_%d", metric, startYear),
			fmt.Sprintf("%s_%d", metric, endYear),
			metric+"_change",
		)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{row.Country, row.ISO3}
		for _, metric := range metrics {
			cells = append(cells,
				formatCell(row.Start, metric),
				formatCell(row.End, metric),
				formatCell(row.Change, metric),
			)
		}
		out = append(out, cells)
	}
	return writeCSV(path, header, out)
}

// WriteYoY persists a single metric's year-over-year series. NaN renders as
// an empty cell and infinities as inf/-inf, matching the upstream artifacts.
func WriteYoY(path string, rows []model.YoYRow, metric string) error {
	header := []string{"country", "iso3", "year", metric, "yearly_diff", "yearly_pct_change"}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.Country,
			row.ISO3,
			strconv.Itoa(row.Year),
			formatFloat(row.Value),
			formatOptional(row.Diff),
			formatOptional(row.PctChange),
		})
	}
	return writeCSV(path, header, out)
}

func writeCSV(path string, header []string, rows [][]string) error {
	slog.Info("writing csv",
		slog.String("path", path),
		slog.Int("rows", len(rows)))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(values map[string]float64, metric string) string {
	value, ok := values[metric]
	if !ok {
		return ""
	}
	return formatFloat(value)
}

func formatOptional(value *float64) string {
	if value == nil {
		return ""
	}
	return formatFloat(*value)
}

func formatFloat(value float64) string {
	switch {
	case math.IsNaN(value):
		return ""
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
}
