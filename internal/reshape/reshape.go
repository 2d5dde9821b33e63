package reshape

import (
	"errors"
	"fmt"
	"sort"

	"macropulse/internal/model"
)

// ErrDuplicateObservation marks an ambiguous pivot: two records for the same
// (country, iso3, year, indicator). The pivot refuses to pick one silently.
var ErrDuplicateObservation = errors.New("reshape: duplicate observation")

type rowKey struct {
	country string
	iso3    string
	year    int
}

type cellKey struct {
	rowKey
	indicator string
}

// ToWide pivots long-format records into one row per (country, iso3, year)
// with one column per indicator. Records with a missing value keep their row
// but leave the cell absent. Degraded records (Err set) carry no year and
// are excluded. Output is sorted by (country, year).
func ToWide(records []model.Observation) ([]model.WideRow, error) {
	index := make(map[rowKey]*model.WideRow)
	seen := make(map[cellKey]struct{})

	for _, record := range records {
		if record.Err != "" {
			continue
		}
		key := rowKey{country: record.Country, iso3: record.ISO3, year: record.Year}
		cell := cellKey{rowKey: key, indicator: record.Indicator}
		if _, ok := seen[cell]; ok {
			return nil, fmt.Errorf("%w: %s/%s year=%d indicator=%s",
				ErrDuplicateObservation, record.Country, record.ISO3, record.Year, record.Indicator)
		}
		seen[cell] = struct{}{}

		row, ok := index[key]
		if !ok {
			row = &model.WideRow{
				Country: record.Country,
				ISO3:    record.ISO3,
				Year:    record.Year,
				Values:  make(map[string]float64),
			}
			index[key] = row
		}
		if record.Value != nil {
			row.Values[record.Indicator] = *record.Value
		}
	}

	out := make([]model.WideRow, 0, len(index))
	for _, row := range index {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Year < out[j].Year
	})
	return out, nil
}

// ObservedColumns returns the indicator keys to persist, in the fixed
// configured order, keeping only columns observed in at least one row.
func ObservedColumns(rows []model.WideRow, indicators []model.Indicator) []string {
	columns := make([]string, 0, len(indicators))
	for _, indicator := range indicators {
		for _, row := range rows {
			if _, ok := row.Values[indicator.Key]; ok {
				columns = append(columns, indicator.Key)
				break
			}
		}
	}
	return columns
}
