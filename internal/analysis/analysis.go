package analysis

import (
	"math"
	"sort"

	"macropulse/internal/model"
)

// Changes inner-joins the start-year and end-year subsets of the wide table
// on (country, iso3) and computes end − start per metric. Countries present
// in only one subset are dropped. The returned metric list keeps the input
// order, filtered to metrics present in both subsets' schema; cells missing
// for an individual country stay missing, never zero-filled.
func Changes(wide []model.WideRow, startYear, endYear int, metrics []string) ([]model.ChangeRow, []string) {
	startRows := make(map[joinKey]model.WideRow)
	endRows := make(map[joinKey]model.WideRow)
	order := make([]joinKey, 0)
	for _, row := range wide {
		key := joinKey{country: row.Country, iso3: row.ISO3}
		switch row.Year {
		case startYear:
			startRows[key] = row
			order = append(order, key)
		case endYear:
			endRows[key] = row
		}
	}

	effective := make([]string, 0, len(metrics))
	for _, metric := range metrics {
		if schemaHas(startRows, metric) && schemaHas(endRows, metric) {
			effective = append(effective, metric)
		}
	}

	out := make([]model.ChangeRow, 0, len(order))
	for _, key := range order {
		start := startRows[key]
		end, ok := endRows[key]
		if !ok {
			continue
		}
		row := model.ChangeRow{
			Country: key.country,
			ISO3:    key.iso3,
			Start:   make(map[string]float64),
			End:     make(map[string]float64),
			Change:  make(map[string]float64),
		}
		for _, metric := range effective {
			startValue, haveStart := start.Values[metric]
			endValue, haveEnd := end.Values[metric]
			if haveStart {
				row.Start[metric] = startValue
			}
			if haveEnd {
				row.End[metric] = endValue
			}
			if haveStart && haveEnd {
				row.Change[metric] = endValue - startValue
			}
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, effective
}

type joinKey struct {
	country string
	iso3    string
}

func schemaHas(rows map[joinKey]model.WideRow, metric string) bool {
	for _, row := range rows {
		if _, ok := row.Values[metric]; ok {
			return true
		}
	}
	return false
}

// YoY extracts one metric's series per country, ordered by year, and
// computes successive differences and percent changes. The "previous value"
// state resets at each country boundary. A zero previous value yields ±Inf
// (NaN when the current value is also zero) rather than a crash. Diffs and
// percentages are rounded to 2 decimals; output is trimmed to
// [startYear, endYear] after differencing.
func YoY(wide []model.WideRow, metric string, startYear, endYear int) []model.YoYRow {
	series := make([]model.YoYRow, 0, len(wide))
	for _, row := range wide {
		value, ok := row.Values[metric]
		if !ok {
			continue
		}
		series = append(series, model.YoYRow{
			Country: row.Country,
			ISO3:    row.ISO3,
			Year:    row.Year,
			Value:   value,
		})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Country != series[j].Country {
			return series[i].Country < series[j].Country
		}
		return series[i].Year < series[j].Year
	})

	previousISO3 := ""
	previousValue := 0.0
	havePrevious := false
	for i := range series {
		row := &series[i]
		if row.ISO3 != previousISO3 {
			previousISO3 = row.ISO3
			havePrevious = false
		}
		if havePrevious {
			diff := round2(row.Value - previousValue)
			pct := round2(pctChange(previousValue, row.Value))
			row.Diff = &diff
			row.PctChange = &pct
		}
		previousValue = row.Value
		havePrevious = true
	}

	out := make([]model.YoYRow, 0, len(series))
	for _, row := range series {
		if row.Year < startYear || row.Year > endYear {
			continue
		}
		out = append(out, row)
	}
	return out
}

func pctChange(previous, current float64) float64 {
	if previous == 0 {
		if current == 0 {
			return math.NaN()
		}
		return math.Inf(sign(current))
	}
	return (current - previous) / previous * 100
}

func sign(value float64) int {
	if value < 0 {
		return -1
	}
	return 1
}

func round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return math.Round(value*100) / 100
}
