package model

import "time"

type Country struct {
	Name string
	ISO3 string
}

// Indicator maps an internal column name to its World Bank indicator code.
type Indicator struct {
	Key  string
	Code string
}

// DefaultIndicators is the fixed indicator set collected for every country,
// in persisted column order.
func DefaultIndicators() []Indicator {
	return []Indicator{
		{Key: "gdp_per_capita_usd", Code: "NY.GDP.PCAP.CD"},
		{Key: "gdp_growth_pct", Code: "NY.GDP.MKTP.KD.ZG"},
		{Key: "unemployment_pct", Code: "SL.UEM.TOTL.ZS"},
		{Key: "inflation_cpi_pct", Code: "FP.CPI.TOTL.ZG"},
		{Key: "gov_debt_pct_gdp", Code: "GC.DOD.TOTL.GD.ZS"},
		{Key: "current_account_pct_gdp", Code: "BN.CAB.XOKA.GD.ZS"},
	}
}

// Observation is one long-format record: a single (country, indicator, year)
// attempt. A nil Value with an empty Err means the provider reported no data
// for that year; a non-empty Err marks a degraded record from a failed fetch,
// which carries no year.
type Observation struct {
	Country       string
	ISO3          string
	Year          int
	Indicator     string
	IndicatorCode string
	Value         *float64
	Err           string
	IngestedAt    time.Time
}

// WideRow is one (country, year) row of the pivoted table. Values is keyed by
// indicator key; a missing key means no observation was collected.
type WideRow struct {
	Country string
	ISO3    string
	Year    int
	Values  map[string]float64
}

// SnapshotRow is the single-year wide variant built directly by the
// collector. Errors records per-indicator fetch failures.
type SnapshotRow struct {
	Country string
	ISO3    string
	Year    int
	Values  map[string]float64
	Errors  map[string]string
}

// ChangeRow holds the start/end values and delta per metric for one country.
// A metric missing from either snapshot is absent from all three maps.
type ChangeRow struct {
	Country string
	ISO3    string
	Start   map[string]float64
	End     map[string]float64
	Change  map[string]float64
}

// YoYRow is one year of a single metric's series for one country. Diff and
// PctChange are nil for the first year of each country's series. PctChange
// may be ±Inf (previous value zero) or NaN (both zero).
type YoYRow struct {
	Country   string
	ISO3      string
	Year      int
	Value     float64
	Diff      *float64
	PctChange *float64
}
