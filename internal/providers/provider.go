package providers

import "context"

// RawRow is one data row of an indicator API response, passed through to the
// row builder unchanged. Value is nil when the provider reports no
// observation for that year.
type RawRow struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type Provider interface {
	Name() string
	// FetchValue returns the value for an exact (iso3, indicator, year) or
	// nil when the year is missing or reported as null.
	FetchValue(ctx context.Context, iso3, indicatorCode string, year int) (*float64, error)
	// FetchRange returns the raw rows covering [startYear, endYear].
	FetchRange(ctx context.Context, iso3, indicatorCode string, startYear, endYear int) ([]RawRow, error)
}
