package collect

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"macropulse/internal/model"
	"macropulse/internal/providers"
)

type Config struct {
	StartYear int
	EndYear   int
	// Delay is the fixed pause after every request, success or failure. It
	// is a courtesy pacing policy, not a backoff.
	Delay time.Duration
}

// Collector walks the countries × indicators product sequentially. A failing
// pair is downgraded to a degraded record so it can never lose or corrupt
// any other pair's result.
type Collector struct {
	provider providers.Provider
	config   Config
	logger   *slog.Logger
	sleep    func(time.Duration)
}

func New(provider providers.Provider, config Config, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		provider: provider,
		config:   config,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Run collects the long-format records for every (country, indicator) pair,
// in iteration order. It never fails as a whole: per-pair errors become
// records with Err set and no value.
func (c *Collector) Run(ctx context.Context, countryList []model.Country, indicators []model.Indicator) []model.Observation {
	all := make([]model.Observation, 0, len(countryList)*len(indicators))
	for _, country := range countryList {
		for _, indicator := range indicators {
			rows, err := c.provider.FetchRange(ctx, country.ISO3, indicator.Code, c.config.StartYear, c.config.EndYear)
			if err != nil {
				c.logger.Warn("fetch failed",
					slog.String("iso3", country.ISO3),
					slog.String("indicator", indicator.Key),
					slog.String("error", err.Error()))
				all = append(all, model.Observation{
					Country:       country.Name,
					ISO3:          country.ISO3,
					Indicator:     indicator.Key,
					IndicatorCode: indicator.Code,
					Err:           err.Error(),
				})
			} else {
				all = append(all, BuildRows(country.Name, country.ISO3, indicator.Key, indicator.Code, rows, c.config.StartYear, c.config.EndYear)...)
			}
			c.pause()
		}
	}
	return all
}

// Snapshot is the single-year wide variant: one row per country, built
// directly from per-indicator point fetches, with failures recorded per
// indicator cell.
func (c *Collector) Snapshot(ctx context.Context, countryList []model.Country, indicators []model.Indicator, year int) []model.SnapshotRow {
	rows := make([]model.SnapshotRow, 0, len(countryList))
	for _, country := range countryList {
		row := model.SnapshotRow{
			Country: country.Name,
			ISO3:    country.ISO3,
			Year:    year,
			Values:  make(map[string]float64),
			Errors:  make(map[string]string),
		}
		for _, indicator := range indicators {
			value, err := c.provider.FetchValue(ctx, country.ISO3, indicator.Code, year)
			switch {
			case err != nil:
				c.logger.Warn("fetch failed",
					slog.String("iso3", country.ISO3),
					slog.String("indicator", indicator.Key),
					slog.String("error", err.Error()))
				row.Errors[indicator.Key] = err.Error()
			case value != nil:
				row.Values[indicator.Key] = *value
			}
			c.pause()
		}
		rows = append(rows, row)
	}
	return rows
}

func (c *Collector) pause() {
	if c.config.Delay > 0 {
		c.sleep(c.config.Delay)
	}
}

// BuildRows normalizes raw API rows into long-format records. Rows without a
// date, with an unparseable year, or outside [startYear, endYear] are
// dropped silently; null values pass through as missing.
func BuildRows(country, iso3, indicatorKey, indicatorCode string, rows []providers.RawRow, startYear, endYear int) []model.Observation {
	out := make([]model.Observation, 0, len(rows))
	for _, row := range rows {
		date := strings.TrimSpace(row.Date)
		if date == "" {
			continue
		}
		year, err := strconv.Atoi(date)
		if err != nil {
			continue
		}
		if year < startYear || year > endYear {
			continue
		}
		record := model.Observation{
			Country:       country,
			ISO3:          iso3,
			Year:          year,
			Indicator:     indicatorKey,
			IndicatorCode: indicatorCode,
		}
		if row.Value != nil {
			value := *row.Value
			record.Value = &value
		}
		out = append(out, record)
	}
	return out
}

// SortObservations orders records by (country, indicator, year) for
// presentation. Degraded records have year zero and sort first within their
// (country, indicator) group.
func SortObservations(records []model.Observation) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Indicator != b.Indicator {
			return a.Indicator < b.Indicator
		}
		return a.Year < b.Year
	})
}

// MissingCounts tallies records without a value per indicator, degraded
// records included.
func MissingCounts(records []model.Observation, indicators []model.Indicator) map[string]int {
	counts := make(map[string]int, len(indicators))
	for _, indicator := range indicators {
		counts[indicator.Key] = 0
	}
	for _, record := range records {
		if record.Value == nil {
			counts[record.Indicator]++
		}
	}
	return counts
}
