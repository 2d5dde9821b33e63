package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"macropulse/internal/collect"
	"macropulse/internal/countries"
	"macropulse/internal/export"
	"macropulse/internal/model"
	"macropulse/internal/providers/worldbank"
	"macropulse/internal/reshape"
	"macropulse/internal/store"
	"macropulse/internal/store/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		run(os.Args[2:])
	case "snapshot":
		snapshot(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func run(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	start := fs.Int("start", 2020, "first year of the collection window")
	end := fs.Int("end", 2024, "last year of the collection window")
	delay := fs.Duration("delay", 120*time.Millisecond, "fixed pause between requests")
	outDir := fs.String("out", "data", "output directory")
	dbPath := fs.String("db", "macropulse.db", "sqlite database path (empty disables persistence)")
	countriesCSV := fs.String("countries", "", "comma-separated ISO3 filter (empty = all OECD members)")
	limit := fs.Int("limit", 0, "limit number of countries (0 = all)")
	verbose := fs.Bool("verbose", false, "print each observation")
	fs.Parse(args)

	if err := runCollector(*start, *end, *delay, *outDir, *dbPath, *countriesCSV, *limit, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "collector run failed:", err)
		os.Exit(1)
	}
}

func snapshot(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	year := fs.Int("year", 2024, "snapshot year")
	delay := fs.Duration("delay", 120*time.Millisecond, "fixed pause between requests")
	outDir := fs.String("out", "data", "output directory")
	countriesCSV := fs.String("countries", "", "comma-separated ISO3 filter (empty = all OECD members)")
	limit := fs.Int("limit", 0, "limit number of countries (0 = all)")
	fs.Parse(args)

	if err := runSnapshot(*year, *delay, *outDir, *countriesCSV, *limit); err != nil {
		fmt.Fprintln(os.Stderr, "collector snapshot failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: collector <run|snapshot> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "run options:")
	fmt.Fprintln(os.Stderr, "  -start      first year of the collection window (default: 2020)")
	fmt.Fprintln(os.Stderr, "  -end        last year of the collection window (default: 2024)")
	fmt.Fprintln(os.Stderr, "  -delay      fixed pause between requests (default: 120ms)")
	fmt.Fprintln(os.Stderr, "  -out        output directory (default: data)")
	fmt.Fprintln(os.Stderr, "  -db         sqlite database path (default: macropulse.db)")
	fmt.Fprintln(os.Stderr, "  -countries  comma-separated ISO3 filter (default: all OECD members)")
	fmt.Fprintln(os.Stderr, "  -limit      limit number of countries (default: 0)")
	fmt.Fprintln(os.Stderr, "  -verbose    print each observation")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "snapshot options:")
	fmt.Fprintln(os.Stderr, "  -year       snapshot year (default: 2024)")
	fmt.Fprintln(os.Stderr, "  -delay, -out, -countries, -limit as above")
}

func runCollector(start, end int, delay time.Duration, outDir, dbPath, countriesCSV string, limit int, verbose bool) error {
	if start > end {
		return fmt.Errorf("invalid year window %d:%d", start, end)
	}

	countryList, err := resolveCountries(countriesCSV, limit)
	if err != nil {
		return err
	}
	indicators := model.DefaultIndicators()

	provider, err := worldbank.New()
	if err != nil {
		return err
	}

	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	collector := collect.New(provider, collect.Config{StartYear: start, EndYear: end, Delay: delay}, nil)
	records := collector.Run(ctx, countryList, indicators)
	collect.SortObservations(records)

	if verbose {
		for _, record := range records {
			fmt.Printf("%s %s %d %s %s\n",
				record.ISO3, record.Indicator, record.Year, formatValue(record.Value), record.Err)
		}
	}

	longPath := filepath.Join(outDir, fmt.Sprintf("oecd_%d_indicators_%d_%d_long.csv", len(indicators), start, end))
	if err := export.WriteLong(longPath, records); err != nil {
		return err
	}

	wide, err := reshape.ToWide(records)
	if err != nil {
		return err
	}
	widePath := filepath.Join(outDir, fmt.Sprintf("oecd_%d_indicators_%d_%d_wide.csv", len(indicators), start, end))
	if err := export.WriteWide(widePath, wide, reshape.ObservedColumns(wide, indicators)); err != nil {
		return err
	}

	if err := st.UpsertObservations(ctx, records); err != nil {
		return err
	}

	ok, missing, failed := tally(records)
	fmt.Printf("collector run complete (countries=%d indicators=%d requests=%d ok=%d missing=%d failed=%d)\n",
		len(countryList), len(indicators), len(countryList)*len(indicators), ok, missing, failed)
	fmt.Println("[missing counts by indicator]")
	counts := collect.MissingCounts(records, indicators)
	for _, indicator := range indicators {
		fmt.Printf("%s missing=%d\n", indicator.Key, counts[indicator.Key])
	}
	return nil
}

func runSnapshot(year int, delay time.Duration, outDir, countriesCSV string, limit int) error {
	countryList, err := resolveCountries(countriesCSV, limit)
	if err != nil {
		return err
	}
	indicators := model.DefaultIndicators()

	provider, err := worldbank.New()
	if err != nil {
		return err
	}

	collector := collect.New(provider, collect.Config{StartYear: year, EndYear: year, Delay: delay}, nil)
	rows := collector.Snapshot(context.Background(), countryList, indicators, year)

	path := filepath.Join(outDir, fmt.Sprintf("oecd_%d_indicators_%d_snapshot.csv", len(indicators), year))
	if err := export.WriteSnapshot(path, rows, indicators); err != nil {
		return err
	}

	fmt.Printf("collector snapshot complete (countries=%d year=%d out=%s)\n", len(countryList), year, path)
	fmt.Println("[missing counts]")
	for _, indicator := range indicators {
		missing := 0
		for _, row := range rows {
			if _, ok := row.Values[indicator.Key]; !ok {
				missing++
			}
		}
		fmt.Printf("%s missing=%d\n", indicator.Key, missing)
	}
	return nil
}

func resolveCountries(countriesCSV string, limit int) ([]model.Country, error) {
	countryList, err := countries.All()
	if err != nil {
		return nil, err
	}
	if allowed := parseList(countriesCSV); len(allowed) > 0 {
		set := make(map[string]struct{}, len(allowed))
		for _, iso3 := range allowed {
			set[iso3] = struct{}{}
		}
		filtered := make([]model.Country, 0, len(countryList))
		for _, country := range countryList {
			if _, ok := set[country.ISO3]; ok {
				filtered = append(filtered, country)
			}
		}
		countryList = filtered
	}
	if limit > 0 && len(countryList) > limit {
		countryList = countryList[:limit]
	}
	if len(countryList) == 0 {
		return nil, errors.New("no countries after filtering")
	}
	return countryList, nil
}

func openStore(path string) (store.Store, error) {
	if strings.TrimSpace(path) == "" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(path)
}

func tally(records []model.Observation) (ok, missing, failed int) {
	for _, record := range records {
		switch {
		case record.Err != "":
			failed++
		case record.Value == nil:
			missing++
		default:
			ok++
		}
	}
	return ok, missing, failed
}

func formatValue(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *value)
}

func parseList(value string) []string {
	raw := strings.Split(value, ",")
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		items = append(items, strings.ToUpper(trimmed))
	}
	return items
}
