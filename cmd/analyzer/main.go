package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"macropulse/internal/analysis"
	"macropulse/internal/export"
	"macropulse/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "changes":
		changes(os.Args[2:])
	case "yoy":
		yoy(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func changes(args []string) {
	fs := flag.NewFlagSet("changes", flag.ExitOnError)
	inPath := fs.String("in", "data/oecd_6_indicators_2020_2024_wide.csv", "wide csv path")
	outPath := fs.String("out", "data/oecd_changes_2020_to_2024.csv", "changes csv path")
	xlsxPath := fs.String("xlsx", "", "optional xlsx report path")
	start := fs.Int("start", 2020, "start year")
	end := fs.Int("end", 2024, "end year")
	metricsCSV := fs.String("metrics", "", "comma-separated metric keys (empty = all configured)")
	fs.Parse(args)

	if err := runChanges(*inPath, *outPath, *xlsxPath, *start, *end, *metricsCSV); err != nil {
		fmt.Fprintln(os.Stderr, "analyzer changes failed:", err)
		os.Exit(1)
	}
}

func yoy(args []string) {
	fs := flag.NewFlagSet("yoy", flag.ExitOnError)
	inPath := fs.String("in", "data/oecd_6_indicators_2020_2024_wide.csv", "wide csv path")
	outPath := fs.String("out", "data/oecd_yearly_diff_pct.csv", "yoy csv path")
	metric := fs.String("metric", "gdp_per_capita_usd", "metric key")
	start := fs.Int("start", 2020, "start year")
	end := fs.Int("end", 2024, "end year")
	fs.Parse(args)

	if err := runYoY(*inPath, *outPath, *metric, *start, *end); err != nil {
		fmt.Fprintln(os.Stderr, "analyzer yoy failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: analyzer <changes|yoy> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "changes options:")
	fmt.Fprintln(os.Stderr, "  -in       wide csv path (default: data/oecd_6_indicators_2020_2024_wide.csv)")
	fmt.Fprintln(os.Stderr, "  -out      changes csv path (default: data/oecd_changes_2020_to_2024.csv)")
	fmt.Fprintln(os.Stderr, "  -xlsx     optional xlsx report path")
	fmt.Fprintln(os.Stderr, "  -start    start year (default: 2020)")
	fmt.Fprintln(os.Stderr, "  -end      end year (default: 2024)")
	fmt.Fprintln(os.Stderr, "  -metrics  comma-separated metric keys (default: all configured)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "yoy options:")
	fmt.Fprintln(os.Stderr, "  -in       wide csv path")
	fmt.Fprintln(os.Stderr, "  -out      yoy csv path (default: data/oecd_yearly_diff_pct.csv)")
	fmt.Fprintln(os.Stderr, "  -metric   metric key (default: gdp_per_capita_usd)")
	fmt.Fprintln(os.Stderr, "  -start    start year (default: 2020)")
	fmt.Fprintln(os.Stderr, "  -end      end year (default: 2024)")
}

func runChanges(inPath, outPath, xlsxPath string, start, end int, metricsCSV string) error {
	wide, _, err := export.ReadWide(inPath)
	if err != nil {
		return err
	}

	metrics := parseMetrics(metricsCSV)
	rows, effective := analysis.Changes(wide, start, end, metrics)
	if err := export.WriteChanges(outPath, rows, effective, start, end); err != nil {
		return err
	}
	if xlsxPath != "" {
		if err := export.WriteChangesXLSX(xlsxPath, rows, effective, start, end); err != nil {
			return err
		}
	}

	fmt.Printf("analyzer changes complete (out=%s rows=%d metrics=%d)\n", outPath, len(rows), len(effective))
	return nil
}

func runYoY(inPath, outPath, metric string, start, end int) error {
	wide, columns, err := export.ReadWide(inPath)
	if err != nil {
		return err
	}
	if !containsColumn(columns, metric) {
		return fmt.Errorf("column not found: %s", metric)
	}

	rows := analysis.YoY(wide, metric, start, end)
	if err := export.WriteYoY(outPath, rows, metric); err != nil {
		return err
	}

	fmt.Printf("analyzer yoy complete (out=%s rows=%d metric=%s)\n", outPath, len(rows), metric)
	return nil
}

func parseMetrics(value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		keys := make([]string, 0)
		for _, indicator := range model.DefaultIndicators() {
			keys = append(keys, indicator.Key)
		}
		return keys
	}
	raw := strings.Split(trimmed, ",")
	metrics := make([]string, 0, len(raw))
	for _, item := range raw {
		metric := strings.TrimSpace(item)
		if metric == "" {
			continue
		}
		metrics = append(metrics, metric)
	}
	return metrics
}

func containsColumn(columns []string, metric string) bool {
	for _, column := range columns {
		if column == metric {
			return true
		}
	}
	return false
}
