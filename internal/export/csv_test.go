package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macropulse/internal/model"
)

func floatPtr(value float64) *float64 { return &value }

func readLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

func TestWriteLong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.csv")
	records := []model.Observation{
		{Country: "Korea", ISO3: "KOR", Year: 2020, Indicator: "gdp", IndicatorCode: "NY.GDP.MKTP.CD", Value: floatPtr(100.5)},
		{Country: "Korea", ISO3: "KOR", Year: 2021, Indicator: "gdp", IndicatorCode: "NY.GDP.MKTP.CD"},
		{Country: "United States", ISO3: "USA", Indicator: "gdp", IndicatorCode: "NY.GDP.MKTP.CD", Err: "boom"},
	}

	require.NoError(t, WriteLong(path, records))
	lines := readLines(t, path)
	require.Len(t, lines, 4)

	assert.Equal(t, "country,iso3,year,indicator,indicator_code,value,error", lines[0])
	assert.Equal(t, "Korea,KOR,2020,gdp,NY.GDP.MKTP.CD,100.5,", lines[1])
	// missing value is a legitimate state, not an error
	assert.Equal(t, "Korea,KOR,2021,gdp,NY.GDP.MKTP.CD,,", lines[2])
	// degraded record: empty year and value, error populated
	assert.Equal(t, "United States,USA,,gdp,NY.GDP.MKTP.CD,,boom", lines[3])
}

func TestWriteLongOmitsErrorColumnWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.csv")
	records := []model.Observation{
		{Country: "Korea", ISO3: "KOR", Year: 2020, Indicator: "gdp", IndicatorCode: "NY.GDP.MKTP.CD", Value: floatPtr(100)},
	}

	require.NoError(t, WriteLong(path, records))
	lines := readLines(t, path)
	assert.Equal(t, "country,iso3,year,indicator,indicator_code,value", lines[0])
}

func TestWriteWideReadWideRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.csv")
	rows := []model.WideRow{
		{Country: "Korea", ISO3: "KOR", Year: 2020, Values: map[string]float64{"gdp": 100.25, "debt": 40}},
		{Country: "Korea", ISO3: "KOR", Year: 2021, Values: map[string]float64{"gdp": 120}},
	}
	columns := []string{"gdp", "debt"}

	require.NoError(t, WriteWide(path, rows, columns))

	lines := readLines(t, path)
	assert.Equal(t, "country,iso3,year,gdp,debt", lines[0])
	assert.Equal(t, "Korea,KOR,2021,120,", lines[2])

	reread, rereadColumns, err := ReadWide(path)
	require.NoError(t, err)
	assert.Equal(t, columns, rereadColumns)
	assert.Equal(t, rows, reread)
}

func TestReadWideRejectsUnexpectedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,code,year,gdp\n"), 0o644))

	_, _, err := ReadWide(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected header")
}

func TestWriteSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	indicators := []model.Indicator{{Key: "gdp"}, {Key: "debt"}}
	rows := []model.SnapshotRow{
		{Country: "Korea", ISO3: "KOR", Year: 2024, Values: map[string]float64{"gdp": 100, "debt": 40}, Errors: map[string]string{}},
		{Country: "United States", ISO3: "USA", Year: 2024, Values: map[string]float64{"gdp": 200}, Errors: map[string]string{"debt": "boom"}},
	}

	require.NoError(t, WriteSnapshot(path, rows, indicators))
	lines := readLines(t, path)

	// error column only for the indicator that failed at least once
	assert.Equal(t, "country,iso3,year,gdp,debt,debt_error", lines[0])
	assert.Equal(t, "Korea,KOR,2024,100,40,", lines[1])
	assert.Equal(t, "United States,USA,2024,200,,boom", lines[2])
}

func TestWriteSnapshotNoErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	indicators := []model.Indicator{{Key: "gdp"}}
	rows := []model.SnapshotRow{
		{Country: "Korea", ISO3: "KOR", Year: 2024, Values: map[string]float64{"gdp": 100}, Errors: map[string]string{}},
	}

	require.NoError(t, WriteSnapshot(path, rows, indicators))
	assert.Equal(t, "country,iso3,year,gdp", readLines(t, path)[0])
}

func TestWriteChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.csv")
	rows := []model.ChangeRow{
		{
			Country: "Korea", ISO3: "KOR",
			Start:  map[string]float64{"gdp": 100},
			End:    map[string]float64{"gdp": 150},
			Change: map[string]float64{"gdp": 50},
		},
		{
			Country: "United States", ISO3: "USA",
			Start:  map[string]float64{"gdp": 200},
			End:    map[string]float64{},
			Change: map[string]float64{},
		},
	}

	require.NoError(t, WriteChanges(path, rows, []string{"gdp"}, 2020, 2024))
	lines := readLines(t, path)

	assert.Equal(t, "country,iso3,gdp_2020,gdp_2024,gdp_change", lines[0])
	assert.Equal(t, "Korea,KOR,100,150,50", lines[1])
	assert.Equal(t, "United States,USA,200,,", lines[2])
}

func TestWriteYoY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yoy.csv")
	inf := math.Inf(1)
	nan := math.NaN()
	rows := []model.YoYRow{
		{Country: "Korea", ISO3: "KOR", Year: 2020, Value: 100},
		{Country: "Korea", ISO3: "KOR", Year: 2021, Value: 110, Diff: floatPtr(10), PctChange: floatPtr(10)},
		{Country: "Korea", ISO3: "KOR", Year: 2022, Value: 5, Diff: floatPtr(-105), PctChange: &inf},
		{Country: "Korea", ISO3: "KOR", Year: 2023, Value: 0, Diff: floatPtr(-5), PctChange: &nan},
	}

	require.NoError(t, WriteYoY(path, rows, "gdp_per_capita_usd"))
	lines := readLines(t, path)

	assert.Equal(t, "country,iso3,year,gdp_per_capita_usd,yearly_diff,yearly_pct_change", lines[0])
	assert.Equal(t, "Korea,KOR,2020,100,,", lines[1])
	assert.Equal(t, "Korea,KOR,2021,110,10,10", lines[2])
	assert.Equal(t, "Korea,KOR,2022,5,-105,inf", lines[3])
	assert.Equal(t, "Korea,KOR,2023,0,-5,", lines[4])
}

func TestWriteCSVCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")
	require.NoError(t, WriteLong(path, nil))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
