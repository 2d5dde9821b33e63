package worldbank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewWithConfig(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return provider
}

func TestFetchRange(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/country/KOR/indicator/NY.GDP.PCAP.CD", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "json", query.Get("format"))
		assert.Equal(t, "2020:2024", query.Get("date"))
		assert.Equal(t, "200", query.Get("per_page"))
		assert.Equal(t, "1", query.Get("page"))

		w.Write([]byte(`[{"page":1,"total":2},[{"date":"2021","value":120.5},{"date":"2020","value":null}]]`))
	})

	rows, err := provider.FetchRange(context.Background(), "KOR", "NY.GDP.PCAP.CD", 2020, 2024)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2021", rows[0].Date)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 120.5, *rows[0].Value)

	assert.Equal(t, "2020", rows[1].Date)
	assert.Nil(t, rows[1].Value)
}

func TestFetchRangeNoData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null rows", body: `[{"page":1},null]`},
		{name: "empty rows", body: `[{"page":1},[]]`},
		{name: "single element envelope", body: `[{"message":"no data"}]`},
		{name: "empty array", body: `[]`},
		{name: "object instead of array", body: `{"message":"Invalid format"}`},
		{name: "malformed rows", body: `[{"page":1},{"date":"2020"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			rows, err := provider.FetchRange(context.Background(), "USA", "SL.UEM.TOTL.ZS", 2020, 2024)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestFetchRangeHTTPError(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	_, err := provider.FetchRange(context.Background(), "USA", "NY.GDP.PCAP.CD", 2020, 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestFetchValue(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"page":1},[{"date":"2024","value":100.25},{"date":"2023","value":null}]]`))
	})

	value, err := provider.FetchValue(context.Background(), "KOR", "NY.GDP.PCAP.CD", 2024)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, 100.25, *value)
}

func TestFetchValueMissingYear(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"page":1},[{"date":"2023","value":99.9}]]`))
	})

	value, err := provider.FetchValue(context.Background(), "KOR", "NY.GDP.PCAP.CD", 2024)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestFetchValueNullValue(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"page":1},[{"date":"2024","value":null}]]`))
	})

	value, err := provider.FetchValue(context.Background(), "USA", "GC.DOD.TOTL.GD.ZS", 2024)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestNewWithConfigDefaults(t *testing.T) {
	provider, err := NewWithConfig(Config{})
	require.NoError(t, err)

	assert.Equal(t, defaultBaseURL, provider.config.BaseURL)
	assert.Equal(t, "json", provider.config.Format)
	assert.Equal(t, defaultPerPage, provider.config.PerPage)
	assert.Equal(t, defaultTimeoutSeconds*time.Second, provider.config.Timeout)
	assert.Equal(t, defaultUserAgent, provider.config.UserAgent)
}
