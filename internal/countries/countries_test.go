package countries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		country string
		want    string
	}{
		{name: "plain table entry", country: "Germany", want: "DEU"},
		{name: "manual override", country: "Korea", want: "KOR"},
		{name: "non-ascii name", country: "Türkiye", want: "TUR"},
		{name: "legacy spelling", country: "Turkey", want: "TUR"},
		{name: "two-word name", country: "United States", want: "USA"},
		{name: "surrounding whitespace", country: "  Japan ", want: "JPN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iso3, err := Resolve(tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.want, iso3)
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("Atlantis")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCountry)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestAll(t *testing.T) {
	list, err := All()
	require.NoError(t, err)
	require.Len(t, list, len(Members))

	seen := make(map[string]struct{}, len(list))
	for _, country := range list {
		assert.Len(t, country.ISO3, 3)
		_, dup := seen[country.ISO3]
		assert.False(t, dup, "duplicate ISO3 %s", country.ISO3)
		seen[country.ISO3] = struct{}{}
	}

	assert.Equal(t, "Australia", list[0].Name)
	assert.Equal(t, "AUS", list[0].ISO3)
	assert.Equal(t, "United States", list[len(list)-1].Name)
	assert.Equal(t, "USA", list[len(list)-1].ISO3)
}
