package countries

import (
	"errors"
	"fmt"
	"strings"

	"macropulse/internal/model"
)

// ErrUnknownCountry is returned when a display name has no ISO3 mapping.
var ErrUnknownCountry = errors.New("countries: unknown country name")

// Members is the fixed OECD member list, by display name.
var Members = []string{
	"Australia", "Austria", "Belgium", "Canada", "Chile", "Colombia", "Costa Rica", "Czechia",
	"Denmark", "Estonia", "Finland", "France", "Germany", "Greece", "Hungary", "Iceland",
	"Ireland", "Israel", "Italy", "Japan", "Korea", "Latvia", "Lithuania", "Luxembourg",
	"Mexico", "Netherlands", "New Zealand", "Norway", "Poland", "Portugal", "Slovak Republic",
	"Slovenia", "Spain", "Sweden", "Switzerland", "Türkiye", "United Kingdom", "United States",
}

// manualISO3 is consulted before the general table: names whose common form
// diverges from the ISO registry entry.
var manualISO3 = map[string]string{
	"Korea":           "KOR",
	"United States":   "USA",
	"United Kingdom":  "GBR",
	"Türkiye":         "TUR",
	"Turkey":          "TUR",
	"Slovak Republic": "SVK",
	"Czechia":         "CZE",
}

var iso3Table = map[string]string{
	"Australia":   "AUS",
	"Austria":     "AUT",
	"Belgium":     "BEL",
	"Canada":      "CAN",
	"Chile":       "CHL",
	"Colombia":    "COL",
	"Costa Rica":  "CRI",
	"Denmark":     "DNK",
	"Estonia":     "EST",
	"Finland":     "FIN",
	"France":      "FRA",
	"Germany":     "DEU",
	"Greece":      "GRC",
	"Hungary":     "HUN",
	"Iceland":     "ISL",
	"Ireland":     "IRL",
	"Israel":      "ISR",
	"Italy":       "ITA",
	"Japan":       "JPN",
	"Latvia":      "LVA",
	"Lithuania":   "LTU",
	"Luxembourg":  "LUX",
	"Mexico":      "MEX",
	"Netherlands": "NLD",
	"New Zealand": "NZL",
	"Norway":      "NOR",
	"Poland":      "POL",
	"Portugal":    "PRT",
	"Slovenia":    "SVN",
	"Spain":       "ESP",
	"Sweden":      "SWE",
	"Switzerland": "CHE",
}

// Resolve maps a country display name to its ISO3 code.
func Resolve(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if iso3, ok := manualISO3[trimmed]; ok {
		return iso3, nil
	}
	if iso3, ok := iso3Table[trimmed]; ok {
		return iso3, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCountry, name)
}

// All resolves the full member list. Any unresolvable name or duplicate ISO3
// fails the whole list: downstream steps assume a complete resolved set.
func All() ([]model.Country, error) {
	out := make([]model.Country, 0, len(Members))
	seen := make(map[string]string, len(Members))
	for _, name := range Members {
		iso3, err := Resolve(name)
		if err != nil {
			return nil, err
		}
		if previous, ok := seen[iso3]; ok {
			return nil, fmt.Errorf("countries: duplicate ISO3 %s for %q and %q", iso3, previous, name)
		}
		seen[iso3] = name
		out = append(out, model.Country{Name: name, ISO3: iso3})
	}
	return out, nil
}
