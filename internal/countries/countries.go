// Package countries resolves user-supplied country codes or names into the
// display names the repeater directory uses in its records.
package countries

import (
	"strings"

	isocountries "github.com/biter777/countries"

	"github.com/ogdrb/ogdrb/internal/errors"
)

// Country is a resolved ISO 3166 country.
type Country struct {
	Alpha2 string
	Name   string
}

// The directory stores a handful of countries under names that differ from
// the ISO short names.
var directoryNameOverrides = map[string]string{
	"US": "United States",
	"GB": "United Kingdom",
	"RU": "Russia",
	"KR": "South Korea",
	"VE": "Venezuela",
	"BO": "Bolivia",
	"TW": "Taiwan",
}

// USAlpha2 is the alpha-2 code for the United States, whose directory
// exports are partitioned by state.
const USAlpha2 = "US"

// Lookup resolves an alpha-2/alpha-3 code or a country name.
func Lookup(query string) (Country, error) {
	code := isocountries.ByName(strings.TrimSpace(query))
	if code == isocountries.Unknown {
		return Country{}, errors.Newf("unknown country: %q", query).
			Category(errors.CategoryNotFound).
			Component("countries").
			Build()
	}

	alpha2 := code.Alpha2()
	name := code.String()
	if override, ok := directoryNameOverrides[alpha2]; ok {
		name = override
	}

	return Country{Alpha2: alpha2, Name: name}, nil
}

// LookupAll resolves a list of codes or names, failing on the first unknown
// entry. The result preserves input order.
func LookupAll(queries []string) ([]Country, error) {
	resolved := make([]Country, 0, len(queries))
	for _, q := range queries {
		country, err := Lookup(q)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, country)
	}
	return resolved, nil
}

// Names returns the directory display names of the given countries.
func Names(list []Country) []string {
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	return names
}

// ContainsUS reports whether the list includes the United States.
func ContainsUS(list []Country) bool {
	for _, c := range list {
		if c.Alpha2 == USAlpha2 {
			return true
		}
	}
	return false
}
