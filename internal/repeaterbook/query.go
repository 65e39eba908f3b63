package repeaterbook

import (
	"sort"

	"github.com/ogdrb/ogdrb/internal/countries"
	"github.com/ogdrb/ogdrb/internal/errors"
)

// ExportFilter scopes which directory records a request is interested in.
// It is shared across every zone of one request.
type ExportFilter struct {
	Countries []countries.Country
	// USStateIDs selects which US states to download; the directory
	// partitions United States exports by state, so a US filter without
	// states is invalid.
	USStateIDs []string
}

// Validate checks the filter for internal consistency.
func (f ExportFilter) Validate() error {
	if len(f.Countries) == 0 {
		return errors.Newf("export filter needs at least one country").
			Category(errors.CategoryValidation).
			Component("repeaterbook").
			Build()
	}
	if countries.ContainsUS(f.Countries) && len(f.USStateIDs) == 0 {
		return errors.Newf("US states must be selected when US is in countries").
			Category(errors.CategoryValidation).
			Component("repeaterbook").
			Build()
	}
	return nil
}

// CountryNames returns the directory display names of the filter's countries.
func (f ExportFilter) CountryNames() []string {
	return countries.Names(f.Countries)
}

// exportRequest is one export endpoint call: a country, plus a state for
// United States requests.
type exportRequest struct {
	Country countries.Country
	StateID string
}

// requests splits the filter into the endpoint calls needed to cover it:
// one per non-US country in filter order, then one per selected US state in
// sorted order. The order is deterministic so merged results are too.
func (f ExportFilter) requests() []exportRequest {
	reqs := make([]exportRequest, 0, len(f.Countries)+len(f.USStateIDs))

	var us *countries.Country
	for i := range f.Countries {
		if f.Countries[i].Alpha2 == countries.USAlpha2 {
			us = &f.Countries[i]
			continue
		}
		reqs = append(reqs, exportRequest{Country: f.Countries[i]})
	}

	if us != nil {
		states := make([]string, len(f.USStateIDs))
		copy(states, f.USStateIDs)
		sort.Strings(states)
		for _, state := range states {
			reqs = append(reqs, exportRequest{Country: *us, StateID: state})
		}
	}

	return reqs
}
