package repeaterbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogdrb/ogdrb/internal/countries"
	"github.com/ogdrb/ogdrb/internal/errors"
)

func TestFilterRequestsWithoutUS(t *testing.T) {
	t.Parallel()

	filter := ExportFilter{
		Countries:  []countries.Country{mustLookup(t, "CA")},
		USStateIDs: []string{"06"},
	}

	reqs := filter.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Canada", reqs[0].Country.Name)
	assert.Empty(t, reqs[0].StateID)
}

func TestFilterRequestsSplitsUSStates(t *testing.T) {
	t.Parallel()

	filter := ExportFilter{
		Countries:  []countries.Country{mustLookup(t, "US"), mustLookup(t, "CA")},
		USStateIDs: []string{"32", "06"},
	}

	reqs := filter.requests()
	require.Len(t, reqs, 3)
	// Non-US countries first, then US states in sorted order.
	assert.Equal(t, "Canada", reqs[0].Country.Name)
	assert.Equal(t, "United States", reqs[1].Country.Name)
	assert.Equal(t, "06", reqs[1].StateID)
	assert.Equal(t, "United States", reqs[2].Country.Name)
	assert.Equal(t, "32", reqs[2].StateID)
}

func TestFilterValidate(t *testing.T) {
	t.Parallel()

	err := ExportFilter{}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	err = ExportFilter{Countries: []countries.Country{mustLookup(t, "US")}}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	err = ExportFilter{
		Countries:  []countries.Country{mustLookup(t, "US")},
		USStateIDs: []string{"06"},
	}.Validate()
	assert.NoError(t, err)
}
