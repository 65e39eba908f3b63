package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogdrb/ogdrb/internal/errors"
)

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from     Coordinate
		to       Coordinate
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			from:     Coordinate{Lat: 49.2827, Lon: -123.1207},
			to:       Coordinate{Lat: 49.2827, Lon: -123.1207},
			expected: 0,
			delta:    0.001,
		},
		{
			name:     "vancouver to toronto",
			from:     Coordinate{Lat: 49.2827, Lon: -123.1207},
			to:       Coordinate{Lat: 43.6532, Lon: -79.3832},
			expected: 3358,
			delta:    10,
		},
		{
			name:     "sao jose dos campos to caraguatatuba",
			from:     Coordinate{Lat: -23.2236, Lon: -45.9195},
			to:       Coordinate{Lat: -23.3, Lon: -45.0},
			expected: 94,
			delta:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, tt.from.DistanceKm(tt.to), tt.delta)
		})
	}
}

func TestUnitConversion(t *testing.T) {
	t.Parallel()

	km, err := Kilometers.Kilometers(100)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, km, 0.001)

	km, err = Miles.Kilometers(100)
	require.NoError(t, err)
	assert.InDelta(t, 160.9344, km, 0.001)

	_, err = Unit("furlongs").Kilometers(1)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestSearchAreaValidate(t *testing.T) {
	t.Parallel()

	valid := SearchArea{Center: Coordinate{Lat: -23.2236, Lon: -45.9195}, Radius: 100, Unit: Kilometers}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		area SearchArea
	}{
		{"zero radius", SearchArea{Center: Coordinate{}, Radius: 0, Unit: Kilometers}},
		{"negative radius", SearchArea{Center: Coordinate{}, Radius: -5, Unit: Kilometers}},
		{"latitude out of range", SearchArea{Center: Coordinate{Lat: 91}, Radius: 10, Unit: Kilometers}},
		{"longitude out of range", SearchArea{Center: Coordinate{Lon: -181}, Radius: 10, Unit: Kilometers}},
		{"bad unit", SearchArea{Center: Coordinate{}, Radius: 10, Unit: Unit("nm")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.area.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
		})
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	area := SearchArea{Center: Coordinate{Lat: 49.2827, Lon: -123.1207}, Radius: 10, Unit: Kilometers}

	assert.True(t, area.Contains(Coordinate{Lat: 49.2827, Lon: -123.1207}))
	assert.True(t, area.Contains(Coordinate{Lat: 49.30, Lon: -123.10}))
	assert.False(t, area.Contains(Coordinate{Lat: 43.6532, Lon: -79.3832}))
}

func TestBounds(t *testing.T) {
	t.Parallel()

	area := SearchArea{Center: Coordinate{Lat: -23.2236, Lon: -45.9195}, Radius: 100, Unit: Kilometers}
	box, err := area.Bounds()
	require.NoError(t, err)

	assert.False(t, box.Wraps)
	assert.Less(t, box.MinLat, area.Center.Lat)
	assert.Greater(t, box.MaxLat, area.Center.Lat)
	// The box must contain every point of the circle.
	assert.LessOrEqual(t, box.MinLat, area.Center.Lat-0.89)
	assert.GreaterOrEqual(t, box.MaxLat, area.Center.Lat+0.89)
}

func TestBoundsAntimeridian(t *testing.T) {
	t.Parallel()

	area := SearchArea{Center: Coordinate{Lat: -41.28, Lon: 179.9}, Radius: 100, Unit: Kilometers}
	box, err := area.Bounds()
	require.NoError(t, err)
	assert.True(t, box.Wraps)

	area = SearchArea{Center: Coordinate{Lat: 89.9, Lon: 0}, Radius: 100, Unit: Kilometers}
	box, err = area.Bounds()
	require.NoError(t, err)
	assert.InDelta(t, -180.0, box.MinLon, 0.001)
	assert.InDelta(t, 180.0, box.MaxLon, 0.001)
	assert.InDelta(t, 90.0, box.MaxLat, 0.001)
}
