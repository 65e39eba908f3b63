package exporter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogdrb/ogdrb/internal/codeplug"
	"github.com/ogdrb/ogdrb/internal/countries"
	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/geo"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// fakeSource serves canned results keyed by the area's center coordinate.
type fakeSource struct {
	records map[geo.Coordinate][]repeaterbook.Repeater
	errors  map[geo.Coordinate]error
}

func (f *fakeSource) QueryArea(ctx context.Context, area geo.SearchArea, _ repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.errors[area.Center]; err != nil {
		return nil, err
	}
	return f.records[area.Center], nil
}

func analogRepeater(id int, callsign, city string) repeaterbook.Repeater {
	return repeaterbook.Repeater{
		Country:        "Brazil",
		StateID:        "0",
		RepeaterID:     id,
		Callsign:       callsign,
		NearestCity:    city,
		Location:       geo.Coordinate{Lat: -23.2, Lon: -45.9},
		FrequencyMHz:   146.85,
		OffsetMHz:      -0.6,
		DownlinkToneHz: 88.5,
		FMAnalog:       true,
		FMBandwidthKHz: 25,
	}
}

func area(lat, lon float64) geo.SearchArea {
	return geo.SearchArea{Center: geo.Coordinate{Lat: lat, Lon: lon}, Radius: 100, Unit: geo.Kilometers}
}

func testFilter(t *testing.T) repeaterbook.ExportFilter {
	t.Helper()
	br, err := countries.Lookup("BR")
	require.NoError(t, err)
	return repeaterbook.ExportFilter{Countries: []countries.Country{br}}
}

func TestRunNoOverlap(t *testing.T) {
	areaA, areaB := area(-23.2236, -45.9195), area(-23.3, -45.0)
	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{
		areaA.Center: {analogRepeater(1, "PY2AAA", "Sao Jose"), analogRepeater(2, "PY2BBB", "Jacarei")},
		areaB.Center: {analogRepeater(3, "PY2CCC", "Taubate")},
	}}

	p := New(src, codeplug.DefaultLimits())
	plug, report, err := p.Run(context.Background(), []ZoneRequest{
		{Name: "Vale A", Area: areaA},
		{Name: "Vale B", Area: areaB},
	}, testFilter(t))
	require.NoError(t, err)

	// No shared records: global table size is the sum of zone counts.
	assert.Equal(t, 3, plug.ChannelCount())
	assert.Empty(t, report.Entries)
	assert.Equal(t, []string{"Vale A", "Vale B"}, plug.ZoneNames())
	assert.Equal(t, []int{0, 1}, plug.Zones[0].Channels)
	assert.Equal(t, []int{2}, plug.Zones[1].Channels)
}

func TestRunSharedRepeaterSingleEntry(t *testing.T) {
	areaA, areaB := area(-23.2236, -45.9195), area(-23.3, -45.0)
	shared := analogRepeater(1, "PY2AAA", "Sao Jose")
	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{
		areaA.Center: {shared, analogRepeater(2, "PY2BBB", "Jacarei")},
		areaB.Center: {shared},
	}}

	p := New(src, codeplug.DefaultLimits())
	plug, _, err := p.Run(context.Background(), []ZoneRequest{
		{Name: "zone_a", Area: areaA},
		{Name: "zone_b", Area: areaB},
	}, testFilter(t))
	require.NoError(t, err)

	// One global entry for the shared repeater, referenced by both zones.
	assert.Equal(t, 2, plug.ChannelCount())
	assert.Equal(t, []int{0, 1}, plug.Zones[0].Channels)
	assert.Equal(t, []int{0}, plug.Zones[1].Channels)

	count := 0
	for _, ch := range plug.Channels {
		if ch.Name == "PY2AAA~SaoJose" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRunIdempotent(t *testing.T) {
	areaA := area(-23.2236, -45.9195)
	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{
		areaA.Center: {analogRepeater(1, "PY2AAA", "Sao Jose"), analogRepeater(2, "PY2BBB", "Jacarei")},
	}}
	zones := []ZoneRequest{{Name: "Vale", Area: areaA}}

	p := New(src, codeplug.DefaultLimits())
	first, _, err := p.Run(context.Background(), zones, testFilter(t))
	require.NoError(t, err)
	second, _, err := p.Run(context.Background(), zones, testFilter(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunZoneCapacityTruncation(t *testing.T) {
	const limit = 5
	areaA := area(-23.2236, -45.9195)
	records := make([]repeaterbook.Repeater, 0, limit+1)
	for i := 1; i <= limit+1; i++ {
		records = append(records, analogRepeater(i, fmt.Sprintf("PY2A%02d", i), "Sao Jose"))
	}
	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{areaA.Center: records}}

	limits := codeplug.DefaultLimits()
	limits.MaxChannelsPerZone = limit
	p := New(src, limits)

	plug, report, err := p.Run(context.Background(), []ZoneRequest{{Name: "Vale", Area: areaA}}, testFilter(t))
	require.NoError(t, err)

	// Exactly the first limit channels survive, in establishment order.
	require.Len(t, plug.Zones[0].Channels, limit)
	assert.Equal(t, "PY2A01~SaoJose", plug.Channels[plug.Zones[0].Channels[0]].Name)

	// The dropped channel left the global table too (unused-entry
	// elimination) and is documented in the report.
	assert.Equal(t, limit, plug.ChannelCount())
	require.Len(t, report.Entries, 1)
	assert.Equal(t, ReasonZoneCapacity, report.Entries[0].Reason)
	assert.Equal(t, "Vale", report.Entries[0].Zone)
	assert.Equal(t, records[limit].Key(), report.Entries[0].Repeater)
}

func TestRunGlobalCapacityTruncation(t *testing.T) {
	areaA := area(-23.2236, -45.9195)
	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{
		areaA.Center: {
			analogRepeater(1, "PY2AAA", "Sao Jose"),
			analogRepeater(2, "PY2BBB", "Jacarei"),
			analogRepeater(3, "PY2CCC", "Taubate"),
		},
	}}

	limits := codeplug.DefaultLimits()
	limits.MaxChannels = 2
	p := New(src, limits)

	plug, report, err := p.Run(context.Background(), []ZoneRequest{{Name: "Vale", Area: areaA}}, testFilter(t))
	require.NoError(t, err)

	assert.Equal(t, 2, plug.ChannelCount())
	assert.Equal(t, []int{0, 1}, plug.Zones[0].Channels)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, ReasonChannelCapacity, report.Entries[0].Reason)
}

func TestRunUnsupportedModeReportedOnce(t *testing.T) {
	areaA, areaB := area(-23.2236, -45.9195), area(-23.3, -45.0)
	unsupported := analogRepeater(9, "PY2ZZZ", "Sao Jose")
	unsupported.FMAnalog = false
	unsupported.DMR = false

	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{
		areaA.Center: {analogRepeater(1, "PY2AAA", "Sao Jose"), unsupported},
		areaB.Center: {unsupported},
	}}

	p := New(src, codeplug.DefaultLimits())
	plug, report, err := p.Run(context.Background(), []ZoneRequest{
		{Name: "zone_a", Area: areaA},
		{Name: "zone_b", Area: areaB},
	}, testFilter(t))
	require.NoError(t, err)

	// The record is absent from every zone and reported exactly once.
	assert.Equal(t, 1, plug.ChannelCount())
	assert.Equal(t, []int{0}, plug.Zones[0].Channels)
	assert.Empty(t, plug.Zones[1].Channels)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, ReasonUnsupportedMode, report.Entries[0].Reason)
	assert.Equal(t, unsupported.Key(), report.Entries[0].Repeater)
}

func TestRunDualModeRepeater(t *testing.T) {
	areaA := area(-23.2236, -45.9195)
	dual := analogRepeater(1, "PY2AAA", "Sao Jose")
	dual.DMR = true
	dual.DMRColorCode = 3
	dual.InputMHz = 146.25

	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{areaA.Center: {dual}}}

	p := New(src, codeplug.DefaultLimits())
	plug, _, err := p.Run(context.Background(), []ZoneRequest{{Name: "Vale", Area: areaA}}, testFilter(t))
	require.NoError(t, err)

	require.Equal(t, 2, plug.ChannelCount())
	analog, digital := plug.Channels[0], plug.Channels[1]
	assert.Equal(t, codeplug.ModeAnalog, analog.Mode)
	assert.Equal(t, "PY2AAA~SaoJose", analog.Name)
	assert.Equal(t, 146.25, analog.TxMHz, "published input frequency wins over the offset")
	assert.Equal(t, 88.5, analog.RxToneHz)
	assert.Equal(t, codeplug.ModeDigital, digital.Mode)
	assert.Equal(t, "PY2AAA_SaoJose", digital.Name)
	assert.Equal(t, 3, digital.ColorCode)
	assert.Equal(t, 1, digital.Timeslot)
	assert.Equal(t, []int{0, 1}, plug.Zones[0].Channels)
}

func TestRunDuplicateNamesUniquified(t *testing.T) {
	areaA := area(-23.2236, -45.9195)
	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{
		areaA.Center: {
			analogRepeater(1, "PY2AAA", "Sao Jose"),
			analogRepeater(2, "PY2AAA", "Sao Jose"),
		},
	}}

	p := New(src, codeplug.DefaultLimits())
	plug, _, err := p.Run(context.Background(), []ZoneRequest{{Name: "Vale", Area: areaA}}, testFilter(t))
	require.NoError(t, err)

	require.Equal(t, 2, plug.ChannelCount())
	assert.NotEqual(t, plug.Channels[0].Name, plug.Channels[1].Name)
	assert.Equal(t, "PY2AAA~SaoJose1", plug.Channels[0].Name)
	assert.Equal(t, "PY2AAA~SaoJose2", plug.Channels[1].Name)
}

func TestRunZoneCountTruncation(t *testing.T) {
	areaA := area(-23.2236, -45.9195)
	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{
		areaA.Center: {analogRepeater(1, "PY2AAA", "Sao Jose")},
	}}

	limits := codeplug.DefaultLimits()
	limits.MaxZones = 1
	p := New(src, limits)

	plug, report, err := p.Run(context.Background(), []ZoneRequest{
		{Name: "kept", Area: areaA},
		{Name: "dropped", Area: areaA},
	}, testFilter(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"kept"}, plug.ZoneNames())
	require.Len(t, report.Entries, 1)
	assert.Equal(t, ReasonZoneCount, report.Entries[0].Reason)
	assert.Equal(t, "dropped", report.Entries[0].Zone)
}

func TestRunRequestValidation(t *testing.T) {
	p := New(&fakeSource{}, codeplug.DefaultLimits())
	ctx := context.Background()
	filter := testFilter(t)

	_, _, err := p.Run(ctx, nil, filter)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	areaA := area(-23.2236, -45.9195)
	_, _, err = p.Run(ctx, []ZoneRequest{{Name: "a", Area: areaA}, {Name: "a", Area: areaA}}, filter)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	bad := areaA
	bad.Radius = -1
	_, _, err = p.Run(ctx, []ZoneRequest{{Name: "a", Area: bad}}, filter)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}
