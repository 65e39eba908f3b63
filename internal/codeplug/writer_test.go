package codeplug

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlug() *Codeplug {
	return &Codeplug{
		Channels: []Channel{
			{
				Name:         "VE7ABC~Vancouver",
				Mode:         ModeAnalog,
				RxMHz:        146.52,
				TxMHz:        146.52,
				BandwidthKHz: Bandwidth25KHz,
				TxToneHz:     100.0,
				Latitude:     49.2827,
				Longitude:    -123.1207,
				UseLocation:  true,
			},
			{
				Name:      "VE3XYZ_Toronto",
				Mode:      ModeDigital,
				RxMHz:     444.8,
				TxMHz:     449.8,
				ColorCode: 1,
				Timeslot:  1,
			},
		},
		Zones: []Zone{
			{Name: "Home", Channels: []int{0, 1}},
			{Name: "Travel", Channels: []int{1}},
		},
	}
}

func TestWriteChannels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteChannels(&buf, samplePlug()))

	r := csv.NewReader(&buf)
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Channel Number", rows[0][0])

	analog := rows[1]
	assert.Equal(t, "1", analog[0])
	assert.Equal(t, "VE7ABC~Vancouver", analog[1])
	assert.Equal(t, "Analogue", analog[2])
	assert.Equal(t, "146.52000", analog[3])
	assert.Equal(t, "None", analog[8])  // no RX tone
	assert.Equal(t, "100.0", analog[9]) // TX tone
	assert.Equal(t, "Yes", analog[len(analog)-1])

	digital := rows[2]
	assert.Equal(t, "Digital", digital[2])
	assert.Equal(t, "1", digital[6]) // colour code
	assert.Equal(t, "1", digital[7]) // timeslot
	assert.Empty(t, digital[5])      // no bandwidth for digital
}

func TestWriteZonesPadsRows(t *testing.T) {
	t.Parallel()

	limits := Limits{MaxChannels: 10, MaxZones: 4, MaxChannelsPerZone: 4, MaxNameLength: 16}

	var buf bytes.Buffer
	require.NoError(t, WriteZones(&buf, samplePlug(), limits))

	r := csv.NewReader(&buf)
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Header plus padded rows: zone name + capacity columns.
	assert.Len(t, rows[0], 5)
	assert.Equal(t, []string{"Home", "VE7ABC~Vancouver", "VE3XYZ_Toronto", "", ""}, rows[1])
	assert.Equal(t, []string{"Travel", "VE3XYZ_Toronto", "", "", ""}, rows[2])
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "codeplug")
	require.NoError(t, WriteFiles(dir, samplePlug(), DefaultLimits()))

	for _, name := range []string{"Channels.csv", "Zones.csv"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
