package codeplug

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ogdrb/ogdrb/internal/errors"
)

// The CPS import format is a pair of semicolon-separated CSV files.
const csvSeparator = ';'

var channelsHeader = []string{
	"Channel Number", "Channel Name", "Channel Type",
	"Rx Frequency", "Tx Frequency", "Bandwidth (kHz)",
	"Colour Code", "Timeslot",
	"RX Tone", "TX Tone",
	"Power", "Rx Only", "Zone Skip", "All Skip",
	"Latitude", "Longitude", "Use Location",
}

// WriteChannels writes the global channel table in the CPS import format.
func WriteChannels(w io.Writer, plug *Codeplug) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvSeparator

	if err := cw.Write(channelsHeader); err != nil {
		return writeError(err, "channels header")
	}

	for i := range plug.Channels {
		ch := &plug.Channels[i]
		row := []string{
			strconv.Itoa(i + 1),
			ch.Name,
			string(ch.Mode),
			formatMHz(ch.RxMHz),
			formatMHz(ch.TxMHz),
			formatBandwidth(ch),
			formatColorCode(ch),
			formatTimeslot(ch),
			formatTone(ch.RxToneHz),
			formatTone(ch.TxToneHz),
			"Master", "No", "No", "No",
			formatCoord(ch.Latitude),
			formatCoord(ch.Longitude),
			yesNo(ch.UseLocation),
		}
		if err := cw.Write(row); err != nil {
			return writeError(err, "channel row")
		}
	}

	cw.Flush()
	return writeError(cw.Error(), "channels flush")
}

// WriteZones writes the zone table. Every row is padded to the zone
// capacity so the CPS reads a rectangular file.
func WriteZones(w io.Writer, plug *Codeplug, limits Limits) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvSeparator

	header := make([]string, 0, limits.MaxChannelsPerZone+1)
	header = append(header, "Zone Name")
	for i := 1; i <= limits.MaxChannelsPerZone; i++ {
		header = append(header, fmt.Sprintf("Channel%d", i))
	}
	if err := cw.Write(header); err != nil {
		return writeError(err, "zones header")
	}

	for zi := range plug.Zones {
		zone := &plug.Zones[zi]
		row := make([]string, 0, limits.MaxChannelsPerZone+1)
		row = append(row, zone.Name)
		for _, channelIndex := range zone.Channels {
			row = append(row, plug.Channels[channelIndex].Name)
		}
		for len(row) < limits.MaxChannelsPerZone+1 {
			row = append(row, "")
		}
		if err := cw.Write(row); err != nil {
			return writeError(err, "zone row")
		}
	}

	cw.Flush()
	return writeError(cw.Error(), "zones flush")
}

// WriteFiles writes Channels.csv and Zones.csv into dir, creating it if
// needed.
func WriteFiles(dir string, plug *Codeplug, limits Limits) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Newf("failed to create output directory: %w", err).
			Category(errors.CategoryFileIO).
			Component("codeplug").
			Build()
	}

	if err := writeFile(filepath.Join(dir, "Channels.csv"), func(w io.Writer) error {
		return WriteChannels(w, plug)
	}); err != nil {
		return err
	}

	return writeFile(filepath.Join(dir, "Zones.csv"), func(w io.Writer) error {
		return WriteZones(w, plug, limits)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Newf("failed to create %s: %w", path, err).
			Category(errors.CategoryFileIO).
			Component("codeplug").
			Build()
	}
	defer func() {
		_ = f.Close()
	}()

	if err := write(f); err != nil {
		return err
	}
	return f.Sync()
}

func writeError(err error, what string) error {
	if err == nil {
		return nil
	}
	return errors.Newf("failed to write %s: %w", what, err).
		Category(errors.CategoryFileIO).
		Component("codeplug").
		Build()
}

func formatMHz(mhz float64) string {
	return strconv.FormatFloat(mhz, 'f', 5, 64)
}

func formatCoord(deg float64) string {
	return strconv.FormatFloat(deg, 'f', 5, 64)
}

func formatTone(hz float64) string {
	if hz == 0 {
		return "None"
	}
	return strconv.FormatFloat(hz, 'f', 1, 64)
}

func formatBandwidth(ch *Channel) string {
	if ch.Mode != ModeAnalog {
		return ""
	}
	return strconv.FormatFloat(ch.BandwidthKHz, 'f', -1, 64)
}

func formatColorCode(ch *Channel) string {
	if ch.Mode != ModeDigital {
		return ""
	}
	return strconv.Itoa(ch.ColorCode)
}

func formatTimeslot(ch *Channel) string {
	if ch.Mode != ModeDigital {
		return ""
	}
	return strconv.Itoa(ch.Timeslot)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
