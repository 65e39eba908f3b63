package exporter

import (
	"fmt"

	"github.com/ogdrb/ogdrb/internal/codeplug"
	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// dmrDefaultTimeslot is used when the directory does not publish one.
const dmrDefaultTimeslot = 1

// buildChannels maps one repeater record to its channel entries. The target
// format programs analog and digital as distinct channels, so a repeater
// carrying both capabilities yields two entries. Explicit defaults: no
// published CTCSS means no tone, no published FM bandwidth means 25 kHz, no
// published input frequency or offset means simplex. A record with no
// representable mode fails with an unsupported-mode error.
func (p *Pipeline) buildChannels(r *repeaterbook.Repeater) ([]codeplug.Channel, error) {
	rx := r.FrequencyMHz
	tx := r.InputMHz
	if tx == 0 {
		tx = rx + r.OffsetMHz
	}
	hasLocation := r.Location.Lat != 0 || r.Location.Lon != 0

	var built []codeplug.Channel
	if r.FMAnalog {
		bandwidth := r.FMBandwidthKHz
		if bandwidth == 0 {
			bandwidth = codeplug.DefaultBandwidthKHz
		}
		if bandwidth == codeplug.Bandwidth12_5KHz || bandwidth == codeplug.Bandwidth25KHz {
			built = append(built, codeplug.Channel{
				Name:         codeplug.ChannelName(r.Callsign, r.NearestCity, false, p.limits.MaxNameLength),
				Mode:         codeplug.ModeAnalog,
				RxMHz:        rx,
				TxMHz:        tx,
				BandwidthKHz: bandwidth,
				// The repeater's downlink tone is what the radio receives.
				RxToneHz:    r.DownlinkToneHz,
				TxToneHz:    r.UplinkToneHz,
				Latitude:    r.Location.Lat,
				Longitude:   r.Location.Lon,
				UseLocation: hasLocation,
			})
		}
	}
	if r.DMR {
		built = append(built, codeplug.Channel{
			Name:        codeplug.ChannelName(r.Callsign, r.NearestCity, true, p.limits.MaxNameLength),
			Mode:        codeplug.ModeDigital,
			RxMHz:       rx,
			TxMHz:       tx,
			ColorCode:   r.DMRColorCode,
			Timeslot:    dmrDefaultTimeslot,
			Latitude:    r.Location.Lat,
			Longitude:   r.Location.Lon,
			UseLocation: hasLocation,
		})
	}
	if len(built) == 0 {
		return nil, errors.Newf("repeater %s has no operating mode the target format can represent", r.Key()).
			Category(errors.CategoryUnsupported).
			Context("repeater", r.Key().String()).
			Component("exporter").
			Build()
	}
	return built, nil
}

// buildChannelTable builds the global channel candidates in first-appearance
// order. Records with no representable mode are skipped with one report
// entry each. The returned index maps a directory key to the positions of
// its channels in the table.
func (p *Pipeline) buildChannelTable(records []repeaterbook.Repeater, report *Report) ([]codeplug.Channel, map[repeaterbook.Key][]int) {
	var table []codeplug.Channel
	indexByKey := make(map[repeaterbook.Key][]int, len(records))

	for i := range records {
		key := records[i].Key()
		built, err := p.buildChannels(&records[i])
		if err != nil {
			p.addEntry(report, ReportEntry{
				Repeater: key,
				Reason:   ReasonUnsupportedMode,
				Detail:   "record skipped: no representable operating mode",
			})
			continue
		}
		for _, ch := range built {
			indexByKey[key] = append(indexByKey[key], len(table))
			table = append(table, ch)
		}
	}
	return table, indexByKey
}

// buildZone resolves a zone's record keys against the channel table and
// enforces the per-zone channel cap, truncating in the established order and
// reporting every dropped channel. Keys without channels (skipped records)
// are simply absent. The zone name passes the same normalization as channel
// names.
func (p *Pipeline) buildZone(name string, keys []repeaterbook.Key, indexByKey map[repeaterbook.Key][]int, report *Report) codeplug.Zone {
	zone := codeplug.Zone{Name: codeplug.NormalizeName(name, p.limits.MaxNameLength)}

	for _, key := range keys {
		for _, idx := range indexByKey[key] {
			if len(zone.Channels) >= p.limits.MaxChannelsPerZone {
				p.addEntry(report, ReportEntry{
					Zone:     name,
					Repeater: key,
					Reason:   ReasonZoneCapacity,
					Detail:   fmt.Sprintf("channel dropped: zone exceeds %d channels", p.limits.MaxChannelsPerZone),
				})
				continue
			}
			zone.Channels = append(zone.Channels, idx)
		}
	}
	return zone
}

// assemble combines the channel table and zones into the final codeplug.
// Channels no zone references (their zones got truncated) are eliminated,
// the table is capped at the global channel limit with references to dropped
// channels removed and reported, indices are rewritten against the compacted
// table, and duplicate display names are uniquified with numeric suffixes.
// Global table order stays first-appearance order; zone order stays request
// order.
func (p *Pipeline) assemble(table []codeplug.Channel, zones []codeplug.Zone, report *Report) *codeplug.Codeplug {
	referenced := make([]bool, len(table))
	for _, z := range zones {
		for _, idx := range z.Channels {
			referenced[idx] = true
		}
	}

	// Compact in order, dropping unreferenced entries and everything past
	// the global cap.
	newIndex := make([]int, len(table))
	compacted := make([]codeplug.Channel, 0, len(table))
	for i := range table {
		newIndex[i] = -1
		if !referenced[i] {
			continue
		}
		if len(compacted) >= p.limits.MaxChannels {
			p.addEntry(report, ReportEntry{
				Channel: table[i].Name,
				Reason:  ReasonChannelCapacity,
				Detail:  fmt.Sprintf("channel dropped: codeplug exceeds %d channels", p.limits.MaxChannels),
			})
			continue
		}
		newIndex[i] = len(compacted)
		compacted = append(compacted, table[i])
	}

	allNames := make([]string, len(compacted))
	for i := range compacted {
		allNames[i] = compacted[i].Name
	}
	names := codeplug.NewNameSet(allNames, p.limits.MaxNameLength)
	for i := range compacted {
		compacted[i].Name = names.Resolve(compacted[i].Name)
	}

	rebuilt := make([]codeplug.Zone, 0, len(zones))
	for _, z := range zones {
		channels := make([]int, 0, len(z.Channels))
		for _, idx := range z.Channels {
			if newIndex[idx] >= 0 {
				channels = append(channels, newIndex[idx])
			}
		}
		rebuilt = append(rebuilt, codeplug.Zone{Name: z.Name, Channels: channels})
	}

	return &codeplug.Codeplug{Channels: compacted, Zones: rebuilt}
}
