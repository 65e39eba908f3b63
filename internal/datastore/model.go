package datastore

import (
	"time"

	"github.com/ogdrb/ogdrb/internal/geo"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// Repeater is the database row for one directory record. The unique index
// over (country, state_id, repeater_id) is the directory identity; populate
// runs upsert against it so re-downloads refresh rather than duplicate.
type Repeater struct {
	ID        uint      `gorm:"primarykey"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Country    string `gorm:"size:64;uniqueIndex:idx_directory_key,priority:1"`
	StateID    string `gorm:"size:16;uniqueIndex:idx_directory_key,priority:2"`
	RepeaterID int    `gorm:"uniqueIndex:idx_directory_key,priority:3"`

	Callsign    string `gorm:"size:16"`
	NearestCity string `gorm:"size:128"`
	County      string `gorm:"size:128"`
	Landmark    string `gorm:"size:128"`

	Latitude  float64 `gorm:"index"`
	Longitude float64 `gorm:"index"`

	FrequencyMHz float64
	InputMHz     float64
	OffsetMHz    float64

	UplinkToneHz   float64
	DownlinkToneHz float64

	FMAnalog       bool
	FMBandwidthKHz float64
	DMR            bool
	DMRColorCode   int

	OperationalStatus string `gorm:"size:32"`
	UseMembership     string `gorm:"size:32"`

	LastUpdated time.Time
}

func fromRecord(r *repeaterbook.Repeater) Repeater {
	return Repeater{
		Country:           r.Country,
		StateID:           r.StateID,
		RepeaterID:        r.RepeaterID,
		Callsign:          r.Callsign,
		NearestCity:       r.NearestCity,
		County:            r.County,
		Landmark:          r.Landmark,
		Latitude:          r.Location.Lat,
		Longitude:         r.Location.Lon,
		FrequencyMHz:      r.FrequencyMHz,
		InputMHz:          r.InputMHz,
		OffsetMHz:         r.OffsetMHz,
		UplinkToneHz:      r.UplinkToneHz,
		DownlinkToneHz:    r.DownlinkToneHz,
		FMAnalog:          r.FMAnalog,
		FMBandwidthKHz:    r.FMBandwidthKHz,
		DMR:               r.DMR,
		DMRColorCode:      r.DMRColorCode,
		OperationalStatus: r.OperationalStatus,
		UseMembership:     r.UseMembership,
		LastUpdated:       r.LastUpdated,
	}
}

func (m *Repeater) record() repeaterbook.Repeater {
	return repeaterbook.Repeater{
		Country:           m.Country,
		StateID:           m.StateID,
		RepeaterID:        m.RepeaterID,
		Callsign:          m.Callsign,
		NearestCity:       m.NearestCity,
		County:            m.County,
		Landmark:          m.Landmark,
		Location:          geo.Coordinate{Lat: m.Latitude, Lon: m.Longitude},
		FrequencyMHz:      m.FrequencyMHz,
		InputMHz:          m.InputMHz,
		OffsetMHz:         m.OffsetMHz,
		UplinkToneHz:      m.UplinkToneHz,
		DownlinkToneHz:    m.DownlinkToneHz,
		FMAnalog:          m.FMAnalog,
		FMBandwidthKHz:    m.FMBandwidthKHz,
		DMR:               m.DMR,
		DMRColorCode:      m.DMRColorCode,
		OperationalStatus: m.OperationalStatus,
		UseMembership:     m.UseMembership,
		LastUpdated:       m.LastUpdated,
	}
}
