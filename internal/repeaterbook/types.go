package repeaterbook

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/ogdrb/ogdrb/internal/geo"
)

// Operational status and membership values the directory exposes.
const (
	StatusOnAir   = "On-air"
	StatusOffAir  = "Off-air"
	StatusUnknown = "Unknown"

	UseOpen    = "OPEN"
	UsePrivate = "PRIVATE"
	UseClosed  = "CLOSED"
)

// Key is the stable directory identity of a repeater. Two records with the
// same key describe the same physical repeater regardless of where they were
// retrieved from.
type Key struct {
	Country    string
	StateID    string
	RepeaterID int
}

// String renders the key for logs and reports.
func (k Key) String() string {
	if k.StateID == "" {
		return k.Country + "/" + strconv.Itoa(k.RepeaterID)
	}
	return k.Country + "/" + k.StateID + "/" + strconv.Itoa(k.RepeaterID)
}

// Repeater is one directory entry, treated as read-only input everywhere
// downstream of the client.
type Repeater struct {
	Country     string
	StateID     string
	RepeaterID  int
	Callsign    string
	NearestCity string
	County      string
	Landmark    string

	Location geo.Coordinate

	// Frequencies in MHz. InputMHz may be zero when the directory only
	// publishes an offset.
	FrequencyMHz float64
	InputMHz     float64
	OffsetMHz    float64 // signed; zero when unpublished

	// CTCSS tones in Hz; zero means no tone published.
	UplinkToneHz   float64
	DownlinkToneHz float64

	FMAnalog       bool
	FMBandwidthKHz float64 // 12.5 or 25; zero when unpublished
	DMR            bool
	DMRColorCode   int

	OperationalStatus string
	UseMembership     string

	LastUpdated time.Time
}

// Key returns the repeater's stable directory identity.
func (r *Repeater) Key() Key {
	return Key{Country: r.Country, StateID: r.StateID, RepeaterID: r.RepeaterID}
}

// exportResponse is the envelope of the directory's export endpoint.
type exportResponse struct {
	Count   int            `json:"count"`
	Results []exportRecord `json:"results"`
}

// exportRecord mirrors the export endpoint's wire format, which encodes
// numbers and booleans as strings.
type exportRecord struct {
	StateID      string      `json:"State ID"`
	RepeaterID   json.Number `json:"Rptr ID"`
	Frequency    string      `json:"Frequency"`
	InputFreq    string      `json:"Input Freq"`
	PL           string      `json:"PL"`
	TSQ          string      `json:"TSQ"`
	NearestCity  string      `json:"Nearest City"`
	Landmark     string      `json:"Landmark"`
	County       string      `json:"County"`
	Country      string      `json:"Country"`
	Lat          string      `json:"Lat"`
	Long         string      `json:"Long"`
	Callsign     string      `json:"Callsign"`
	Use          string      `json:"Use"`
	OpStatus     string      `json:"Operational Status"`
	FMAnalog     string      `json:"FM Analog"`
	FMBandwidth  string      `json:"FM Bandwidth"`
	DMR          string      `json:"DMR"`
	DMRColorCode string      `json:"DMR Color Code"`
	LastUpdate   string      `json:"Last Update"`
}

// repeater converts a wire record into the typed model. Unparseable optional
// fields degrade to their zero value; only identity and location are
// load-bearing.
func (er *exportRecord) repeater() (Repeater, bool) {
	id, err := er.RepeaterID.Int64()
	if err != nil || id <= 0 {
		return Repeater{}, false
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(er.Lat), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(er.Long), 64)
	if latErr != nil || lonErr != nil {
		return Repeater{}, false
	}

	r := Repeater{
		Country:           strings.TrimSpace(er.Country),
		StateID:           strings.TrimSpace(er.StateID),
		RepeaterID:        int(id),
		Callsign:          strings.TrimSpace(er.Callsign),
		NearestCity:       strings.TrimSpace(er.NearestCity),
		County:            strings.TrimSpace(er.County),
		Landmark:          strings.TrimSpace(er.Landmark),
		Location:          geo.Coordinate{Lat: lat, Lon: lon},
		FrequencyMHz:      parseFloat(er.Frequency),
		InputMHz:          parseFloat(er.InputFreq),
		UplinkToneHz:      parseTone(er.PL),
		DownlinkToneHz:    parseTone(er.TSQ),
		FMAnalog:          parseYes(er.FMAnalog),
		FMBandwidthKHz:    parseBandwidth(er.FMBandwidth),
		DMR:               parseYes(er.DMR),
		DMRColorCode:      int(parseFloat(er.DMRColorCode)),
		OperationalStatus: strings.TrimSpace(er.OpStatus),
		UseMembership:     strings.ToUpper(strings.TrimSpace(er.Use)),
	}

	if r.FrequencyMHz != 0 && r.InputMHz != 0 {
		r.OffsetMHz = r.InputMHz - r.FrequencyMHz
	}

	if ts, err := time.Parse("2006-01-02", strings.TrimSpace(er.LastUpdate)); err == nil {
		r.LastUpdated = ts
	}

	return r, true
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseTone handles the directory's tone column, which mixes CTCSS
// frequencies with markers like "CSQ" (carrier squelch, no tone).
func parseTone(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "CSQ") {
		return 0
	}
	return parseFloat(s)
}

func parseYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "Yes")
}

// parseBandwidth accepts "12.5", "25", "12.5 kHz" and similar.
func parseBandwidth(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "kHz"))
	return parseFloat(s)
}
