// Package codeplug models the target radio's programming layout: a global
// channel table plus named zones referencing channels by index. The limits
// default to the OpenGD77 profile but other firmwares with the same CSV
// shape can override them.
package codeplug

// Limits is the capacity profile of the target codeplug format.
type Limits struct {
	MaxChannels        int
	MaxZones           int
	MaxChannelsPerZone int
	MaxNameLength      int
}

// DefaultLimits is the OpenGD77 capacity profile.
func DefaultLimits() Limits {
	return Limits{
		MaxChannels:        1024,
		MaxZones:           68,
		MaxChannelsPerZone: 80,
		MaxNameLength:      16,
	}
}

// Mode is a channel's operating mode in the target format.
type Mode string

const (
	ModeAnalog  Mode = "Analogue"
	ModeDigital Mode = "Digital"
)

// Bandwidth values representable by the target format, in kHz.
const (
	Bandwidth12_5KHz = 12.5
	Bandwidth25KHz   = 25.0
)

// DefaultBandwidthKHz is used when a record publishes no FM bandwidth.
const DefaultBandwidthKHz = Bandwidth25KHz

// Channel is one programmed frequency pair plus tone/mode parameters.
// RxToneHz/TxToneHz of zero mean no tone, the explicit default for records
// without a published CTCSS.
type Channel struct {
	Name         string
	Mode         Mode
	RxMHz        float64
	TxMHz        float64
	BandwidthKHz float64 // analog only
	RxToneHz     float64 // analog only
	TxToneHz     float64 // analog only
	ColorCode    int     // digital only
	Timeslot     int     // digital only

	Latitude    float64
	Longitude   float64
	UseLocation bool
}

// Zone is a named ordered group of channels, referencing the global channel
// table by index.
type Zone struct {
	Name     string
	Channels []int
}

// Codeplug is the full zone/channel programming image handed to the
// device-format writer.
type Codeplug struct {
	Channels []Channel
	Zones    []Zone
}

// ChannelCount returns the size of the global channel table.
func (c *Codeplug) ChannelCount() int {
	return len(c.Channels)
}

// ZoneNames returns the zone names in programmed order.
func (c *Codeplug) ZoneNames() []string {
	names := make([]string, len(c.Zones))
	for i := range c.Zones {
		names[i] = c.Zones[i].Name
	}
	return names
}
