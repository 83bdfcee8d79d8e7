package domain

// Channel identifies one model output file by its conventional name with the
// dot removed, e.g. fort.61 -> "fort61". These keys appear on the wire in
// prep results, so their spelling is load-bearing.
type Channel string

const (
	ElevStations  Channel = "fort61" // water surface elevation at recording stations
	VelStations   Channel = "fort62" // depth-averaged velocity at recording stations
	ElevField     Channel = "fort63" // water surface elevation at every mesh node
	VelField      Channel = "fort64" // depth-averaged velocity at every mesh node
	PressStations Channel = "fort71" // atmospheric pressure at recording stations
	WindStations  Channel = "fort72" // wind stress at recording stations
	PressField    Channel = "fort73" // atmospheric pressure at every mesh node
	WindField     Channel = "fort74" // wind stress at every mesh node

	// Summary fields written once per run rather than per output interval.
	InundationTime Channel = "tinun63"
	MaxElev        Channel = "maxele63"
	MaxVel         Channel = "maxvel63"
	NodeFlags      Channel = "nodeflag63"
	RisingWater    Channel = "rising63"
	DryElements    Channel = "elemaxdry63"
)

// ChannelSpec fixes the two structural properties of an output channel that
// downstream consumers need to preallocate result arrays.
type ChannelSpec struct {
	PerStation bool // recorded at listed stations rather than every mesh node
	Columns    int  // values per sample: 1 scalar, 2 vector components
}

var channelSpecs = map[Channel]ChannelSpec{
	ElevStations:   {PerStation: true, Columns: 1},
	VelStations:    {PerStation: true, Columns: 2},
	ElevField:      {PerStation: false, Columns: 1},
	VelField:       {PerStation: false, Columns: 2},
	PressStations:  {PerStation: true, Columns: 1},
	WindStations:   {PerStation: true, Columns: 2},
	PressField:     {PerStation: false, Columns: 1},
	WindField:      {PerStation: false, Columns: 2},
	InundationTime: {PerStation: false, Columns: 1},
	MaxElev:        {PerStation: false, Columns: 1},
	MaxVel:         {PerStation: false, Columns: 1},
	NodeFlags:      {PerStation: false, Columns: 1},
	RisingWater:    {PerStation: false, Columns: 1},
	DryElements:    {PerStation: false, Columns: 1},
}

// Spec returns the registry entry for c. The second return reports whether
// the channel is known; unknown channels have no defaults.
func (c Channel) Spec() (ChannelSpec, bool) {
	s, ok := channelSpecs[c]
	return s, ok
}

// Channels lists every registered channel in a fixed, wire-stable order.
func Channels() []Channel {
	return []Channel{
		ElevStations, VelStations, ElevField, VelField,
		PressStations, WindStations, PressField, WindField,
		InundationTime, MaxElev, MaxVel, NodeFlags, RisingWater, DryElements,
	}
}
