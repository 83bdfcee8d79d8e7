package domain

import "time"

// Recording describes the result-array shape one output channel will need:
// rows (stations or mesh nodes), recorded time steps, and columns per sample.
type Recording struct {
	Stations     int `json:"stations"`
	Observations int `json:"observations"`
	Columns      int `json:"columns"`
}

// Document is everything a scan extracts from one run-control file. Station
// lists exist only for per-station channels; paired channels (fort.71 and
// fort.72) share one backing slice under both keys, so a caller mutating one
// list mutates the other.
type Document struct {
	Timing   Timing
	HotStart int     // IHOT, nonzero when the run resumes from a checkpoint
	MinDepth float64 // H0, minimum wetting depth

	Recording map[Channel]Recording
	Stations  map[Channel][]Location

	ScannedAt time.Time
}

// NewDocument returns an empty Document stamped with the scan time.
func NewDocument() *Document {
	return &Document{
		Recording: make(map[Channel]Recording),
		Stations:  make(map[Channel][]Location),
		ScannedAt: clock.Now(),
	}
}
