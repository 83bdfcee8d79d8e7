package domain

import "math"

// Timing carries the four run-control time parameters. All output-window
// arithmetic goes through it.
type Timing struct {
	Step     float64   // DT, seconds per model time step
	Start    float64   // STATIM, simulation start in days
	Duration float64   // RNDAY, total run length in days
	Ramp     []float64 // DRAMP, forcing ramp durations in days
}

// Observations returns how many samples an output set will record given its
// specification line: nout is the enable flag, start and finish bound the
// output window in days, and spool is the write interval in time steps.
//
// The window is clamped to the simulated interval [Start, Start+Duration]
// before counting, and the count truncates toward zero. A disabled set
// (nout or spool zero), a zero time step, or a window that closes before it
// opens all record nothing.
func (t Timing) Observations(nout, start, finish, spool float64) int {
	if nout == 0 || spool == 0 || t.Step == 0 {
		return 0
	}
	s := math.Max(start, t.Start)
	f := math.Min(finish, t.Start+t.Duration)
	n := int((f - s) * 24 * 60 * 60 / t.Step / spool)
	if n < 0 {
		return 0
	}
	return n
}
