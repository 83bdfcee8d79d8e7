// Package domain models ADCIRC run-control (fort.15) data.
//
// # File Conventions
//
// A fort.15 file drives one coastal-circulation run. It is a fixed-order,
// line-oriented text format: each line carries whitespace-separated values
// followed by an optional comment introduced by "!". The parameter keywords
// (DT, RNDAY, NBFR, ...) conventionally appear inside those comments, e.g.
//
//	 10.0      ! DT - TIME STEP (IN SECONDS)
//	 9.950     ! RNDAY - TOTAL LENGTH OF SIMULATION (IN DAYS)
//
// Readers locate parameters by searching whole lines for keyword substrings
// rather than by line position, which tolerates the format drift between
// model versions. Everything before the first "!" is the value text;
// everything after it, trailing newline included, is preserved verbatim when
// a line is rewritten.
//
// # Time Parameters
//
//	DT      model time step in seconds
//	STATIM  simulation start time in days
//	RNDAY   total run length in days
//	DRAMP   forcing ramp durations in days (one or more values)
//
// These four, captured in [Timing], are prerequisites for interpreting any
// output block: observation counts depend on all of them.
//
// # Output Channels
//
// The model writes results to conventionally numbered files ("fort.61",
// "maxele.63", ...). Each [Channel] is either recorded at explicit stations
// listed in the run-control file or at every node of the computational mesh,
// and each sample is a scalar (1 column) or a vector (2 columns). The
// registry in channel.go fixes both properties per channel.
//
// An output block in the file is a specification line
//
//	NOUT TOUTS TOUTF NSPOOL
//
// (enable flag, window start and finish in days, spool interval in time
// steps), followed for station channels by a station count line and one
// coordinate line per station. Meteorological station output is a paired
// block: one station list shared by pressure (fort.71) and wind (fort.72).
//
// # Subdomain Preparation
//
// Nested runs re-use a full-domain fort.15 inside a smaller grid. The
// rewriter in the fort15 package shrinks RNDAY by 0.5%, zeroes the periodic
// boundary forcing, and drops recording stations that fall outside the
// subdomain geometry, which is described by a small shape file (shape.c14
// for circles, shape.e14 for ellipses) kept next to the subdomain's
// run-control file.
package domain
