// Command genrun writes a synthetic full-domain run directory: a fort.15
// with a regular lattice of recording stations over a flag-given extent,
// plus circle and ellipse shape files sized to its middle. The output seeds
// local pipelines, demos, and manual runctl sessions.
//
// Usage:
//
//	go run ./cmd/genrun -out data/runs/full
//	go run ./cmd/genrun -out data/runs/gulf -minx 262 -miny 26 -maxx 268 -maxy 31 -nx 4 -ny 3
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
	"github.com/couchcryptid/storm-surge-prep/internal/fort15"
	"github.com/couchcryptid/storm-surge-prep/internal/geometry"
	"github.com/maseology/mmio"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output run directory")
	minx := flag.Float64("minx", 263.0, "western edge of the mesh extent")
	miny := flag.Float64("miny", 27.0, "southern edge of the mesh extent")
	maxx := flag.Float64("maxx", 267.0, "eastern edge of the mesh extent")
	maxy := flag.Float64("maxy", 31.0, "northern edge of the mesh extent")
	nx := flag.Int("nx", 3, "station lattice columns")
	ny := flag.Int("ny", 3, "station lattice rows")
	nodes := flag.Int("nodes", 0, "mesh node count recorded for full-field channels")
	days := flag.Float64("days", 10.0, "run length in days")
	step := flag.Float64("step", 10.0, "model time step in seconds")
	spool := flag.Int("spool", 300, "station output interval in time steps")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *maxx <= *minx || *maxy <= *miny {
		return fmt.Errorf("extent is empty: (%g,%g)-(%g,%g)", *minx, *miny, *maxx, *maxy)
	}

	mesh := domain.GridInfo{
		Nodes: *nodes,
		Box:   domain.Extent{MinX: *minx, MinY: *miny, MaxX: *maxx, MaxY: *maxy},
	}
	stations := domain.Lattice(mesh, *nx, *ny)
	if len(stations) == 0 {
		return fmt.Errorf("empty station lattice: nx=%d ny=%d", *nx, *ny)
	}

	mmio.MakeDir(*out)

	runControl := renderRunControl(*days, *step, *spool, stations)
	rcPath := filepath.Join(*out, fort15.FileName)
	if err := os.WriteFile(rcPath, []byte(runControl), 0o600); err != nil {
		return fmt.Errorf("writing run control: %w", err)
	}
	log.Printf("wrote %s: %d stations per channel", rcPath, len(stations))

	if err := writeShapes(*out, mesh.Box); err != nil {
		return err
	}

	// Scan the fresh directory back so a broken render fails here, not in a
	// downstream pipeline.
	doc, err := fort15.Scan(*out, mesh)
	if err != nil {
		return fmt.Errorf("verifying run control: %w", err)
	}
	for _, ch := range domain.Channels() {
		rec, ok := doc.Recording[ch]
		if !ok {
			continue
		}
		log.Printf("%s: %d stations, %d observations, %d columns",
			string(ch), rec.Stations, rec.Observations, rec.Columns)
	}
	return nil
}

// renderRunControl lays out a minimal but complete run-control file: comment
// keywords at a fixed column, one elevation, velocity, and meteorological
// station block sharing the same lattice, and global output lines so field
// channels appear in scans.
func renderRunControl(days, step float64, spool int, stations []domain.Location) string {
	var b strings.Builder

	b.WriteString(line("synthetic storm surge run", "RUNDES - RUN DESCRIPTION"))
	b.WriteString(line("genrun fixture", "RUNID - RUN IDENTIFICATION"))
	b.WriteString(line(" 0", "IHOT - HOT START PARAMETER"))
	b.WriteString(line(fmt.Sprintf(" %.1f", step), "DT - TIME STEP (IN SECONDS)"))
	b.WriteString(line(" 0.0", "STATIM - STARTING TIME (IN DAYS)"))
	b.WriteString(line(fmt.Sprintf(" %.1f", days), "RNDAY - TOTAL LENGTH OF SIMULATION (IN DAYS)"))
	b.WriteString(line(" 2.0", "DRAMP - DURATION OF RAMP FUNCTION (IN DAYS)"))
	b.WriteString(line(" 0.05", "H0 - MINIMUM WETTING DEPTH"))
	b.WriteString(line(" 0", "NBFR - NUMBER OF PERIODIC FORCING FREQUENCIES"))
	b.WriteString(line(" 110.0", "ANGINN - INNER ANGLE THRESHOLD"))

	writeStationBlock(&b,
		fmt.Sprintf(" 1 0.0 %.1f %d", days, spool),
		"NOUTE,TOUTSE,TOUTFE,NSPOOLE - ELEVATION STATION OUTPUT (UNIT  61)",
		"NSTAE - TOTAL NUMBER OF ELEVATION RECORDING STATIONS",
		stations)
	writeStationBlock(&b,
		fmt.Sprintf(" 1 0.0 %.1f %d", days, spool),
		"NOUTV,TOUTSV,TOUTFV,NSPOOLV - VELOCITY STATION OUTPUT (UNIT  62)",
		"NSTAV - TOTAL NUMBER OF VELOCITY RECORDING STATIONS",
		stations)
	writeStationBlock(&b,
		fmt.Sprintf(" 1 0.0 %.1f %d", days, 2*spool),
		"NOUTM,TOUTSM,TOUTFM,NSPOOLM - METEOROLOGICAL STATION OUTPUT (UNIT  71/72)",
		"NSTAM - TOTAL NUMBER OF METEOROLOGICAL RECORDING STATIONS",
		stations)

	b.WriteString(line(fmt.Sprintf(" 1 0.0 %.1f %d", days, 6*spool),
		"NOUTGE,TOUTSGE,TOUTFGE,NSPOOLGE - GLOBAL ELEVATION OUTPUT (UNIT  63)"))
	b.WriteString(line(fmt.Sprintf(" 1 0.0 %.1f %d", days, 6*spool),
		"NOUTGV,TOUTSGV,TOUTFGV,NSPOOLGV - GLOBAL VELOCITY OUTPUT (UNIT  64)"))
	b.WriteString(line(fmt.Sprintf(" 1 0.0 %.1f %d", days, 6*spool),
		"NOUTGW,TOUTSGW,TOUTFGW,NSPOOLGW - GLOBAL METEOROLOGICAL OUTPUT (UNIT  73/74)"))
	b.WriteString(line(" 0 2880", "NHSTAR,NHSINC - HOT START OUTPUT"))

	return b.String()
}

func writeStationBlock(b *strings.Builder, spec, specComment, countComment string, stations []domain.Location) {
	b.WriteString(line(spec, specComment))
	b.WriteString(line(fmt.Sprintf(" %d", len(stations)), countComment))
	for _, s := range stations {
		fmt.Fprintf(b, " %.5f %.5f\n", s.X, s.Y)
	}
}

// line pads the value field so every comment starts at the same column.
func line(value, comment string) string {
	return fmt.Sprintf("%-37s! %s\n", value, comment)
}

// writeShapes drops a circle and an ellipse around the extent's center, each
// comfortably inside the lattice so derived subdomains keep interior
// stations and drop edge ones.
func writeShapes(dir string, box domain.Extent) error {
	c := box.Center()
	w := box.MaxX - box.MinX
	h := box.MaxY - box.MinY

	r := w / 4
	if h < w {
		r = h / 4
	}
	circle := []string{
		fmt.Sprintf("%g %g", c.X, c.Y),
		fmt.Sprintf("%g", r),
	}
	if err := mmio.WriteStrings(filepath.Join(dir, geometry.CircleFile), circle); err != nil {
		return fmt.Errorf("writing circle shape: %w", err)
	}

	ellipse := []string{
		fmt.Sprintf("%g %g", c.X-w/4, c.Y),
		fmt.Sprintf("%g %g", c.X+w/4, c.Y),
		fmt.Sprintf("%g", h/4),
	}
	if err := mmio.WriteStrings(filepath.Join(dir, geometry.EllipseFile), ellipse); err != nil {
		return fmt.Errorf("writing ellipse shape: %w", err)
	}

	log.Printf("wrote %s and %s", geometry.CircleFile, geometry.EllipseFile)
	return nil
}
