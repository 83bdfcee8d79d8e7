package fort15

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
	"github.com/couchcryptid/storm-surge-prep/internal/geometry"
)

// Subdomain derives a nested run's control file from its parent's. The
// parent fort.15 in fullDir is streamed to subDir with the run shortened by
// half a percent, tidal and periodic-flow forcing removed, and recording
// stations outside subDir's shape file dropped from every station list.
// The returned document holds the surviving stations and their updated
// descriptors. On error the partially written file is left for the caller
// to discard along with the rest of the run directory.
func Subdomain(kind geometry.Kind, fullDir, subDir string) (*domain.Document, error) {
	shape, err := geometry.Load(kind, subDir)
	if err != nil {
		return nil, err
	}
	srcPath := filepath.Join(fullDir, FileName)
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open run control: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(subDir, FileName))
	if err != nil {
		return nil, fmt.Errorf("create run control: %w", err)
	}
	doc, err := rewrite(src, srcPath, dst, shape)
	if cerr := dst.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close run control: %w", cerr)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// rewrite runs the line dispatch over src, emitting the derived file to
// dst. Write errors are sticky in the buffered writer and surface at the
// final flush.
func rewrite(src io.Reader, srcPath string, dst io.Writer, shape geometry.Shape) (*domain.Document, error) {
	lr := newLineReader(src, srcPath)
	rw := &rewriter{
		lr:    lr,
		dec:   &decoder{lr: lr},
		w:     bufio.NewWriter(dst),
		shape: shape,
		doc:   domain.NewDocument(),
	}
	if err := rw.run(); err != nil {
		return nil, err
	}
	if err := rw.w.Flush(); err != nil {
		return nil, fmt.Errorf("write run control: %w", err)
	}
	return rw.doc, nil
}

type rewriter struct {
	lr    *lineReader
	dec   *decoder
	w     *bufio.Writer
	shape geometry.Shape
	doc   *domain.Document

	dt, statim, rnday             float64
	haveDT, haveStatim, haveRnday bool
	haveTiming                    bool
}

// run copies lines verbatim except at the intercepted keywords. Timing
// lines feed the rewriter's own state so station blocks further down can
// compute their observation windows; the duration recorded is the already
// shortened one.
func (rw *rewriter) run() error {
	for {
		line, ok, err := rw.lr.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		value, comment := splitValue(line)
		switch {
		case strings.Contains(line, "DT"):
			rw.write(line)
			if rw.dt, err = parseFloat(value); err != nil {
				return &ParseError{Path: rw.lr.path, Line: rw.lr.n, What: "DT", Err: err}
			}
			rw.haveDT = true
		case strings.Contains(line, "STATIM"):
			rw.write(line)
			if rw.statim, err = parseFloat(value); err != nil {
				return &ParseError{Path: rw.lr.path, Line: rw.lr.n, What: "STATIM", Err: err}
			}
			rw.haveStatim = true
		case strings.Contains(line, "RNDAY"):
			v, err := parseFloat(value)
			if err != nil {
				return &ParseError{Path: rw.lr.path, Line: rw.lr.n, What: "RNDAY", Err: err}
			}
			// Half a percent off the parent run keeps the nested run
			// inside the forcing data it inherits.
			rw.rnday = v * 0.995
			rw.haveRnday = true
			rw.writef(" %-6.3f %30s%s", rw.rnday, "!", ensureNewline(comment))
		case strings.Contains(line, "DRAMP"):
			rw.write(line)
			ramp, err := parseFloats(value)
			if err != nil {
				return &ParseError{Path: rw.lr.path, Line: rw.lr.n, What: "DRAMP", Err: err}
			}
			if !rw.haveDT || !rw.haveStatim || !rw.haveRnday {
				return fmt.Errorf("%s:%d: DRAMP before DT, STATIM, and RNDAY: %w", rw.lr.path, rw.lr.n, ErrMissingTiming)
			}
			rw.doc.Timing = domain.Timing{Step: rw.dt, Start: rw.statim, Duration: rw.rnday, Ramp: ramp}
			rw.haveTiming = true
		case strings.Contains(line, "NBFR"):
			if err := rw.dropTidalForcing(comment); err != nil {
				return err
			}
		case strings.Contains(line, "NFFR"):
			if err := rw.dropFlowForcing(line); err != nil {
				return err
			}
		case strings.Contains(line, "NOUTE"):
			if err := rw.trimBlock(line, domain.ElevStations); err != nil {
				return err
			}
		case strings.Contains(line, markVelStations):
			if err := rw.trimBlock(line, domain.VelStations); err != nil {
				return err
			}
		case strings.Contains(line, "NOUTC"):
			// Concentration output carries no station list.
			rw.write(line)
		case strings.Contains(line, markMetStations):
			if err := rw.trimBlockPair(line, domain.PressStations, domain.WindStations); err != nil {
				return err
			}
		default:
			rw.write(line)
		}
	}
}

// dropTidalForcing zeroes the tidal constituent count and discards the
// forcing block, keeping only its closing ANGINN line.
func (rw *rewriter) dropTidalForcing(comment string) error {
	rw.writef(" %-35d %s%s", 0, "!", ensureNewline(comment))
	for {
		line, ok, err := rw.lr.next()
		if err != nil {
			return err
		}
		if !ok {
			return &ParseError{
				Path: rw.lr.path, Line: rw.lr.n,
				What: "tidal forcing block not closed by an ANGINN line",
				Err:  io.ErrUnexpectedEOF,
			}
		}
		if strings.Contains(line, "ANGINN") {
			rw.write(line)
			return nil
		}
	}
}

// dropFlowForcing discards the periodic normal-flow forcing block. The
// block has no closing marker of its own; the elevation-station line that
// follows it both ends the skip and is handled as a station block.
func (rw *rewriter) dropFlowForcing(line string) error {
	for !strings.Contains(line, "NOUTE") {
		var ok bool
		var err error
		line, ok, err = rw.lr.next()
		if err != nil {
			return err
		}
		if !ok {
			return &ParseError{
				Path: rw.lr.path, Line: rw.lr.n,
				What: "flow forcing block not followed by a NOUTE line",
				Err:  io.ErrUnexpectedEOF,
			}
		}
	}
	return rw.trimBlock(line, domain.ElevStations)
}

// trimBlock copies a station-output marker line, trims its station list to
// the sub-domain shape, and re-emits the block with the surviving count.
func (rw *rewriter) trimBlock(line string, ch domain.Channel) error {
	if err := requireTiming(rw.haveTiming, rw.lr.path, rw.lr.n); err != nil {
		return err
	}
	rw.write(line)
	value, _ := splitValue(line)
	spec, err := rw.dec.parseSpec(value)
	if err != nil {
		return err
	}
	obs := rw.doc.Timing.Observations(spec.nout, spec.touts, spec.toutf, spec.nspool)
	stations, desc, err := rw.dec.stationBlock()
	if err != nil {
		return err
	}
	kept := geometry.Trim(rw.shape, stations)
	chSpec, _ := ch.Spec()
	rw.doc.Stations[ch] = kept
	rw.doc.Recording[ch] = domain.Recording{Stations: len(kept), Observations: obs, Columns: chSpec.Columns}
	rw.writeStations(desc, kept)
	return nil
}

// trimBlockPair is trimBlock for the paired met channels: one block read,
// one block written, the surviving stations shared under both keys.
func (rw *rewriter) trimBlockPair(line string, ch1, ch2 domain.Channel) error {
	if err := requireTiming(rw.haveTiming, rw.lr.path, rw.lr.n); err != nil {
		return err
	}
	rw.write(line)
	value, _ := splitValue(line)
	spec, err := rw.dec.parseSpec(value)
	if err != nil {
		return err
	}
	obs := rw.doc.Timing.Observations(spec.nout, spec.touts, spec.toutf, spec.nspool)
	stations, desc, err := rw.dec.stationBlock()
	if err != nil {
		return err
	}
	kept := geometry.Trim(rw.shape, stations)
	spec1, _ := ch1.Spec()
	spec2, _ := ch2.Spec()
	rw.doc.Stations[ch1] = kept
	rw.doc.Stations[ch2] = kept
	rw.doc.Recording[ch1] = domain.Recording{Stations: len(kept), Observations: obs, Columns: spec1.Columns}
	rw.doc.Recording[ch2] = domain.Recording{Stations: len(kept), Observations: obs, Columns: spec2.Columns}
	rw.writeStations(desc, kept)
	return nil
}

// writeStations emits a station-count line carrying the original block
// description, then one coordinate pair per line in exponent form.
func (rw *rewriter) writeStations(desc string, locs []domain.Location) {
	rw.writef(" %-35d %s%s", len(locs), "!", ensureNewline(desc))
	for _, loc := range locs {
		rw.writef("%9.8E %9.8E\n", loc.X, loc.Y)
	}
}

func (rw *rewriter) write(s string) {
	_, _ = rw.w.WriteString(s)
}

func (rw *rewriter) writef(format string, args ...any) {
	_, _ = fmt.Fprintf(rw.w, format, args...)
}

// ensureNewline terminates re-emitted lines whose source comment was empty
// or cut short at end of file.
func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
