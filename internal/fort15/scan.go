// Package fort15 reads and rewrites ADCIRC run-control (fort.15) files. It
// recognizes parameters by the keyword substrings conventionally present in
// each line's "!" comment, so file layouts from different model versions
// scan the same way. See the domain package documentation for the format.
package fort15

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
)

// FileName is the run-control file name inside a run directory.
const FileName = "fort.15"

// Station-output markers carry two spaces between UNIT and the number,
// matching how the model writes its header comments.
const (
	markElevStations = "UNIT  61"
	markVelStations  = "UNIT  62"
	markMetStations  = "UNIT  71/72"
	markVelField     = "UNIT  64"
	markMetField     = "UNIT  73/74"
)

// lineReader yields lines with their terminator attached; the final line of
// a file arrives even when it lacks one.
type lineReader struct {
	r    *bufio.Reader
	path string
	n    int // number of the line most recently returned
}

func newLineReader(r io.Reader, path string) *lineReader {
	return &lineReader{r: bufio.NewReader(r), path: path}
}

// next returns the upcoming line and false once the file is exhausted.
func (lr *lineReader) next() (string, bool, error) {
	line, err := lr.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, fmt.Errorf("read %s: %w", lr.path, err)
	}
	if line == "" {
		return "", false, nil
	}
	lr.n++
	return line, true, nil
}

// splitValue divides a line at its first comment delimiter: value is the
// text before the first "!", comment everything after it with the trailing
// newline kept. A line without a delimiter has an empty comment.
func splitValue(line string) (value, comment string) {
	if i := strings.IndexByte(line, '!'); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}

func parseFloat(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}

func parseInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}

func parseFloats(value string) ([]float64, error) {
	fields := strings.Fields(value)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Scan reads the run-control file in dir and collects its time parameters,
// hot start flag, minimum depth, and per-channel recording metadata. mesh
// supplies the row count recorded for full-field channels; a nil mesh
// records zero rows for them.
func Scan(dir string, mesh domain.Mesh) (*domain.Document, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run control: %w", err)
	}
	defer f.Close()
	return scan(f, path, mesh)
}

func scan(r io.Reader, path string, mesh domain.Mesh) (*domain.Document, error) {
	doc := domain.NewDocument()
	nodes := 0
	if mesh != nil {
		nodes = mesh.NodeCount()
	}

	lr := newLineReader(r, path)
	dec := &decoder{lr: lr, nodes: nodes}

	var (
		dt, statim, rnday                         float64
		haveDT, haveStatim, haveRnday, haveTiming bool
	)

	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		value, _ := splitValue(line)
		switch {
		case strings.Contains(line, "DT"):
			if dt, err = parseFloat(value); err != nil {
				return nil, &ParseError{Path: path, Line: lr.n, What: "DT", Err: err}
			}
			haveDT = true
		case strings.Contains(line, "IHOT"):
			if doc.HotStart, err = parseInt(value); err != nil {
				return nil, &ParseError{Path: path, Line: lr.n, What: "IHOT", Err: err}
			}
		case strings.Contains(line, "STATIM"):
			if statim, err = parseFloat(value); err != nil {
				return nil, &ParseError{Path: path, Line: lr.n, What: "STATIM", Err: err}
			}
			haveStatim = true
		case strings.Contains(line, "RNDAY"):
			if rnday, err = parseFloat(value); err != nil {
				return nil, &ParseError{Path: path, Line: lr.n, What: "RNDAY", Err: err}
			}
			haveRnday = true
		case strings.Contains(line, "DRAMP"):
			ramp, err := parseFloats(value)
			if err != nil {
				return nil, &ParseError{Path: path, Line: lr.n, What: "DRAMP", Err: err}
			}
			if !haveDT || !haveStatim || !haveRnday {
				return nil, fmt.Errorf("%s:%d: DRAMP before DT, STATIM, and RNDAY: %w", path, lr.n, ErrMissingTiming)
			}
			doc.Timing = domain.Timing{Step: dt, Start: statim, Duration: rnday, Ramp: ramp}
			haveTiming = true
		case strings.Contains(line, "H0"):
			// Newer files append extra cutoff fields here; only the first
			// value is the minimum depth.
			fields := strings.Fields(value)
			if len(fields) > 0 {
				if doc.MinDepth, err = strconv.ParseFloat(fields[0], 64); err != nil {
					return nil, &ParseError{Path: path, Line: lr.n, What: "H0", Err: err}
				}
			}
		case strings.Contains(line, markElevStations):
			if err := requireTiming(haveTiming, path, lr.n); err != nil {
				return nil, err
			}
			if err := dec.decode(doc, domain.ElevStations, value); err != nil {
				return nil, err
			}
		case strings.Contains(line, markVelStations):
			if err := requireTiming(haveTiming, path, lr.n); err != nil {
				return nil, err
			}
			if err := dec.decode(doc, domain.VelStations, value); err != nil {
				return nil, err
			}
		case strings.Contains(line, "NOUTC"):
			// Concentration output (fort.91) is not recorded.
		case strings.Contains(line, markMetStations):
			if err := requireTiming(haveTiming, path, lr.n); err != nil {
				return nil, err
			}
			if err := dec.decodePair(doc, domain.PressStations, domain.WindStations, value); err != nil {
				return nil, err
			}
		case strings.Contains(line, "NOUTGE"):
			if err := requireTiming(haveTiming, path, lr.n); err != nil {
				return nil, err
			}
			if err := dec.decode(doc, domain.ElevField, value); err != nil {
				return nil, err
			}
		case strings.Contains(line, markVelField):
			if err := requireTiming(haveTiming, path, lr.n); err != nil {
				return nil, err
			}
			if err := dec.decode(doc, domain.VelField, value); err != nil {
				return nil, err
			}
		case strings.Contains(line, "NOUTGC"):
			// Concentration field output (fort.93) is not recorded.
		case strings.Contains(line, markMetField):
			if err := requireTiming(haveTiming, path, lr.n); err != nil {
				return nil, err
			}
			if err := dec.decodePair(doc, domain.PressField, domain.WindField, value); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func requireTiming(have bool, path string, line int) error {
	if !have {
		return fmt.Errorf("%s:%d: output block before time parameters: %w", path, line, ErrMissingTiming)
	}
	return nil
}
