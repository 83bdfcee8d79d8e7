package fort15

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
)

// coordRe matches one numeric token, scientific notation included, so the
// exponent-format coordinates this package writes re-scan as single tokens.
var coordRe = regexp.MustCompile(`[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[Ee][-+]?\d+)?`)

// decoder consumes output blocks from a lineReader. nodes is the mesh node
// count recorded as the row count of full-field channels.
type decoder struct {
	lr    *lineReader
	nodes int
}

// specLine holds the four values of an output specification line.
type specLine struct {
	nout, touts, toutf, nspool float64
}

func (d *decoder) parseSpec(value string) (specLine, error) {
	fields := strings.Fields(value)
	if len(fields) != 4 {
		return specLine{}, &ParseError{
			Path: d.lr.path, Line: d.lr.n,
			What: fmt.Sprintf("output specification: want NOUT TOUTS TOUTF NSPOOL, got %d fields", len(fields)),
		}
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return specLine{}, &ParseError{Path: d.lr.path, Line: d.lr.n, What: "output specification", Err: err}
		}
		vals[i] = v
	}
	return specLine{nout: vals[0], touts: vals[1], toutf: vals[2], nspool: vals[3]}, nil
}

// decode reads one output block: the specification values for every channel,
// plus the station list for per-station channels. value is the text before
// the comment on the block's specification line.
func (d *decoder) decode(doc *domain.Document, ch domain.Channel, value string) error {
	spec, err := d.parseSpec(value)
	if err != nil {
		return err
	}
	obs := doc.Timing.Observations(spec.nout, spec.touts, spec.toutf, spec.nspool)

	chSpec, _ := ch.Spec()
	rows := d.nodes
	if chSpec.PerStation {
		stations, _, err := d.stationBlock()
		if err != nil {
			return err
		}
		doc.Stations[ch] = stations
		rows = len(stations)
	}
	doc.Recording[ch] = domain.Recording{Stations: rows, Observations: obs, Columns: chSpec.Columns}
	return nil
}

// decodePair reads one output block shared by two channels. Station
// channels share a single backing slice under both keys; each key still
// records its own column count.
func (d *decoder) decodePair(doc *domain.Document, ch1, ch2 domain.Channel, value string) error {
	spec, err := d.parseSpec(value)
	if err != nil {
		return err
	}
	obs := doc.Timing.Observations(spec.nout, spec.touts, spec.toutf, spec.nspool)

	spec1, _ := ch1.Spec()
	spec2, _ := ch2.Spec()
	rows := d.nodes
	if spec1.PerStation {
		stations, _, err := d.stationBlock()
		if err != nil {
			return err
		}
		doc.Stations[ch1] = stations
		doc.Stations[ch2] = stations
		rows = len(stations)
	}
	doc.Recording[ch1] = domain.Recording{Stations: rows, Observations: obs, Columns: spec1.Columns}
	doc.Recording[ch2] = domain.Recording{Stations: rows, Observations: obs, Columns: spec2.Columns}
	return nil
}

// stationBlock consumes a station-count line and that many coordinate
// lines. A coordinate line yields the first and last numeric tokens of its
// value text, so padding and extra columns between x and y are tolerated.
// The count line's comment is returned for rewriting.
func (d *decoder) stationBlock() ([]domain.Location, string, error) {
	line, ok, err := d.lr.next()
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", &ParseError{Path: d.lr.path, Line: d.lr.n, What: "station count line missing", Err: io.ErrUnexpectedEOF}
	}
	value, desc := splitValue(line)
	count, err := parseInt(value)
	if err != nil {
		return nil, "", &ParseError{Path: d.lr.path, Line: d.lr.n, What: "station count", Err: err}
	}
	if count < 0 {
		return nil, "", &ParseError{Path: d.lr.path, Line: d.lr.n, What: fmt.Sprintf("negative station count %d", count)}
	}

	stations := make([]domain.Location, 0, count)
	for i := 0; i < count; i++ {
		line, ok, err := d.lr.next()
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", &ParseError{
				Path: d.lr.path, Line: d.lr.n,
				What: fmt.Sprintf("station list truncated: want %d stations, got %d", count, i),
				Err:  io.ErrUnexpectedEOF,
			}
		}
		value, _ := splitValue(line)
		loc, err := parseStation(value)
		if err != nil {
			return nil, "", &ParseError{Path: d.lr.path, Line: d.lr.n, What: "station coordinates", Err: err}
		}
		stations = append(stations, loc)
	}
	return stations, desc, nil
}

func parseStation(value string) (domain.Location, error) {
	tokens := coordRe.FindAllString(value, -1)
	if len(tokens) < 2 {
		return domain.Location{}, fmt.Errorf("want at least x and y coordinate tokens, got %d", len(tokens))
	}
	x, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return domain.Location{}, err
	}
	y, err := strconv.ParseFloat(tokens[len(tokens)-1], 64)
	if err != nil {
		return domain.Location{}, err
	}
	return domain.Location{X: x, Y: y}, nil
}
