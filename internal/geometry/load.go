package geometry

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
	"github.com/maseology/mmio"
)

// FileError reports a missing or malformed shape description file.
type FileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("shape file %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("shape file %s: %s", e.Path, e.Reason)
}

func (e *FileError) Unwrap() error { return e.Err }

// Load reads the shape description for kind from dir.
//
// A circle file holds the center coordinates on the first line and the
// radius on the second. An ellipse file holds one axis point per line for
// two lines, then the minor-axis width. Extra values on a line are ignored;
// extra lines are too.
func Load(kind Kind, dir string) (Shape, error) {
	switch kind {
	case Circle:
		return loadCircle(filepath.Join(dir, CircleFile))
	case Ellipse:
		return loadEllipse(filepath.Join(dir, EllipseFile))
	default:
		return nil, fmt.Errorf("geometry: unknown shape kind %d", kind)
	}
}

func loadCircle(path string) (Shape, error) {
	lines, err := readShapeLines(path, 2)
	if err != nil {
		return nil, err
	}
	center, err := parsePoint(lines[0])
	if err != nil {
		return nil, &FileError{Path: path, Reason: "center line", Err: err}
	}
	radius, err := parseScalar(lines[1])
	if err != nil {
		return nil, &FileError{Path: path, Reason: "radius line", Err: err}
	}
	if radius <= 0 {
		return nil, &FileError{Path: path, Reason: fmt.Sprintf("radius must be positive, got %g", radius)}
	}
	return CircleShape{Center: center, Radius: radius}, nil
}

func loadEllipse(path string) (Shape, error) {
	lines, err := readShapeLines(path, 3)
	if err != nil {
		return nil, err
	}
	p1, err := parsePoint(lines[0])
	if err != nil {
		return nil, &FileError{Path: path, Reason: "first axis point", Err: err}
	}
	p2, err := parsePoint(lines[1])
	if err != nil {
		return nil, &FileError{Path: path, Reason: "second axis point", Err: err}
	}
	width, err := parseScalar(lines[2])
	if err != nil {
		return nil, &FileError{Path: path, Reason: "width line", Err: err}
	}
	if width <= 0 {
		return nil, &FileError{Path: path, Reason: fmt.Sprintf("width must be positive, got %g", width)}
	}
	return NewEllipse(p1, p2, width), nil
}

func readShapeLines(path string, want int) ([]string, error) {
	if _, ok := mmio.FileExists(path); !ok {
		return nil, &FileError{Path: path, Reason: "missing"}
	}
	lines, err := mmio.ReadTextLines(path)
	if err != nil {
		return nil, &FileError{Path: path, Reason: "unreadable", Err: err}
	}
	if len(lines) < want {
		return nil, &FileError{Path: path, Reason: fmt.Sprintf("want %d lines, got %d", want, len(lines))}
	}
	return lines, nil
}

func parsePoint(line string) (domain.Location, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return domain.Location{}, fmt.Errorf("want x and y, got %q", strings.TrimSpace(line))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return domain.Location{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return domain.Location{}, fmt.Errorf("y: %w", err)
	}
	return domain.Location{X: x, Y: y}, nil
}

func parseScalar(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return 0, fmt.Errorf("empty line")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}
