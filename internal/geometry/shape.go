// Package geometry filters recording stations against a subdomain footprint.
// Footprints are described by small text files kept next to the subdomain's
// run-control file: shape.c14 for circles, shape.e14 for ellipses.
package geometry

import (
	"fmt"
	"math"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
)

// Kind selects the subdomain footprint geometry. The numeric values match
// the flag older tooling passed around: 0 ellipse, 1 circle.
type Kind int

const (
	Ellipse Kind = iota
	Circle
)

// Shape description file names, fixed by convention.
const (
	EllipseFile = "shape.e14"
	CircleFile  = "shape.c14"
)

func (k Kind) String() string {
	switch k {
	case Ellipse:
		return "ellipse"
	case Circle:
		return "circle"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a wire or CLI shape name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "ellipse":
		return Ellipse, nil
	case "circle":
		return Circle, nil
	default:
		return 0, fmt.Errorf("geometry: unknown shape kind %q", s)
	}
}

// Shape reports whether a station lies inside the subdomain footprint.
type Shape interface {
	Contains(loc domain.Location) bool
	Kind() Kind
}

// CircleShape keeps stations within a disc shrunk by a twenty-fifth of its
// radius, so stations sit clear of the subdomain's boundary band.
type CircleShape struct {
	Center domain.Location
	Radius float64
}

func (c CircleShape) Kind() Kind { return Circle }

// Contains is inclusive at the shrunken boundary.
func (c CircleShape) Contains(loc domain.Location) bool {
	dx := c.Center.X - loc.X
	dy := c.Center.Y - loc.Y
	r := c.Radius - c.Radius/25
	return dx*dx+dy*dy <= r*r
}

// EllipseShape keeps stations within the ellipse whose major axis runs
// through the two axis points, padded so the points themselves lie inside,
// with minor-axis width Width.
type EllipseShape struct {
	P1, P2 domain.Location
	Width  float64

	center       domain.Location
	sin, cos     float64
	xaxis, yaxis float64
}

// NewEllipse derives the rotated-frame parameters once, leaving Contains a
// handful of multiplies per station. Axis points stacked vertically get a
// quarter-turn rotation instead of an undefined slope.
func NewEllipse(p1, p2 domain.Location, width float64) EllipseShape {
	e := EllipseShape{P1: p1, P2: p2, Width: width}
	e.center = domain.Location{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}

	theta := math.Pi / 2
	if p1.X != p2.X {
		theta = math.Atan((p1.Y - p2.Y) / (p1.X - p2.X))
	}
	e.sin = math.Sin(-theta)
	e.cos = math.Cos(-theta)

	d := math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
	e.xaxis = math.Hypot(d/2, width/2)
	e.yaxis = width / 2
	return e
}

func (e EllipseShape) Kind() Kind { return Ellipse }

// Contains is strict at the boundary: a station exactly on the ellipse is
// dropped.
func (e EllipseShape) Contains(loc domain.Location) bool {
	gx := loc.X - e.center.X
	gy := loc.Y - e.center.Y
	x := e.cos*gx - e.sin*gy
	y := e.sin*gx + e.cos*gy
	return x*x/(e.xaxis*e.xaxis)+y*y/(e.yaxis*e.yaxis) < 1
}

// Trim returns the stations of locs inside s, preserving order. The result
// is always a fresh slice, never an alias of locs.
func Trim(s Shape, locs []domain.Location) []domain.Location {
	kept := make([]domain.Location, 0, len(locs))
	for _, loc := range locs {
		if s.Contains(loc) {
			kept = append(kept, loc)
		}
	}
	return kept
}

// TrimLocations loads the kind-appropriate shape description from dir and
// filters locs against it.
func TrimLocations(kind Kind, dir string, locs []domain.Location) ([]domain.Location, error) {
	shape, err := Load(kind, dir)
	if err != nil {
		return nil, err
	}
	return Trim(shape, locs), nil
}
