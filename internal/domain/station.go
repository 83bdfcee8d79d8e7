package domain

// Location is a recording-station position in the run's horizontal
// coordinate system (degrees or meters, whatever the mesh uses; run-control
// handling never reprojects).
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TableToLocations converts an n-by-2 coordinate table into locations.
// Column 0 is x, column 1 is y.
func TableToLocations(table [][2]float64) []Location {
	locs := make([]Location, 0, len(table))
	for _, row := range table {
		locs = append(locs, Location{X: row[0], Y: row[1]})
	}
	return locs
}

// LocationsToTable converts locations back into an n-by-2 coordinate table.
func LocationsToTable(locs []Location) [][2]float64 {
	table := make([][2]float64, 0, len(locs))
	for _, loc := range locs {
		table = append(table, [2]float64{loc.X, loc.Y})
	}
	return table
}

// Extent is an axis-aligned bounding box in mesh coordinates.
type Extent struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Center returns the midpoint of the box.
func (e Extent) Center() Location {
	return Location{X: (e.MinX + e.MaxX) / 2, Y: (e.MinY + e.MaxY) / 2}
}

// Mesh supplies the two facts about the computational grid that run-control
// handling needs but cannot read from the run-control file itself: how many
// nodes full-field channels cover, and the grid's bounding box.
type Mesh interface {
	NodeCount() int
	Extent() Extent
}

// GridInfo is a literal Mesh for tooling and tests.
type GridInfo struct {
	Nodes int
	Box   Extent
}

func (g GridInfo) NodeCount() int { return g.Nodes }
func (g GridInfo) Extent() Extent { return g.Box }

// Lattice lays a regular nx-by-ny grid of synthetic recording stations over
// the mesh extent, endpoints included. Stations are ordered west to east,
// then south to north: x varies fastest. Returns nil when either count is
// below one or the mesh is absent.
func Lattice(m Mesh, nx, ny int) []Location {
	if m == nil || nx < 1 || ny < 1 {
		return nil
	}
	ext := m.Extent()
	xs := linspace(ext.MinX, ext.MaxX, nx)
	ys := linspace(ext.MinY, ext.MaxY, ny)

	locs := make([]Location, 0, nx*ny)
	for _, y := range ys {
		for _, x := range xs {
			locs = append(locs, Location{X: x, Y: y})
		}
	}
	return locs
}

// linspace returns n evenly spaced values from start to stop inclusive.
// A single-element result holds start.
func linspace(start, stop float64, n int) []float64 {
	vals := make([]float64, n)
	if n == 1 {
		vals[0] = start
		return vals
	}
	step := (stop - start) / float64(n-1)
	for i := range vals {
		vals[i] = start + float64(i)*step
	}
	vals[n-1] = stop
	return vals
}
