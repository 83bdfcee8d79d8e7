package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableToLocations(t *testing.T) {
	table := [][2]float64{{265.0, 29.3}, {266.5, 28.9}, {-98.44, 31.02}}

	locs := TableToLocations(table)

	expected := []Location{
		{X: 265.0, Y: 29.3},
		{X: 266.5, Y: 28.9},
		{X: -98.44, Y: 31.02},
	}
	if diff := cmp.Diff(expected, locs); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
}

func TestLocationsToTable(t *testing.T) {
	locs := []Location{{X: 1.5, Y: 2.5}, {X: -3.0, Y: 4.0}}

	table := LocationsToTable(locs)

	assert.Equal(t, [][2]float64{{1.5, 2.5}, {-3.0, 4.0}}, table)
}

func TestTableRoundTrip(t *testing.T) {
	table := [][2]float64{{0, 0}, {1.25, -7.5}, {2.65e2, 2.93e1}}

	back := LocationsToTable(TableToLocations(table))

	assert.Equal(t, table, back)
}

func TestExtentCenter(t *testing.T) {
	ext := Extent{MinX: -2, MinY: 10, MaxX: 4, MaxY: 20}
	assert.Equal(t, Location{X: 1, Y: 15}, ext.Center())
}

func TestLattice(t *testing.T) {
	mesh := GridInfo{Nodes: 100, Box: Extent{MinX: 0, MinY: 0, MaxX: 2, MaxY: 1}}

	t.Run("x varies fastest", func(t *testing.T) {
		locs := Lattice(mesh, 3, 2)

		expected := []Location{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
			{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1},
		}
		if diff := cmp.Diff(expected, locs); diff != "" {
			t.Fatalf("lattice mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("endpoints included", func(t *testing.T) {
		mesh := GridInfo{Box: Extent{MinX: -1, MinY: 5, MaxX: 1, MaxY: 6}}
		locs := Lattice(mesh, 5, 2)

		assert.Len(t, locs, 10)
		assert.Equal(t, Location{X: -1, Y: 5}, locs[0])
		assert.Equal(t, Location{X: 1, Y: 5}, locs[4])
		assert.Equal(t, Location{X: -1, Y: 6}, locs[5])
		assert.Equal(t, Location{X: 1, Y: 6}, locs[9])
	})

	t.Run("square grid corners", func(t *testing.T) {
		mesh := GridInfo{Box: Extent{MinX: 0, MinY: 0, MaxX: 10, MaxY: 20}}
		locs := Lattice(mesh, 3, 3)

		require.Len(t, locs, 9)
		assert.Contains(t, locs, Location{X: 0, Y: 0})
		assert.Contains(t, locs, Location{X: 10, Y: 0})
		assert.Contains(t, locs, Location{X: 0, Y: 20})
		assert.Contains(t, locs, Location{X: 10, Y: 20})
	})

	t.Run("single station", func(t *testing.T) {
		locs := Lattice(mesh, 1, 1)
		assert.Equal(t, []Location{{X: 0, Y: 0}}, locs)
	})

	t.Run("nil mesh", func(t *testing.T) {
		assert.Nil(t, Lattice(nil, 3, 3))
	})

	t.Run("non-positive counts", func(t *testing.T) {
		assert.Nil(t, Lattice(mesh, 0, 3))
		assert.Nil(t, Lattice(mesh, 3, -1))
	})
}

func TestLinspace(t *testing.T) {
	t.Run("exact endpoints", func(t *testing.T) {
		vals := linspace(0.1, 0.7, 7)
		assert.Len(t, vals, 7)
		assert.Equal(t, 0.1, vals[0])
		assert.Equal(t, 0.7, vals[6])
	})

	t.Run("single value is start", func(t *testing.T) {
		assert.Equal(t, []float64{3.5}, linspace(3.5, 9.0, 1))
	})
}
