// Package systems provides the per-tick stages of the flocking simulation.
//
// Every stage works on a half-open index range so the caller can split it
// across workers; stages never write a slot outside their range.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Neighborhood selects how many cells a neighbor search visits.
type Neighborhood uint8

const (
	// Cells8 sizes cells at twice the search radius and visits the (at most)
	// 2x2x2 cells overlapping the search sphere's bounding box.
	Cells8 Neighborhood = iota
	// Cells27 sizes cells at the search radius and visits the particle's
	// cell plus its 26 neighbors.
	Cells27
)

func (n Neighborhood) String() string {
	if n == Cells27 {
		return "cells27"
	}
	return "cells8"
}

// CellWidthFactor returns the multiple of the search radius used as cell width.
func (n Neighborhood) CellWidthFactor() float64 {
	if n == Cells27 {
		return 1
	}
	return 2
}

// Grid is a uniform cubic partition of the simulation domain.
type Grid struct {
	SceneScale       float64 // half-width of the domain cube
	Origin           r3.Vec  // minimum corner of cell (0, 0, 0)
	CellWidth        float64
	InverseCellWidth float64
	Resolution       int // cells per axis
	CellCount        int // Resolution^3
	SearchRadius     float64
	Neighborhood     Neighborhood
}

// NewGrid sizes a grid covering [-sceneScale, sceneScale]^3 with one spare
// cell on each side, so every in-domain position hashes inside the grid.
//
// The half side is taken from the same multiply-by-inverse the hash uses and
// then grown until both faces of the domain hash in range; sceneScale/cellWidth
// can round below a whole number that the hash rounds up to.
func NewGrid(sceneScale, searchRadius float64, nb Neighborhood) Grid {
	cellWidth := nb.CellWidthFactor() * searchRadius
	inv := 1 / cellWidth
	g := Grid{
		SceneScale:       sceneScale,
		CellWidth:        cellWidth,
		InverseCellWidth: inv,
		SearchRadius:     searchRadius,
		Neighborhood:     nb,
	}
	for halfSide := int(math.Floor(sceneScale*inv)) + 1; ; halfSide++ {
		g.resize(halfSide)
		if g.covers(sceneScale) {
			return g
		}
	}
}

func (g *Grid) resize(halfSide int) {
	lo := -float64(halfSide) * g.CellWidth
	g.Origin = r3.Vec{X: lo, Y: lo, Z: lo}
	g.Resolution = 2 * halfSide
	g.CellCount = g.Resolution * g.Resolution * g.Resolution
}

// covers reports whether both ±sceneScale corners hash inside the grid.
func (g *Grid) covers(sceneScale float64) bool {
	lo, _, _ := g.CellCoord(r3.Vec{X: -sceneScale, Y: -sceneScale, Z: -sceneScale})
	hi, _, _ := g.CellCoord(r3.Vec{X: sceneScale, Y: sceneScale, Z: sceneScale})
	return lo >= 0 && hi < g.Resolution
}

// CellCoord returns the integer cell coordinate containing p.
// No bounds checking: p must lie inside the domain the grid was sized for.
func (g *Grid) CellCoord(p r3.Vec) (x, y, z int) {
	x = int(math.Floor((p.X - g.Origin.X) * g.InverseCellWidth))
	y = int(math.Floor((p.Y - g.Origin.Y) * g.InverseCellWidth))
	z = int(math.Floor((p.Z - g.Origin.Z) * g.InverseCellWidth))
	return x, y, z
}

// CellIndex linearizes a cell coordinate as x + y*R + z*R^2.
func (g *Grid) CellIndex(x, y, z int) int {
	return x + y*g.Resolution + z*g.Resolution*g.Resolution
}

// CellOf returns the linear cell index containing p.
func (g *Grid) CellOf(p r3.Vec) int {
	return g.CellIndex(g.CellCoord(p))
}

// CellSpan is an inclusive box of cell coordinates.
type CellSpan struct {
	Min, Max [3]int
}

// Cells returns the number of cells in the span.
func (s CellSpan) Cells() int {
	n := 1
	for a := 0; a < 3; a++ {
		d := s.Max[a] - s.Min[a] + 1
		if d <= 0 {
			return 0
		}
		n *= d
	}
	return n
}

// Union grows s to include o.
func (s CellSpan) Union(o CellSpan) CellSpan {
	for a := 0; a < 3; a++ {
		s.Min[a] = min(s.Min[a], o.Min[a])
		s.Max[a] = max(s.Max[a], o.Max[a])
	}
	return s
}

// Span returns the cells that can hold a neighbor of p within SearchRadius,
// clamped to the grid.
func (g *Grid) Span(p r3.Vec) CellSpan {
	var s CellSpan
	if g.Neighborhood == Cells27 {
		x, y, z := g.CellCoord(p)
		s.Min = [3]int{x - 1, y - 1, z - 1}
		s.Max = [3]int{x + 1, y + 1, z + 1}
	} else {
		r := r3.Vec{X: g.SearchRadius, Y: g.SearchRadius, Z: g.SearchRadius}
		x0, y0, z0 := g.CellCoord(r3.Sub(p, r))
		x1, y1, z1 := g.CellCoord(r3.Add(p, r))
		s.Min = [3]int{x0, y0, z0}
		s.Max = [3]int{x1, y1, z1}
	}

	last := g.Resolution - 1
	for a := 0; a < 3; a++ {
		s.Min[a] = max(s.Min[a], 0)
		s.Max[a] = min(s.Max[a], last)
	}
	return s
}
