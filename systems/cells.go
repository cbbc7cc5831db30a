package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

// LabelCells writes the cell id and identity particle id for particles [i0, i1).
func LabelCells(g *Grid, pos []r3.Vec, pairs *components.IndexPairs, i0, i1 int) {
	for i := i0; i < i1; i++ {
		pairs.GridIndices[i] = int32(g.CellOf(pos[i]))
		pairs.ArrayIndices[i] = int32(i)
	}
}

// ResetBoundaries marks cells [c0, c1) empty.
// Must run before LocateBoundaries: cells with no particles receive no write there.
func ResetBoundaries(cells *components.CellRanges, c0, c1 int) {
	for c := c0; c < c1; c++ {
		cells.Start[c] = components.EmptyCell
		cells.End[c] = components.EmptyCell
	}
}

// LocateBoundaries records the first and last sorted slot of each cell for
// slots [s0, s1). gridIndices must already be sorted ascending.
func LocateBoundaries(gridIndices []int32, cells *components.CellRanges, s0, s1 int) {
	last := len(gridIndices) - 1
	for s := s0; s < s1; s++ {
		cell := gridIndices[s]
		if s == 0 || gridIndices[s-1] != cell {
			cells.Start[cell] = int32(s)
		}
		if s == last || gridIndices[s+1] != cell {
			cells.End[cell] = int32(s)
		}
	}
}

// Occupancy appends the particle count of every occupied cell to dst.
func Occupancy(cells *components.CellRanges, dst []float64) []float64 {
	for c := range cells.Start {
		if cells.Start[c] == components.EmptyCell {
			continue
		}
		dst = append(dst, float64(cells.End[c]-cells.Start[c]+1))
	}
	return dst
}
