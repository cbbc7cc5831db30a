package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/keysort"
)

func newCellRanges(n int) *components.CellRanges {
	return &components.CellRanges{Start: make([]int32, n), End: make([]int32, n)}
}

func TestLocateBoundaries(t *testing.T) {
	// Sorted cell ids for 10 slots
	grid := []int32{0, 0, 0, 0, 1, 2, 2, 3, 5, 6}
	cells := newCellRanges(8)
	ResetBoundaries(cells, 0, cells.Len())

	// Split across two ranges the way workers would
	LocateBoundaries(grid, cells, 0, 5)
	LocateBoundaries(grid, cells, 5, len(grid))

	want := []struct{ start, end int32 }{
		{0, 3}, {4, 4}, {5, 6}, {7, 7},
		{components.EmptyCell, components.EmptyCell},
		{8, 8}, {9, 9},
		{components.EmptyCell, components.EmptyCell},
	}
	for c, w := range want {
		if cells.Start[c] != w.start || cells.End[c] != w.end {
			t.Errorf("cell %d = [%d, %d], want [%d, %d]", c, cells.Start[c], cells.End[c], w.start, w.end)
		}
	}

	pairs := &components.IndexPairs{
		ArrayIndices: []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		GridIndices:  grid,
	}
	if err := CheckCellRanges(pairs, cells); err != nil {
		t.Errorf("CheckCellRanges: %v", err)
	}

	occ := Occupancy(cells, nil)
	if len(occ) != 6 || occ[0] != 4 || occ[2] != 2 {
		t.Errorf("Occupancy = %v", occ)
	}
}

func TestResetClearsStaleRanges(t *testing.T) {
	cells := newCellRanges(4)
	for c := range cells.Start {
		cells.Start[c], cells.End[c] = 7, 9
	}
	ResetBoundaries(cells, 1, 3)
	if cells.Start[0] != 7 || cells.Start[3] != 7 {
		t.Error("ResetBoundaries wrote outside its range")
	}
	if cells.Occupied(1) || cells.Occupied(2) {
		t.Error("cells 1 and 2 should be empty after reset")
	}
}

func TestLabelSortLocate(t *testing.T) {
	g := NewGrid(10, 2, Cells8) // width 4, R 6
	pos := []r3.Vec{
		{X: 9, Y: 9, Z: 9},
		{X: -9, Y: -9, Z: -9},
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: -9, Y: -9.5, Z: -9},
		{X: 1, Y: 1, Z: 1},
	}
	pairs := &components.IndexPairs{
		ArrayIndices: make([]int32, len(pos)),
		GridIndices:  make([]int32, len(pos)),
	}
	LabelCells(&g, pos, pairs, 0, len(pos))
	for i, p := range pos {
		if int(pairs.GridIndices[i]) != g.CellOf(p) || pairs.ArrayIndices[i] != int32(i) {
			t.Fatalf("slot %d labeled (%d, %d)", i, pairs.ArrayIndices[i], pairs.GridIndices[i])
		}
	}

	keysort.Pairs(pairs.GridIndices, pairs.ArrayIndices)
	if err := CheckPermutation(pairs.ArrayIndices); err != nil {
		t.Fatal(err)
	}

	cells := newCellRanges(g.CellCount)
	ResetBoundaries(cells, 0, cells.Len())
	LocateBoundaries(pairs.GridIndices, cells, 0, len(pos))
	if err := CheckCellRanges(pairs, cells); err != nil {
		t.Fatal(err)
	}

	// Particles 1 and 3 share a cell, as do 2 and 4
	c := g.CellOf(pos[1])
	if got := cells.End[c] - cells.Start[c] + 1; got != 2 {
		t.Errorf("cell %d holds %d particles, want 2", c, got)
	}
}

func TestCheckHelpers(t *testing.T) {
	t.Run("permutation", func(t *testing.T) {
		if err := CheckPermutation([]int32{2, 0, 1}); err != nil {
			t.Error(err)
		}
		if CheckPermutation([]int32{0, 0, 1}) == nil {
			t.Error("duplicate id not detected")
		}
		if CheckPermutation([]int32{0, 3, 1}) == nil {
			t.Error("out of range id not detected")
		}
	})

	t.Run("cell ranges", func(t *testing.T) {
		pairs := &components.IndexPairs{ArrayIndices: []int32{0, 1}, GridIndices: []int32{0, 1}}
		cells := &components.CellRanges{Start: []int32{0, components.EmptyCell}, End: []int32{0, components.EmptyCell}}
		if CheckCellRanges(pairs, cells) == nil {
			t.Error("uncovered slot not detected")
		}
		cells = &components.CellRanges{Start: []int32{0, 0}, End: []int32{0, 1}}
		if CheckCellRanges(pairs, cells) == nil {
			t.Error("mislabeled slot not detected")
		}
	})

	t.Run("containment", func(t *testing.T) {
		if err := CheckContainment([]r3.Vec{{X: 5}, {Z: -5}}, 5); err != nil {
			t.Error(err)
		}
		if CheckContainment([]r3.Vec{{Y: 5.01}}, 5) == nil {
			t.Error("escaped particle not detected")
		}
	})

	t.Run("max deviation", func(t *testing.T) {
		dev, at := MaxDeviation([]r3.Vec{{X: 1}, {Y: 2}}, []r3.Vec{{X: 1}, {Y: 1.5}})
		if dev != 0.5 || at != 1 {
			t.Errorf("MaxDeviation = %v at %d, want 0.5 at 1", dev, at)
		}
	})
}
