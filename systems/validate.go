package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

// CheckPermutation verifies indices is a permutation of [0, len(indices)).
func CheckPermutation(indices []int32) error {
	seen := make([]bool, len(indices))
	for slot, id := range indices {
		if id < 0 || int(id) >= len(indices) {
			return fmt.Errorf("slot %d: particle id %d out of range [0, %d)", slot, id, len(indices))
		}
		if seen[id] {
			return fmt.Errorf("slot %d: particle id %d appears twice", slot, id)
		}
		seen[id] = true
	}
	return nil
}

// CheckCellRanges verifies every occupied cell's range is well formed, only
// covers slots labeled with that cell, and that ranges cover all slots.
func CheckCellRanges(pairs *components.IndexPairs, cells *components.CellRanges) error {
	n := len(pairs.GridIndices)
	covered := 0
	for c := range cells.Start {
		start, end := cells.Start[c], cells.End[c]
		if start == components.EmptyCell {
			if end != components.EmptyCell {
				return fmt.Errorf("cell %d: empty start but end %d", c, end)
			}
			continue
		}
		if start > end || start < 0 || int(end) >= n {
			return fmt.Errorf("cell %d: bad range [%d, %d] for %d slots", c, start, end, n)
		}
		for s := start; s <= end; s++ {
			if pairs.GridIndices[s] != int32(c) {
				return fmt.Errorf("cell %d: slot %d labeled with cell %d", c, s, pairs.GridIndices[s])
			}
		}
		covered += int(end-start) + 1
	}
	if covered != n {
		return fmt.Errorf("cell ranges cover %d slots, want %d", covered, n)
	}
	return nil
}

// CheckContainment verifies every coordinate lies in [-scale, scale].
func CheckContainment(pos []r3.Vec, scale float64) error {
	for i, p := range pos {
		if math.Abs(p.X) > scale || math.Abs(p.Y) > scale || math.Abs(p.Z) > scale {
			return fmt.Errorf("particle %d at %v outside [-%g, %g]", i, p, scale, scale)
		}
	}
	return nil
}

// MaxDeviation returns the largest per-component absolute difference between
// two equal-length vector slices, and the index where it occurs.
func MaxDeviation(a, b []r3.Vec) (float64, int) {
	worst, at := 0.0, -1
	for i := range a {
		d := r3.Sub(a[i], b[i])
		m := max(math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z))
		if m > worst {
			worst, at = m, i
		}
	}
	return worst, at
}
