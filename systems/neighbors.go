package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

// NeighborSource abstracts how a rule evaluation reaches nearby particles.
// Indices are in the source's own address space: particle ids for
// BruteForce and ScatteredGrid, sorted slots for CoherentGrid.
type NeighborSource interface {
	// Particle returns the position and current velocity at index i.
	Particle(i int) (pos, vel r3.Vec)
	// Gather feeds every candidate neighbor of i, except i itself, to acc.
	Gather(i int, acc *RuleAccumulator)
}

// EvaluateRules computes next velocities for indices [i0, i1) of src.
// next must not alias any buffer src reads from.
func EvaluateRules(src NeighborSource, rules *Rules, next []r3.Vec, i0, i1 int) {
	var acc RuleAccumulator
	for i := i0; i < i1; i++ {
		pos, vel := src.Particle(i)
		acc.Reset(rules, pos)
		src.Gather(i, &acc)
		next[i] = acc.Velocity(vel)
	}
}

// BruteForce scans the whole population for every particle.
type BruteForce struct {
	Pos []r3.Vec
	Vel []r3.Vec
}

func (b *BruteForce) Particle(i int) (r3.Vec, r3.Vec) { return b.Pos[i], b.Vel[i] }

func (b *BruteForce) Gather(i int, acc *RuleAccumulator) {
	for j := range b.Pos {
		if j == i {
			continue
		}
		acc.Add(b.Pos[j], b.Vel[j])
	}
}

// ScatteredGrid walks neighbor cells and reaches particle data through the
// sorted index indirection.
type ScatteredGrid struct {
	Grid  *Grid
	Cells *components.CellRanges
	Pairs *components.IndexPairs
	Pos   []r3.Vec // original particle order
	Vel   []r3.Vec
}

func (s *ScatteredGrid) Particle(i int) (r3.Vec, r3.Vec) { return s.Pos[i], s.Vel[i] }

func (s *ScatteredGrid) Gather(i int, acc *RuleAccumulator) {
	span := s.Grid.Span(s.Pos[i])
	r := s.Grid.Resolution
	for z := span.Min[2]; z <= span.Max[2]; z++ {
		for y := span.Min[1]; y <= span.Max[1]; y++ {
			row := y*r + z*r*r
			for x := span.Min[0]; x <= span.Max[0]; x++ {
				start := s.Cells.Start[row+x]
				if start == components.EmptyCell {
					continue
				}
				end := s.Cells.End[row+x]
				for slot := start; slot <= end; slot++ {
					j := int(s.Pairs.ArrayIndices[slot])
					if j == i {
						continue
					}
					acc.Add(s.Pos[j], s.Vel[j])
				}
			}
		}
	}
}

// CoherentGrid walks neighbor cells over buffers already gathered into
// sorted-slot order, so a slot indexes particle data directly.
type CoherentGrid struct {
	Grid  *Grid
	Cells *components.CellRanges
	Pos   []r3.Vec // sorted order
	Vel   []r3.Vec
}

func (c *CoherentGrid) Particle(s int) (r3.Vec, r3.Vec) { return c.Pos[s], c.Vel[s] }

func (c *CoherentGrid) Gather(s int, acc *RuleAccumulator) {
	span := c.Grid.Span(c.Pos[s])
	r := c.Grid.Resolution
	for z := span.Min[2]; z <= span.Max[2]; z++ {
		for y := span.Min[1]; y <= span.Max[1]; y++ {
			row := y*r + z*r*r
			for x := span.Min[0]; x <= span.Max[0]; x++ {
				start := c.Cells.Start[row+x]
				if start == components.EmptyCell {
					continue
				}
				c.scan(s, int(start), int(c.Cells.End[row+x]), acc)
			}
		}
	}
}

func (c *CoherentGrid) scan(self, start, end int, acc *RuleAccumulator) {
	for slot := start; slot <= end; slot++ {
		if slot == self {
			continue
		}
		acc.Add(c.Pos[slot], c.Vel[slot])
	}
}
