package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

const (
	// CacheGroupSize is the number of consecutive sorted slots sharing one cache fill.
	CacheGroupSize = 128
	// MaxCachedCells caps one group's cache. Groups touching more cells fall
	// back to reading the global cell ranges.
	MaxCachedCells = 1 << 14
)

// BoundaryCache holds the start/end bounds of every cell a group of
// spatially adjacent particles can reach, copied out of the global ranges.
type BoundaryCache struct {
	span       CellSpan
	dx, dxy    int
	start, end []int32
}

// Fill caches the bounds of all cells reachable from slots [s0, s1).
// Returns false, leaving the cache unusable, when the group spans more than
// MaxCachedCells cells.
func (b *BoundaryCache) Fill(g *Grid, cells *components.CellRanges, pos []r3.Vec, s0, s1 int) bool {
	if s0 >= s1 {
		return false
	}
	span := g.Span(pos[s0])
	for s := s0 + 1; s < s1; s++ {
		span = span.Union(g.Span(pos[s]))
	}
	n := span.Cells()
	if n > MaxCachedCells {
		return false
	}
	if cap(b.start) < n {
		b.start = make([]int32, n)
		b.end = make([]int32, n)
	}
	b.start = b.start[:n]
	b.end = b.end[:n]

	b.span = span
	b.dx = span.Max[0] - span.Min[0] + 1
	b.dxy = b.dx * (span.Max[1] - span.Min[1] + 1)

	i := 0
	for z := span.Min[2]; z <= span.Max[2]; z++ {
		for y := span.Min[1]; y <= span.Max[1]; y++ {
			for x := span.Min[0]; x <= span.Max[0]; x++ {
				cell := g.CellIndex(x, y, z)
				b.start[i] = cells.Start[cell]
				b.end[i] = cells.End[cell]
				i++
			}
		}
	}
	return true
}

func (b *BoundaryCache) lookup(x, y, z int) (start, end int32) {
	i := (x - b.span.Min[0]) + (y-b.span.Min[1])*b.dx + (z-b.span.Min[2])*b.dxy
	return b.start[i], b.end[i]
}

// CachedCoherentGrid is a CoherentGrid that reads cell bounds from a filled
// BoundaryCache instead of the global ranges.
type CachedCoherentGrid struct {
	CoherentGrid
	Cache *BoundaryCache
}

func (c *CachedCoherentGrid) Gather(s int, acc *RuleAccumulator) {
	span := c.Grid.Span(c.Pos[s])
	for z := span.Min[2]; z <= span.Max[2]; z++ {
		for y := span.Min[1]; y <= span.Max[1]; y++ {
			for x := span.Min[0]; x <= span.Max[0]; x++ {
				start, end := c.Cache.lookup(x, y, z)
				if start == components.EmptyCell {
					continue
				}
				c.scan(s, int(start), int(end), acc)
			}
		}
	}
}

// EvaluateRulesCached evaluates sorted slots [s0, s1) in groups of
// CacheGroupSize, filling cache once per group. It returns how many groups
// had to fall back to the uncached walk.
func EvaluateRulesCached(src *CoherentGrid, cache *BoundaryCache, rules *Rules, next []r3.Vec, s0, s1 int) int {
	cached := CachedCoherentGrid{CoherentGrid: *src, Cache: cache}
	fallbacks := 0
	for g0 := s0; g0 < s1; g0 += CacheGroupSize {
		g1 := min(g0+CacheGroupSize, s1)
		if cache.Fill(src.Grid, src.Cells, src.Pos, g0, g1) {
			EvaluateRules(&cached, rules, next, g0, g1)
		} else {
			EvaluateRules(src, rules, next, g0, g1)
			fallbacks++
		}
	}
	return fallbacks
}
