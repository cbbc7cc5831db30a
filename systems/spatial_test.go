package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewGridSizing(t *testing.T) {
	tests := []struct {
		name      string
		scale     float64
		radius    float64
		nb        Neighborhood
		wantWidth float64
		wantRes   int
	}{
		{"cells8 default", 100, 5, Cells8, 10, 22},
		{"cells27 default", 100, 5, Cells27, 5, 42},
		{"uneven", 7, 1.5, Cells8, 3, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.scale, tt.radius, tt.nb)
			if g.CellWidth != tt.wantWidth {
				t.Errorf("CellWidth = %v, want %v", g.CellWidth, tt.wantWidth)
			}
			if g.Resolution != tt.wantRes {
				t.Errorf("Resolution = %d, want %d", g.Resolution, tt.wantRes)
			}
			if g.CellCount != tt.wantRes*tt.wantRes*tt.wantRes {
				t.Errorf("CellCount = %d", g.CellCount)
			}
			// Grid must extend strictly past the domain on both sides
			upper := g.Origin.X + float64(g.Resolution)*g.CellWidth
			if g.Origin.X >= -tt.scale || upper <= tt.scale {
				t.Errorf("grid [%v, %v) does not cover [-%v, %v]", g.Origin.X, upper, tt.scale, tt.scale)
			}
		})
	}
}

func TestGridCoversDomainFaces(t *testing.T) {
	tests := []struct {
		scale, radius float64
	}{
		{1.2, 0.2},
		{0.6, 0.1},
		{100, 5},
		{7, 1.5},
		{0.3, 0.05},
		{2.4, 0.4},
		{30, 0.1},
	}
	for _, tt := range tests {
		for _, nb := range []Neighborhood{Cells8, Cells27} {
			g := NewGrid(tt.scale, tt.radius, nb)
			s := tt.scale
			for _, c := range []r3.Vec{
				{X: -s, Y: -s, Z: -s},
				{X: s, Y: s, Z: s},
				{X: s, Y: -s, Z: -s},
				{X: -s, Y: s, Z: -s},
				{X: -s, Y: -s, Z: s},
			} {
				x, y, z := g.CellCoord(c)
				for _, v := range []int{x, y, z} {
					if v < 0 || v >= g.Resolution {
						t.Errorf("scale %v radius %v %v: corner %v hashes to (%d,%d,%d), resolution %d",
							tt.scale, tt.radius, nb, c, x, y, z, g.Resolution)
						break
					}
				}
				if id := g.CellOf(c); id < 0 || id >= g.CellCount {
					t.Errorf("scale %v radius %v %v: CellOf(%v) = %d, cell count %d",
						tt.scale, tt.radius, nb, c, id, g.CellCount)
				}
			}
		}
	}
}

func TestCellOf(t *testing.T) {
	g := NewGrid(100, 5, Cells8) // width 10, origin -110, R 22

	tests := []struct {
		p    r3.Vec
		want int
	}{
		{r3.Vec{X: -110, Y: -110, Z: -110}, 0},
		{r3.Vec{X: -100.5, Y: -110, Z: -110}, 0},
		{r3.Vec{X: -100, Y: -110, Z: -110}, 1},
		{r3.Vec{X: 0, Y: 0, Z: 0}, 11 + 11*22 + 11*22*22},
		{r3.Vec{X: 100, Y: 100, Z: 100}, 21 + 21*22 + 21*22*22},
		{r3.Vec{X: -100, Y: -100, Z: -100}, 1 + 1*22 + 1*22*22},
	}
	for _, tt := range tests {
		if got := g.CellOf(tt.p); got != tt.want {
			t.Errorf("CellOf(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestSpan(t *testing.T) {
	t.Run("cells8 interior", func(t *testing.T) {
		g := NewGrid(100, 5, Cells8)
		// 12 is 2 into cell 12 (-110 + 12*10 = 10): search box [7, 17] spans cells 11 and 12
		s := g.Span(r3.Vec{X: 12, Y: 15, Z: 19})
		want := CellSpan{Min: [3]int{11, 12, 12}, Max: [3]int{12, 13, 13}}
		if s != want {
			t.Errorf("Span = %+v, want %+v", s, want)
		}
		if s.Cells() != 8 {
			t.Errorf("Cells() = %d, want 8", s.Cells())
		}
	})

	t.Run("cells27 interior", func(t *testing.T) {
		g := NewGrid(100, 5, Cells27)
		s := g.Span(r3.Vec{})
		if s.Cells() != 27 {
			t.Errorf("Cells() = %d, want 27", s.Cells())
		}
	})

	t.Run("clamped at domain edge", func(t *testing.T) {
		g := NewGrid(100, 5, Cells27)
		s := g.Span(r3.Vec{X: 100, Y: -100, Z: 0})
		if s.Max[0] != g.Resolution-1 || s.Min[1] != 0 {
			t.Errorf("Span = %+v not clamped to [0, %d)", s, g.Resolution)
		}
	})
}

func TestSpanFindsEveryNeighbor(t *testing.T) {
	// Any point within the search radius must hash into the span.
	for _, nb := range []Neighborhood{Cells8, Cells27} {
		g := NewGrid(20, 3, nb)
		centers := []r3.Vec{{}, {X: 19.9, Y: -19.9, Z: 0.3}, {X: 2.999, Y: 3.001, Z: -6}}
		for _, c := range centers {
			span := g.Span(c)
			for _, d := range []r3.Vec{{X: 2.99}, {Y: -2.99}, {Z: 2.99}, {X: 1.7, Y: -1.7, Z: 1.7}} {
				p := r3.Add(c, d)
				if math.Abs(p.X) > 20 || math.Abs(p.Y) > 20 || math.Abs(p.Z) > 20 {
					continue
				}
				x, y, z := g.CellCoord(p)
				if x < span.Min[0] || x > span.Max[0] || y < span.Min[1] || y > span.Max[1] || z < span.Min[2] || z > span.Max[2] {
					t.Errorf("%v: neighbor %v of %v in cell (%d,%d,%d) outside span %+v", nb, p, c, x, y, z, span)
				}
			}
		}
	}
}

func TestCellSpanUnion(t *testing.T) {
	a := CellSpan{Min: [3]int{1, 1, 1}, Max: [3]int{2, 2, 2}}
	b := CellSpan{Min: [3]int{2, 0, 3}, Max: [3]int{4, 1, 3}}
	u := a.Union(b)
	want := CellSpan{Min: [3]int{1, 0, 1}, Max: [3]int{4, 2, 3}}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}
	if u.Cells() != 4*3*3 {
		t.Errorf("Cells() = %d, want 36", u.Cells())
	}
}
