package components

import (
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestAllocateSizes(t *testing.T) {
	b, err := Allocate(100, 64, 0, "test")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if b.Particles.Len() != 100 {
		t.Errorf("particles = %d, want 100", b.Particles.Len())
	}
	for name, n := range map[string]int{
		"vel":           len(b.Particles.Vel),
		"next_vel":      len(b.Particles.NextVel),
		"array_indices": len(b.Pairs.ArrayIndices),
		"grid_indices":  len(b.Pairs.GridIndices),
		"sorted_pos":    len(b.Sorted.Pos),
		"sorted_vel":    len(b.Sorted.Vel),
		"sorted_next":   len(b.Sorted.NextVel),
	} {
		if n != 100 {
			t.Errorf("%s len = %d, want 100", name, n)
		}
	}
	if b.Cells.Len() != 64 || len(b.Cells.End) != 64 {
		t.Errorf("cell ranges = %d/%d, want 64", len(b.Cells.Start), len(b.Cells.End))
	}

	want := int64(6*100)*vecBytes + int64(2*100+2*64)*int32Bytes
	if b.Bytes() != want {
		t.Errorf("Bytes() = %d, want %d", b.Bytes(), want)
	}
}

func TestAllocateBudget(t *testing.T) {
	// Enough for the three particle store buffers only
	limit := 3 * 10 * vecBytes
	_, err := Allocate(10, 8, limit, "sim.New")
	if err == nil {
		t.Fatal("expected budget error")
	}

	var allocErr *AllocError
	if !errors.As(err, &allocErr) {
		t.Fatalf("error %T is not *AllocError", err)
	}
	if allocErr.Buffer != BufSortedPosition {
		t.Errorf("failing buffer = %q, want %q", allocErr.Buffer, BufSortedPosition)
	}
	if allocErr.Where != "sim.New" {
		t.Errorf("where = %q, want sim.New", allocErr.Where)
	}
	if !strings.Contains(err.Error(), BufSortedPosition) || !strings.Contains(err.Error(), "sim.New") {
		t.Errorf("message %q should name buffer and call site", err)
	}
}

func TestAllocateRejectsEmpty(t *testing.T) {
	tests := []struct {
		name       string
		n, cells   int
		wantBuffer string
	}{
		{"no particles", 0, 8, BufPosition},
		{"no cells", 8, 0, BufCellStart},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Allocate(tc.n, tc.cells, 0, "test")
			var allocErr *AllocError
			if !errors.As(err, &allocErr) {
				t.Fatalf("expected *AllocError, got %v", err)
			}
			if allocErr.Buffer != tc.wantBuffer {
				t.Errorf("buffer = %q, want %q", allocErr.Buffer, tc.wantBuffer)
			}
		})
	}
}

func TestSwapVelocities(t *testing.T) {
	s := ParticleStore{
		Pos:     make([]r3.Vec, 1),
		Vel:     []r3.Vec{{X: 1}},
		NextVel: []r3.Vec{{X: 2}},
	}
	s.SwapVelocities()
	if s.Vel[0].X != 2 || s.NextVel[0].X != 1 {
		t.Errorf("after swap vel=%v next=%v", s.Vel[0], s.NextVel[0])
	}
}

func TestRelease(t *testing.T) {
	b, err := Allocate(4, 4, 0, "test")
	if err != nil {
		t.Fatal(err)
	}
	b.Release()
	if b.Particles.Pos != nil || b.Cells.Start != nil || b.Bytes() != 0 {
		t.Error("Release left buffers behind")
	}
}
