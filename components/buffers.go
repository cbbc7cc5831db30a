// Package components defines the per-particle and per-cell buffers the
// simulation stages read and write.
package components

import (
	"fmt"
	"math"
	"unsafe"

	"gonum.org/v1/gonum/spatial/r3"
)

// EmptyCell marks a cell with no particles in CellRanges.
const EmptyCell int32 = -1

// Buffer names reported by AllocError.
const (
	BufPosition        = "position"
	BufVelocity        = "velocity"
	BufNextVelocity    = "next_velocity"
	BufArrayIndices    = "particle_array_indices"
	BufGridIndices     = "particle_grid_indices"
	BufCellStart       = "cell_start"
	BufCellEnd         = "cell_end"
	BufSortedPosition  = "sorted_position"
	BufSortedVelocity  = "sorted_velocity"
	BufSortedNextVeloc = "sorted_next_velocity"
)

var (
	vecBytes   = int64(unsafe.Sizeof(r3.Vec{}))
	int32Bytes = int64(unsafe.Sizeof(int32(0)))
)

// AllocError reports a buffer that could not be sized as required at init.
type AllocError struct {
	Buffer string // which buffer
	Where  string // call site that requested it
	Len    int    // requested element count
	Bytes  int64  // requested size in bytes
	Reason string
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("%s: allocating %s (%d elements, %d bytes): %s",
		e.Where, e.Buffer, e.Len, e.Bytes, e.Reason)
}

// ParticleStore owns position and velocity for every particle.
// Slot i always belongs to particle id i.
type ParticleStore struct {
	Pos     []r3.Vec
	Vel     []r3.Vec // read by rule evaluation
	NextVel []r3.Vec // written by rule evaluation
}

// Len returns the population size.
func (s *ParticleStore) Len() int { return len(s.Pos) }

// SwapVelocities makes the freshly written velocities current.
func (s *ParticleStore) SwapVelocities() {
	s.Vel, s.NextVel = s.NextVel, s.Vel
}

// IndexPairs are parallel (particle id, cell id) arrays sorted by cell id.
type IndexPairs struct {
	ArrayIndices []int32 // particle id occupying each sorted slot
	GridIndices  []int32 // cell id of each sorted slot
}

// CellRanges holds inclusive sorted-slot bounds per cell, EmptyCell when unoccupied.
type CellRanges struct {
	Start []int32
	End   []int32
}

// Len returns the number of cells.
func (c *CellRanges) Len() int { return len(c.Start) }

// Occupied reports whether any particle was binned into cell.
func (c *CellRanges) Occupied(cell int) bool { return c.Start[cell] != EmptyCell }

// ReorderBuffers hold particle data gathered into sorted-slot order.
type ReorderBuffers struct {
	Pos     []r3.Vec
	Vel     []r3.Vec
	NextVel []r3.Vec
}

// Buffers is every array the simulation needs, sized once at init.
type Buffers struct {
	Particles ParticleStore
	Pairs     IndexPairs
	Cells     CellRanges
	Sorted    ReorderBuffers

	bytes int64
}

// allocator hands out buffers against an optional byte limit.
type allocator struct {
	where string
	limit int64 // 0 = unlimited
	used  int64
}

func (a *allocator) reserve(name string, n int, elem int64) error {
	if n < 0 || int64(n) > math.MaxInt32 {
		return &AllocError{Buffer: name, Where: a.where, Len: n, Bytes: int64(n) * elem,
			Reason: "length outside int32 index range"}
	}
	size := int64(n) * elem
	if a.limit > 0 && a.used+size > a.limit {
		return &AllocError{Buffer: name, Where: a.where, Len: n, Bytes: size,
			Reason: fmt.Sprintf("exceeds buffer budget (%d of %d bytes already in use)", a.used, a.limit)}
	}
	a.used += size
	return nil
}

func (a *allocator) vecs(name string, n int) ([]r3.Vec, error) {
	if err := a.reserve(name, n, vecBytes); err != nil {
		return nil, err
	}
	return make([]r3.Vec, n), nil
}

func (a *allocator) ints(name string, n int) ([]int32, error) {
	if err := a.reserve(name, n, int32Bytes); err != nil {
		return nil, err
	}
	return make([]int32, n), nil
}

// Allocate sizes every buffer for n particles and cellCount cells.
// limit caps the total bytes (0 = unlimited); where names the caller for diagnostics.
func Allocate(n, cellCount int, limit int64, where string) (*Buffers, error) {
	if n < 1 {
		return nil, &AllocError{Buffer: BufPosition, Where: where, Len: n, Reason: "population must be positive"}
	}
	if cellCount < 1 {
		return nil, &AllocError{Buffer: BufCellStart, Where: where, Len: cellCount, Reason: "grid has no cells"}
	}

	a := &allocator{where: where, limit: limit}
	b := &Buffers{}

	vecs := []struct {
		name string
		dst  *[]r3.Vec
	}{
		{BufPosition, &b.Particles.Pos},
		{BufVelocity, &b.Particles.Vel},
		{BufNextVelocity, &b.Particles.NextVel},
		{BufSortedPosition, &b.Sorted.Pos},
		{BufSortedVelocity, &b.Sorted.Vel},
		{BufSortedNextVeloc, &b.Sorted.NextVel},
	}
	for _, v := range vecs {
		buf, err := a.vecs(v.name, n)
		if err != nil {
			return nil, err
		}
		*v.dst = buf
	}

	ints := []struct {
		name string
		n    int
		dst  *[]int32
	}{
		{BufArrayIndices, n, &b.Pairs.ArrayIndices},
		{BufGridIndices, n, &b.Pairs.GridIndices},
		{BufCellStart, cellCount, &b.Cells.Start},
		{BufCellEnd, cellCount, &b.Cells.End},
	}
	for _, v := range ints {
		buf, err := a.ints(v.name, v.n)
		if err != nil {
			return nil, err
		}
		*v.dst = buf
	}

	b.bytes = a.used
	return b, nil
}

// Bytes returns the total size of all buffers.
func (b *Buffers) Bytes() int64 { return b.bytes }

// Release drops every buffer so the memory can be collected.
func (b *Buffers) Release() {
	*b = Buffers{}
}
