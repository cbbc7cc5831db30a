package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

// Reorder gathers position and velocity into sorted-slot order for slots [s0, s1).
func Reorder(pairs *components.IndexPairs, store *components.ParticleStore, sorted *components.ReorderBuffers, s0, s1 int) {
	for s := s0; s < s1; s++ {
		id := pairs.ArrayIndices[s]
		sorted.Pos[s] = store.Pos[id]
		sorted.Vel[s] = store.Vel[id]
	}
}

// Restore scatters velocities computed in sorted order back to particle
// order for slots [s0, s1).
func Restore(pairs *components.IndexPairs, sortedNext, next []r3.Vec, s0, s1 int) {
	for s := s0; s < s1; s++ {
		next[pairs.ArrayIndices[s]] = sortedNext[s]
	}
}
