package sim

import (
	"fmt"
)

// VelocityBias is added to every velocity component copied for rendering,
// keeping colors derived from it away from black.
const VelocityBias = 0.3

// CopyToRender fills positions and velocities with one (x, y, z, 1) quad
// per particle. Positions are scaled by -1/SceneScale into the viewer's
// unit cube; velocities get VelocityBias added per component.
// Both slices must hold exactly 4*Len() floats.
func (s *Simulation) CopyToRender(positions, velocities []float32) error {
	if s.closed {
		return ErrClosed
	}
	want := 4 * s.Len()
	if len(positions) != want || len(velocities) != want {
		return fmt.Errorf("sim: render buffers have %d and %d floats, want %d",
			len(positions), len(velocities), want)
	}

	b := s.bufs
	scale := -1 / s.params.SceneScale
	s.parallel(s.Len(), func(_, i0, i1 int) {
		for i := i0; i < i1; i++ {
			p := b.Particles.Pos[i]
			v := b.Particles.Vel[i]
			o := 4 * i

			positions[o] = float32(p.X * scale)
			positions[o+1] = float32(p.Y * scale)
			positions[o+2] = float32(p.Z * scale)
			positions[o+3] = 1

			velocities[o] = float32(v.X + VelocityBias)
			velocities[o+1] = float32(v.Y + VelocityBias)
			velocities[o+2] = float32(v.Z + VelocityBias)
			velocities[o+3] = 1
		}
	})
	return nil
}
