package systems

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Integrate advances particles [i0, i1) by vel*dt and wraps each axis that
// leaves [-scale, scale] to the opposite bound. Only a single bounce is
// applied, so a particle must not travel more than a domain width per tick.
func Integrate(pos, vel []r3.Vec, dt, scale float64, i0, i1 int) {
	for i := i0; i < i1; i++ {
		p := r3.Add(pos[i], r3.Scale(dt, vel[i]))
		p.X = wrapAxis(p.X, scale)
		p.Y = wrapAxis(p.Y, scale)
		p.Z = wrapAxis(p.Z, scale)
		pos[i] = p
	}
}

func wrapAxis(v, scale float64) float64 {
	if v < -scale {
		return scale
	}
	if v > scale {
		return -scale
	}
	return v
}
