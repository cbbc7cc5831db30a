package systems

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Rules holds the scene-wide flocking parameters.
type Rules struct {
	Rule1Distance float64 // cohesion
	Rule2Distance float64 // separation
	Rule3Distance float64 // alignment
	Rule1Scale    float64
	Rule2Scale    float64
	Rule3Scale    float64
	MaxSpeed      float64
}

// MaxRadius returns the largest of the three rule distances.
func (r *Rules) MaxRadius() float64 {
	return max(r.Rule1Distance, r.Rule2Distance, r.Rule3Distance)
}

// RuleAccumulator sums the contributions of one particle's neighbors.
// Neighbor visit order does not affect the result beyond float rounding.
type RuleAccumulator struct {
	rules *Rules
	pos   r3.Vec

	center     r3.Vec // sum of cohesion neighbor positions
	cohesionN  int
	separation r3.Vec // sum of offsets away from separation neighbors
	alignment  r3.Vec // sum of alignment neighbor velocities
	alignmentN int
}

// Reset prepares the accumulator for the particle at pos.
func (a *RuleAccumulator) Reset(rules *Rules, pos r3.Vec) {
	*a = RuleAccumulator{rules: rules, pos: pos}
}

// Add folds one neighbor into the running sums. The caller excludes self.
func (a *RuleAccumulator) Add(p, v r3.Vec) {
	offset := r3.Sub(p, a.pos)
	dist := r3.Norm(offset)

	if dist < a.rules.Rule1Distance {
		a.center = r3.Add(a.center, p)
		a.cohesionN++
	}
	if dist < a.rules.Rule2Distance {
		a.separation = r3.Sub(a.separation, offset)
	}
	if dist < a.rules.Rule3Distance {
		a.alignment = r3.Add(a.alignment, v)
		a.alignmentN++
	}
}

// Neighbors returns how many particles fell inside the cohesion radius.
func (a *RuleAccumulator) Neighbors() int { return a.cohesionN }

// Velocity returns vel plus the three rule contributions, clamped to MaxSpeed.
func (a *RuleAccumulator) Velocity(vel r3.Vec) r3.Vec {
	r := a.rules
	out := vel

	if a.cohesionN > 0 {
		mean := r3.Scale(1/float64(a.cohesionN), a.center)
		out = r3.Add(out, r3.Scale(r.Rule1Scale, r3.Sub(mean, a.pos)))
	}
	out = r3.Add(out, r3.Scale(r.Rule2Scale, a.separation))
	if a.alignmentN > 0 {
		mean := r3.Scale(1/float64(a.alignmentN), a.alignment)
		out = r3.Add(out, r3.Scale(r.Rule3Scale, mean))
	}

	return ClampSpeed(out, r.MaxSpeed)
}

// ClampSpeed rescales v to maxSpeed if it is faster, keeping its direction.
func ClampSpeed(v r3.Vec, maxSpeed float64) r3.Vec {
	speed := r3.Norm(v)
	if speed > maxSpeed {
		return r3.Scale(maxSpeed/speed, v)
	}
	return v
}
