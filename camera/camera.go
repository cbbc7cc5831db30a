// Package camera provides an orbit camera for viewing the flock cube.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// minInclination keeps the eye off the poles, where the up vector degenerates.
const minInclination = 0.05

// Orbit circles a target point at a fixed distance.
// Angles are in radians; inclination is measured from the +Y (up) axis.
type Orbit struct {
	Target      mgl32.Vec3
	Distance    float32
	Inclination float32
	Azimuth     float32

	// Distance constraints
	MinDistance, MaxDistance float32

	home pose
}

// pose is the subset of Orbit that Reset restores.
type pose struct {
	distance, inclination, azimuth float32
}

// New creates a camera looking at the origin from distance, slightly above
// the horizon.
func New(distance float32) *Orbit {
	o := &Orbit{
		Distance:    distance,
		Inclination: math.Pi / 3,
		Azimuth:     math.Pi / 4,
		MinDistance: distance / 4,
		MaxDistance: distance * 4,
	}
	o.home = pose{o.Distance, o.Inclination, o.Azimuth}
	return o
}

// Eye returns the camera position in world coordinates.
func (o *Orbit) Eye() mgl32.Vec3 {
	// mgl32 uses +Z as the pole; swap Y and Z for a Y-up world.
	c := mgl32.SphericalToCartesian(o.Distance, o.Inclination, o.Azimuth)
	return o.Target.Add(mgl32.Vec3{c.X(), c.Z(), c.Y()})
}

// Up returns the camera up vector.
func (o *Orbit) Up() mgl32.Vec3 {
	return mgl32.Vec3{0, 1, 0}
}

// Rotate turns the camera around the target. Inclination is clamped short of
// the poles; azimuth wraps to [0, 2pi).
func (o *Orbit) Rotate(dAzimuth, dInclination float32) {
	o.Azimuth = wrapAngle(o.Azimuth + dAzimuth)
	o.Inclination = mgl32.Clamp(o.Inclination+dInclination, minInclination, math.Pi-minInclination)
}

// SetDistance sets the orbit radius, clamped to min/max.
func (o *Orbit) SetDistance(d float32) {
	o.Distance = mgl32.Clamp(d, o.MinDistance, o.MaxDistance)
}

// ZoomBy divides the orbit radius by factor (factor > 1 moves closer).
func (o *Orbit) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	o.SetDistance(o.Distance / factor)
}

// Reset returns the camera to its initial pose.
func (o *Orbit) Reset() {
	o.Distance = o.home.distance
	o.Inclination = o.home.inclination
	o.Azimuth = o.home.azimuth
}

// wrapAngle maps a to [0, 2pi).
func wrapAngle(a float32) float32 {
	r := float32(math.Mod(float64(a), 2*math.Pi))
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}
