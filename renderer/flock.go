// Package renderer draws the flock in 3D from the render hand-off buffers.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/systems"
)

// ColorMode selects how particles are tinted.
type ColorMode uint8

const (
	ColorFlat ColorMode = iota
	ColorVelocity
	ColorCell
)

// DrawOptions controls what Draw puts in the scene.
type DrawOptions struct {
	Colors        ColorMode
	ShowBounds    bool
	OccupiedCells *components.CellRanges // nil hides the cell overlay
}

// FlockRenderer owns the hand-off buffers the simulation copies into and
// draws them inside the unit view cube.
type FlockRenderer struct {
	Positions  []float32 // (x, y, z, 1) per particle, view space
	Velocities []float32 // (vx, vy, vz, 1) per particle, biased

	grid      *systems.Grid
	pointSize float32
}

// NewFlockRenderer allocates hand-off buffers for n particles.
// pointSize <= 0 draws single-pixel points.
func NewFlockRenderer(n int, grid *systems.Grid, pointSize float32) *FlockRenderer {
	return &FlockRenderer{
		Positions:  make([]float32, 4*n),
		Velocities: make([]float32, 4*n),
		grid:       grid,
		pointSize:  pointSize,
	}
}

// Camera3D converts the orbit camera to a raylib camera.
func Camera3D(o *camera.Orbit) rl.Camera3D {
	eye, up := o.Eye(), o.Up()
	return rl.Camera3D{
		Position:   rl.NewVector3(eye.X(), eye.Y(), eye.Z()),
		Target:     rl.NewVector3(o.Target.X(), o.Target.Y(), o.Target.Z()),
		Up:         rl.NewVector3(up.X(), up.Y(), up.Z()),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

// Draw renders the flock from cam. Must be called between BeginDrawing and EndDrawing.
func (r *FlockRenderer) Draw(cam *camera.Orbit, opts DrawOptions) {
	rl.BeginMode3D(Camera3D(cam))
	defer rl.EndMode3D()

	if opts.ShowBounds {
		rl.DrawCubeWires(rl.NewVector3(0, 0, 0), 2, 2, 2, rl.DarkGray)
	}
	if opts.OccupiedCells != nil {
		r.drawCells(opts.OccupiedCells)
	}

	n := len(r.Positions) / 4
	for i := 0; i < n; i++ {
		o := 4 * i
		p := rl.NewVector3(r.Positions[o], r.Positions[o+1], r.Positions[o+2])
		color := r.particleColor(i, opts.Colors)
		if r.pointSize > 0 {
			rl.DrawCube(p, r.pointSize, r.pointSize, r.pointSize, color)
		} else {
			rl.DrawPoint3D(p, color)
		}
	}
}

func (r *FlockRenderer) particleColor(i int, mode ColorMode) rl.Color {
	o := 4 * i
	switch mode {
	case ColorVelocity:
		return rl.Color{
			R: channel(r.Velocities[o]),
			G: channel(r.Velocities[o+1]),
			B: channel(r.Velocities[o+2]),
			A: 255,
		}
	case ColorCell:
		cell := r.grid.CellOf(r.worldPos(i))
		// Golden-angle hue steps
		hue := float32(math.Mod(float64(cell)*137.508, 360))
		return rl.ColorFromHSV(hue, 0.7, 0.95)
	}
	return rl.RayWhite
}

// worldPos undoes the hand-off's -1/SceneScale mapping.
func (r *FlockRenderer) worldPos(i int) r3.Vec {
	s := -r.grid.SceneScale
	o := 4 * i
	return r3.Vec{
		X: float64(r.Positions[o]) * s,
		Y: float64(r.Positions[o+1]) * s,
		Z: float64(r.Positions[o+2]) * s,
	}
}

// drawCells outlines every occupied cell, shaded by particle count.
func (r *FlockRenderer) drawCells(cells *components.CellRanges) {
	g := r.grid
	scale := float32(-1 / g.SceneScale)
	w := float32(g.CellWidth) * -scale
	res := g.Resolution

	for c := 0; c < cells.Len(); c++ {
		if !cells.Occupied(c) {
			continue
		}
		x, y, z := c%res, (c/res)%res, c/(res*res)
		center := r3.Vec{
			X: g.Origin.X + (float64(x)+0.5)*g.CellWidth,
			Y: g.Origin.Y + (float64(y)+0.5)*g.CellWidth,
			Z: g.Origin.Z + (float64(z)+0.5)*g.CellWidth,
		}
		count := cells.End[c] - cells.Start[c] + 1
		alpha := uint8(min(40+int(count)*20, 255))
		rl.DrawCubeWires(
			rl.NewVector3(float32(center.X)*scale, float32(center.Y)*scale, float32(center.Z)*scale),
			w, w, w, rl.Color{R: 80, G: 160, B: 220, A: alpha},
		)
	}
}

// channel maps a biased velocity component to a color byte.
func channel(v float32) uint8 {
	return uint8(min(max(v, 0), 1) * 255)
}
