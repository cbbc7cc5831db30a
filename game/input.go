package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/sim"
	"github.com/pthm-cable/boids/ui"
)

// strategyKeys selects a strategy by number row position.
var strategyKeys = []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour}

// Radians per frame for arrow keys, and per pixel for mouse drag.
const (
	keyRotateSpeed  = 0.03
	dragRotateSpeed = 0.006
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < ui.MaxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	for i, key := range strategyKeys {
		if i < len(sim.Strategies) && rl.IsKeyPressed(key) {
			g.SetStrategy(sim.Strategies[i])
		}
	}

	// Manual cross-check, useful while paused
	if rl.IsKeyPressed(rl.KeyX) {
		g.validateNow()
	}

	for _, key := range g.overlays.Keys() {
		if rl.IsKeyPressed(key) {
			g.overlays.HandleKeyPress(key)
		}
	}

	g.handleCameraInput()
}

// handleResize keeps the side panels anchored when the window changes size.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.screenWidth = int32(rl.GetScreenWidth())
	g.screenHeight = int32(rl.GetScreenHeight())
	g.controls.SetPosition(g.screenWidth-230, 10)
}

// handleCameraInput processes orbit and zoom controls.
func (g *Game) handleCameraInput() {
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Rotate(keyRotateSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Rotate(-keyRotateSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Rotate(0, keyRotateSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Rotate(0, -keyRotateSpeed)
	}

	// Right-drag orbits; the left button belongs to the panels
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Rotate(-d.X*dragRotateSpeed, -d.Y*dragRotateSpeed)
	}

	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		g.camera.ZoomBy(1 + wheelMove*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// validateNow runs an out-of-schedule cross-check and logs the outcome.
func (g *Game) validateNow() {
	if g.strategy == sim.BruteForce {
		slog.Info("validation skipped", "reason", "brute force is the reference")
		return
	}
	if err := g.validate(); err != nil {
		slog.Error("validation failed", "error", err)
		return
	}
	slog.Info("validation complete", "strategy", g.strategy.String(), "max_deviation", g.lastValidation)
}
