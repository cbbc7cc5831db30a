package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/sim"
	"github.com/pthm-cable/boids/ui"
)

const controlsLegend = "[Space] pause  [</>] steps  [1-4] strategy  [X] validate  " +
	"[Arrows/RMB] orbit  [Wheel] zoom  [Home] reset  [B/G/V/C/P/Tab] overlays"

// Draw renders the flock and the UI panels. It does nothing when headless.
func (g *Game) Draw() {
	if g.headless {
		return
	}
	g.perfCollector.RecordFrame()

	if err := g.sim.CopyToRender(g.flock.Positions, g.flock.Velocities); err != nil {
		slog.Error("render hand-off failed", "error", err)
		return
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.flock.Draw(g.camera, g.drawOptions())

	g.hud.Draw(ui.HUDData{
		Title:          "Boids",
		Population:     g.sim.Len(),
		Strategy:       g.strategy.String(),
		Neighborhood:   g.sim.Grid().Neighborhood.String(),
		Tick:           g.sim.Tick(),
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
		Polarization:   g.lastStats.Polarization,
		ValidationErr:  g.lastValidation,
		ValidationTol:  g.cfg.Telemetry.ValidateTolerance,
	})
	g.hud.DrawControls(g.screenHeight, controlsLegend)

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perf.Draw(g.perfCollector.Stats())
	}
	if g.overlays.IsEnabled(ui.OverlayControls) {
		g.applyControls(g.controls.Draw(g.controlsState(), g.overlays))
	}

	rl.EndDrawing()
}

func (g *Game) drawOptions() renderer.DrawOptions {
	opts := renderer.DrawOptions{
		ShowBounds: g.overlays.IsEnabled(ui.OverlayBounds),
	}
	switch {
	case g.overlays.IsEnabled(ui.OverlayVelocityColors):
		opts.Colors = renderer.ColorVelocity
	case g.overlays.IsEnabled(ui.OverlayCellColors):
		opts.Colors = renderer.ColorCell
	}
	if g.overlays.IsEnabled(ui.OverlayOccupiedCells) {
		opts.OccupiedCells = g.occupiedCells()
	}
	return opts
}

func (g *Game) controlsState() ui.ControlsState {
	names := make([]string, len(sim.Strategies))
	active := 0
	for i, s := range sim.Strategies {
		names[i] = s.String()
		if s == g.strategy {
			active = i
		}
	}
	return ui.ControlsState{
		Strategies:     names,
		Active:         active,
		Paused:         g.paused,
		StepsPerUpdate: g.stepsPerUpdate,
	}
}

// applyControls carries out what the user clicked on the controls panel.
func (g *Game) applyControls(act ui.ControlsAction) {
	if act.Strategy >= 0 && act.Strategy < len(sim.Strategies) {
		g.SetStrategy(sim.Strategies[act.Strategy])
	}
	if act.TogglePause {
		g.paused = !g.paused
	}
	if act.Validate {
		g.validateNow()
	}
	if act.ResetCamera {
		g.camera.Reset()
	}
	g.stepsPerUpdate = act.StepsPerUpdate
}
