// Package game drives the flock simulation for the viewer and headless runs.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/sim"
	"github.com/pthm-cable/boids/telemetry"
	"github.com/pthm-cable/boids/ui"
)

// cameraDistance frames the unit view cube with some margin.
const cameraDistance = 4.5

// Options configures game behavior.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int // ticks per Update call (default 1)
}

// Game holds the simulation and everything that watches or draws it.
type Game struct {
	cfg      *config.Config
	sim      *sim.Simulation
	strategy sim.Strategy
	dt       float64

	paused         bool
	stepsPerUpdate int
	headless       bool

	// Cross-validation
	validateEvery  int64
	lastValidation float64 // -1 until the first check

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.FlockStats)
	lastStats     telemetry.FlockStats

	// Viewer, nil when headless
	camera   *camera.Orbit
	flock    *renderer.FlockRenderer
	overlays *ui.OverlayRegistry
	hud      *ui.HUD
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel

	screenWidth, screenHeight int32
}

// NewGameWithOptions builds the simulation from the config and, unless
// headless, the viewer around it. The raylib window must already be open in
// graphical mode.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	strategy, err := sim.ParseStrategy(cfg.Simulation.Strategy)
	if err != nil {
		return nil, err
	}

	s, err := sim.New(sim.ParamsFromConfig(cfg), rand.New(rand.NewSource(opts.Seed)))
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:            cfg,
		sim:            s,
		strategy:       strategy,
		dt:             cfg.Simulation.DT,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
		headless:       opts.Headless,
		validateEvery:  int64(cfg.Telemetry.ValidateEvery),
		lastValidation: -1,
		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Simulation.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats:       opts.LogStats,
		screenWidth:    int32(cfg.Screen.Width),
		screenHeight:   int32(cfg.Screen.Height),
	}
	s.SetPerfCollector(g.perfCollector)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			s.Close()
			return nil, fmt.Errorf("writing config snapshot: %w", err)
		}
		g.outputManager = om
	}

	if !opts.Headless {
		g.camera = camera.New(cameraDistance)
		g.flock = renderer.NewFlockRenderer(s.Len(), s.Grid(), float32(cfg.Screen.PointSize))
		g.overlays = ui.NewOverlayRegistry()
		g.hud = ui.NewHUD()
		g.perf = ui.NewPerfPanel(10, 120, 260)
		g.controls = ui.NewControlsPanel(g.screenWidth-230, 10, 220)
	}

	slog.Info("game initialized",
		"strategy", strategy.String(),
		"seed", opts.Seed,
		"headless", opts.Headless,
		"validate_every", g.validateEvery,
		"output_dir", opts.OutputDir,
	)
	return g, nil
}

// SetStatsCallback registers fn to receive every flushed stats window.
func (g *Game) SetStatsCallback(fn func(telemetry.FlockStats)) {
	g.statsCallback = fn
}

// SetStrategy switches the stepping strategy from the next tick on.
func (g *Game) SetStrategy(s sim.Strategy) {
	if s == g.strategy {
		return
	}
	slog.Info("strategy changed", "tick", g.sim.Tick(), "from", g.strategy.String(), "to", s.String())
	g.strategy = s
	g.perfCollector.Reset()
}

// Strategy returns the active stepping strategy.
func (g *Game) Strategy() sim.Strategy { return g.strategy }

// Update runs one frame of input handling and simulation.
func (g *Game) Update() error {
	g.handleInput()
	if g.paused {
		return nil
	}
	return g.advance()
}

// UpdateHeadless runs simulation steps without input or rendering.
func (g *Game) UpdateHeadless() error {
	return g.advance()
}

func (g *Game) advance() error {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.simulationStep(); err != nil {
			return err
		}
	}
	return nil
}

// simulationStep advances the flock one tick and runs the periodic hooks.
func (g *Game) simulationStep() error {
	if err := g.sim.Step(g.strategy, g.dt); err != nil {
		return fmt.Errorf("tick %d: %w", g.sim.Tick(), err)
	}
	tick := g.sim.Tick()
	if g.validateEvery > 0 && tick%g.validateEvery == 0 {
		if err := g.validate(); err != nil {
			return err
		}
	}
	g.flushTelemetry()
	return nil
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 {
	return g.sim.Tick()
}

// Simulation exposes the underlying simulation.
func (g *Game) Simulation() *sim.Simulation { return g.sim }

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.FlockStats { return g.lastStats }

// occupiedCells returns the cell ranges when the active strategy maintains them.
func (g *Game) occupiedCells() *components.CellRanges {
	if g.strategy == sim.BruteForce {
		return nil
	}
	return g.sim.Cells()
}

// Unload flushes output files and releases the simulation.
func (g *Game) Unload() {
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}
	if err := g.sim.Close(); err != nil {
		slog.Error("failed to close simulation", "error", err)
	}
}
