// Package sim owns the flocking simulation: its buffers, the worker fleet,
// and the per-tick stage pipeline for each stepping strategy.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/keysort"
	"github.com/pthm-cable/boids/systems"
	"github.com/pthm-cable/boids/telemetry"
)

var (
	// ErrClosed is returned by any operation on a closed Simulation.
	ErrClosed = errors.New("sim: simulation is closed")
	// ErrInvalidTimestep is returned when a step is requested with dt <= 0.
	ErrInvalidTimestep = errors.New("sim: timestep must be positive")
	// ErrUnknownStrategy is returned for a strategy name or value that does not exist.
	ErrUnknownStrategy = errors.New("sim: unknown strategy")
)

// Strategy selects how neighbors are found during rule evaluation.
type Strategy uint8

const (
	BruteForce Strategy = iota
	ScatteredGrid
	CoherentGrid
	CoherentGridCached
)

// Strategies lists every strategy in declaration order.
var Strategies = []Strategy{BruteForce, ScatteredGrid, CoherentGrid, CoherentGridCached}

func (s Strategy) String() string {
	switch s {
	case BruteForce:
		return config.StrategyBruteForce
	case ScatteredGrid:
		return config.StrategyScattered
	case CoherentGrid:
		return config.StrategyCoherent
	case CoherentGridCached:
		return config.StrategyCoherentCached
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// ParseStrategy maps a config name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Params is everything New needs to size and seed a simulation.
type Params struct {
	Population     int
	SceneScale     float64
	Rules          systems.Rules
	Neighborhood   systems.Neighborhood
	Workers        int   // 0 = GOMAXPROCS
	Threshold      int   // stages over fewer items run on the caller
	MaxBufferBytes int64 // 0 = unlimited
}

// Grid returns the grid New builds for these params.
func (p Params) Grid() systems.Grid {
	return systems.NewGrid(p.SceneScale, p.Rules.MaxRadius(), p.Neighborhood)
}

// ParamsFromConfig builds Params from a loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	nb := systems.Cells8
	if cfg.Simulation.Neighborhood == config.NeighborhoodCells27 {
		nb = systems.Cells27
	}
	r := cfg.Rules
	return Params{
		Population: cfg.Simulation.Population,
		SceneScale: cfg.Simulation.SceneScale,
		Rules: systems.Rules{
			Rule1Distance: r.Rule1Distance,
			Rule2Distance: r.Rule2Distance,
			Rule3Distance: r.Rule3Distance,
			Rule1Scale:    r.Rule1Scale,
			Rule2Scale:    r.Rule2Scale,
			Rule3Scale:    r.Rule3Scale,
			MaxSpeed:      r.MaxSpeed,
		},
		Neighborhood:   nb,
		Workers:        cfg.Derived.Workers,
		Threshold:      cfg.Parallel.Threshold,
		MaxBufferBytes: cfg.Memory.MaxBufferBytes,
	}
}

// Simulation holds the complete flock state. It is not safe for concurrent use.
type Simulation struct {
	params Params
	rules  systems.Rules
	grid   systems.Grid

	bufs   *components.Buffers
	fleet  *Fleet
	sorter *keysort.Sorter
	caches []systems.BoundaryCache // one per worker

	stage          Stage
	tick           int64
	cacheFallbacks int64
	closed         bool

	perf *telemetry.PerfCollector
}

// New allocates every buffer, seeds positions uniformly in the domain cube
// with zero velocities, and derives the grid from the rule radii.
func New(p Params, rng *rand.Rand) (*Simulation, error) {
	if p.SceneScale <= 0 {
		return nil, fmt.Errorf("sim: scene scale must be positive, got %g", p.SceneScale)
	}
	radius := p.Rules.MaxRadius()
	if radius <= 0 {
		return nil, fmt.Errorf("sim: rule distances must be positive, got max %g", radius)
	}

	grid := p.Grid()
	bufs, err := components.Allocate(p.Population, grid.CellCount, p.MaxBufferBytes, "sim.New")
	if err != nil {
		return nil, fmt.Errorf("allocating simulation buffers: %w", err)
	}

	fleet := NewFleet(p.Workers)
	s := &Simulation{
		params: p,
		rules:  p.Rules,
		grid:   grid,
		bufs:   bufs,
		fleet:  fleet,
		sorter: keysort.NewSorter(p.Population, fleet),
		caches: make([]systems.BoundaryCache, fleet.Workers()),
	}

	scale := p.SceneScale
	for i := range bufs.Particles.Pos {
		bufs.Particles.Pos[i] = r3.Vec{
			X: (rng.Float64()*2 - 1) * scale,
			Y: (rng.Float64()*2 - 1) * scale,
			Z: (rng.Float64()*2 - 1) * scale,
		}
	}

	slog.Info("simulation initialized",
		"population", p.Population,
		"scene_scale", scale,
		"neighborhood", p.Neighborhood.String(),
		"cell_width", grid.CellWidth,
		"grid_resolution", grid.Resolution,
		"cell_count", grid.CellCount,
		"workers", fleet.Workers(),
		"sort_runs", s.sorter.Runs(),
		"buffer_bytes", bufs.Bytes(),
	)
	return s, nil
}

// SetState overwrites positions and velocities. Both slices must have Len() entries.
func (s *Simulation) SetState(pos, vel []r3.Vec) error {
	if s.closed {
		return ErrClosed
	}
	n := s.Len()
	if len(pos) != n || len(vel) != n {
		return fmt.Errorf("sim: state has %d positions and %d velocities, want %d", len(pos), len(vel), n)
	}
	copy(s.bufs.Particles.Pos, pos)
	copy(s.bufs.Particles.Vel, vel)
	return nil
}

// SetPerfCollector times every stage of subsequent steps into pc; nil disables timing.
func (s *Simulation) SetPerfCollector(pc *telemetry.PerfCollector) { s.perf = pc }

// Len returns the population size.
func (s *Simulation) Len() int { return s.params.Population }

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int64 { return s.tick }

// Stage returns the stage currently executing, Idle between steps.
func (s *Simulation) Stage() Stage { return s.stage }

// Grid returns the spatial grid.
func (s *Simulation) Grid() *systems.Grid { return &s.grid }

// Rules returns the flocking rules.
func (s *Simulation) Rules() *systems.Rules { return &s.rules }

// Positions returns the live position buffer, indexed by particle id.
func (s *Simulation) Positions() []r3.Vec { return s.bufs.Particles.Pos }

// Velocities returns the live current-velocity buffer, indexed by particle id.
func (s *Simulation) Velocities() []r3.Vec { return s.bufs.Particles.Vel }

// Pairs returns the sorted (particle id, cell id) arrays from the last grid step.
func (s *Simulation) Pairs() *components.IndexPairs { return &s.bufs.Pairs }

// Cells returns the per-cell slot ranges from the last grid step.
func (s *Simulation) Cells() *components.CellRanges { return &s.bufs.Cells }

// Bytes returns the total buffer size.
func (s *Simulation) Bytes() int64 { return s.bufs.Bytes() }

// CacheFallbacks returns how many cached groups spanned too many cells and
// used the uncached walk instead.
func (s *Simulation) CacheFallbacks() int64 { return s.cacheFallbacks }

// Close stops the fleet and releases every buffer.
func (s *Simulation) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.fleet.Stop()
	s.bufs.Release()
	s.caches = nil
	slog.Info("simulation closed", "ticks", s.tick)
	return nil
}
