package sim

import (
	"fmt"
	"sync/atomic"

	"github.com/pthm-cable/boids/systems"
	"github.com/pthm-cable/boids/telemetry"
)

// Stage is one step of the per-tick pipeline. Each stage finishes on every
// worker before the next one starts.
type Stage uint8

const (
	Idle Stage = iota
	LabelCells
	Sort
	ResetBoundaries
	LocateBoundaries
	Reorder
	EvaluateRules
	Restore
	Integrate
	SwapBuffers
)

var stageNames = [...]string{
	Idle:             "idle",
	LabelCells:       telemetry.PhaseLabelCells,
	Sort:             telemetry.PhaseSort,
	ResetBoundaries:  telemetry.PhaseResetBoundaries,
	LocateBoundaries: telemetry.PhaseLocateBoundaries,
	Reorder:          telemetry.PhaseReorder,
	EvaluateRules:    telemetry.PhaseEvaluateRules,
	Restore:          telemetry.PhaseRestore,
	Integrate:        telemetry.PhaseIntegrate,
	SwapBuffers:      telemetry.PhaseSwapBuffers,
}

func (st Stage) String() string {
	if int(st) < len(stageNames) {
		return stageNames[st]
	}
	return fmt.Sprintf("stage(%d)", uint8(st))
}

var (
	bruteForcePlan = []Stage{EvaluateRules, Integrate, SwapBuffers}
	scatteredPlan  = []Stage{LabelCells, Sort, ResetBoundaries, LocateBoundaries, EvaluateRules, Integrate, SwapBuffers}
	coherentPlan   = []Stage{LabelCells, Sort, ResetBoundaries, LocateBoundaries, Reorder, EvaluateRules, Restore, Integrate, SwapBuffers}
)

// Plan returns the stages one step of strategy runs, in order.
// The returned slice must not be modified.
func Plan(strategy Strategy) ([]Stage, error) {
	switch strategy {
	case BruteForce:
		return bruteForcePlan, nil
	case ScatteredGrid:
		return scatteredPlan, nil
	case CoherentGrid, CoherentGridCached:
		return coherentPlan, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, strategy)
}

// StepBruteForce advances one tick comparing every pair of particles.
func (s *Simulation) StepBruteForce(dt float64) error { return s.Step(BruteForce, dt) }

// StepScatteredGrid advances one tick using the grid with indirect particle access.
func (s *Simulation) StepScatteredGrid(dt float64) error { return s.Step(ScatteredGrid, dt) }

// StepCoherentGrid advances one tick using the grid over reordered particle data.
func (s *Simulation) StepCoherentGrid(dt float64) error { return s.Step(CoherentGrid, dt) }

// StepCoherentGridCached is StepCoherentGrid with per-group cell bound caching.
func (s *Simulation) StepCoherentGridCached(dt float64) error {
	return s.Step(CoherentGridCached, dt)
}

// Step advances the simulation by dt using strategy.
func (s *Simulation) Step(strategy Strategy, dt float64) error {
	if s.closed {
		return ErrClosed
	}
	if !(dt > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidTimestep, dt)
	}
	plan, err := Plan(strategy)
	if err != nil {
		return err
	}

	if s.perf != nil {
		s.perf.StartTick()
	}
	for _, st := range plan {
		s.runStage(st, strategy, dt)
	}
	if s.perf != nil {
		s.perf.EndTick()
	}

	s.stage = Idle
	s.tick++
	return nil
}

// runStage executes a single stage to completion.
func (s *Simulation) runStage(st Stage, strategy Strategy, dt float64) {
	s.stage = st
	if s.perf != nil {
		s.perf.StartPhase(st.String())
	}

	b := s.bufs
	n := s.Len()

	switch st {
	case LabelCells:
		s.parallel(n, func(_, i0, i1 int) {
			systems.LabelCells(&s.grid, b.Particles.Pos, &b.Pairs, i0, i1)
		})

	case Sort:
		s.sorter.Sort(b.Pairs.GridIndices, b.Pairs.ArrayIndices)

	case ResetBoundaries:
		s.parallel(b.Cells.Len(), func(_, c0, c1 int) {
			systems.ResetBoundaries(&b.Cells, c0, c1)
		})

	case LocateBoundaries:
		s.parallel(n, func(_, i0, i1 int) {
			systems.LocateBoundaries(b.Pairs.GridIndices, &b.Cells, i0, i1)
		})

	case Reorder:
		s.parallel(n, func(_, i0, i1 int) {
			systems.Reorder(&b.Pairs, &b.Particles, &b.Sorted, i0, i1)
		})

	case EvaluateRules:
		s.evaluate(strategy)

	case Restore:
		s.parallel(n, func(_, i0, i1 int) {
			systems.Restore(&b.Pairs, b.Sorted.NextVel, b.Particles.NextVel, i0, i1)
		})

	case Integrate:
		scale := s.params.SceneScale
		s.parallel(n, func(_, i0, i1 int) {
			systems.Integrate(b.Particles.Pos, b.Particles.NextVel, dt, scale, i0, i1)
		})

	case SwapBuffers:
		b.Particles.SwapVelocities()
	}
}

// evaluate writes next velocities for every particle. Grid strategies
// require the sort, boundary and (for coherent) reorder stages to have run.
func (s *Simulation) evaluate(strategy Strategy) {
	b := s.bufs
	n := s.Len()

	switch strategy {
	case BruteForce:
		src := &systems.BruteForce{Pos: b.Particles.Pos, Vel: b.Particles.Vel}
		s.parallel(n, func(_, i0, i1 int) {
			systems.EvaluateRules(src, &s.rules, b.Particles.NextVel, i0, i1)
		})

	case ScatteredGrid:
		src := &systems.ScatteredGrid{
			Grid: &s.grid, Cells: &b.Cells, Pairs: &b.Pairs,
			Pos: b.Particles.Pos, Vel: b.Particles.Vel,
		}
		s.parallel(n, func(_, i0, i1 int) {
			systems.EvaluateRules(src, &s.rules, b.Particles.NextVel, i0, i1)
		})

	case CoherentGrid:
		src := s.coherentSource()
		s.parallel(n, func(_, s0, s1 int) {
			systems.EvaluateRules(src, &s.rules, b.Sorted.NextVel, s0, s1)
		})

	case CoherentGridCached:
		src := s.coherentSource()
		var fallbacks atomic.Int64
		s.parallel(n, func(worker, s0, s1 int) {
			f := systems.EvaluateRulesCached(src, &s.caches[worker], &s.rules, b.Sorted.NextVel, s0, s1)
			fallbacks.Add(int64(f))
		})
		s.cacheFallbacks += fallbacks.Load()
	}
}

func (s *Simulation) coherentSource() *systems.CoherentGrid {
	b := s.bufs
	return &systems.CoherentGrid{
		Grid: &s.grid, Cells: &b.Cells,
		Pos: b.Sorted.Pos, Vel: b.Sorted.Vel,
	}
}

// parallel runs fn over [0, n) on the fleet, or inline on the caller when
// n is below the configured threshold.
func (s *Simulation) parallel(n int, fn func(worker, i0, i1 int)) {
	if n <= 0 {
		return
	}
	if n < s.params.Threshold || s.fleet.Workers() == 1 {
		fn(0, 0, n)
		return
	}
	s.fleet.Run(n, fn)
}
