package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/sim"
	"github.com/pthm-cable/boids/telemetry"
)

// Target describes the flock the tuner steers toward.
type Target struct {
	Polarization float64 // mean heading alignment in [0, 1]
	Clumping     float64 // occupied-cell density relative to a uniform spread
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config
	target     Target

	mu   sync.Mutex
	last Score
}

// Score is the averaged outcome of one evaluation.
type Score struct {
	Fitness      float64
	Polarization float64
	Clumping     float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
	}
}

// Last returns the score from the most recent evaluation.
func (fe *FitnessEvaluator) Last() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Seeds run concurrently; each run owns its own simulation and worker fleet.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]Score, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var avg Score
	for _, r := range results {
		avg.Fitness += r.Fitness
		avg.Polarization += r.Polarization
		avg.Clumping += r.Clumping
	}
	n := float64(len(results))
	avg.Fitness /= n
	avg.Polarization /= n
	avg.Clumping /= n

	fe.mu.Lock()
	fe.last = avg
	fe.mu.Unlock()

	return avg.Fitness
}

// runSimulation executes one headless run and scores the second half of it,
// after the flock has had time to organize.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) Score {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Telemetry.ValidateEvery = 0

	g, err := game.NewGameWithOptions(game.Options{Config: cfg, Seed: seed, Headless: true})
	if err != nil {
		slog.Error("failed to create simulation", "seed", seed, "error", err)
		return Score{Fitness: math.Inf(1)}
	}
	defer g.Unload()

	var windows []telemetry.FlockStats
	g.SetStatsCallback(func(s telemetry.FlockStats) { windows = append(windows, s) })

	for g.Tick() < fe.maxTicks {
		if err := g.UpdateHeadless(); err != nil {
			slog.Error("simulation step failed", "seed", seed, "tick", g.Tick(), "error", err)
			return Score{Fitness: math.Inf(1)}
		}
	}
	return fe.score(windows[len(windows)/2:], cfg)
}

// score compares the mean window statistics with the target. Both terms are
// relative errors so neither dominates.
func (fe *FitnessEvaluator) score(windows []telemetry.FlockStats, cfg *config.Config) Score {
	if len(windows) == 0 {
		return Score{Fitness: math.Inf(1)}
	}
	pol := make([]float64, len(windows))
	occ := make([]float64, len(windows))
	for i, w := range windows {
		pol[i] = w.Polarization
		occ[i] = w.CellOccupancyMean
	}
	s := Score{
		Polarization: stat.Mean(pol, nil),
		Clumping:     stat.Mean(occ, nil) / uniformOccupancy(cfg),
	}
	dp := (s.Polarization - fe.target.Polarization) / max(fe.target.Polarization, 1e-3)
	dc := (s.Clumping - fe.target.Clumping) / max(fe.target.Clumping, 1e-3)
	s.Fitness = dp*dp + dc*dc
	return s
}

// copyConfig returns a private copy of the base config. Config holds only
// values, so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	c := *fe.baseConfig
	return &c
}

// uniformOccupancy is the mean boids per occupied cell expected when the
// population is spread evenly, never less than one. Cell width comes from the
// grid the simulation itself builds.
func uniformOccupancy(cfg *config.Config) float64 {
	g := sim.ParamsFromConfig(cfg).Grid()
	side := 2 * cfg.Simulation.SceneScale
	cells := math.Pow(side/g.CellWidth, 3)
	return max(float64(cfg.Simulation.Population)/cells, 1)
}
