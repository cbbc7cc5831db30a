package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/sim"
	"github.com/pthm-cable/boids/telemetry"
)

// smallConfig returns defaults shrunk to a flock that steps quickly.
func smallConfig(strategy string) *config.Config {
	cfg := config.Default()
	cfg.Simulation.Population = 400
	cfg.Simulation.SceneScale = 20
	cfg.Simulation.Strategy = strategy
	cfg.Parallel.Workers = 4
	cfg.Parallel.Threshold = 1
	cfg.Telemetry.StatsWindow = 10
	cfg.Telemetry.PerfWindow = 10
	cfg.ComputeDerived()
	return cfg
}

func newHeadlessGame(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestHeadlessRun(t *testing.T) {
	for _, s := range sim.Strategies {
		t.Run(s.String(), func(t *testing.T) {
			g := newHeadlessGame(t, Options{Config: smallConfig(s.String()), Seed: 1, StepsPerUpdate: 5})

			var windows []telemetry.FlockStats
			g.SetStatsCallback(func(fs telemetry.FlockStats) { windows = append(windows, fs) })

			for i := 0; i < 4; i++ {
				if err := g.UpdateHeadless(); err != nil {
					t.Fatalf("UpdateHeadless: %v", err)
				}
			}
			if g.Tick() != 20 {
				t.Errorf("Tick() = %d, want 20", g.Tick())
			}
			if len(windows) != 2 {
				t.Fatalf("got %d stats windows, want 2", len(windows))
			}
			last := windows[1]
			if last.WindowEndTick != 20 || last.Strategy != s.String() || last.Population != 400 {
				t.Errorf("last window = %+v", last)
			}
			if last.SpeedMax > 1+1e-9 {
				t.Errorf("SpeedMax = %v exceeds the speed limit", last.SpeedMax)
			}
			if s == sim.BruteForce && last.OccupiedCells != 0 {
				t.Errorf("brute force reported %d occupied cells", last.OccupiedCells)
			}
			if s != sim.BruteForce && last.OccupiedCells == 0 {
				t.Error("grid strategy reported no occupied cells")
			}
			if g.LastStats() != last {
				t.Error("LastStats does not match the latest window")
			}
		})
	}
}

func TestPeriodicValidation(t *testing.T) {
	cfg := smallConfig(config.StrategyCoherentCached)
	cfg.Telemetry.ValidateEvery = 5

	g := newHeadlessGame(t, Options{Config: cfg, Seed: 2, StepsPerUpdate: 10})
	if err := g.UpdateHeadless(); err != nil {
		t.Fatalf("UpdateHeadless: %v", err)
	}

	stats := g.LastStats()
	if stats.Validations != 2 {
		t.Errorf("Validations = %d, want 2", stats.Validations)
	}
	if stats.ValidationMaxError > cfg.Telemetry.ValidateTolerance {
		t.Errorf("ValidationMaxError = %v above tolerance", stats.ValidationMaxError)
	}
	if g.lastValidation < 0 {
		t.Error("lastValidation not updated")
	}
}

func TestValidationSkipsBruteForce(t *testing.T) {
	g := newHeadlessGame(t, Options{Config: smallConfig(config.StrategyBruteForce), Seed: 3})
	if err := g.validate(); err != nil {
		t.Fatal(err)
	}
	if g.lastValidation != -1 {
		t.Errorf("lastValidation = %v, want -1", g.lastValidation)
	}
}

func TestSetStrategy(t *testing.T) {
	g := newHeadlessGame(t, Options{Config: smallConfig(config.StrategyBruteForce), Seed: 4})
	if err := g.UpdateHeadless(); err != nil {
		t.Fatal(err)
	}

	g.SetStrategy(sim.CoherentGrid)
	if g.Strategy() != sim.CoherentGrid {
		t.Fatalf("Strategy() = %v", g.Strategy())
	}
	if g.occupiedCells() == nil {
		t.Error("grid strategy should expose cell ranges")
	}

	// Validation right after the switch must not trip on state left by brute force
	if err := g.validate(); err != nil {
		t.Errorf("validate after switch: %v", err)
	}
	if err := g.UpdateHeadless(); err != nil {
		t.Fatal(err)
	}
	if err := g.Simulation().CheckInvariants(); err != nil {
		t.Error(err)
	}
}

func TestOutputFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	g, err := NewGameWithOptions(Options{
		Config:         smallConfig(config.StrategyScattered),
		Seed:           5,
		OutputDir:      dir,
		Headless:       true,
		StepsPerUpdate: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.UpdateHeadless(); err != nil {
		t.Fatal(err)
	}
	g.Unload()

	for _, name := range []string{"config.yaml", "flock.csv", "perf.csv"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestNewGameErrors(t *testing.T) {
	t.Run("unknown strategy", func(t *testing.T) {
		cfg := smallConfig(config.StrategyCoherent)
		cfg.Simulation.Strategy = "octree"
		_, err := NewGameWithOptions(Options{Config: cfg, Headless: true})
		if !errors.Is(err, sim.ErrUnknownStrategy) {
			t.Errorf("err = %v, want ErrUnknownStrategy", err)
		}
	})

	t.Run("buffer budget", func(t *testing.T) {
		cfg := smallConfig(config.StrategyCoherent)
		cfg.Memory.MaxBufferBytes = 1024
		_, err := NewGameWithOptions(Options{Config: cfg, Headless: true})
		var allocErr *components.AllocError
		if !errors.As(err, &allocErr) {
			t.Errorf("err = %v, want AllocError", err)
		}
	})
}

func TestDrawHeadlessIsNoop(t *testing.T) {
	g := newHeadlessGame(t, Options{Config: smallConfig(config.StrategyCoherent), Seed: 6})
	g.Draw()
}
