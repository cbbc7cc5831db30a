package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/boids/sim"
)

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (g *Game) flushTelemetry() {
	tick := g.sim.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	stats := g.collector.Flush(tick, g.strategy.String(), g.sim.Velocities(), g.occupiedCells())
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteFlock(stats); err != nil {
			slog.Error("failed to write flock stats", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick, g.strategy.String()); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// validate cross-checks the active grid strategy against brute force on the
// current state and verifies the grid invariants it leaves behind.
// Deviations above tolerance are logged; broken invariants are returned.
func (g *Game) validate() error {
	if g.strategy == sim.BruteForce {
		return nil
	}

	// The probe rebuilds pairs and cell ranges for the current positions,
	// so the invariant check below sees fresh grid state.
	dev, at, err := g.sim.CrossValidate(g.strategy)
	if err != nil {
		return fmt.Errorf("cross-validating %s: %w", g.strategy, err)
	}
	if err := g.sim.CheckInvariants(); err != nil {
		return fmt.Errorf("tick %d: %s: %w", g.sim.Tick(), g.strategy, err)
	}
	g.lastValidation = dev
	g.collector.RecordValidation(dev)

	if dev > g.cfg.Telemetry.ValidateTolerance {
		slog.Warn("strategy diverged from brute force",
			"tick", g.sim.Tick(),
			"strategy", g.strategy.String(),
			"max_deviation", dev,
			"particle", at,
			"tolerance", g.cfg.Telemetry.ValidateTolerance,
		)
	}
	return nil
}
