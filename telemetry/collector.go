package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/systems"
)

// Collector accumulates events within tick windows and produces FlockStats.
type Collector struct {
	windowTicks     int64
	dt              float64
	windowStartTick int64

	// Event counters for current window
	validations        int
	validationMaxError float64

	// Reused sample buffers
	speeds    []float64
	occupancy []float64
}

// NewCollector creates a new stats collector.
// windowTicks: ticks per stats window
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowTicks int, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int64(windowTicks),
		dt:          dt,
	}
}

// RecordValidation records one cross-check of a grid strategy against brute force.
func (c *Collector) RecordValidation(maxError float64) {
	c.validations++
	c.validationMaxError = max(c.validationMaxError, maxError)
}

// ShouldFlush returns true when the current window is complete at tick.
func (c *Collector) ShouldFlush(tick int64) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// Flush samples the flock at tick, resets window counters and returns the stats.
func (c *Collector) Flush(tick int64, strategy string, vel []r3.Vec, cells *components.CellRanges) FlockStats {
	s := FlockStats{
		WindowStartTick:    c.windowStartTick,
		WindowEndTick:      tick,
		SimTimeSec:         float64(tick) * c.dt,
		Strategy:           strategy,
		Population:         len(vel),
		Validations:        c.validations,
		ValidationMaxError: c.validationMaxError,
	}

	c.speeds = c.speeds[:0]
	for _, v := range vel {
		c.speeds = append(c.speeds, r3.Norm(v))
	}
	s.SpeedMean, s.SpeedStd, s.SpeedP50, s.SpeedP90, s.SpeedMax = ComputeSpeedStats(c.speeds)
	s.Polarization = Polarization(vel)

	if cells != nil {
		c.occupancy = systems.Occupancy(cells, c.occupancy[:0])
		s.OccupiedCells = len(c.occupancy)
		if len(c.occupancy) > 0 {
			s.CellOccupancyMean = floats.Sum(c.occupancy) / float64(len(c.occupancy))
			s.CellOccupancyMax = floats.Max(c.occupancy)
		}
	}

	c.windowStartTick = tick
	c.validations = 0
	c.validationMaxError = 0
	return s
}
