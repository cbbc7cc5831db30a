package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// FlockStats holds aggregated statistics for a window of ticks.
type FlockStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Strategy        string  `csv:"strategy"`
	Population      int     `csv:"population"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Polarization is |mean heading|: 0 for random headings, 1 when all boids align.
	Polarization float64 `csv:"polarization"`

	// Grid occupancy (sampled at window end)
	OccupiedCells     int     `csv:"occupied_cells"`
	CellOccupancyMean float64 `csv:"cell_occupancy_mean"`
	CellOccupancyMax  float64 `csv:"cell_occupancy_max"`

	// Cross-validation against brute force during the window
	Validations        int     `csv:"validations"`
	ValidationMaxError float64 `csv:"validation_max_error"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, std, p50, p90 and max of speeds.
// speeds is sorted in place.
func ComputeSpeedStats(speeds []float64) (mean, std, p50, p90, maxSpeed float64) {
	if len(speeds) == 0 {
		return 0, 0, 0, 0, 0
	}
	if len(speeds) == 1 {
		return speeds[0], 0, speeds[0], speeds[0], speeds[0]
	}

	mean, std = stat.MeanStdDev(speeds, nil)
	sort.Float64s(speeds)
	p50 = Percentile(speeds, 0.50)
	p90 = Percentile(speeds, 0.90)
	maxSpeed = floats.Max(speeds)
	return mean, std, p50, p90, maxSpeed
}

// Polarization returns the norm of the mean unit velocity. Stationary
// particles are left out of the mean.
func Polarization(vel []r3.Vec) float64 {
	var sum r3.Vec
	moving := 0
	for _, v := range vel {
		n := r3.Norm(v)
		if n == 0 {
			continue
		}
		sum = r3.Add(sum, r3.Scale(1/n, v))
		moving++
	}
	if moving == 0 {
		return 0
	}
	return r3.Norm(sum) / float64(moving)
}

// LogValue implements slog.LogValuer for structured logging.
func (s FlockStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("strategy", s.Strategy),
		slog.Int("population", s.Population),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("polarization", s.Polarization),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Float64("cell_occupancy_mean", s.CellOccupancyMean),
		slog.Float64("cell_occupancy_max", s.CellOccupancyMax),
		slog.Int("validations", s.Validations),
		slog.Float64("validation_max_error", s.ValidationMaxError),
	)
}

// LogStats logs the window stats using slog.
func (s FlockStats) LogStats() {
	slog.Info("stats", "flock", s)
}
