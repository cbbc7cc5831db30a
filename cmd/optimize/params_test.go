package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	got := pv.ExtractFromConfig(cfg)
	want := pv.DefaultVector()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: config has %v, default %v", pv.Specs[i].Name, got[i], want[i])
		}
	}

	norm := pv.Normalize(want)
	back := pv.Denormalize(norm)
	for i := range want {
		if math.Abs(back[i]-want[i]) > 1e-12 {
			t.Errorf("%s: round trip %v -> %v", pv.Specs[i].Name, want[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	// Distances far outside bounds
	pv.ApplyToConfig(cfg, []float64{100, 0, 5, 0.01, 0.1, 0.1})
	if cfg.Rules.Rule1Distance != 10 || cfg.Rules.Rule2Distance != 1 {
		t.Errorf("distances = %v, %v, want clamped to 10, 1", cfg.Rules.Rule1Distance, cfg.Rules.Rule2Distance)
	}
	if cfg.Derived.MaxRadius != 10 {
		t.Errorf("MaxRadius = %v, derived values not recomputed", cfg.Derived.MaxRadius)
	}
}

func TestScore(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Population = 1000
	cfg.Simulation.SceneScale = 50
	cfg.ComputeDerived() // cell width 10, 1000 cells, uniform occupancy 1

	fe := NewFitnessEvaluator(NewParamVector(), 0, nil, cfg, Target{Polarization: 0.5, Clumping: 2})

	if s := fe.score(nil, cfg); !math.IsInf(s.Fitness, 1) {
		t.Errorf("empty windows fitness = %v, want +Inf", s.Fitness)
	}

	windows := []telemetry.FlockStats{
		{Polarization: 0.4, CellOccupancyMean: 2},
		{Polarization: 0.6, CellOccupancyMean: 2},
	}
	s := fe.score(windows, cfg)
	if math.Abs(s.Polarization-0.5) > 1e-12 || s.Clumping != 2 {
		t.Errorf("score = %+v", s)
	}
	if s.Fitness > 1e-12 {
		t.Errorf("on-target fitness = %v, want 0", s.Fitness)
	}
}

func TestUniformOccupancy(t *testing.T) {
	tests := []struct {
		name       string
		population int
		scale      float64
		cells27    bool
		want       float64
	}{
		{"sparse floors at one", 1000, 50, false, 1}, // 1000 cells of width 10
		{"dense cells8", 8000, 50, false, 8},         // 1000 cells
		{"dense cells27", 64000, 50, true, 8},        // 8000 cells of width 5
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Simulation.Population = tt.population
			cfg.Simulation.SceneScale = tt.scale
			if tt.cells27 {
				cfg.Simulation.Neighborhood = config.NeighborhoodCells27
			}
			cfg.ComputeDerived()
			if got := uniformOccupancy(cfg); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("uniformOccupancy = %v, want %v", got, tt.want)
			}
		})
	}
}
