// Package main provides CMA-ES tuning of the flocking rule parameters.
package main

import (
	"github.com/pthm-cable/boids/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// max_speed is locked; it only rescales time.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "rule1_distance", Path: "rules.rule1_distance", Min: 2, Max: 10, Default: 5},
			{Name: "rule2_distance", Path: "rules.rule2_distance", Min: 1, Max: 6, Default: 3},
			{Name: "rule3_distance", Path: "rules.rule3_distance", Min: 2, Max: 10, Default: 5},
			{Name: "rule1_scale", Path: "rules.rule1_scale", Min: 0.001, Max: 0.05, Default: 0.01},
			{Name: "rule2_scale", Path: "rules.rule2_scale", Min: 0.01, Max: 0.5, Default: 0.1},
			{Name: "rule3_scale", Path: "rules.rule3_scale", Min: 0.01, Max: 0.5, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and recomputes
// derived values. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	r := &cfg.Rules
	r.Rule1Distance, r.Rule2Distance, r.Rule3Distance = c[0], c[1], c[2]
	r.Rule1Scale, r.Rule2Scale, r.Rule3Scale = c[3], c[4], c[5]
	cfg.ComputeDerived()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	r := cfg.Rules
	return []float64{
		r.Rule1Distance, r.Rule2Distance, r.Rule3Distance,
		r.Rule1Scale, r.Rule2Scale, r.Rule3Scale,
	}
}
