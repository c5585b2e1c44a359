// Package main provides CMA-ES tuning of cast-and-surge searcher parameters
// against a configured plume.
package main

import (
	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/systems"
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
// Defaults are taken from base.
func NewParamVector(base config.SearcherConfig) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "speed", Path: "searcher.speed", Min: 0.05, Max: 0.5, Default: base.Speed},
			{Name: "surge_duration", Path: "searcher.surge_duration", Min: 0.05, Max: 2.0, Default: base.SurgeDuration},
			{Name: "cast_amplitude", Path: "searcher.cast_amplitude", Min: 0.01, Max: 0.15, Default: base.CastAmplitude},
			{Name: "cast_period", Path: "searcher.cast_period", Min: 0.3, Max: 4.0, Default: base.CastPeriod},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values, clamped to bounds.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
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

// ApplyToConfig writes clamped parameter values into the searcher section.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Searcher.Speed = c[0]
	cfg.Searcher.SurgeDuration = c[1]
	cfg.Searcher.CastAmplitude = c[2]
	cfg.Searcher.CastPeriod = c[3]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Searcher.Speed,
		cfg.Searcher.SurgeDuration,
		cfg.Searcher.CastAmplitude,
		cfg.Searcher.CastPeriod,
	}
}

// Strategy returns the searcher strategy for values on top of base.
func (pv *ParamVector) Strategy(base config.SearcherConfig, values []float64) systems.Strategy {
	cfg := config.Config{Searcher: base}
	pv.ApplyToConfig(&cfg, values)
	return systems.StrategyFromConfig(cfg.Searcher)
}
