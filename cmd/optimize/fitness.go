package main

import (
	"context"
	"math"
	"sync"

	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/sim"
)

// failurePenalty scales the episode length charged to a searcher that never
// reached the source.
const failurePenalty = 2.0

// FitnessEvaluator runs search episodes and scores a strategy.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []uint64
	baseConfig *config.Config
	episodes   int
	workers    int

	mu          sync.Mutex
	lastSuccess float64 // success rate from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []uint64, episodes, workers int, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
		episodes:   max(episodes, 1),
		workers:    workers,
	}
}

// LastSuccess returns the success rate from the most recent evaluation.
func (fe *FitnessEvaluator) LastSuccess() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSuccess
}

// Evaluate computes fitness for raw parameter values (lower = better): the
// mean time to source over all searchers of all seeds, where a searcher that
// never arrives is charged failurePenalty times the episode limit. A run that
// cannot be built scores +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig
	st := fe.params.Strategy(cfg.Searcher, x)
	limit := float64(cfg.Simulation.MaxTicks) * cfg.Plume.DT

	var times []float64
	var found int
	for _, seed := range fe.seeds {
		s, err := sim.New(cfg, sim.Options{Seed: seed, Strategy: &st})
		if err != nil {
			return math.Inf(1)
		}
		results, err := s.Run(context.Background(), fe.episodes, fe.workers)
		if err != nil {
			return math.Inf(1)
		}
		for _, res := range results {
			for _, sr := range res.Searchers {
				if sr.Found {
					found++
					times = append(times, float64(sr.FoundTick)*cfg.Plume.DT)
				} else {
					times = append(times, failurePenalty*limit)
				}
			}
		}
	}

	fe.mu.Lock()
	fe.lastSuccess = 0
	if len(times) > 0 {
		fe.lastSuccess = float64(found) / float64(len(times))
	}
	fe.mu.Unlock()

	return computeFitness(times)
}

// computeFitness averages per-searcher times. No searchers scores +Inf.
func computeFitness(times []float64) float64 {
	if len(times) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return sum / float64(len(times))
}
