// Package systems contains ECS systems for plume search episodes.
package systems

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/olfaction/components"
	"github.com/pthm-cable/olfaction/plume"
)

// SenseStats summarizes one sensing pass.
type SenseStats struct {
	Samples    int
	Detections int
	Hits       float64 // finite hits only
	Singular   int     // samples taken in a singular (infinite mean) cell
}

// SensingSystem samples the plume at the cell of every searcher that has not
// reached the source.
type SensingSystem struct {
	filter ecs.Filter2[components.Position, components.Searcher]
	plume  *plume.Plume
}

// NewSensingSystem creates a sensing system. The plume must be initialized
// and owned by the caller's goroutine.
func NewSensingSystem(w *ecs.World, p *plume.Plume) *SensingSystem {
	return &SensingSystem{
		filter: *ecs.NewFilter2[components.Position, components.Searcher](w),
		plume:  p,
	}
}

// Update runs the sensing system.
func (s *SensingSystem) Update(w *ecs.World) (SenseStats, error) {
	var stats SenseStats
	e := s.plume.Env()

	query := s.filter.Query()
	for query.Next() {
		pos, srch := query.Get()
		if srch.Found {
			continue
		}

		hits, err := s.plume.Sample(e.IdxFromPos(pos.Point()))
		if err != nil {
			query.Close()
			return stats, fmt.Errorf("searcher %d: %w", srch.ID, err)
		}

		srch.Samples++
		srch.LastHits = hits
		stats.Samples++
		if !plume.IsDetection(hits) {
			continue
		}
		srch.Detections++
		stats.Detections++
		if math.IsInf(hits, 1) {
			stats.Singular++
			continue
		}
		srch.Hits += hits
		stats.Hits += hits
	}
	return stats, nil
}
