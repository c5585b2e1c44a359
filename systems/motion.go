package systems

import (
	"math"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/olfaction/components"
	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/env"
)

// Strategy holds cast-and-surge parameters. Lengths are in meters and times
// in seconds.
type Strategy struct {
	Speed         float64
	SurgeDuration float64
	CastAmplitude float64
	CastPeriod    float64
	Noise         float64
	FoundRadius   float64
}

// StrategyFromConfig extracts strategy parameters from the searcher config.
func StrategyFromConfig(c config.SearcherConfig) Strategy {
	return Strategy{
		Speed:         c.Speed,
		SurgeDuration: c.SurgeDuration,
		CastAmplitude: c.CastAmplitude,
		CastPeriod:    c.CastPeriod,
		Noise:         c.Noise,
		FoundRadius:   c.FoundRadius,
	}
}

// Steer advances the searcher's mode by dt and returns the commanded velocity.
//
// Any detection starts (or restarts) a surge straight upwind, towards -x. When
// the surge runs out the searcher casts crosswind around the position where it
// lost the plume: y follows a sine of period CastPeriod, z follows one at half
// that frequency. Crosswind speed is capped at Speed.
func Steer(s *components.Searcher, pos components.Position, st Strategy, dt float64) components.Velocity {
	if s.LastHits > 0 {
		s.Mode = components.ModeSurging
		s.SurgeTimer = st.SurgeDuration
	}

	if s.Mode == components.ModeSurging {
		s.SurgeTimer -= dt
		if s.SurgeTimer <= 0 {
			s.Mode = components.ModeCasting
			s.SurgeTimer = 0
			s.CastTime = 0
			s.AnchorY, s.AnchorZ = pos.Y, pos.Z
		}
		return components.Velocity{X: -st.Speed}
	}

	s.CastTime += dt
	phase := 2 * math.Pi * s.CastTime / st.CastPeriod
	targetY := s.AnchorY + st.CastAmplitude*math.Sin(phase)
	targetZ := s.AnchorZ + st.CastAmplitude*math.Sin(phase/2)

	vel := components.Velocity{
		Y: (targetY - pos.Y) / dt,
		Z: (targetZ - pos.Z) / dt,
	}
	if speed := math.Hypot(vel.Y, vel.Z); speed > st.Speed {
		scale := st.Speed / speed
		vel.Y *= scale
		vel.Z *= scale
	}
	return vel
}

// MotionSystem steers and moves searchers, records their trails and marks
// arrivals at the source.
type MotionSystem struct {
	filter ecs.Filter4[components.Position, components.Velocity, components.Searcher, components.Trail]
	env    *env.Environment3d
	st     Strategy
	dt     float64
	noise  distuv.Normal

	source    env.Point
	sourceIdx env.Index
	hasSource bool
}

// NewMotionSystem creates a motion system. When hasSource is false arrivals
// are never detected.
func NewMotionSystem(w *ecs.World, e *env.Environment3d, st Strategy, dt float64, source env.Point, hasSource bool, rng *rand.Rand) *MotionSystem {
	return &MotionSystem{
		filter:    *ecs.NewFilter4[components.Position, components.Velocity, components.Searcher, components.Trail](w),
		env:       e,
		st:        st,
		dt:        dt,
		noise:     distuv.Normal{Mu: 0, Sigma: st.Noise, Src: rng},
		source:    source,
		sourceIdx: e.IdxFromPos(source),
		hasSource: hasSource,
	}
}

// Update runs the motion system and returns how many searchers arrived at
// the source during this tick.
func (s *MotionSystem) Update(w *ecs.World, tick int) int {
	arrived := 0

	query := s.filter.Query()
	for query.Next() {
		pos, vel, srch, trail := query.Get()
		if srch.Found {
			continue
		}

		*vel = Steer(srch, *pos, s.st, s.dt)

		pt := env.Point{
			pos.X + vel.X*s.dt,
			pos.Y + vel.Y*s.dt,
			pos.Z + vel.Z*s.dt,
		}
		if s.st.Noise > 0 {
			for axis := range env.NumAxes {
				pt[axis] += s.noise.Rand()
			}
		}
		*pos = components.PositionFrom(s.env.Clamp(pt))
		trail.Append(*pos)

		if s.hasSource && s.reached(*pos) {
			srch.Found = true
			srch.FoundTick = tick
			*vel = components.Velocity{}
			arrived++
		}
	}
	return arrived
}

// reached reports whether pos is within the found radius of the source or in
// the source cell.
func (s *MotionSystem) reached(pos components.Position) bool {
	dx := pos.X - s.source[0]
	dy := pos.Y - s.source[1]
	dz := pos.Z - s.source[2]
	if math.Sqrt(dx*dx+dy*dy+dz*dz) <= s.st.FoundRadius {
		return true
	}
	return s.env.IdxFromPos(pos.Point()) == s.sourceIdx
}
