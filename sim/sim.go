// Package sim runs cast-and-surge search episodes against a plume.
//
// Every episode gets a fresh ark world, a clone of the shared plume and an
// RNG derived from the run seed and the episode number, so results do not
// depend on how episodes are spread across workers.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/olfaction/components"
	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/env"
	"github.com/pthm-cable/olfaction/plume"
	"github.com/pthm-cable/olfaction/systems"
	"github.com/pthm-cable/olfaction/telemetry"
)

// Options configures a Simulation beyond the config file.
type Options struct {
	Seed     uint64 // run seed; episode e uses PCG(Seed, e)
	Strategy *systems.Strategy
	LogStats bool // log every stats window
}

// SearcherResult is the outcome for one searcher.
type SearcherResult struct {
	ID        uint32
	Found     bool
	FoundTick int
	Samples   int
	Hits      float64
	Walk      []env.Index // discretized trajectory
}

// EpisodeResult collects everything an episode produced.
type EpisodeResult struct {
	Episode   int
	Stats     telemetry.EpisodeStats
	Windows   []telemetry.WindowStats
	Perf      telemetry.PerfStats
	Searchers []SearcherResult
}

// Simulation holds the shared, read-only state of a run.
type Simulation struct {
	cfg      *config.Config
	env      *env.Environment3d
	plume    *plume.Plume
	strategy systems.Strategy
	seed     uint64
	logStats bool
	registry *systems.SystemRegistry
}

// New builds the environment and plume described by cfg.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	e, err := env.New(cfg.Derived.XBins, cfg.Derived.YBins, cfg.Derived.ZBins)
	if err != nil {
		return nil, fmt.Errorf("building environment: %w", err)
	}

	p, err := plume.NewFromConfig(e, cfg.Plume, rand.New(rand.NewPCG(opts.Seed, 0)))
	if err != nil {
		return nil, fmt.Errorf("building plume: %w", err)
	}

	st := systems.StrategyFromConfig(cfg.Searcher)
	if opts.Strategy != nil {
		st = *opts.Strategy
	}
	if err := validateStrategy(st); err != nil {
		return nil, err
	}

	return &Simulation{
		cfg:      cfg,
		env:      e,
		plume:    p,
		strategy: st,
		seed:     opts.Seed,
		logStats: opts.LogStats,
		registry: systems.NewSystemRegistry(),
	}, nil
}

func validateStrategy(st systems.Strategy) error {
	switch {
	case !(st.Speed > 0):
		return fmt.Errorf("searcher speed must be positive, got %v", st.Speed)
	case !(st.CastPeriod > 0):
		return fmt.Errorf("searcher cast period must be positive, got %v", st.CastPeriod)
	case st.SurgeDuration < 0, st.CastAmplitude < 0, st.Noise < 0, st.FoundRadius < 0:
		return fmt.Errorf("searcher durations and lengths must be non-negative: %+v", st)
	}
	return nil
}

// Env returns the environment.
func (s *Simulation) Env() *env.Environment3d { return s.env }

// Plume returns the shared plume. Its field must not be modified.
func (s *Simulation) Plume() *plume.Plume { return s.plume }

// Registry returns the system metadata used for perf labels.
func (s *Simulation) Registry() *systems.SystemRegistry { return s.registry }

// episodeRand returns the RNG for an episode.
func (s *Simulation) episodeRand(episode int) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, uint64(episode)+1))
}

// episode holds per-episode ECS state.
type episode struct {
	world   *ecs.World
	mapper  *ecs.Map4[components.Position, components.Velocity, components.Searcher, components.Trail]
	filter  *ecs.Filter2[components.Position, components.Searcher]
	sensing *systems.SensingSystem
	motion  *systems.MotionSystem
}

// RunEpisode runs one episode to completion: until every searcher found the
// source, max_ticks passed or ctx is cancelled.
func (s *Simulation) RunEpisode(ctx context.Context, n int) (*EpisodeResult, error) {
	cfg := s.cfg
	rng := s.episodeRand(n)

	p := s.plume.Clone(rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())))
	p.Reset()
	source, hasSource := p.SourcePosition()

	world := ecs.NewWorld()
	ep := &episode{
		world:   world,
		mapper:  ecs.NewMap4[components.Position, components.Velocity, components.Searcher, components.Trail](world),
		filter:  ecs.NewFilter2[components.Position, components.Searcher](world),
		sensing: systems.NewSensingSystem(world, p),
		motion:  systems.NewMotionSystem(world, s.env, s.strategy, p.Dt(), source, hasSource, rng),
	}
	entities := s.spawnSearchers(ep, rng)

	collector := telemetry.NewCollector(n, cfg.Derived.TicksPerWindow, p.Dt())
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow, s.registry.IDs()...)
	res := &EpisodeResult{Episode: n}

	var samples, detections, found int
	tick := 0
	for tick < cfg.Simulation.MaxTicks && found < len(entities) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tick++
		perf.StartTick()

		perf.StartPhase(telemetry.PhaseSensing)
		sensed, err := ep.sensing.Update(world)
		if err != nil {
			return nil, fmt.Errorf("episode %d tick %d: %w", n, tick, err)
		}
		collector.RecordSamples(sensed.Samples, sensed.Detections, sensed.Singular, sensed.Hits)
		samples += sensed.Samples
		detections += sensed.Detections

		perf.StartPhase(telemetry.PhaseMotion)
		arrived := ep.motion.Update(world, tick)
		collector.RecordArrivals(arrived)
		found += arrived

		perf.StartPhase(telemetry.PhasePlume)
		p.Update()

		perf.StartPhase(telemetry.PhaseTelemetry)
		if collector.ShouldFlush(tick) {
			res.Windows = append(res.Windows, s.flush(ep, collector, tick, source, found))
		}
		perf.EndTick()
	}
	if collector.Pending(tick) {
		res.Windows = append(res.Windows, s.flush(ep, collector, tick, source, found))
	}

	var arrivalTimes, pathCells []float64
	for _, entity := range entities {
		_, _, srch, trail := ep.mapper.Get(entity)
		walk := s.env.DiscretizePositionSequence(trail.Points)
		res.Searchers = append(res.Searchers, SearcherResult{
			ID:        srch.ID,
			Found:     srch.Found,
			FoundTick: srch.FoundTick,
			Samples:   srch.Samples,
			Hits:      srch.Hits,
			Walk:      walk,
		})
		pathCells = append(pathCells, float64(len(walk)))
		if srch.Found {
			arrivalTimes = append(arrivalTimes, float64(srch.FoundTick)*p.Dt())
		}
	}

	res.Stats = telemetry.NewEpisodeStats(n, p.Name(), tick, p.Dt(), len(entities), samples, detections, arrivalTimes, pathCells)
	res.Perf = perf.Stats()

	slog.Debug("episode finished", "episode", n, "ticks", tick, "found", found, "plume_time", p.Clock().Elapsed)
	return res, nil
}

// spawnSearchers creates the configured searchers around the start point.
// Each starts with its trail holding the start position.
func (s *Simulation) spawnSearchers(ep *episode, rng *rand.Rand) []ecs.Entity {
	sc := s.cfg.Searcher
	start := env.Point(sc.Start)
	jitter := distuv.Uniform{Min: -sc.StartJitter, Max: sc.StartJitter, Src: rng}

	entities := make([]ecs.Entity, 0, sc.Count)
	for i := 0; i < sc.Count; i++ {
		pt := start
		if sc.StartJitter > 0 {
			for axis := range env.NumAxes {
				pt[axis] += jitter.Rand()
			}
		}
		pos := components.PositionFrom(s.env.Clamp(pt))
		vel := components.Velocity{}
		srch := components.Searcher{ID: uint32(i + 1), AnchorY: pos.Y, AnchorZ: pos.Z}
		trail := components.Trail{Points: []env.Point{pos.Point()}}
		entities = append(entities, ep.mapper.NewEntity(&pos, &vel, &srch, &trail))
	}
	return entities
}

// flush closes the current stats window.
func (s *Simulation) flush(ep *episode, c *telemetry.Collector, tick int, source env.Point, found int) telemetry.WindowStats {
	var distances []float64
	active, surging := 0, 0

	query := ep.filter.Query()
	for query.Next() {
		pos, srch := query.Get()
		if srch.Found {
			continue
		}
		active++
		if srch.Mode == components.ModeSurging {
			surging++
		}
		dx, dy, dz := pos.X-source[0], pos.Y-source[1], pos.Z-source[2]
		distances = append(distances, math.Sqrt(dx*dx+dy*dy+dz*dz))
	}

	ws := c.Flush(tick, active, found, surging, distances)
	if s.logStats {
		ws.LogStats()
	}
	return ws
}
