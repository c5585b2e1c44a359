package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/olfaction/components"
	"github.com/pthm-cable/olfaction/env"
	"github.com/pthm-cable/olfaction/plume"
	"github.com/pthm-cable/olfaction/telemetry"
)

var testStrategy = Strategy{
	Speed:         0.2,
	SurgeDuration: 0.5,
	CastAmplitude: 0.08,
	CastPeriod:    1.5,
	FoundRadius:   0.02,
}

func searchEnv(t *testing.T) *env.Environment3d {
	t.Helper()
	e, err := env.New(env.Linspace(-0.3, 1.0, 66), env.Linspace(-0.15, 0.15, 16), env.Linspace(-0.15, 0.15, 16))
	require.NoError(t, err)
	return e
}

type testWorld struct {
	world  *ecs.World
	mapper *ecs.Map4[components.Position, components.Velocity, components.Searcher, components.Trail]
}

func newTestWorld() *testWorld {
	w := ecs.NewWorld()
	return &testWorld{
		world:  w,
		mapper: ecs.NewMap4[components.Position, components.Velocity, components.Searcher, components.Trail](w),
	}
}

func (tw *testWorld) spawn(id uint32, pos components.Position) ecs.Entity {
	vel := components.Velocity{}
	s := components.Searcher{ID: id, AnchorY: pos.Y, AnchorZ: pos.Z}
	trail := components.Trail{}
	return tw.mapper.NewEntity(&pos, &vel, &s, &trail)
}

func TestSteerSurgesUpwindOnDetection(t *testing.T) {
	s := components.Searcher{LastHits: 2}
	vel := Steer(&s, components.Position{X: 0.5}, testStrategy, 0.01)

	assert.Equal(t, components.ModeSurging, s.Mode)
	assert.Equal(t, components.Velocity{X: -0.2}, vel)
	assert.InDelta(t, 0.49, s.SurgeTimer, 1e-12)
}

func TestSteerReturnsToCastingAfterSurge(t *testing.T) {
	s := components.Searcher{Mode: components.ModeSurging, SurgeTimer: 0.005, CastTime: 3}
	pos := components.Position{X: 0.3, Y: 0.04, Z: -0.01}

	vel := Steer(&s, pos, testStrategy, 0.01)
	assert.Equal(t, components.Velocity{X: -0.2}, vel, "last surge step still moves upwind")
	assert.Equal(t, components.ModeCasting, s.Mode)
	assert.Zero(t, s.CastTime)
	assert.Equal(t, 0.04, s.AnchorY)
	assert.Equal(t, -0.01, s.AnchorZ)
}

func TestSteerCastsCrosswindWithinSpeed(t *testing.T) {
	s := components.Searcher{}
	pos := components.Position{X: 0.5}

	for i := 0; i < 300; i++ {
		vel := Steer(&s, pos, testStrategy, 0.01)
		require.Equal(t, components.ModeCasting, s.Mode)
		assert.Zero(t, vel.X)
		assert.LessOrEqual(t, math.Hypot(vel.Y, vel.Z), testStrategy.Speed+1e-12)
		pos.Y += vel.Y * 0.01
		pos.Z += vel.Z * 0.01
	}
	assert.InDelta(t, 3.0, s.CastTime, 1e-9)
	assert.LessOrEqual(t, math.Abs(pos.Y), testStrategy.CastAmplitude+1e-9)
}

func TestMotionSystemReachesSource(t *testing.T) {
	e := searchEnv(t)
	tw := newTestWorld()
	entity := tw.spawn(1, components.Position{X: 0.1})

	ms := NewMotionSystem(tw.world, e, testStrategy, 0.01, env.Point{}, true, rand.New(rand.NewPCG(1, 1)))

	arrivedTick := -1
	for tick := 1; tick <= 200 && arrivedTick < 0; tick++ {
		_, _, s, _ := tw.mapper.Get(entity)
		s.LastHits = 1
		if ms.Update(tw.world, tick) > 0 {
			arrivedTick = tick
		}
	}
	require.Positive(t, arrivedTick)

	pos, vel, s, trail := tw.mapper.Get(entity)
	assert.True(t, s.Found)
	assert.Equal(t, arrivedTick, s.FoundTick)
	assert.Equal(t, components.Velocity{}, *vel)
	assert.Len(t, trail.Points, arrivedTick)
	assert.Less(t, pos.X, 0.1)

	for i := 1; i < len(trail.Points); i++ {
		assert.Less(t, trail.Points[i][0], trail.Points[i-1][0], "surge is monotone upwind")
	}

	// Found searchers no longer move.
	before := *pos
	assert.Zero(t, ms.Update(tw.world, arrivedTick+1))
	assert.Equal(t, before, *pos)
}

func TestMotionSystemWithoutSourceNeverArrives(t *testing.T) {
	e := searchEnv(t)
	tw := newTestWorld()
	entity := tw.spawn(1, components.Position{})

	ms := NewMotionSystem(tw.world, e, testStrategy, 0.01, env.Point{}, false, nil)
	for tick := 1; tick <= 10; tick++ {
		assert.Zero(t, ms.Update(tw.world, tick))
	}
	_, _, s, _ := tw.mapper.Get(entity)
	assert.False(t, s.Found)
}

func TestMotionSystemStaysInBounds(t *testing.T) {
	e := searchEnv(t)
	tw := newTestWorld()
	st := testStrategy
	st.Noise = 0.05
	entity := tw.spawn(1, components.Position{X: 0.9, Y: 0.14})

	ms := NewMotionSystem(tw.world, e, st, 0.01, env.Point{}, false, rand.New(rand.NewPCG(5, 6)))
	for tick := 1; tick <= 500; tick++ {
		ms.Update(tw.world, tick)
	}

	lo, hi := e.Bounds()
	_, _, _, trail := tw.mapper.Get(entity)
	for _, pt := range trail.Points {
		for axis := range env.NumAxes {
			require.GreaterOrEqual(t, pt[axis], lo[axis])
			require.LessOrEqual(t, pt[axis], hi[axis])
		}
	}
}

func TestSensingSystemCountsDetections(t *testing.T) {
	e := searchEnv(t)
	p, err := plume.New(e, plume.NewCollimated(), 0.01, rand.New(rand.NewPCG(2, 3)))
	require.NoError(t, err)
	require.NoError(t, p.SetAuxParams(plume.Params{"width": 0.01, "peak": 1e5, "max_hit_number": 3}))
	p.SetSrcPos(env.Point{})
	require.NoError(t, p.Initialize())

	tw := newTestWorld()
	inPlume := tw.spawn(1, components.Position{X: 0.2})
	upwind := tw.spawn(2, components.Position{X: -0.2})
	done := tw.spawn(3, components.Position{X: 0.2})
	_, _, s, _ := tw.mapper.Get(done)
	s.Found = true

	ss := NewSensingSystem(tw.world, p)
	stats, err := ss.Update(tw.world)
	require.NoError(t, err)

	assert.Equal(t, SenseStats{Samples: 2, Detections: 1, Hits: 3}, stats)

	_, _, s, _ = tw.mapper.Get(inPlume)
	assert.Equal(t, 1, s.Samples)
	assert.Equal(t, 3.0, s.LastHits)
	_, _, s, _ = tw.mapper.Get(upwind)
	assert.Equal(t, 1, s.Samples)
	assert.Zero(t, s.Detections)
	_, _, s, _ = tw.mapper.Get(done)
	assert.Zero(t, s.Samples)
}

func TestSensingSystemSingularCell(t *testing.T) {
	e := searchEnv(t)
	p, err := plume.New(e, plume.NewBasic(nil), 0.01, nil)
	require.NoError(t, err)
	require.NoError(t, p.Generator().(*plume.Basic).SetAuxParams(plume.DefaultBasicParams()))
	p.SetSrcPos(env.Point{})
	require.NoError(t, p.Initialize())

	src, _ := p.SourcePosition()
	tw := newTestWorld()
	entity := tw.spawn(1, components.PositionFrom(src))

	stats, err := NewSensingSystem(tw.world, p).Update(tw.world)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Singular)
	assert.Equal(t, 1, stats.Detections)
	assert.Zero(t, stats.Hits)

	_, _, s, _ := tw.mapper.Get(entity)
	assert.True(t, math.IsInf(s.LastHits, 1))
}

func TestSensingSystemRequiresInitializedPlume(t *testing.T) {
	e := searchEnv(t)
	p, err := plume.New(e, plume.NewEmpty(), 0.01, nil)
	require.NoError(t, err)

	tw := newTestWorld()
	tw.spawn(1, components.Position{})

	_, err = NewSensingSystem(tw.world, p).Update(tw.world)
	assert.ErrorIs(t, err, plume.ErrNotInitialized)
}

func TestSystemRegistry(t *testing.T) {
	reg := NewSystemRegistry()
	assert.Equal(t, telemetry.Phases(), reg.IDs())
	assert.Equal(t, "Sensing", reg.GetName(telemetry.PhaseSensing))
	assert.Equal(t, "unknown", reg.GetName("unknown"))
	require.Len(t, reg.All(), 4)
	assert.Equal(t, "Plume Clock", reg.All()[2].Name)
}
