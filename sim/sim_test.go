package sim

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/env"
	"github.com/pthm-cable/olfaction/systems"
)

func loadConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	return cfg
}

const smallRun = `
searcher:
  count: 4
simulation:
  max_ticks: 300
  episodes: 3
telemetry:
  stats_window: 0.5
`

func TestRunProducesEpisodes(t *testing.T) {
	cfg := loadConfig(t, smallRun)
	s, err := New(cfg, Options{Seed: 11})
	require.NoError(t, err)

	results, err := s.Run(context.Background(), 3, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for n, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, n, res.Episode)
		assert.Equal(t, n, res.Stats.Episode)
		assert.Equal(t, "basic", res.Stats.Variant)
		assert.Equal(t, 4, res.Stats.Searchers)
		assert.LessOrEqual(t, res.Stats.Ticks, 300)
		assert.NotEmpty(t, res.Windows)
		assert.Len(t, res.Searchers, 4)
		assert.Equal(t, s.Registry().IDs(), res.Perf.Phases)

		for _, w := range res.Windows {
			assert.Equal(t, n, w.Episode)
		}
		for _, sr := range res.Searchers {
			require.NotEmpty(t, sr.Walk)
			for i := 1; i < len(sr.Walk); i++ {
				require.Equal(t, 1, env.Manhattan(sr.Walk[i-1], sr.Walk[i]), "walk step %d", i)
			}
		}
	}
}

func TestRunIsIndependentOfWorkerCount(t *testing.T) {
	cfg := loadConfig(t, smallRun)

	run := func(workers int) []*EpisodeResult {
		s, err := New(cfg, Options{Seed: 5})
		require.NoError(t, err)
		res, err := s.Run(context.Background(), 3, workers)
		require.NoError(t, err)
		return res
	}

	a, b := run(1), run(3)
	for n := range a {
		if diff := cmp.Diff(a[n].Stats, b[n].Stats); diff != "" {
			t.Errorf("episode %d stats differ (-1 worker +3 workers):\n%s", n, diff)
		}
		if diff := cmp.Diff(a[n].Searchers, b[n].Searchers); diff != "" {
			t.Errorf("episode %d searchers differ (-1 worker +3 workers):\n%s", n, diff)
		}
	}
}

func TestSurgeFindsCollimatedSource(t *testing.T) {
	cfg := loadConfig(t, `
plume:
  type: collimated
  params: {width: 0.01, peak: 100000, max_hit_number: 1}
searcher:
  count: 3
  start: [0.5, 0, 0]
  start_jitter: 0
  noise: 0
simulation:
  max_ticks: 1000
`)
	s, err := New(cfg, Options{Seed: 1})
	require.NoError(t, err)

	res, err := s.RunEpisode(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.Found)
	assert.Equal(t, 1.0, res.Stats.SuccessRate)
	assert.Less(t, res.Stats.Ticks, 1000, "episode ends once every searcher arrived")
	// 0.5 m at 0.2 m/s, less the arrival radius.
	assert.InDelta(t, 2.4, res.Stats.TimeMean, 0.15)
	for _, sr := range res.Searchers {
		assert.True(t, sr.Found)
		assert.Equal(t, sr.Samples, sr.FoundTick, "one sample per tick until arrival")
	}
}

func TestEmptyPlumeNeverDetects(t *testing.T) {
	cfg := loadConfig(t, `
plume:
  type: empty
  params: {}
searcher:
  count: 2
  noise: 0
simulation:
  max_ticks: 150
`)
	s, err := New(cfg, Options{Seed: 2})
	require.NoError(t, err)

	res, err := s.RunEpisode(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Detections)
	assert.Zero(t, res.Stats.Found)
	assert.Equal(t, 150, res.Stats.Ticks)
	assert.Equal(t, 300, res.Stats.Samples)
}

func TestStrategyOverride(t *testing.T) {
	cfg := loadConfig(t, smallRun)

	st := systems.StrategyFromConfig(cfg.Searcher)
	st.Speed = 0
	_, err := New(cfg, Options{Strategy: &st})
	assert.Error(t, err)

	st.Speed = 0.3
	s, err := New(cfg, Options{Strategy: &st})
	require.NoError(t, err)
	assert.Equal(t, 0.3, s.strategy.Speed)
}

func TestRunCancelled(t *testing.T) {
	cfg := loadConfig(t, smallRun)
	s, err := New(cfg, Options{Seed: 3})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx, 3, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunZeroEpisodes(t *testing.T) {
	cfg := loadConfig(t, smallRun)
	s, err := New(cfg, Options{})
	require.NoError(t, err)

	res, err := s.Run(context.Background(), 0, 4)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestNewRejectsBadPlume(t *testing.T) {
	cfg := loadConfig(t, "plume: {type: vortex}\n")
	_, err := New(cfg, Options{})
	assert.Error(t, err)
}
