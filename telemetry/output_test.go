package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/olfaction/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	assert.Nil(t, om)

	// Every method is safe on nil.
	assert.NoError(t, om.WriteTelemetry(WindowStats{}))
	assert.NoError(t, om.WriteEpisode(EpisodeStats{}))
	assert.NoError(t, om.WritePerf(PerfStats{}, 0))
	assert.NoError(t, om.WriteTrajectory([]TrajectoryStep{{}}))
	assert.NoError(t, om.WriteConfig(nil))
	assert.Empty(t, om.Dir())
	assert.NoError(t, om.Close())
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	require.NoError(t, om.WriteTelemetry(WindowStats{Episode: 0, WindowEndTick: 100, Samples: 16}))
	require.NoError(t, om.WriteTelemetry(
		WindowStats{Episode: 0, WindowEndTick: 200, Samples: 15},
		WindowStats{Episode: 1, WindowEndTick: 100, Samples: 16},
	))
	require.NoError(t, om.WriteEpisode(EpisodeStats{Episode: 0, Variant: "basic", Found: 3}))
	require.NoError(t, om.WriteTrajectory([]TrajectoryStep{
		{Episode: 0, Searcher: 1, Step: 0, X: 50, Y: 7, Z: 7},
		{Episode: 0, Searcher: 1, Step: 1, X: 49, Y: 7, Z: 7},
	}))

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, om.WriteConfig(cfg))
	require.NoError(t, om.Close())

	var windows []WindowStats
	data, err := os.ReadFile(filepath.Join(dir, TelemetryFile))
	require.NoError(t, err)
	require.NoError(t, gocsv.UnmarshalBytes(data, &windows))
	require.Len(t, windows, 3, "header written once")
	assert.Equal(t, []int{16, 15, 16}, []int{windows[0].Samples, windows[1].Samples, windows[2].Samples})
	assert.Equal(t, 1, windows[2].Episode)

	var episodes []EpisodeStats
	data, err = os.ReadFile(filepath.Join(dir, EpisodesFile))
	require.NoError(t, err)
	require.NoError(t, gocsv.UnmarshalBytes(data, &episodes))
	require.Len(t, episodes, 1)
	assert.Equal(t, "basic", episodes[0].Variant)

	var steps []TrajectoryStep
	data, err = os.ReadFile(filepath.Join(dir, TrajectoriesFile))
	require.NoError(t, err)
	require.NoError(t, gocsv.UnmarshalBytes(data, &steps))
	assert.Equal(t, 49, steps[1].X)

	_, err = os.Stat(filepath.Join(dir, ConfigFile))
	assert.NoError(t, err)
}
