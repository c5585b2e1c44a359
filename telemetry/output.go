package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/olfaction/config"
)

// Output file names.
const (
	TelemetryFile    = "telemetry.csv"
	PerfFile         = "perf.csv"
	EpisodesFile     = "episodes.csv"
	TrajectoriesFile = "trajectories.csv"
	ConfigFile       = "config.yaml"
)

// csvFile appends records to a CSV file, writing the header once.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

// write marshals records, a slice of csv-tagged structs.
func (c *csvFile) write(records any) error {
	var err error
	if !c.headerWritten {
		err = gocsv.Marshal(records, c.f)
		c.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

// OutputManager handles structured experiment output with CSV logging.
// All methods are no-ops on a nil *OutputManager.
type OutputManager struct {
	dir          string
	telemetry    *csvFile
	perf         *csvFile
	episodes     *csvFile
	trajectories *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, target := range []struct {
		name string
		dst  **csvFile
	}{
		{TelemetryFile, &om.telemetry},
		{PerfFile, &om.perf},
		{EpisodesFile, &om.episodes},
		{TrajectoriesFile, &om.trajectories},
	} {
		f, err := os.Create(filepath.Join(dir, target.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", target.name, err)
		}
		*target.dst = &csvFile{name: target.name, f: f}
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteTelemetry writes window stats records to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats ...WindowStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}
	return om.telemetry.write(stats)
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, episode int) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(episode)})
}

// WriteEpisode writes an episode summary to episodes.csv.
func (om *OutputManager) WriteEpisode(stats EpisodeStats) error {
	if om == nil {
		return nil
	}
	return om.episodes.write([]EpisodeStats{stats})
}

// WriteTrajectory writes a discretized walk to trajectories.csv.
func (om *OutputManager) WriteTrajectory(steps []TrajectoryStep) error {
	if om == nil || len(steps) == 0 {
		return nil
	}
	return om.trajectories.write(steps)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.telemetry, om.perf, om.episodes, om.trajectories} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
