package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated search statistics for one time window of an
// episode.
type WindowStats struct {
	Episode         int     `csv:"episode"`
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Searcher counts at window end
	Active  int `csv:"active"`
	Found   int `csv:"found"`
	Surging int `csv:"surging"`

	// Events during window
	Arrivals   int     `csv:"arrivals"`
	Samples    int     `csv:"samples"`
	Detections int     `csv:"detections"`
	Hits       float64 `csv:"hits"`
	Singular   int     `csv:"singular"` // samples in the source's singular cell
	DetectRate float64 `csv:"detect_rate"`

	// Distance to source over active searchers (sampled at window end)
	DistMean float64 `csv:"dist_mean"`
	DistStd  float64 `csv:"dist_std"`
	DistP10  float64 `csv:"dist_p10"`
	DistP50  float64 `csv:"dist_p50"`
	DistP90  float64 `csv:"dist_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation between closest ranks
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSummary returns the mean, population standard deviation and the
// 10th, 50th and 90th percentiles of values. All are 0 for an empty slice.
func ComputeSummary(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("episode", s.Episode),
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("active", s.Active),
		slog.Int("found", s.Found),
		slog.Int("surging", s.Surging),
		slog.Int("arrivals", s.Arrivals),
		slog.Int("samples", s.Samples),
		slog.Int("detections", s.Detections),
		slog.Float64("hits", s.Hits),
		slog.Int("singular", s.Singular),
		slog.Float64("detect_rate", s.DetectRate),
		slog.Float64("dist_mean", s.DistMean),
		slog.Float64("dist_p50", s.DistP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

// EpisodeStats summarizes a finished episode. Time-to-source figures cover
// searchers that found the source and are 0 when none did.
type EpisodeStats struct {
	Episode     int     `csv:"episode"`
	Variant     string  `csv:"variant"`
	Ticks       int     `csv:"ticks"`
	SimTimeSec  float64 `csv:"sim_time"`
	Searchers   int     `csv:"searchers"`
	Found       int     `csv:"found"`
	SuccessRate float64 `csv:"success_rate"`

	TimeMean float64 `csv:"time_to_source_mean"`
	TimeP50  float64 `csv:"time_to_source_p50"`
	TimeP90  float64 `csv:"time_to_source_p90"`

	Samples    int     `csv:"samples"`
	Detections int     `csv:"detections"`
	DetectRate float64 `csv:"detect_rate"`

	PathCellsMean float64 `csv:"path_cells_mean"` // length of the discretized walk
}

// NewEpisodeStats fills the derived fields of an episode summary from per
// searcher arrival times (seconds, found searchers only) and walk lengths.
func NewEpisodeStats(episode int, variant string, ticks int, dt float64, searchers, samples, detections int, arrivalTimes, pathCells []float64) EpisodeStats {
	es := EpisodeStats{
		Episode:    episode,
		Variant:    variant,
		Ticks:      ticks,
		SimTimeSec: float64(ticks) * dt,
		Searchers:  searchers,
		Found:      len(arrivalTimes),
		Samples:    samples,
		Detections: detections,
	}
	if searchers > 0 {
		es.SuccessRate = float64(es.Found) / float64(searchers)
	}
	if samples > 0 {
		es.DetectRate = float64(detections) / float64(samples)
	}
	es.TimeMean, _, _, es.TimeP50, es.TimeP90 = ComputeSummary(arrivalTimes)
	if len(pathCells) > 0 {
		es.PathCellsMean = stat.Mean(pathCells, nil)
	}
	return es
}

// LogStats logs the episode summary using slog.
func (s EpisodeStats) LogStats() {
	slog.Info("episode",
		"episode", s.Episode,
		"variant", s.Variant,
		"ticks", s.Ticks,
		"sim_time", s.SimTimeSec,
		"found", s.Found,
		"searchers", s.Searchers,
		"success_rate", s.SuccessRate,
		"time_to_source_mean", s.TimeMean,
		"time_to_source_p50", s.TimeP50,
		"detect_rate", s.DetectRate,
		"path_cells_mean", s.PathCellsMean,
	)
}

// TrajectoryStep is one cell of a searcher's discretized walk.
type TrajectoryStep struct {
	Episode  int    `csv:"episode"`
	Searcher uint32 `csv:"searcher"`
	Step     int    `csv:"step"`
	X        int    `csv:"xi"`
	Y        int    `csv:"yi"`
	Z        int    `csv:"zi"`
}
