package telemetry

// Collector accumulates search events within time windows of one episode and
// produces WindowStats.
type Collector struct {
	episode             int
	windowDurationTicks int
	dt                  float64

	// Current window tracking
	windowStartTick int

	// Event counters for current window
	samples    int
	detections int
	singular   int
	hits       float64
	arrivals   int
}

// NewCollector creates a stats collector for an episode.
// ticksPerWindow: window length in ticks (values below 1 are raised to 1)
// dt: seconds per tick
func NewCollector(episode, ticksPerWindow int, dt float64) *Collector {
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		episode:             episode,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSamples records one sensing pass.
func (c *Collector) RecordSamples(samples, detections, singular int, hits float64) {
	c.samples += samples
	c.detections += detections
	c.singular += singular
	c.hits += hits
}

// RecordArrivals records searchers reaching the source.
func (c *Collector) RecordArrivals(n int) {
	c.arrivals += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Pending reports whether ticks have elapsed since the last flush.
func (c *Collector) Pending(currentTick int) bool {
	return currentTick > c.windowStartTick
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the searcher counts at currentTick and the distances
// of still-active searchers to the source.
func (c *Collector) Flush(currentTick, active, found, surging int, distances []float64) WindowStats {
	var detectRate float64
	if c.samples > 0 {
		detectRate = float64(c.detections) / float64(c.samples)
	}
	mean, std, p10, p50, p90 := ComputeSummary(distances)

	stats := WindowStats{
		Episode:         c.episode,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Active:  active,
		Found:   found,
		Surging: surging,

		Arrivals:   c.arrivals,
		Samples:    c.samples,
		Detections: c.detections,
		Hits:       c.hits,
		Singular:   c.singular,
		DetectRate: detectRate,

		DistMean: mean,
		DistStd:  std,
		DistP10:  p10,
		DistP50:  p50,
		DistP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.samples = 0
	c.detections = 0
	c.singular = 0
	c.hits = 0
	c.arrivals = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int {
	return c.windowDurationTicks
}
