package components

import "github.com/pthm-cable/olfaction/env"

// Mode is the current phase of the cast-and-surge strategy.
type Mode uint8

const (
	ModeCasting Mode = iota // Sweeping crosswind to reacquire the plume
	ModeSurging             // Flying upwind after a hit
)

// String returns the display name for a Mode.
func (m Mode) String() string {
	names := ModeNames()
	if int(m) < len(names) {
		return names[m]
	}
	return "unknown"
}

// ModeNames returns the names of all modes in constant order.
func ModeNames() []string {
	return []string{"casting", "surging"}
}

// Searcher holds strategy state and per-episode counters.
type Searcher struct {
	ID   uint32
	Mode Mode

	SurgeTimer float64 // seconds of surge left
	CastTime   float64 // seconds since casting began
	AnchorY    float64 // crosswind center of the current cast
	AnchorZ    float64

	Samples    int     // plume samples taken
	Detections int     // samples with at least one hit
	Hits       float64 // finite hits summed over all samples
	LastHits   float64 // result of the most recent sample

	Found     bool
	FoundTick int
}

// Trail records every position a searcher occupied during an episode.
type Trail struct {
	Points []env.Point
}

// Append adds a position to the trail.
func (t *Trail) Append(p Position) {
	t.Points = append(t.Points, p.Point())
}
