package plume

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// SamplePoisson draws a hit count from Poisson(mean) and caps it at maxHits.
// A mean of +Inf yields +Inf, which is never capped. Non-positive or NaN means
// yield 0 without consuming randomness.
func SamplePoisson(rng *rand.Rand, mean float64, maxHits int) float64 {
	switch {
	case math.IsInf(mean, 1):
		return math.Inf(1)
	case !(mean > 0):
		return 0
	}
	draw := distuv.Poisson{Lambda: mean, Src: rng}.Rand()
	return math.Min(draw, float64(maxHits))
}

// IsDetection reports whether a sample counts as at least one hit.
func IsDetection(hits float64) bool { return hits > 0 }
