package plume

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat"
)

func TestSamplePoissonEdgeMeans(t *testing.T) {
	rng := testRand()

	assert.True(t, math.IsInf(SamplePoisson(rng, math.Inf(1), 1), 1), "infinite mean is never capped")
	assert.Zero(t, SamplePoisson(rng, 0, 5))
	assert.Zero(t, SamplePoisson(rng, -3, 5))
	assert.Zero(t, SamplePoisson(rng, math.NaN(), 5))
}

func TestSamplePoissonCapsAtMaxHits(t *testing.T) {
	rng := testRand()
	for _, maxHits := range []int{1, 3, 7} {
		for i := 0; i < 2000; i++ {
			h := SamplePoisson(rng, 50, maxHits)
			if h < 0 || h > float64(maxHits) || h != math.Trunc(h) {
				t.Fatalf("maxHits=%d: sample %v outside {0..%d}", maxHits, h, maxHits)
			}
		}
	}
}

func TestSamplePoissonMoments(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	const n = 20000

	tests := []struct {
		name    string
		mean    float64
		maxHits int
		// wantMean is E[min(X, maxHits)].
		wantMean float64
	}{
		{"uncapped", 2.5, 1000, 2.5},
		{"binary", 0.7, 1, 1 - math.Exp(-0.7)},
		{"small mean", 0.05, 1000, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draws := make([]float64, n)
			for i := range draws {
				draws[i] = SamplePoisson(rng, tt.mean, tt.maxHits)
			}
			got := stat.Mean(draws, nil)
			// Five standard errors, with the uncapped variance as a bound.
			tol := 5 * math.Sqrt(tt.mean/n)
			assert.InDelta(t, tt.wantMean, got, tol)
		})
	}
}

func TestSamplePoissonReproducible(t *testing.T) {
	a := rand.New(rand.NewPCG(9, 9))
	b := rand.New(rand.NewPCG(9, 9))
	for i := 0; i < 100; i++ {
		assert.Equal(t, SamplePoisson(a, 1.3, 4), SamplePoisson(b, 1.3, 4))
	}
}

func TestIsDetection(t *testing.T) {
	assert.False(t, IsDetection(0))
	assert.True(t, IsDetection(1))
	assert.True(t, IsDetection(math.Inf(1)))
}
