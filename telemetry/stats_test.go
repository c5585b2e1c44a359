package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSummary(t *testing.T) {
	// Unsorted on purpose; the input must not be reordered.
	values := []float64{0.5, 0.1, 1.0, 0.3, 0.2, 0.9, 0.4, 0.6, 0.8, 0.7}
	mean, std, p10, p50, p90 := ComputeSummary(values)

	if math.Abs(mean-0.55) > 1e-9 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Population std of 0.1..1.0 is sqrt(0.0825).
	if math.Abs(std-math.Sqrt(0.0825)) > 1e-9 {
		t.Errorf("std = %v, want %v", std, math.Sqrt(0.0825))
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
	if values[0] != 0.5 {
		t.Error("ComputeSummary reordered its input")
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeSummary(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestNewEpisodeStats(t *testing.T) {
	es := NewEpisodeStats(2, "basic", 300, 0.01, 4, 1000, 250, []float64{1, 2, 3}, []float64{10, 20, 30, 40})

	if es.Found != 3 || es.SuccessRate != 0.75 {
		t.Errorf("found = %d, success = %v; want 3, 0.75", es.Found, es.SuccessRate)
	}
	if math.Abs(es.SimTimeSec-3) > 1e-12 {
		t.Errorf("sim time = %v, want 3", es.SimTimeSec)
	}
	if es.TimeMean != 2 || es.TimeP50 != 2 {
		t.Errorf("time mean/p50 = %v/%v, want 2/2", es.TimeMean, es.TimeP50)
	}
	if es.DetectRate != 0.25 {
		t.Errorf("detect rate = %v, want 0.25", es.DetectRate)
	}
	if es.PathCellsMean != 25 {
		t.Errorf("path cells mean = %v, want 25", es.PathCellsMean)
	}

	none := NewEpisodeStats(0, "empty", 10, 0.01, 0, 0, 0, nil, nil)
	if none.SuccessRate != 0 || none.DetectRate != 0 || none.TimeMean != 0 {
		t.Errorf("empty episode should have zero rates, got %+v", none)
	}
}
