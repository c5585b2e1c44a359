package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(3, 10, 0.01)

	if c.ShouldFlush(9) {
		t.Error("flushed before the window filled")
	}
	if !c.ShouldFlush(10) {
		t.Error("window of 10 ticks should flush at tick 10")
	}

	c.RecordSamples(8, 2, 0, 3)
	c.RecordSamples(8, 4, 1, 5)
	c.RecordArrivals(1)

	ws := c.Flush(10, 7, 1, 2, []float64{0.1, 0.3})
	if ws.Episode != 3 || ws.WindowStartTick != 0 || ws.WindowEndTick != 10 {
		t.Errorf("window bounds = %+v", ws)
	}
	if math.Abs(ws.SimTimeSec-0.1) > 1e-12 {
		t.Errorf("sim time = %v, want 0.1", ws.SimTimeSec)
	}
	if ws.Samples != 16 || ws.Detections != 6 || ws.Singular != 1 || ws.Hits != 8 || ws.Arrivals != 1 {
		t.Errorf("counters = %+v", ws)
	}
	if ws.DetectRate != 6.0/16 {
		t.Errorf("detect rate = %v", ws.DetectRate)
	}
	if math.Abs(ws.DistMean-0.2) > 1e-12 {
		t.Errorf("dist mean = %v, want 0.2", ws.DistMean)
	}

	// Counters reset and the next window starts where the last ended.
	if c.ShouldFlush(19) || !c.ShouldFlush(20) {
		t.Error("second window boundary wrong")
	}
	ws = c.Flush(14, 7, 1, 0, nil)
	if ws.WindowStartTick != 10 || ws.Samples != 0 || ws.Arrivals != 0 || ws.DetectRate != 0 {
		t.Errorf("counters not reset: %+v", ws)
	}
	if c.Pending(14) {
		t.Error("nothing pending right after a flush")
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	c := NewCollector(0, 0, 0.01)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("window = %d, want 1", c.WindowDurationTicks())
	}
}
