package telemetry

import (
	"math"
	"testing"
)

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	s := ComputeSpeedStats(values, 9)

	if math.Abs(s.Mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", s.Mean)
	}
	// sample standard deviation of 1..10
	if math.Abs(s.Std-3.02765) > 0.001 {
		t.Errorf("std = %v, want ~3.028", s.Std)
	}
	if s.P50 != 5 {
		t.Errorf("p50 = %v, want 5", s.P50)
	}
	if s.P90 != 9 {
		t.Errorf("p90 = %v, want 9", s.P90)
	}
	if s.Max != 10 {
		t.Errorf("max = %v, want 10", s.Max)
	}
	if math.Abs(s.HotFraction-0.2) > 1e-12 {
		t.Errorf("hot fraction = %v, want 0.2", s.HotFraction)
	}

	// input must not be reordered
	if values[0] != 10 {
		t.Error("expected input slice left unsorted")
	}
}

func TestComputeSpeedStatsEdgeCases(t *testing.T) {
	empty := ComputeSpeedStats(nil, 30)
	if empty != (SpeedStats{}) {
		t.Errorf("empty input should return zero stats, got %+v", empty)
	}

	single := ComputeSpeedStats([]float64{4}, 30)
	if single.Mean != 4 || single.Std != 0 || single.P50 != 4 || single.Max != 4 {
		t.Errorf("single value stats wrong: %+v", single)
	}

	noMax := ComputeSpeedStats([]float64{1, 2, 3}, 0)
	if noMax.HotFraction != 0 {
		t.Errorf("expected no hot fraction without a max velocity, got %v", noMax.HotFraction)
	}
}
