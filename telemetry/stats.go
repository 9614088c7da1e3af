package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Simulation modes reported in WindowStats.
const (
	ModeFree = "free"
	ModeMesh = "mesh"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// System state at window end
	Mode            string `csv:"mode"`
	MeshName        string `csv:"mesh"`
	Particles       int    `csv:"particles"`
	Exertors        int    `csv:"exertors"`
	MeshAssignments int    `csv:"mesh_assignments"`

	// Events during window
	ForcesAdded    int     `csv:"forces_added"`
	UserForceTicks int     `csv:"user_force_ticks"`
	UserCancels    int     `csv:"user_cancels"`
	MeshToggles    int     `csv:"mesh_toggles"`
	ClampedMean    float64 `csv:"clamped_mean"` // particles clamped per frame

	// Speed distribution (sampled at window end)
	SpeedMean   float64 `csv:"speed_mean"`
	SpeedStd    float64 `csv:"speed_std"`
	SpeedP50    float64 `csv:"speed_p50"`
	SpeedP90    float64 `csv:"speed_p90"`
	SpeedMax    float64 `csv:"speed_max"`
	HotFraction float64 `csv:"hot_fraction"` // share of particles at or above max velocity

	MaxVelocity float64 `csv:"-"`
}

// SpeedStats summarizes a speed sample.
type SpeedStats struct {
	Mean, Std     float64
	P50, P90, Max float64
	HotFraction   float64
}

// ComputeSpeedStats calculates the distribution of particle speeds.
// Particles at or above maxVelocity count toward HotFraction.
func ComputeSpeedStats(values []float64, maxVelocity float64) SpeedStats {
	n := len(values)
	if n == 0 {
		return SpeedStats{}
	}

	var s SpeedStats
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	s.Max = floats.Max(sorted)

	if maxVelocity > 0 {
		// first index at or above maxVelocity
		hot := n - sort.SearchFloat64s(sorted, maxVelocity)
		s.HotFraction = float64(hot) / float64(n)
	}

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("mode", s.Mode),
		slog.String("mesh", s.MeshName),
		slog.Int("particles", s.Particles),
		slog.Int("exertors", s.Exertors),
		slog.Int("mesh_assignments", s.MeshAssignments),
		slog.Int("forces_added", s.ForcesAdded),
		slog.Int("user_force_ticks", s.UserForceTicks),
		slog.Int("user_cancels", s.UserCancels),
		slog.Int("mesh_toggles", s.MeshToggles),
		slog.Float64("clamped_mean", s.ClampedMean),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("hot_fraction", s.HotFraction),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"mode", s.Mode,
		"mesh", s.MeshName,
		"exertors", s.Exertors,
		"mesh_assignments", s.MeshAssignments,
		"forces_added", s.ForcesAdded,
		"user_force_ticks", s.UserForceTicks,
		"mesh_toggles", s.MeshToggles,
		"clamped_mean", s.ClampedMean,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
		"hot_fraction", s.HotFraction,
	)
}
