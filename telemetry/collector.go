package telemetry

import "math"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	forcesAdded    int
	userForceTicks int
	userCancels    int
	meshToggles    int

	// Per-frame accumulators
	frames     int
	clampedSum int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts a lifecycle event in the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventForceAdded:
		c.forcesAdded++
	case EventUserForce:
		c.userForceTicks++
	case EventUserCancel:
		c.userCancels++
	case EventMeshActivated, EventMeshDeactivated:
		c.meshToggles++
	}
}

// RecordFrame records one completed update and how many particles were clamped in it.
func (c *Collector) RecordFrame(clamped int) {
	c.frames++
	c.clampedSum += clamped
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// SystemState is the particle system state sampled at window end.
type SystemState struct {
	MeshActive      bool
	MeshName        string
	Exertors        int
	MeshAssignments int
	MaxVelocity     float64
	Speeds          []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, state SystemState) WindowStats {
	var clampedMean float64
	if c.frames > 0 {
		clampedMean = float64(c.clampedSum) / float64(c.frames)
	}

	mode := ModeFree
	if state.MeshActive {
		mode = ModeMesh
	}

	speed := ComputeSpeedStats(state.Speeds, state.MaxVelocity)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Mode:            mode,
		MeshName:        state.MeshName,
		Particles:       len(state.Speeds),
		Exertors:        state.Exertors,
		MeshAssignments: state.MeshAssignments,

		ForcesAdded:    c.forcesAdded,
		UserForceTicks: c.userForceTicks,
		UserCancels:    c.userCancels,
		MeshToggles:    c.meshToggles,
		ClampedMean:    clampedMean,

		SpeedMean:   speed.Mean,
		SpeedStd:    speed.Std,
		SpeedP50:    speed.P50,
		SpeedP90:    speed.P90,
		SpeedMax:    speed.Max,
		HotFraction: speed.HotFraction,
		MaxVelocity: state.MaxVelocity,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.forcesAdded = 0
	c.userForceTicks = 0
	c.userCancels = 0
	c.meshToggles = 0
	c.frames = 0
	c.clampedSum = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
