package game

import (
	"log/slog"

	"github.com/pthm-cable/exertion/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.systemState())
	perfStats := g.perfCollector.Stats()

	g.speedHistory = append(g.speedHistory, stats.SpeedMean)

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// systemState samples the particle system for the stats window.
func (g *Game) systemState() telemetry.SystemState {
	g.speeds = g.system.Speeds(g.speeds)

	// the user slot counts only while held
	exertors := g.system.ExertorCount() - 1
	if g.userForce {
		exertors++
	}

	return telemetry.SystemState{
		MeshActive:      g.system.MeshActive(),
		MeshName:        g.system.MeshName(),
		Exertors:        exertors,
		MeshAssignments: g.system.MeshAssignments(),
		MaxVelocity:     g.system.Params().MaxVelocity,
		Speeds:          g.speeds,
	}
}
