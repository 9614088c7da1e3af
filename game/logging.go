package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/exertion/telemetry"
)

// logScene logs the current scene state.
func (g *Game) logScene(msg string) {
	mode := telemetry.ModeFree
	if g.system.MeshActive() {
		mode = telemetry.ModeMesh
	}
	slog.Info(msg,
		"tick", g.tick,
		"seed", g.system.Seed(),
		"particles", g.system.Count(),
		"exertors", g.system.ExertorCount()-1,
		"mode", mode,
		"mesh", g.system.MeshName(),
		"mouse_type", g.system.MouseExertorType(),
		"headless", g.headless,
	)
}

// logPerfStats logs the rolling tick timing.
func (g *Game) logPerfStats() {
	stats := g.perfCollector.Stats()
	slog.Info("perf",
		"tick", g.tick,
		"steps_per_update", g.stepsPerUpdate,
		"fps", rl.GetFPS(),
		"stats", stats,
	)
}
