package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/exertion/inspector"
	"github.com/pthm-cable/exertion/systems"
	"github.com/pthm-cable/exertion/ui"
)

const controlsLegend = "LMB hold: force | RMB: place | MMB/I: inspect | 1-3: type | M: mesh | N: next mesh | " +
	"arrows: orbit | wheel: zoom | R: reset | SPACE: pause | P: perf"

// Draw renders the game state.
func (g *Game) Draw() {
	if g.headless {
		return
	}
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.particleRenderer.Draw(g.camera, g.system.Offsets(), g.system.Colors(), g.system.Count(), g.system.Exertors())

	selected, hasSelected := g.inspector.Selected()
	if hasSelected {
		g.particleRenderer.DrawSelection(g.camera, g.system.Offsets(), selected)
	}

	actions := g.hud.Draw(ui.HUDData{
		Title:           "Exertion",
		Tick:            g.tick,
		FPS:             rl.GetFPS(),
		StepsPerUpdate:  g.stepsPerUpdate,
		Particles:       g.system.Count(),
		Exertors:        g.system.ExertorCount() - 1,
		MouseType:       g.system.MouseExertorType(),
		UserForce:       g.userForce,
		MeshActive:      g.system.MeshActive(),
		MeshName:        g.system.MeshName(),
		MeshAssignments: g.system.MeshAssignments(),
		Paused:          g.paused,
		ScreenWidth:     int32(g.screenWidth),
		ScreenHeight:    int32(g.screenHeight),
	})
	g.applyHUDActions(actions)

	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsLegend)

	if hasSelected {
		g.inspector.Draw(g.system.Particle(selected), g.particleStatus(selected), g.system.Params().MaxVelocity)
	}

	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	rl.EndDrawing()
}

// applyHUDActions applies toolbar button presses.
func (g *Game) applyHUDActions(a ui.HUDActions) {
	if a.MouseType != "" {
		g.SetMouseType(a.MouseType)
	}
	if a.ToggleMesh {
		g.ToggleMesh()
	}
	if a.NextMesh {
		g.NextMesh()
	}
}

// particleStatus derives the inspector status block for particle i.
func (g *Game) particleStatus(i int) inspector.Status {
	p := g.system.Particle(i)
	speed := p.Speed()
	status := inspector.Status{
		Speed: speed,
		Blend: systems.ColorBlend(speed, g.system.Params().MaxVelocity),
	}
	if e, ok := g.system.MeshExertor(i); ok && g.system.MeshActive() {
		status.MeshBound = true
		status.MeshTarget = e.Position
	}
	return status
}
