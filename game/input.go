package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/exertion/ui"
)

// Camera control rates
const (
	orbitSpeed = 0.02 // radians per frame while an arrow key is held
	zoomStep   = 0.1  // fraction of distance per wheel notch
	pickRadius = 12.0 // pixels
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	typeKeys := []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree}
	for i, key := range typeKeys {
		if rl.IsKeyPressed(key) {
			g.SetMouseType(ui.MouseTypes[i])
		}
	}

	if rl.IsKeyPressed(rl.KeyM) {
		g.ToggleMesh()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.NextMesh()
	}

	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.logPerfStats()
	}

	g.handleCameraInput()
	g.handleMouseInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	if g.camera != nil {
		g.camera.Resize(float64(w), float64(h))
	}
	if g.inspector != nil {
		g.inspector.Resize(int32(w), int32(h))
	}
	if g.perfPanel != nil {
		g.perfPanel.SetPosition(int32(w)-250, int32(h)-200)
	}
}

// handleCameraInput processes orbit and zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Orbit(orbitSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Orbit(-orbitSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Orbit(0, orbitSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Orbit(0, -orbitSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + float64(wheel)*zoomStep)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyR) || rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleMouseInput places exertors and picks particles for the inspector.
func (g *Game) handleMouseInput() {
	if g.camera == nil {
		return
	}

	mouse := rl.GetMousePosition()

	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		g.ReleaseUserForce()
	}

	if g.overUI(mouse) {
		g.ReleaseUserForce()
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && g.inspector.CloseHit(mouse.X, mouse.Y) {
			g.inspector.Deselect()
		}
		return
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		// cursor off the picking plane: skip this frame
		if pos, ok := g.camera.ScreenToWorld(float64(mouse.X), float64(mouse.Y)); ok {
			g.PressUserForce(pos)
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		if pos, ok := g.camera.ScreenToWorld(float64(mouse.X), float64(mouse.Y)); ok {
			g.AddForce(pos, g.system.MouseExertorType())
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonMiddle) || rl.IsKeyPressed(rl.KeyI) {
		g.selectAt(mouse.X, mouse.Y)
	}
}

// overUI reports whether the cursor is over the toolbar or the inspector panel.
func (g *Game) overUI(mouse rl.Vector2) bool {
	if rl.CheckCollisionPointRec(mouse, ui.ToolbarBounds(int32(g.screenHeight))) {
		return true
	}
	return g.inspector.Contains(mouse.X, mouse.Y)
}

// selectAt selects the particle under the cursor, or clears the selection.
func (g *Game) selectAt(sx, sy float32) {
	i, ok := g.camera.Pick(g.system.Offsets(), g.system.Count(), float64(sx), float64(sy), pickRadius)
	if !ok {
		g.inspector.Deselect()
		return
	}
	g.inspector.Select(i)
}
