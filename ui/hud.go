package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/exertion/telemetry"
)

// MouseTypes lists the exertor kinds offered on the toolbar, in key order (1, 2, 3).
var MouseTypes = []string{"attractor", "repeller", "oscillator"}

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title           string
	Tick            int32
	FPS             int32
	StepsPerUpdate  int
	Particles       int
	Exertors        int
	MouseType       string
	UserForce       bool
	MeshActive      bool
	MeshName        string
	MeshAssignments int
	Paused          bool
	ScreenWidth     int32
	ScreenHeight    int32
}

// HUDActions reports toolbar buttons pressed during Draw.
type HUDActions struct {
	MouseType  string // non-empty when a type button was pressed
	ToggleMesh bool
	NextMesh   bool
}

// HUD renders the main heads-up display and the toolbar.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// statusLines formats the info lines below the title.
func statusLines(data HUDData) []string {
	mode := "free"
	if data.MeshActive {
		mode = fmt.Sprintf("mesh %s (%d bound)", data.MeshName, data.MeshAssignments)
	}
	mouse := data.MouseType
	if data.UserForce {
		mouse += " (held)"
	}
	return []string{
		fmt.Sprintf("Particles: %d | Exertors: %d | Mode: %s", data.Particles, data.Exertors, mode),
		fmt.Sprintf("Tick: %d | Steps: %dx | FPS: %d | Mouse: %s", data.Tick, data.StepsPerUpdate, data.FPS, mouse),
	}
}

// Draw renders the HUD and returns any toolbar actions.
func (h *HUD) Draw(data HUDData) HUDActions {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	y := int32(35)
	for _, line := range statusLines(data) {
		rl.DrawText(line, 10, y, 16, rl.LightGray)
		y += 20
	}

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, y, 16, rl.Yellow)

	return h.drawToolbar(data)
}

// ToolbarBounds returns the screen area covered by the toolbar buttons.
func ToolbarBounds(screenHeight int32) rl.Rectangle {
	return rl.Rectangle{X: 10, Y: float32(screenHeight - 70), Width: 3*130 + 20 + 250, Height: 30}
}

// drawToolbar draws the raygui buttons along the bottom edge.
func (h *HUD) drawToolbar(data HUDData) HUDActions {
	var actions HUDActions

	bounds := ToolbarBounds(data.ScreenHeight)
	x, y := bounds.X, bounds.Y
	for i, kind := range MouseTypes {
		label := fmt.Sprintf("%d %s", i+1, kind)
		if kind == data.MouseType {
			label = "> " + label
		}
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 30}, label) {
			actions.MouseType = kind
		}
		x += 130
	}

	meshLabel := "M mesh on"
	if data.MeshActive {
		meshLabel = "M mesh off"
	}
	if gui.Button(rl.Rectangle{X: x + 20, Y: y, Width: 110, Height: 30}, meshLabel) {
		actions.ToggleMesh = true
	}
	if gui.Button(rl.Rectangle{X: x + 140, Y: y, Width: 110, Height: 30}, "N "+data.MeshName) {
		actions.NextMesh = true
	}

	return actions
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the tick phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	height := pad*2 + r.Theme.LineHeight*3 + 4 + int32(len(telemetry.Phases))*(r.Theme.LineHeight+2)

	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Tick Performance")
	y = r.DrawLabelValue(x, y, "avg", stats.AvgTickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "p95", stats.P95TickDuration.Round(time.Microsecond).String())

	for _, phase := range telemetry.Phases {
		y = r.DrawBar(x, y, phase, float32(stats.PhasePct[phase]/100), p.width-2*pad)
	}
}
