// Package inspector draws a detail panel for a single selected particle.
package inspector

import (
	"fmt"
	"strconv"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/components"
)

// Panel dimensions
const (
	PanelWidth   = 320
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Status holds derived per-particle values shown below the particle record.
type Status struct {
	Speed      float64 `inspect:"bar"`
	Blend      float64 `inspect:"bar,max:1"`
	MeshBound  bool
	MeshTarget r3.Vec `inspect:"vec,fmt:%.1f"`
}

// Inspector tracks the selected particle and renders its panel.
type Inspector struct {
	selected     int
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	ins := &Inspector{panelY: 10}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize re-anchors the panel to the right edge.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
}

// Select marks particle i as selected.
func (ins *Inspector) Select(i int) {
	ins.selected = i
	ins.hasSelected = true
}

// Deselect clears the selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the selected particle index.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.hasSelected
}

// Contains reports whether a screen point lies on the open panel.
func (ins *Inspector) Contains(x, y float32) bool {
	if !ins.hasSelected {
		return false
	}
	return int32(x) >= ins.panelX && int32(x) <= ins.panelX+PanelWidth &&
		int32(y) >= ins.panelY && int32(y) <= ins.panelY+ins.panelHeight()
}

// CloseHit reports whether a screen point lies on the close button.
func (ins *Inspector) CloseHit(x, y float32) bool {
	if !ins.hasSelected {
		return false
	}
	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	return int32(x) >= closeX && int32(x) <= closeX+20 &&
		int32(y) >= closeY && int32(y) <= closeY+20
}

// Draw renders the panel for the selected particle.
func (ins *Inspector) Draw(p components.Particle, status Status, maxVelocity float64) {
	if !ins.hasSelected {
		return
	}

	panelHeight := ins.panelHeight()
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(fmt.Sprintf("PARTICLE %d", ins.selected), ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding

	ins.drawSectionHeader(x, y, "Record")
	y += 22
	for _, f := range ExtractFields(p) {
		y += DrawField(x, y, f)
	}

	y += 6
	ins.drawSectionHeader(x, y, "Status")
	y += 22
	for _, f := range statusFields(status, maxVelocity) {
		y += DrawField(x, y, f)
	}
}

// statusFields extracts Status fields with the speed bar scaled to maxVelocity.
func statusFields(status Status, maxVelocity float64) []Field {
	fields := ExtractFields(status)
	for i := range fields {
		if fields[i].Name == "Speed" && maxVelocity > 0 {
			fields[i].Options["max"] = strconv.FormatFloat(maxVelocity, 'f', -1, 64)
		}
		if fields[i].Name == "MeshTarget" && !status.MeshBound {
			fields[i].Widget = WidgetLabel
			fields[i].Value = "-"
		}
	}
	return fields
}

func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// panelHeight fits three vectors, the color and the status block.
func (ins *Inspector) panelHeight() int32 {
	h := int32(HeaderHeight + PanelPadding)
	h += 22 + 3*36 + 18
	h += 6 + 22 + 18 + 18 + 18 + 36
	return h + PanelPadding
}
