// Package renderer draws the particle buffers and exertors with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/exertion/camera"
	"github.com/pthm-cable/exertion/systems"
)

// Exertor marker colors by kind.
var (
	ColorAttractor  = rl.Color{R: 90, G: 220, B: 120, A: 255}
	ColorRepeller   = rl.Color{R: 230, G: 80, B: 70, A: 255}
	ColorOscillator = rl.Color{R: 240, G: 200, B: 80, A: 255}
	ColorSelected   = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorBounds     = rl.Color{R: 60, G: 60, B: 80, A: 255}
)

// markerSize is the edge length of an exertor marker cube.
const markerSize = 2.0

// Camera3D converts the orbit camera into a raylib camera.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	eye := cam.Eye()
	return rl.NewCamera3D(
		rl.NewVector3(float32(eye.X), float32(eye.Y), float32(eye.Z)),
		rl.NewVector3(float32(cam.Target.X), float32(cam.Target.Y), float32(cam.Target.Z)),
		rl.NewVector3(0, 1, 0),
		float32(cam.FovY),
		rl.CameraPerspective,
	)
}

// ParticleRenderer draws particles as small additive cubes.
type ParticleRenderer struct {
	size  float32
	bound float32
}

// NewParticleRenderer creates a renderer for cubes of edge length size.
// A positive bound draws the placement volume as a wire cube.
func NewParticleRenderer(size, bound float64) *ParticleRenderer {
	if size <= 0 {
		size = 0.5
	}
	return &ParticleRenderer{size: float32(size), bound: float32(bound)}
}

// Draw renders count particles from the packed offset (xyz) and color (rgba) buffers,
// followed by markers for the active exertors.
func (r *ParticleRenderer) Draw(cam *camera.Camera, offsets, colors []float32, count int, exertors []systems.Exertor) {
	rl.BeginMode3D(Camera3D(cam))

	if r.bound > 0 {
		rl.DrawCubeWires(rl.NewVector3(0, 0, 0), 2*r.bound, 2*r.bound, 2*r.bound, ColorBounds)
	}

	rl.BeginBlendMode(rl.BlendAdditive)
	for i := 0; i < count; i++ {
		o, c := i*3, i*4
		pos := rl.NewVector3(offsets[o], offsets[o+1], offsets[o+2])
		rl.DrawCube(pos, r.size, r.size, r.size, toColor(colors[c:c+4]))
	}
	rl.EndBlendMode()

	for _, e := range exertors {
		drawExertor(e)
	}

	rl.EndMode3D()
}

// DrawSelection outlines the particle at slot i.
func (r *ParticleRenderer) DrawSelection(cam *camera.Camera, offsets []float32, i int) {
	o := i * 3
	if i < 0 || o+2 >= len(offsets) {
		return
	}
	rl.BeginMode3D(Camera3D(cam))
	pos := rl.NewVector3(offsets[o], offsets[o+1], offsets[o+2])
	s := r.size * 4
	rl.DrawCubeWires(pos, s, s, s, ColorSelected)
	rl.EndMode3D()
}

func drawExertor(e systems.Exertor) {
	var color rl.Color
	switch e.Kind {
	case systems.KindAttractor:
		color = ColorAttractor
	case systems.KindRepeller:
		color = ColorRepeller
	case systems.KindOscillator:
		color = ColorOscillator
	default:
		return
	}

	pos := rl.NewVector3(float32(e.Position.X), float32(e.Position.Y), float32(e.Position.Z))
	rl.DrawCube(pos, markerSize, markerSize, markerSize, color)
	if !math.IsInf(e.Radius, 0) {
		rl.DrawSphereWires(pos, float32(e.Radius), 8, 12, rl.ColorAlpha(color, 0.15))
	}
}

// toColor converts a normalized rgba slice to a raylib color.
func toColor(c []float32) rl.Color {
	return rl.Color{R: unit8(c[0]), G: unit8(c[1]), B: unit8(c[2]), A: unit8(c[3])}
}

func unit8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
