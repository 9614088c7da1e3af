// Package components defines the plain data records moved by the simulation.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Color is a linear RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Lerp blends the RGB channels toward target by u. Alpha is kept from c.
func (c Color) Lerp(target Color, u float64) Color {
	return Color{
		R: c.R + (target.R-c.R)*u,
		G: c.G + (target.G-c.G)*u,
		B: c.B + (target.B-c.B)*u,
		A: c.A,
	}
}

// Particle is a unit-mass point moved by exertor forces.
type Particle struct {
	Position     r3.Vec `inspect:"vec,fmt:%.2f"`
	Velocity     r3.Vec `inspect:"vec,fmt:%.2f"`
	Acceleration r3.Vec `inspect:"vec,fmt:%.2f"`

	// BaseColor is assigned at creation and never changes.
	BaseColor Color `inspect:"skip"`
	// Color is the display color: RGB is recomputed every frame from speed,
	// alpha always equals BaseColor.A.
	Color Color `inspect:"color"`
}

// NewParticle creates a particle at rest.
func NewParticle(position r3.Vec, color Color) Particle {
	return Particle{
		Position:  position,
		BaseColor: color,
		Color:     color,
	}
}

// Speed returns the velocity magnitude.
func (p Particle) Speed() float64 {
	return r3.Norm(p.Velocity)
}
