package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/components"
)

func particleAt(x, y, z float64) *components.Particle {
	p := components.NewParticle(r3.Vec{X: x, Y: y, Z: z}, components.Color{A: 1})
	return &p
}

func approxVec(a, b r3.Vec, eps float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= eps
}

func TestZeroForceOutsideRadius(t *testing.T) {
	origin := r3.Vec{}
	tests := []struct {
		name string
		e    Exertor
	}{
		{"attractor", NewAttractor(origin, 30, 5)},
		{"repeller", NewRepeller(origin, 400, 5)},
		{"oscillator", NewOscillator(origin, 30, 5)},
	}

	for _, tt := range tests {
		p := particleAt(10, 0, 0)
		p.Velocity = r3.Vec{X: 1, Y: 2, Z: 3}

		f := tt.e.ForceOn(p)
		if f != (r3.Vec{}) {
			t.Errorf("%s: expected zero force outside radius, got %v", tt.name, f)
		}
		if p.Velocity != (r3.Vec{X: 1, Y: 2, Z: 3}) {
			t.Errorf("%s: expected velocity untouched outside radius, got %v", tt.name, p.Velocity)
		}
	}
}

func TestNoneExertor(t *testing.T) {
	var e Exertor
	p := particleAt(1, 1, 1)
	p.Velocity = r3.Vec{X: 5}

	if f := e.ForceOn(p); f != (r3.Vec{}) {
		t.Errorf("expected zero force from zero-value exertor, got %v", f)
	}
	if f := NewNone().ForceOn(p); f != (r3.Vec{}) {
		t.Errorf("expected zero force from None, got %v", f)
	}
	if p.Velocity.X != 5 {
		t.Errorf("expected velocity untouched, got %v", p.Velocity)
	}
}

func TestAttractorFarField(t *testing.T) {
	e := NewAttractor(r3.Vec{X: 10}, 30, 100)
	p := particleAt(0, 0, 0)
	p.Velocity = r3.Vec{Y: 1}

	f := e.ForceOn(p)

	// power * 0.0001 * d^2 along +X
	expected := 30 * AttractorFalloff * 100
	if math.Abs(f.X-expected) > 1e-12 || f.Y != 0 || f.Z != 0 {
		t.Errorf("expected force (%f,0,0), got %v", expected, f)
	}
	if p.Velocity != (r3.Vec{Y: 1}) {
		t.Errorf("expected no damping at d=10, got %v", p.Velocity)
	}
}

func TestAttractorDampingBand(t *testing.T) {
	e := NewAttractor(r3.Vec{X: 4}, 30, 100)
	p := particleAt(0, 0, 0)
	p.Velocity = r3.Vec{X: 1, Y: -2}

	e.ForceOn(p)

	expected := r3.Vec{X: 0.8, Y: -1.6}
	if !approxVec(p.Velocity, expected, 1e-12) {
		t.Errorf("expected velocity damped to %v, got %v", expected, p.Velocity)
	}
}

func TestAttractorSnap(t *testing.T) {
	for _, kind := range []ExertorKind{KindAttractor, KindMeshAttractor} {
		e := Exertor{Kind: kind, Position: r3.Vec{X: 1, Y: 1}, Power: 30, Radius: math.Inf(1)}
		p := particleAt(0, 0, 0)
		p.Velocity = r3.Vec{Z: 7}

		f := e.ForceOn(p)

		if p.Velocity != (r3.Vec{}) {
			t.Errorf("%s: expected velocity reset inside snap distance, got %v", kind, p.Velocity)
		}
		expected := r3.Vec{X: 30, Y: 30}
		if !approxVec(f, expected, 1e-12) {
			t.Errorf("%s: expected raw displacement force %v, got %v", kind, expected, f)
		}
	}
}

func TestOscillatorForce(t *testing.T) {
	e := NewOscillator(r3.Vec{Z: -3}, 30, math.Inf(1))
	p := particleAt(0, 0, 0)
	p.Velocity = r3.Vec{X: 2}

	f := e.ForceOn(p)

	expected := -30 * OscillatorFalloff * 9
	if math.Abs(f.Z-expected) > 1e-12 || f.X != 0 || f.Y != 0 {
		t.Errorf("expected force (0,0,%f), got %v", expected, f)
	}
	if p.Velocity.X != 2 {
		t.Errorf("expected oscillator to leave velocity alone, got %v", p.Velocity)
	}
}

func TestRepellerForce(t *testing.T) {
	e := NewRepeller(r3.Vec{}, 400, 60)

	p := particleAt(4, 0, 0)
	f := e.ForceOn(p)
	if f.X <= 0 {
		t.Errorf("expected repeller to push away along +X, got %v", f)
	}
	if math.Abs(r3.Norm(f)-400.0/16) > 1e-9 {
		t.Errorf("expected magnitude %f, got %f", 400.0/16, r3.Norm(f))
	}

	// Inside the floor distance the magnitude saturates.
	near := particleAt(0.1, 0, 0)
	fn := e.ForceOn(near)
	maxMag := 400 / (RepellerMinDistance * RepellerMinDistance)
	if math.Abs(r3.Norm(fn)-maxMag) > 1e-9 {
		t.Errorf("expected floored magnitude %f, got %f", maxMag, r3.Norm(fn))
	}
}

func TestRepellerAtCenter(t *testing.T) {
	e := NewRepeller(r3.Vec{X: 1, Y: 2, Z: 3}, 400, 60)
	p := particleAt(1, 2, 3)

	f := e.ForceOn(p)
	if f != (r3.Vec{}) {
		t.Errorf("expected zero force at d=0, got %v", f)
	}
	if math.IsNaN(f.X) || math.IsNaN(f.Y) || math.IsNaN(f.Z) {
		t.Errorf("expected finite force at d=0, got %v", f)
	}
}

func TestParseExertorKind(t *testing.T) {
	tests := []struct {
		in       string
		expected ExertorKind
		ok       bool
	}{
		{"attractor", KindAttractor, true},
		{"repeller", KindRepeller, true},
		{"oscillator", KindOscillator, true},
		{"mesh_attractor", KindMeshAttractor, true},
		{"none", KindNone, true},
		{"vortex", KindNone, false},
		{"", KindNone, false},
	}

	for _, tt := range tests {
		got, ok := ParseExertorKind(tt.in)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("ParseExertorKind(%q): expected (%v, %v), got (%v, %v)", tt.in, tt.expected, tt.ok, got, ok)
		}
	}

	if s := ExertorKind(99).String(); s != "unknown" {
		t.Errorf("expected unknown for out-of-range kind, got %s", s)
	}
}
