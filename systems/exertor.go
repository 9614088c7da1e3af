package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/components"
)

// ExertorKind identifies the force law of an exertor.
type ExertorKind uint8

const (
	KindNone ExertorKind = iota
	KindAttractor
	KindRepeller
	KindOscillator
	KindMeshAttractor
)

// Force law constants.
const (
	// Attractors stop a particle dead inside this distance.
	AttractorSnapDistance = 2.0
	// Attractors damp velocity between the snap distance and this distance.
	AttractorDampDistance = 6.0
	AttractorDamping      = 0.8

	AttractorFalloff  = 0.0001
	OscillatorFalloff = 0.001

	// RepellerMinDistance floors the inverse-square denominator.
	RepellerMinDistance = 0.5
)

var kindNames = [...]string{
	KindNone:          "none",
	KindAttractor:     "attractor",
	KindRepeller:      "repeller",
	KindOscillator:    "oscillator",
	KindMeshAttractor: "mesh_attractor",
}

// String returns the config name of the kind.
func (k ExertorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseExertorKind maps a config name to a kind.
func ParseExertorKind(s string) (ExertorKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return ExertorKind(k), true
		}
	}
	return KindNone, false
}

// Exertor is a force source. The zero value is a None exertor.
type Exertor struct {
	Kind     ExertorKind
	Position r3.Vec
	Power    float64
	Radius   float64 // math.Inf(1) for unbounded
}

// NewNone returns an exertor that never exerts force.
func NewNone() Exertor {
	return Exertor{Kind: KindNone}
}

// NewAttractor returns an attractor at pos.
func NewAttractor(pos r3.Vec, power, radius float64) Exertor {
	return Exertor{Kind: KindAttractor, Position: pos, Power: power, Radius: radius}
}

// NewRepeller returns a repeller at pos.
func NewRepeller(pos r3.Vec, power, radius float64) Exertor {
	return Exertor{Kind: KindRepeller, Position: pos, Power: power, Radius: radius}
}

// NewOscillator returns an oscillator at pos.
func NewOscillator(pos r3.Vec, power, radius float64) Exertor {
	return Exertor{Kind: KindOscillator, Position: pos, Power: power, Radius: radius}
}

// NewMeshAttractor returns an attractor with unbounded reach pinned to a mesh vertex.
func NewMeshAttractor(pos r3.Vec, power float64) Exertor {
	return Exertor{Kind: KindMeshAttractor, Position: pos, Power: power, Radius: math.Inf(1)}
}

// ForceOn returns the force this exertor applies to p.
// Attractor kinds may also reset or damp p.Velocity when p is close.
func (e Exertor) ForceOn(p *components.Particle) r3.Vec {
	if e.Kind == KindNone {
		return r3.Vec{}
	}

	toward := r3.Sub(e.Position, p.Position)
	d := r3.Norm(toward)
	if d > e.Radius {
		return r3.Vec{}
	}

	switch e.Kind {
	case KindAttractor, KindMeshAttractor:
		if d <= AttractorSnapDistance {
			p.Velocity = r3.Vec{}
			return r3.Scale(e.Power, toward)
		}
		if d < AttractorDampDistance {
			p.Velocity = r3.Scale(AttractorDamping, p.Velocity)
		}
		// |toward| == d, so scaling by d gives magnitude power*falloff*d^2
		return r3.Scale(e.Power*AttractorFalloff*d, toward)

	case KindOscillator:
		return r3.Scale(e.Power*OscillatorFalloff*d, toward)

	case KindRepeller:
		if d == 0 {
			return r3.Vec{}
		}
		eff := math.Max(d, RepellerMinDistance)
		mag := e.Power / (eff * eff)
		return r3.Scale(-mag/d, toward)
	}

	return r3.Vec{}
}
