package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/components"
	"github.com/pthm-cable/exertion/config"
	"github.com/pthm-cable/exertion/mesh"
)

func init() {
	config.MustInit("")
}

// testParams returns default params with a small grid.
func testParams(grid int) Params {
	p := ParamsFromConfig(config.Cfg())
	p.GridSize = grid
	return p
}

func isFinite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ---------- construction ----------

func TestParamsFromConfig(t *testing.T) {
	p := ParamsFromConfig(config.Cfg())

	if p.GridSize != 200 {
		t.Errorf("expected grid size 200, got %d", p.GridSize)
	}
	if math.Abs(p.Dt-1.0/60) > 1e-9 {
		t.Errorf("expected dt 1/60, got %f", p.Dt)
	}
	if p.ForceClamp != 10 || p.MaxVelocity != 30 {
		t.Errorf("expected clamp 10 and max velocity 30, got %f and %f", p.ForceClamp, p.MaxVelocity)
	}
	if p.HotColor != (components.Color{R: 1, A: 1}) {
		t.Errorf("expected red hot color, got %+v", p.HotColor)
	}
	if p.Attractor.Power != 30 || p.Attractor.Radius != 100 {
		t.Errorf("expected attractor 30/100, got %+v", p.Attractor)
	}
	if p.Workers != 1 {
		t.Errorf("expected 1 worker, got %d", p.Workers)
	}

	cfg := *config.Cfg()
	cfg.Exertors.Oscillator.Radius = 0
	if r := ParamsFromConfig(&cfg).Oscillator.Radius; !math.IsInf(r, 1) {
		t.Errorf("expected radius 0 to become unbounded, got %f", r)
	}
}

func TestNewParticleSystemLayout(t *testing.T) {
	n := 10
	s := NewParticleSystem(testParams(n), mesh.Builtin(4), "sphere", 0)

	if s.Count() != n*n {
		t.Fatalf("expected %d particles, got %d", n*n, s.Count())
	}
	if len(s.Offsets()) != 3*n*n {
		t.Errorf("expected offsets length %d, got %d", 3*n*n, len(s.Offsets()))
	}
	if len(s.Colors()) != 4*n*n {
		t.Errorf("expected colors length %d, got %d", 4*n*n, len(s.Colors()))
	}
	if s.ExertorCount() != 1 || s.Exertors()[0].Kind != KindNone {
		t.Errorf("expected single None exertor, got %v", s.Exertors())
	}

	bound := s.Params().Bound
	for i := 0; i < s.Count(); i++ {
		p := s.Particle(i)
		for _, c := range [3]float64{p.Position.X, p.Position.Y, p.Position.Z} {
			if c < -bound || c > bound {
				t.Fatalf("particle %d: expected position within bound %f, got %v", i, bound, p.Position)
			}
		}
		if p.Velocity != (r3.Vec{}) {
			t.Fatalf("particle %d: expected to start at rest, got %v", i, p.Velocity)
		}
	}

	// Row-major grid: particle i*n+j has base color (i/n, j/n, 1, 1).
	p := s.Particle(3*n + 7)
	expected := components.Color{R: 0.3, G: 0.7, B: 1, A: 1}
	if math.Abs(p.BaseColor.R-expected.R) > 1e-12 || math.Abs(p.BaseColor.G-expected.G) > 1e-12 ||
		p.BaseColor.B != 1 || p.BaseColor.A != 1 {
		t.Errorf("expected base color %+v, got %+v", expected, p.BaseColor)
	}

	off := s.Offsets()
	first := s.Particle(0).Position
	if off[0] != float32(first.X) || off[1] != float32(first.Y) || off[2] != float32(first.Z) {
		t.Errorf("expected offsets to hold initial positions, got %v vs %v", off[:3], first)
	}
}

func TestNewParticleSystemFromParticlesCopies(t *testing.T) {
	src := []components.Particle{
		components.NewParticle(r3.Vec{X: 1}, components.Color{B: 1, A: 1}),
	}
	s := NewParticleSystemFromParticles(testParams(0), src, nil, "", 0)
	src[0].Position.X = 99

	if s.Particle(0).Position.X != 1 {
		t.Errorf("expected system to own a copy, got %v", s.Particle(0).Position)
	}
}

// ---------- update ----------

func TestDeterminism(t *testing.T) {
	build := func() *ParticleSystem {
		s := NewParticleSystem(testParams(12), mesh.Builtin(6), "torus", 5)
		s.AddNewForce(r3.Vec{X: 10, Y: 10, Z: 10}, "attractor")
		s.AddNewForce(r3.Vec{X: -20}, "repeller")
		s.UpdateUserForce(r3.Vec{Z: 15})
		return s
	}

	a, b := build(), build()
	for step := 0; step < 120; step++ {
		if step == 60 {
			a.ActivateMesh()
			b.ActivateMesh()
		}
		a.Update()
		b.Update()
	}

	oa, ob := a.Offsets(), b.Offsets()
	for i := range oa {
		if oa[i] != ob[i] {
			t.Fatalf("offset %d: expected identical runs, got %v vs %v", i, oa[i], ob[i])
		}
	}
	ca, cb := a.Colors(), b.Colors()
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("color %d: expected identical runs, got %v vs %v", i, ca[i], cb[i])
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	build := func(workers int) *ParticleSystem {
		p := testParams(40) // above the parallel threshold
		p.Workers = workers
		s := NewParticleSystem(p, mesh.Builtin(6), "sphere", 9)
		s.AddNewForce(r3.Vec{}, "oscillator")
		s.AddNewForce(r3.Vec{X: 30}, "repeller")
		return s
	}

	serial, parallel := build(1), build(4)
	for step := 0; step < 30; step++ {
		serial.Update()
		parallel.Update()
	}

	if serial.ClampedCount() != parallel.ClampedCount() {
		t.Errorf("expected equal clamped counts, got %d vs %d", serial.ClampedCount(), parallel.ClampedCount())
	}
	so, po := serial.Offsets(), parallel.Offsets()
	for i := range so {
		if so[i] != po[i] {
			t.Fatalf("offset %d: expected parallel to match serial, got %v vs %v", i, po[i], so[i])
		}
	}
}

func TestForceClamp(t *testing.T) {
	s := NewParticleSystem(testParams(10), nil, "", 3)
	s.AddNewForce(r3.Vec{}, "repeller")
	s.AddNewForce(r3.Vec{X: 5}, "repeller")
	s.AddNewForce(r3.Vec{Y: -5}, "oscillator")

	limit := s.Params().ForceClamp
	sawClamp := false
	for step := 0; step < 50; step++ {
		s.Update()
		if s.ClampedCount() > 0 {
			sawClamp = true
		}
		for i := 0; i < s.Count(); i++ {
			a := r3.Norm(s.Particle(i).Acceleration)
			if a > limit*(1+1e-9) {
				t.Fatalf("step %d particle %d: expected |a| <= %f, got %f", step, i, limit, a)
			}
		}
	}
	if !sawClamp {
		t.Error("expected at least one clamped particle near the repellers")
	}
}

func TestColorBound(t *testing.T) {
	s := NewParticleSystem(testParams(10), nil, "", 1)
	s.AddNewForce(r3.Vec{}, "oscillator")

	for step := 0; step < 200; step++ {
		s.Update()
	}

	colors := s.Colors()
	for i := 0; i < s.Count(); i++ {
		p := s.Particle(i)
		for ch, v := range colors[i*4 : i*4+4] {
			if v < 0 || v > 1 {
				t.Fatalf("particle %d channel %d: expected color in [0,1], got %f", i, ch, v)
			}
		}
		if p.Color.A != p.BaseColor.A {
			t.Fatalf("particle %d: expected alpha %f, got %f", i, p.BaseColor.A, p.Color.A)
		}
	}
}

func TestColorBlend(t *testing.T) {
	tests := []struct {
		speed, max, expected float64
	}{
		{0, 30, 0},
		{15, 30, 0.5},
		{30, 30, 1},
		{90, 30, 1},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := ColorBlend(tt.speed, tt.max); got != tt.expected {
			t.Errorf("ColorBlend(%f, %f): expected %f, got %f", tt.speed, tt.max, tt.expected, got)
		}
	}
}

func TestAttractorScenario(t *testing.T) {
	target := r3.Vec{X: 10, Y: 10, Z: 10}
	particles := []components.Particle{
		components.NewParticle(r3.Vec{}, components.Color{B: 1, A: 1}),
	}
	s := NewParticleSystemFromParticles(testParams(0), particles, nil, "", 0)
	s.AddNewForce(target, "attractor")

	s.Update()
	p := s.Particle(0)
	if r3.Dot(p.Velocity, target) <= 0 {
		t.Errorf("expected first-step velocity toward target, got %v", p.Velocity)
	}
	moved := r3.Scale(s.Params().Dt, p.Velocity)
	if !approxVec(p.Position, moved, 1e-12) {
		t.Errorf("expected position v*dt = %v, got %v", moved, p.Position)
	}

	radius := s.Params().Attractor.Radius
	for step := 1; step < 1000; step++ {
		s.Update()
		p = s.Particle(0)
		if !isFinite(p.Position) || !isFinite(p.Velocity) {
			t.Fatalf("step %d: expected finite state, got pos %v vel %v", step, p.Position, p.Velocity)
		}
		if d := r3.Norm(r3.Sub(target, p.Position)); d > radius {
			t.Fatalf("step %d: expected to stay within %f of target, got %f", step, radius, d)
		}
	}
}

// ---------- exertor lifecycle ----------

func TestAddNewForceUnknownType(t *testing.T) {
	s := NewParticleSystem(testParams(2), nil, "", 0)
	s.AddNewForce(r3.Vec{}, "attractor")
	before := s.ExertorCount()

	s.AddNewForce(r3.Vec{}, "vortex")
	s.AddNewForce(r3.Vec{}, "mesh_attractor")
	s.AddNewForce(r3.Vec{}, "none")

	if s.ExertorCount() != before {
		t.Errorf("expected exertor count %d, got %d", before, s.ExertorCount())
	}
}

func TestUserForceSlot(t *testing.T) {
	s := NewParticleSystem(testParams(2), nil, "", 0)
	s.AddNewForce(r3.Vec{X: 1}, "repeller")

	s.UpdateUserForce(r3.Vec{Y: 3})
	if s.ExertorCount() != 2 {
		t.Errorf("expected user force to reuse slot 0, got %d exertors", s.ExertorCount())
	}
	user := s.Exertors()[0]
	if user.Kind != KindAttractor || user.Position != (r3.Vec{Y: 3}) {
		t.Errorf("expected attractor at (0,3,0), got %v at %v", user.Kind, user.Position)
	}

	if !s.SetMouseExertorType("oscillator") {
		t.Fatal("expected oscillator to be accepted")
	}
	s.UpdateUserForce(r3.Vec{Y: 4})
	if s.Exertors()[0].Kind != KindOscillator {
		t.Errorf("expected oscillator in slot 0, got %v", s.Exertors()[0].Kind)
	}

	if s.SetMouseExertorType("mesh_attractor") {
		t.Error("expected mesh_attractor to be rejected as a mouse type")
	}
	if s.MouseExertorType() != "oscillator" {
		t.Errorf("expected mouse type to stay oscillator, got %s", s.MouseExertorType())
	}

	s.CancelUserForce()
	if s.Exertors()[0].Kind != KindNone {
		t.Errorf("expected None in slot 0 after cancel, got %v", s.Exertors()[0].Kind)
	}
	if s.Exertors()[1].Kind != KindRepeller {
		t.Errorf("expected permanent repeller untouched, got %v", s.Exertors()[1].Kind)
	}
}

func TestUserForceUnknownMouseType(t *testing.T) {
	p := testParams(2)
	p.MouseType = "vortex"
	s := NewParticleSystem(p, nil, "", 0)

	s.UpdateUserForce(r3.Vec{X: 1})
	if s.Exertors()[0].Kind != KindNone {
		t.Errorf("expected slot 0 to stay None, got %v", s.Exertors()[0].Kind)
	}
}

// ---------- mesh mode ----------

func TestMeshActivation(t *testing.T) {
	meshes := mesh.Set{"line": {1, 0, 0, 2, 0, 0, 3, 0, 0}}
	p := testParams(10)
	p.MeshScale = map[string]float64{"line": 10}
	s := NewParticleSystem(p, meshes, "line", 0)

	s.ActivateMesh()
	if !s.MeshActive() {
		t.Fatal("expected mesh mode active")
	}
	if n := s.MeshAssignments(); n < 1 || n > 3 {
		t.Errorf("expected 1..3 assignments, got %d", n)
	}

	for i := 0; i < s.Count(); i++ {
		e, ok := s.MeshExertor(i)
		if !ok {
			continue
		}
		if e.Kind != KindMeshAttractor || !math.IsInf(e.Radius, 1) {
			t.Errorf("particle %d: expected unbounded mesh attractor, got %+v", i, e)
		}
		if e.Position.Y != 0 || e.Position.Z != 0 || math.Mod(e.Position.X, 10) != 0 {
			t.Errorf("particle %d: expected scaled vertex position, got %v", i, e.Position)
		}
	}

	s.DeactivateMesh()
	if s.MeshActive() {
		t.Error("expected free mode after deactivate")
	}
}

func TestMeshLastWriteWins(t *testing.T) {
	// A single particle receives every vertex; the last one sticks.
	meshes := mesh.Set{"tri": {1, 0, 0, 0, 2, 0, 0, 0, 3}}
	particles := []components.Particle{components.NewParticle(r3.Vec{}, components.Color{A: 1})}
	s := NewParticleSystemFromParticles(testParams(0), particles, meshes, "tri", 0)

	s.ActivateMesh()
	e, ok := s.MeshExertor(0)
	if !ok {
		t.Fatal("expected particle 0 to be assigned")
	}
	scale := s.Params().meshScale("tri")
	if e.Position != (r3.Vec{Z: 3 * scale}) {
		t.Errorf("expected last vertex to win, got %v", e.Position)
	}
	if s.MeshAssignments() != 1 {
		t.Errorf("expected 1 assignment, got %d", s.MeshAssignments())
	}
}

func TestMeshModeExclusive(t *testing.T) {
	meshes := mesh.Set{"point": {50, 0, 0}}
	particles := []components.Particle{
		components.NewParticle(r3.Vec{}, components.Color{A: 1}),
		components.NewParticle(r3.Vec{Y: 1}, components.Color{A: 1}),
	}
	p := testParams(0)
	p.MeshScale = nil
	s := NewParticleSystemFromParticles(p, particles, meshes, "point", 0)
	s.AddNewForce(r3.Vec{X: -10}, "attractor")
	s.ActivateMesh()

	assigned := -1
	for i := 0; i < s.Count(); i++ {
		if _, ok := s.MeshExertor(i); ok {
			assigned = i
		}
	}
	if assigned < 0 {
		t.Fatal("expected one assigned particle")
	}
	unassigned := 1 - assigned

	s.Update()

	if v := s.Particle(unassigned).Velocity; v != (r3.Vec{}) {
		t.Errorf("expected unassigned particle to ignore free exertors, got %v", v)
	}
	if v := s.Particle(assigned).Velocity; v.X <= 0 {
		t.Errorf("expected assigned particle pulled toward +X vertex, got %v", v)
	}

	s.DeactivateMesh()
	if n := s.MeshAssignments(); n != 0 {
		t.Errorf("expected 0 assignments in free mode, got %d", n)
	}
	if _, ok := s.MeshExertor(assigned); !ok {
		t.Error("expected assignment retained after deactivation")
	}
	s.Update()
	if v := s.Particle(unassigned).Velocity; v.X >= 0 {
		t.Errorf("expected free-mode attractor to pull toward -X, got %v", v)
	}
}

func TestUnknownMeshIsNoop(t *testing.T) {
	s := NewParticleSystem(testParams(4), mesh.Builtin(4), "teapot", 0)

	s.ActivateMesh()
	if s.MeshActive() {
		t.Error("expected unknown mesh to leave free mode")
	}
	if s.MeshAssignments() != 0 {
		t.Errorf("expected no assignments, got %d", s.MeshAssignments())
	}

	if s.SelectMesh("teapot") {
		t.Error("expected SelectMesh to reject unknown mesh")
	}
	if !s.SelectMesh("cube") || s.MeshName() != "cube" {
		t.Errorf("expected cube to be selected, got %s", s.MeshName())
	}
	s.ToggleMesh()
	if !s.MeshActive() {
		t.Error("expected toggle to activate known mesh")
	}
}

func TestSpeeds(t *testing.T) {
	s := NewParticleSystem(testParams(3), nil, "", 0)
	s.AddNewForce(r3.Vec{}, "oscillator")
	s.Update()

	speeds := s.Speeds(make([]float64, 5))
	if len(speeds) != s.Count() {
		t.Fatalf("expected %d speeds, got %d", s.Count(), len(speeds))
	}
	for i, v := range speeds {
		if v != s.Particle(i).Speed() {
			t.Errorf("particle %d: expected speed %f, got %f", i, s.Particle(i).Speed(), v)
		}
	}
	if s.Frame() != 1 {
		t.Errorf("expected frame 1, got %d", s.Frame())
	}
}
