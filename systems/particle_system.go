package systems

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/components"
	"github.com/pthm-cable/exertion/config"
	"github.com/pthm-cable/exertion/mesh"
)

// KindParams holds the power and cutoff radius used when creating an exertor of one kind.
type KindParams struct {
	Power  float64
	Radius float64 // math.Inf(1) for unbounded
}

// Params holds the tunables read by a ParticleSystem.
type Params struct {
	GridSize    int
	Bound       float64
	Dt          float64
	ForceClamp  float64
	MaxVelocity float64
	HotColor    components.Color

	Attractor  KindParams
	Repeller   KindParams
	Oscillator KindParams
	MeshPower  float64
	MeshScale  map[string]float64

	MouseType string
	Workers   int
}

// ParamsFromConfig builds Params from loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	kind := func(d config.ExertorDefaults) KindParams {
		r := d.Radius
		if r <= 0 {
			r = math.Inf(1)
		}
		return KindParams{Power: d.Power, Radius: r}
	}

	hot := cfg.Derived.HotColor
	scale := make(map[string]float64, len(cfg.Meshes.Scale))
	for name, s := range cfg.Meshes.Scale {
		scale[name] = s
	}

	return Params{
		GridSize:    cfg.Particles.GridSize,
		Bound:       cfg.Particles.Bound,
		Dt:          cfg.Physics.DT,
		ForceClamp:  cfg.Physics.ForceClamp,
		MaxVelocity: cfg.Physics.MaxVelocity,
		HotColor:    components.Color{R: hot[0], G: hot[1], B: hot[2], A: 1},
		Attractor:   kind(cfg.Exertors.Attractor),
		Repeller:    kind(cfg.Exertors.Repeller),
		Oscillator:  kind(cfg.Exertors.Oscillator),
		MeshPower:   cfg.Exertors.MeshPower,
		MeshScale:   scale,
		MouseType:   cfg.Exertors.MouseType,
		Workers:     cfg.Physics.Workers,
	}
}

func (p Params) meshScale(name string) float64 {
	if s, ok := p.MeshScale[name]; ok && s != 0 {
		return s
	}
	return 1
}

// ParticleSystem owns the particles, the ordered exertor list and the packed
// output buffers handed to the renderer.
type ParticleSystem struct {
	params Params

	particles []components.Particle
	// exertors[0] is the user exertor; it is None when no user force is active.
	exertors []Exertor

	meshes     mesh.Set
	meshName   string
	meshActive bool
	meshMap    map[int]Exertor

	sampler   *Sampler
	mouseType string

	offsets []float32 // 3 per particle
	colors  []float32 // 4 per particle

	workerClamped []int
	clamped       int
	frame         int
}

// NewParticleSystem places GridSize^2 particles uniformly in the cube
// [-Bound, Bound]^3 using a sampler seeded with seed.
func NewParticleSystem(params Params, meshes mesh.Set, meshName string, seed int64) *ParticleSystem {
	sampler := NewSampler(seed)

	n := params.GridSize
	if n < 0 {
		n = 0
	}
	particles := make([]components.Particle, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pos := r3.Vec{
				X: params.Bound * (2*sampler.Next() - 1),
				Y: params.Bound * (2*sampler.Next() - 1),
				Z: params.Bound * (2*sampler.Next() - 1),
			}
			color := components.Color{
				R: float64(i) / float64(n),
				G: float64(j) / float64(n),
				B: 1,
				A: 1,
			}
			particles = append(particles, components.NewParticle(pos, color))
		}
	}

	return newParticleSystem(params, particles, meshes, meshName, sampler)
}

// NewParticleSystemFromParticles builds a system around explicit particles.
// The slice is copied.
func NewParticleSystemFromParticles(params Params, particles []components.Particle, meshes mesh.Set, meshName string, seed int64) *ParticleSystem {
	owned := make([]components.Particle, len(particles))
	copy(owned, particles)
	return newParticleSystem(params, owned, meshes, meshName, NewSampler(seed))
}

func newParticleSystem(params Params, particles []components.Particle, meshes mesh.Set, meshName string, sampler *Sampler) *ParticleSystem {
	workers := params.Workers
	if workers < 1 {
		workers = 1
	}
	params.Workers = workers

	s := &ParticleSystem{
		params:        params,
		particles:     particles,
		exertors:      []Exertor{NewNone()},
		meshes:        meshes,
		meshName:      meshName,
		meshMap:       make(map[int]Exertor),
		sampler:       sampler,
		mouseType:     params.MouseType,
		offsets:       make([]float32, 3*len(particles)),
		colors:        make([]float32, 4*len(particles)),
		workerClamped: make([]int, workers),
	}

	for i := range s.particles {
		s.writeBuffers(i)
	}

	slog.Info("particle system created",
		"particles", len(particles),
		"seed", sampler.Seed(),
		"mesh", meshName,
		"workers", workers,
	)
	return s
}

// ColorBlend returns how far a particle at speed is blended toward the hot color, in [0, 1].
func ColorBlend(speed, maxVelocity float64) float64 {
	if maxVelocity <= 0 {
		return 1
	}
	return math.Min(1, speed/maxVelocity)
}

// Update advances every particle by one fixed timestep and refreshes the buffers.
func (s *ParticleSystem) Update() {
	parallelFor(len(s.particles), s.params.Workers, func(worker, start, end int) {
		clamped := 0
		for i := start; i < end; i++ {
			if s.step(i) {
				clamped++
			}
		}
		s.workerClamped[worker] = clamped
	})

	s.clamped = 0
	for w, c := range s.workerClamped {
		s.clamped += c
		s.workerClamped[w] = 0
	}
	s.frame++
}

// step integrates particle i and reports whether its net force was clamped.
func (s *ParticleSystem) step(i int) bool {
	p := &s.particles[i]

	var force r3.Vec
	if s.meshActive {
		if e, ok := s.meshMap[i]; ok {
			force = e.ForceOn(p)
		}
	} else {
		for _, e := range s.exertors {
			force = r3.Add(force, e.ForceOn(p))
		}
	}

	clamped := false
	if mag := r3.Norm(force); mag > s.params.ForceClamp {
		force = r3.Scale(s.params.ForceClamp/mag, force)
		clamped = true
	}

	dt := s.params.Dt
	p.Acceleration = force
	p.Velocity = r3.Add(p.Velocity, r3.Scale(dt, p.Acceleration))
	p.Position = r3.Add(p.Position, r3.Scale(dt, p.Velocity))

	u := ColorBlend(p.Speed(), s.params.MaxVelocity)
	p.Color = p.BaseColor.Lerp(s.params.HotColor, u)

	s.writeBuffers(i)
	return clamped
}

func (s *ParticleSystem) writeBuffers(i int) {
	p := &s.particles[i]
	o := i * 3
	s.offsets[o] = float32(p.Position.X)
	s.offsets[o+1] = float32(p.Position.Y)
	s.offsets[o+2] = float32(p.Position.Z)

	c := i * 4
	s.colors[c] = float32(p.Color.R)
	s.colors[c+1] = float32(p.Color.G)
	s.colors[c+2] = float32(p.Color.B)
	s.colors[c+3] = float32(p.Color.A)
}

// newExertor creates a user-placeable exertor of the named kind.
func (s *ParticleSystem) newExertor(kind string, pos r3.Vec) (Exertor, bool) {
	k, _ := ParseExertorKind(kind)
	switch k {
	case KindAttractor:
		return NewAttractor(pos, s.params.Attractor.Power, s.params.Attractor.Radius), true
	case KindRepeller:
		return NewRepeller(pos, s.params.Repeller.Power, s.params.Repeller.Radius), true
	case KindOscillator:
		return NewOscillator(pos, s.params.Oscillator.Power, s.params.Oscillator.Radius), true
	}
	return Exertor{}, false
}

// UpdateUserForce places the user exertor at pos, replacing any previous one.
func (s *ParticleSystem) UpdateUserForce(pos r3.Vec) {
	e, ok := s.newExertor(s.mouseType, pos)
	if !ok {
		slog.Debug("user force ignored", "type", s.mouseType)
		return
	}
	s.exertors[0] = e
}

// CancelUserForce clears the user exertor slot.
func (s *ParticleSystem) CancelUserForce() {
	s.exertors[0] = NewNone()
}

// AddNewForce appends a permanent exertor of the named kind at pos.
// Unknown kinds are ignored.
func (s *ParticleSystem) AddNewForce(pos r3.Vec, kind string) {
	e, ok := s.newExertor(kind, pos)
	if !ok {
		slog.Debug("add force ignored", "type", kind)
		return
	}
	s.exertors = append(s.exertors, e)
	slog.Info("exertor added",
		"type", kind,
		"x", pos.X, "y", pos.Y, "z", pos.Z,
		"exertors", len(s.exertors),
	)
}

// SetMouseExertorType changes the kind used by UpdateUserForce.
// Reports false and leaves the type unchanged for unknown kinds.
func (s *ParticleSystem) SetMouseExertorType(kind string) bool {
	if _, ok := s.newExertor(kind, r3.Vec{}); !ok {
		slog.Debug("mouse exertor type ignored", "type", kind)
		return false
	}
	s.mouseType = kind
	return true
}

// MouseExertorType returns the kind used by UpdateUserForce.
func (s *ParticleSystem) MouseExertorType() string { return s.mouseType }

// ActivateMesh assigns one mesh attractor per vertex of the selected mesh to a
// sampled particle and switches to mesh mode. Later vertices overwrite earlier
// ones that sampled the same particle.
func (s *ParticleSystem) ActivateMesh() {
	verts, err := s.meshes.Lookup(s.meshName)
	if err != nil {
		slog.Warn("mesh activation skipped", "mesh", s.meshName, "error", err)
		return
	}

	clear(s.meshMap)
	scale := s.params.meshScale(s.meshName)
	count := len(s.particles)
	if count > 0 {
		for v := 0; v+2 < len(verts); v += 3 {
			idx := s.sampler.Index(count)
			pos := r3.Vec{X: verts[v] * scale, Y: verts[v+1] * scale, Z: verts[v+2] * scale}
			s.meshMap[idx] = NewMeshAttractor(pos, s.params.MeshPower)
		}
	}
	s.meshActive = true

	slog.Info("mesh activated",
		"mesh", s.meshName,
		"vertices", len(verts)/3,
		"assigned", len(s.meshMap),
	)
}

// DeactivateMesh returns to free mode. Assignments are kept until the next activation.
func (s *ParticleSystem) DeactivateMesh() {
	if !s.meshActive {
		return
	}
	s.meshActive = false
	slog.Info("mesh deactivated", "mesh", s.meshName)
}

// ToggleMesh flips between free and mesh mode.
func (s *ParticleSystem) ToggleMesh() {
	if s.meshActive {
		s.DeactivateMesh()
		return
	}
	s.ActivateMesh()
}

// SelectMesh changes the mesh used by ActivateMesh. When mesh mode is active the
// particles are reassigned to the new mesh immediately.
func (s *ParticleSystem) SelectMesh(name string) bool {
	if _, err := s.meshes.Lookup(name); err != nil {
		slog.Warn("mesh selection ignored", "mesh", name, "error", err)
		return false
	}
	s.meshName = name
	if s.meshActive {
		s.ActivateMesh()
	}
	return true
}

// MeshName returns the selected mesh name.
func (s *ParticleSystem) MeshName() string { return s.meshName }

// MeshActive reports whether the system is in mesh mode.
func (s *ParticleSystem) MeshActive() bool { return s.meshActive }

// MeshAssignments returns the number of particles bound to a mesh attractor.
// It is 0 in free mode, even though the last assignment is retained.
func (s *ParticleSystem) MeshAssignments() int {
	if !s.meshActive {
		return 0
	}
	return len(s.meshMap)
}

// MeshExertor returns the mesh attractor assigned to particle i, if any.
func (s *ParticleSystem) MeshExertor(i int) (Exertor, bool) {
	e, ok := s.meshMap[i]
	return e, ok
}

// Count returns the number of particles.
func (s *ParticleSystem) Count() int { return len(s.particles) }

// Offsets returns the packed xyz position buffer. The slice is reused across frames.
func (s *ParticleSystem) Offsets() []float32 { return s.offsets }

// Colors returns the packed rgba color buffer. The slice is reused across frames.
func (s *ParticleSystem) Colors() []float32 { return s.colors }

// Particle returns a copy of particle i.
func (s *ParticleSystem) Particle(i int) components.Particle { return s.particles[i] }

// Exertors returns the exertor list, user slot first. Callers must not modify it.
func (s *ParticleSystem) Exertors() []Exertor { return s.exertors }

// ExertorCount returns the number of exertor slots including the user slot.
func (s *ParticleSystem) ExertorCount() int { return len(s.exertors) }

// ClampedCount returns how many particles had their force clamped in the last Update.
func (s *ParticleSystem) ClampedCount() int { return s.clamped }

// Frame returns the number of completed updates.
func (s *ParticleSystem) Frame() int { return s.frame }

// Seed returns the sampler seed.
func (s *ParticleSystem) Seed() int64 { return s.sampler.Seed() }

// Params returns the parameters the system was built with.
func (s *ParticleSystem) Params() Params { return s.params }

// Speeds appends every particle speed to dst[:0] and returns it.
func (s *ParticleSystem) Speeds(dst []float64) []float64 {
	dst = dst[:0]
	for i := range s.particles {
		dst = append(dst, s.particles[i].Speed())
	}
	return dst
}
