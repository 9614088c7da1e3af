package main

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/components"
	"github.com/pthm-cable/exertion/config"
	"github.com/pthm-cable/exertion/mesh"
	"github.com/pthm-cable/exertion/systems"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func TestParamVectorNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: expected %f after roundtrip, got %f", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()

	clamped := pv.Clamp([]float64{-10, 1000})
	if clamped[0] != pv.Specs[0].Min {
		t.Errorf("expected %s clamped to min %f, got %f", pv.Specs[0].Name, pv.Specs[0].Min, clamped[0])
	}
	if clamped[1] != pv.Specs[1].Max {
		t.Errorf("expected %s clamped to max %f, got %f", pv.Specs[1].Name, pv.Specs[1].Max, clamped[1])
	}
}

func TestParamVectorApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := loadDefaults(t)

	pv.ApplyToConfig(cfg, []float64{55, 12})

	if cfg.Exertors.MeshPower != 55 {
		t.Errorf("expected mesh_power 55, got %f", cfg.Exertors.MeshPower)
	}
	if cfg.Physics.ForceClamp != 12 {
		t.Errorf("expected force_clamp 12, got %f", cfg.Physics.ForceClamp)
	}

	got := pv.ExtractFromConfig(cfg)
	if got[0] != 55 || got[1] != 12 {
		t.Errorf("expected extracted [55 12], got %v", got)
	}
	if pv.Value(got, "force_clamp") != 12 || pv.Value(got, "nope") != 0 {
		t.Errorf("unexpected Value lookup results for %v", got)
	}
}

func TestMeanMeshDistance(t *testing.T) {
	cfg := loadDefaults(t)
	params := systems.ParamsFromConfig(cfg)
	params.Workers = 1

	particles := make([]components.Particle, 5)
	for i := range particles {
		particles[i] = components.NewParticle(r3.Vec{}, components.Color{A: 1})
	}

	// single vertex at (1, 0, 0) with unit scale
	meshes := mesh.Set{"dot": {1, 0, 0}}
	sys := systems.NewParticleSystemFromParticles(params, particles, meshes, "dot", 7)
	sys.ActivateMesh()

	if !sys.MeshActive() {
		t.Fatal("expected mesh mode active")
	}
	if d := meanMeshDistance(sys); math.Abs(d-1) > 1e-12 {
		t.Errorf("expected mean distance 1, got %f", d)
	}

	unbound := systems.NewParticleSystemFromParticles(params, particles, meshes, "dot", 7)
	if d := meanMeshDistance(unbound); d != 0 {
		t.Errorf("expected 0 without assignments, got %f", d)
	}
}

func TestEvaluatorDeterministic(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Meshes.Resolution = 4
	pv := NewParamVector()

	ev := NewEvaluator(pv, cfg, 60, 6, []int64{1, 2}, 3)

	a := ev.Evaluate(pv.DefaultVector())
	resultA := ev.LastResult()
	b := ev.Evaluate(pv.DefaultVector())

	if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
		t.Fatalf("expected finite non-negative fitness, got %f", a)
	}
	if a != b {
		t.Errorf("expected identical fitness for identical inputs, got %f and %f", a, b)
	}
	if resultA.convergedFrac <= 0 || resultA.convergedFrac > 1 {
		t.Errorf("expected converged fraction in (0, 1], got %f", resultA.convergedFrac)
	}
}

func TestEvaluatorUnknownMesh(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Meshes.Resolution = 4
	cfg.Meshes.Selected = "missing"
	pv := NewParamVector()

	ev := NewEvaluator(pv, cfg, 10, 3, []int64{1}, 3)
	if f := ev.Evaluate(pv.DefaultVector()); !math.IsInf(f, 1) {
		t.Errorf("expected +Inf fitness for an unknown mesh, got %f", f)
	}
}

func TestCopyConfigIsolated(t *testing.T) {
	cfg := loadDefaults(t)
	ev := NewEvaluator(NewParamVector(), cfg, 1, 1, []int64{1}, 3)

	c := ev.copyConfig()
	c.Meshes.Scale["sphere"] = 1
	c.Physics.ForceClamp = 99

	if cfg.Meshes.Scale["sphere"] == 1 || cfg.Physics.ForceClamp == 99 {
		t.Error("expected base config untouched by copy edits")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs     int
		expected string
	}{
		{5, "0m05s"},
		{125, "2m05s"},
		{3725, "1h02m05s"},
	}
	for _, tt := range tests {
		d := time.Duration(tt.secs) * time.Second
		if got := formatDuration(d); got != tt.expected {
			t.Errorf("formatDuration(%v): expected %s, got %s", d, tt.expected, got)
		}
	}
}
