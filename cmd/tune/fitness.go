package main

import (
	"maps"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/exertion/config"
	"github.com/pthm-cable/exertion/mesh"
	"github.com/pthm-cable/exertion/systems"
)

// checkEvery is how often (in ticks) convergence is sampled.
const checkEvery = 10

// Evaluator runs headless mesh formations and scores how well particles converge.
type Evaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	meshes     mesh.Set
	ticks      int32
	grid       int
	seeds      []int64
	threshold  float64 // mean distance counted as converged

	mu         sync.Mutex
	lastResult runResult
}

// runResult holds the outcome of one formation run (or the mean over seeds).
type runResult struct {
	meanDistance  float64 // mean particle-to-target distance at the last tick
	convergedFrac float64 // tick of first convergence / ticks, 1 if never
}

// NewEvaluator creates a new evaluator.
func NewEvaluator(params *ParamVector, baseCfg *config.Config, ticks int32, grid int, seeds []int64, threshold float64) *Evaluator {
	return &Evaluator{
		params:     params,
		baseConfig: baseCfg,
		meshes:     mesh.Builtin(baseCfg.Meshes.Resolution),
		ticks:      ticks,
		grid:       grid,
		seeds:      seeds,
		threshold:  threshold,
	}
}

// LastResult returns the seed-averaged result of the most recent evaluation.
func (fe *Evaluator) LastResult() runResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResult
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Fitness is the final mean distance scaled by how late convergence happened.
func (fe *Evaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runFormation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var mean runResult
	for _, r := range results {
		mean.meanDistance += r.meanDistance
		mean.convergedFrac += r.convergedFrac
	}
	n := float64(len(results))
	mean.meanDistance /= n
	mean.convergedFrac /= n

	fe.mu.Lock()
	fe.lastResult = mean
	fe.mu.Unlock()

	return fitness(mean)
}

func fitness(r runResult) float64 {
	return r.meanDistance * (1 + r.convergedFrac)
}

// runFormation activates the selected mesh and runs the configured number of ticks.
// cfg is shared between seeds and must not be modified here.
func (fe *Evaluator) runFormation(cfg *config.Config, seed int64) runResult {
	params := systems.ParamsFromConfig(cfg)
	params.GridSize = fe.grid
	params.Workers = 1

	sys := systems.NewParticleSystem(params, fe.meshes, cfg.Meshes.Selected, seed)
	sys.ActivateMesh()
	if !sys.MeshActive() {
		return runResult{meanDistance: math.Inf(1), convergedFrac: 1}
	}

	result := runResult{convergedFrac: 1}
	for tick := int32(1); tick <= fe.ticks; tick++ {
		sys.Update()
		if result.convergedFrac == 1 && tick%checkEvery == 0 && meanMeshDistance(sys) < fe.threshold {
			result.convergedFrac = float64(tick) / float64(fe.ticks)
		}
	}
	result.meanDistance = meanMeshDistance(sys)
	return result
}

// meanMeshDistance returns the mean distance from each bound particle to its target.
func meanMeshDistance(sys *systems.ParticleSystem) float64 {
	distances := make([]float64, 0, sys.MeshAssignments())
	for i := 0; i < sys.Count(); i++ {
		e, ok := sys.MeshExertor(i)
		if !ok {
			continue
		}
		p := sys.Particle(i)
		distances = append(distances, r3.Norm(r3.Sub(e.Position, p.Position)))
	}
	if len(distances) == 0 {
		return 0
	}
	return stat.Mean(distances, nil)
}

// copyConfig returns a copy of the base config that can be modified independently.
func (fe *Evaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Meshes.Scale = maps.Clone(fe.baseConfig.Meshes.Scale)
	cfg.Physics.HotColor = append([]float64(nil), fe.baseConfig.Physics.HotColor...)
	cfg.Scene.Exertors = append([]config.SceneExertor(nil), fe.baseConfig.Scene.Exertors...)
	return &cfg
}
