// Package game wires the particle system to input, rendering and telemetry.
package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/camera"
	"github.com/pthm-cable/exertion/config"
	"github.com/pthm-cable/exertion/inspector"
	"github.com/pthm-cable/exertion/mesh"
	"github.com/pthm-cable/exertion/renderer"
	"github.com/pthm-cable/exertion/systems"
	"github.com/pthm-cable/exertion/telemetry"
	"github.com/pthm-cable/exertion/ui"
)

// Options configures game behavior.
type Options struct {
	Seed           int64
	Headless       bool
	OutputDir      string  // directory for CSV and config output (empty = disabled)
	LogStats       bool    // log window stats via slog
	StatsWindowSec float64 // 0 = use config
	Mesh           string  // initial mesh (empty = config)
	MeshOnStart    bool    // start in mesh mode
	StepsPerUpdate int     // simulation ticks per Update call (minimum 1)
	StatsCallback  func(telemetry.WindowStats)
	Config         *config.Config // nil = global config
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	system *systems.ParticleSystem
	meshes mesh.Set

	// Rendering (nil when headless)
	camera           *camera.Camera
	particleRenderer *renderer.ParticleRenderer
	hud              *ui.HUD
	perfPanel        *ui.PerfPanel
	inspector        *inspector.Inspector

	// State
	tick           int32
	paused         bool
	headless       bool
	stepsPerUpdate int
	userForce      bool
	showPerf       bool
	screenWidth    float32
	screenHeight   float32

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	speedHistory     []float64
	speeds           []float64
}

// NewGame creates a graphical game with default options.
func NewGame() *Game {
	return NewGameWithOptions(Options{})
}

// NewGameWithOptions creates a new game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	meshes := mesh.Builtin(cfg.Meshes.Resolution)
	meshName := cfg.Meshes.Selected
	if opts.Mesh != "" {
		meshName = opts.Mesh
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	g := &Game{
		cfg:              cfg,
		meshes:           meshes,
		system:           systems.NewParticleSystem(systems.ParamsFromConfig(cfg), meshes, meshName, opts.Seed),
		headless:         opts.Headless,
		stepsPerUpdate:   stepsPerUpdate,
		screenWidth:      float32(cfg.Screen.Width),
		screenHeight:     float32(cfg.Screen.Height),
		collector:        telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	g.loadScene()

	if opts.MeshOnStart {
		g.ToggleMesh()
	}

	if !opts.Headless {
		g.camera = camera.New(float64(g.screenWidth), float64(g.screenHeight), cfg.Camera)
		g.particleRenderer = renderer.NewParticleRenderer(cfg.Particles.Size, cfg.Particles.Bound)
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-250, int32(g.screenHeight)-200, 240)
		g.inspector = inspector.NewInspector(int32(g.screenWidth), int32(g.screenHeight))
	}

	g.logScene("game initialized")

	return g
}

// loadScene adds the permanent exertors listed in the config.
func (g *Game) loadScene() {
	for _, se := range g.cfg.Scene.Exertors {
		g.AddForce(scenePosition(se.Position), se.Type)
	}
}

// scenePosition reads up to three coordinates, padding missing ones with 0.
func scenePosition(p []float64) r3.Vec {
	var v [3]float64
	copy(v[:], p)
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Update runs one frame: input, then stepsPerUpdate simulation ticks unless paused.
func (g *Game) Update() {
	g.perfCollector.StartTick()
	g.perfCollector.StartPhase(telemetry.PhaseInput)
	g.handleInput()
	if !g.paused {
		g.steps()
	}
	g.perfCollector.EndTick()
}

// UpdateHeadless runs stepsPerUpdate simulation ticks without input or rendering.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()
	g.steps()
	g.perfCollector.EndTick()
}

func (g *Game) steps() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep advances the particle system by one tick.
func (g *Game) simulationStep() {
	if g.userForce {
		g.collector.Record(telemetry.NewUserForceEvent(g.tick, g.system.MouseExertorType()))
	}

	g.perfCollector.StartPhase(telemetry.PhaseUpdate)
	g.system.Update()
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordFrame(g.system.ClampedCount())
	g.flushTelemetry()
}

// AddForce adds a permanent exertor of the named kind.
func (g *Game) AddForce(pos r3.Vec, kind string) {
	before := g.system.ExertorCount()
	g.system.AddNewForce(pos, kind)
	if g.system.ExertorCount() > before {
		g.collector.Record(telemetry.NewForceAddedEvent(g.tick, kind))
	}
}

// PressUserForce places or moves the user exertor.
func (g *Game) PressUserForce(pos r3.Vec) {
	g.system.UpdateUserForce(pos)
	g.userForce = g.system.Exertors()[0].Kind != systems.KindNone
}

// ReleaseUserForce removes the user exertor.
func (g *Game) ReleaseUserForce() {
	if !g.userForce {
		return
	}
	g.system.CancelUserForce()
	g.userForce = false
	g.collector.Record(telemetry.NewUserCancelEvent(g.tick))
}

// SetMouseType changes the kind placed by the mouse.
func (g *Game) SetMouseType(kind string) {
	if g.system.SetMouseExertorType(kind) {
		slog.Info("mouse exertor type", "type", kind)
	}
}

// ToggleMesh switches between free and mesh mode.
func (g *Game) ToggleMesh() {
	was := g.system.MeshActive()
	g.system.ToggleMesh()
	if now := g.system.MeshActive(); now != was {
		g.collector.Record(telemetry.NewMeshEvent(g.tick, now, g.system.MeshName()))
	}
}

// NextMesh selects the next mesh in name order.
func (g *Game) NextMesh() {
	next := g.meshes.Next(g.system.MeshName())
	if next == "" {
		return
	}
	active := g.system.MeshActive()
	if g.system.SelectMesh(next) && active {
		g.collector.Record(telemetry.NewMeshEvent(g.tick, true, next))
	}
}

// SetPaused pauses or resumes the simulation in Update.
func (g *Game) SetPaused(paused bool) { g.paused = paused }

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 { return g.tick }

// System returns the particle system.
func (g *Game) System() *systems.ParticleSystem { return g.system }

// Meshes returns the available mesh set.
func (g *Game) Meshes() mesh.Set { return g.meshes }

// SpeedHistory returns the mean particle speed of every flushed stats window.
func (g *Game) SpeedHistory() []float64 { return g.speedHistory }

// OutputDir returns the telemetry output directory, or "" if disabled.
func (g *Game) OutputDir() string { return g.outputManager.Dir() }

// Unload releases resources.
func (g *Game) Unload() {
	g.logScene("game unloaded")
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
