// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Particles ParticlesConfig `yaml:"particles"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Exertors  ExertorsConfig  `yaml:"exertors"`
	Meshes    MeshesConfig    `yaml:"meshes"`
	Scene     SceneConfig     `yaml:"scene"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// CameraConfig holds the initial orbit camera placement.
type CameraConfig struct {
	Distance  float64 `yaml:"distance"`
	Azimuth   float64 `yaml:"azimuth"`   // radians around the Y axis
	Elevation float64 `yaml:"elevation"` // radians above the XZ plane
	FovY      float64 `yaml:"fov_y"`     // degrees
	Near      float64 `yaml:"near"`
	Far       float64 `yaml:"far"`
}

// ParticlesConfig holds the initial particle placement.
type ParticlesConfig struct {
	GridSize int     `yaml:"grid_size"` // n, giving n*n particles
	Bound    float64 `yaml:"bound"`     // placement cube is [-bound, bound] per axis
	Seed     int64   `yaml:"seed"`
	Size     float64 `yaml:"size"` // rendered cube edge length
}

// PhysicsConfig holds integrator parameters.
type PhysicsConfig struct {
	DT          float64   `yaml:"dt"`
	ForceClamp  float64   `yaml:"force_clamp"`  // max net force magnitude per particle
	MaxVelocity float64   `yaml:"max_velocity"` // speed at which the display color is fully hot
	HotColor    []float64 `yaml:"hot_color"`    // RGB blended in as particles speed up
	Workers     int       `yaml:"workers"`      // goroutines used by the particle loop (1 = serial)
}

// ExertorDefaults holds the power and cutoff radius for one exertor kind.
type ExertorDefaults struct {
	Power  float64 `yaml:"power"`
	Radius float64 `yaml:"radius"` // 0 = unbounded
}

// ExertorsConfig holds force source defaults.
type ExertorsConfig struct {
	MouseType  string          `yaml:"mouse_type"` // attractor, repeller or oscillator
	Attractor  ExertorDefaults `yaml:"attractor"`
	Repeller   ExertorDefaults `yaml:"repeller"`
	Oscillator ExertorDefaults `yaml:"oscillator"`
	MeshPower  float64         `yaml:"mesh_power"`
}

// MeshesConfig holds mesh attraction parameters.
type MeshesConfig struct {
	Selected   string             `yaml:"selected"`
	Resolution int                `yaml:"resolution"` // subdivisions used by the built-in generators
	Scale      map[string]float64 `yaml:"scale"`      // per-mesh vertex scale factor
}

// SceneExertor is a permanent exertor placed when the scene loads.
type SceneExertor struct {
	Type     string    `yaml:"type"`
	Position []float64 `yaml:"position"`
}

// SceneConfig holds the initial scene contents.
type SceneConfig struct {
	Exertors []SceneExertor `yaml:"exertors"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	SurgeMultiplier float64 `yaml:"surge_multiplier"` // mean speed vs rolling mean
	SurgeMinSpeed   float64 `yaml:"surge_min_speed"`
	SettledSpeed    float64 `yaml:"settled_speed"` // mean speed below this counts as settled
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TicksPerSecond float64    // 1 / Physics.DT
	HotColor       [3]float64 // Physics.HotColor padded to RGB
	ParticleCount  int        // GridSize^2
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// ResolveSeed returns the seed for particle placement and mesh assignment.
// The configured seed is used unless the seed flag was given; random picks a
// time-based seed instead.
func (c *Config) ResolveSeed(flagSeed int64, flagSet, random bool) int64 {
	switch {
	case random:
		return time.Now().UnixNano()
	case flagSet:
		return flagSeed
	}
	return c.Particles.Seed
}

// Recompute refreshes derived values after fields are changed in place.
func (c *Config) Recompute() {
	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Physics.DT > 0 {
		c.Derived.TicksPerSecond = 1.0 / c.Physics.DT
	}

	c.Derived.HotColor = [3]float64{1, 0, 0}
	for i := 0; i < len(c.Physics.HotColor) && i < 3; i++ {
		c.Derived.HotColor[i] = c.Physics.HotColor[i]
	}

	if c.Physics.Workers < 1 {
		c.Physics.Workers = 1
	}
	if c.Meshes.Scale == nil {
		c.Meshes.Scale = make(map[string]float64)
	}

	c.Derived.ParticleCount = c.Particles.GridSize * c.Particles.GridSize
}

// MeshScale returns the vertex scale factor for the named mesh (1 if unset).
func (c *Config) MeshScale(name string) float64 {
	if s, ok := c.Meshes.Scale[name]; ok && s != 0 {
		return s
	}
	return 1
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
