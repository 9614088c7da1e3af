package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/exertion/config"
	"github.com/pthm-cable/exertion/game"
	"github.com/pthm-cable/exertion/mesh"
)

var (
	configPath     string
	logLevel       string
	seed           int64
	randomSeed     bool
	meshName       string
	meshOnStart    bool
	outputDir      string
	logStats       bool
	statsWindow    float64
	stepsPerUpdate int
	workers        int
	gridSize       int
	// run command
	maxTicks int
	plot     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "exertion",
		Short:             "interactive 3D particle force simulation",
		PersistentPreRunE: setup,
		RunE:              runView,
		SilenceUsage:      true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config.yaml (empty = use defaults)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.Int64Var(&seed, "seed", 0, "seed for particle placement and mesh assignment (default: config particles.seed)")
	pf.BoolVar(&randomSeed, "random-seed", false, "use a time-based seed instead of the configured one")
	pf.StringVar(&meshName, "mesh", "", "initial mesh (empty = config)")
	pf.BoolVar(&meshOnStart, "mesh-on-start", false, "start in mesh mode")
	pf.StringVar(&outputDir, "output-dir", "", "output directory for CSV logs and config snapshot")
	pf.BoolVar(&logStats, "log-stats", false, "output window stats via slog")
	pf.Float64Var(&statsWindow, "stats-window", 0, "stats window size in seconds (0 = use config)")
	pf.IntVar(&stepsPerUpdate, "steps-per-update", 1, "simulation ticks per update call")
	pf.IntVar(&workers, "workers", 0, "goroutines for the particle loop (0 = use config)")
	pf.IntVar(&gridSize, "grid", 0, "particle grid size n, giving n*n particles (0 = use config)")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "open the interactive viewer",
		RunE:  runView,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation headless",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&maxTicks, "ticks", 600, "number of ticks to simulate")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot mean speed per stats window")

	meshesCmd := &cobra.Command{
		Use:   "meshes",
		Short: "list built-in meshes",
		RunE:  listMeshes,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE:  printConfig,
	}

	rootCmd.AddCommand(viewCmd, runCmd, meshesCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setup installs the logger and loads the config with flag overrides.
func setup(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg := config.Cfg()
	if gridSize > 0 {
		cfg.Particles.GridSize = gridSize
	}
	if workers > 0 {
		cfg.Physics.Workers = workers
	}
	cfg.Particles.Seed = cfg.ResolveSeed(seed, cmd.Flags().Changed("seed"), randomSeed)
	cfg.Recompute()

	return nil
}

// gameOptions builds game options from flags.
func gameOptions(headless bool) game.Options {
	return game.Options{
		Seed:           config.Cfg().Particles.Seed,
		Headless:       headless,
		OutputDir:      outputDir,
		LogStats:       logStats,
		StatsWindowSec: statsWindow,
		Mesh:           meshName,
		MeshOnStart:    meshOnStart,
		StepsPerUpdate: stepsPerUpdate,
	}
}

func runView(cmd *cobra.Command, args []string) error {
	cfg := config.Cfg()

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Exertion")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGameWithOptions(gameOptions(false))
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	if maxTicks < 1 {
		return fmt.Errorf("--ticks must be positive, got %d", maxTicks)
	}

	opts := gameOptions(true)
	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
		"output_dir", opts.OutputDir,
	)

	start := time.Now()
	for int(g.Tick()) < maxTicks {
		g.UpdateHeadless()
	}
	elapsed := time.Since(start)

	slog.Info("headless simulation finished",
		"tick", g.Tick(),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"ticks_per_sec", float64(g.Tick())/elapsed.Seconds(),
		"windows", len(g.SpeedHistory()),
	)

	if plot {
		history := g.SpeedHistory()
		if len(history) < 2 {
			slog.Warn("not enough stats windows to plot", "windows", len(history))
			return nil
		}
		fmt.Println(asciigraph.Plot(history,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("mean particle speed per stats window"),
		))
	}
	return nil
}

func listMeshes(cmd *cobra.Command, args []string) error {
	cfg := config.Cfg()
	meshes := mesh.Builtin(cfg.Meshes.Resolution)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERTICES\tSCALE\tSELECTED")
	for _, name := range meshes.Names() {
		selected := ""
		if name == cfg.Meshes.Selected {
			selected = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%s\n", name, meshes.VertexCount(name), cfg.MeshScale(name), selected)
	}
	return w.Flush()
}

func printConfig(cmd *cobra.Command, args []string) error {
	data, err := config.Cfg().YAML()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
