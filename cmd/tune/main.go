// Package main searches exertor parameters that form meshes quickly, using CMA-ES.
//
// Usage: go run ./cmd/tune --output runs/tune
package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/exertion/config"
)

var (
	configPath string
	outputDir  string
	maxTicks   int
	gridSize   int
	numSeeds   int
	maxEvals   int
	population int
	threshold  float64
)

// EvalRecord is one row of tune_log.csv.
type EvalRecord struct {
	Eval          int     `csv:"eval"`
	Fitness       float64 `csv:"fitness"`
	MeanDistance  float64 `csv:"mean_distance"`
	ConvergedFrac float64 `csv:"converged_frac"`
	MeshPower     float64 `csv:"mesh_power"`
	ForceClamp    float64 `csv:"force_clamp"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	cmd := &cobra.Command{
		Use:          "tune",
		Short:        "search mesh formation parameters with CMA-ES",
		RunE:         run,
		SilenceUsage: true,
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "base config YAML file (empty = use defaults)")
	f.StringVar(&outputDir, "output", "", "output directory for results")
	f.IntVar(&maxTicks, "ticks", 600, "ticks per formation run")
	f.IntVar(&gridSize, "grid", 30, "particle grid size per run")
	f.IntVar(&numSeeds, "seeds", 3, "number of seeds per evaluation")
	f.IntVar(&maxEvals, "max-evals", 60, "maximum number of evaluations")
	f.IntVar(&population, "population", 0, "CMA-ES population size (0 = auto)")
	f.Float64Var(&threshold, "threshold", 3, "mean target distance counted as converged")
	_ = cmd.MarkFlagRequired("output")

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := cmd.Execute(); err != nil {
		slog.Error("tune failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()

	seeds := make([]int64, numSeeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewEvaluator(params, baseCfg, int32(maxTicks), gridSize, seeds, threshold)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(dim)))
	}

	logFile, err := os.Create(filepath.Join(outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			result := evaluator.LastResult()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = raw
			}

			record := []EvalRecord{{
				Eval:          evalCount,
				Fitness:       fitness,
				MeanDistance:  result.meanDistance,
				ConvergedFrac: result.convergedFrac,
				MeshPower:     params.Value(raw, "mesh_power"),
				ForceClamp:    params.Value(raw, "force_clamp"),
			}}
			var werr error
			if evalCount == 1 {
				werr = gocsv.Marshal(&record, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(&record, logFile)
			}
			if werr != nil {
				slog.Error("failed to write eval record", "error", werr)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: distance=%.2f converged=%.2f (best=%.2f) | elapsed: %s, ETA: %s\n",
				evalCount, maxEvals, result.meanDistance, result.convergedFrac, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	fmt.Printf("Starting CMA-ES with %d parameters, population=%d, max_evals=%d\n", dim, popSize, maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, grid: %d\n", numSeeds, maxTicks, gridSize)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.3f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.4f\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	return nil
}
