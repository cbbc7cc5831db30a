package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/boids/config"
)

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval          int     `csv:"eval"`
	Fitness       float64 `csv:"fitness"`
	Polarization  float64 `csv:"polarization"`
	Clumping      float64 `csv:"clumping"`
	Rule1Distance float64 `csv:"rule1_distance"`
	Rule2Distance float64 `csv:"rule2_distance"`
	Rule3Distance float64 `csv:"rule3_distance"`
	Rule1Scale    float64 `csv:"rule1_scale"`
	Rule2Scale    float64 `csv:"rule2_scale"`
	Rule3Scale    float64 `csv:"rule3_scale"`
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

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int64("max-ticks", 3000, "Simulation ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	boids := flag.Int("n", 2000, "Boids per run")
	targetPol := flag.Float64("target-polarization", 0.8, "Desired mean polarization")
	targetClump := flag.Float64("target-clumping", 4, "Desired occupied-cell density relative to uniform")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	// Runs log through slog at Info; keep only warnings and up
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *outputDir == "" {
		fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fatal("failed to create output directory", "error", err)
	}

	if err := config.Init(*configPath); err != nil {
		fatal("failed to load config", "error", err)
	}
	baseCfg := config.Cfg()
	baseCfg.Simulation.Population = *boids
	if baseCfg.Simulation.Strategy == config.StrategyBruteForce {
		// Clumping is measured on the grid
		baseCfg.Simulation.Strategy = config.StrategyCoherentCached
	}
	baseCfg.ComputeDerived()

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	target := Target{Polarization: *targetPol, Clumping: *targetClump}
	evaluator := NewFitnessEvaluator(params, *maxTicks, evalSeeds, baseCfg, target)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		fatal("failed to create log file", "error", err)
	}
	defer logFile.Close()
	headerWritten := false

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++
		score := evaluator.Last()

		// Clamped values are the ones the runs actually used
		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		rec := []evalRecord{{
			Eval: evalCount, Fitness: fitness,
			Polarization: score.Polarization, Clumping: score.Clumping,
			Rule1Distance: clamped[0], Rule2Distance: clamped[1], Rule3Distance: clamped[2],
			Rule1Scale: clamped[3], Rule2Scale: clamped[4], Rule3Scale: clamped[5],
		}}
		if headerWritten {
			err = gocsv.MarshalWithoutHeaders(rec, logFile)
		} else {
			err = gocsv.Marshal(rec, logFile)
			headerWritten = true
		}
		if err != nil {
			slog.Warn("failed to write eval log", "error", err)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: polarization=%.3f clumping=%.2f fitness=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, score.Polarization, score.Clumping, fitness, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, boids: %d\n", *seeds, *maxTicks, *boids)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		fatal("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to reload config", "error", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		slog.Error("failed to write best config", "error", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
