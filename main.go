package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	strategy := flag.String("strategy", "", "Stepping strategy: brute, scattered, coherent, coherent_cached (empty = use config)")
	population := flag.Int("n", 0, "Number of boids (0 = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	validateEvery := flag.Int("validate-every", -1, "Cross-check against brute force every N ticks (-1 = use config, 0 = off)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *strategy != "" {
		if _, err := sim.ParseStrategy(*strategy); err != nil {
			slog.Error("invalid -strategy", "error", err)
			os.Exit(1)
		}
		cfg.Simulation.Strategy = *strategy
	}
	if *population > 0 {
		cfg.Simulation.Population = *population
	}
	if *validateEvery >= 0 {
		cfg.Telemetry.ValidateEvery = *validateEvery
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg.ComputeDerived()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Simulation.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		os.Exit(runHeadless(opts, *maxTicks))
	}
	os.Exit(runWindowed(cfg, opts, *maxTicks))
}

// runHeadless steps the simulation without raylib and returns the exit code.
func runHeadless(opts game.Options, maxTicks int) int {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		return 1
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	start := time.Now()
	for {
		if err := g.UpdateHeadless(); err != nil {
			slog.Error("simulation step failed", "tick", g.Tick(), "error", err)
			return 1
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			elapsed := time.Since(start)
			slog.Info("max ticks reached",
				"tick", g.Tick(),
				"elapsed", elapsed.String(),
				"ticks_per_sec", float64(g.Tick())/elapsed.Seconds(),
			)
			return 0
		}
	}
}

// runWindowed opens the viewer and returns the exit code.
func runWindowed(cfg *config.Config, opts game.Options, maxTicks int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Boids")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		return 1
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			slog.Error("simulation step failed", "tick", g.Tick(), "error", err)
			return 1
		}
		g.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return 0
}
