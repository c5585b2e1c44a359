package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/sim"
	"github.com/pthm-cable/olfaction/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output per-window stats via slog")
	debug := flag.Bool("debug", false, "Enable debug logging")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	episodes := flag.Int("episodes", 0, "Number of episodes (0 = use config)")
	workers := flag.Int("workers", -1, "Episode workers (-1 = use config, 0 = GOMAXPROCS)")
	maxTicks := flag.Int("max-ticks", 0, "Tick limit per episode (0 = use config)")
	writeTrajectories := flag.Bool("trajectories", true, "Write discretized trajectories to trajectories.csv")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *episodes > 0 {
		cfg.Simulation.Episodes = *episodes
	}
	if *workers >= 0 {
		cfg.Simulation.Workers = *workers
	}
	if *maxTicks > 0 {
		cfg.Simulation.MaxTicks = *maxTicks
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Simulation.Seed
	}
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}
	cfg.Simulation.Seed = rngSeed

	if err := run(cfg, *outputDir, *logStats, *writeTrajectories); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, outputDir string, logStats, writeTrajectories bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := sim.New(cfg, sim.Options{Seed: cfg.Simulation.Seed, LogStats: logStats})
	if err != nil {
		return err
	}

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	for _, info := range s.Registry().All() {
		slog.Debug("system", "id", info.ID, "name", info.Name, "description", info.Description)
	}

	field := s.Plume().Field()
	slog.Info("starting search",
		"seed", cfg.Simulation.Seed,
		"variant", s.Plume().Name(),
		"shape", s.Env().Shape(),
		"field_max", field.Max(),
		"singular_cells", field.InfCount(),
		"searchers", cfg.Searcher.Count,
		"episodes", cfg.Simulation.Episodes,
		"workers", cfg.Simulation.Workers,
		"max_ticks", cfg.Simulation.MaxTicks,
		"output_dir", out.Dir(),
	)

	start := time.Now()
	results, err := s.Run(ctx, cfg.Simulation.Episodes, cfg.Simulation.Workers)
	if err != nil {
		return err
	}

	var found, searchers int
	for _, res := range results {
		res.Stats.LogStats()
		res.Perf.LogStats(s.Registry().GetName)
		found += res.Stats.Found
		searchers += res.Stats.Searchers

		if err := out.WriteTelemetry(res.Windows...); err != nil {
			return err
		}
		if err := out.WriteEpisode(res.Stats); err != nil {
			return err
		}
		if err := out.WritePerf(res.Perf, res.Episode); err != nil {
			return err
		}
		if writeTrajectories {
			if err := out.WriteTrajectory(trajectorySteps(res)); err != nil {
				return err
			}
		}
	}

	var successRate float64
	if searchers > 0 {
		successRate = float64(found) / float64(searchers)
	}
	slog.Info("search finished",
		"episodes", len(results),
		"found", found,
		"searchers", searchers,
		"success_rate", successRate,
		"elapsed", time.Since(start).String(),
	)
	return nil
}

// trajectorySteps flattens an episode's walks into CSV rows.
func trajectorySteps(res *sim.EpisodeResult) []telemetry.TrajectoryStep {
	var steps []telemetry.TrajectoryStep
	for _, sr := range res.Searchers {
		for i, idx := range sr.Walk {
			steps = append(steps, telemetry.TrajectoryStep{
				Episode:  res.Episode,
				Searcher: sr.ID,
				Step:     i,
				X:        idx[0],
				Y:        idx[1],
				Z:        idx[2],
			})
		}
	}
	return steps
}
