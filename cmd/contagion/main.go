// Command contagion runs the epidemic simulation on a household grid.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/contagion/internal/agents"
	"github.com/talgya/contagion/internal/config"
	"github.com/talgya/contagion/internal/engine"
	"github.com/talgya/contagion/internal/entropy"
	"github.com/talgya/contagion/internal/metrics"
	"github.com/talgya/contagion/internal/persistence"
	"github.com/talgya/contagion/internal/report"
	"github.com/talgya/contagion/internal/world"
)

type options struct {
	configPath  string
	seed        int64
	ticks       int
	population  int
	logLevel    string
	dbPath      string
	csvPath     string
	chartPath   string
	videoPath   string
	videoCell   int
	videoFPS    int
	metricsPath string
	interval    time.Duration
	set         map[string]bool // Flags given on the command line
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{set: make(map[string]bool)}
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file (defaults to the built-in scenario)")
	fs.Int64Var(&o.seed, "seed", 0, "random seed; 0 picks one")
	fs.IntVar(&o.ticks, "ticks", 0, "ticks to run; 0 runs until interrupted")
	fs.IntVar(&o.population, "population", 0, "agents to place")
	fs.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&o.dbPath, "db", "", "SQLite run archive")
	fs.StringVar(&o.csvPath, "csv", "", "write the per-tick series as CSV")
	fs.StringVar(&o.chartPath, "chart", "", "write the infected/healthy/recovered chart as PNG")
	fs.StringVar(&o.videoPath, "video", "", "record the grid as an MJPEG AVI")
	fs.IntVar(&o.videoCell, "video-cell", 8, "pixels per cell in the video")
	fs.IntVar(&o.videoFPS, "video-fps", 10, "video frame rate")
	fs.StringVar(&o.metricsPath, "metrics-file", "", "write Prometheus metrics in textfile format")
	fs.DurationVar(&o.interval, "interval", 0, "minimum wall time per tick")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// loadConfig reads the file (or defaults) and applies command-line overrides.
func loadConfig(o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	if o.set["seed"] {
		cfg.Seed = o.seed
	}
	if o.set["ticks"] {
		cfg.Ticks = o.ticks
	}
	if o.set["population"] {
		cfg.Population = o.population
	}
	if cfg.Seed == 0 {
		cfg.Seed = entropy.RandomSeed()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	o, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	level, err := parseLevel(o.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(o); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(o *options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	slog.Info("contagion starting", "seed", cfg.Seed, "ticks", cfg.Ticks, "population", cfg.Population)

	// ── Map ───────────────────────────────────────────────────────────
	worldMap, err := cfg.BuildMap()
	if err != nil {
		return fmt.Errorf("build map: %w", err)
	}
	for t, c := range world.TypeCounts(worldMap) {
		slog.Debug("cells", "type", world.CellTypeName(t), "count", c)
	}
	slog.Info("map ready",
		"width", worldMap.Width,
		"height", worldMap.Height,
		"homes", len(worldMap.HomeIDs()),
		"entrances", len(worldMap.Entrances()),
		"targets", len(worldMap.TargetCells()),
	)

	// ── Population ────────────────────────────────────────────────────
	spawner := agents.NewSpawner(cfg.Seed, cfg.SpawnConfig())
	population, err := engine.BuildPopulation(worldMap, spawner, cfg.PopulationRequest())
	if err != nil {
		return err
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim, err := engine.NewSimulation(worldMap, population, cfg.Params())
	if err != nil {
		return err
	}
	if o.metricsPath != "" {
		sim.Metrics = metrics.NewRegistry()
	}

	var db *persistence.DB
	var archived persistence.Run
	if o.dbPath != "" {
		if db, err = persistence.Open(o.dbPath); err != nil {
			return err
		}
		defer db.Close()
		yamlText, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		if archived, err = db.CreateRun(cfg.Seed, len(population), yamlText); err != nil {
			return err
		}
		slog.Info("run registered", "run", archived.ID, "db", o.dbPath)
	}

	var video *report.VideoRecorder
	if o.videoPath != "" {
		if video, err = report.NewVideoRecorder(o.videoPath, worldMap, o.videoCell, o.videoFPS); err != nil {
			return err
		}
		if err := video.AddFrame(sim.Snapshot()); err != nil {
			video.Close()
			return err
		}
	}

	eng := engine.NewEngine()
	eng.MaxTicks = uint64(cfg.Ticks)
	eng.Interval = o.interval
	eng.ReportEvery = uint64(cfg.ReportEvery)

	eng.OnTick = func(tick uint64) {
		sim.Step()
		if video != nil {
			if err := video.AddFrame(sim.Snapshot()); err != nil {
				slog.Error("video frame failed, recording stopped", "tick", tick, "error", err)
				video.Close()
				video = nil
			}
		}
	}
	eng.OnReport = func(tick uint64) {
		sim.Report(tick)
		if sim.Metrics != nil {
			if err := sim.Metrics.WriteTextfile(o.metricsPath); err != nil {
				slog.Error("metrics write failed", "error", err)
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	eng.Run()
	signal.Stop(sigCh)
	close(sigCh)
	sim.Report(sim.CurrentTick())

	// ── Outputs ───────────────────────────────────────────────────────
	var failed error
	keep := func(what string, err error) {
		if err != nil {
			slog.Error("output failed", "output", what, "error", err)
			if failed == nil {
				failed = fmt.Errorf("%s: %w", what, err)
			}
		}
	}

	samples := sim.Collector.Samples()
	if video != nil {
		keep("video", video.Close())
	}
	if o.csvPath != "" {
		keep("csv", report.SaveCSV(o.csvPath, samples))
	}
	if o.chartPath != "" {
		keep("chart", report.SaveChart(o.chartPath, samples))
	}
	if sim.Metrics != nil {
		keep("metrics", sim.Metrics.WriteTextfile(o.metricsPath))
	}
	if db != nil {
		keep("db", db.SaveRun(archived.ID, sim))
	}

	fmt.Println(summary(sim))
	return failed
}

func summary(sim *engine.Simulation) string {
	s := sim.Stats
	return fmt.Sprintf("%s agents over %s ticks: %s healthy, %s infected, %s recovered; peak of %s infected on the %s tick.",
		humanize.Comma(int64(s.TotalPopulation)),
		humanize.Comma(int64(sim.CurrentTick())),
		humanize.Comma(int64(s.Healthy)),
		humanize.Comma(int64(s.Infected)),
		humanize.Comma(int64(s.Recovered)),
		humanize.Comma(int64(s.PeakInfected)),
		humanize.Ordinal(int(s.PeakTick)),
	)
}
