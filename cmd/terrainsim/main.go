package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"voxelterrain/internal/config"
	"voxelterrain/internal/tasks"
	"voxelterrain/internal/terrain"
	"voxelterrain/internal/world"
)

func main() {
	var (
		cfgPath  string
		catalog  string
		frames   int
		verbose  bool
		reportEv int
		preview  string
	)
	flag.StringVar(&cfgPath, "config", "", "path to terrain configuration file (JSON with comments)")
	flag.StringVar(&catalog, "catalog", "", "block catalog path or go-getter source; overrides the config")
	flag.IntVar(&frames, "frames", 300, "number of frames to simulate, 0 runs until interrupted")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
	flag.IntVar(&reportEv, "report-every", 30, "frames between progress lines")
	flag.StringVar(&preview, "preview", "", "directory for PNG previews of the chunks under the camera at exit")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if wrote, err := writeConfigFromEnv(cfgPath); err != nil {
		fatal(log, "apply env config", err)
	} else if wrote {
		log.Info("configuration written from environment", "path", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(log, "load config", err)
	}
	if catalog == "" {
		catalog = cfg.Blocks
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	reg, err := loadRegistry(ctx, catalog, filepath.Join(os.TempDir(), "terrainsim"), log)
	if err != nil {
		fatal(log, "load block catalog", err)
	}
	gen, err := terrain.NewNoiseGenerator(cfg.Terrain, reg, log)
	if err != nil {
		fatal(log, "initialise generator", err)
	}

	pool := tasks.NewPool(cfg.Engine.Workers, log)
	t := world.NewTerrain(world.Options{
		Registry:        reg,
		Generator:       gen,
		Scheduler:       pool,
		Logger:          log,
		LoadingPriority: cfg.Engine.ChunkLoadingPriority,
		MaxLightSteps:   cfg.Engine.MaxLightSteps,
	})

	sim, err := newSimulation(cfg, t, log)
	if err != nil {
		fatal(log, "initialise simulation", err)
	}

	started := time.Now()
	ran := run(ctx, sim, cfg.Engine.FrameInterval.Duration(), frames, reportEv)

	t.Close()
	if err := pool.Close(); err != nil {
		log.Error("worker pool shutdown", "error", err)
	}
	printSummary(sim, ran, time.Since(started), pool.Stats())

	if preview != "" {
		paths, err := sim.savePreviews(preview)
		if err != nil {
			fatal(log, "save previews", err)
		}
		for _, p := range paths {
			color.HiBlack("  preview %s", p)
		}
	}
}

func run(ctx context.Context, sim *simulation, interval time.Duration, frames, reportEvery int) int {
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frame := 0
	for frames <= 0 || frame < frames {
		select {
		case <-ctx.Done():
			return frame
		case <-ticker.C:
		}
		report := sim.step(ctx, frame)
		frame++
		if reportEvery > 0 && frame%reportEvery == 0 {
			printFrame(report)
		}
	}
	return frame
}

func printFrame(r frameReport) {
	header := color.New(color.FgCyan)
	header.Printf("frame %4d ", r.Frame)
	color.New(color.FgWhite).Printf("camera (%6.1f,%6.1f,%6.1f) ", r.Camera[0], r.Camera[1], r.Camera[2])
	color.New(color.FgGreen).Printf("loaded %4d ", r.Stats.LoadedChunks)
	color.New(color.FgYellow).Printf("loading %3d ", r.Stats.LoadingChunks)
	color.New(color.FgMagenta).Printf("light queue %3d ", r.Stats.LightQueue)
	color.New(color.FgHiBlack).Printf("+%d/-%d chunks\n", r.Events[world.ChunkLoaded], r.Events[world.ChunkUnloaded])
}

func printSummary(sim *simulation, frames int, elapsed time.Duration, ps tasks.Stats) {
	stats := sim.terrain.Stats()
	bold := color.New(color.Bold)

	bold.Printf("\nsimulated %d frames in %s\n", frames, elapsed.Round(time.Millisecond))
	color.Green("  chunks loaded now    %d", stats.LoadedChunks)
	color.Green("  loads requested      %d", stats.LoadsRequested)
	color.Yellow("  loads cancelled      %d", stats.LoadsCancelled)
	if stats.LoadsFailed > 0 {
		color.Red("  loads failed         %d", stats.LoadsFailed)
	}
	color.Cyan("  light passes         %d", stats.LightPasses)
	color.Cyan("  block edits          %d", sim.edits)
	for kind := world.ChunkLoaded; kind <= world.ChunkLightUpdated; kind++ {
		color.White("  %-20s %d", kind.String(), sim.events[kind])
	}
	color.Magenta("  pool: %d workers, %d submitted, %d completed, %d cancelled",
		ps.Workers, ps.Submitted, ps.Completed, ps.Cancelled)
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

func signalContext(log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			return
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
