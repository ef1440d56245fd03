package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/sonoform/internal/audio"
	"github.com/san-kum/sonoform/internal/config"
	"github.com/san-kum/sonoform/internal/metrics"
	"github.com/san-kum/sonoform/internal/registry"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/storage"
	"github.com/san-kum/sonoform/internal/viz"
	"github.com/san-kum/sonoform/internal/vizcore"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	duration   float64
	fps        int
	complexity float64
	density    float64
	particles  int
	intensity  float64
	audioSrc   string
	audioFile  string
	loop       bool
	bands      int
	bpm        float64
	configFile string
	preset     string
	theme      string
	seed       int64
	outFile    string
	column     string
	extent     float64
	wires      bool
)

var log = slog.Default()

func main() {
	rootCmd := &cobra.Command{
		Use:   "sonoform",
		Short: "audio-reactive 3d visualizers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(log)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, "")
			if err != nil {
				return err
			}
			src, stop, err := openSource(cfg.Audio)
			if err != nil {
				return err
			}
			defer stop()
			graph := scene.NewMemory()
			s := scheduler.New(registry.Default(graph, log), src, log)
			return viz.RunInteractive(viz.NewApp(s, graph, viz.Options{Params: cfg.Params, Theme: cfg.Theme, FPS: cfg.FPS}))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sonoform", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	sourceFlags(rootCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list visualizers",
		RunE:  listVisualizers,
	}

	runCmd := &cobra.Command{
		Use:   "run [visualizer]",
		Short: "headless run, saved as a run record",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	sceneFlags(runCmd)
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "seed recorded with the run")
	runCmd.Flags().Float64Var(&extent, "extent", 50, "extent above which a frame counts as unstable")

	liveCmd := &cobra.Command{
		Use:   "live [visualizer]",
		Short: "terminal preview",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "", "colour theme ("+fmt.Sprint(viz.ThemeNames())+")")

	windowCmd := &cobra.Command{
		Use:   "window [visualizer]",
		Short: "raylib window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWindow,
	}
	sceneFlags(windowCmd)
	windowCmd.Flags().BoolVar(&wires, "wires", false, "draw solids as wireframes")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [visualizer]",
		Short: "render one moment of a visualizer to svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSnapshot,
	}
	sceneFlags(snapshotCmd)
	snapshotCmd.Flags().Float64Var(&duration, "time", 2, "seconds to animate before the snapshot")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <visualizer>.svg)")
	snapshotCmd.Flags().StringVar(&theme, "theme", "", "colour theme")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [visualizer] [param] [min] [max]",
		Short: "sweep one parameter and report cost",
		Args:  cobra.ExactArgs(4),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Int("steps", 8, "number of sweep points")
	sweepCmd.Flags().Float64Var(&duration, "time", 2, "seconds per point")

	fuzzCmd := &cobra.Command{
		Use:   "fuzz [visualizer]",
		Short: "random parameter trials",
		Args:  cobra.ExactArgs(1),
		RunE:  runFuzz,
	}
	fuzzCmd.Flags().Int("trials", 20, "number of trials")
	fuzzCmd.Flags().Float64Var(&duration, "time", 2, "seconds per trial")
	fuzzCmd.Flags().Float64Var(&extent, "extent", 50, "extent limit")
	fuzzCmd.Flags().Int64Var(&seed, "seed", 1, "trial seed")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "single column to plot (energy, bass, mid, treble, extent, objects, frame_ms)")
	plotCmd.Flags().StringVarP(&outFile, "svg", "o", "", "write the column as svg instead")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and tempo of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().String("column", "energy", "column to analyze")
	analyzeCmd.Flags().String("scatter", "bass:treble", "columns to scatter as x:y, empty to skip")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			if outFile == "" {
				return st.ExportJSON(os.Stdout, args[0])
			}
			if err := st.ExportFile(outFile, args[0]); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", outFile)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [visualizer]",
		Short: "list presets for a visualizer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for visualizer: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, n := range names {
				p := config.GetPreset(args[0], n)
				fmt.Printf("  %-10s complexity=%.1f density=%.1f particles=%d intensity=%.1f\n",
					n, p.Params.Complexity, p.Params.PatternDensity, p.Params.ParticleCount, p.Params.Intensity)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [visualizer...]",
		Short: "benchmark visualizers in parallel",
		RunE:  runBench,
	}
	sceneFlags(benchCmd)
	benchCmd.Flags().Float64Var(&duration, "time", 5, "seconds per visualizer")

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(listCmd, runCmd, liveCmd, windowCmd, snapshotCmd, scenarioCmd, sweepCmd, fuzzCmd, runsCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd, benchCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sourceFlags are the audio flags shared by every command.
func sourceFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&audioSrc, "audio", "synth", "audio source: synth, file or mic")
	f.StringVar(&audioFile, "file", "", "audio file (wav, mp3, flac, ogg)")
	f.BoolVar(&loop, "loop", false, "loop the audio file")
	f.IntVar(&bands, "bands", config.DefaultBands, "frequency bands")
	f.Float64Var(&bpm, "bpm", config.DefaultBPM, "synth tempo")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
}

func sceneFlags(cmd *cobra.Command) {
	d := vizcore.DefaultParams()
	f := cmd.Flags()
	f.IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	f.Float64Var(&complexity, "complexity", d.Complexity, "structural complexity")
	f.Float64Var(&density, "density", d.PatternDensity, "pattern density")
	f.IntVar(&particles, "particles", d.ParticleCount, "particle count")
	f.Float64Var(&intensity, "intensity", d.Intensity, "audio reactivity")
	f.StringVar(&preset, "preset", "", "visualizer preset")
}

// loadConfig layers defaults, the config file, a preset and changed flags,
// in that order.
func loadConfig(cmd *cobra.Command, visualizer string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if visualizer != "" {
		cfg.Visualizer = visualizer
	}
	if preset != "" {
		if err := cfg.ApplyPreset(cfg.Visualizer, preset); err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets(cfg.Visualizer))
		}
	}

	changed := cmd.Flags().Changed
	if changed("fps") {
		cfg.FPS = fps
	}
	// only run takes its duration from the config file; the other commands
	// carry their own --time default
	if f := cmd.Flags().Lookup("time"); f != nil && (f.Changed || cmd.Name() != "run") {
		cfg.Duration, _ = cmd.Flags().GetFloat64("time")
	}
	if changed("complexity") {
		cfg.Params.Complexity = complexity
	}
	if changed("density") {
		cfg.Params.PatternDensity = density
	}
	if changed("particles") {
		cfg.Params.ParticleCount = particles
	}
	if changed("intensity") {
		cfg.Params.Intensity = intensity
	}
	if changed("audio") {
		cfg.Audio.Source = audioSrc
	}
	if changed("file") {
		cfg.Audio.File = audioFile
		if !changed("audio") {
			cfg.Audio.Source = "file"
		}
	}
	if changed("loop") {
		cfg.Audio.Loop = loop
	}
	if changed("bands") {
		cfg.Audio.Bands = bands
	}
	if changed("bpm") {
		cfg.Audio.BPM = bpm
	}
	if changed("theme") {
		cfg.Theme = theme
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSource builds the configured audio source. The returned stop func is
// always safe to call.
func openSource(ac config.AudioConfig) (vizcore.Source, func(), error) {
	nop := func() {}
	switch ac.Source {
	case "file":
		f, err := audio.OpenFile(ac.File, ac.Bands)
		if err != nil {
			return nil, nop, fmt.Errorf("open audio: %w", err)
		}
		f.Loop = ac.Loop
		log.Debug("audio file", "path", ac.File, "seconds", f.Duration())
		return f, nop, nil
	case "mic":
		c := audio.NewCapture(ac.Bands, log)
		if err := c.Start(); err != nil {
			return nil, nop, err
		}
		return c, func() {
			if err := c.Stop(); err != nil {
				log.Warn("stop capture", "err", err)
			}
		}, nil
	default:
		return newSynth(ac), nop, nil
	}
}

// newScheduler wires a Memory graph, the default catalogue and src with the
// standard metrics.
func newScheduler(src vizcore.Source, extentLimit float64) (*scheduler.Scheduler, *scene.Memory) {
	graph := scene.NewMemory()
	s := scheduler.New(registry.Default(graph, log), src, log)
	for _, m := range metrics.Standard(extentLimit) {
		s.AddMetric(m)
	}
	return s, graph
}

func visualizerArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func newSynth(ac config.AudioConfig) *audio.Synth {
	return audio.NewSynth(ac.BPM, ac.Bands)
}
