package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sonoform/internal/analysis"
	"github.com/san-kum/sonoform/internal/automation"
	"github.com/san-kum/sonoform/internal/config"
	"github.com/san-kum/sonoform/internal/export"
	"github.com/san-kum/sonoform/internal/gui"
	"github.com/san-kum/sonoform/internal/metrics"
	"github.com/san-kum/sonoform/internal/registry"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/storage"
	"github.com/san-kum/sonoform/internal/viz"
	"github.com/san-kum/sonoform/internal/vizcore"
	"github.com/spf13/cobra"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func listVisualizers(cmd *cobra.Command, args []string) error {
	reg := registry.Default(scene.NewMemory(), log)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESETS\tDESCRIPTION")
	for _, id := range reg.List() {
		m, _ := reg.Lookup(id)
		fmt.Fprintf(w, "%s\t%d\t%s\n", id, len(config.ListPresets(id)), m.Description())
	}
	return w.Flush()
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, visualizerArg(args))
	if err != nil {
		return err
	}
	src, stop, err := openSource(cfg.Audio)
	if err != nil {
		return err
	}
	defer stop()

	limit, _ := cmd.Flags().GetFloat64("extent")
	s, _ := newScheduler(src, limit)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s for %.1fs at %d fps...\n", cfg.Visualizer, cfg.Duration, cfg.FPS)
	result, err := s.Run(ctx, scheduler.Config{
		Visualizer: cfg.Visualizer,
		Params:     cfg.Params,
		FPS:        cfg.FPS,
		Duration:   cfg.Duration,
		Realtime:   cfg.Audio.Source == "mic",
		KeepStats:  true,
	}, nil)
	if err != nil {
		return err
	}
	defer s.Registry().DeactivateCurrent()

	runID, err := st.Save(storage.RunInfo{Seed: cfg.Seed, FPS: cfg.FPS, Duration: cfg.Duration, Audio: cfg.Audio.Source}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Wall.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (failures %d)\n", result.Frames, result.Failures)
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, n := range names {
		fmt.Printf("  %s: %.6f\n", n, m[n])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, visualizerArg(args))
	if err != nil {
		return err
	}
	src, stop, err := openSource(cfg.Audio)
	if err != nil {
		return err
	}
	defer stop()

	s, graph := newScheduler(src, 50)
	m, err := viz.NewModel(s, graph, viz.Options{
		Visualizer: cfg.Visualizer,
		Params:     cfg.Params,
		Theme:      cfg.Theme,
		FPS:        cfg.FPS,
	})
	if err != nil {
		return err
	}
	defer s.Registry().DeactivateCurrent()
	return viz.Run(m)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, visualizerArg(args))
	if err != nil {
		return err
	}
	src, stop, err := openSource(cfg.Audio)
	if err != nil {
		return err
	}
	defer stop()

	s, graph := newScheduler(src, 50)
	return gui.Run(s, graph, log, gui.Options{
		Visualizer: cfg.Visualizer,
		Params:     cfg.Params,
		FPS:        cfg.FPS,
		Wires:      wires,
	})
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, visualizerArg(args))
	if err != nil {
		return err
	}
	src, stop, err := openSource(cfg.Audio)
	if err != nil {
		return err
	}
	defer stop()

	s, graph := newScheduler(src, 50)
	var last scheduler.FrameStats
	_, err = s.Run(context.Background(), scheduler.Config{
		Visualizer: cfg.Visualizer,
		Params:     cfg.Params,
		FPS:        cfg.FPS,
		Duration:   cfg.Duration,
	}, func(f scheduler.FrameStats) bool {
		if !f.Failed {
			last = f
		}
		return true
	})
	if err != nil {
		return err
	}
	defer s.Registry().DeactivateCurrent()

	cam := viz.NewCamera()
	cam.Fit(last.Extent)
	svg := export.SceneToSVG(graph.Snapshot(), cam, 1024, 768, viz.GetTheme(cfg.Theme))

	path := outFile
	if path == "" {
		path = cfg.Visualizer + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d objects at %.2fs)\n", path, last.Objects, last.Elapsed)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}
	src, stop, err := openSource(cfg.Audio)
	if err != nil {
		return err
	}
	defer stop()

	s, _ := newScheduler(src, 50)
	defer s.Registry().DeactivateCurrent()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, s, log)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tVISUALIZER\tFRAMES\tFAILURES\tRUN")
	for i, r := range results {
		runID := "-"
		if r.SaveAs != "" {
			id, err := st.Save(storage.RunInfo{FPS: sc.FPS, Duration: float64(r.Frames) / float64(sc.FPS), Audio: cfg.Audio.Source}, r.Result)
			if err != nil {
				return fmt.Errorf("save %s: %w", r.SaveAs, err)
			}
			runID = r.SaveAs + "=" + id
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", i+1, r.Visualizer, r.Frames, r.Failures, runID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	lo, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return fmt.Errorf("max: %w", err)
	}
	steps, _ := cmd.Flags().GetInt("steps")
	dur, _ := cmd.Flags().GetFloat64("time")

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	src, stop, err := openSource(cfg.Audio)
	if err != nil {
		return err
	}
	defer stop()
	s, _ := newScheduler(src, 50)
	defer s.Registry().DeactivateCurrent()

	results, err := automation.RunSweep(context.Background(), &automation.ParameterSweep{
		Visualizer: args[0],
		ParamName:  args[1],
		ParamMin:   lo,
		ParamMax:   hi,
		NumSteps:   steps,
		Duration:   dur,
		FPS:        cfg.FPS,
		Base:       cfg.Params,
	}, s, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tOBJECTS\tFRAME_MS\tFAILURES\n", args[1])
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%d\t%.3f\t%d\n", r.ParamValue, r.Objects, r.FrameMs, r.Failures)
	}
	return w.Flush()
}

func runFuzz(cmd *cobra.Command, args []string) error {
	trials, _ := cmd.Flags().GetInt("trials")
	dur, _ := cmd.Flags().GetFloat64("time")
	limit, _ := cmd.Flags().GetFloat64("extent")
	fuzzSeed, _ := cmd.Flags().GetInt64("seed")

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	src, stop, err := openSource(cfg.Audio)
	if err != nil {
		return err
	}
	defer stop()
	s, _ := newScheduler(src, limit)
	defer s.Registry().DeactivateCurrent()

	results, err := automation.RunFuzz(context.Background(), &automation.FuzzConfig{
		Visualizer:  args[0],
		NumTrials:   trials,
		Duration:    dur,
		FPS:         cfg.FPS,
		ExtentLimit: limit,
		Seed:        fuzzSeed,
	}, s, log)
	if err != nil {
		return err
	}
	stable, unstable := automation.FuzzStats(results)
	fmt.Printf("%s: %d stable, %d unstable\n", args[0], stable, unstable)
	for _, r := range results {
		if !r.Stable {
			fmt.Printf("  trial %d extent %.2f params %+v\n", r.TrialID, r.Extent, r.Params)
		}
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}
	ids := args
	if len(ids) == 0 {
		ids = registry.Default(scene.NewMemory(), log).List()
	}

	b := &scheduler.Bench{
		NewSource: func() vizcore.Source {
			return newBenchSource(cfg.Audio)
		},
		NewMetrics: func() []scheduler.Metric { return metrics.Standard(50) },
		Log:        log,
	}

	fmt.Printf("benchmarking %d visualizers, %.1fs each at %d fps\n\n", len(ids), cfg.Duration, cfg.FPS)
	start := time.Now()
	results, err := b.Run(context.Background(), ids, scheduler.Config{
		Params:   cfg.Params,
		FPS:      cfg.FPS,
		Duration: cfg.Duration,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VISUALIZER\tFRAMES\tOBJECTS\tFRAME_MS\tFRAMES/SEC\tFAILURES")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.0f\t%.3f\t%.0f\t%d\n",
			r.Visualizer, r.Frames, r.Metrics["objects"], r.Metrics["frame_ms"],
			float64(r.Frames)/r.Wall.Seconds(), r.Failures)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ntotal %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// newBenchSource gives every benchmark goroutine its own analyser. Mic
// capture is shared hardware, so benchmarks fall back to the synth.
func newBenchSource(ac config.AudioConfig) vizcore.Source {
	if ac.Source == "file" {
		src, _, err := openSource(ac)
		if err == nil {
			return src
		}
		log.Warn("bench audio file", "err", err)
	}
	return newSynth(ac)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVISUALIZER\tTIME\tDURATION\tFPS\tAUDIO\tFRAMES\tFAILURES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%s\t%d\t%d\n",
			run.ID,
			run.Visualizer,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.FPS,
			run.Audio,
			run.Frames,
			run.Failures,
		)
	}
	return w.Flush()
}

var plotColumns = []string{"energy", "bass", "mid", "treble", "extent", "objects", "frame_ms"}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if outFile != "" {
		col := column
		if col == "" {
			col = "energy"
		}
		data, err := storage.Series(frames, col)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outFile, []byte(export.SeriesToSVG(data, 800, 240, "#00ffcc")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("visualizer: %s\n", meta.Visualizer)
	fmt.Printf("frames: %d\n\n", len(frames))

	cols := plotColumns
	if column != "" {
		cols = []string{column}
	}
	for _, c := range cols {
		data, err := storage.Series(frames, c)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(c+" vs frame"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	col, _ := cmd.Flags().GetString("column")
	data, err := storage.Series(frames, col)
	if err != nil {
		return err
	}
	if len(data) < 2 {
		return fmt.Errorf("run %s has too few frames to analyze", meta.ID)
	}
	rate := float64(meta.FPS)
	if rate <= 0 {
		rate = config.DefaultFPS
	}

	fmt.Printf("run: %s (%s, %d frames at %d fps)\n\n", meta.ID, meta.Visualizer, len(frames), meta.FPS)

	ps := analysis.PowerSpectrum(data)
	fmt.Println(asciigraph.Plot(ps[1:],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(col+" power spectrum"),
	))
	fmt.Println()

	if f, mag := analysis.Dominant(data, rate, 0, 0); mag > 0 {
		fmt.Printf("dominant: %.3f Hz (period %.2fs)\n", f, 1/f)
	}
	if tempo, ok := analysis.Tempo(data, rate); ok {
		fmt.Printf("tempo: %.1f bpm\n", tempo)
	} else {
		fmt.Println("tempo: not resolved")
	}

	pair, _ := cmd.Flags().GetString("scatter")
	if pair == "" {
		return nil
	}
	xs, ys, ok := strings.Cut(pair, ":")
	if !ok {
		return fmt.Errorf("scatter wants x:y, got %q", pair)
	}
	x, err := storage.Series(frames, xs)
	if err != nil {
		return err
	}
	y, err := storage.Series(frames, ys)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s vs %s\n", ys, xs)
	fmt.Print(analysis.Scatter(x, y, 60, 20))
	return nil
}
