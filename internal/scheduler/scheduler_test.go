package scheduler_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sonoform/internal/registry"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/vizcore"
)

type flatSource struct {
	level float64
	beat  bool
	seeks []float64
}

func (s *flatSource) FrequencyMagnitudes() []float64 {
	m := make([]float64, 16)
	for i := range m {
		m[i] = s.level
	}
	return m
}

func (s *flatSource) BeatInfo() (vizcore.BeatInfo, bool) {
	return vizcore.BeatInfo{IsBeat: s.beat, Bass: s.level, Mid: s.level, Treble: s.level}, true
}

func (s *flatSource) Seek(elapsed float64) { s.seeks = append(s.seeks, elapsed) }

// flaky panics on every frame listed in bad.
type flaky struct{ bad map[int]bool }

func (flaky) Name() string        { return "flaky" }
func (flaky) Description() string { return "panics on selected frames" }

func (m flaky) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	if _, err := b.Add(scene.Primitive{Kind: scene.Sphere, Size: scene.One}); err != nil {
		return nil, err
	}
	return &flakyInstance{bad: m.bad}, nil
}

type flakyInstance struct {
	bad   map[int]bool
	frame int
}

func (f *flakyInstance) Len() int { return 1 }

func (f *flakyInstance) Animate(vizcore.AudioFrame, float64, vizcore.Params) {
	f.frame++
	if f.bad[f.frame] {
		var arr []float64
		_ = arr[f.frame]
	}
}

type counter struct{ n, failed int }

func (c *counter) OnFrame(s scheduler.FrameStats) {
	c.n++
	if s.Failed {
		c.failed++
	}
}

type peakEnergy struct{ peak float64 }

func (p *peakEnergy) Name() string { return "peak_energy" }
func (p *peakEnergy) Observe(s scheduler.FrameStats) {
	p.peak = math.Max(p.peak, s.Energy)
}
func (p *peakEnergy) Value() float64 { return p.peak }
func (p *peakEnergy) Reset()         { p.peak = 0 }

var _ = Describe("Scheduler", func() {
	var (
		graph *scene.Memory
		reg   *registry.Registry
		src   *flatSource
		logs  *bytes.Buffer
		s     *scheduler.Scheduler
	)

	BeforeEach(func() {
		graph = scene.NewMemory()
		logs = &bytes.Buffer{}
		log := slog.New(slog.NewTextHandler(logs, nil))
		reg = registry.Default(graph, log)
		src = &flatSource{level: 0.5}
		s = scheduler.New(reg, src, log)
	})

	It("skips frames when nothing is active", func() {
		_, ok := s.OnFrame(0)
		Expect(ok).To(BeFalse())
	})

	It("ignores non-finite clocks", func() {
		_, err := reg.Activate("spiralArms", vizcore.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		for _, t := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, ok := s.OnFrame(t)
			Expect(ok).To(BeFalse())
		}
		Expect(reg.Current().Frames()).To(BeZero())
	})

	It("feeds audio into the stats and seeks clocked sources", func() {
		_, err := reg.Activate("waveGrid", vizcore.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		src.beat = true

		stats, ok := s.OnFrame(0.25)
		Expect(ok).To(BeTrue())
		Expect(stats.Visualizer).To(Equal("waveGrid"))
		Expect(stats.Frame).To(Equal(1))
		Expect(stats.Energy).To(BeNumerically("~", 0.5, 1e-9))
		Expect(stats.Beat).To(BeTrue())
		Expect(stats.Objects).To(Equal(144))
		Expect(src.seeks).To(Equal([]float64{0.25}))
	})

	Describe("a panicking recipe", func() {
		BeforeEach(func() {
			Expect(reg.Register("flaky", flaky{bad: map[int]bool{2: true, 4: true}})).To(Succeed())
			_, err := reg.Activate("flaky", vizcore.DefaultParams())
			Expect(err).NotTo(HaveOccurred())
		})

		It("is contained and logged", func() {
			obs := &counter{}
			s.AddObserver(obs)

			for i := 0; i < 5; i++ {
				Expect(func() { s.OnFrame(float64(i) / 60) }).NotTo(Panic())
			}
			Expect(s.Failures()).To(Equal(2))
			Expect(obs.n).To(Equal(5))
			Expect(obs.failed).To(Equal(2))
			Expect(logs.String()).To(ContainSubstring("frame skipped"))
			Expect(logs.String()).To(ContainSubstring("visualizer=flaky"))
		})

		It("keeps the scene registered after a failure", func() {
			s.OnFrame(0)
			s.OnFrame(1.0 / 60)
			Expect(reg.Current()).NotTo(BeNil())
			Expect(graph.Len()).To(Equal(1))
			_, ok := s.OnFrame(2.0 / 60)
			Expect(ok).To(BeTrue())
		})
	})

	Describe("Run", func() {
		It("validates the config", func() {
			_, err := s.Run(context.Background(), scheduler.Config{FPS: 0, Duration: 1, Visualizer: "ringPulse"}, nil)
			Expect(err).To(HaveOccurred())
			_, err = s.Run(context.Background(), scheduler.Config{FPS: 30, Duration: 0, Visualizer: "ringPulse"}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("fails for an unknown visualizer", func() {
			_, err := s.Run(context.Background(), scheduler.Config{FPS: 30, Duration: 1, Visualizer: "nope"}, nil)
			Expect(err).To(MatchError(vizcore.ErrUnknownVisualizer))
		})

		It("fails with nothing to run", func() {
			_, err := s.Run(context.Background(), scheduler.Config{FPS: 30, Duration: 1}, nil)
			Expect(err).To(MatchError(vizcore.ErrNotActive))
		})

		It("runs duration*fps frames and collects metrics", func() {
			s.AddMetric(&peakEnergy{})
			res, err := s.Run(context.Background(), scheduler.Config{
				Visualizer: "orbitSystem",
				Params:     vizcore.DefaultParams(),
				FPS:        30,
				Duration:   2,
				KeepStats:  true,
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(Equal(60))
			Expect(res.Stats).To(HaveLen(60))
			Expect(res.Failures).To(BeZero())
			Expect(res.Metrics).To(HaveKeyWithValue("peak_energy", BeNumerically("~", 0.5, 1e-9)))
			Expect(res.Stats[59].Elapsed).To(BeNumerically("~", 59.0/30, 1e-12))
		})

		It("stops when the callback says so", func() {
			res, err := s.Run(context.Background(), scheduler.Config{Visualizer: "starfield", Params: vizcore.DefaultParams(), FPS: 60, Duration: 10},
				func(st scheduler.FrameStats) bool { return st.Frame < 10 })
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(Equal(10))
		})

		It("honours cancellation", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			res, err := s.Run(ctx, scheduler.Config{Visualizer: "ringPulse", Params: vizcore.DefaultParams(), FPS: 60, Duration: 60, Realtime: true}, nil)
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(res.Frames).To(BeNumerically("<", 60*60))
		})
	})

	It("benchmarks visualizers in parallel on private scenes", func() {
		b := &scheduler.Bench{
			NewSource:  func() vizcore.Source { return &flatSource{level: 0.3} },
			NewMetrics: func() []scheduler.Metric { return []scheduler.Metric{&peakEnergy{}} },
			Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
		ids := []string{"spiralArms", "particleCloud", "springBars"}
		results, err := b.Run(context.Background(), ids, scheduler.Config{Params: vizcore.DefaultParams(), FPS: 30, Duration: 0.5})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for i, r := range results {
			Expect(r.Visualizer).To(Equal(ids[i]))
			Expect(r.Frames).To(Equal(15))
			Expect(r.Metrics["peak_energy"]).To(BeNumerically("~", 0.3, 1e-9))
		}
		Expect(graph.Len()).To(BeZero())
	})
})
