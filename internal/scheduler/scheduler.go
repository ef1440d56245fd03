package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/sonoform/internal/registry"
	"github.com/san-kum/sonoform/internal/vizcore"
)

// Scheduler turns host frame callbacks into Animate calls on the current
// activation. A panicking frame is logged and skipped; it never reaches the
// host.
type Scheduler struct {
	reg       *registry.Registry
	src       vizcore.Source
	log       *slog.Logger
	metrics   []Metric
	observers []Observer
	frames    int
	failures  int
}

func New(reg *registry.Registry, src vizcore.Source, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		reg:       reg,
		src:       src,
		log:       log,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Scheduler) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Scheduler) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Scheduler) SetSource(src vizcore.Source) { s.src = src }
func (s *Scheduler) Registry() *registry.Registry { return s.reg }

// Failures is the number of frames that panicked since New.
func (s *Scheduler) Failures() int { return s.failures }

// OnFrame animates one frame at elapsed seconds since activation. It
// reports false when the frame was skipped: no activation, a non-finite
// clock, or a panic inside the recipe.
func (s *Scheduler) OnFrame(elapsed float64) (FrameStats, bool) {
	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		return FrameStats{}, false
	}
	cur := s.reg.Current()
	if cur == nil {
		return FrameStats{}, false
	}

	if c, ok := s.src.(Clocked); ok {
		c.Seek(elapsed)
	}
	f := vizcore.Poll(s.src)
	bass, mid, treble := f.BassMidTreble()

	stats := FrameStats{
		Elapsed:    elapsed,
		Visualizer: cur.ID(),
		Energy:     f.Energy(),
		Bass:       bass,
		Mid:        mid,
		Treble:     treble,
		Beat:       f.IsBeat(),
	}

	start := time.Now()
	info, ok, err := s.animate(cur, f, elapsed)
	stats.Duration = time.Since(start)
	s.frames++

	switch {
	case err != nil:
		s.failures++
		stats.Failed = true
		stats.Frame = cur.Frames()
		stats.Objects = cur.Len()
		s.log.Warn("frame skipped", "visualizer", cur.ID(), "frame", stats.Frame, "err", err)
	case !ok:
		return FrameStats{}, false
	default:
		stats.Frame = info.Frame
		stats.Objects = info.Objects
		stats.Extent = info.Extent
	}

	for _, m := range s.metrics {
		m.Observe(stats)
	}
	for _, o := range s.observers {
		o.OnFrame(stats)
	}
	return stats, !stats.Failed
}

func (s *Scheduler) animate(cur *registry.Activation, f vizcore.AudioFrame, elapsed float64) (info registry.FrameInfo, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &vizcore.FrameError{Visualizer: cur.ID(), Frame: cur.Frames(), Elapsed: elapsed, Cause: r}
		}
	}()
	info, ok = s.reg.Animate(f, elapsed)
	return info, ok, nil
}

func (s *Scheduler) validateConfig(cfg Config) error {
	if cfg.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", cfg.FPS)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// Run drives the scheduler at cfg.FPS for cfg.Duration seconds, activating
// cfg.Visualizer first when it is set. callback, if non-nil, sees every
// frame and may stop the run early by returning false.
func (s *Scheduler) Run(ctx context.Context, cfg Config, callback func(FrameStats) bool) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Visualizer != "" {
		if _, err := s.reg.Activate(cfg.Visualizer, cfg.Params); err != nil {
			return nil, err
		}
	}
	cur := s.reg.Current()
	if cur == nil {
		return nil, vizcore.ErrNotActive
	}

	steps := int(cfg.Duration * float64(cfg.FPS))
	result := &Result{
		Visualizer: cur.ID(),
		Params:     cur.Params(),
		Metrics:    make(map[string]float64),
	}
	if cfg.KeepStats {
		result.Stats = make([]FrameStats, 0, steps)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	var tick <-chan time.Time
	if cfg.Realtime {
		t := time.NewTicker(time.Second / time.Duration(cfg.FPS))
		defer t.Stop()
		tick = t.C
	}

	failuresBefore := s.failures
	start := time.Now()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, failuresBefore, start)
			return result, ctx.Err()
		default:
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				s.finish(result, failuresBefore, start)
				return result, ctx.Err()
			case <-tick:
			}
		}

		stats, _ := s.OnFrame(float64(i) / float64(cfg.FPS))
		result.Frames++
		if cfg.KeepStats {
			result.Stats = append(result.Stats, stats)
		}
		if callback != nil && !callback(stats) {
			break
		}
	}

	s.finish(result, failuresBefore, start)
	return result, nil
}

func (s *Scheduler) finish(r *Result, failuresBefore int, start time.Time) {
	r.Failures = s.failures - failuresBefore
	r.Wall = time.Since(start)
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
