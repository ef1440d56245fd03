package metrics

import "github.com/san-kum/sonoform/internal/scheduler"

// FailureRate is the fraction of frames skipped because the recipe panicked.
type FailureRate struct {
	failed  int
	samples int
}

func NewFailureRate() *FailureRate { return &FailureRate{} }

func (r *FailureRate) Name() string { return "failure_rate" }

func (r *FailureRate) Observe(f scheduler.FrameStats) {
	r.samples++
	if f.Failed {
		r.failed++
	}
}

func (r *FailureRate) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.failed) / float64(r.samples)
}

func (r *FailureRate) Reset() { r.failed, r.samples = 0, 0 }

// ObjectCount is the peak number of scene objects owned by the activation.
type ObjectCount struct {
	peak int
}

func NewObjectCount() *ObjectCount { return &ObjectCount{} }

func (c *ObjectCount) Name() string { return "objects" }

func (c *ObjectCount) Observe(f scheduler.FrameStats) {
	if f.Objects > c.peak {
		c.peak = f.Objects
	}
}

func (c *ObjectCount) Value() float64 { return float64(c.peak) }
func (c *ObjectCount) Reset()         { c.peak = 0 }

// FrameTime is the mean time spent in Animate, in milliseconds.
type FrameTime struct {
	totalMs float64
	samples int
}

func NewFrameTime() *FrameTime { return &FrameTime{} }

func (t *FrameTime) Name() string { return "frame_ms" }

func (t *FrameTime) Observe(f scheduler.FrameStats) {
	t.totalMs += float64(f.Duration.Microseconds()) / 1000
	t.samples++
}

func (t *FrameTime) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return t.totalMs / float64(t.samples)
}

func (t *FrameTime) Reset() { t.totalMs, t.samples = 0, 0 }

// Standard returns the metric set recorded with every run.
func Standard(extentLimit float64) []scheduler.Metric {
	return []scheduler.Metric{
		NewFailureRate(),
		NewStability(extentLimit),
		NewMaxExtent(),
		NewAudioEnergy(),
		NewBeatRate(),
		NewObjectCount(),
		NewFrameTime(),
	}
}
