package scheduler

import (
	"time"

	"github.com/san-kum/sonoform/internal/vizcore"
)

// FrameStats is what one call to OnFrame observed.
type FrameStats struct {
	Frame      int
	Elapsed    float64
	Visualizer string
	Objects    int
	Extent     float64
	Energy     float64
	Bass       float64
	Mid        float64
	Treble     float64
	Beat       bool
	Failed     bool
	Duration   time.Duration
}

type Metric interface {
	Name() string
	Observe(s FrameStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(s FrameStats)
}

// Clocked is implemented by audio sources that play back in step with the
// render clock rather than in real time.
type Clocked interface {
	Seek(elapsed float64)
}

type Config struct {
	Visualizer string
	Params     vizcore.Params
	FPS        int
	Duration   float64
	// Realtime paces frames with a ticker instead of running flat out.
	Realtime bool
	// KeepStats retains every FrameStats in the Result.
	KeepStats bool
}

type Result struct {
	Visualizer string
	Params     vizcore.Params
	Frames     int
	Failures   int
	Stats      []FrameStats
	Metrics    map[string]float64
	Wall       time.Duration
}

// FailureRate is the fraction of frames that panicked.
func (r *Result) FailureRate() float64 {
	if r.Frames == 0 {
		return 0
	}
	return float64(r.Failures) / float64(r.Frames)
}
