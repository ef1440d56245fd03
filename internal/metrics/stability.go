package metrics

import (
	"math"

	"github.com/san-kum/sonoform/internal/scheduler"
)

// Stability is the fraction of frames whose scene extent stayed within
// threshold. Runaway free-flying elements drive it below 1.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f scheduler.FrameStats) {
	s.samples++
	if f.Extent > s.threshold || math.IsNaN(f.Extent) {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxExtent tracks the largest distance any object reached from the origin.
type MaxExtent struct {
	max float64
}

func NewMaxExtent() *MaxExtent { return &MaxExtent{} }

func (m *MaxExtent) Name() string { return "max_extent" }

func (m *MaxExtent) Observe(f scheduler.FrameStats) {
	if f.Extent > m.max {
		m.max = f.Extent
	}
}

func (m *MaxExtent) Value() float64 { return m.max }
func (m *MaxExtent) Reset()         { m.max = 0 }
