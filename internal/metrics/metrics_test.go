package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/sonoform/internal/scheduler"
)

func feed(m scheduler.Metric, frames ...scheduler.FrameStats) float64 {
	m.Reset()
	for _, f := range frames {
		m.Observe(f)
	}
	return m.Value()
}

func TestStability(t *testing.T) {
	s := NewStability(10)
	if v := s.Value(); v != 1 {
		t.Errorf("empty stability = %v, want 1", v)
	}
	got := feed(s,
		scheduler.FrameStats{Extent: 3},
		scheduler.FrameStats{Extent: 12},
		scheduler.FrameStats{Extent: math.NaN()},
		scheduler.FrameStats{Extent: 10},
	)
	if got != 0.5 {
		t.Errorf("stability = %v, want 0.5", got)
	}
}

func TestMetricValues(t *testing.T) {
	frames := []scheduler.FrameStats{
		{Elapsed: 0, Energy: 0.2, Objects: 10, Extent: 1, Duration: 2 * time.Millisecond},
		{Elapsed: 1, Energy: 0.4, Objects: 12, Extent: 5, Beat: true, Duration: 4 * time.Millisecond},
		{Elapsed: 2, Energy: 0.6, Objects: 11, Extent: 2, Failed: true, Beat: true, Duration: 3 * time.Millisecond},
		{Elapsed: 4, Energy: 0.8, Objects: 11, Extent: 2, Duration: 3 * time.Millisecond},
	}

	tests := []struct {
		metric scheduler.Metric
		want   float64
	}{
		{NewAudioEnergy(), 0.5},
		{NewBeatRate(), 0.5},
		{NewFailureRate(), 0.25},
		{NewObjectCount(), 12},
		{NewMaxExtent(), 5},
		{NewFrameTime(), 3},
	}

	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			if got := feed(tt.metric, frames...); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			tt.metric.Reset()
			if got := tt.metric.Value(); got != 0 {
				t.Errorf("after reset got %v", got)
			}
		})
	}
}

func TestStandardNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard(30) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		seen[m.Name()] = true
	}
}
