package metrics

import "github.com/san-kum/sonoform/internal/scheduler"

// AudioEnergy is the mean spectrum energy seen by the visualizer.
type AudioEnergy struct {
	name    string
	total   float64
	samples int
}

func NewAudioEnergy() *AudioEnergy {
	return &AudioEnergy{name: "audio_energy"}
}

func (e *AudioEnergy) Name() string { return e.name }

func (e *AudioEnergy) Observe(f scheduler.FrameStats) {
	e.total += f.Energy
	e.samples++
}

func (e *AudioEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *AudioEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// BeatRate is beats per second of rendered time.
type BeatRate struct {
	beats int
	first float64
	last  float64
	seen  bool
}

func NewBeatRate() *BeatRate { return &BeatRate{} }

func (b *BeatRate) Name() string { return "beat_rate" }

func (b *BeatRate) Observe(f scheduler.FrameStats) {
	if !b.seen {
		b.first = f.Elapsed
		b.seen = true
	}
	b.last = f.Elapsed
	if f.Beat {
		b.beats++
	}
}

func (b *BeatRate) Value() float64 {
	span := b.last - b.first
	if span <= 0 {
		return 0
	}
	return float64(b.beats) / span
}

func (b *BeatRate) Reset() {
	*b = BeatRate{}
}
