package audio

import (
	"math"
)

// Gm7 add9 stack: G2, Bb2, D3, F3, A3.
var padFreqs = []float64{98.00, 116.54, 146.83, 174.61, 220.00}

// Synth is a deterministic source: an ambient pad with a kick drum on every
// beat, rendered as a pure function of time and run through an Analyzer.
// Demo runs and tests use it when no capture device or file is wanted.
type Synth struct {
	*Analyzer

	BPM    float64
	Cutoff float64
	window []float32
}

func NewSynth(bpm float64, bands int) *Synth {
	if bpm <= 0 {
		bpm = 120
	}
	a := NewAnalyzer(SampleRate, BufferSize, bands)
	return &Synth{Analyzer: a, BPM: bpm, Cutoff: 1200, window: make([]float32, a.Size())}
}

// Seek renders the analysis window that ends at elapsed seconds and
// analyses it.
func (s *Synth) Seek(elapsed float64) {
	dt := 1 / float64(s.SampleRate())
	start := elapsed - float64(len(s.window)-1)*dt

	state := 0.0
	for i := range s.window {
		t := start + float64(i)*dt
		var pad float64
		pad, state = lpf(s.pad(t), s.Cutoff, dt, state)
		s.window[i] = float32(math.Max(-1, math.Min(1, 0.4*pad+s.Kick(t))))
	}
	s.Write(s.window)
}

func (s *Synth) pad(t float64) float64 {
	sample := 0.0
	g := 1.0 / float64(len(padFreqs))
	for j, f := range padFreqs {
		lfo := math.Sin(t*0.2 + float64(j))
		sample += triangle(t*f) * g * (0.7 + 0.3*lfo)
	}
	return sample
}

// Kick is a decaying 55 Hz sine struck at every beat.
func (s *Synth) Kick(t float64) float64 {
	if t < 0 {
		return 0
	}
	period := 60 / s.BPM
	tau := math.Mod(t, period)
	return 0.9 * math.Exp(-tau*25) * math.Sin(2*math.Pi*55*tau)
}

// Triangle wave: smooth, no harsh buzz.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// One-pole low pass.
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}
