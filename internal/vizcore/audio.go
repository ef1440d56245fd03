package vizcore

import "math"

// BeatInfo is the optional beat-detection record of a frame.
type BeatInfo struct {
	IsBeat bool    `json:"is_beat"`
	Bass   float64 `json:"bass"`
	Mid    float64 `json:"mid"`
	Treble float64 `json:"treble"`
}

// AudioFrame is the per-frame audio snapshot. Magnitudes are normalised to
// [0,1]; their count F is set by the analyzer and may change between frames,
// so recipes must only index it through the helpers below.
type AudioFrame struct {
	Magnitudes []float64
	Beat       *BeatInfo
}

// Source is the audio collaborator polled once per frame.
type Source interface {
	FrequencyMagnitudes() []float64
	BeatInfo() (BeatInfo, bool)
}

// Poll builds a frame from a source. A nil source yields a silent frame.
func Poll(src Source) AudioFrame {
	if src == nil {
		return AudioFrame{}
	}
	f := AudioFrame{Magnitudes: src.FrequencyMagnitudes()}
	if b, ok := src.BeatInfo(); ok {
		f.Beat = &b
	}
	return f
}

func (f AudioFrame) Len() int { return len(f.Magnitudes) }

// BandAt returns the magnitude at i with i clamped into [0, F-1]. An empty
// spectrum reads as silence. Non-finite samples read as 0.
func (f AudioFrame) BandAt(i int) float64 {
	n := len(f.Magnitudes)
	if n == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return unit(f.Magnitudes[i])
}

// Band maps element i of count onto the spectrum, so that the first element
// reads the lowest bin and the last reads the highest.
func (f AudioFrame) Band(i, count int) float64 {
	n := len(f.Magnitudes)
	if n == 0 || count <= 0 {
		return 0
	}
	return f.BandAt(i * n / count)
}

// Average returns the mean magnitude over the fractional range [lo, hi) of
// the spectrum, e.g. Average(0, 0.1) for the lowest tenth.
func (f AudioFrame) Average(lo, hi float64) float64 {
	n := len(f.Magnitudes)
	if n == 0 {
		return 0
	}
	a := int(math.Floor(unit(lo) * float64(n)))
	b := int(math.Ceil(unit(hi) * float64(n)))
	if a >= n {
		a = n - 1
	}
	if b <= a {
		b = a + 1
	}
	if b > n {
		b = n
	}
	sum := 0.0
	for i := a; i < b; i++ {
		sum += unit(f.Magnitudes[i])
	}
	return sum / float64(b-a)
}

// Energy is the mean magnitude over the whole spectrum.
func (f AudioFrame) Energy() float64 { return f.Average(0, 1) }

func (f AudioFrame) IsBeat() bool { return f.Beat != nil && f.Beat.IsBeat }

// BassMidTreble returns the band strengths from the beat record when present,
// otherwise from the lower, middle and upper thirds of the spectrum.
func (f AudioFrame) BassMidTreble() (bass, mid, treble float64) {
	if f.Beat != nil {
		return nonNeg(f.Beat.Bass), nonNeg(f.Beat.Mid), nonNeg(f.Beat.Treble)
	}
	return f.Average(0, 1.0/3), f.Average(1.0/3, 2.0/3), f.Average(2.0/3, 1)
}

func unit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNeg(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return 1
	}
	return v
}
