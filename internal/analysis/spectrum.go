package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Tempo search range in beats per minute.
const (
	MinBPM = 40.0
	MaxBPM = 240.0
)

// PowerSpectrum returns the magnitudes of bins 0..n/2 of the mean-removed
// series, zero padded to a power of two. Non-finite samples count as the mean.
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	sum, n := 0.0, 0
	for _, v := range series {
		if finite(v) {
			sum += v
			n++
		}
	}
	mean := 0.0
	if n > 0 {
		mean = sum / float64(n)
	}

	size := 1
	for size < len(series) {
		size *= 2
	}
	padded := make([]float64, size)
	for i, v := range series {
		if finite(v) {
			padded[i] = v - mean
		}
	}

	bins := fft.FFTReal(padded)
	out := make([]float64, size/2+1)
	for i := range out {
		out[i] = cmplx.Abs(bins[i])
	}
	return out
}

// binHz is the width of one spectrum bin for a series sampled at fps.
func binHz(spectrumLen int, fps float64) float64 {
	size := (spectrumLen - 1) * 2
	return fps / float64(size)
}

// Dominant returns the frequency in Hz and magnitude of the strongest
// non-DC bin between lo and hi Hz. hi <= 0 means up to Nyquist.
func Dominant(series []float64, fps, lo, hi float64) (float64, float64) {
	ps := PowerSpectrum(series)
	if len(ps) < 2 || fps <= 0 {
		return 0, 0
	}
	w := binHz(len(ps), fps)
	best, bestMag := 0, 0.0
	for i := 1; i < len(ps); i++ {
		f := float64(i) * w
		if f < lo || (hi > 0 && f > hi) {
			continue
		}
		if ps[i] > bestMag {
			best, bestMag = i, ps[i]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(best) * w, bestMag
}

// Tempo estimates beats per minute from the periodicity of a series sampled
// at fps. It reports false when the series is too short to resolve MinBPM
// or carries no periodic energy.
func Tempo(series []float64, fps float64) (float64, bool) {
	if fps <= 0 || float64(len(series))/fps < 2*60/MinBPM {
		return 0, false
	}
	f, mag := Dominant(series, fps, MinBPM/60, MaxBPM/60)
	if mag == 0 || math.IsNaN(f) {
		return 0, false
	}
	return f * 60, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
