package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	DefaultBands = 64

	lowestFreq  = 30.0
	highestFreq = 16000.0
	bassCutoff  = 250.0
	midCutoff   = 4000.0

	// silence floor for the automatic gain control
	minLevel = 1e-4
	agcDecay = 0.999
	smooth   = 0.6

	historyLen = 43
)

// Analyzer turns PCM into a log-spaced magnitude spectrum in [0,1] and beat
// information. Write may be called from an audio callback goroutine while
// the render loop reads.
type Analyzer struct {
	mu sync.Mutex

	sampleRate int
	size       int
	window     []float64
	ring       []float64
	buf        []complex128
	edges      []int

	mags     []float64
	maxLevel float64

	bass, mid, treble float64

	history  []float64
	histPos  int
	histLen  int
	cooldown int
	beat     bool

	// BeatRatio is how far bass energy must rise above its recent average.
	BeatRatio float64
	// BeatFloor ignores beats quieter than this raw bass level.
	BeatFloor float64
	// Cooldown is the number of analyses after a beat during which no new
	// beat fires.
	Cooldown int
}

func NewAnalyzer(sampleRate, size, bands int) *Analyzer {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	if size < 16 {
		size = BufferSize
	}
	if bands <= 0 {
		bands = DefaultBands
	}

	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return &Analyzer{
		sampleRate: sampleRate,
		size:       size,
		window:     window,
		ring:       make([]float64, size),
		buf:        make([]complex128, size),
		edges:      bandEdges(sampleRate, size, bands),
		mags:       make([]float64, bands),
		maxLevel:   minLevel,
		history:    make([]float64, historyLen),
		BeatRatio:  1.5,
		BeatFloor:  0.002,
		Cooldown:   8,
	}
}

// bandEdges returns bands+1 FFT bin indices spaced logarithmically between
// lowestFreq and min(highestFreq, Nyquist). Every band covers at least one bin
// while bins last.
func bandEdges(sampleRate, size, bands int) []int {
	half := size / 2
	hi := math.Min(highestFreq, float64(sampleRate)/2)
	lo := math.Min(lowestFreq, hi/2)

	edges := make([]int, bands+1)
	for i := range edges {
		f := lo * math.Pow(hi/lo, float64(i)/float64(bands))
		bin := int(math.Round(f * float64(size) / float64(sampleRate)))
		if i > 0 && bin <= edges[i-1] {
			bin = edges[i-1] + 1
		}
		if bin > half {
			bin = half
		}
		edges[i] = bin
	}
	return edges
}

func (a *Analyzer) Bands() int      { return len(a.mags) }
func (a *Analyzer) SampleRate() int { return a.sampleRate }
func (a *Analyzer) Size() int       { return a.size }

// Write appends samples to the analysis window and recomputes the spectrum.
func (a *Analyzer) Write(samples []float32) {
	if len(samples) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(samples) >= a.size {
		for i, s := range samples[len(samples)-a.size:] {
			a.ring[i] = float64(s)
		}
	} else {
		copy(a.ring, a.ring[len(samples):])
		for i, s := range samples {
			a.ring[a.size-len(samples)+i] = float64(s)
		}
	}
	a.analyse()
}

func (a *Analyzer) analyse() {
	for i, v := range a.ring {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.buf[i] = complex(v*a.window[i], 0)
	}
	spectrum := fft.FFT(a.buf)

	half := a.size / 2
	norm := 4 / float64(a.size)
	binHz := float64(a.sampleRate) / float64(a.size)

	var bassSum, midSum, trebleSum float64
	var bassN, midN, trebleN int
	for i := 1; i < half; i++ {
		mag := cmplx.Abs(spectrum[i]) * norm
		switch f := float64(i) * binHz; {
		case f < bassCutoff:
			bassSum += mag
			bassN++
		case f < midCutoff:
			midSum += mag
			midN++
		default:
			trebleSum += mag
			trebleN++
		}
	}

	peak := 0.0
	raw := make([]float64, len(a.mags))
	for b := range raw {
		lo, hi := a.edges[b], a.edges[b+1]
		if lo >= half {
			lo = half - 1
		}
		if hi <= lo {
			hi = lo + 1
		}
		sum := 0.0
		for i := lo; i < hi; i++ {
			sum += cmplx.Abs(spectrum[i]) * norm
		}
		raw[b] = sum / float64(hi-lo)
		peak = math.Max(peak, raw[b])
	}

	if peak > a.maxLevel {
		a.maxLevel = peak
	} else {
		a.maxLevel = math.Max(a.maxLevel*agcDecay, minLevel)
	}
	gain := 1 / a.maxLevel

	for b, v := range raw {
		a.mags[b] = math.Min(v*gain, 1)
	}

	bass := mean(bassSum, bassN)
	a.bass = a.bass*smooth + math.Min(bass*gain, 1)*(1-smooth)
	a.mid = a.mid*smooth + math.Min(mean(midSum, midN)*gain, 1)*(1-smooth)
	a.treble = a.treble*smooth + math.Min(mean(trebleSum, trebleN)*gain, 1)*(1-smooth)

	a.detectBeat(bass)
}

// detectBeat compares the instantaneous bass level with its recent average.
func (a *Analyzer) detectBeat(level float64) {
	a.beat = false
	if a.cooldown > 0 {
		a.cooldown--
	}

	if a.histLen >= historyLen/4 {
		avg := 0.0
		for _, v := range a.history[:a.histLen] {
			avg += v
		}
		avg /= float64(a.histLen)
		if level > a.BeatFloor && level > avg*a.BeatRatio && a.cooldown == 0 {
			a.beat = true
			a.cooldown = a.Cooldown
		}
	}

	a.history[a.histPos] = level
	a.histPos = (a.histPos + 1) % historyLen
	if a.histLen < historyLen {
		a.histLen++
	}
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// FrequencyMagnitudes returns a copy of the latest spectrum.
func (a *Analyzer) FrequencyMagnitudes() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float64, len(a.mags))
	copy(out, a.mags)
	return out
}

func (a *Analyzer) BeatInfo() (vizcore.BeatInfo, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return vizcore.BeatInfo{IsBeat: a.beat, Bass: a.bass, Mid: a.mid, Treble: a.treble}, true
}

// Reset clears gain, smoothing and beat history.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.ring {
		a.ring[i] = 0
	}
	for i := range a.mags {
		a.mags[i] = 0
	}
	a.maxLevel = minLevel
	a.bass, a.mid, a.treble = 0, 0, 0
	a.histPos, a.histLen, a.cooldown = 0, 0, 0
	a.beat = false
}

var _ vizcore.Source = (*Analyzer)(nil)
