package analysis

import (
	"math"
	"strings"
	"testing"
)

func pulses(bpm, fps float64, seconds float64) []float64 {
	n := int(seconds * fps)
	out := make([]float64, n)
	period := 60 / bpm * fps
	for i := range out {
		// short decaying pulse each beat
		phase := math.Mod(float64(i), period)
		out[i] = math.Exp(-phase / 3)
	}
	return out
}

func TestPowerSpectrumFindsSine(t *testing.T) {
	const fps = 64.0
	s := make([]float64, 256)
	for i := range s {
		s[i] = 5 + math.Sin(2*math.Pi*4*float64(i)/fps)
	}
	ps := PowerSpectrum(s)
	if len(ps) != 129 {
		t.Fatalf("bins = %d, want 129", len(ps))
	}
	if ps[0] > 1e-9 {
		t.Fatalf("mean not removed, dc = %v", ps[0])
	}
	f, _ := Dominant(s, fps, 0, 0)
	if math.Abs(f-4) > 1e-9 {
		t.Fatalf("dominant = %v Hz, want 4", f)
	}
}

func TestPowerSpectrumIgnoresNonFinite(t *testing.T) {
	ps := PowerSpectrum([]float64{1, math.NaN(), 1, math.Inf(1)})
	for i, v := range ps {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("bin %d = %v", i, v)
		}
	}
	if PowerSpectrum([]float64{1}) != nil {
		t.Fatal("single sample should have no spectrum")
	}
}

func TestTempo(t *testing.T) {
	for _, bpm := range []float64{90, 120, 150} {
		got, ok := Tempo(pulses(bpm, 60, 20), 60)
		if !ok {
			t.Fatalf("%v bpm: no tempo", bpm)
		}
		// one bin of a 2048-point spectrum at 60 fps is ~1.76 bpm
		if math.Abs(got-bpm) > 2 {
			t.Errorf("tempo = %.1f, want %.0f", got, bpm)
		}
	}

	if _, ok := Tempo(pulses(120, 60, 1), 60); ok {
		t.Fatal("one second is too short to resolve the slowest tempo")
	}
	if _, ok := Tempo(make([]float64, 1200), 60); ok {
		t.Fatal("flat series has no tempo")
	}
}

func TestScatter(t *testing.T) {
	x := []float64{-1, 0, 1, math.NaN()}
	y := []float64{-1, 0, 1, 2}
	out := Scatter(x, y, 20, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("rows = %d", len(lines))
	}
	if got := strings.Count(out, "•"); got != 3 {
		t.Fatalf("points = %d, want 3", got)
	}
	if !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Fatal("axes missing")
	}
	if Scatter(nil, nil, 10, 10) != "" || Scatter([]float64{math.NaN()}, []float64{1}, 10, 10) != "" {
		t.Fatal("empty input should render nothing")
	}
}
