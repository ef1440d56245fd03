package vizcore

import (
	"errors"
	"math"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		in      Params
		want    Params
		invalid bool
	}{
		{"defaults", DefaultParams(), DefaultParams(), false},
		{"negative", Params{Complexity: -1, PatternDensity: -2, ParticleCount: -5, Intensity: -1}, Params{}, true},
		{"nan", Params{Complexity: math.NaN(), PatternDensity: 1, Intensity: math.NaN()}, Params{PatternDensity: 1}, true},
		{"inf", Params{Complexity: math.Inf(1), PatternDensity: 1, Intensity: 1}, Params{Complexity: MaxFactor, PatternDensity: 1, Intensity: 1}, true},
		{"large", Params{Complexity: 100, PatternDensity: 1, ParticleCount: 1e6, Intensity: 50}, Params{Complexity: MaxFactor, PatternDensity: 1, ParticleCount: MaxParticles, Intensity: MaxIntensity}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Sanitize()
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
			if tt.invalid != errors.Is(err, ErrInvalidParameter) {
				t.Errorf("invalid=%v but err=%v", tt.invalid, err)
			}
		})
	}
}

func TestScaledCount(t *testing.T) {
	tests := []struct {
		base   int
		factor float64
		lo, hi int
		want   int
	}{
		{10, 1, 1, 100, 10},
		{10, 1.55, 1, 100, 15},
		{10, 0, 1, 100, 1},
		{10, -3, 0, 100, 0},
		{10, math.NaN(), 2, 100, 2},
		{1000, 8, 1, 500, 500},
	}
	for _, tt := range tests {
		if got := ScaledCount(tt.base, tt.factor, tt.lo, tt.hi); got != tt.want {
			t.Errorf("ScaledCount(%d, %v, %d, %d) = %d, want %d", tt.base, tt.factor, tt.lo, tt.hi, got, tt.want)
		}
	}
	if got := CapCount(9000, 1, 300); got != 300 {
		t.Errorf("CapCount = %d, want 300", got)
	}
}

func TestParamPatch(t *testing.T) {
	intensity := 2.5
	complexity := 3.0

	live := ParamPatch{Intensity: &intensity}
	if !live.Live() || live.Empty() {
		t.Error("intensity-only patch should be live and non-empty")
	}
	p := live.Apply(DefaultParams())
	if p.Intensity != 2.5 || p.Complexity != 1 {
		t.Errorf("unexpected apply result %+v", p)
	}

	rebuild := ParamPatch{Complexity: &complexity}
	if rebuild.Live() {
		t.Error("complexity patch requires a rebuild")
	}
	if !(ParamPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
}

func TestBandAtClamps(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 512} {
		f := AudioFrame{Magnitudes: make([]float64, n)}
		for i := range f.Magnitudes {
			f.Magnitudes[i] = float64(i+1) / float64(n)
		}
		for _, i := range []int{-10, -1, 0, 1, n - 1, n, n + 100, math.MaxInt32} {
			v := f.BandAt(i)
			if v < 0 || v > 1 {
				t.Errorf("F=%d i=%d out of range: %f", n, i, v)
			}
		}
		for i := 0; i < 64; i++ {
			_ = f.Band(i, 64)
		}
	}

	single := AudioFrame{Magnitudes: []float64{0.7}}
	for _, i := range []int{-3, 0, 5, 1000} {
		if single.BandAt(i) != 0.7 {
			t.Errorf("F=1 lookup %d should resolve to index 0", i)
		}
	}
}

func TestAverageAndBands(t *testing.T) {
	f := AudioFrame{Magnitudes: []float64{1, 1, 1, 0, 0, 0, 0.5, 0.5, 0.5}}
	bass, mid, treble := f.BassMidTreble()
	if bass != 1 || mid != 0 || treble != 0.5 {
		t.Errorf("expected 1/0/0.5, got %f/%f/%f", bass, mid, treble)
	}

	f.Beat = &BeatInfo{IsBeat: true, Bass: 0.2, Mid: -1, Treble: math.NaN()}
	bass, mid, treble = f.BassMidTreble()
	if bass != 0.2 || mid != 0 || treble != 0 {
		t.Errorf("beat record not sanitised: %f/%f/%f", bass, mid, treble)
	}
	if !f.IsBeat() {
		t.Error("expected beat")
	}

	noisy := AudioFrame{Magnitudes: []float64{math.NaN(), 2, -1}}
	if e := noisy.Energy(); e < 0 || e > 1 {
		t.Errorf("energy out of range: %f", e)
	}
	if (AudioFrame{}).Energy() != 0 {
		t.Error("empty frame should be silent")
	}
}

type stubSource struct{ beat bool }

func (s stubSource) FrequencyMagnitudes() []float64 { return []float64{0.5} }
func (s stubSource) BeatInfo() (BeatInfo, bool) {
	if !s.beat {
		return BeatInfo{}, false
	}
	return BeatInfo{IsBeat: true, Bass: 1}, true
}

func TestPoll(t *testing.T) {
	f := Poll(stubSource{beat: true})
	if f.Len() != 1 || !f.IsBeat() {
		t.Errorf("unexpected frame %+v", f)
	}
	if f := Poll(stubSource{}); f.Beat != nil {
		t.Error("expected no beat record")
	}
	if f := Poll(nil); f.Len() != 0 {
		t.Error("nil source should be silent")
	}
}

func TestFrameErrorUnwrap(t *testing.T) {
	cause := errors.New("index out of range")
	err := error(&FrameError{Visualizer: "x", Frame: 3, Cause: cause})
	if !errors.Is(err, ErrFrameCompute) || !errors.Is(err, cause) {
		t.Errorf("FrameError should unwrap to both sentinel and cause: %v", err)
	}
	if !errors.Is(&FrameError{Cause: "boom"}, ErrFrameCompute) {
		t.Error("non-error cause should still match ErrFrameCompute")
	}
}

func TestObjectsArena(t *testing.T) {
	var objs Objects[int, float64]
	objs.Add(1, RoleCore, 10)
	objs.Add(2, RoleArm, 20)
	objs.Add(3, RoleArm, 30)
	if objs.Count(RoleArm) != 2 || objs.Count(RoleCore) != 1 {
		t.Errorf("unexpected role counts")
	}
	if objs[2].Base != 30 || RoleFieldLine.String() != "field-line" {
		t.Errorf("unexpected arena contents")
	}
}
