package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func sine(freq float64, n, rate int, amp float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestBandEdgesMonotonic(t *testing.T) {
	for _, bands := range []int{1, 8, 64, 512, 2000} {
		edges := bandEdges(SampleRate, BufferSize, bands)
		if len(edges) != bands+1 {
			t.Fatalf("bands=%d: %d edges", bands, len(edges))
		}
		for i := 1; i < len(edges); i++ {
			if edges[i] < edges[i-1] {
				t.Fatalf("bands=%d: edge %d went backwards", bands, i)
			}
			if edges[i] > BufferSize/2 {
				t.Fatalf("bands=%d: edge %d past Nyquist", bands, i)
			}
		}
	}
}

func TestAnalyzerSilence(t *testing.T) {
	a := NewAnalyzer(SampleRate, BufferSize, 32)
	a.Write(make([]float32, BufferSize))

	for i, m := range a.FrequencyMagnitudes() {
		if m != 0 {
			t.Fatalf("band %d = %v on silence", i, m)
		}
	}
	info, ok := a.BeatInfo()
	if !ok || info.IsBeat {
		t.Errorf("silence should report no beat, got %+v", info)
	}
}

func TestAnalyzerLocatesTone(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"bass", 80},
		{"mid", 1000},
		{"treble", 8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(SampleRate, BufferSize, 32)
			a.Write(sine(tt.freq, BufferSize, SampleRate, 0.8))
			mags := a.FrequencyMagnitudes()

			peak := 0
			for i, m := range mags {
				if m < 0 || m > 1 {
					t.Fatalf("band %d out of range: %v", i, m)
				}
				if m > mags[peak] {
					peak = i
				}
			}
			if mags[peak] != 1 {
				t.Errorf("peak band should be normalised to 1, got %v", mags[peak])
			}

			bin := tt.freq * BufferSize / SampleRate
			lo, hi := a.edges[peak], a.edges[peak+1]
			if bin < float64(lo)-1 || bin > float64(hi)+1 {
				t.Errorf("tone at bin %.1f landed in band %d [%d, %d)", bin, peak, lo, hi)
			}
		})
	}
}

func TestAnalyzerReturnsCopies(t *testing.T) {
	a := NewAnalyzer(SampleRate, BufferSize, 8)
	a.Write(sine(440, BufferSize, SampleRate, 0.5))
	m := a.FrequencyMagnitudes()
	m[0] = 42
	if a.FrequencyMagnitudes()[0] == 42 {
		t.Error("FrequencyMagnitudes exposed internal storage")
	}
}

func TestSynthBeats(t *testing.T) {
	s := NewSynth(120, 32)
	const fps = 60
	beats, lastBeat := 0, -100
	for frame := 0; frame < fps*8; frame++ {
		s.Seek(float64(frame) / fps)
		info, _ := s.BeatInfo()
		if !info.IsBeat {
			continue
		}
		if frame-lastBeat < s.Cooldown {
			t.Fatalf("beat at frame %d only %d frames after the last one", frame, frame-lastBeat)
		}
		beats++
		lastBeat = frame
	}
	// 120 bpm over 8 s is 16 kicks; the first quarter second has no history
	if beats < 10 || beats > 17 {
		t.Errorf("expected roughly 16 beats, got %d", beats)
	}
}

func TestSynthIsDeterministic(t *testing.T) {
	a, b := NewSynth(100, 16), NewSynth(100, 16)
	for _, at := range []float64{0, 0.3, 1.7, 4} {
		a.Seek(at)
		b.Seek(at)
	}
	ma, mb := a.FrequencyMagnitudes(), b.FrequencyMagnitudes()
	for i := range ma {
		if ma[i] != mb[i] {
			t.Fatalf("band %d differs: %v vs %v", i, ma[i], mb[i])
		}
	}
}

func writeWAV(t *testing.T, path string, samples []float32, rate, channels int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	data := make([]int, 0, len(samples)*channels)
	for _, s := range samples {
		for ch := 0; ch < channels; ch++ {
			data = append(data, int(s*32767))
		}
	}
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	tone := sine(440, 22050, 22050, 0.5)
	writeWAV(t, path, tone, 22050, 2)

	pcm, err := Decode(path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pcm.SampleRate != 22050 {
		t.Errorf("sample rate = %d", pcm.SampleRate)
	}
	if len(pcm.Samples) != len(tone) {
		t.Fatalf("decoded %d samples, want %d", len(pcm.Samples), len(tone))
	}
	if math.Abs(pcm.Duration()-1) > 1e-9 {
		t.Errorf("duration = %v", pcm.Duration())
	}
	for i := 0; i < len(tone); i += 1000 {
		if math.Abs(float64(pcm.Samples[i]-tone[i])) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, pcm.Samples[i], tone[i])
		}
	}
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("la"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFileSeek(t *testing.T) {
	pcm := &PCM{Samples: sine(1000, SampleRate, SampleRate, 0.7), SampleRate: SampleRate}
	f := NewFile(pcm, 16)

	f.Seek(0.5)
	if e := energy(f.FrequencyMagnitudes()); e == 0 {
		t.Fatal("expected signal mid-track")
	}

	f.Seek(5)
	if e := energy(f.FrequencyMagnitudes()); e != 0 {
		t.Errorf("expected silence past the end, got energy %v", e)
	}

	f.Loop = true
	f.Seek(5.5)
	if e := energy(f.FrequencyMagnitudes()); e == 0 {
		t.Error("looping file should wrap around")
	}
}

func energy(m []float64) float64 {
	sum := 0.0
	for _, v := range m {
		sum += v
	}
	return sum
}

func TestDownmix(t *testing.T) {
	got := downmix([]float32{1, 0, 0.5, 0.5, -1, 1}, 2)
	want := []float32{0.5, 0.5, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("downmix = %v, want %v", got, want)
		}
	}
}
