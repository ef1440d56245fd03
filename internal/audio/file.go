package audio

// File plays decoded audio in step with the render clock: Seek(elapsed)
// analyses the window that ends at that point of the track.
type File struct {
	*Analyzer

	pcm    *PCM
	Loop   bool
	window []float32
}

func OpenFile(path string, bands int) (*File, error) {
	pcm, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return NewFile(pcm, bands), nil
}

func NewFile(pcm *PCM, bands int) *File {
	a := NewAnalyzer(pcm.SampleRate, BufferSize, bands)
	return &File{Analyzer: a, pcm: pcm, window: make([]float32, a.Size())}
}

func (f *File) Duration() float64 { return f.pcm.Duration() }

func (f *File) Seek(elapsed float64) {
	n := len(f.pcm.Samples)
	if n == 0 || !(elapsed >= 0) {
		return
	}
	end := int(elapsed * float64(f.pcm.SampleRate))
	start := end - len(f.window) + 1

	for i := range f.window {
		j := start + i
		if j >= n && f.Loop {
			j %= n
		}
		if j < 0 || j >= n {
			f.window[i] = 0
			continue
		}
		f.window[i] = f.pcm.Samples[j]
	}
	f.Write(f.window)
}
