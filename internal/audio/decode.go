package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// PCM is decoded mono audio in [-1, 1].
type PCM struct {
	Samples    []float32
	SampleRate int
}

// Duration in seconds.
func (p *PCM) Duration() float64 {
	if p.SampleRate == 0 {
		return 0
	}
	return float64(len(p.Samples)) / float64(p.SampleRate)
}

// Decode reads a whole wav, mp3, flac or ogg file, picking the decoder by
// extension, and downmixes it to mono.
func Decode(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pcm *PCM
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		pcm, err = decodeWAV(f)
	case ".mp3":
		pcm, err = decodeMP3(f)
	case ".flac":
		pcm, err = decodeFLAC(f)
	case ".ogg":
		pcm, err = decodeOGG(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return pcm, nil
}

func decodeWAV(r io.ReadSeeker) (*PCM, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	scale := float32(int(1) << (depth - 1))
	// 8-bit WAV is unsigned
	offset := 0
	if depth == 8 {
		offset = 128
	}

	ints := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		ints[i] = float32(v-offset) / scale
	}
	return &PCM{Samples: downmix(ints, channels), SampleRate: int(dec.SampleRate)}, nil
}

func decodeMP3(r io.Reader) (*PCM, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	// 16-bit little-endian stereo
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	return &PCM{Samples: downmix(int16LE(raw), 2), SampleRate: dec.SampleRate()}, nil
}

func decodeFLAC(r io.ReadSeeker) (*PCM, error) {
	stream, err := flac.NewSeek(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	scale := float32(int64(1) << (stream.Info.BitsPerSample - 1))
	samples := make([]float32, 0, stream.Info.NSamples)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		n := int(frame.Subframes[0].NSamples)
		for i := 0; i < n; i++ {
			var sum float32
			for ch := 0; ch < channels; ch++ {
				sum += float32(frame.Subframes[ch].Samples[i]) / scale
			}
			samples = append(samples, sum/float32(channels))
		}
	}
	return &PCM{Samples: samples, SampleRate: int(stream.Info.SampleRate)}, nil
}

func decodeOGG(r io.Reader) (*PCM, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	channels := reader.Channels()

	var interleaved []float32
	chunk := make([]float32, 4096*channels)
	for {
		n, err := reader.Read(chunk)
		interleaved = append(interleaved, chunk[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return &PCM{Samples: downmix(interleaved, channels), SampleRate: reader.SampleRate()}, nil
}

func int16LE(raw []byte) []float32 {
	out := make([]float32, len(raw)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}
	return out
}

// downmix averages interleaved channels into one.
func downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	out := make([]float32, len(interleaved)/channels)
	for i := range out {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += interleaved[i*channels+ch]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
