package audio

import (
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

// Capture feeds the default input device into an Analyzer.
type Capture struct {
	*Analyzer

	stream *portaudio.Stream
	log    *slog.Logger
	active bool
}

func NewCapture(bands int, log *slog.Logger) *Capture {
	if log == nil {
		log = slog.Default()
	}
	return &Capture{Analyzer: NewAnalyzer(SampleRate, BufferSize, bands), log: log}
}

func (c *Capture) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}

	// mono input only; duplex streams fail on hosts whose devices differ
	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, BufferSize, c.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start input stream: %w", err)
	}

	c.stream = stream
	c.active = true
	c.log.Info("audio capture started", "rate", SampleRate, "buffer", BufferSize, "bands", c.Bands())
	return nil
}

func (c *Capture) process(in []float32) {
	c.Write(in)
}

func (c *Capture) Active() bool { return c.active }

func (c *Capture) Stop() error {
	if !c.active {
		return nil
	}
	c.active = false
	var err error
	if c.stream != nil {
		if serr := c.stream.Stop(); serr != nil {
			err = serr
		}
		if cerr := c.stream.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if terr := portaudio.Terminate(); terr != nil && err == nil {
		err = terr
	}
	return err
}
