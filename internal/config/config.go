package config

import (
	"fmt"
	"os"

	"github.com/san-kum/sonoform/internal/vizcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultVisualizer = "spiralArms"
	DefaultFPS        = 60
	DefaultDuration   = 10.0
	DefaultBands      = 64
	DefaultBPM        = 120.0
	DefaultTheme      = "default"
)

type Config struct {
	Visualizer string         `yaml:"visualizer"`
	FPS        int            `yaml:"fps"`
	Duration   float64        `yaml:"duration"`
	Audio      AudioConfig    `yaml:"audio"`
	Params     vizcore.Params `yaml:"params"`
	Theme      string         `yaml:"theme"`
	Seed       int64          `yaml:"seed"`
}

type AudioConfig struct {
	// Source is one of synth, file or mic.
	Source string  `yaml:"source"`
	File   string  `yaml:"file"`
	Loop   bool    `yaml:"loop"`
	Bands  int     `yaml:"bands"`
	BPM    float64 `yaml:"bpm"`
}

func DefaultConfig() *Config {
	return &Config{
		Visualizer: DefaultVisualizer,
		FPS:        DefaultFPS,
		Duration:   DefaultDuration,
		Audio: AudioConfig{
			Source: "synth",
			Bands:  DefaultBands,
			BPM:    DefaultBPM,
		},
		Params: vizcore.DefaultParams(),
		Theme:  DefaultTheme,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings no run can use. Out-of-range visual parameters
// are not errors; the registry clamps them.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	switch c.Audio.Source {
	case "synth", "mic":
	case "file":
		if c.Audio.File == "" {
			return fmt.Errorf("audio source file needs audio.file")
		}
	default:
		return fmt.Errorf("unknown audio source %q", c.Audio.Source)
	}
	if c.Audio.Bands <= 0 {
		return fmt.Errorf("audio.bands must be positive, got %d", c.Audio.Bands)
	}
	return nil
}

// ApplyPreset overlays a visualizer preset onto c.
func (c *Config) ApplyPreset(visualizer, preset string) error {
	p := GetPreset(visualizer, preset)
	if p == nil {
		return fmt.Errorf("no preset %q for %s", preset, visualizer)
	}
	c.Visualizer = visualizer
	c.Params = p.Params
	if p.Duration > 0 {
		c.Duration = p.Duration
	}
	if p.Theme != "" {
		c.Theme = p.Theme
	}
	return nil
}
