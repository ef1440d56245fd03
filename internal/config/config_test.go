package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/sonoform/internal/recipes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Visualizer != "spiralArms" {
		t.Errorf("expected visualizer spiralArms, got %s", cfg.Visualizer)
	}
	if cfg.FPS <= 0 {
		t.Error("fps should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	cfg := DefaultConfig()
	cfg.Visualizer = "ringPulse"
	cfg.Params.Intensity = 2.5
	cfg.Audio.BPM = 96

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	yml := "visualizer: starfield\nparams:\n  particle_count: 42\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Visualizer != "starfield" || cfg.Params.ParticleCount != 42 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.FPS != DefaultFPS || cfg.Audio.Bands != DefaultBands {
		t.Errorf("defaults lost: fps=%d bands=%d", cfg.FPS, cfg.Audio.Bands)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"zero fps", func(c *Config) { c.FPS = 0 }, "fps"},
		{"negative duration", func(c *Config) { c.Duration = -1 }, "duration"},
		{"file without path", func(c *Config) { c.Audio.Source = "file" }, "audio.file"},
		{"unknown source", func(c *Config) { c.Audio.Source = "radio" }, "radio"},
		{"no bands", func(c *Config) { c.Audio.Bands = 0 }, "bands"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("particleCloud", "nebula")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Params.ParticleCount != 2000 {
		t.Errorf("expected 2000 particles, got %d", p.Params.ParticleCount)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("starfield", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "warp") != nil {
		t.Error("expected nil for nonexistent visualizer")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("starfield")
	if len(presets) != 2 || presets[0] != "drift" {
		t.Errorf("expected sorted [drift warp], got %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent visualizer")
	}
}

func TestEveryVisualizerHasAPreset(t *testing.T) {
	for _, m := range recipes.All() {
		if len(ListPresets(m.Name())) == 0 {
			t.Errorf("no presets for %s", m.Name())
		}
	}
	for viz := range Presets {
		found := false
		for _, m := range recipes.All() {
			found = found || m.Name() == viz
		}
		if !found {
			t.Errorf("presets for unknown visualizer %s", viz)
		}
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset("orbitSystem", "solar"); err != nil {
		t.Fatal(err)
	}
	if cfg.Visualizer != "orbitSystem" || cfg.Duration != 30 || cfg.Params.Complexity != 1.6 {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if err := cfg.ApplyPreset("orbitSystem", "nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}
