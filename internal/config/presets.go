package config

import (
	"sort"

	"github.com/san-kum/sonoform/internal/vizcore"
)

type Preset struct {
	Params   vizcore.Params
	Duration float64
	Theme    string
}

var Presets = map[string]map[string]*Preset{
	"spiralArms": {
		"galaxy":  {Params: vizcore.Params{Complexity: 2, PatternDensity: 1.5, ParticleCount: 500, Intensity: 1.2}, Theme: "ocean"},
		"minimal": {Params: vizcore.Params{Complexity: 0.5, PatternDensity: 0.5, ParticleCount: 100, Intensity: 0.8}},
	},
	"crystalLattice": {
		"dense":  {Params: vizcore.Params{Complexity: 2, PatternDensity: 1, ParticleCount: 0, Intensity: 1}, Theme: "matrix"},
		"sparse": {Params: vizcore.Params{Complexity: 1, PatternDensity: 0.3, ParticleCount: 0, Intensity: 1.5}},
	},
	"fractalTree": {
		"bonsai": {Params: vizcore.Params{Complexity: 0.75, PatternDensity: 0, ParticleCount: 0, Intensity: 1}},
		"forest": {Params: vizcore.Params{Complexity: 1.5, PatternDensity: 1, ParticleCount: 0, Intensity: 1.2}, Theme: "matrix"},
	},
	"fieldLines": {
		"aurora": {Params: vizcore.Params{Complexity: 3, PatternDensity: 2, ParticleCount: 0, Intensity: 1.5}, Theme: "ocean"},
	},
	"orbitSystem": {
		"solar": {Params: vizcore.Params{Complexity: 1.6, PatternDensity: 1, ParticleCount: 0, Intensity: 1}, Duration: 30},
		"moons": {Params: vizcore.Params{Complexity: 0.6, PatternDensity: 3, ParticleCount: 0, Intensity: 1}},
	},
	"particleCloud": {
		"nebula": {Params: vizcore.Params{Complexity: 1, PatternDensity: 1, ParticleCount: 2000, Intensity: 1.5}, Theme: "sunset"},
		"dust":   {Params: vizcore.Params{Complexity: 1, PatternDensity: 1, ParticleCount: 200, Intensity: 0.5}},
	},
	"lightningBolts": {
		"storm": {Params: vizcore.Params{Complexity: 4, PatternDensity: 2, ParticleCount: 0, Intensity: 2}, Theme: "neon"},
	},
	"helixStrands": {
		"dna":   {Params: vizcore.Params{Complexity: 1, PatternDensity: 1.5, ParticleCount: 0, Intensity: 1}},
		"braid": {Params: vizcore.Params{Complexity: 3, PatternDensity: 1, ParticleCount: 0, Intensity: 1}},
	},
	"ringPulse": {
		"ripple": {Params: vizcore.Params{Complexity: 2, PatternDensity: 2, ParticleCount: 0, Intensity: 1.5}, Theme: "ocean"},
	},
	"waveGrid": {
		"ocean": {Params: vizcore.Params{Complexity: 2, PatternDensity: 1, ParticleCount: 0, Intensity: 1}, Theme: "ocean"},
		"city":  {Params: vizcore.Params{Complexity: 1, PatternDensity: 1, ParticleCount: 0, Intensity: 2}},
	},
	"springBars": {
		"equalizer": {Params: vizcore.Params{Complexity: 1, PatternDensity: 2, ParticleCount: 0, Intensity: 1}, Theme: "neon"},
	},
	"starfield": {
		"warp":  {Params: vizcore.Params{Complexity: 1, PatternDensity: 1, ParticleCount: 3000, Intensity: 2}},
		"drift": {Params: vizcore.Params{Complexity: 1, PatternDensity: 1, ParticleCount: 800, Intensity: 0.3}, Duration: 60},
	},
}

func GetPreset(visualizer, preset string) *Preset {
	vizPresets, ok := Presets[visualizer]
	if !ok {
		return nil
	}
	p, ok := vizPresets[preset]
	if !ok {
		return nil
	}
	return p
}

// ListPresets returns the preset names for visualizer in sorted order.
func ListPresets(visualizer string) []string {
	vizPresets, ok := Presets[visualizer]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(vizPresets))
	for name := range vizPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
