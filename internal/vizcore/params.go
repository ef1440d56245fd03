package vizcore

import (
	"fmt"
	"math"
)

const (
	// MaxFactor bounds Complexity and PatternDensity so a runaway control
	// cannot multiply object counts past every recipe cap.
	MaxFactor = 8.0

	// MaxIntensity bounds the audio-reactive amplitude.
	MaxIntensity = 10.0

	// MaxParticles is the global particle ceiling; recipes apply tighter caps.
	MaxParticles = 5000
)

// Params controls recipe density and reactivity. Zero values are valid and
// produce the sparsest scene a recipe allows.
type Params struct {
	Complexity     float64 `yaml:"complexity" json:"complexity"`
	PatternDensity float64 `yaml:"pattern_density" json:"pattern_density"`
	ParticleCount  int     `yaml:"particle_count" json:"particle_count"`
	Intensity      float64 `yaml:"intensity" json:"intensity"`
}

func DefaultParams() Params {
	return Params{
		Complexity:     1.0,
		PatternDensity: 1.0,
		ParticleCount:  500,
		Intensity:      1.0,
	}
}

// Sanitize clamps every field into its valid range. NaN and negative values
// become 0, infinities become the field maximum. The returned error lists the
// offending fields and wraps ErrInvalidParameter; the clamped Params are
// always usable.
func (p Params) Sanitize() (Params, error) {
	var bad []string
	p.Complexity = clampFactor(p.Complexity, MaxFactor, "complexity", &bad)
	p.PatternDensity = clampFactor(p.PatternDensity, MaxFactor, "pattern_density", &bad)
	p.Intensity = clampFactor(p.Intensity, MaxIntensity, "intensity", &bad)
	if p.ParticleCount < 0 {
		bad = append(bad, "particle_count")
		p.ParticleCount = 0
	}
	if p.ParticleCount > MaxParticles {
		p.ParticleCount = MaxParticles
	}
	if len(bad) > 0 {
		return p, fmt.Errorf("%w: %v", ErrInvalidParameter, bad)
	}
	return p, nil
}

func clampFactor(v, hi float64, name string, bad *[]string) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		*bad = append(*bad, name)
		return 0
	case math.IsInf(v, 1):
		*bad = append(*bad, name)
		return hi
	case v > hi:
		return hi
	}
	return v
}

// ScaledCount returns floor(base*factor) clamped to [lo, hi].
func ScaledCount(base int, factor float64, lo, hi int) int {
	if math.IsNaN(factor) || factor < 0 {
		factor = 0
	}
	n := math.Floor(float64(base) * factor)
	if n < float64(lo) {
		return lo
	}
	if n > float64(hi) {
		return hi
	}
	return int(n)
}

// CapCount returns min(requested, hi) clamped at lo.
func CapCount(requested, lo, hi int) int {
	if requested < lo {
		return lo
	}
	if requested > hi {
		return hi
	}
	return requested
}

// ParamPatch carries a partial parameter update. Nil fields are unchanged.
type ParamPatch struct {
	Complexity     *float64
	PatternDensity *float64
	ParticleCount  *int
	Intensity      *float64
}

// Apply returns p with the patch applied.
func (pp ParamPatch) Apply(p Params) Params {
	if pp.Complexity != nil {
		p.Complexity = *pp.Complexity
	}
	if pp.PatternDensity != nil {
		p.PatternDensity = *pp.PatternDensity
	}
	if pp.ParticleCount != nil {
		p.ParticleCount = *pp.ParticleCount
	}
	if pp.Intensity != nil {
		p.Intensity = *pp.Intensity
	}
	return p
}

// Live reports whether every field set in the patch can be applied without
// rebuilding the scene. Only Intensity is live-adjustable.
func (pp ParamPatch) Live() bool {
	return pp.Complexity == nil && pp.PatternDensity == nil && pp.ParticleCount == nil
}

func (pp ParamPatch) Empty() bool {
	return pp.Live() && pp.Intensity == nil
}
