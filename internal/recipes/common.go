package recipes

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	// maxStep caps the simulated time between two frames so a stalled
	// render loop does not launch every particle out of the volume.
	maxStep = 0.1

	beatKick = 0.45
)

// All returns one canonical module per visualizer id.
func All() []vizcore.Module {
	return []vizcore.Module{
		SpiralArms{},
		CrystalLattice{},
		FractalTree{},
		FieldLines{},
		OrbitSystem{},
		ParticleCloud{},
		LightningBolts{},
		HelixStrands{},
		RingPulse{},
		WaveGrid{},
		SpringBars{},
		Starfield{},
	}
}

// hsv maps a hue in turns (wrapped into [0,1)) to an RGB colour.
func hsv(h, s, v float64) scene.RGB {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	c := colorful.Hsv(h*360, clamp01(s), clamp01(v)).Clamped()
	return scene.RGB{R: c.R, G: c.G, B: c.B}
}

func look(c scene.RGB, opacity, emissive float64) scene.Appearance {
	return scene.Appearance{Color: c, Opacity: clamp01(opacity), Emissive: math.Max(0, emissive)}
}

// beatScale is the one-frame multiplier applied on top of the steady state.
func beatScale(f vizcore.AudioFrame, p vizcore.Params, kick float64) float64 {
	if !f.IsBeat() {
		return 1
	}
	return 1 + kick*math.Min(p.Intensity, 2)
}

func phase() float64 { return rand.Float64() * 2 * math.Pi }

// speed returns a random multiplier in [lo, hi).
func speed(lo, hi float64) float64 { return lo + rand.Float64()*(hi-lo) }

func rotY(v scene.Vec3, a float64) scene.Vec3 {
	c, s := math.Cos(a), math.Sin(a)
	return scene.Vec3{X: v.X*c + v.Z*s, Y: v.Y, Z: -v.X*s + v.Z*c}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clock turns absolute elapsed time into a bounded per-frame step for
// recipes with persistent simulation state.
type clock struct {
	last    float64
	started bool
}

func (c *clock) step(elapsed float64) float64 {
	if !c.started || math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		c.started = !math.IsNaN(elapsed) && !math.IsInf(elapsed, 0)
		c.last = elapsed
		return 0
	}
	dt := elapsed - c.last
	c.last = elapsed
	if dt < 0 {
		return 0
	}
	return math.Min(dt, maxStep)
}

// perpendicular returns a unit vector orthogonal to d.
func perpendicular(d scene.Vec3) scene.Vec3 {
	up := scene.V(0, 1, 0)
	if math.Abs(d.Dot(up)) > 0.9 {
		up = scene.V(1, 0, 0)
	}
	return d.Cross(up).Normalize()
}

// sphereDir returns the i-th of n directions spread evenly over the unit
// sphere (golden-angle spiral).
func sphereDir(i, n int) scene.Vec3 {
	if n <= 1 {
		return scene.V(0, 1, 0)
	}
	y := 1 - 2*float64(i)/float64(n-1)
	r := math.Sqrt(math.Max(0, 1-y*y))
	a := float64(i) * math.Pi * (3 - math.Sqrt(5))
	return scene.V(math.Cos(a)*r, y, math.Sin(a)*r)
}
