package recipes

import (
	"math"
	"math/rand"

	"github.com/san-kum/sonoform/internal/integrators"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	starMaxStars = 3000
	starNear     = 5.0
	starFar      = -60.0
	starSpread   = 20.0
	starBaseWarp = 8.0
)

// starLimit is the largest distance from the origin inside the star volume.
var starLimit = math.Sqrt(2*starSpread*starSpread + starFar*starFar)

// Starfield flies the camera through a box of stars. Stars travel toward
// +Z and wrap to the far plane once they pass the near plane.
type Starfield struct{}

func (Starfield) Name() string { return "starfield" }
func (Starfield) Description() string {
	return "a warp-speed starfield that accelerates with the bass"
}

type starBase struct {
	Index int
	X, Y  float64
	Hue   float64
}

type starState struct {
	P integrators.Particle
}

type starInstance struct {
	b     *scene.Batch
	objs  vizcore.Objects[starBase, starState]
	n     int
	step  integrators.Integrator
	clk   clock
	still integrators.Field
}

func (Starfield) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	n := vizcore.CapCount(p.ParticleCount, 0, starMaxStars)
	inst := &starInstance{
		b:    b,
		n:    n,
		step: integrators.NewEuler(),
		still: integrators.FieldFunc(func(integrators.Particle, float64) scene.Vec3 {
			return scene.Vec3{}
		}),
	}

	tmpl, err := b.Template(look(scene.RGB{R: 1, G: 1, B: 1}, 1, 1))
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		x := (rand.Float64()*2 - 1) * starSpread
		y := (rand.Float64()*2 - 1) * starSpread
		h, err := b.AddShaded(scene.Primitive{Kind: scene.Sphere, Size: scene.V(0.05, 0.05, 0.05), Segments: 4}, tmpl)
		if err != nil {
			return nil, err
		}
		o := inst.objs.Add(h, vizcore.RoleStar, starBase{Index: i, X: x, Y: y, Hue: speed(0.55, 0.7)})
		o.State.P.Pos = scene.V(x, y, starFar+rand.Float64()*(starNear-starFar))
	}
	return inst, nil
}

func (sf *starInstance) Len() int                      { return len(sf.objs) }
func (sf *starInstance) Persistent() bool              { return true }
func (sf *starInstance) Bound() (limit, reset float64) { return starLimit, 0 }

func (sf *starInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	dt := sf.clk.step(elapsed)
	bass, _, _ := f.BassMidTreble()
	kick := beatScale(f, p, beatKick*2)
	warp := starBaseWarp * (1 + bass*p.Intensity*3)

	for i := range sf.objs {
		o := &sf.objs[i]
		o.State.P.Vel = scene.V(0, 0, warp)
		if dt > 0 {
			o.State.P = sf.step.Step(sf.still, o.State.P, elapsed, dt)
		}
		o.State.P.Pos.X, o.State.P.Pos.Y = o.Base.X, o.Base.Y
		o.State.P.Pos.Z = wrapDepth(o.State.P.Pos.Z)

		band := f.Band(o.Base.Index, sf.n)
		near := (o.State.P.Pos.Z - starFar) / (starNear - starFar)
		stretch := 1 + warp*0.1*kick

		sf.b.SetTransform(o.Handle, scene.Transform{
			Position: o.State.P.Pos,
			Scale:    scene.V(1, 1, stretch),
		})
		sf.b.SetAppearance(o.Handle, look(hsv(o.Base.Hue, 0.3*band, 0.3+0.7*near), clamp01(near+0.2), band*p.Intensity))
	}
}

// wrapDepth maps z into (starFar, starNear].
func wrapDepth(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return starFar / 2
	}
	depth := starNear - starFar
	if z > starNear || z <= starFar {
		z = starFar + math.Mod(z-starFar, depth)
		if z <= starFar {
			z += depth
		}
	}
	return z
}
