package recipes

import (
	"math"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	orbitMaxPlanets = 12
	orbitMaxMoons   = 6
)

// OrbitSystem is a sun with planets and moons. Each body keeps a phase
// accumulator in its State that advances at a band-modulated rate.
type OrbitSystem struct{}

func (OrbitSystem) Name() string { return "orbitSystem" }
func (OrbitSystem) Description() string {
	return "planets and moons whose orbital speed follows their band"
}

type orbitBase struct {
	Index  int
	Parent int
	Radius float64
	Speed  float64
	Tilt   float64
	Size   float64
	Hue    float64
}

type orbitState struct {
	Phase float64
	Pos   scene.Vec3
}

type orbitInstance struct {
	b      *scene.Batch
	objs   vizcore.Objects[orbitBase, orbitState]
	bodies int
	clk    clock
}

func (OrbitSystem) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	planets := vizcore.ScaledCount(5, p.Complexity, 1, orbitMaxPlanets)
	moons := vizcore.ScaledCount(2, p.PatternDensity, 0, orbitMaxMoons)

	inst := &orbitInstance{b: b, bodies: planets * (1 + moons)}

	sun, err := b.Add(scene.Primitive{Kind: scene.Sphere, Size: scene.V(2, 2, 2), Segments: 32})
	if err != nil {
		return nil, err
	}
	inst.objs.Add(sun, vizcore.RoleCore, orbitBase{Parent: -1, Hue: 0.1})

	tmpl, err := b.Template(look(hsv(0.5, 0.5, 0.9), 1, 0))
	if err != nil {
		return nil, err
	}

	for i := 0; i < planets; i++ {
		radius := 4 + float64(i)*2.5
		h, err := b.AddShaded(scene.Primitive{Kind: scene.Sphere, Size: scene.V(0.6, 0.6, 0.6), Segments: 16}, tmpl)
		if err != nil {
			return nil, err
		}
		parent := len(inst.objs)
		o := inst.objs.Add(h, vizcore.RolePlanet, orbitBase{
			Index:  i,
			Parent: 0,
			Radius: radius,
			// Kepler-ish: outer planets are slower
			Speed: 1.6 / math.Sqrt(radius) * speed(0.9, 1.1),
			Tilt:  (float64(i%3) - 1) * 0.15,
			Size:  0.5 + float64((i*7)%5)*0.15,
			Hue:   float64(i) / float64(planets),
		})
		o.State.Phase = phase()

		for m := 0; m < moons; m++ {
			h, err := b.AddShaded(scene.Primitive{Kind: scene.Sphere, Size: scene.V(0.2, 0.2, 0.2), Segments: 8}, tmpl)
			if err != nil {
				return nil, err
			}
			mo := inst.objs.Add(h, vizcore.RoleMoon, orbitBase{
				Index:  planets + i*moons + m,
				Parent: parent,
				Radius: 0.9 + float64(m)*0.45,
				Speed:  2.5 * speed(0.8, 1.4),
				Tilt:   float64(m) * 0.4,
				Size:   0.25,
				Hue:    float64(i)/float64(planets) + 0.05,
			})
			mo.State.Phase = phase()
		}
	}
	return inst, nil
}

func (o *orbitInstance) Len() int         { return len(o.objs) }
func (o *orbitInstance) Persistent() bool { return true }

func (o *orbitInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	dt := o.clk.step(elapsed)
	bass, _, _ := f.BassMidTreble()
	kick := beatScale(f, p, beatKick*0.7)

	// parents precede their moons in the arena
	for i := range o.objs {
		obj := &o.objs[i]
		base := obj.Base

		if obj.Role == vizcore.RoleCore {
			scale := (1 + bass*p.Intensity*0.5) * kick
			o.b.SetTransform(obj.Handle, scene.Transform{Rotation: scene.V(0, elapsed*0.2, 0), Scale: scene.One.Scale(scale)})
			o.b.SetAppearance(obj.Handle, look(hsv(0.1, 0.9, 1), 1, 0.8+bass*p.Intensity))
			continue
		}

		band := f.Band(base.Index, o.bodies)
		obj.State.Phase += base.Speed * (1 + band*p.Intensity) * dt

		c, s := math.Cos(obj.State.Phase), math.Sin(obj.State.Phase)
		local := scene.V(c*base.Radius, s*base.Radius*math.Sin(base.Tilt), s*base.Radius*math.Cos(base.Tilt))
		if base.Parent > 0 {
			local = local.Add(o.objs[base.Parent].State.Pos)
		}
		obj.State.Pos = local

		scale := base.Size * (1 + band*p.Intensity*0.5) * kick
		o.b.SetTransform(obj.Handle, scene.Transform{
			Position: local,
			Rotation: scene.V(0, obj.State.Phase*2, 0),
			Scale:    scene.One.Scale(scale),
		})
		o.b.SetAppearance(obj.Handle, look(hsv(base.Hue, 0.6, 0.5+0.5*band), 1, band*p.Intensity*0.5))
	}
}
