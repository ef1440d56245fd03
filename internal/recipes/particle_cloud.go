package recipes

import (
	"math/rand"

	"github.com/san-kum/sonoform/internal/integrators"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	cloudMaxParticles = 2000
	cloudLimit        = 25.0
	cloudHome         = 0.5
	cloudDrag         = 0.4
)

// ParticleCloud is a swirling ball of particles integrated with velocity
// Verlet. Particles that leave the volume respawn near the centre.
type ParticleCloud struct{}

func (ParticleCloud) Name() string { return "particleCloud" }
func (ParticleCloud) Description() string {
	return "swirling particle cloud pushed outward by the spectrum"
}

type cloudBase struct {
	Index int
	Home  scene.Vec3
	Hue   float64
}

type cloudState struct {
	P integrators.Particle
}

type cloudInstance struct {
	b     *scene.Batch
	objs  vizcore.Objects[cloudBase, cloudState]
	n     int
	step  integrators.Integrator
	clk   clock
	push  float64
	swirl float64
}

func (ParticleCloud) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	n := vizcore.CapCount(p.ParticleCount, 0, cloudMaxParticles)
	inst := &cloudInstance{b: b, n: n, step: integrators.NewVerlet()}

	core, err := b.Add(scene.Primitive{Kind: scene.Sphere, Size: scene.V(1, 1, 1), Segments: 16})
	if err != nil {
		return nil, err
	}
	inst.objs.Add(core, vizcore.RoleCore, cloudBase{})

	tmpl, err := b.Template(look(hsv(0.55, 0.6, 1), 0.9, 0.6))
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		home := randomInBall(cloudHome)
		h, err := b.AddShaded(scene.Primitive{Kind: scene.Sphere, Size: scene.V(0.08, 0.08, 0.08), Segments: 6}, tmpl)
		if err != nil {
			return nil, err
		}
		o := inst.objs.Add(h, vizcore.RoleParticle, cloudBase{Index: i, Home: home, Hue: 0.5 + 0.2*float64(i)/float64(max(n, 1))})
		o.State.P = integrators.Particle{Pos: home, Vel: tangent(home).Scale(speed(1, 3))}
	}
	return inst, nil
}

func (c *cloudInstance) Len() int                      { return len(c.objs) }
func (c *cloudInstance) Persistent() bool              { return true }
func (c *cloudInstance) Bound() (limit, reset float64) { return cloudLimit, cloudHome }

// Accel is the cloud's force field: a swirl about the Y axis, a weak
// spring toward the origin, drag, and an outward push set from the frame.
func (c *cloudInstance) Accel(p integrators.Particle, _ float64) scene.Vec3 {
	r := p.Pos.Length()
	out := scene.Vec3{}
	if r > 1e-9 {
		out = p.Pos.Scale(c.push / r)
	}
	swirl := scene.V(-p.Pos.Z, 0, p.Pos.X).Scale(c.swirl)
	return out.Add(swirl).Sub(p.Pos.Scale(0.3)).Sub(p.Vel.Scale(cloudDrag))
}

func (c *cloudInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	dt := c.clk.step(elapsed)
	bass, mid, treble := f.BassMidTreble()
	kick := beatScale(f, p, beatKick)

	c.push = bass * p.Intensity * 6
	c.swirl = 0.5 + mid*p.Intensity

	for i := range c.objs {
		o := &c.objs[i]
		if o.Role == vizcore.RoleCore {
			scale := (1 + bass*p.Intensity) * kick
			c.b.SetTransform(o.Handle, scene.Transform{Scale: scene.One.Scale(scale)})
			c.b.SetAppearance(o.Handle, look(hsv(0.55, 0.5, 1), 1, 0.5+bass*p.Intensity))
			continue
		}

		if dt > 0 {
			o.State.P = c.step.Step(c, o.State.P, elapsed, dt)
		}
		if !o.State.P.Pos.IsFinite() || !o.State.P.Vel.IsFinite() || o.State.P.Pos.Length() > cloudLimit {
			o.State.P = integrators.Particle{Pos: o.Base.Home, Vel: tangent(o.Base.Home)}
		}

		band := f.Band(o.Base.Index, c.n)
		scale := (1 + band*p.Intensity + treble*0.5) * kick
		c.b.SetTransform(o.Handle, scene.Transform{Position: o.State.P.Pos, Scale: scene.One.Scale(scale)})
		c.b.SetAppearance(o.Handle, look(hsv(o.Base.Hue+band*0.2, 0.6, 0.4+0.6*band), 0.9, band*p.Intensity))
	}
}

func randomInBall(r float64) scene.Vec3 {
	for {
		v := scene.V(rand.Float64()*2-1, rand.Float64()*2-1, rand.Float64()*2-1)
		if v.Length() <= 1 {
			return v.Scale(r)
		}
	}
}

// tangent is the unit swirl direction at v, or +X on the axis.
func tangent(v scene.Vec3) scene.Vec3 {
	t := scene.V(-v.Z, 0, v.X)
	if t.Length() < 1e-9 {
		return scene.V(1, 0, 0)
	}
	return t.Normalize()
}

var _ integrators.Field = (*cloudInstance)(nil)
