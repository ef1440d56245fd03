package recipes

import (
	"math"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	ringMaxRings    = 32
	ringMaxSegments = 256
	ringSpacing     = 0.8
)

// RingPulse draws concentric closed rings, each wobbling with its band.
type RingPulse struct{}

func (RingPulse) Name() string { return "ringPulse" }
func (RingPulse) Description() string {
	return "concentric rings that ripple outward on the beat"
}

type ringBase struct {
	Index  int
	Radius float64
	Lobes  float64
	Phase  float64
	Hue    float64
}

type ringState struct {
	Pts []scene.Vec3
}

type ringInstance struct {
	b     *scene.Batch
	objs  vizcore.Objects[ringBase, ringState]
	rings int
}

func (RingPulse) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	rings := vizcore.ScaledCount(6, p.Complexity, 1, ringMaxRings)
	segments := vizcore.ScaledCount(48, p.PatternDensity, 8, ringMaxSegments)

	inst := &ringInstance{b: b, rings: rings}
	tmpl, err := b.Template(look(hsv(0.0, 0.8, 1), 0.9, 0.3))
	if err != nil {
		return nil, err
	}

	for i := 0; i < rings; i++ {
		// the last point repeats the first to close the loop
		pts := make([]scene.Vec3, segments+1)
		h, err := b.AddShaded(scene.Primitive{Kind: scene.Line, Points: pts, Segments: segments + 1}, tmpl)
		if err != nil {
			return nil, err
		}
		o := inst.objs.Add(h, vizcore.RoleRing, ringBase{
			Index:  i,
			Radius: 1 + float64(i)*ringSpacing,
			Lobes:  float64(3 + i%5),
			Phase:  phase(),
			Hue:    float64(i) / float64(rings),
		})
		o.State.Pts = pts
	}
	return inst, nil
}

func (rp *ringInstance) Len() int { return len(rp.objs) }

func (rp *ringInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	kick := beatScale(f, p, beatKick)

	for i := range rp.objs {
		o := &rp.objs[i]
		band := f.Band(o.Base.Index, rp.rings)
		wobble := band * p.Intensity * 0.4
		n := len(o.State.Pts) - 1

		for s := 0; s < n; s++ {
			a := 2 * math.Pi * float64(s) / float64(n)
			r := o.Base.Radius * (1 + wobble*math.Sin(a*o.Base.Lobes+elapsed*2+o.Base.Phase))
			o.State.Pts[s] = scene.V(math.Cos(a)*r, 0, math.Sin(a)*r)
		}
		o.State.Pts[n] = o.State.Pts[0]

		rp.b.SetPoints(o.Handle, o.State.Pts)
		rp.b.SetTransform(o.Handle, scene.Transform{
			Position: scene.V(0, math.Sin(elapsed+o.Base.Phase)*band*p.Intensity*0.5, 0),
			Rotation: scene.V(0.3*math.Sin(elapsed*0.2), 0, 0),
			Scale:    scene.One.Scale(kick),
		})
		rp.b.SetAppearance(o.Handle, look(hsv(o.Base.Hue+elapsed*0.02, 0.8, 0.4+0.6*band), 0.9, band*p.Intensity))
	}
}
