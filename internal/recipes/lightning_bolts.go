package recipes

import (
	"math"
	"math/rand"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	boltMaxBolts    = 64
	boltMaxSegments = 32
	boltLimit       = 30.0
	boltLength      = 4.0
)

// LightningBolts fires jagged bolts outward from the origin. Each bolt's
// travel distance is persistent and wraps back to zero past the bound.
type LightningBolts struct{}

func (LightningBolts) Name() string { return "lightningBolts" }
func (LightningBolts) Description() string {
	return "jagged bolts shooting outward, faster on loud bands"
}

type boltBase struct {
	Index int
	Dir   scene.Vec3
	Perp  scene.Vec3
	Jag   []float64
	Speed float64
}

type boltState struct {
	Travel float64
	Pts    []scene.Vec3
}

type boltInstance struct {
	b     *scene.Batch
	objs  vizcore.Objects[boltBase, boltState]
	bolts int
	clk   clock
}

func (LightningBolts) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	bolts := vizcore.ScaledCount(8, p.Complexity, 1, boltMaxBolts)
	segments := vizcore.ScaledCount(8, p.PatternDensity, 2, boltMaxSegments)

	inst := &boltInstance{b: b, bolts: bolts}
	tmpl, err := b.Template(look(hsv(0.6, 0.3, 1), 1, 1))
	if err != nil {
		return nil, err
	}

	for i := 0; i < bolts; i++ {
		dir := sphereDir(i, bolts)
		jag := make([]float64, segments)
		for s := 1; s < segments-1; s++ {
			jag[s] = rand.Float64()*2 - 1
		}
		pts := make([]scene.Vec3, segments)
		h, err := b.AddShaded(scene.Primitive{Kind: scene.Line, Points: pts, Segments: segments}, tmpl)
		if err != nil {
			return nil, err
		}
		o := inst.objs.Add(h, vizcore.RoleBolt, boltBase{
			Index: i,
			Dir:   dir,
			Perp:  perpendicular(dir),
			Jag:   jag,
			Speed: speed(6, 12),
		})
		o.State.Travel = rand.Float64() * boltLimit * 0.5
		o.State.Pts = pts
	}
	return inst, nil
}

func (lb *boltInstance) Len() int                      { return len(lb.objs) }
func (lb *boltInstance) Persistent() bool              { return true }
func (lb *boltInstance) Bound() (limit, reset float64) { return boltLimit, 0 }

func (lb *boltInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	dt := lb.clk.step(elapsed)
	kick := beatScale(f, p, beatKick*2)

	for i := range lb.objs {
		o := &lb.objs[i]
		band := f.Band(o.Base.Index, lb.bolts)

		o.State.Travel += o.Base.Speed * (1 + band*p.Intensity*2) * dt
		if o.State.Travel > boltLimit || math.IsNaN(o.State.Travel) {
			o.State.Travel = 0
		}

		amp := 0.3 * (1 + band*p.Intensity) * kick
		n := len(o.State.Pts)
		for s := range o.State.Pts {
			u := float64(s) / float64(n-1)
			o.State.Pts[s] = o.Base.Dir.Scale(-u * boltLength).Add(o.Base.Perp.Scale(o.Base.Jag[s] * amp))
		}

		fade := 1 - o.State.Travel/boltLimit
		lb.b.SetTransform(o.Handle, scene.Transform{Position: o.Base.Dir.Scale(o.State.Travel), Scale: scene.One})
		lb.b.SetPoints(o.Handle, o.State.Pts)
		lb.b.SetAppearance(o.Handle, look(hsv(0.6-band*0.1, 0.3, 1), fade, (0.5+band*p.Intensity)*kick))
	}
}
