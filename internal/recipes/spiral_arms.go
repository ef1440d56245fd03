package recipes

import (
	"math"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	spiralMaxArms   = 16
	spiralMaxPoints = 300
	spiralTurns     = 1.5
	spiralInner     = 2.0
	spiralOuter     = 18.0
)

// SpiralArms lays points along logarithmic-looking arms around a core:
// radius grows with t and angle = t*k + armOffset.
type SpiralArms struct{}

func (SpiralArms) Name() string { return "spiralArms" }
func (SpiralArms) Description() string {
	return "galaxy arms whose points swell with their spectrum band"
}

type spiralBase struct {
	Arm    int
	Index  int
	T      float64
	Radius float64
	Angle  float64
	Height float64
	Hue    float64
	Phase  float64
	Speed  float64
}

type spiralState struct {
	Band float64
}

type spiralInstance struct {
	b      *scene.Batch
	objs   vizcore.Objects[spiralBase, spiralState]
	points int
}

func (SpiralArms) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	arms := vizcore.ScaledCount(4, p.Complexity, 1, spiralMaxArms)
	points := vizcore.ScaledCount(60, p.PatternDensity, 4, spiralMaxPoints)

	inst := &spiralInstance{b: b, points: points}

	core, err := b.Add(scene.Primitive{Kind: scene.Sphere, Size: scene.V(1.2, 1.2, 1.2), Segments: 24})
	if err != nil {
		return nil, err
	}
	inst.objs.Add(core, vizcore.RoleCore, spiralBase{Phase: phase(), Speed: 1})

	tmpl, err := b.Template(look(hsv(0.6, 0.8, 0.9), 0.9, 0.2))
	if err != nil {
		return nil, err
	}

	for a := 0; a < arms; a++ {
		offset := float64(a) * 2 * math.Pi / float64(arms)
		for j := 0; j < points; j++ {
			t := float64(j) / float64(points-1)
			h, err := b.AddShaded(scene.Primitive{Kind: scene.Sphere, Size: scene.V(0.25, 0.25, 0.25), Segments: 8}, tmpl)
			if err != nil {
				return nil, err
			}
			inst.objs.Add(h, vizcore.RoleArm, spiralBase{
				Arm:    a,
				Index:  j,
				T:      t,
				Radius: spiralInner + t*(spiralOuter-spiralInner),
				Angle:  t*spiralTurns*2*math.Pi + offset,
				Height: math.Sin(t*2*math.Pi) * 0.5,
				Hue:    float64(a)/float64(arms) + t*0.2,
				Phase:  phase(),
				Speed:  speed(0.6, 1.4),
			})
		}
	}
	return inst, nil
}

func (s *spiralInstance) Len() int { return len(s.objs) }

func (s *spiralInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	bass, _, _ := f.BassMidTreble()
	kick := beatScale(f, p, beatKick)
	spin := elapsed * 0.1

	for i := range s.objs {
		o := &s.objs[i]
		base := o.Base

		switch o.Role {
		case vizcore.RoleCore:
			scale := (1 + bass*p.Intensity*0.8) * kick
			s.b.SetTransform(o.Handle, scene.Transform{
				Rotation: scene.V(0, elapsed*0.5, 0),
				Scale:    scene.One.Scale(scale),
			})
			s.b.SetAppearance(o.Handle, look(hsv(0.08, 0.9, 1), 1, 0.5+bass*p.Intensity))

		case vizcore.RoleArm:
			o.State.Band = f.Band(base.Index, s.points)
			band := o.State.Band * p.Intensity

			// inner points orbit faster than outer ones
			angle := base.Angle + spin*(1.5-base.T)
			r := base.Radius * (1 + 0.15*band)
			y := base.Height + math.Sin(elapsed*base.Speed+base.Phase)*0.3 + band*1.5

			scale := (0.3 + band*0.8) * kick
			s.b.SetTransform(o.Handle, scene.Transform{
				Position: scene.V(math.Cos(angle)*r, y, math.Sin(angle)*r),
				Scale:    scene.One.Scale(scale),
			})
			s.b.SetAppearance(o.Handle, look(hsv(base.Hue+elapsed*0.02, 0.8, 0.5+0.5*o.State.Band), 0.9, band))
		}
	}
}
