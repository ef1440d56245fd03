package recipes

import (
	"math"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	helixMaxPairs  = 6
	helixMaxPoints = 200
	helixRadius    = 2.0
	helixPitch     = 0.25
	helixRungEvery = 4
)

// HelixStrands renders one or more double helices with rungs between the
// two strands of each pair.
type HelixStrands struct{}

func (HelixStrands) Name() string { return "helixStrands" }
func (HelixStrands) Description() string {
	return "double helices whose radius breathes with the spectrum"
}

type helixBase struct {
	Index  int
	Pair   int
	Strand int
	T      float64
	Offset float64
	Hue    float64
	// connectors reference the arena indices of their two ends
	From, To int
}

type helixState struct {
	Pos scene.Vec3
	Pts []scene.Vec3
}

type helixInstance struct {
	b      *scene.Batch
	objs   vizcore.Objects[helixBase, helixState]
	points int
	total  int
}

func (HelixStrands) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	pairs := vizcore.ScaledCount(1, p.Complexity, 1, helixMaxPairs)
	points := vizcore.ScaledCount(40, p.PatternDensity, 4, helixMaxPoints)

	inst := &helixInstance{b: b, points: points, total: pairs * points}
	tmpl, err := b.Template(look(hsv(0.35, 0.7, 1), 1, 0.2))
	if err != nil {
		return nil, err
	}
	rung, err := b.Template(look(hsv(0.9, 0.3, 1), 0.6, 0))
	if err != nil {
		return nil, err
	}

	for pair := 0; pair < pairs; pair++ {
		offset := float64(pair) * 2 * math.Pi / float64(pairs)
		start := len(inst.objs)
		for strand := 0; strand < 2; strand++ {
			for i := 0; i < points; i++ {
				h, err := b.AddShaded(scene.Primitive{Kind: scene.Sphere, Size: scene.V(0.15, 0.15, 0.15), Segments: 8}, tmpl)
				if err != nil {
					return nil, err
				}
				inst.objs.Add(h, vizcore.RoleStrand, helixBase{
					Index:  pair*points + i,
					Pair:   pair,
					Strand: strand,
					T:      float64(i),
					Offset: offset + float64(strand)*math.Pi,
					Hue:    0.35 + 0.3*float64(strand),
				})
			}
		}
		for i := 0; i < points; i += helixRungEvery {
			h, err := b.AddShaded(scene.Primitive{Kind: scene.Line, Points: make([]scene.Vec3, 2), Segments: 2}, rung)
			if err != nil {
				return nil, err
			}
			o := inst.objs.Add(h, vizcore.RoleConnector, helixBase{
				Index: pair*points + i,
				Pair:  pair,
				From:  start + i,
				To:    start + points + i,
			})
			o.State.Pts = make([]scene.Vec3, 2)
		}
	}
	return inst, nil
}

func (hx *helixInstance) Len() int { return len(hx.objs) }

func (hx *helixInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	kick := beatScale(f, p, beatKick)
	height := float64(hx.points) * helixPitch

	// strand points precede their pair's rungs
	for i := range hx.objs {
		o := &hx.objs[i]
		band := f.Band(o.Base.Index, hx.total)

		switch o.Role {
		case vizcore.RoleStrand:
			r := helixRadius * (1 + band*p.Intensity*0.5)
			a := o.Base.T*0.35 + o.Base.Offset + elapsed*0.8
			pos := scene.V(math.Cos(a)*r, o.Base.T*helixPitch-height/2, math.Sin(a)*r)
			o.State.Pos = pos

			hx.b.SetTransform(o.Handle, scene.Transform{Position: pos, Scale: scene.One.Scale((1 + band*p.Intensity) * kick)})
			hx.b.SetAppearance(o.Handle, look(hsv(o.Base.Hue+band*0.15, 0.7, 0.5+0.5*band), 1, band*p.Intensity*0.6))

		case vizcore.RoleConnector:
			o.State.Pts[0] = hx.objs[o.Base.From].State.Pos
			o.State.Pts[1] = hx.objs[o.Base.To].State.Pos
			hx.b.SetPoints(o.Handle, o.State.Pts)
			hx.b.SetAppearance(o.Handle, look(hsv(0.9, 0.3, 0.6+0.4*band), 0.3+0.5*band, 0))
		}
	}
}
