package recipes

import (
	"math"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	gridMaxSide = 48
	gridSpacing = 0.5
)

// WaveGrid is an n×n field of bars whose heights combine a travelling
// wave with the band nearest to each bar's distance from the centre.
type WaveGrid struct{}

func (WaveGrid) Name() string { return "waveGrid" }
func (WaveGrid) Description() string {
	return "a grid of bars rippling with radial spectrum waves"
}

type gridBase struct {
	Row, Col int
	Pos      scene.Vec3
	Dist     float64
}

type gridInstance struct {
	b    *scene.Batch
	objs vizcore.Objects[gridBase, struct{}]
	side int
	maxD float64
}

func (WaveGrid) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	side := vizcore.ScaledCount(12, p.Complexity, 2, gridMaxSide)
	inst := &gridInstance{b: b, side: side}

	tmpl, err := b.Template(look(hsv(0.6, 0.8, 0.8), 1, 0))
	if err != nil {
		return nil, err
	}

	half := float64(side-1) / 2
	for r := 0; r < side; r++ {
		for c := 0; c < side; c++ {
			pos := scene.V((float64(c)-half)*gridSpacing, 0, (float64(r)-half)*gridSpacing)
			h, err := b.AddShaded(scene.Primitive{Kind: scene.Box, Size: scene.V(gridSpacing*0.8, 1, gridSpacing*0.8)}, tmpl)
			if err != nil {
				return nil, err
			}
			d := math.Hypot(pos.X, pos.Z)
			inst.maxD = math.Max(inst.maxD, d)
			inst.objs.Add(h, vizcore.RoleBar, gridBase{Row: r, Col: c, Pos: pos, Dist: d})
		}
	}
	return inst, nil
}

func (g *gridInstance) Len() int { return len(g.objs) }

func (g *gridInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	kick := beatScale(f, p, beatKick)
	maxD := math.Max(g.maxD, 1e-9)

	for i := range g.objs {
		o := &g.objs[i]
		u := o.Base.Dist / maxD
		band := f.Average(u, u+1/float64(g.side))
		wave := 0.5 + 0.5*math.Sin(o.Base.Dist*2-elapsed*3)
		height := 0.1 + (wave*0.5+band*p.Intensity*3)*kick

		g.b.SetTransform(o.Handle, scene.Transform{
			Position: o.Base.Pos.Add(scene.V(0, height/2, 0)),
			Scale:    scene.V(1, height, 1),
		})
		g.b.SetAppearance(o.Handle, look(hsv(0.6-band*0.5, 0.8, 0.3+0.7*band), 1, band*p.Intensity*0.5))
	}
}
