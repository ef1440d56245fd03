package recipes

import (
	"math"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	latticeMaxRadius     = 6
	latticeSpacing       = 2.5
	latticeMaxConnectors = 1200
)

// CrystalLattice fills an octahedron of integer grid points (Manhattan
// distance <= R) and links axis neighbours with connector lines. Each
// Manhattan shell listens to its own slice of the spectrum.
type CrystalLattice struct{}

func (CrystalLattice) Name() string { return "crystalLattice" }
func (CrystalLattice) Description() string {
	return "octahedral crystal whose shells breathe with bass to treble"
}

type latticeBase struct {
	Cell  [3]int
	Pos   scene.Vec3
	Shell int
	From  int
	To    int
	Phase float64
}

type latticeState struct {
	Breathe float64
	Pts     []scene.Vec3
}

type latticeInstance struct {
	b      *scene.Batch
	objs   vizcore.Objects[latticeBase, latticeState]
	shells int
}

func (CrystalLattice) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	r := vizcore.ScaledCount(2, p.Complexity, 1, latticeMaxRadius)
	maxLinks := vizcore.ScaledCount(600, p.PatternDensity, 0, latticeMaxConnectors)

	inst := &latticeInstance{b: b, shells: r + 1}

	tmpl, err := b.Template(look(hsv(0.55, 0.6, 0.9), 0.85, 0.3))
	if err != nil {
		return nil, err
	}

	index := make(map[[3]int]int)
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			for z := -r; z <= r; z++ {
				shell := absInt(x) + absInt(y) + absInt(z)
				if shell > r {
					continue
				}
				h, err := b.AddShaded(scene.Primitive{Kind: scene.Box, Size: scene.V(0.5, 0.5, 0.5)}, tmpl)
				if err != nil {
					return nil, err
				}
				cell := [3]int{x, y, z}
				index[cell] = len(inst.objs)
				inst.objs.Add(h, vizcore.RoleNode, latticeBase{
					Cell:  cell,
					Pos:   scene.V(float64(x), float64(y), float64(z)).Scale(latticeSpacing),
					Shell: shell,
					Phase: phase(),
				})
			}
		}
	}

	nodes := len(inst.objs)
	links := 0
	for i := 0; i < nodes && links < maxLinks; i++ {
		c := inst.objs[i].Base.Cell
		for _, d := range [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			if links >= maxLinks {
				break
			}
			j, ok := index[[3]int{c[0] + d[0], c[1] + d[1], c[2] + d[2]}]
			if !ok {
				continue
			}
			pts := []scene.Vec3{inst.objs[i].Base.Pos, inst.objs[j].Base.Pos}
			h, err := b.Add(scene.Primitive{Kind: scene.Line, Points: pts})
			if err != nil {
				return nil, err
			}
			o := inst.objs.Add(h, vizcore.RoleConnector, latticeBase{From: i, To: j, Shell: inst.objs[i].Base.Shell})
			o.State.Pts = make([]scene.Vec3, 2)
			links++
		}
	}
	return inst, nil
}

func (l *latticeInstance) Len() int { return len(l.objs) }

func (l *latticeInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	kick := beatScale(f, p, beatKick*1.1)
	spin := elapsed * 0.15

	// nodes come first in the arena, so connectors read this frame's values
	for i := range l.objs {
		o := &l.objs[i]
		switch o.Role {
		case vizcore.RoleNode:
			band := f.Band(o.Base.Shell, l.shells)
			o.State.Breathe = 1 + 0.08*math.Sin(elapsed*1.5+o.Base.Phase) + band*p.Intensity*0.25

			scale := (0.35 + band*p.Intensity*0.6) * kick
			l.b.SetTransform(o.Handle, scene.Transform{
				Position: rotY(o.Base.Pos.Scale(o.State.Breathe), spin),
				Rotation: scene.V(spin, spin*0.7, 0),
				Scale:    scene.One.Scale(scale),
			})
			l.b.SetAppearance(o.Handle, look(hsv(0.55+float64(o.Base.Shell)*0.07, 0.7, 0.4+0.6*band), 0.85, band*p.Intensity))

		case vizcore.RoleConnector:
			a, c := &l.objs[o.Base.From], &l.objs[o.Base.To]
			o.State.Pts[0] = rotY(a.Base.Pos.Scale(a.State.Breathe), spin)
			o.State.Pts[1] = rotY(c.Base.Pos.Scale(c.State.Breathe), spin)
			l.b.SetPoints(o.Handle, o.State.Pts)
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
