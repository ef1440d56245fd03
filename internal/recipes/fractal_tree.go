package recipes

import (
	"math"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	treeMaxDepth    = 8
	treeMaxBranches = 1200
	treeMaxLeaves   = 2400
	treeTrunk       = 6.0
	treeShrink      = 0.68
	treeSpread      = 0.55
)

// FractalTree grows branches from an explicit work stack bounded by a max
// depth derived from Complexity; PatternDensity sets the branching factor.
type FractalTree struct{}

func (FractalTree) Name() string { return "fractalTree" }
func (FractalTree) Description() string {
	return "recursive tree swaying with mids, leaves flashing on treble"
}

type treeBase struct {
	Start  scene.Vec3
	Dir    scene.Vec3
	Length float64
	Depth  int
	Phase  float64
	Speed  float64
}

type treeState struct {
	Sway float64
}

type treeInstance struct {
	b        *scene.Batch
	objs     vizcore.Objects[treeBase, treeState]
	maxDepth int
}

type treeWork struct {
	depth  int
	pos    scene.Vec3
	dir    scene.Vec3
	length float64
}

func (FractalTree) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	maxDepth := vizcore.ScaledCount(4, p.Complexity, 1, treeMaxDepth)
	fan := 2 + vizcore.ScaledCount(1, p.PatternDensity, 0, 2)

	inst := &treeInstance{b: b, maxDepth: maxDepth}

	bark, err := b.Template(look(scene.RGB{R: 0.45, G: 0.3, B: 0.2}, 1, 0))
	if err != nil {
		return nil, err
	}
	leaf, err := b.Template(look(hsv(0.3, 0.8, 0.8), 0.9, 0.2))
	if err != nil {
		return nil, err
	}

	stack := []treeWork{{depth: 0, pos: scene.V(0, -8, 0), dir: scene.V(0, 1, 0), length: treeTrunk}}
	branches, leaves := 0, 0
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if w.depth >= maxDepth || branches >= treeMaxBranches {
			if leaves >= treeMaxLeaves {
				continue
			}
			leaves++
			h, err := b.AddShaded(scene.Primitive{Kind: scene.Sphere, Size: scene.V(0.4, 0.4, 0.4), Segments: 8}, leaf)
			if err != nil {
				return nil, err
			}
			inst.objs.Add(h, vizcore.RoleLeaf, treeBase{Start: w.pos, Dir: w.dir, Depth: w.depth, Phase: phase(), Speed: speed(0.8, 1.6)})
			continue
		}

		radius := 0.35 * math.Pow(treeShrink, float64(w.depth))
		h, err := b.AddShaded(scene.Primitive{Kind: scene.Cylinder, Size: scene.V(radius, 1, radius), Segments: 6}, bark)
		if err != nil {
			return nil, err
		}
		inst.objs.Add(h, vizcore.RoleBranch, treeBase{Start: w.pos, Dir: w.dir, Length: w.length, Depth: w.depth, Phase: phase(), Speed: speed(0.5, 1.2)})
		branches++

		end := w.pos.Add(w.dir.Scale(w.length))
		side := perpendicular(w.dir)
		for k := 0; k < fan; k++ {
			yaw := float64(k)*2*math.Pi/float64(fan) + float64(w.depth)*0.7
			axis := rotateAround(side, w.dir, yaw)
			child := rotateAround(w.dir, axis, treeSpread).Normalize()
			stack = append(stack, treeWork{depth: w.depth + 1, pos: end, dir: child, length: w.length * treeShrink})
		}
	}
	return inst, nil
}

func (t *treeInstance) Len() int { return len(t.objs) }

func (t *treeInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	_, mid, treble := f.BassMidTreble()
	kick := beatScale(f, p, beatKick*1.3)

	for i := range t.objs {
		o := &t.objs[i]
		base := o.Base
		band := f.Band(base.Depth, t.maxDepth+1)
		depth := float64(base.Depth)

		o.State.Sway = math.Sin(elapsed*base.Speed+base.Phase)*0.05*depth + (band+mid)*p.Intensity*0.05*depth

		switch o.Role {
		case vizcore.RoleBranch:
			center := base.Start.Add(base.Dir.Scale(base.Length / 2))
			pitch, yaw := dirAngles(base.Dir)
			t.b.SetTransform(o.Handle, scene.Transform{
				Position: center,
				Rotation: scene.V(pitch+o.State.Sway, yaw, o.State.Sway*0.5),
				Scale:    scene.V(1, base.Length, 1),
			})
			t.b.SetAppearance(o.Handle, look(scene.RGB{R: 0.45 + band*0.3, G: 0.3, B: 0.2}, 1, band*p.Intensity*0.3))

		case vizcore.RoleLeaf:
			offset := perpendicular(base.Dir).Scale(o.State.Sway * 2)
			scale := (0.4 + treble*p.Intensity) * kick
			t.b.SetTransform(o.Handle, scene.Transform{
				Position: base.Start.Add(offset),
				Scale:    scene.One.Scale(scale),
			})
			t.b.SetAppearance(o.Handle, look(hsv(0.3-treble*0.25, 0.8, 0.6+0.4*treble), 0.9, treble*p.Intensity))
		}
	}
}

// rotateAround rotates v around the unit axis k by angle a (Rodrigues).
func rotateAround(v, k scene.Vec3, a float64) scene.Vec3 {
	k = k.Normalize()
	c, s := math.Cos(a), math.Sin(a)
	return v.Scale(c).Add(k.Cross(v).Scale(s)).Add(k.Scale(k.Dot(v) * (1 - c)))
}

// dirAngles returns the pitch and yaw that turn +Y onto d.
func dirAngles(d scene.Vec3) (pitch, yaw float64) {
	d = d.Normalize()
	return math.Acos(math.Max(-1, math.Min(1, d.Y))), math.Atan2(d.X, d.Z)
}
