package recipes

import (
	"math"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	fieldMaxLines    = 96
	fieldMaxSegments = 128
	fieldInner       = 1.5
	fieldLength      = 10.0
)

// FieldLines radiates count = floor(12*complexity) curved lines from a core,
// each sampled at segments = floor(24*density) points.
type FieldLines struct{}

func (FieldLines) Name() string { return "fieldLines" }
func (FieldLines) Description() string {
	return "magnetic field lines bulging and twisting with their band"
}

type fieldBase struct {
	Index int
	Dir   scene.Vec3
	Perp  scene.Vec3
	Phase float64
	Speed float64
}

type fieldState struct {
	Pts []scene.Vec3
}

type fieldInstance struct {
	b        *scene.Batch
	objs     vizcore.Objects[fieldBase, fieldState]
	lines    int
	segments int
}

func (FieldLines) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	lines := vizcore.ScaledCount(12, p.Complexity, 1, fieldMaxLines)
	segments := vizcore.ScaledCount(24, p.PatternDensity, 2, fieldMaxSegments)

	inst := &fieldInstance{b: b, lines: lines, segments: segments}

	core, err := b.Add(scene.Primitive{Kind: scene.Sphere, Size: scene.V(fieldInner*0.8, fieldInner*0.8, fieldInner*0.8), Segments: 24})
	if err != nil {
		return nil, err
	}
	inst.objs.Add(core, vizcore.RoleCore, fieldBase{Phase: phase()})

	tmpl, err := b.Template(look(hsv(0.75, 0.7, 1), 0.8, 0.4))
	if err != nil {
		return nil, err
	}

	for i := 0; i < lines; i++ {
		dir := sphereDir(i, lines)
		perp := rotateAround(perpendicular(dir), dir, float64(i)*0.9)
		pts := make([]scene.Vec3, segments)
		for s := range pts {
			pts[s] = dir.Scale(fieldInner + float64(s)/float64(segments-1)*fieldLength)
		}
		h, err := b.AddShaded(scene.Primitive{Kind: scene.Line, Points: pts, Segments: segments}, tmpl)
		if err != nil {
			return nil, err
		}
		o := inst.objs.Add(h, vizcore.RoleFieldLine, fieldBase{Index: i, Dir: dir, Perp: perp, Phase: phase(), Speed: speed(0.7, 1.5)})
		o.State.Pts = pts
	}
	return inst, nil
}

func (fl *fieldInstance) Len() int { return len(fl.objs) }

func (fl *fieldInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	bass, _, _ := f.BassMidTreble()
	kick := beatScale(f, p, beatKick)

	for i := range fl.objs {
		o := &fl.objs[i]
		switch o.Role {
		case vizcore.RoleCore:
			scale := (1 + bass*p.Intensity*0.6) * kick
			fl.b.SetTransform(o.Handle, scene.Transform{Rotation: scene.V(elapsed*0.3, elapsed*0.4, 0), Scale: scene.One.Scale(scale)})
			fl.b.SetAppearance(o.Handle, look(hsv(0.75+bass*0.2, 0.7, 1), 1, bass*p.Intensity))

		case vizcore.RoleFieldLine:
			band := f.Band(o.Base.Index, fl.lines)
			bulge := (0.5 + band*p.Intensity*3) * kick
			twist := math.Sin(elapsed*o.Base.Speed + o.Base.Phase)
			reach := fieldLength * (1 + 0.2*band*p.Intensity)

			n := len(o.State.Pts)
			for s := range o.State.Pts {
				u := float64(s) / float64(n-1)
				along := o.Base.Dir.Scale(fieldInner + u*reach)
				o.State.Pts[s] = along.Add(o.Base.Perp.Scale(math.Sin(u*math.Pi) * bulge * twist))
			}
			fl.b.SetPoints(o.Handle, o.State.Pts)
			fl.b.SetAppearance(o.Handle, look(hsv(0.75-band*0.4, 0.7, 0.5+0.5*band), 0.8, band*p.Intensity))
		}
	}
}
