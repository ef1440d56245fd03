package recipes

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	springMaxBars   = 256
	springRadius    = 6.0
	springFrequency = 6.0
	springDamping   = 0.5
)

// SpringBars is a circular equaliser whose bar heights chase their band
// through damped springs, so bars overshoot and settle.
type SpringBars struct{}

func (SpringBars) Name() string { return "springBars" }
func (SpringBars) Description() string {
	return "a ring of equaliser bars driven by damped springs"
}

type springBase struct {
	Index int
	Angle float64
	Hue   float64
}

type springState struct {
	Height   float64
	Velocity float64
}

type springInstance struct {
	b    *scene.Batch
	objs vizcore.Objects[springBase, springState]
	bars int
	clk  clock
}

func (SpringBars) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	bars := vizcore.ScaledCount(32, p.PatternDensity, 4, springMaxBars)
	inst := &springInstance{b: b, bars: bars}

	tmpl, err := b.Template(look(hsv(0.8, 0.7, 1), 1, 0.2))
	if err != nil {
		return nil, err
	}
	width := 2 * math.Pi * springRadius / float64(bars) * 0.7

	for i := 0; i < bars; i++ {
		h, err := b.AddShaded(scene.Primitive{Kind: scene.Box, Size: scene.V(width, 1, width)}, tmpl)
		if err != nil {
			return nil, err
		}
		inst.objs.Add(h, vizcore.RoleBar, springBase{
			Index: i,
			Angle: 2 * math.Pi * float64(i) / float64(bars),
			Hue:   float64(i) / float64(bars),
		})
	}
	return inst, nil
}

func (sb *springInstance) Len() int         { return len(sb.objs) }
func (sb *springInstance) Persistent() bool { return true }

func (sb *springInstance) Animate(f vizcore.AudioFrame, elapsed float64, p vizcore.Params) {
	dt := sb.clk.step(elapsed)
	kick := beatScale(f, p, beatKick)
	spring := harmonica.NewSpring(dt, springFrequency, springDamping)

	for i := range sb.objs {
		o := &sb.objs[i]
		band := f.Band(o.Base.Index, sb.bars)
		target := band * p.Intensity * 5

		if dt > 0 {
			o.State.Height, o.State.Velocity = spring.Update(o.State.Height, o.State.Velocity, target)
		}
		if math.IsNaN(o.State.Height) || math.IsInf(o.State.Height, 0) {
			o.State = springState{}
		}

		height := 0.05 + math.Max(0, o.State.Height)*kick
		pos := scene.V(math.Cos(o.Base.Angle)*springRadius, height/2, math.Sin(o.Base.Angle)*springRadius)
		sb.b.SetTransform(o.Handle, scene.Transform{
			Position: pos,
			Rotation: scene.V(0, -o.Base.Angle, 0),
			Scale:    scene.V(1, height, 1),
		})
		sb.b.SetAppearance(o.Handle, look(hsv(o.Base.Hue+elapsed*0.01, 0.7, 0.4+0.6*band), 1, band*p.Intensity*0.4))
	}
}
