package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/sonoform/internal/scene"
)

const rad2deg = 180 / math.Pi

func vec(v scene.Vec3) rl.Vector3 { return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z)) }

// colorOf turns an appearance into an RGBA colour; emissive glow lifts the
// channels towards white.
func colorOf(a scene.Appearance) rl.Color {
	glow := math.Min(1, a.Emissive) * 0.5
	ch := func(v float64) uint8 {
		v = v + (1-v)*glow
		return uint8(math.Max(0, math.Min(1, v)) * 255)
	}
	alpha := uint8(math.Max(0, math.Min(1, a.Opacity)) * 255)
	return rl.NewColor(ch(a.Color.R), ch(a.Color.G), ch(a.Color.B), alpha)
}

func segmentsOf(p scene.Primitive, fallback int32) int32 {
	if p.Segments > 2 {
		return int32(p.Segments)
	}
	return fallback
}

// drawNode draws one scene node inside BeginMode3D. Transforms are applied
// through the rlgl matrix stack in translate, rotate X/Y/Z, scale order,
// matching how the terminal preview places points.
func drawNode(n scene.Node, wires bool) {
	if n.Appearance.Opacity <= 0 || n.Primitive.Kind == scene.Group {
		return
	}
	col := colorOf(n.Appearance)
	t := n.Transform
	p := n.Primitive

	rl.PushMatrix()
	defer rl.PopMatrix()
	rl.Translatef(float32(t.Position.X), float32(t.Position.Y), float32(t.Position.Z))
	rl.Rotatef(float32(t.Rotation.Z*rad2deg), 0, 0, 1)
	rl.Rotatef(float32(t.Rotation.Y*rad2deg), 0, 1, 0)
	rl.Rotatef(float32(t.Rotation.X*rad2deg), 1, 0, 0)
	rl.Scalef(float32(t.Scale.X), float32(t.Scale.Y), float32(t.Scale.Z))

	origin := rl.NewVector3(0, 0, 0)
	switch p.Kind {
	case scene.Sphere:
		r := float32(p.Size.X)
		seg := segmentsOf(p, 8)
		if wires {
			rl.DrawSphereWires(origin, r, seg, seg, col)
		} else {
			rl.DrawSphereEx(origin, r, seg, seg, col)
		}
	case scene.Box:
		w, h, d := float32(p.Size.X), float32(p.Size.Y), float32(p.Size.Z)
		if wires {
			rl.DrawCubeWires(origin, w, h, d, col)
		} else {
			rl.DrawCube(origin, w, h, d, col)
		}
	case scene.Cylinder, scene.Cone:
		top := float32(p.Size.X)
		if p.Kind == scene.Cone {
			top = 0
		}
		h := float32(p.Size.Y)
		base := rl.NewVector3(0, -h/2, 0)
		seg := segmentsOf(p, 8)
		if wires {
			rl.DrawCylinderWires(base, top, float32(p.Size.X), h, seg, col)
		} else {
			rl.DrawCylinder(base, top, float32(p.Size.X), h, seg, col)
		}
	case scene.Plane:
		rl.DrawPlane(origin, rl.NewVector2(float32(p.Size.X), float32(p.Size.Z)), col)
	case scene.Line:
		for i := 1; i < len(p.Points); i++ {
			rl.DrawLine3D(vec(p.Points[i-1]), vec(p.Points[i]), col)
		}
	case scene.Points:
		for _, pt := range p.Points {
			rl.DrawPoint3D(vec(pt), col)
		}
	}
}

// drawScene draws every node of g.
func drawScene(g *scene.Memory, wires bool) {
	for _, n := range g.Snapshot() {
		drawNode(n, wires)
	}
}

// drawBands draws the bass, mid and treble levels as vertical bars.
func drawBands(x, y int32, levels [3]float64, cols [3]rl.Color) {
	const w, h, gap = 14, 80, 6
	for i, v := range levels {
		v = math.Max(0, math.Min(1, math.Sqrt(math.Max(0, v))))
		bx := x + int32(i)*(w+gap)
		rl.DrawRectangleLines(bx, y, w, h, ColTextDim)
		fill := int32(v * h)
		rl.DrawRectangle(bx+1, y+h-fill, w-2, fill, cols[i])
	}
}
