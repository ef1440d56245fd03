package viz

import (
	"math"
	"sort"

	"github.com/san-kum/sonoform/internal/scene"
)

// Camera orbits the origin and projects world points onto a dot grid.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 4, Near: 0.1, RotX: 0.35, Zoom: 0.1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.005, c.Zoom/1.2) }

// Fit picks a zoom that keeps a scene of the given extent on screen.
func (c *Camera) Fit(extent float64) {
	if extent <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		return
	}
	c.Zoom = 1.2 / extent
}

// RotatePoint applies the camera's X, Y then Z rotation.
func (c *Camera) RotatePoint(p scene.Vec3) scene.Vec3 {
	return rotateXYZ(p, c.RotX, c.RotY, c.RotZ)
}

// Project converts a world point to dot coordinates on a sw x sh grid.
// Returns x, y, depth, and whether the point lands on screen.
func (c *Camera) Project(p scene.Vec3, sw, sh int) (int, int, float64, bool) {
	x, y, d, front := c.project(p, sw, sh)
	return x, y, d, front && onScreen(x, y, sw, sh)
}

// project reports front=false for points behind the near plane. Coordinates
// of points in front are clamped so the int conversion stays defined.
func (c *Camera) project(p scene.Vec3, sw, sh int) (int, int, float64, bool) {
	if !p.IsFinite() {
		return 0, 0, 0, false
	}
	rot := c.RotatePoint(p).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	pScale := float64(min(sw, sh)) / 3.0
	lim := float64(4 * (sw + sh))
	x := math.Max(-lim, math.Min(lim, rot.X*scale*pScale))
	y := math.Max(-lim, math.Min(lim, -rot.Y*scale*pScale))
	return int(math.Round(x)) + sw/2, int(math.Round(y)) + sh/2, rot.Z, true
}

func rotateXYZ(p scene.Vec3, ax, ay, az float64) scene.Vec3 {
	cx, sx := math.Cos(ax), math.Sin(ax)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(ay), math.Sin(ay)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(az), math.Sin(az)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

type Edge struct {
	Start, End scene.Vec3
	Color      scene.RGB
}

// Wireframe is the line-art form of a scene.
type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0, 256)} }

func (w *Wireframe) AddEdge(s, e scene.Vec3, c scene.RGB) { w.Edges = append(w.Edges, Edge{s, e, c}) }
func (w *Wireframe) AddPoint(p scene.Vec3, c scene.RGB)   { w.Edges = append(w.Edges, Edge{p, p, c}) }
func (w *Wireframe) Clear()                               { w.Edges = w.Edges[:0] }

var cubeCorners = [8]scene.Vec3{
	{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
}

var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// AddNodes appends the wireframe of every visible node. Lines become
// polylines, point sets become dots, boxes become cubes, cylinders and cones
// become their axis, and the remaining solids become small axis crosses.
func (w *Wireframe) AddNodes(nodes []scene.Node) {
	for _, n := range nodes {
		if n.Appearance.Opacity <= 0 {
			continue
		}
		col := n.Appearance.Color
		world := func(p scene.Vec3) scene.Vec3 { return placePoint(p, n.Transform) }
		switch n.Primitive.Kind {
		case scene.Group:
		case scene.Line:
			pts := n.Primitive.Points
			if len(pts) == 1 {
				w.AddPoint(world(pts[0]), col)
			}
			for i := 1; i < len(pts); i++ {
				w.AddEdge(world(pts[i-1]), world(pts[i]), col)
			}
		case scene.Points:
			for _, p := range n.Primitive.Points {
				w.AddPoint(world(p), col)
			}
		case scene.Box:
			half := n.Primitive.Size.Scale(0.5)
			for _, e := range cubeEdges {
				w.AddEdge(world(cubeCorners[e[0]].Mul(half)), world(cubeCorners[e[1]].Mul(half)), col)
			}
		case scene.Cylinder, scene.Cone:
			h := n.Primitive.Size.Y / 2
			w.AddEdge(world(scene.V(0, -h, 0)), world(scene.V(0, h, 0)), col)
		default:
			r := n.Primitive.Size.X
			if r <= 0 {
				w.AddPoint(world(scene.Vec3{}), col)
				continue
			}
			w.AddEdge(world(scene.V(-r, 0, 0)), world(scene.V(r, 0, 0)), col)
			w.AddEdge(world(scene.V(0, -r, 0)), world(scene.V(0, r, 0)), col)
			w.AddEdge(world(scene.V(0, 0, -r)), world(scene.V(0, 0, r)), col)
		}
	}
}

// placePoint maps a primitive-local point through scale, rotation and
// translation.
func placePoint(p scene.Vec3, t scene.Transform) scene.Vec3 {
	p = p.Mul(t.Scale)
	p = rotateXYZ(p, t.Rotation.X, t.Rotation.Y, t.Rotation.Z)
	return p.Add(t.Position)
}

type ProjectedEdge struct {
	X1, Y1, X2, Y2 int
	Depth          float64
	Color          scene.RGB
}

// ProjectEdge projects both ends of e. It fails when either end is behind
// the camera or both ends are off screen.
func (c *Camera) ProjectEdge(e Edge, sw, sh int) (ProjectedEdge, bool) {
	x1, y1, d1, f1 := c.project(e.Start, sw, sh)
	x2, y2, d2, f2 := c.project(e.End, sw, sh)
	if !f1 || !f2 || !onScreen(x1, y1, sw, sh) && !onScreen(x2, y2, sw, sh) {
		return ProjectedEdge{}, false
	}
	return ProjectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Color}, true
}

// Render3D draws the wireframe far-to-near so nearer colours win each cell.
// It returns the number of edges that reached the canvas.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) int {
	if c == nil || w == nil || cam == nil {
		return 0
	}
	sw, sh := c.Dots()
	proj := make([]ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		if pe, ok := cam.ProjectEdge(e, sw, sh); ok {
			proj = append(proj, pe)
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].Depth < proj[j].Depth })
	for _, e := range proj {
		c.Pen(e.Color)
		if e.X1 == e.X2 && e.Y1 == e.Y2 {
			c.Set(e.X1, e.Y1)
		} else {
			c.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		}
	}
	return len(proj)
}

// Recolor maps every edge colour through f.
func (w *Wireframe) Recolor(f func(scene.RGB) scene.RGB) {
	for i := range w.Edges {
		w.Edges[i].Color = f(w.Edges[i].Color)
	}
}

// RenderScene clears c and draws the current contents of g in theme th.
func RenderScene(c *Canvas, g *scene.Memory, cam *Camera, th Theme) int {
	c.Clear()
	w := NewWireframe()
	w.AddNodes(g.Snapshot())
	w.Recolor(th.Tint)
	return Render3D(c, w, cam)
}

func onScreen(x, y, sw, sh int) bool { return x >= 0 && x < sw && y >= 0 && y < sh }
