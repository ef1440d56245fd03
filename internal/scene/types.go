package scene

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// Vec3 methods.
func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Mul(o Vec3) Vec3      { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// One is the identity scale.
var One = Vec3{1, 1, 1}

type Handle uint64

type MaterialID uint64

type Kind uint8

const (
	Sphere Kind = iota
	Box
	Cone
	Cylinder
	Plane
	Line
	Points
	Group
)

var kindNames = [...]string{"sphere", "box", "cone", "cylinder", "plane", "line", "points", "group"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Primitive describes a shape requested from the host graph. Size holds
// radius/height/depth depending on Kind; Points is only read for Line and
// Points kinds.
type Primitive struct {
	Kind     Kind
	Size     Vec3
	Segments int
	Points   []Vec3
	Parent   Handle
	Material MaterialID
}

type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

func Identity() Transform { return Transform{Scale: One} }

type RGB struct {
	R, G, B float64
}

type Appearance struct {
	Color    RGB
	Opacity  float64
	Emissive float64
}

// Graph is the host scene-graph collaborator. Implementations own GPU or
// terminal resources; callers only request primitives by parameter.
type Graph interface {
	AddObject(p Primitive) (Handle, error)
	RemoveObject(h Handle) error
	Transform(h Handle) (Transform, bool)
	SetTransform(h Handle, t Transform)
	Appearance(h Handle) (Appearance, bool)
	SetAppearance(h Handle, a Appearance)
	SetPoints(h Handle, pts []Vec3)
	NewMaterial(a Appearance) (MaterialID, error)
	CloneMaterial(id MaterialID) (MaterialID, error)
	DisposeMaterial(id MaterialID) error
}
