package vizcore

import "github.com/san-kum/sonoform/internal/scene"

// Module is one entry in the visualizer catalogue.
type Module interface {
	Name() string
	Description() string
	// Create builds the scene through b. Every object must be added and its
	// Base stamped before Create returns; on error the caller disposes b.
	Create(b *scene.Batch, p Params) (Instance, error)
}

// Instance animates the objects of one activation.
type Instance interface {
	// Animate runs once per rendered frame. It must not block and must
	// derive every non-persistent value from Base and the inputs.
	Animate(f AudioFrame, elapsed float64, p Params)
	Len() int
}

// Stateful is implemented by instances that carry persistent simulation
// state (phase accumulators, particle positions, springs) across frames.
type Stateful interface {
	Persistent() bool
}

// Bounded is implemented by instances with free-flying elements. Limit is the
// distance from the origin past which an element resets; Reset is the largest
// displacement an element can have right after respawning.
type Bounded interface {
	Bound() (limit, reset float64)
}

// IsStateful reports whether inst declared persistent state.
func IsStateful(inst Instance) bool {
	s, ok := inst.(Stateful)
	return ok && s.Persistent()
}

// Role tags the structural sub-kind of an object within a recipe.
type Role uint8

const (
	RoleCore Role = iota
	RoleArm
	RoleNode
	RoleConnector
	RoleBranch
	RoleLeaf
	RoleFieldLine
	RolePlanet
	RoleMoon
	RoleParticle
	RoleBolt
	RoleStrand
	RoleRing
	RoleBar
	RoleStar
)

var roleNames = [...]string{
	"core", "arm", "node", "connector", "branch", "leaf", "field-line",
	"planet", "moon", "particle", "bolt", "strand", "ring", "bar", "star",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Object is the per-object record of an activation. Base is written during
// Create only; State holds transient values and any declared accumulators.
type Object[B, S any] struct {
	Handle scene.Handle
	Role   Role
	Base   B
	State  S
}

// Objects is the arena of records owned by one activation, indexed by
// creation order.
type Objects[B, S any] []Object[B, S]

// Add appends a record. The returned pointer is valid until the next Add.
func (o *Objects[B, S]) Add(h scene.Handle, role Role, base B) *Object[B, S] {
	*o = append(*o, Object[B, S]{Handle: h, Role: role, Base: base})
	return &(*o)[len(*o)-1]
}

// Count returns the number of records with the given role.
func (o Objects[B, S]) Count(role Role) int {
	n := 0
	for i := range o {
		if o[i].Role == role {
			n++
		}
	}
	return n
}

// State is the lifecycle position of an activation.
type State uint8

const (
	Uninitialized State = iota
	Created
	Animating
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Created:
		return "created"
	case Animating:
		return "animating"
	case Disposed:
		return "disposed"
	}
	return "unknown"
}
