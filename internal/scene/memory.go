package scene

import (
	"fmt"
	"sync"
)

// Node is a snapshot of one object held by a Memory graph.
type Node struct {
	Handle     Handle
	Primitive  Primitive
	Transform  Transform
	Appearance Appearance
}

// Memory is an in-process Graph. It backs headless runs, the terminal
// preview and tests. Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	next      Handle
	nextMat   MaterialID
	nodes     map[Handle]*Node
	order     []Handle
	materials map[MaterialID]Appearance

	failRemove  map[Handle]bool
	failDispose map[MaterialID]bool
	addBudget   int
}

func NewMemory() *Memory {
	return &Memory{
		nodes:       make(map[Handle]*Node),
		materials:   make(map[MaterialID]Appearance),
		failRemove:  make(map[Handle]bool),
		failDispose: make(map[MaterialID]bool),
		addBudget:   -1,
	}
}

func (m *Memory) AddObject(p Primitive) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addBudget == 0 {
		return 0, fmt.Errorf("scene: object budget exhausted")
	}
	if m.addBudget > 0 {
		m.addBudget--
	}
	if p.Parent != 0 {
		if _, ok := m.nodes[p.Parent]; !ok {
			return 0, fmt.Errorf("parent %d: %w", p.Parent, ErrUnknownHandle)
		}
	}

	look := Appearance{Color: RGB{1, 1, 1}, Opacity: 1}
	if p.Material != 0 {
		a, ok := m.materials[p.Material]
		if !ok {
			return 0, fmt.Errorf("material %d: %w", p.Material, ErrUnknownMaterial)
		}
		look = a
	}

	m.next++
	n := &Node{Handle: m.next, Primitive: p, Transform: Identity(), Appearance: look}
	if len(p.Points) > 0 {
		n.Primitive.Points = append([]Vec3(nil), p.Points...)
	}
	m.nodes[n.Handle] = n
	m.order = append(m.order, n.Handle)
	return n.Handle, nil
}

func (m *Memory) RemoveObject(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[h]; !ok {
		return fmt.Errorf("remove %d: %w", h, ErrUnknownHandle)
	}
	if m.failRemove[h] {
		return fmt.Errorf("remove %d: host refused", h)
	}
	delete(m.nodes, h)
	for i, o := range m.order {
		if o == h {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Transform(h Handle) (Transform, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[h]
	if !ok {
		return Transform{}, false
	}
	return n.Transform, true
}

func (m *Memory) SetTransform(h Handle, t Transform) {
	m.mu.Lock()
	if n, ok := m.nodes[h]; ok {
		n.Transform = t
	}
	m.mu.Unlock()
}

func (m *Memory) Appearance(h Handle) (Appearance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[h]
	if !ok {
		return Appearance{}, false
	}
	return n.Appearance, true
}

func (m *Memory) SetAppearance(h Handle, a Appearance) {
	m.mu.Lock()
	if n, ok := m.nodes[h]; ok {
		n.Appearance = a
		if id := n.Primitive.Material; id != 0 {
			if _, live := m.materials[id]; live {
				m.materials[id] = a
			}
		}
	}
	m.mu.Unlock()
}

// SetPoints replaces the vertex list of a line or point-cloud object. The
// slice is copied; callers may reuse their buffer.
func (m *Memory) SetPoints(h Handle, pts []Vec3) {
	m.mu.Lock()
	if n, ok := m.nodes[h]; ok {
		if cap(n.Primitive.Points) >= len(pts) {
			n.Primitive.Points = n.Primitive.Points[:len(pts)]
		} else {
			n.Primitive.Points = make([]Vec3, len(pts))
		}
		copy(n.Primitive.Points, pts)
	}
	m.mu.Unlock()
}

func (m *Memory) NewMaterial(a Appearance) (MaterialID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMat++
	m.materials[m.nextMat] = a
	return m.nextMat, nil
}

func (m *Memory) CloneMaterial(id MaterialID) (MaterialID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.materials[id]
	if !ok {
		return 0, fmt.Errorf("clone %d: %w", id, ErrUnknownMaterial)
	}
	m.nextMat++
	m.materials[m.nextMat] = a
	return m.nextMat, nil
}

func (m *Memory) DisposeMaterial(id MaterialID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.materials[id]; !ok {
		return fmt.Errorf("dispose %d: %w", id, ErrUnknownMaterial)
	}
	if m.failDispose[id] {
		return fmt.Errorf("dispose %d: host refused", id)
	}
	delete(m.materials, id)
	return nil
}

// Len returns the number of live objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// Materials returns the number of live materials.
func (m *Memory) Materials() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.materials)
}

// Snapshot copies every live node in insertion order.
func (m *Memory) Snapshot() []Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Node, 0, len(m.order))
	for _, h := range m.order {
		n := *m.nodes[h]
		n.Primitive.Points = append([]Vec3(nil), n.Primitive.Points...)
		out = append(out, n)
	}
	return out
}

// Node returns a copy of one node.
func (m *Memory) Node(h Handle) (Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[h]
	if !ok {
		return Node{}, false
	}
	c := *n
	c.Primitive.Points = append([]Vec3(nil), n.Primitive.Points...)
	return c, true
}

// FailRemove makes RemoveObject(h) fail, simulating a host that refuses to
// release a resource.
func (m *Memory) FailRemove(h Handle) {
	m.mu.Lock()
	m.failRemove[h] = true
	m.mu.Unlock()
}

// FailDispose makes DisposeMaterial(id) fail.
func (m *Memory) FailDispose(id MaterialID) {
	m.mu.Lock()
	m.failDispose[id] = true
	m.mu.Unlock()
}

// LimitAdds lets the next n AddObject calls succeed and fails the rest.
// A negative n removes the limit.
func (m *Memory) LimitAdds(n int) {
	m.mu.Lock()
	m.addBudget = n
	m.mu.Unlock()
}
