package integrators

import "github.com/san-kum/sonoform/internal/scene"

// Particle is the persistent simulation state of one free-flying element.
type Particle struct {
	Pos scene.Vec3
	Vel scene.Vec3
}

// Field returns the acceleration acting on a particle at time t.
type Field interface {
	Accel(p Particle, t float64) scene.Vec3
}

// FieldFunc adapts a function to Field.
type FieldFunc func(p Particle, t float64) scene.Vec3

func (f FieldFunc) Accel(p Particle, t float64) scene.Vec3 { return f(p, t) }

type Integrator interface {
	Step(f Field, p Particle, t, dt float64) Particle
}

// Euler is the semi-implicit (symplectic) Euler method: velocity first,
// then position from the new velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f Field, p Particle, t, dt float64) Particle {
	a := f.Accel(p, t)
	vel := p.Vel.Add(a.Scale(dt))
	return Particle{Pos: p.Pos.Add(vel.Scale(dt)), Vel: vel}
}

// Verlet is velocity Verlet. It evaluates the field twice per step.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(f Field, p Particle, t, dt float64) Particle {
	a := f.Accel(p, t)
	pos := p.Pos.Add(p.Vel.Scale(dt)).Add(a.Scale(0.5 * dt * dt))

	aNew := f.Accel(Particle{Pos: pos, Vel: p.Vel}, t+dt)
	vel := p.Vel.Add(a.Add(aNew).Scale(0.5 * dt))

	return Particle{Pos: pos, Vel: vel}
}
