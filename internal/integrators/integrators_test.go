package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/sonoform/internal/scene"
)

var spring = FieldFunc(func(p Particle, t float64) scene.Vec3 {
	return p.Pos.Scale(-1)
})

func energy(p Particle) float64 {
	return 0.5*p.Vel.Dot(p.Vel) + 0.5*p.Pos.Dot(p.Pos)
}

func TestConstantAcceleration(t *testing.T) {
	gravity := FieldFunc(func(p Particle, t float64) scene.Vec3 { return scene.V(0, -10, 0) })
	p := Particle{}
	v := NewVerlet()
	for i := 0; i < 100; i++ {
		p = v.Step(gravity, p, float64(i)*0.01, 0.01)
	}
	// y = -0.5*g*t^2 at t=1
	if math.Abs(p.Pos.Y+5) > 1e-9 {
		t.Errorf("expected y=-5, got %f", p.Pos.Y)
	}
	if math.Abs(p.Vel.Y+10) > 1e-9 {
		t.Errorf("expected vy=-10, got %f", p.Vel.Y)
	}
}

func TestEnergyStaysBounded(t *testing.T) {
	tests := []struct {
		name  string
		integ Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 0.05},
		{"verlet", NewVerlet(), 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{Pos: scene.V(1, 0, 0)}
			e0 := energy(p)
			dt := 0.01
			for i := 0; i < 10000; i++ {
				p = tt.integ.Step(spring, p, float64(i)*dt, dt)
			}
			drift := math.Abs(energy(p)-e0) / e0
			if drift > tt.tol {
				t.Errorf("energy drift %.5f exceeds %.5f", drift, tt.tol)
			}
		})
	}
}
