package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/riccati/internal/dynamo"
)

// Pendulum is a rigid pendulum with the angle measured from the upright
// position and a torque input:
//
//	θ̈ = (g/l)·sin θ − b/(ml²)·θ̇ + u/(ml²)
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Gravity: 9.81,
	}
}

func (p *Pendulum) StateDim() int   { return 2 }
func (p *Pendulum) ControlDim() int { return 1 }

func (p *Pendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta, omega := x[0], x[1]
	inertia := p.Mass * p.Length * p.Length
	alpha := p.Gravity/p.Length*math.Sin(theta) + (u[0]-p.Damping*omega)/inertia
	return dynamo.State{omega, alpha}
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "length":
		p.Length = value
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
