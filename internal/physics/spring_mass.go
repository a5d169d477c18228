package physics

import (
	"fmt"

	"github.com/san-kum/riccati/internal/dynamo"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 1.0
	DefaultDamping   = 0.1
)

// SpringMass is a single damped oscillator driven by a force, with an
// optional cubic (Duffing) spring term.
type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64
	Cubic     float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

func (s *SpringMass) StateDim() int   { return 2 }
func (s *SpringMass) ControlDim() int { return 1 }

func (s *SpringMass) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	pos, vel := x[0], x[1]
	spring := s.Stiffness*pos + s.Cubic*pos*pos*pos
	return dynamo.State{vel, (u[0] - spring - s.Damping*vel) / s.Mass}
}

func (s *SpringMass) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":      s.Mass,
		"stiffness": s.Stiffness,
		"damping":   s.Damping,
		"cubic":     s.Cubic,
	}
}

func (s *SpringMass) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		s.Mass = value
	case "stiffness":
		s.Stiffness = value
	case "damping":
		s.Damping = value
	case "cubic":
		s.Cubic = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
