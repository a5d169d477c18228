package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/riccati/internal/dynamo"
)

// CartPole is a cart with a point-mass pole on a massless rod. The state
// is (position, velocity, angle from upright, angular rate); the input is
// the horizontal force on the cart.
type CartPole struct {
	CartMass   float64
	PoleMass   float64
	PoleLength float64
	Gravity    float64
}

func NewCartPole() *CartPole {
	return &CartPole{
		CartMass:   1.0,
		PoleMass:   0.1,
		PoleLength: 0.5,
		Gravity:    9.81,
	}
}

func (c *CartPole) StateDim() int   { return 4 }
func (c *CartPole) ControlDim() int { return 1 }

func (c *CartPole) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	vel, theta, omega := x[1], x[2], x[3]
	force := u[0]

	mc, mp := c.CartMass, c.PoleMass
	l, g := c.PoleLength, c.Gravity

	sint, cost := math.Sincos(theta)
	den := mc + mp*sint*sint

	xacc := (force + mp*sint*(l*omega*omega-g*cost)) / den
	thetaacc := (-force*cost - mp*l*omega*omega*cost*sint + (mc+mp)*g*sint) / (l * den)

	return dynamo.State{vel, xacc, omega, thetaacc}
}

func (c *CartPole) GetParams() map[string]float64 {
	return map[string]float64{
		"cart_mass":   c.CartMass,
		"pole_mass":   c.PoleMass,
		"pole_length": c.PoleLength,
		"gravity":     c.Gravity,
	}
}

func (c *CartPole) SetParam(name string, value float64) error {
	switch name {
	case "cart_mass":
		c.CartMass = value
	case "pole_mass":
		c.PoleMass = value
	case "pole_length":
		c.PoleLength = value
	case "gravity":
		c.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
