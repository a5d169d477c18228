package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// AddScaled returns s + f·d. Both must have the same length.
func (s State) AddScaled(f float64, d State) State {
	out := s.Clone()
	floats.AddScaled(out, f, d)
	return out
}

func (s State) Sub(other State) State {
	out := make(State, len(s))
	floats.SubTo(out, s, other)
	return out
}

// Vec views the state as a column vector without copying.
func (s State) Vec() *mat.VecDense {
	if len(s) == 0 {
		return nil
	}
	return mat.NewVecDense(len(s), s)
}

type Control []float64

func (u Control) Vec() *mat.VecDense {
	if len(u) == 0 {
		return nil
	}
	return mat.NewVecDense(len(u), u)
}

// System is an ODE dx/dt = f(x, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(sys System, x State, u Control, t, dt float64) State
}

type Controller interface {
	Compute(x State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Config struct {
	Dt            float64 `yaml:"dt" json:"dt"`
	Duration      float64 `yaml:"duration" json:"duration"`
	ValidateState bool    `yaml:"validate_state" json:"validate_state"`
	// DivergenceBound stops the run once ‖x‖ exceeds it. Zero disables.
	DivergenceBound float64 `yaml:"divergence_bound" json:"divergence_bound"`
}

func DefaultConfig() Config {
	return Config{
		Dt:              0.01,
		Duration:        10.0,
		ValidateState:   true,
		DivergenceBound: 1e6,
	}
}

type Result struct {
	States     []State
	Controls   []Control
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Column extracts component i of every recorded state.
func (r *Result) Column(i int) []float64 {
	out := make([]float64, 0, len(r.States))
	for _, x := range r.States {
		if i < len(x) {
			out = append(out, x[i])
		}
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
