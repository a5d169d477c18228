package metrics

import (
	"math"

	"github.com/san-kum/riccati/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Stability is the fraction of samples whose largest state component stays
// within threshold in magnitude.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if len(x) > 0 && floats.Norm(x, math.Inf(1)) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Standard returns the metrics attached to every closed-loop run.
func Standard(q, r, m mat.Matrix, dt, bound float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewQuadraticCost(q, r, m, dt),
		NewControlEffort(),
		NewStability(bound),
	}
}
