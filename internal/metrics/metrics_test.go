package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/riccati/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

func TestQuadraticCost(t *testing.T) {
	q := mat.NewDense(2, 2, []float64{1, 0, 0, 2})
	r := mat.NewDense(1, 1, []float64{3})
	c := NewQuadraticCost(q, r, nil, 0.5)

	// 1·1 + 2·4 + 3·1 = 12 per sample.
	c.Observe(dynamo.State{1, 2}, dynamo.Control{1}, 0)
	c.Observe(dynamo.State{1, 2}, dynamo.Control{-1}, 0.5)
	if got := c.Value(); math.Abs(got-12) > 1e-12 {
		t.Errorf("cost = %v, want 12", got)
	}

	c.Reset()
	if c.Value() != 0 {
		t.Error("reset did not clear the cost")
	}
}

func TestQuadraticCostCrossTerm(t *testing.T) {
	q := mat.NewDense(1, 1, []float64{0})
	r := mat.NewDense(1, 1, []float64{0})
	m := mat.NewDense(1, 1, []float64{1})
	c := NewQuadraticCost(q, r, m, 1)

	c.Observe(dynamo.State{2}, dynamo.Control{3}, 0)
	if got := c.Value(); math.Abs(got-12) > 1e-12 {
		t.Errorf("cost = %v, want 2·2·3 = 12", got)
	}
}

func TestControlEffort(t *testing.T) {
	c := NewControlEffort()
	if c.Value() != 0 {
		t.Error("expected zero effort before observing")
	}
	c.Observe(nil, dynamo.Control{1, -2}, 0)
	c.Observe(nil, dynamo.Control{0, 1}, 0)
	if got := c.Value(); math.Abs(got-2) > 1e-12 {
		t.Errorf("effort = %v, want 2", got)
	}
}

func TestStability(t *testing.T) {
	s := NewStability(1)
	if s.Value() != 1 {
		t.Error("expected 1 with no samples")
	}
	s.Observe(dynamo.State{0.5, -0.5}, nil, 0)
	s.Observe(dynamo.State{0.1, -2}, nil, 0)
	s.Observe(dynamo.State{0, 0}, nil, 0)
	s.Observe(dynamo.State{3, 0}, nil, 0)
	if got := s.Value(); got != 0.5 {
		t.Errorf("stability = %v, want 0.5", got)
	}
}

func TestStandardNames(t *testing.T) {
	id := mat.NewDense(1, 1, []float64{1})
	want := []string{"quadratic_cost", "control_effort", "stability"}
	for i, m := range Standard(id, id, nil, 0.01, 10) {
		if m.Name() != want[i] {
			t.Errorf("metric %d named %q, want %q", i, m.Name(), want[i])
		}
	}
}
