package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	sys        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		controller: controller,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 for cfg.Duration. An invalid or diverged state
// ends the run early; the error is recorded in Result.Errors and the
// trajectory up to that point is kept.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("x0 has %d components, system %d: %w", len(x0), s.sys.StateDim(), ErrDimensionMismatch)
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)
		if len(u) != s.sys.ControlDim() {
			return result, fmt.Errorf("controller returned %d inputs, system takes %d: %w", len(u), s.sys.ControlDim(), ErrDimensionMismatch)
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		next := s.integrator.Step(s.sys, x, u, t, cfg.Dt)

		if cfg.ValidateState && !next.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}
		if cfg.DivergenceBound > 0 && next.Norm() > cfg.DivergenceBound {
			result.Errors = append(result.Errors, fmt.Errorf("%w: %w", SimError{Time: t, Step: i, Message: "norm above bound"}, ErrDiverged))
			break
		}

		x = next
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, ErrInvalidConfig)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", cfg.Duration, ErrInvalidConfig)
	}
	return nil
}
