package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"github.com/san-kum/riccati/internal/care"
	"github.com/san-kum/riccati/internal/control"
	"github.com/san-kum/riccati/internal/dynamo"
	"github.com/san-kum/riccati/internal/integrators"
	"github.com/san-kum/riccati/internal/linalg"
	"github.com/san-kum/riccati/internal/linesearch"
	"github.com/san-kum/riccati/internal/linsys"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultBound    = 1e3
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Problem    Problem    `yaml:"problem"`
	Riccati    Riccati    `yaml:"riccati,omitempty"`
	Solver     Solver     `yaml:"solver"`
	Simulation Simulation `yaml:"simulation"`
	Logging    Logging    `yaml:"logging"`
}

// Problem is an LQR problem in row-major form.
type Problem struct {
	Name string      `yaml:"name"`
	F    [][]float64 `yaml:"f"`
	G    [][]float64 `yaml:"g"`
	Q    [][]float64 `yaml:"q"`
	R    [][]float64 `yaml:"r"`
	M    [][]float64 `yaml:"m,omitempty"`
}

// Riccati is a raw equation XA + AᵗX − XBX + C = 0 for the care command.
type Riccati struct {
	A [][]float64 `yaml:"a,omitempty"`
	B [][]float64 `yaml:"b,omitempty"`
	C [][]float64 `yaml:"c,omitempty"`
}

type Solver struct {
	Tolerance           float64           `yaml:"tolerance"`
	MaxIterations       int               `yaml:"max_iterations"`
	SymmetryTolerance   float64           `yaml:"symmetry_tolerance"`
	Shift               float64           `yaml:"shift"`
	PinvTolerance       float64           `yaml:"pinv_tolerance"`
	StepBounds          linesearch.Bounds `yaml:"step_bounds"`
	Check               bool              `yaml:"check"`
	PositivityTolerance float64           `yaml:"positivity_tolerance"`
}

type Simulation struct {
	Integrator   string    `yaml:"integrator"`
	Dt           float64   `yaml:"dt"`
	Duration     float64   `yaml:"duration"`
	InitialState []float64 `yaml:"initial_state"`
	Target       []float64 `yaml:"target,omitempty"`
	// Bound is the state magnitude counted as a stability violation.
	Bound float64 `yaml:"bound"`
}

type Logging struct {
	// Level is a zerolog level name; "disabled" silences all output.
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem: doubleIntegrator(1),
		Solver: Solver{
			Tolerance:         care.DefaultTolerance,
			MaxIterations:     care.DefaultMaxIterations,
			SymmetryTolerance: care.DefaultSymmetryTolerance,
			Shift:             care.DefaultShift,
			PinvTolerance:     linalg.DefaultPinvTolerance,
			StepBounds:        linesearch.DefaultBounds,
			Check:             true,
		},
		Simulation: Simulation{
			Integrator:   "rk4",
			Dt:           DefaultDt,
			Duration:     DefaultDuration,
			InitialState: []float64{1, 0},
			Bound:        DefaultBound,
		},
		Logging: Logging{Level: "disabled", Format: "console"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := DefaultConfig()
	cfg.Simulation.InitialState = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Simulation.InitialState == nil {
		cfg.Simulation.InitialState = unitState(len(cfg.Problem.F))
	}
	return cfg, nil
}

// unitState is the default initial state: a unit offset in the first
// component, zero elsewhere.
func unitState(n int) []float64 {
	if n == 0 {
		return nil
	}
	x := make([]float64, n)
	x[0] = 1
	return x
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the problem shapes, solver limits and simulation
// settings. Every error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	sys, err := c.Problem.System()
	if err != nil {
		return fmt.Errorf("%w: problem: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Problem.Weights(); err != nil {
		return fmt.Errorf("%w: problem: %w", ErrInvalidConfig, err)
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("%w: solver.tolerance must be positive", ErrInvalidConfig)
	}
	if c.Solver.MaxIterations <= 0 {
		return fmt.Errorf("%w: solver.max_iterations must be positive", ErrInvalidConfig)
	}
	if b := c.Solver.StepBounds; b.Lower <= 0 || b.Upper <= b.Lower {
		return fmt.Errorf("%w: solver.step_bounds [%g, %g]", ErrInvalidConfig, b.Lower, b.Upper)
	}
	if c.Simulation.Dt <= 0 || c.Simulation.Duration <= 0 {
		return fmt.Errorf("%w: simulation dt and duration must be positive", ErrInvalidConfig)
	}
	if !slices.Contains(integrators.Names(), c.Simulation.Integrator) {
		return fmt.Errorf("%w: unknown integrator %q", ErrInvalidConfig, c.Simulation.Integrator)
	}
	n, _ := sys.Dims()
	if len(c.Simulation.InitialState) != n {
		return fmt.Errorf("%w: simulation.initial_state has %d entries, problem has %d states", ErrInvalidConfig, len(c.Simulation.InitialState), n)
	}
	if t := c.Simulation.Target; t != nil && len(t) != n {
		return fmt.Errorf("%w: simulation.target has %d entries, problem has %d states", ErrInvalidConfig, len(t), n)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (p Problem) System() (*linsys.System, error) {
	return linsys.FromRows(p.F, p.G)
}

// Weights converts Q, R and the optional M.
func (p Problem) Weights() (control.Weights, error) {
	q, err := linalg.FromRows(p.Q)
	if err != nil {
		return control.Weights{}, fmt.Errorf("q: %w", err)
	}
	r, err := linalg.FromRows(p.R)
	if err != nil {
		return control.Weights{}, fmt.Errorf("r: %w", err)
	}
	w := control.Weights{Q: q, R: r}
	if len(p.M) > 0 {
		m, err := linalg.FromRows(p.M)
		if err != nil {
			return control.Weights{}, fmt.Errorf("m: %w", err)
		}
		w.M = m
	}
	return w, nil
}

// Matrices returns A, B and C.
func (r Riccati) Matrices() (a, b, c *mat.Dense, err error) {
	if a, err = linalg.FromRows(r.A); err != nil {
		return nil, nil, nil, fmt.Errorf("riccati.a: %w", err)
	}
	if b, err = linalg.FromRows(r.B); err != nil {
		return nil, nil, nil, fmt.Errorf("riccati.b: %w", err)
	}
	if c, err = linalg.FromRows(r.C); err != nil {
		return nil, nil, nil, fmt.Errorf("riccati.c: %w", err)
	}
	return a, b, c, nil
}

// Empty reports whether no raw equation is configured.
func (r Riccati) Empty() bool {
	return len(r.A) == 0 && len(r.B) == 0 && len(r.C) == 0
}

func (s Solver) CAREOptions(log zerolog.Logger) care.Options {
	return care.Options{
		Tolerance:         s.Tolerance,
		MaxIterations:     s.MaxIterations,
		SymmetryTolerance: s.SymmetryTolerance,
		Shift:             s.Shift,
		PinvTolerance:     s.PinvTolerance,
		Bounds:            s.StepBounds,
		Logger:            log,
	}
}

func (s Solver) ControlOptions(log zerolog.Logger) control.Options {
	return control.Options{
		Check:               s.Check,
		PositivityTolerance: s.PositivityTolerance,
		PinvTolerance:       s.PinvTolerance,
		CARE:                s.CAREOptions(log),
		Logger:              log,
	}
}

func (s Simulation) DynamoConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = s.Dt
	cfg.Duration = s.Duration
	return cfg
}
