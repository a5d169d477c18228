package config

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultVariant is used when a preset name has no "/variant" suffix.
const DefaultVariant = "default"

const (
	gravity = 9.81
	length  = 1.0
)

// Presets maps model → variant → constructor. Constructors return fresh
// configs so callers may edit them.
var Presets = map[string]map[string]func() *Config{
	"double_integrator": {
		"default": func() *Config { return withProblem(doubleIntegrator(1), []float64{1, 0}, 20) },
		"cheap":   func() *Config { return withProblem(doubleIntegrator(0.01), []float64{1, 0}, 10) },
		"costly":  func() *Config { return withProblem(doubleIntegrator(100), []float64{1, 0}, 40) },
	},
	"pendulum": {
		"default": func() *Config { return withProblem(pendulum(), []float64{0.2, 0}, 10) },
		"recover": func() *Config { return withProblem(pendulum(), []float64{0.8, -1}, 10) },
	},
	"cartpole": {
		"default": func() *Config { return withProblem(cartpole(), []float64{0, 0, 0.1, 0}, 30) },
		"recover": func() *Config { return withProblem(cartpole(), []float64{0.5, 0, 0.3, 0}, 30) },
	},
	"spring_mass": {
		"default": func() *Config { return withProblem(springMass(), []float64{2, 0}, 20) },
	},
	"scalar": {
		"default":  func() *Config { return withProblem(scalar(-1), []float64{1}, 10) },
		"unstable": func() *Config { return withProblem(scalar(1), []float64{1}, 10) },
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	build, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the sorted variants of model, or nil if unknown.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Models returns the sorted model names.
func Models() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup resolves "model" or "model/variant".
func Lookup(name string) (*Config, error) {
	model, variant, ok := strings.Cut(name, "/")
	if !ok {
		variant = DefaultVariant
	}
	cfg := GetPreset(model, variant)
	if cfg == nil {
		return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
	return cfg, nil
}

func withProblem(p Problem, x0 []float64, duration float64) *Config {
	cfg := DefaultConfig()
	cfg.Problem = p
	cfg.Simulation.InitialState = x0
	cfg.Simulation.Duration = duration
	return cfg
}

func identity(n int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		rows[i][i] = 1
	}
	return rows
}

func doubleIntegrator(r float64) Problem {
	return Problem{
		Name: "double_integrator",
		F:    [][]float64{{0, 1}, {0, 0}},
		G:    [][]float64{{0}, {1}},
		Q:    identity(2),
		R:    [][]float64{{r}},
	}
}

// pendulum is linearized about the upright position.
func pendulum() Problem {
	return Problem{
		Name: "pendulum",
		F:    [][]float64{{0, 1}, {gravity / length, 0}},
		G:    [][]float64{{0}, {1}},
		Q:    [][]float64{{10, 0}, {0, 1}},
		R:    [][]float64{{1}},
	}
}

// cartpole is linearized about the upright pole; the state is
// (position, velocity, angle, angular rate).
func cartpole() Problem {
	return Problem{
		Name: "cartpole",
		F: [][]float64{
			{0, 1, 0, 0},
			{0, 0, -0.981, 0},
			{0, 0, 0, 1},
			{0, 0, 21.582, 0},
		},
		G: [][]float64{{0}, {1}, {0}, {-2}},
		Q: [][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 10, 0}, {0, 0, 0, 1}},
		R: [][]float64{{1}},
	}
}

func springMass() Problem {
	return Problem{
		Name: "spring_mass",
		F:    [][]float64{{0, 1}, {-1, -0.1}},
		G:    [][]float64{{0}, {1}},
		Q:    identity(2),
		R:    [][]float64{{1}},
	}
}

func scalar(a float64) Problem {
	return Problem{
		Name: "scalar",
		F:    [][]float64{{a}},
		G:    [][]float64{{1}},
		Q:    [][]float64{{1}},
		R:    [][]float64{{1}},
	}
}
