package care

import (
	"github.com/rs/zerolog"
	"github.com/san-kum/riccati/internal/linalg"
	"github.com/san-kum/riccati/internal/linesearch"
)

const (
	DefaultTolerance         = 1e-5
	DefaultMaxIterations     = 20
	DefaultSymmetryTolerance = 1e-12
	DefaultShift             = 0.5
)

// Options are the solver policy knobs. Zero fields take the defaults.
type Options struct {
	// Tolerance bounds the Frobenius norm of the Riccati residual.
	Tolerance float64
	// MaxIterations caps the Newton steps.
	MaxIterations int
	// SymmetryTolerance triggers the symmetrizing correction of the
	// initial guess.
	SymmetryTolerance float64
	// Shift is added past the leftmost eigenvalue of A when building the
	// initial guess.
	Shift float64
	// PinvTolerance is the singular value cutoff for pseudo-inverses.
	PinvTolerance float64
	// Bounds limits the line search step.
	Bounds linesearch.Bounds
	// Logger receives per-iteration diagnostics. The zero value is silent.
	Logger zerolog.Logger
}

// DefaultOptions returns the stock policy with a silent logger.
func DefaultOptions() Options {
	return Options{
		Tolerance:         DefaultTolerance,
		MaxIterations:     DefaultMaxIterations,
		SymmetryTolerance: DefaultSymmetryTolerance,
		Shift:             DefaultShift,
		PinvTolerance:     linalg.DefaultPinvTolerance,
		Bounds:            linesearch.DefaultBounds,
		Logger:            zerolog.Nop(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.SymmetryTolerance <= 0 {
		o.SymmetryTolerance = d.SymmetryTolerance
	}
	if o.Shift <= 0 {
		o.Shift = d.Shift
	}
	if o.PinvTolerance <= 0 {
		o.PinvTolerance = d.PinvTolerance
	}
	if o.Bounds.Upper <= o.Bounds.Lower {
		o.Bounds = d.Bounds
	}
	return o
}
