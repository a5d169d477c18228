package control

import (
	"github.com/rs/zerolog"
	"github.com/san-kum/riccati/internal/care"
	"github.com/san-kum/riccati/internal/linalg"
)

type Options struct {
	// Check enables the positivity test on Q − MR⁺Mᵗ.
	Check bool
	// PositivityTolerance is how far below zero an eigenvalue real part
	// may fall before the weighting is rejected.
	PositivityTolerance float64
	// PinvTolerance is the singular value cutoff used for R⁺.
	PinvTolerance float64
	CARE          care.Options
	Logger        zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Check:         true,
		PinvTolerance: linalg.DefaultPinvTolerance,
		CARE:          care.DefaultOptions(),
		Logger:        zerolog.Nop(),
	}
}
