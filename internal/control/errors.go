package control

import "errors"

var (
	// ErrNonPositiveWeighting is returned when Q − MR⁺Mᵗ has an
	// eigenvalue with negative real part.
	ErrNonPositiveWeighting = errors.New("control: weighting matrix is not positive semidefinite")

	// ErrSingularInput is a warning: R is rank deficient and its
	// pseudo-inverse dropped singular values.
	ErrSingularInput = errors.New("control: input weighting R is singular")
)
