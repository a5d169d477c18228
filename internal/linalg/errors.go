package linalg

import "errors"

var (
	// ErrInvalidDimension indicates mismatched or empty matrix shapes.
	ErrInvalidDimension = errors.New("linalg: invalid matrix dimension")

	// ErrNoConvergence indicates the QR iteration behind a Schur or eigen
	// factorization did not converge.
	ErrNoConvergence = errors.New("linalg: factorization did not converge")
)
