package dynamo

import "errors"

var (
	// ErrInvalidConfig is returned for non-positive dt or duration.
	ErrInvalidConfig = errors.New("dynamo: invalid simulation config")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	ErrDiverged = errors.New("dynamo: state diverged")
)
