package care

import "errors"

// ErrConvergenceNotReached is reported, never returned as a failure, when
// the iteration budget runs out before the residual meets the tolerance.
var ErrConvergenceNotReached = errors.New("care: tolerance not reached within iteration budget")
