package pairwise

import "errors"

var ErrDimensionMismatch = errors.New("dimension mismatch")
var ErrBadShape = errors.New("bad shape")
var ErrNilMatrix = errors.New("nil matrix")
var ErrUnknownStrategy = errors.New("unknown strategy")

// ErrTooLarge is returned before any allocation when the output would not fit
// the configured element budget or overflows int.
var ErrTooLarge = errors.New("output too large")
