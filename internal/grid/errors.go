package grid

import "errors"

var (
	// ErrInvalidGrid indicates zero or mismatched dimensions, or samples a
	// computation cannot accept.
	ErrInvalidGrid = errors.New("grid: invalid grid")
	// ErrInvalidSeed indicates a seed index outside the grid bounds.
	ErrInvalidSeed = errors.New("grid: seed outside grid bounds")
	// ErrInvalidParameter indicates an out-of-range algorithm parameter.
	ErrInvalidParameter = errors.New("grid: invalid parameter")
	// ErrNumericDivergence indicates an iterative filter produced non-finite values.
	ErrNumericDivergence = errors.New("grid: numeric divergence")
)
