package imbalance

import "errors"

var (
	// ErrShapeMismatch reports neighbor-index matrices that cannot be
	// compared: differing row counts, ragged rows, or no rows at all.
	ErrShapeMismatch = errors.New("imbalance: neighbor matrix shape mismatch")

	// ErrInvalidK reports a rank order k outside [1, M1-1], where M1 is the
	// column count of the first neighbor-index matrix.
	ErrInvalidK = errors.New("imbalance: invalid rank order k")
)
