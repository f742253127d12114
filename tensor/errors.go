package tensor

import "errors"

var (
	// ErrDimensionMismatch is returned when an extent or index count does not
	// match the tensor rank, or when matrix contraction extents differ.
	ErrDimensionMismatch = errors.New("tensor: dimension mismatch")

	// ErrSizeMismatch is returned when a bulk assignment does not cover the
	// logical size exactly.
	ErrSizeMismatch = errors.New("tensor: size mismatch")

	// ErrBroadcast is returned when two shapes are not broadcast compatible.
	ErrBroadcast = errors.New("tensor: shapes not compatible for broadcasting")

	// ErrRank is returned by operations that need at least two axes.
	ErrRank = errors.New("tensor: rank too low")

	// ErrBatchMismatch is returned when batched operands disagree on the batch extent.
	ErrBatchMismatch = errors.New("tensor: batch mismatch")

	// ErrOutOfRange is returned when an index falls outside its axis.
	ErrOutOfRange = errors.New("tensor: index out of range")
)
