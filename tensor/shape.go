package tensor

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Numeric is the element constraint for tensors.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// Rank fixes the number of axes of a tensor at the type level.
type Rank interface {
	Rank() int
}

type (
	R1 struct{}
	R2 struct{}
	R3 struct{}
	R4 struct{}
)

func (R1) Rank() int { return 1 }
func (R2) Rank() int { return 2 }
func (R3) Rank() int { return 3 }
func (R4) Rank() int { return 4 }

func rankOf[R Rank]() int {
	var r R
	return r.Rank()
}

// Shape represents the extent of every axis, outermost first.
type Shape []int

// Index addresses a single element, one coordinate per axis.
type Index []int

// NumElements returns the product of all extents.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Strides calculates row-major strides: stride[i] is the product of all extents after i.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes applies the NumPy rule axis by axis: extents must be equal
// or one of them must be 1, and the result takes the larger one.
//
//	(1, 5) + (3, 5) → (3, 5)
//	(3, 1) + (1, 4) → (3, 4)
//	(3, 4) + (3, 5) → error
func BroadcastShapes(a, b Shape) (Shape, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: cannot broadcast rank %d with rank %d", ErrDimensionMismatch, len(a), len(b))
	}

	result := make(Shape, len(a))
	for i := range a {
		switch {
		case a[i] == b[i]:
			result[i] = a[i]
		case a[i] == 1:
			result[i] = b[i]
		case b[i] == 1:
			result[i] = a[i]
		default:
			return nil, fmt.Errorf("%w: %v vs %v (axis %d: %d vs %d)", ErrBroadcast, a, b, i, a[i], b[i])
		}
	}
	return result, nil
}

func checkShape(shape Shape, rank int) error {
	if len(shape) != rank {
		return fmt.Errorf("%w: got %d extents for a rank-%d tensor", ErrDimensionMismatch, len(shape), rank)
	}
	for i, dim := range shape {
		if dim < 0 {
			return fmt.Errorf("%w: negative extent %d on axis %d", ErrDimensionMismatch, dim, i)
		}
	}
	return nil
}
