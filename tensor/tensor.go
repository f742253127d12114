// Package tensor implements a dense, row-major tensor whose rank is fixed by
// its type, with NumPy-style broadcasting and matrix products.
package tensor

import (
	"fmt"
)

// Tensor is a dense row-major array of T with R.Rank() axes.
//
// The buffer may be larger than the logical size: Reshape keeps a grown
// buffer around so that later reshapes within the capacity do not allocate.
type Tensor[T Numeric, R Rank] struct {
	shape Shape
	data  []T // len(data) is the capacity
}

// -------- CONSTRUCTORS ------- //

// New allocates a zeroed tensor. The shape must have exactly R.Rank() extents.
func New[T Numeric, R Rank](shape Shape) (*Tensor[T, R], error) {
	if err := checkShape(shape, rankOf[R]()); err != nil {
		return nil, err
	}
	return &Tensor[T, R]{
		shape: shape.Clone(),
		data:  make([]T, shape.NumElements()),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew[T Numeric, R Rank](shape Shape) *Tensor[T, R] {
	t, err := New[T, R](shape)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSlice creates a tensor and copies values into it in row-major order.
func FromSlice[T Numeric, R Rank](shape Shape, values []T) (*Tensor[T, R], error) {
	t, err := New[T, R](shape)
	if err != nil {
		return nil, err
	}
	if err := t.Assign(values); err != nil {
		return nil, err
	}
	return t, nil
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice[T Numeric, R Rank](shape Shape, values []T) *Tensor[T, R] {
	t, err := FromSlice[T, R](shape, values)
	if err != nil {
		panic(err)
	}
	return t
}

// -------- ACCESSORS ------- //

// Rank returns the number of axes.
func (t *Tensor[T, R]) Rank() int {
	return rankOf[R]()
}

// Shape returns a copy of the extents.
func (t *Tensor[T, R]) Shape() Shape {
	return t.shape.Clone()
}

// Size returns the logical number of elements.
func (t *Tensor[T, R]) Size() int {
	if len(t.shape) == 0 {
		return 0
	}
	return t.shape.NumElements()
}

// Cap returns the buffer capacity, which is never below Size.
func (t *Tensor[T, R]) Cap() int {
	return len(t.data)
}

// Strides returns the row-major strides of the current shape.
func (t *Tensor[T, R]) Strides() []int {
	return t.shape.Strides()
}

// Data returns the logical elements in row-major order.
// The slice aliases the tensor buffer.
func (t *Tensor[T, R]) Data() []T {
	return t.data[:t.Size()]
}

func (t *Tensor[T, R]) offset(idx Index) (int, error) {
	if len(idx) != rankOf[R]() {
		return 0, fmt.Errorf("%w: got %d indices for a rank-%d tensor", ErrDimensionMismatch, len(idx), rankOf[R]())
	}
	off := 0
	stride := 1
	for d := len(idx) - 1; d >= 0; d-- {
		if idx[d] < 0 || idx[d] >= t.shape[d] {
			return 0, fmt.Errorf("%w: index %d on axis %d (extent %d)", ErrOutOfRange, idx[d], d, t.shape[d])
		}
		off += idx[d] * stride
		stride *= t.shape[d]
	}
	return off, nil
}

// At returns the element at idx.
func (t *Tensor[T, R]) At(idx Index) (T, error) {
	off, err := t.offset(idx)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.data[off], nil
}

// Set stores v at idx.
func (t *Tensor[T, R]) Set(idx Index, v T) error {
	off, err := t.offset(idx)
	if err != nil {
		return err
	}
	t.data[off] = v
	return nil
}

// -------- MUTATORS ------- //

// Fill sets every logical element to v.
func (t *Tensor[T, R]) Fill(v T) {
	data := t.Data()
	for i := range data {
		data[i] = v
	}
}

// Assign copies values positionally in row-major order.
func (t *Tensor[T, R]) Assign(values []T) error {
	if len(values) != t.Size() {
		return fmt.Errorf("%w: %d values for %d elements", ErrSizeMismatch, len(values), t.Size())
	}
	copy(t.data, values)
	return nil
}

// Reshape replaces the extents.
//
// When the new size exceeds the capacity the buffer is reallocated, the old
// logical elements are kept as its prefix and the remainder is zeroed.
// Otherwise the buffer is reinterpreted as is: nothing is remapped, so
// elements left behind by an earlier, larger shape become visible again.
func (t *Tensor[T, R]) Reshape(shape Shape) error {
	if err := checkShape(shape, rankOf[R]()); err != nil {
		return err
	}
	size := shape.NumElements()
	if size > len(t.data) {
		grown := make([]T, size)
		copy(grown, t.Data())
		t.data = grown
	}
	t.shape = shape.Clone()
	return nil
}

// Clone returns an independent copy holding exactly the logical elements.
func (t *Tensor[T, R]) Clone() *Tensor[T, R] {
	data := make([]T, t.Size())
	copy(data, t.data)
	return &Tensor[T, R]{shape: t.shape.Clone(), data: data}
}

// Move hands the buffer over to a new tensor and leaves t empty: every extent
// zero and no buffer.
func (t *Tensor[T, R]) Move() *Tensor[T, R] {
	moved := &Tensor[T, R]{shape: t.shape, data: t.data}
	t.shape = make(Shape, rankOf[R]())
	t.data = nil
	return moved
}
