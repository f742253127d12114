package ml

import (
	"fmt"

	"github.com/b0tShaman/tensornet/tensor"
	"golang.org/x/exp/constraints"
)

// ReLU passes positive activations and zeroes the rest. It has no parameters.
type ReLU[T constraints.Float] struct {
	mask *Matrix[T] // 1 where the last input was > 0
}

func NewReLU[T constraints.Float]() *ReLU[T] {
	return &ReLU[T]{}
}

func (r *ReLU[T]) Kind() LayerKind { return KindReLU }

func (r *ReLU[T]) Forward(x *Matrix[T]) (*Matrix[T], error) {
	r.mask = x.Apply(ReluDerivative[T])
	return x.Apply(Relu[T]), nil
}

// Backward zeroes the gradient wherever the cached input was not positive.
func (r *ReLU[T]) Backward(grad *Matrix[T]) (*Matrix[T], error) {
	if r.mask == nil {
		return nil, ErrNoForward
	}
	dX, err := tensor.Mul(grad, r.mask)
	if err != nil {
		return nil, fmt.Errorf("relu backward: %w", err)
	}
	return dX, nil
}
