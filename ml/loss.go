package ml

import (
	"fmt"

	"github.com/b0tShaman/tensornet/tensor"
	"golang.org/x/exp/constraints"
)

// MSELoss is the squared error summed over every element and divided by the
// batch size (row count), not by the element count. The gradient follows the
// same scaling.
type MSELoss[T constraints.Float] struct {
	pred   *Matrix[T]
	target *Matrix[T]
}

// Forward caches both operands and returns Σ(pred − target)² / rows.
func (l *MSELoss[T]) Forward(pred, target *Matrix[T]) (T, error) {
	rows := pred.Shape()[0]
	if rows == 0 {
		return 0, ErrEmptyBatch
	}
	diff, err := tensor.Sub(pred, target)
	if err != nil {
		return 0, fmt.Errorf("mse: %w", err)
	}
	sq, err := tensor.Mul(diff, diff)
	if err != nil {
		return 0, fmt.Errorf("mse: %w", err)
	}

	l.pred = pred.Clone()
	l.target = target.Clone()
	return sq.Sum() / T(rows), nil
}

// Backward returns dL/dPred = 2·(pred − target) / rows.
func (l *MSELoss[T]) Backward() (*Matrix[T], error) {
	if l.pred == nil {
		return nil, ErrNoForward
	}
	diff, err := tensor.Sub(l.pred, l.target)
	if err != nil {
		return nil, fmt.Errorf("mse: %w", err)
	}
	rows := l.pred.Shape()[0]
	return diff.MulScalar(2 / T(rows)), nil
}
