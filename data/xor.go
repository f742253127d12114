package data

import (
	"github.com/b0tShaman/tensornet/tensor"
	"golang.org/x/exp/constraints"
)

// XOR returns the four-row truth table: X is 4x2, Y is 4x1.
func XOR[T constraints.Float]() (*tensor.Tensor[T, tensor.R2], *tensor.Tensor[T, tensor.R2]) {
	x := tensor.MustFromSlice[T, tensor.R2](tensor.Shape{4, 2}, []T{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := tensor.MustFromSlice[T, tensor.R2](tensor.Shape{4, 1}, []T{0, 1, 1, 0})
	return x, y
}

// Flatten packs equal-length rows into one row-major slice.
func Flatten(input [][]float64) []float64 {
	if len(input) == 0 {
		return nil
	}
	rows, cols := len(input), len(input[0])
	flat := make([]float64, rows*cols)
	for i, row := range input {
		copy(flat[i*cols:], row)
	}
	return flat
}
