package ml

import (
	"fmt"

	"github.com/b0tShaman/tensornet/tensor"
	"golang.org/x/exp/constraints"
)

// Threshold maps each element to 1 if it is above threshold, else 0.
func Threshold[T constraints.Float](m *Matrix[T], threshold T) *Matrix[T] {
	return m.Apply(func(v T) T {
		if v > threshold {
			return 1
		}
		return 0
	})
}

// Predict runs a forward pass and thresholds the output.
func Predict[T constraints.Float](nw *NeuralNetwork[T], x *Matrix[T], threshold T) (*Matrix[T], error) {
	out, err := nw.Forward(x)
	if err != nil {
		return nil, err
	}
	return Threshold(out, threshold), nil
}

// BinaryAccuracy returns the fraction of rows whose thresholded prediction
// matches the target in every column.
func BinaryAccuracy[T constraints.Float](pred, target *Matrix[T], threshold T) (float64, error) {
	if !pred.Shape().Equal(target.Shape()) {
		return 0, fmt.Errorf("accuracy: %w: pred %v, target %v",
			tensor.ErrDimensionMismatch, pred.Shape(), target.Shape())
	}
	rows, cols := pred.Shape()[0], pred.Shape()[1]
	if rows == 0 {
		return 0, ErrEmptyBatch
	}

	labels := Threshold(pred, threshold).Data()
	want := target.Data()

	correct := 0
	for r := 0; r < rows; r++ {
		match := true
		for c := 0; c < cols; c++ {
			if labels[r*cols+c] != want[r*cols+c] {
				match = false
				break
			}
		}
		if match {
			correct++
		}
	}
	return float64(correct) / float64(rows), nil
}
