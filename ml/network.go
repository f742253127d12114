package ml

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// NeuralNetwork is an ordered pipeline of layers trained against an MSE loss.
type NeuralNetwork[T constraints.Float] struct {
	layers    []Layer[T]
	criterion MSELoss[T]
}

// NewNetwork builds a network from layers in forward order. Adjacent layer
// shapes are not checked here; a mismatch surfaces in Forward.
func NewNetwork[T constraints.Float](layers ...Layer[T]) *NeuralNetwork[T] {
	nw := &NeuralNetwork[T]{}
	for _, l := range layers {
		nw.AddLayer(l)
	}
	return nw
}

// -------- NEURAL NETWORK METHODS -------- //

func (nw *NeuralNetwork[T]) AddLayer(l Layer[T]) {
	nw.layers = append(nw.layers, l)
}

// Layers returns the layers in forward order.
func (nw *NeuralNetwork[T]) Layers() []Layer[T] {
	out := make([]Layer[T], len(nw.layers))
	copy(out, nw.layers)
	return out
}

func (nw *NeuralNetwork[T]) Len() int {
	return len(nw.layers)
}

func (nw *NeuralNetwork[T]) Forward(input *Matrix[T]) (*Matrix[T], error) {
	if len(nw.layers) == 0 {
		return input.Clone(), nil
	}
	activation := input
	for i, layer := range nw.layers {
		out, err := layer.Forward(activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, layer.Kind(), err)
		}
		activation = out
	}
	return activation, nil
}

// Backward computes the loss of pred against target, then propagates its
// gradient through the layers in reverse order. It returns the loss.
func (nw *NeuralNetwork[T]) Backward(pred, target *Matrix[T]) (T, error) {
	loss, err := nw.criterion.Forward(pred, target)
	if err != nil {
		return 0, err
	}
	grad, err := nw.criterion.Backward()
	if err != nil {
		return 0, err
	}
	for i := len(nw.layers) - 1; i >= 0; i-- {
		layer := nw.layers[i]
		grad, err = layer.Backward(grad)
		if err != nil {
			return 0, fmt.Errorf("layer %d (%s): %w", i, layer.Kind(), err)
		}
	}
	return loss, nil
}

// Optimize steps every layer that has parameters. Stateless layers such as
// ReLU lack the Parametric capability and are skipped.
func (nw *NeuralNetwork[T]) Optimize(lr T) {
	for _, layer := range nw.layers {
		if p, ok := layer.(Parametric[T]); ok {
			p.Optimize(lr)
		}
	}
}

// Train runs epochs of forward, backward and optimize with plain gradient
// descent. There is no early stopping.
func (nw *NeuralNetwork[T]) Train(x, y *Matrix[T], epochs int, lr T) error {
	_, err := Train(nw, x, y, TrainingConfig{
		Epochs:       epochs,
		LearningRate: float64(lr),
		Optimizer:    OptSGD,
	})
	return err
}
