package ml

import (
	"fmt"
	"math/rand/v2"

	"github.com/b0tShaman/tensornet/tensor"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dense is a fully connected layer: Y = X·W + b.
type Dense[T constraints.Float] struct {
	weights *Matrix[T] // in x out
	biases  *Matrix[T] // 1 x out

	dW *Matrix[T]
	db *Matrix[T]

	// Forward State
	input *Matrix[T]
}

// NewDense creates an in x out layer with N(0, stdDev²) weights and zero biases.
func NewDense[T constraints.Float](in, out int, opts ...DenseOption) (*Dense[T], error) {
	cfg := denseConfig{seed: DefaultSeed, stdDev: DefaultStdDev}
	for _, opt := range opts {
		opt(&cfg)
	}

	weights, err := tensor.New[T, tensor.R2](tensor.Shape{in, out})
	if err != nil {
		return nil, fmt.Errorf("dense %dx%d: %w", in, out, err)
	}
	biases := tensor.MustNew[T, tensor.R2](tensor.Shape{1, out})

	randomizeNormal(weights, cfg.seed, cfg.stdDev)

	return &Dense[T]{
		weights: weights,
		biases:  biases,
		dW:      tensor.MustNew[T, tensor.R2](tensor.Shape{in, out}),
		db:      tensor.MustNew[T, tensor.R2](tensor.Shape{1, out}),
	}, nil
}

// MustDense is like NewDense but panics on error.
func MustDense[T constraints.Float](in, out int, opts ...DenseOption) *Dense[T] {
	d, err := NewDense[T](in, out, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// randomizeNormal fills m in row-major order from its own seeded stream, so
// two layers built with the same seed draw the same numbers.
func randomizeNormal[T constraints.Float](m *Matrix[T], seed uint64, stdDev float64) {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: stdDev,
		Src:   rand.NewPCG(seed, seed),
	}
	data := m.Data()
	for i := range data {
		data[i] = T(dist.Rand())
	}
}

func (d *Dense[T]) Kind() LayerKind { return KindDense }

// Forward caches x and returns x·W + b, the bias row broadcast over the batch.
func (d *Dense[T]) Forward(x *Matrix[T]) (*Matrix[T], error) {
	z, err := tensor.MatMul(x, d.weights)
	if err != nil {
		return nil, fmt.Errorf("dense forward: %w", err)
	}
	y, err := tensor.Add(z, d.biases)
	if err != nil {
		return nil, fmt.Errorf("dense forward: %w", err)
	}
	d.input = x.Clone()
	return y, nil
}

// Backward stores dW = Xᵀ·dY and db = Σrows(dY), and returns dX = dY·Wᵀ.
func (d *Dense[T]) Backward(grad *Matrix[T]) (*Matrix[T], error) {
	if d.input == nil {
		return nil, ErrNoForward
	}

	wT, err := tensor.Transpose(d.weights)
	if err != nil {
		return nil, err
	}
	dX, err := tensor.MatMul(grad, wT)
	if err != nil {
		return nil, fmt.Errorf("dense backward: %w", err)
	}

	xT, err := tensor.Transpose(d.input)
	if err != nil {
		return nil, err
	}
	dW, err := tensor.MatMul(xT, grad)
	if err != nil {
		return nil, fmt.Errorf("dense backward: %w", err)
	}

	d.dW = dW
	d.db = tensor.SumRows(grad)
	return dX, nil
}

// Optimize applies W ← W − lr·dW and b ← b − lr·db in place.
func (d *Dense[T]) Optimize(lr T) {
	addScaled(d.weights.Data(), -lr, d.dW.Data())
	addScaled(d.biases.Data(), -lr, d.db.Data())
}

func (d *Dense[T]) Params() []Param[T] {
	return []Param[T]{
		{Name: "weights", Value: d.weights, Grad: d.dW},
		{Name: "biases", Value: d.biases, Grad: d.db},
	}
}

// Weights returns a copy of W.
func (d *Dense[T]) Weights() *Matrix[T] { return d.weights.Clone() }

// Biases returns a copy of b.
func (d *Dense[T]) Biases() *Matrix[T] { return d.biases.Clone() }

// WeightGrad returns a copy of the last dW.
func (d *Dense[T]) WeightGrad() *Matrix[T] { return d.dW.Clone() }

// BiasGrad returns a copy of the last db.
func (d *Dense[T]) BiasGrad() *Matrix[T] { return d.db.Clone() }
