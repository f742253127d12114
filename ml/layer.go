package ml

import (
	"errors"

	"github.com/b0tShaman/tensornet/tensor"
	"golang.org/x/exp/constraints"
)

const (
	KindDense LayerKind = iota
	KindReLU
)

var layerKindNames = map[LayerKind]string{
	KindDense: "dense",
	KindReLU:  "relu",
}

var (
	// ErrNoForward is returned by Backward when no Forward pass has been cached.
	ErrNoForward = errors.New("ml: backward called before forward")

	// ErrEmptyBatch is returned when a loss is computed over zero rows.
	ErrEmptyBatch = errors.New("ml: empty batch")

	// ErrInvalidConfig is returned by TrainingConfig.Validate.
	ErrInvalidConfig = errors.New("ml: invalid training config")
)

// -------- TYPE DEFINITIONS -------- //

// Matrix is the rank-2 tensor every layer consumes and produces.
type Matrix[T constraints.Float] = tensor.Tensor[T, tensor.R2]

type LayerKind int

func (k LayerKind) String() string {
	if name, ok := layerKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Layer transforms a batch [batch x in] into [batch x out] and propagates
// dL/dOut back into dL/dIn. Backward relies on state cached by the previous
// Forward call.
type Layer[T constraints.Float] interface {
	Kind() LayerKind
	Forward(x *Matrix[T]) (*Matrix[T], error)
	Backward(grad *Matrix[T]) (*Matrix[T], error)
}

// Parametric is the capability of layers that own trainable parameters.
type Parametric[T constraints.Float] interface {
	// Optimize applies one plain gradient step in place.
	Optimize(lr T)
	// Params exposes the live parameter/gradient pairs. Writes through
	// Value.Data() update the layer.
	Params() []Param[T]
}

// Param pairs a trainable tensor with the gradient of its last backward pass.
type Param[T constraints.Float] struct {
	Name  string
	Value *Matrix[T]
	Grad  *Matrix[T]
}

// ------- LAYER CONFIG HELPERS ------- //

const (
	DefaultSeed   uint64  = 42
	DefaultStdDev float64 = 0.1
)

type DenseOption func(*denseConfig)

type denseConfig struct {
	seed   uint64
	stdDev float64
}

// WithSeed sets the seed of the layer's private weight initialisation stream.
func WithSeed(seed uint64) DenseOption {
	return func(c *denseConfig) {
		c.seed = seed
	}
}

// WithStdDev sets the standard deviation of the initial weights.
func WithStdDev(stdDev float64) DenseOption {
	return func(c *denseConfig) {
		c.stdDev = stdDev
	}
}

func Relu[T constraints.Float](x T) T {
	if x > 0 {
		return x
	}
	return 0
}

func ReluDerivative[T constraints.Float](x T) T {
	if x > 0 {
		return 1
	}
	return 0
}
