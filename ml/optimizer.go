package ml

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

const (
	OptSGD      OptimizerType = "sgd"
	OptMomentum OptimizerType = "momentum"
	OptAdam     OptimizerType = "adam"
)

// Default settings generally recommended for Adam
var DefaultAdamConfig = AdamConfig{
	Beta1:        0.9,
	Beta2:        0.999,
	Epsilon:      1e-8,
	LearningRate: 0.001,
}

type OptimizerType string
type AdamConfig struct {
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	LearningRate float64
}

// Optimizer applies one parameter update from the gradients stored by the
// last Backward call.
type Optimizer[T constraints.Float] interface {
	Update(nw *NeuralNetwork[T])
}

type SGDOptimizer[T constraints.Float] struct {
	LearningRate float64
}

type MomentumOptimizer[T constraints.Float] struct {
	LearningRate float64
	Mu           float64 // Momentum Factor (usually 0.9)

	// velocity per layer, per param
	velocities [][][]T
}

type AdamOptimizer[T constraints.Float] struct {
	cfg      AdamConfig
	m, v     [][][]T
	timeStep int // 't' in the Adam paper, tracks number of updates
}

func NewOptimizer[T constraints.Float](nw *NeuralNetwork[T], cfg TrainingConfig) Optimizer[T] {
	cfg = cfg.withDefaults()
	switch cfg.Optimizer {
	case OptAdam:
		return NewAdamOptimizer(nw, AdamConfig{
			Beta1:        cfg.AdamBeta1,
			Beta2:        cfg.AdamBeta2,
			Epsilon:      cfg.AdamEps,
			LearningRate: cfg.LearningRate,
		})
	case OptMomentum:
		return NewMomentumOptimizer(nw, cfg.LearningRate, cfg.MomentumMu)
	default:
		return &SGDOptimizer[T]{LearningRate: cfg.LearningRate}
	}
}

func NewMomentumOptimizer[T constraints.Float](nw *NeuralNetwork[T], lr, mu float64) *MomentumOptimizer[T] {
	if mu == 0 {
		mu = 0.9
	} // Default
	return &MomentumOptimizer[T]{
		LearningRate: lr,
		Mu:           mu,
		velocities:   newParamState(nw),
	}
}

func NewAdamOptimizer[T constraints.Float](nw *NeuralNetwork[T], cfg AdamConfig) *AdamOptimizer[T] {
	return &AdamOptimizer[T]{
		cfg: cfg,
		m:   newParamState(nw),
		v:   newParamState(nw),
	}
}

// newParamState allocates one zeroed buffer per parameter of every
// Parametric layer. Stateless layers get a nil entry.
func newParamState[T constraints.Float](nw *NeuralNetwork[T]) [][][]T {
	state := make([][][]T, nw.Len())
	for i, layer := range nw.layers {
		p, ok := layer.(Parametric[T])
		if !ok {
			continue
		}
		params := p.Params()
		state[i] = make([][]T, len(params))
		for j, param := range params {
			state[i][j] = make([]T, param.Value.Size())
		}
	}
	return state
}

// syncState grows state when layers were added after the optimizer was built.
func syncState[T constraints.Float](state [][][]T, nw *NeuralNetwork[T]) [][][]T {
	if len(state) == nw.Len() {
		return state
	}
	fresh := newParamState(nw)
	copy(fresh, state)
	return fresh
}

// ------ SGD OPTIMIZER METHODS ------ //
func (opt *SGDOptimizer[T]) Update(nw *NeuralNetwork[T]) {
	// Simple update: W = W - (lr * gradient)
	nw.Optimize(T(opt.LearningRate))
}

// ------ MOMENTUM OPTIMIZER METHODS ------ //
func (opt *MomentumOptimizer[T]) Update(nw *NeuralNetwork[T]) {
	opt.velocities = syncState(opt.velocities, nw)

	mu, lr := T(opt.Mu), T(opt.LearningRate)

	// v = mu * v - lr * grad
	// w = w + v
	for i, layer := range nw.layers {
		p, ok := layer.(Parametric[T])
		if !ok {
			continue
		}
		for j, param := range p.Params() {
			params, grads, velocity := param.Value.Data(), param.Grad.Data(), opt.velocities[i][j]
			for k := range params {
				velocity[k] = mu*velocity[k] - lr*grads[k]
				params[k] += velocity[k]
			}
		}
	}
}

// ------ ADAM OPTIMIZER METHODS ------ //
// Update applies the Adam update rule to every parameter of the network.
func (opt *AdamOptimizer[T]) Update(nw *NeuralNetwork[T]) {
	opt.m = syncState(opt.m, nw)
	opt.v = syncState(opt.v, nw)

	opt.timeStep++
	t := float64(opt.timeStep)

	correction1 := 1.0 - math.Pow(opt.cfg.Beta1, t)
	correction2 := 1.0 - math.Pow(opt.cfg.Beta2, t)

	beta1, beta2 := opt.cfg.Beta1, opt.cfg.Beta2
	eps, lr := opt.cfg.Epsilon, opt.cfg.LearningRate

	for i, layer := range nw.layers {
		p, ok := layer.(Parametric[T])
		if !ok {
			continue
		}
		for j, param := range p.Params() {
			params, grads := param.Value.Data(), param.Grad.Data()
			m, v := opt.m[i][j], opt.v[i][j]
			for k := range params {
				g := float64(grads[k])

				// m_t = beta1 * m_{t-1} + (1 - beta1) * g
				mk := beta1*float64(m[k]) + (1.0-beta1)*g
				// v_t = beta2 * v_{t-1} + (1 - beta2) * g^2
				vk := beta2*float64(v[k]) + (1.0-beta2)*(g*g)
				m[k], v[k] = T(mk), T(vk)

				mHat := mk / correction1
				vHat := vk / correction2

				// theta = theta - lr * mHat / (sqrt(vHat) + eps)
				params[k] -= T(lr * mHat / (math.Sqrt(vHat) + eps))
			}
		}
	}
}

// addScaled performs dst += alpha*s. float64 slices go through gonum.
func addScaled[T constraints.Float](dst []T, alpha T, s []T) {
	if d, ok := any(dst).([]float64); ok {
		floats.AddScaled(d, float64(alpha), any(s).([]float64))
		return
	}
	for i, v := range s {
		dst[i] += alpha * v
	}
}
