package ml

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

const DefaultVerboseEvery = 500

type TrainingConfig struct {
	Epochs       int
	LearningRate float64
	VerboseEvery int // How often to log progress (in epochs)

	// Optimizer Selection
	Optimizer OptimizerType

	// Optimizer Hyperparameters (Zero values will use defaults)
	MomentumMu float64 // For Momentum (usually 0.9)
	AdamBeta1  float64 // For Adam (usually 0.9)
	AdamBeta2  float64 // For Adam (usually 0.999)
	AdamEps    float64 // For Adam (usually 1e-8)
}

// withDefaults fills zero values.
func (cfg TrainingConfig) withDefaults() TrainingConfig {
	if cfg.VerboseEvery == 0 {
		cfg.VerboseEvery = DefaultVerboseEvery
	}
	if cfg.Optimizer == "" {
		cfg.Optimizer = OptSGD
	}
	if cfg.MomentumMu == 0 {
		cfg.MomentumMu = 0.9
	}
	if cfg.AdamBeta1 == 0 {
		cfg.AdamBeta1 = DefaultAdamConfig.Beta1
	}
	if cfg.AdamBeta2 == 0 {
		cfg.AdamBeta2 = DefaultAdamConfig.Beta2
	}
	if cfg.AdamEps == 0 {
		cfg.AdamEps = DefaultAdamConfig.Epsilon
	}
	return cfg
}

// Validate reports the first invalid field. Zero hyperparameters are valid
// and mean "use the default".
func (cfg TrainingConfig) Validate() error {
	cfg = cfg.withDefaults()
	switch {
	case cfg.Epochs < 0:
		return fmt.Errorf("%w: negative epochs %d", ErrInvalidConfig, cfg.Epochs)
	case !(cfg.LearningRate > 0) || math.IsInf(cfg.LearningRate, 0):
		return fmt.Errorf("%w: learning rate must be positive and finite, got %v", ErrInvalidConfig, cfg.LearningRate)
	case cfg.VerboseEvery < 0:
		return fmt.Errorf("%w: negative VerboseEvery %d", ErrInvalidConfig, cfg.VerboseEvery)
	case cfg.MomentumMu < 0 || cfg.MomentumMu >= 1:
		return fmt.Errorf("%w: momentum must be in [0, 1), got %v", ErrInvalidConfig, cfg.MomentumMu)
	case cfg.AdamBeta1 < 0 || cfg.AdamBeta1 >= 1 || cfg.AdamBeta2 < 0 || cfg.AdamBeta2 >= 1:
		return fmt.Errorf("%w: adam betas must be in [0, 1), got %v, %v", ErrInvalidConfig, cfg.AdamBeta1, cfg.AdamBeta2)
	}
	switch cfg.Optimizer {
	case OptSGD, OptMomentum, OptAdam:
	default:
		return fmt.Errorf("%w: unknown optimizer %q", ErrInvalidConfig, cfg.Optimizer)
	}
	return nil
}

// Train runs cfg.Epochs iterations of forward → backward → update over the
// whole of x and y, and returns the loss of the last epoch.
func Train[T constraints.Float](nw *NeuralNetwork[T], x, y *Matrix[T], cfg TrainingConfig) (T, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	cfg = cfg.withDefaults()
	klog.V(2).Infof("TrainingConfig: %+v", cfg)

	optimizer := NewOptimizer(nw, cfg)

	start := time.Now()
	var loss T
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		pred, err := nw.Forward(x)
		if err != nil {
			return 0, fmt.Errorf("epoch %d forward: %w", epoch, err)
		}
		loss, err = nw.Backward(pred, y)
		if err != nil {
			return 0, fmt.Errorf("epoch %d backward: %w", epoch, err)
		}
		optimizer.Update(nw)

		if epoch%cfg.VerboseEvery == 0 {
			klog.V(1).Infof("Epoch %d | Loss: %.4f | Time: %v", epoch, float64(loss), time.Since(start))
		}
	}

	klog.V(1).Infof("Training Complete. Epochs: %d | Loss: %.4f | Total Time: %v", cfg.Epochs, float64(loss), time.Since(start))
	return loss, nil
}
