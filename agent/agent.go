package agent

import (
	"errors"
	"fmt"

	"github.com/b0tShaman/tensornet/tensor"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// Output bands of the policy: above UpThreshold moves up, below
// DownThreshold moves down, anything in between stays.
const (
	UpThreshold   = 0.5
	DownThreshold = -0.5
)

var ErrNilModel = errors.New("agent: nil model")

// Predictor maps a batch of states [batch x 3] to scores [batch x 1].
// *ml.NeuralNetwork satisfies it.
type Predictor[T constraints.Float] interface {
	Forward(x *tensor.Tensor[T, tensor.R2]) (*tensor.Tensor[T, tensor.R2], error)
}

// PongAgent picks paddle moves from a trained model. It never trains the
// model and holds no state between calls.
type PongAgent[T constraints.Float] struct {
	model Predictor[T]
}

func NewPongAgent[T constraints.Float](model Predictor[T]) (*PongAgent[T], error) {
	if model == nil {
		return nil, ErrNilModel
	}
	return &PongAgent[T]{model: model}, nil
}

// Act runs one forward pass over {BallX, BallY, PaddleY} and thresholds the
// first output.
func (a *PongAgent[T]) Act(s State) (Action, error) {
	input := tensor.MustFromSlice[T, tensor.R2](tensor.Shape{1, 3}, []T{
		T(s.BallX), T(s.BallY), T(s.PaddleY),
	})
	out, err := a.model.Forward(input)
	if err != nil {
		return Stay, fmt.Errorf("agent act: %w", err)
	}
	v, err := out.At(tensor.Index{0, 0})
	if err != nil {
		return Stay, fmt.Errorf("agent act: %w", err)
	}
	return Decide(v), nil
}

// Decide maps a model score to an action.
func Decide[T constraints.Float](v T) Action {
	switch {
	case v > UpThreshold:
		return Up
	case v < DownThreshold:
		return Down
	}
	return Stay
}

// PlayEpisode resets env and lets agent act until the episode ends or
// maxSteps steps have been taken. maxSteps <= 0 means no limit. It returns
// the summed reward and the number of steps.
func PlayEpisode[T constraints.Float](env Env, agent *PongAgent[T], maxSteps int) (float32, int, error) {
	state := env.Reset()

	var total float32
	steps := 0
	for maxSteps <= 0 || steps < maxSteps {
		action, err := agent.Act(state)
		if err != nil {
			return total, steps, fmt.Errorf("step %d: %w", steps, err)
		}

		next, reward, done := env.Step(action)
		steps++
		total += reward
		klog.V(3).Infof("Step %d | State: %+v | Action: %s | Reward: %.2f", steps, state, action, reward)

		state = next
		if done {
			break
		}
	}

	klog.V(1).Infof("Episode finished. Steps: %d | Reward: %.2f", steps, total)
	return total, steps, nil
}
