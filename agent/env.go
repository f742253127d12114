package agent

import "fmt"

const (
	Down Action = -1
	Stay Action = 0
	Up   Action = +1
)

// Action moves the paddle by one unit step.
type Action int

func (a Action) String() string {
	switch a {
	case Down:
		return "down"
	case Stay:
		return "stay"
	case Up:
		return "up"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// State is one observation of a Pong table.
type State struct {
	BallX   float32
	BallY   float32
	PaddleY float32
}

// Env is a Gym-style episodic environment.
type Env interface {
	// Reset starts a new episode and returns its first state.
	Reset() State
	// Step applies a and returns the next state, the reward for the
	// transition and whether the episode ended.
	Step(a Action) (State, float32, bool)
}

// PaddleEnv is a minimal environment: the ball stays put, the paddle moves
// by PaddleStep per action and any move is rewarded with 1. The episode
// ends after MaxSteps steps, or never if MaxSteps is 0.
type PaddleEnv struct {
	Start      State
	PaddleStep float32
	MaxSteps   int

	state State
	steps int
}

func NewPaddleEnv(start State) *PaddleEnv {
	return &PaddleEnv{Start: start, PaddleStep: 0.1}
}

func (e *PaddleEnv) Reset() State {
	e.state = e.Start
	e.steps = 0
	return e.state
}

func (e *PaddleEnv) Step(a Action) (State, float32, bool) {
	e.steps++
	e.state.PaddleY += float32(a) * e.PaddleStep

	var reward float32
	if a != Stay {
		reward = 1
	}
	done := e.MaxSteps > 0 && e.steps >= e.MaxSteps
	return e.state, reward, done
}
