package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/b0tShaman/tensornet/agent"
	"github.com/b0tShaman/tensornet/data"
	"github.com/b0tShaman/tensornet/ml"
	"github.com/b0tShaman/tensornet/tensor"
	"k8s.io/klog/v2"
)

type options struct {
	Epochs       int
	LearningRate float64
	Optimizer    string
	DataPath     string
	TargetCols   int
	Hidden       int
}

// -------- MAIN -------- //
func main() {
	opts := options{}
	klog.InitFlags(nil)
	flag.IntVar(&opts.Epochs, "epochs", 2000, "training epochs")
	flag.Float64Var(&opts.LearningRate, "lr", 0.1, "learning rate")
	flag.StringVar(&opts.Optimizer, "optimizer", string(ml.OptSGD), "sgd, momentum or adam")
	flag.StringVar(&opts.DataPath, "data", "", "optional numeric CSV to train on instead of XOR")
	flag.IntVar(&opts.TargetCols, "targets", 1, "number of trailing target columns in -data")
	flag.IntVar(&opts.Hidden, "hidden", 4, "hidden layer width")
	_ = flag.Set("v", "1")
	flag.Parse()
	defer klog.Flush()

	ctx := context.Background()
	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		klog.Flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	log := klog.FromContext(ctx)

	// 1. Tensor Demo
	fmt.Fprintln(out, "=== Tensor Demo ===")
	t, err := tensor.New[float64, tensor.R2](tensor.Shape{2, 3})
	if err != nil {
		return err
	}
	t.Fill(5)
	fmt.Fprintf(out, "2x3 filled with 5:\n%v\n", t)
	if err := t.Reshape(tensor.Shape{3, 2}); err != nil {
		return fmt.Errorf("reshape: %w", err)
	}
	fmt.Fprintf(out, "reshaped to 3x2:\n%v\n\n", t)

	// 2. Load Data
	x, y := data.XOR[float64]()
	if opts.DataPath != "" {
		log.Info("Loading dataset", "path", opts.DataPath)
		x, y, err = data.LoadCSVFile[float64](opts.DataPath, opts.TargetCols)
		if err != nil {
			return fmt.Errorf("loading %q: %w", opts.DataPath, err)
		}
	}
	inputDim, outputDim := x.Shape()[1], y.Shape()[1]
	log.Info("Loaded dataset", "samples", x.Shape()[0], "features", inputDim, "targets", outputDim)

	// 3. Initialize Network
	first, err := ml.NewDense[float64](inputDim, opts.Hidden)
	if err != nil {
		return err
	}
	second, err := ml.NewDense[float64](opts.Hidden, outputDim)
	if err != nil {
		return err
	}
	nw := ml.NewNetwork[float64](first, ml.NewReLU[float64](), second)

	// 4. Configure & Train
	fmt.Fprintln(out, "=== Training ===")
	config := ml.TrainingConfig{
		Epochs:       opts.Epochs,
		LearningRate: opts.LearningRate,
		Optimizer:    ml.OptimizerType(opts.Optimizer),
	}
	loss, err := ml.Train(nw, x, y, config)
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}

	pred, err := nw.Forward(x)
	if err != nil {
		return err
	}
	acc, err := ml.BinaryAccuracy(pred, y, 0.5)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Final loss: %.6f | Accuracy: %.2f\n", loss, acc)
	fmt.Fprintf(out, "Predictions:\n%v\n\n", pred)

	// 5. Agent Demo
	fmt.Fprintln(out, "=== PongAgent Demo ===")
	policy := ml.NewNetwork[float32](
		ml.MustDense[float32](3, 4),
		ml.NewReLU[float32](),
		ml.MustDense[float32](4, 1),
	)
	pong, err := agent.NewPongAgent[float32](policy)
	if err != nil {
		return err
	}
	env := agent.NewPaddleEnv(agent.State{})
	env.MaxSteps = 1
	reward, steps, err := agent.PlayEpisode(env, pong, 1)
	if err != nil {
		return fmt.Errorf("playing episode: %w", err)
	}
	fmt.Fprintf(out, "Agent played %d step(s), reward: %.1f\n", steps, reward)
	return nil
}
