package ml

import (
	"math/rand/v2"
	"testing"

	"github.com/b0tShaman/tensornet/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

// --- Helpers ---

func matrix(rows, cols int, vals ...float64) *Matrix[float64] {
	return tensor.MustFromSlice[float64, tensor.R2](tensor.Shape{rows, cols}, vals)
}

func randomInput(rng *rand.Rand, rows, cols int) *Matrix[float64] {
	vals := make([]float64, rows*cols)
	for i := range vals {
		vals[i] = rng.Float64()*2 - 1
	}
	return matrix(rows, cols, vals...)
}

func xorData() (*Matrix[float64], *Matrix[float64]) {
	x := matrix(4, 2,
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	)
	y := matrix(4, 1, 0, 1, 1, 0)
	return x, y
}

func xorNetwork() *NeuralNetwork[float64] {
	return NewNetwork[float64](
		MustDense[float64](2, 4),
		NewReLU[float64](),
		MustDense[float64](4, 1),
	)
}

func initialLoss(t *testing.T, nw *NeuralNetwork[float64], x, y *Matrix[float64]) float64 {
	t.Helper()
	pred, err := nw.Forward(x)
	require.NoError(t, err)
	var crit MSELoss[float64]
	loss, err := crit.Forward(pred, y)
	require.NoError(t, err)
	return loss
}

// --- 1. Layers ---

func TestReLU(t *testing.T) {
	r := NewReLU[float64]()
	assert.Equal(t, KindReLU, r.Kind())
	assert.Equal(t, "relu", r.Kind().String())

	out, err := r.Forward(matrix(1, 3, -1, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 2}, out.Data())

	dX, err := r.Backward(matrix(1, 3, 1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, dX.Data())
}

func TestDenseShapes(t *testing.T) {
	d, err := NewDense[float64](3, 2)
	require.NoError(t, err)
	assert.Equal(t, KindDense, d.Kind())
	assert.Equal(t, tensor.Shape{3, 2}, d.Weights().Shape())
	assert.Equal(t, []float64{0, 0}, d.Biases().Data())

	rng := rand.New(rand.NewPCG(1, 2))
	out, err := d.Forward(randomInput(rng, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 2}, out.Shape())

	dX, err := d.Backward(randomInput(rng, 4, 2))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 3}, dX.Shape())
	assert.Equal(t, tensor.Shape{3, 2}, d.WeightGrad().Shape())
	assert.Equal(t, tensor.Shape{1, 2}, d.BiasGrad().Shape())
}

func TestDenseInvalidSize(t *testing.T) {
	_, err := NewDense[float64](-1, 2)
	assert.ErrorIs(t, err, tensor.ErrDimensionMismatch)
}

func TestDenseSeeding(t *testing.T) {
	a := MustDense[float64](2, 3)
	b := MustDense[float64](2, 3)
	assert.Equal(t, a.Weights().Data(), b.Weights().Data())

	c := MustDense[float64](2, 3, WithSeed(7))
	assert.NotEqual(t, a.Weights().Data(), c.Weights().Data())

	flat := MustDense[float64](2, 3, WithStdDev(0))
	assert.Equal(t, make([]float64, 6), flat.Weights().Data())
}

func TestDenseForwardValues(t *testing.T) {
	d := MustDense[float64](2, 2)
	w := d.Params()[0].Value.Data()
	copy(w, []float64{1, 2, 3, 4})
	copy(d.Params()[1].Value.Data(), []float64{10, 20})

	out, err := d.Forward(matrix(2, 2, 1, 0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 13, 24}, out.Data())
}

// Analytic gradients agree with central differences over the loss.
func TestDenseGradientCheck(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	first := MustDense[float64](3, 4, WithStdDev(0.5))
	second := MustDense[float64](4, 2, WithSeed(9), WithStdDev(0.5))
	nw := NewNetwork[float64](first, second)

	x := randomInput(rng, 5, 3)
	y := randomInput(rng, 5, 2)

	for _, p := range first.Params() {
		live := p.Value.Data()
		start := append([]float64(nil), live...)

		f := func(v []float64) float64 {
			copy(live, v)
			pred, err := nw.Forward(x)
			require.NoError(t, err)
			var crit MSELoss[float64]
			loss, err := crit.Forward(pred, y)
			require.NoError(t, err)
			return loss
		}
		numeric := fd.Gradient(nil, f, start, &fd.Settings{Formula: fd.Central})
		copy(live, start)

		pred, err := nw.Forward(x)
		require.NoError(t, err)
		_, err = nw.Backward(pred, y)
		require.NoError(t, err)

		var analytic []float64
		for _, q := range first.Params() {
			if q.Name == p.Name {
				analytic = q.Grad.Data()
			}
		}
		assert.InDeltaSlice(t, numeric, analytic, 1e-6, p.Name)
	}
}

func TestBackwardBeforeForward(t *testing.T) {
	_, err := MustDense[float64](2, 2).Backward(matrix(1, 2, 1, 1))
	assert.ErrorIs(t, err, ErrNoForward)

	_, err = NewReLU[float64]().Backward(matrix(1, 2, 1, 1))
	assert.ErrorIs(t, err, ErrNoForward)

	var crit MSELoss[float64]
	_, err = crit.Backward()
	assert.ErrorIs(t, err, ErrNoForward)
}

// --- 2. Loss ---

func TestMSELoss(t *testing.T) {
	var crit MSELoss[float64]
	loss, err := crit.Forward(matrix(2, 1, 1, 2), matrix(2, 1, 1, 0))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, loss, 1e-12)

	grad, err := crit.Backward()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 2}, grad.Data(), 1e-12)
}

func TestMSELossErrors(t *testing.T) {
	var crit MSELoss[float64]
	empty := tensor.MustNew[float64, tensor.R2](tensor.Shape{0, 1})
	_, err := crit.Forward(empty, empty)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = crit.Forward(matrix(2, 1, 1, 2), matrix(3, 1, 1, 2, 3))
	assert.ErrorIs(t, err, tensor.ErrBroadcast)
}

// --- 3. Network ---

func TestNetworkEmptyForward(t *testing.T) {
	nw := NewNetwork[float64]()
	x := matrix(1, 2, 3, 4)
	out, err := nw.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, x.Data(), out.Data())
	assert.Equal(t, 0, nw.Len())
}

func TestNetworkShapeMismatch(t *testing.T) {
	nw := xorNetwork()
	_, err := nw.Forward(matrix(1, 3, 1, 2, 3))
	assert.ErrorIs(t, err, tensor.ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "layer 0 (dense)")
}

func TestNetworkOptimizeSkipsReLU(t *testing.T) {
	d := MustDense[float64](2, 1, WithStdDev(0.5))
	nw := NewNetwork[float64](d, NewReLU[float64]())
	nw.AddLayer(NewReLU[float64]())
	require.Len(t, nw.Layers(), 3)

	x, y := matrix(1, 2, 1, 2), matrix(1, 1, 5)
	pred, err := nw.Forward(x)
	require.NoError(t, err)
	_, err = nw.Backward(pred, y)
	require.NoError(t, err)

	before, grad := d.Weights().Data(), d.WeightGrad().Data()
	nw.Optimize(0.1)
	after := d.Weights().Data()
	for i := range before {
		assert.InDelta(t, before[i]-0.1*grad[i], after[i], 1e-12)
	}
}

func TestTrainXOR(t *testing.T) {
	x, y := xorData()
	nw := xorNetwork()

	require.NoError(t, nw.Train(x, y, 2000, 0.1))

	pred, err := nw.Forward(x)
	require.NoError(t, err)
	acc, err := BinaryAccuracy(pred, y, 0.5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.75)
}

func TestTrainOptimizersReduceLoss(t *testing.T) {
	tests := []struct {
		name string
		cfg  TrainingConfig
	}{
		{"sgd", TrainingConfig{Epochs: 300, LearningRate: 0.1, Optimizer: OptSGD}},
		{"momentum", TrainingConfig{Epochs: 300, LearningRate: 0.01, Optimizer: OptMomentum, MomentumMu: 0.9}},
		{"adam", TrainingConfig{Epochs: 300, LearningRate: 0.01, Optimizer: OptAdam}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := xorData()
			nw := xorNetwork()
			start := initialLoss(t, nw, x, y)

			loss, err := Train(nw, x, y, tt.cfg)
			require.NoError(t, err)
			assert.Less(t, loss, start)
		})
	}
}

func TestTrainZeroEpochs(t *testing.T) {
	x, y := xorData()
	nw := xorNetwork()
	before := nw.Layers()[0].(*Dense[float64]).Weights().Data()

	loss, err := Train(nw, x, y, TrainingConfig{LearningRate: 0.1})
	require.NoError(t, err)
	assert.Zero(t, loss)
	assert.Equal(t, before, nw.Layers()[0].(*Dense[float64]).Weights().Data())
}

func TestTrainingConfigValidate(t *testing.T) {
	assert.NoError(t, TrainingConfig{LearningRate: 0.1}.Validate())
	assert.NoError(t, TrainingConfig{Epochs: 5, LearningRate: 0.1, Optimizer: OptAdam}.Validate())

	bad := []TrainingConfig{
		{Epochs: -1, LearningRate: 0.1},
		{Epochs: 1},
		{Epochs: 1, LearningRate: -0.1},
		{Epochs: 1, LearningRate: 0.1, Optimizer: "rmsprop"},
		{Epochs: 1, LearningRate: 0.1, MomentumMu: 1.5},
		{Epochs: 1, LearningRate: 0.1, AdamBeta2: 1},
		{Epochs: 1, LearningRate: 0.1, VerboseEvery: -2},
	}
	for _, cfg := range bad {
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "%+v", cfg)
	}

	x, y := xorData()
	_, err := Train(xorNetwork(), x, y, bad[0])
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// --- 4. Inference ---

func TestBinaryAccuracy(t *testing.T) {
	pred := matrix(4, 1, 0.9, 0.2, 0.6, 0.4)
	target := matrix(4, 1, 1, 0, 0, 0)

	acc, err := BinaryAccuracy(pred, target, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-12)

	_, err = BinaryAccuracy(pred, matrix(2, 1, 1, 0), 0.5)
	assert.ErrorIs(t, err, tensor.ErrDimensionMismatch)
}

func TestPredict(t *testing.T) {
	d := MustDense[float64](1, 1)
	copy(d.Params()[0].Value.Data(), []float64{1})
	nw := NewNetwork[float64](d)

	labels, err := Predict(nw, matrix(3, 1, -1, 0.7, 2), 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1}, labels.Data())
}

// --- 5. Benchmarks ---

var resultMat *Matrix[float64]
var resultLoss float64

func benchmarkForward(b *testing.B, batchSize int) {
	rng := rand.New(rand.NewPCG(1, 1))
	nw := NewNetwork[float64](
		MustDense[float64](784, 64),
		NewReLU[float64](),
		MustDense[float64](64, 10),
	)
	x := randomInput(rng, batchSize, 784)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		resultMat, _ = nw.Forward(x)
	}
}

func BenchmarkForward_Batch_1(b *testing.B)   { benchmarkForward(b, 1) }
func BenchmarkForward_Batch_64(b *testing.B)  { benchmarkForward(b, 64) }
func BenchmarkForward_Batch_128(b *testing.B) { benchmarkForward(b, 128) }

func benchmarkOptimizerUpdate(b *testing.B, optType OptimizerType) {
	rng := rand.New(rand.NewPCG(1, 1))
	nw := NewNetwork[float64](
		MustDense[float64](784, 128),
		NewReLU[float64](),
		MustDense[float64](128, 10),
	)
	x, y := randomInput(rng, 32, 784), randomInput(rng, 32, 10)
	pred, _ := nw.Forward(x)
	resultLoss, _ = nw.Backward(pred, y)

	optimizer := NewOptimizer(nw, TrainingConfig{LearningRate: 0.001, Optimizer: optType})
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		optimizer.Update(nw)
	}
}

func BenchmarkOptimizer_SGD(b *testing.B)      { benchmarkOptimizerUpdate(b, OptSGD) }
func BenchmarkOptimizer_Momentum(b *testing.B) { benchmarkOptimizerUpdate(b, OptMomentum) }
func BenchmarkOptimizer_Adam(b *testing.B)     { benchmarkOptimizerUpdate(b, OptAdam) }
