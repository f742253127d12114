package tensor

import (
	"gonum.org/v1/gonum/floats"
)

// -------- ELEMENTWISE ------- //

// Apply returns a new tensor with fn applied to every element.
func (t *Tensor[T, R]) Apply(fn func(T) T) *Tensor[T, R] {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = fn(v)
	}
	return out
}

// AddScalar returns t + s.
func (t *Tensor[T, R]) AddScalar(s T) *Tensor[T, R] {
	return t.Apply(func(v T) T { return v + s })
}

// SubScalar returns t - s.
func (t *Tensor[T, R]) SubScalar(s T) *Tensor[T, R] {
	return t.Apply(func(v T) T { return v - s })
}

// MulScalar returns t * s.
func (t *Tensor[T, R]) MulScalar(s T) *Tensor[T, R] {
	return t.Apply(func(v T) T { return v * s })
}

// DivScalar returns t / s. Integer tensors panic on a zero divisor.
func (t *Tensor[T, R]) DivScalar(s T) *Tensor[T, R] {
	return t.Apply(func(v T) T { return v / s })
}

// ScalarSub returns s - t.
func (t *Tensor[T, R]) ScalarSub(s T) *Tensor[T, R] {
	return t.Apply(func(v T) T { return s - v })
}

// ScalarAdd returns s + t.
func ScalarAdd[T Numeric, R Rank](s T, t *Tensor[T, R]) *Tensor[T, R] {
	return t.AddScalar(s)
}

// ScalarMul returns s * t.
func ScalarMul[T Numeric, R Rank](s T, t *Tensor[T, R]) *Tensor[T, R] {
	return t.MulScalar(s)
}

// Add returns a + b with broadcasting.
func Add[T Numeric, R Rank](a, b *Tensor[T, R]) (*Tensor[T, R], error) {
	return broadcastOp(a, b, func(x, y T) T { return x + y })
}

// Sub returns a - b with broadcasting.
func Sub[T Numeric, R Rank](a, b *Tensor[T, R]) (*Tensor[T, R], error) {
	return broadcastOp(a, b, func(x, y T) T { return x - y })
}

// Mul returns the elementwise product a * b with broadcasting.
func Mul[T Numeric, R Rank](a, b *Tensor[T, R]) (*Tensor[T, R], error) {
	return broadcastOp(a, b, func(x, y T) T { return x * y })
}

func broadcastOp[T Numeric, R Rank](a, b *Tensor[T, R], op func(x, y T) T) (*Tensor[T, R], error) {
	shape, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	out := &Tensor[T, R]{shape: shape, data: make([]T, shape.NumElements())}

	if a.shape.Equal(b.shape) {
		ad, bd := a.Data(), b.Data()
		for i := range out.data {
			out.data[i] = op(ad[i], bd[i])
		}
		return out, nil
	}

	// A broadcast axis gets stride 0 so its single slice is reused.
	rank := len(shape)
	aStrides, bStrides := a.shape.Strides(), b.shape.Strides()
	for d := 0; d < rank; d++ {
		if a.shape[d] == 1 {
			aStrides[d] = 0
		}
		if b.shape[d] == 1 {
			bStrides[d] = 0
		}
	}

	idx := make([]int, rank)
	offA, offB := 0, 0
	for lin := range out.data {
		out.data[lin] = op(a.data[offA], b.data[offB])

		// advance the odometer, innermost axis first
		for d := rank - 1; d >= 0; d-- {
			idx[d]++
			offA += aStrides[d]
			offB += bStrides[d]
			if idx[d] < shape[d] {
				break
			}
			offA -= aStrides[d] * idx[d]
			offB -= bStrides[d] * idx[d]
			idx[d] = 0
		}
	}
	return out, nil
}

// -------- REDUCTIONS ------- //

// Sum returns the sum of all elements.
func (t *Tensor[T, R]) Sum() T {
	data := t.Data()
	if f, ok := any(data).([]float64); ok {
		return T(floats.Sum(f))
	}
	var sum T
	for _, v := range data {
		sum += v
	}
	return sum
}

// SumRows sums a matrix over its rows, producing a 1 x cols row vector.
func SumRows[T Numeric](t *Tensor[T, R2]) *Tensor[T, R2] {
	rows, cols := t.shape[0], t.shape[1]
	out := &Tensor[T, R2]{shape: Shape{1, cols}, data: make([]T, cols)}
	for i := 0; i < rows; i++ {
		row := t.data[i*cols : (i+1)*cols]
		for j, v := range row {
			out.data[j] += v
		}
	}
	return out
}
