package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/mat"
)

// Transpose swaps the two innermost axes and permutes the data accordingly.
func Transpose[T Numeric, R Rank](t *Tensor[T, R]) (*Tensor[T, R], error) {
	rank := rankOf[R]()
	if rank < 2 {
		return nil, fmt.Errorf("%w: cannot transpose a rank-%d tensor", ErrRank, rank)
	}

	shape := t.shape.Clone()
	shape[rank-2], shape[rank-1] = shape[rank-1], shape[rank-2]
	out := &Tensor[T, R]{shape: shape, data: make([]T, shape.NumElements())}

	rows, cols := t.shape[rank-2], t.shape[rank-1]
	plane := rows * cols
	if plane == 0 {
		return out, nil
	}
	for base := 0; base < len(out.data); base += plane {
		src := t.data[base : base+plane]
		dst := out.data[base : base+plane]
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				dst[j*rows+i] = src[i*cols+j]
			}
		}
	}
	return out, nil
}

// MatMul returns the matrix product a·b of shape (a.rows, b.cols).
func MatMul[T Numeric](a, b *Tensor[T, R2]) (*Tensor[T, R2], error) {
	m, k := a.shape[0], a.shape[1]
	k2, n := b.shape[0], b.shape[1]
	if k != k2 {
		return nil, fmt.Errorf("%w: cannot multiply %v by %v", ErrDimensionMismatch, a.shape, b.shape)
	}

	out := &Tensor[T, R2]{shape: Shape{m, n}, data: make([]T, m*n)}
	gemm(m, k, n, a.data[:m*k], b.data[:k*n], out.data)
	return out, nil
}

// BatchMatMul multiplies matching matrices of two batches independently.
// The contraction extents are checked before the batch extents.
func BatchMatMul[T Numeric](a, b *Tensor[T, R3]) (*Tensor[T, R3], error) {
	batch, m, k := a.shape[0], a.shape[1], a.shape[2]
	batch2, k2, n := b.shape[0], b.shape[1], b.shape[2]
	if k != k2 {
		return nil, fmt.Errorf("%w: cannot multiply %v by %v", ErrDimensionMismatch, a.shape, b.shape)
	}
	if batch != batch2 {
		return nil, fmt.Errorf("%w: %d vs %d", ErrBatchMismatch, batch, batch2)
	}

	out := &Tensor[T, R3]{shape: Shape{batch, m, n}, data: make([]T, batch*m*n)}
	for i := 0; i < batch; i++ {
		gemm(m, k, n,
			a.data[i*m*k:(i+1)*m*k],
			b.data[i*k*n:(i+1)*k*n],
			out.data[i*m*n:(i+1)*m*n],
		)
	}
	return out, nil
}

// gemm writes a(m×k)·b(k×n) into the zeroed c(m×n).
// float64 goes through gonum/mat, float32 through blas32, anything else
// through the blocked loop.
func gemm[T Numeric](m, k, n int, a, b, c []T) {
	if m == 0 || k == 0 || n == 0 {
		return
	}

	switch av := any(a).(type) {
	case []float64:
		bv, cv := any(b).([]float64), any(c).([]float64)
		out := mat.NewDense(m, n, cv)
		out.Mul(mat.NewDense(m, k, av), mat.NewDense(k, n, bv))
		return
	case []float32:
		bv, cv := any(b).([]float32), any(c).([]float32)
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas32.General{Rows: m, Cols: k, Stride: k, Data: av},
			blas32.General{Rows: k, Cols: n, Stride: n, Data: bv},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: cv},
		)
		return
	}
	gemmBlocked(m, k, n, a, b, c)
}

// gemmBlocked is a cache-tiled triple loop over the row-major buffers.
func gemmBlocked[T Numeric](m, k, n int, a, b, c []T) {
	const blockSize = 64
	for i := 0; i < m; i += blockSize {
		for j := 0; j < n; j += blockSize {
			for p := 0; p < k; p += blockSize {
				iMax, jMax, pMax := min(i+blockSize, m), min(j+blockSize, n), min(p+blockSize, k)
				for ii := i; ii < iMax; ii++ {
					rowOffsetOut := ii * n
					for pp := p; pp < pMax; pp++ {
						scalar := a[ii*k+pp]
						rowOffsetB := pp * n
						for jj := j; jj < jMax; jj++ {
							c[rowOffsetOut+jj] += scalar * b[rowOffsetB+jj]
						}
					}
				}
			}
		}
	}
}
