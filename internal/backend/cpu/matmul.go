package cpu

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// MatMul performs matrix multiplication of 2-D float32 tensors:
// (M, K) @ (K, N) -> (M, N), computed with SGEMM.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		panic(fmt.Sprintf("matmul: unsupported dtypes %s, %s", a.DType(), b.DType()))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := cpu.alloc("matmul", tensor.Shape{m, n}, tensor.Float32)
	sgemm(blas.NoTrans, a.AsFloat32(), m, k, b.AsFloat32(), n, result.AsFloat32())
	return result
}

// sgemm computes c = a @ op(b), where a is (m, k) and c is (m, n).
// With tB == blas.NoTrans, b is laid out as (k, n); with blas.Trans, as (n, k).
func sgemm(tB blas.Transpose, a []float32, m, k int, b []float32, n int, c []float32) {
	if m == 0 || n == 0 || k == 0 {
		// c is freshly allocated and already zero.
		return
	}

	bRows, bCols := k, n
	if tB == blas.Trans {
		bRows, bCols = n, k
	}

	blas32.Gemm(blas.NoTrans, tB, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c},
	)
}
