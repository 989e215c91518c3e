package cpu

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// MaxDim returns the maximum along dim, removing that dimension.
// Panics when the reduced dimension is empty.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if shape[dim] == 0 {
		panic(fmt.Sprintf("max: cannot reduce empty dimension %d of %v", dim, shape))
	}

	outer, n, inner := splitAt(shape, dim)
	result := cpu.alloc("max", dropDim(shape, dim), x.DType())
	switch x.DType() {
	case tensor.Float32:
		reduce(result.AsFloat32(), x.AsFloat32(), outer, n, inner, maxOf[float32])
	case tensor.Int32:
		reduce(result.AsInt32(), x.AsInt32(), outer, n, inner, maxOf[int32])
	case tensor.Int64:
		reduce(result.AsInt64(), x.AsInt64(), outer, n, inner, maxOf[int64])
	default:
		panic(fmt.Sprintf("max: unsupported dtype %s", x.DType()))
	}
	return result
}

// SumDim returns the sum along dim, removing that dimension.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	outer, n, inner := splitAt(shape, dim)
	result := cpu.alloc("sum", dropDim(shape, dim), x.DType())
	if n == 0 {
		return result
	}
	switch x.DType() {
	case tensor.Float32:
		reduce(result.AsFloat32(), x.AsFloat32(), outer, n, inner, sumOf[float32])
	case tensor.Int32:
		reduce(result.AsInt32(), x.AsInt32(), outer, n, inner, sumOf[int32])
	case tensor.Int64:
		reduce(result.AsInt64(), x.AsInt64(), outer, n, inner, sumOf[int64])
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}
	return result
}

// AnyDim reduces a bool tensor along dim with logical OR.
func (cpu *CPUBackend) AnyDim(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	if x.DType() != tensor.Bool {
		panic(fmt.Sprintf("any: expected bool tensor, got %s", x.DType()))
	}
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	outer, n, inner := splitAt(shape, dim)
	result := cpu.alloc("any", dropDim(shape, dim), tensor.Bool)
	src, dst := x.AsBool(), result.AsBool()
	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			base := (o*n + k) * inner
			for i := 0; i < inner; i++ {
				dst[o*inner+i] = dst[o*inner+i] || src[base+i]
			}
		}
	}
	return result
}

// reduce folds src along the middle axis of an (outer, n, inner) view into dst
// (outer, inner), seeding each accumulator with the first element (n >= 1).
func reduce[T numeric](dst, src []T, outer, n, inner int, f func(acc, v T) T) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			acc := src[o*n*inner+i]
			for k := 1; k < n; k++ {
				acc = f(acc, src[(o*n+k)*inner+i])
			}
			dst[o*inner+i] = acc
		}
	}
}

func maxOf[T numeric](acc, v T) T {
	if v > acc {
		return v
	}
	return acc
}

func sumOf[T numeric](acc, v T) T {
	return acc + v
}

func dropDim(shape tensor.Shape, dim int) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape)-1)
	out = append(out, shape[:dim]...)
	return append(out, shape[dim+1:]...)
}
