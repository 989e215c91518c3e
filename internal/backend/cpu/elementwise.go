package cpu

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/chewxy/math32"
)

type numeric interface {
	~float32 | ~int32 | ~int64
}

// Add performs element-wise addition of two tensors with identical shapes.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float32) float32 { return x + y },
		func(x, y int32) int32 { return x + y }, func(x, y int64) int64 { return x + y })
}

// Mul performs element-wise multiplication of two tensors with identical shapes.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float32) float32 { return x * y },
		func(x, y int32) int32 { return x * y }, func(x, y int64) int64 { return x * y })
}

func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	i32 func(x, y int32) int32,
	i64 func(x, y int64) int64,
) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}

	result := cpu.alloc(op, a.Shape(), a.DType())
	switch a.DType() {
	case tensor.Float32:
		zipWith(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), f32)
	case tensor.Int32:
		zipWith(result.AsInt32(), a.AsInt32(), b.AsInt32(), i32)
	case tensor.Int64:
		zipWith(result.AsInt64(), a.AsInt64(), b.AsInt64(), i64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}
	return result
}

func zipWith[T numeric](dst, a, b []T, f func(x, y T) T) {
	for i := range dst {
		dst[i] = f(a[i], b[i])
	}
}

// AddBias adds the 1-D bias to every slice of x along dim.
func (cpu *CPUBackend) AddBias(x, bias *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if len(bias.Shape()) != 1 || bias.Shape()[0] != shape[dim] {
		panic(fmt.Sprintf("add_bias: bias shape %v does not match dimension %d of %v", bias.Shape(), dim, shape))
	}
	if x.DType() != bias.DType() {
		panic(fmt.Sprintf("add_bias: dtype mismatch %s vs %s", x.DType(), bias.DType()))
	}

	outer, n, inner := splitAt(shape, dim)
	result := cpu.alloc("add_bias", shape, x.DType())
	switch x.DType() {
	case tensor.Float32:
		addBias(result.AsFloat32(), x.AsFloat32(), bias.AsFloat32(), outer, n, inner)
	case tensor.Int32:
		addBias(result.AsInt32(), x.AsInt32(), bias.AsInt32(), outer, n, inner)
	case tensor.Int64:
		addBias(result.AsInt64(), x.AsInt64(), bias.AsInt64(), outer, n, inner)
	default:
		panic(fmt.Sprintf("add_bias: unsupported dtype %s", x.DType()))
	}
	return result
}

func addBias[T numeric](dst, x, bias []T, outer, n, inner int) {
	for o := 0; o < outer; o++ {
		for c := 0; c < n; c++ {
			base := (o*n + c) * inner
			for i := 0; i < inner; i++ {
				dst[base+i] = x[base+i] + bias[c]
			}
		}
	}
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryFloat32("sigmoid", x, func(v float32) float32 {
		return 1 / (1 + math32.Exp(-v))
	})
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryFloat32("tanh", x, math32.Tanh)
}

func (cpu *CPUBackend) unaryFloat32(op string, x *tensor.RawTensor, f func(float32) float32) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
	result := cpu.alloc(op, x.Shape(), tensor.Float32)
	dst, src := result.AsFloat32(), x.AsFloat32()
	for i, v := range src {
		dst[i] = f(v)
	}
	return result
}

// NotEqualScalar returns a bool tensor that is true where x differs from scalar.
func (cpu *CPUBackend) NotEqualScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result := cpu.alloc("not_equal", x.Shape(), tensor.Bool)
	dst := result.AsBool()

	switch x.DType() {
	case tensor.Float32:
		notEqual(dst, x.AsFloat32(), toScalar[float32](scalar))
	case tensor.Int32:
		notEqual(dst, x.AsInt32(), toScalar[int32](scalar))
	case tensor.Int64:
		notEqual(dst, x.AsInt64(), toScalar[int64](scalar))
	case tensor.Bool:
		v, ok := scalar.(bool)
		if !ok {
			panic(fmt.Sprintf("not_equal: cannot compare bool tensor with %T", scalar))
		}
		for i, b := range x.AsBool() {
			dst[i] = b != v
		}
	default:
		panic(fmt.Sprintf("not_equal: unsupported dtype %s", x.DType()))
	}
	return result
}

func notEqual[T numeric](dst []bool, src []T, v T) {
	for i, s := range src {
		dst[i] = s != v
	}
}

func toScalar[T numeric](scalar any) T {
	switch v := scalar.(type) {
	case float32:
		return T(v)
	case float64:
		return T(v)
	case int:
		return T(v)
	case int32:
		return T(v)
	case int64:
		return T(v)
	default:
		panic(fmt.Sprintf("unsupported scalar type %T", scalar))
	}
}

// Cast converts x to dtype. Bools map to 0/1 and numbers to (x != 0).
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result := cpu.alloc("cast", x.Shape(), dtype)
	switch x.DType() {
	case tensor.Float32:
		castFrom(result, x.AsFloat32())
	case tensor.Int32:
		castFrom(result, x.AsInt32())
	case tensor.Int64:
		castFrom(result, x.AsInt64())
	case tensor.Bool:
		src := x.AsBool()
		vals := make([]int64, len(src))
		for i, b := range src {
			if b {
				vals[i] = 1
			}
		}
		castFrom(result, vals)
	default:
		panic(fmt.Sprintf("cast: unsupported dtype %s", x.DType()))
	}
	return result
}

func castFrom[S numeric](dst *tensor.RawTensor, src []S) {
	switch dst.DType() {
	case tensor.Float32:
		out := dst.AsFloat32()
		for i, v := range src {
			out[i] = float32(v)
		}
	case tensor.Int32:
		out := dst.AsInt32()
		for i, v := range src {
			out[i] = int32(v)
		}
	case tensor.Int64:
		out := dst.AsInt64()
		for i, v := range src {
			out[i] = int64(v)
		}
	case tensor.Bool:
		out := dst.AsBool()
		for i, v := range src {
			out[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", dst.DType()))
	}
}

// splitAt returns (prod(shape[:dim]), shape[dim], prod(shape[dim+1:])).
func splitAt(shape tensor.Shape, dim int) (outer, n, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}
