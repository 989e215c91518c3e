package cpu

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// Cat concatenates tensors along dim. All other dimensions and dtypes must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	first := tensors[0].Shape()
	dim = tensor.NormalizeDim(dim, len(first))
	dtype := tensors[0].DType()

	total := 0
	for i, t := range tensors {
		shape := t.Shape()
		if len(shape) != len(first) {
			panic(fmt.Sprintf("cat: tensor %d has rank %d, expected %d", i, len(shape), len(first)))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := range shape {
			if d != dim && shape[d] != first[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dimension %d: %v vs %v", d, shape, first))
			}
		}
		total += shape[dim]
	}

	outShape := first.Clone()
	outShape[dim] = total
	result := cpu.alloc("cat", outShape, dtype)

	elem := dtype.Size()
	outer, _, inner := splitAt(outShape, dim)
	dst := result.Data()
	outRow := total * inner * elem

	offset := 0
	for _, t := range tensors {
		block := t.Shape()[dim] * inner * elem
		src := t.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*outRow+offset:o*outRow+offset+block], src[o*block:(o+1)*block])
		}
		offset += block
	}
	return result
}

// Narrow copies length consecutive slices along dim starting at start.
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if start < 0 || length < 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, shape[dim]))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	result := cpu.alloc("narrow", outShape, x.DType())

	elem := x.DType().Size()
	outer, n, inner := splitAt(shape, dim)
	src, dst := x.Data(), result.Data()
	block := length * inner * elem
	for o := 0; o < outer; o++ {
		from := (o*n + start) * inner * elem
		copy(dst[o*block:(o+1)*block], src[from:from+block])
	}
	return result
}
