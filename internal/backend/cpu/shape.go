package cpu

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// Reshape returns a view of t with a new shape of equal element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return t.WithShape(newShape)
}

// Unsqueeze inserts a dimension of size 1 at dim. dim may be negative and
// ranges over rank+1 positions.
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape)+1)

	newShape := make(tensor.Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)
	return x.WithShape(newShape)
}

// Squeeze removes the size-1 dimension dim.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, expected 1", dim, shape[dim]))
	}

	newShape := make(tensor.Shape, 0, len(shape)-1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, shape[dim+1:]...)
	return x.WithShape(newShape)
}

// Transpose permutes the axes of t. With no axes the last two dimensions
// are swapped.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	rank := len(shape)

	if len(axes) == 0 {
		if rank < 2 {
			panic(fmt.Sprintf("transpose: need at least 2 dimensions, got %d", rank))
		}
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = i
		}
		axes[rank-1], axes[rank-2] = axes[rank-2], axes[rank-1]
	}
	axes = append([]int(nil), axes...)
	if len(axes) != rank {
		panic(fmt.Sprintf("transpose: got %d axes for rank %d", len(axes), rank))
	}

	seen := make([]bool, rank)
	newShape := make(tensor.Shape, rank)
	for i, a := range axes {
		a = tensor.NormalizeDim(a, rank)
		if seen[a] {
			panic(fmt.Sprintf("transpose: repeated axis %d", a))
		}
		seen[a] = true
		axes[i] = a
		newShape[i] = shape[a]
	}

	result := cpu.alloc("transpose", newShape, t.DType())
	elem := t.DType().Size()
	src, dst := t.Data(), result.Data()
	inStrides := t.Strides()

	// Walk the output in row-major order with a mixed-radix counter.
	idx := make([]int, rank)
	for out := 0; out < result.NumElements(); out++ {
		in := 0
		for i, a := range axes {
			in += idx[i] * inStrides[a]
		}
		copy(dst[out*elem:(out+1)*elem], src[in*elem:(in+1)*elem])

		for i := rank - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < newShape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return result
}
