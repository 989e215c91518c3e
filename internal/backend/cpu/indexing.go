package cpu

import (
	"fmt"
	"slices"

	"github.com/born-ml/seqnn/internal/parallel"
	"github.com/born-ml/seqnn/internal/tensor"
)

// IndexSelect gathers slices of x along dim at the positions in index
// (a 1-D int32 or int64 tensor). Indices may repeat.
func (cpu *CPUBackend) IndexSelect(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	idx := indexValues("index_select", index)

	outer, n, inner := splitAt(shape, dim)
	for _, i := range idx {
		if i < 0 || i >= n {
			panic(fmt.Sprintf("index_select: index %d out of bounds for dimension %d (size %d)", i, dim, n))
		}
	}

	outShape := shape.Clone()
	outShape[dim] = len(idx)
	result := cpu.alloc("index_select", outShape, x.DType())

	elem := x.DType().Size()
	block := inner * elem
	src, dst := x.Data(), result.Data()
	for o := 0; o < outer; o++ {
		for j, i := range idx {
			from := (o*n + i) * block
			to := (o*len(idx) + j) * block
			copy(dst[to:to+block], src[from:from+block])
		}
	}
	return result
}

// Argsort returns the stable ascending (or descending) sort permutation of a
// 1-D tensor as int64 indices: sorted[i] = x[perm[i]].
func (cpu *CPUBackend) Argsort(x *tensor.RawTensor, descending bool) *tensor.RawTensor {
	if len(x.Shape()) != 1 {
		panic(fmt.Sprintf("argsort: expected 1D tensor, got shape %v", x.Shape()))
	}

	var keys []float64
	switch x.DType() {
	case tensor.Float32:
		keys = widen(x.AsFloat32())
	case tensor.Int32:
		keys = widen(x.AsInt32())
	case tensor.Int64:
		keys = widen(x.AsInt64())
	default:
		panic(fmt.Sprintf("argsort: unsupported dtype %s", x.DType()))
	}

	result := cpu.alloc("argsort", x.Shape(), tensor.Int64)
	perm := result.AsInt64()
	for i := range perm {
		perm[i] = int64(i)
	}
	slices.SortStableFunc(perm, func(a, b int64) int {
		ka, kb := keys[a], keys[b]
		if descending {
			ka, kb = kb, ka
		}
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
	return result
}

// Embedding looks up rows of weight [num_embeddings, dim] at int32 indices.
// The result shape is indices.Shape() + [dim].
func (cpu *CPUBackend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	wShape := weight.Shape()
	if len(wShape) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D, got shape %v", wShape))
	}
	if weight.DType() != tensor.Float32 {
		panic(fmt.Sprintf("embedding: weight must be float32, got %s", weight.DType()))
	}
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}

	numEmbed, dim := wShape[0], wShape[1]
	outShape := append(indices.Shape().Clone(), dim)
	result := cpu.alloc("embedding", outShape, tensor.Float32)

	ids := indices.AsInt32()
	for i, id := range ids {
		if id < 0 || int(id) >= numEmbed {
			panic(fmt.Sprintf("embedding: index %d at position %d out of range [0, %d)", id, i, numEmbed))
		}
	}

	w, out := weight.AsFloat32(), result.AsFloat32()
	parallel.For(len(ids), func(i int) {
		row := int(ids[i])
		copy(out[i*dim:(i+1)*dim], w[row*dim:(row+1)*dim])
	}, cpu.par)
	return result
}

func indexValues(op string, index *tensor.RawTensor) []int {
	if len(index.Shape()) != 1 {
		panic(fmt.Sprintf("%s: index must be 1D, got shape %v", op, index.Shape()))
	}
	switch index.DType() {
	case tensor.Int64:
		src := index.AsInt64()
		out := make([]int, len(src))
		for i, v := range src {
			out[i] = int(v)
		}
		return out
	case tensor.Int32:
		src := index.AsInt32()
		out := make([]int, len(src))
		for i, v := range src {
			out[i] = int(v)
		}
		return out
	default:
		panic(fmt.Sprintf("%s: index must be int32 or int64, got %s", op, index.DType()))
	}
}

func widen[T numeric](src []T) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}
