package tensor

// Reshape returns a tensor with the same data and a new shape.
// A single -1 dimension is inferred from the element count.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{2, 3, 4}, backend)
//	y := x.Reshape(-1, 4) // Shape: [6, 4]
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	shape := InferShape(newShape, t.NumElements())
	return New[T, B](t.backend.Reshape(t.raw, shape), t.backend)
}

// Transpose permutes the dimensions of t. With no axes, a 2-D tensor is transposed.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T is shorthand for transposing a 2-D tensor.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	return t.Transpose(1, 0)
}

// Unsqueeze adds a dimension of size 1 at the specified position.
// Supports negative dim indexing.
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Unsqueeze(t.raw, dim), t.backend)
}

// Squeeze removes a dimension of size 1 at the specified position.
// Panics if the dimension size is not 1.
func (t *Tensor[T, B]) Squeeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Squeeze(t.raw, dim), t.backend)
}

// Narrow returns length consecutive slices of t along dim starting at start.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{2, 10, 4}, backend)
//	y := x.Narrow(1, 3, 5) // Shape: [2, 5, 4], frames 3..7
func (t *Tensor[T, B]) Narrow(dim, start, length int) *Tensor[T, B] {
	return New[T, B](t.backend.Narrow(t.raw, dim, start, length), t.backend)
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation dimension.
// Supports negative dim indexing (-1 = last dimension).
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	backend := tensors[0].backend
	return New[T, B](backend.Cat(raws, dim), backend)
}

// Stack joins same-shaped tensors along a new dimension dim.
//
// Example:
//
//	a := tensor.Zeros[float32](Shape{2, 3}, backend)
//	s := tensor.Stack([]*Tensor[float32, B]{a, a, a}, 1) // Shape: [2, 3, 3]
func Stack[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("stack: at least one tensor required")
	}

	rank := tensors[0].Dim() + 1
	dim = NormalizeDim(dim, rank)
	expanded := make([]*Tensor[T, B], len(tensors))
	for i, t := range tensors {
		if !t.Shape().Equal(tensors[0].Shape()) {
			panic("stack: all tensors must have the same shape")
		}
		expanded[i] = t.Unsqueeze(dim)
	}
	return Cat(expanded, dim)
}
