package tensor

// Add performs element-wise addition. Shapes must match exactly.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication. Shapes must match exactly.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// AddBias adds a 1-D bias along dimension dim.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{2, 4, 5}, backend)
//	bias := tensor.Zeros[float32](Shape{4}, backend)
//	y := x.AddBias(bias, 1) // bias[c] added to every x[:, c, :]
func (t *Tensor[T, B]) AddBias(bias *Tensor[T, B], dim int) *Tensor[T, B] {
	return New[T, B](t.backend.AddBias(t.raw, bias.raw, dim), t.backend)
}

// MatMul performs 2-D matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Sigmoid applies the logistic function element-wise.
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	return New[T, B](t.backend.Sigmoid(t.raw), t.backend)
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor[T, B]) Tanh() *Tensor[T, B] {
	return New[T, B](t.backend.Tanh(t.raw), t.backend)
}

// MaxDim returns the maximum along dim; the dimension is removed.
func (t *Tensor[T, B]) MaxDim(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.MaxDim(t.raw, dim), t.backend)
}

// SumDim returns the sum along dim; the dimension is removed.
func (t *Tensor[T, B]) SumDim(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim), t.backend)
}

// NotEqual returns a bool tensor marking elements different from value.
func (t *Tensor[T, B]) NotEqual(value T) *Tensor[bool, B] {
	return New[bool, B](t.backend.NotEqualScalar(t.raw, value), t.backend)
}

// AnyDim reduces a bool tensor along dim with logical OR.
func AnyDim[B Backend](t *Tensor[bool, B], dim int) *Tensor[bool, B] {
	return New[bool, B](t.backend.AnyDim(t.raw, dim), t.backend)
}

// IndexSelect gathers slices of t along dim at the given indices.
//
// Example:
//
//	rows := x.IndexSelect(0, perm) // rows of x reordered by perm
func (t *Tensor[T, B]) IndexSelect(dim int, index *Tensor[int64, B]) *Tensor[T, B] {
	return New[T, B](t.backend.IndexSelect(t.raw, dim, index.raw), t.backend)
}

// Argsort returns the stable sorting permutation of a 1-D tensor.
func Argsort[T DType, B Backend](t *Tensor[T, B], descending bool) *Tensor[int64, B] {
	return New[int64, B](t.backend.Argsort(t.raw, descending), t.backend)
}

// Embedding looks up rows of the 2-D weight tensor t at the int32 indices.
// The result has shape indices.Shape() + [t.Shape()[1]].
func (t *Tensor[T, B]) Embedding(indices *Tensor[int32, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Embedding(t.raw, indices.raw), t.backend)
}

// Cast converts t to element type U.
func Cast[U, T DType, B Backend](t *Tensor[T, B]) *Tensor[U, B] {
	return New[U, B](t.backend.Cast(t.raw, DataTypeOf[U]()), t.backend)
}
