package tensor

// Backend defines the forward primitives a compute backend must implement.
//
// Operations never broadcast: element-wise ops require identical shapes and
// the only shape-mixing op is AddBias. Every operation allocates its result
// (or returns a view for pure shape changes) and leaves its inputs untouched.
type Backend interface {
	// Element-wise binary operations (identical shapes)
	Add(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// AddBias adds a 1-D bias along dimension dim of x.
	AddBias(x, bias *RawTensor, dim int) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor // (M, K) @ (K, N) -> (M, N)

	// Conv2D over [N, C_in, H, W] with kernel [C_out, C_in, K_h, K_w].
	// padH and padW are applied to both sides of their axis.
	Conv2D(input, kernel *RawTensor, stride, padH, padW int) *RawTensor

	// Activation functions
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor

	// Manipulation operations
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// Reduction operations
	MaxDim(x *RawTensor, dim int) *RawTensor // maximum along dim (dim removed)
	SumDim(x *RawTensor, dim int) *RawTensor // sum along dim (dim removed)
	AnyDim(x *RawTensor, dim int) *RawTensor // logical OR of a bool tensor along dim

	// Comparison
	NotEqualScalar(x *RawTensor, scalar any) *RawTensor // bool tensor x != scalar

	// Indexing operations
	IndexSelect(x *RawTensor, dim int, index *RawTensor) *RawTensor // gather slices along dim
	Argsort(x *RawTensor, descending bool) *RawTensor              // stable argsort of a 1-D tensor, int64 result
	Embedding(weight, indices *RawTensor) *RawTensor               // rows of weight by indices

	// Type conversion
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
