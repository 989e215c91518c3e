package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// Linear is a fully connected layer: y = x @ W^T + b.
//
// Input of any rank >= 1 is accepted; the transform applies to the last
// axis, so (batch, seq, in) maps to (batch, seq, out).
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int

	weight *Parameter[B] // [out_features, in_features]
	bias   *Parameter[B] // [out_features]

	backend B
}

// NewLinear creates a new linear layer with Xavier-initialised weights and zero bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	l := &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		backend:     backend,
	}
	l.ResetParameters()
	return l
}

// ResetParameters re-draws the weight and zeroes the bias.
func (l *Linear[B]) ResetParameters() {
	l.weight = reinit(l.weight, "linear.weight",
		Xavier(l.inFeatures, l.outFeatures, tensor.Shape{l.outFeatures, l.inFeatures}, l.backend))
	l.bias = reinit(l.bias, "linear.bias", Zeros(tensor.Shape{l.outFeatures}, l.backend))
}

// Forward applies the affine transform to the last axis of input.
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected last dimension %d, got shape %v", l.inFeatures, shape))
	}

	flat := input.Reshape(-1, l.inFeatures)
	out := flat.MatMul(l.weight.Tensor().T()).AddBias(l.bias.Tensor(), 1)

	outShape := append(shape[:len(shape)-1:len(shape)-1], l.outFeatures)
	return out.Reshape(outShape...)
}

// Parameters returns the weight and bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter [out_features, in_features].
func (l *Linear[B]) Weight() *Parameter[B] { return l.weight }

// Bias returns the bias parameter [out_features].
func (l *Linear[B]) Bias() *Parameter[B] { return l.bias }

// String returns a string representation of the layer.
func (l *Linear[B]) String() string {
	return fmt.Sprintf("Linear(in_features=%d, out_features=%d)", l.inFeatures, l.outFeatures)
}
