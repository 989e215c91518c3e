package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// TimeDistributed applies an encoder built for single steps to every step of
// a sequence by folding the time axis into the batch axis.
//
// Input:  [batch, seq, ...rest]
// Inner:  [batch*seq, ...rest] -> [batch*seq, ...out]
// Output: [batch, seq, ...out]
type TimeDistributed[T tensor.DType, B tensor.Backend] struct {
	inner Encoder[T, B]
}

// NewTimeDistributed wraps inner.
func NewTimeDistributed[T tensor.DType, B tensor.Backend](inner Encoder[T, B]) *TimeDistributed[T, B] {
	return &TimeDistributed[T, B]{inner: inner}
}

// Forward applies the inner encoder at every time step.
func (td *TimeDistributed[T, B]) Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) <= 2 {
		panic(fmt.Sprintf("time_distributed: expected input of rank > 2, got shape %v", shape))
	}

	batch, seq := shape[0], shape[1]

	// shape: (batch * seq, ...rest)
	folded := input.Reshape(append([]int{batch * seq}, shape[2:]...)...)
	out := td.inner.Forward(folded)

	outShape := out.Shape()
	if len(outShape) == 0 || outShape[0] != batch*seq {
		panic(fmt.Sprintf("time_distributed: inner module changed leading size %d to shape %v", batch*seq, outShape))
	}

	// shape: (batch, seq, ...out)
	return out.Reshape(append([]int{batch, seq}, outShape[1:]...)...)
}

// Parameters returns the inner encoder's parameters, if any.
func (td *TimeDistributed[T, B]) Parameters() []*Parameter[B] {
	return parametersOf[B](td.inner)
}

// ResetParameters resets the inner encoder if it supports resetting.
func (td *TimeDistributed[T, B]) ResetParameters() {
	resetAll(td.inner)
}

// Inner returns the wrapped encoder.
func (td *TimeDistributed[T, B]) Inner() Encoder[T, B] {
	return td.inner
}
