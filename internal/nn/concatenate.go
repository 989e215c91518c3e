package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// Concatenate applies encoder k to input k and joins the results along the
// last axis.
//
// With T = int32 it is a multi-channel embedder: word ids and character ids
// go through their own encoders and the vectors are concatenated per step.
//
// Example:
//
//	words := nn.NewEmbedding(vocab, 100, backend, nn.WithPaddingIdx(0))
//	chars := nn.NewTimeDistributed[int32](nn.NewCharCNN(alphabet, 30, backend))
//	embed := nn.NewConcatenate[int32, B](words, chars)
//	out := embed.Forward([]*tensor.Tensor[int32, B]{wordIDs, charIDs})
type Concatenate[T tensor.DType, B tensor.Backend] struct {
	encoders []Encoder[T, B]
}

// NewConcatenate creates a Concatenate over the given encoders, in order.
func NewConcatenate[T tensor.DType, B tensor.Backend](encoders ...Encoder[T, B]) *Concatenate[T, B] {
	if len(encoders) == 0 {
		panic("concatenate: at least one encoder required")
	}
	return &Concatenate[T, B]{encoders: encoders}
}

// Forward encodes each input with its encoder and concatenates the outputs.
// Panics if the number of inputs differs from the number of encoders.
func (c *Concatenate[T, B]) Forward(inputs []*tensor.Tensor[T, B]) *tensor.Tensor[float32, B] {
	if len(inputs) != len(c.encoders) {
		panic(fmt.Sprintf("concatenate: got %d inputs for %d encoders", len(inputs), len(c.encoders)))
	}

	outputs := make([]*tensor.Tensor[float32, B], len(inputs))
	for i, enc := range c.encoders {
		outputs[i] = enc.Forward(inputs[i])
	}
	return tensor.Cat(outputs, -1)
}

// Parameters returns the parameters of every encoder that has any.
func (c *Concatenate[T, B]) Parameters() []*Parameter[B] {
	components := make([]any, len(c.encoders))
	for i, enc := range c.encoders {
		components[i] = enc
	}
	return parametersOf[B](components...)
}

// ResetParameters resets every encoder that supports it.
func (c *Concatenate[T, B]) ResetParameters() {
	for _, enc := range c.encoders {
		resetAll(enc)
	}
}

// Len returns the number of encoders.
func (c *Concatenate[T, B]) Len() int {
	return len(c.encoders)
}
