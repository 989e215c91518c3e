// Package nn implements the sequence-encoding modules of seqnn.
//
// This package provides building blocks for sentence encoders:
//   - Module / Encoder interfaces and Parameter
//   - Linear, Embedding, Conv2D, LSTM
//   - ContextWindow, Concatenate, TimeDistributed
//   - CNNEncoder, CharCNN, BiLSTMEmbedder
//   - PackPadded / PadPacked for variable-length batches
//
// Modules are forward-only: they read their parameters during Forward and
// never mutate them. Shape and rank violations are programmer errors and
// panic with an "<op>: <detail>" message.
package nn

import (
	"github.com/born-ml/seqnn/internal/tensor"
)

// Module is the base interface for float-to-float network components.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module, including
	// those of nested modules. Modules without weights return nil.
	Parameters() []*Parameter[B]
}

// Encoder maps a tensor of element type T to float features.
//
// Every Module is an Encoder[float32, B]; Embedding and CharCNN are
// Encoder[int32, B] because they consume token indices.
type Encoder[T tensor.DType, B tensor.Backend] interface {
	Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[float32, B]
}

// SequenceEmbedder embeds a list of parallel index channels (word ids,
// character ids, tag ids, ...) into one (batch, seq, size) tensor.
// Concatenate[int32, B] is the canonical implementation.
type SequenceEmbedder[B tensor.Backend] interface {
	Forward(inputs []*tensor.Tensor[int32, B]) *tensor.Tensor[float32, B]
}

// Resetter is implemented by modules that can re-initialize their weights.
type Resetter interface {
	ResetParameters()
}

// ParameterOwner is implemented by anything exposing trainable parameters.
type ParameterOwner[B tensor.Backend] interface {
	Parameters() []*Parameter[B]
}

// parametersOf collects parameters from every argument that owns any.
func parametersOf[B tensor.Backend](components ...any) []*Parameter[B] {
	var params []*Parameter[B]
	for _, c := range components {
		if owner, ok := c.(ParameterOwner[B]); ok {
			params = append(params, owner.Parameters()...)
		}
	}
	return params
}

// resetAll calls ResetParameters on every argument that supports it.
func resetAll(components ...any) {
	for _, c := range components {
		if r, ok := c.(Resetter); ok {
			r.ResetParameters()
		}
	}
}
