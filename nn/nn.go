// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public sequence-encoding modules of seqnn.
//
// A typical sentence encoder embeds word and character ids, widens every
// step with its neighbours and contextualizes the result with a
// bidirectional LSTM:
//
//	words := nn.NewEmbedding(vocab.Len(), 100, backend, nn.WithPaddingIdx(0))
//	chars := nn.NewTimeDistributed[int32](nn.NewCharCNN(alphabet.Len(), 30, backend))
//	embed := nn.NewConcatenate[int32, *cpu.Backend](words, chars)
//	encoder := nn.NewBiLSTMEmbedder[*cpu.Backend](embed, 130, 200, backend)
//	out := encoder.Forward([]*tensor.Tensor[int32, *cpu.Backend]{wordIDs, charIDs})
package nn

import (
	"github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/tensor"
)

// Module is a float-to-float network component.
type Module[B tensor.Backend] = nn.Module[B]

// Encoder maps a tensor of element type T to float features.
type Encoder[T tensor.DType, B tensor.Backend] = nn.Encoder[T, B]

// SequenceEmbedder embeds parallel id channels into (batch, seq, size).
type SequenceEmbedder[B tensor.Backend] = nn.SequenceEmbedder[B]

// Parameter is a named weight tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// ParameterOwner is implemented by anything exposing parameters.
type ParameterOwner[B tensor.Backend] = nn.ParameterOwner[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Seed makes weight initialization deterministic.
func Seed(seed int64) {
	nn.Seed(seed)
}

// StateDict returns the parameters of owner keyed by position and name.
func StateDict[B tensor.Backend](owner ParameterOwner[B]) map[string]*tensor.RawTensor {
	return nn.StateDict(owner)
}

// LoadStateDict copies dict into owner's parameters.
func LoadStateDict[B tensor.Backend](owner ParameterOwner[B], dict map[string]*tensor.RawTensor) error {
	return nn.LoadStateDict(owner, dict)
}

// Layers

// Linear is a fully connected layer applied to the last axis.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier initialization.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Embedding is a lookup table from ids to vectors.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// EmbeddingOption configures an Embedding.
type EmbeddingOption = nn.EmbeddingOption

// WithPaddingIdx keeps the row at idx zeroed.
func WithPaddingIdx(idx int) EmbeddingOption {
	return nn.WithPaddingIdx(idx)
}

// NewEmbedding creates an embedding table initialised from N(0, 1).
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B, opts ...EmbeddingOption) *Embedding[B] {
	return nn.NewEmbedding(numEmbeddings, embeddingDim, backend, opts...)
}

// Conv2D is a 2D convolution over [N, C, H, W] inputs.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a convolution with padding padH, padW on both sides.
//
// Example:
//
//	conv := nn.NewConv2D(1, 32, 3, 3, 1, 1, 1, true, backend)
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride int,
	padH, padW int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padH, padW, useBias, backend)
}

// LSTM is a multi-layer, optionally bidirectional LSTM.
type LSTM[B tensor.Backend] = nn.LSTM[B]

// NewLSTM creates an LSTM.
func NewLSTM[B tensor.Backend](inputSize, hiddenSize, numLayers int, bidirectional bool, backend B) *LSTM[B] {
	return nn.NewLSTM(inputSize, hiddenSize, numLayers, bidirectional, backend)
}

// PackedSequence is a padded batch with the padding removed.
type PackedSequence[B tensor.Backend] = nn.PackedSequence[B]

// PackPadded packs a [batch, seq, features] batch sorted by decreasing length.
func PackPadded[B tensor.Backend](padded *tensor.Tensor[float32, B], lengths []int) PackedSequence[B] {
	return nn.PackPadded(padded, lengths)
}

// PadPacked unpacks to [batch, totalLength, features], zero past each length.
func PadPacked[B tensor.Backend](p PackedSequence[B], totalLength int) *tensor.Tensor[float32, B] {
	return nn.PadPacked(p, totalLength)
}

// Sequence modules

// ContextWindow appends the features of neighbouring steps to every step.
type ContextWindow[B tensor.Backend] = nn.ContextWindow[B]

// NewContextWindow creates a ContextWindow with the given half-width.
func NewContextWindow[B tensor.Backend](window int) *ContextWindow[B] {
	return nn.NewContextWindow[B](window)
}

// Concatenate applies one encoder per input and joins the outputs.
type Concatenate[T tensor.DType, B tensor.Backend] = nn.Concatenate[T, B]

// NewConcatenate creates a Concatenate over encoders, in order.
func NewConcatenate[T tensor.DType, B tensor.Backend](encoders ...Encoder[T, B]) *Concatenate[T, B] {
	return nn.NewConcatenate(encoders...)
}

// TimeDistributed applies an encoder at every time step.
type TimeDistributed[T tensor.DType, B tensor.Backend] = nn.TimeDistributed[T, B]

// NewTimeDistributed wraps inner.
func NewTimeDistributed[T tensor.DType, B tensor.Backend](inner Encoder[T, B]) *TimeDistributed[T, B] {
	return nn.NewTimeDistributed(inner)
}

// CNNEncoder pools a sequence into one vector with a convolution.
type CNNEncoder[B tensor.Backend] = nn.CNNEncoder[B]

// CNNOption configures a CNNEncoder.
type CNNOption = nn.CNNOption

// WithNumFilters sets the number of filters (default 100).
func WithNumFilters(n int) CNNOption {
	return nn.WithNumFilters(n)
}

// WithFilterWidth sets the filter width in steps (default 3).
func WithFilterWidth(w int) CNNOption {
	return nn.WithFilterWidth(w)
}

// NewCNNEncoder creates a CNNEncoder for inputs with inputSize features.
func NewCNNEncoder[B tensor.Backend](inputSize int, backend B, opts ...CNNOption) *CNNEncoder[B] {
	return nn.NewCNNEncoder(inputSize, backend, opts...)
}

// CharCNN encodes the characters of each word into one vector.
type CharCNN[B tensor.Backend] = nn.CharCNN[B]

// NewCharCNN creates a character encoder.
func NewCharCNN[B tensor.Backend](numChars, charDim int, backend B, opts ...CNNOption) *CharCNN[B] {
	return nn.NewCharCNN(numChars, charDim, backend, opts...)
}

// BiLSTMEmbedder contextualizes padded token sequences with a bidirectional LSTM.
type BiLSTMEmbedder[B tensor.Backend] = nn.BiLSTMEmbedder[B]

// BiLSTMOption configures a BiLSTMEmbedder.
type BiLSTMOption = nn.BiLSTMOption

// WithPadding sets the padding id (default 0).
func WithPadding(idx int32) BiLSTMOption {
	return nn.WithPadding(idx)
}

// WithLayers sets the LSTM depth (default 2).
func WithLayers(n int) BiLSTMOption {
	return nn.WithLayers(n)
}

// NewBiLSTMEmbedder creates a BiLSTMEmbedder over embedder.
func NewBiLSTMEmbedder[B tensor.Backend](
	embedder SequenceEmbedder[B],
	embedderSize, hiddenSize int,
	backend B,
	opts ...BiLSTMOption,
) *BiLSTMEmbedder[B] {
	return nn.NewBiLSTMEmbedder(embedder, embedderSize, hiddenSize, backend, opts...)
}
