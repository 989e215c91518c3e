package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// DefaultLSTMLayers is the depth of the recurrent encoder inside BiLSTMEmbedder.
const DefaultLSTMLayers = 2

// BiLSTMEmbedder contextualizes a padded batch of token sequences.
//
// The input channels (word ids, character ids, ...) are embedded by the
// wrapped SequenceEmbedder. A time step counts as real when any channel
// differs from the padding index; the number of real steps is the sequence
// length. Sequences are sorted by decreasing length, packed, run through a
// two-layer bidirectional LSTM, unpacked and returned in the original batch
// order. Steps past a sequence's length are zero.
//
// Input:  channels of shape [batch, seq] or [batch, seq, k]
// Output: [batch, seq, 2*hiddenSize]
//
// A sequence with no real steps yields an all-zero output row.
type BiLSTMEmbedder[B tensor.Backend] struct {
	embedder     SequenceEmbedder[B]
	embedderSize int
	hiddenSize   int
	paddingIdx   int32

	lstm    *LSTM[B]
	backend B
}

// BiLSTMOption configures a BiLSTMEmbedder.
type BiLSTMOption func(*biLSTMConfig)

type biLSTMConfig struct {
	paddingIdx int32
	numLayers  int
}

// WithPadding sets the index that marks padded positions (default 0).
func WithPadding(idx int32) BiLSTMOption {
	return func(c *biLSTMConfig) {
		c.paddingIdx = idx
	}
}

// WithLayers sets the number of stacked LSTM layers (default 2).
func WithLayers(n int) BiLSTMOption {
	return func(c *biLSTMConfig) {
		c.numLayers = n
	}
}

// NewBiLSTMEmbedder creates a BiLSTMEmbedder on top of embedder, whose
// output last axis must be embedderSize. The embedder is re-initialised
// along with the LSTM, so weights loaded into it beforehand are replaced.
func NewBiLSTMEmbedder[B tensor.Backend](
	embedder SequenceEmbedder[B],
	embedderSize, hiddenSize int,
	backend B,
	opts ...BiLSTMOption,
) *BiLSTMEmbedder[B] {
	if embedder == nil {
		panic("bilstm_embedder: embedder must not be nil")
	}
	cfg := biLSTMConfig{numLayers: DefaultLSTMLayers}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &BiLSTMEmbedder[B]{
		embedder:     embedder,
		embedderSize: embedderSize,
		hiddenSize:   hiddenSize,
		paddingIdx:   cfg.paddingIdx,
		lstm:         NewLSTM(embedderSize, hiddenSize, cfg.numLayers, true, backend),
		backend:      backend,
	}
	resetAll(embedder)
	return e
}

// Forward embeds and encodes the batch.
func (e *BiLSTMEmbedder[B]) Forward(inputs []*tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	if len(inputs) == 0 {
		panic("bilstm_embedder: at least one input channel required")
	}

	embedded := e.embedder.Forward(inputs)
	if embedded.Dim() != 3 || embedded.Size(-1) != e.embedderSize {
		panic(fmt.Sprintf("bilstm_embedder: embedder returned shape %v, want [batch, seq, %d]",
			embedded.Shape(), e.embedderSize))
	}
	batch, seq := embedded.Size(0), embedded.Size(1)
	if inputs[0].Size(0) != batch || inputs[0].Size(1) != seq {
		panic(fmt.Sprintf("bilstm_embedder: embedder returned shape %v for inputs of shape %v",
			embedded.Shape(), inputs[0].Shape()))
	}

	lengths := e.Lengths(inputs)

	// Packing needs decreasing lengths; restore the caller's order afterwards.
	perm := tensor.Argsort(lengths, true)
	inverse := tensor.Argsort(perm, false)

	sortedLengths := lengths.IndexSelect(0, perm).Data()
	lens := make([]int, batch)
	for i, l := range sortedLengths {
		lens[i] = int(l)
	}

	packed := PackPadded(embedded.IndexSelect(0, perm), lens)
	if packed.MaxLength() == 0 {
		return tensor.Zeros[float32](tensor.Shape{batch, seq, e.OutputSize()}, e.backend)
	}

	encoded := e.lstm.ForwardPacked(packed)
	return PadPacked(encoded, seq).IndexSelect(0, inverse)
}

// Lengths returns the number of non-padding steps of every sequence, as a
// [batch] tensor. Each channel must be [batch, seq] or [batch, seq, k] and
// all channels must share batch and seq.
func (e *BiLSTMEmbedder[B]) Lengths(inputs []*tensor.Tensor[int32, B]) *tensor.Tensor[int64, B] {
	channels := make([]*tensor.Tensor[int32, B], len(inputs))
	for i, in := range inputs {
		switch in.Dim() {
		case 2:
			channels[i] = in.Unsqueeze(-1)
		case 3:
			channels[i] = in
		default:
			panic(fmt.Sprintf("bilstm_embedder: input %d must be rank 2 or 3, got shape %v", i, in.Shape()))
		}
		if in.Size(0) != inputs[0].Size(0) || in.Size(1) != inputs[0].Size(1) {
			panic(fmt.Sprintf("bilstm_embedder: input %d shape %v does not match input 0 shape %v",
				i, in.Shape(), inputs[0].Shape()))
		}
	}

	// shape: (batch, seq, channels)
	combined := tensor.Cat(channels, -1)
	// shape: (batch, seq)
	mask := tensor.AnyDim(combined.NotEqual(e.paddingIdx), -1)
	// shape: (batch)
	return tensor.Cast[int64](mask).SumDim(1)
}

// Parameters returns the embedder parameters followed by the LSTM weights.
func (e *BiLSTMEmbedder[B]) Parameters() []*Parameter[B] {
	return append(parametersOf[B](e.embedder), e.lstm.Parameters()...)
}

// ResetParameters re-initialises the embedder (when it supports it) and the LSTM.
func (e *BiLSTMEmbedder[B]) ResetParameters() {
	resetAll(e.embedder)
	e.lstm.ResetParameters()
}

// OutputSize returns 2*hiddenSize.
func (e *BiLSTMEmbedder[B]) OutputSize() int {
	return e.lstm.OutputSize()
}

// LSTM returns the recurrent encoder.
func (e *BiLSTMEmbedder[B]) LSTM() *LSTM[B] { return e.lstm }

// String returns a string representation of the layer.
func (e *BiLSTMEmbedder[B]) String() string {
	return fmt.Sprintf("BiLSTMEmbedder(embedder_size=%d, hidden_size=%d, padding_idx=%d)",
		e.embedderSize, e.hiddenSize, e.paddingIdx)
}
