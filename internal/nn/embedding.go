package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// Embedding is a lookup table that maps discrete indices to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] learnable parameter
//   - Forward: indices [...] -> embeddings [..., EmbedDim]
//
// When a padding index is configured its row is zero after every reset,
// so padded positions embed to the zero vector.
//
// Example:
//
//	embed := nn.NewEmbedding(10000, 256, backend, nn.WithPaddingIdx(0))
//	ids := tensor.MustFromSlice([]int32{1, 2, 0}, tensor.Shape{1, 3}, backend)
//	vectors := embed.Forward(ids) // [1, 3, 256]
type Embedding[B tensor.Backend] struct {
	Weight   *Parameter[B] // Embedding weight matrix [NumEmbed, EmbedDim]
	NumEmbed int           // Number of embeddings (vocabulary size)
	EmbedDim int           // Embedding dimension (vector size)

	paddingIdx int // -1 when unset
	backend    B
}

// EmbeddingOption configures an Embedding.
type EmbeddingOption func(*embeddingConfig)

type embeddingConfig struct {
	paddingIdx int
}

// WithPaddingIdx keeps the row at idx zeroed.
func WithPaddingIdx(idx int) EmbeddingOption {
	return func(c *embeddingConfig) {
		c.paddingIdx = idx
	}
}

// NewEmbedding creates a new Embedding layer with weights drawn from N(0, 1).
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B, opts ...EmbeddingOption) *Embedding[B] {
	if numEmbeddings <= 0 || embeddingDim <= 0 {
		panic(fmt.Sprintf("embedding: invalid size num=%d, dim=%d", numEmbeddings, embeddingDim))
	}

	cfg := embeddingConfig{paddingIdx: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.paddingIdx >= numEmbeddings {
		panic(fmt.Sprintf("embedding: padding index %d out of range [0, %d)", cfg.paddingIdx, numEmbeddings))
	}

	e := &Embedding[B]{
		NumEmbed:   numEmbeddings,
		EmbedDim:   embeddingDim,
		paddingIdx: cfg.paddingIdx,
		backend:    backend,
	}
	e.ResetParameters()
	return e
}

// NewEmbeddingWithWeight creates an Embedding layer with pre-initialized
// weights, e.g. pretrained word vectors.
func NewEmbeddingWithWeight[B tensor.Backend](weight *tensor.Tensor[float32, B]) *Embedding[B] {
	shape := weight.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D, got shape %v", shape))
	}

	return &Embedding[B]{
		Weight:     NewParameter("embedding.weight", weight),
		NumEmbed:   shape[0],
		EmbedDim:   shape[1],
		paddingIdx: -1,
		backend:    weight.Backend(),
	}
}

// ResetParameters re-draws the table from N(0, 1) and zeroes the padding row.
func (e *Embedding[B]) ResetParameters() {
	weight := Randn(tensor.Shape{e.NumEmbed, e.EmbedDim}, e.backend)
	if e.paddingIdx >= 0 {
		row := weight.Data()[e.paddingIdx*e.EmbedDim : (e.paddingIdx+1)*e.EmbedDim]
		clear(row)
	}
	e.Weight = reinit(e.Weight, "embedding.weight", weight)
}

// Forward maps each index to its embedding vector.
//
// Panics if any index is out of bounds [0, NumEmbed).
func (e *Embedding[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return e.Weight.Tensor().Embedding(indices)
}

// Parameters returns the list of trainable parameters.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}

// String returns a string representation of the layer.
func (e *Embedding[B]) String() string {
	if e.paddingIdx >= 0 {
		return fmt.Sprintf("Embedding(%d, %d, padding_idx=%d)", e.NumEmbed, e.EmbedDim, e.paddingIdx)
	}
	return fmt.Sprintf("Embedding(%d, %d)", e.NumEmbed, e.EmbedDim)
}
