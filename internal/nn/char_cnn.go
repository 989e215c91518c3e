package nn

import (
	"github.com/born-ml/seqnn/internal/tensor"
)

// CharCNN turns the character ids of a word into one vector: an embedding
// lookup followed by a CNNEncoder. Character id 0 is padding.
//
// Input:  [words, chars] int32
// Output: [words, numFilters]
//
// Wrap it in TimeDistributed to apply it to [batch, seq, chars] batches.
type CharCNN[B tensor.Backend] struct {
	embed *Embedding[B]
	cnn   *CNNEncoder[B]
}

// NewCharCNN creates a character encoder over an alphabet of numChars ids.
func NewCharCNN[B tensor.Backend](numChars, charDim int, backend B, opts ...CNNOption) *CharCNN[B] {
	return &CharCNN[B]{
		embed: NewEmbedding(numChars, charDim, backend, WithPaddingIdx(0)),
		cnn:   NewCNNEncoder(charDim, backend, opts...),
	}
}

// Forward embeds and encodes each word.
func (c *CharCNN[B]) Forward(chars *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return c.cnn.Forward(c.embed.Forward(chars))
}

// Parameters returns embedding and convolution parameters.
func (c *CharCNN[B]) Parameters() []*Parameter[B] {
	return parametersOf[B](c.embed, c.cnn)
}

// ResetParameters re-initialises both stages.
func (c *CharCNN[B]) ResetParameters() {
	resetAll(c.embed, c.cnn)
}

// OutputSize returns the size of each word vector.
func (c *CharCNN[B]) OutputSize() int {
	return c.cnn.NumFilters()
}
