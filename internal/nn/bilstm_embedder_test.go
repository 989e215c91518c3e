package nn_test

import (
	"testing"

	"github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWordEmbedder(t *testing.T, b backendT) (*nn.BiLSTMEmbedder[backendT], *nn.Concatenate[int32, backendT]) {
	t.Helper()
	nn.Seed(3)
	words := nn.NewEmbedding(10, 4, b, nn.WithPaddingIdx(0))
	embed := nn.NewConcatenate[int32, backendT](words)
	return nn.NewBiLSTMEmbedder[backendT](embed, 4, 3, b), embed
}

func wordBatch(b backendT) *tensor.Tensor[int32, backendT] {
	return tensor.MustFromSlice([]int32{
		3, 4, 0, 0, 0,
		1, 2, 3, 4, 5,
		0, 0, 0, 0, 0,
	}, tensor.Shape{3, 5}, b)
}

func TestBiLSTMEmbedder_Lengths(t *testing.T) {
	b := cpu.New()
	m, _ := newWordEmbedder(t, b)

	lengths := m.Lengths([]*tensor.Tensor[int32, backendT]{wordBatch(b)})
	assert.Equal(t, []int64{2, 5, 0}, lengths.Data())

	// A step is real when any channel is not padding.
	chars := tensor.Zeros[int32](tensor.Shape{3, 5, 2}, b)
	chars.Set(7, 2, 0, 1)
	lengths = m.Lengths([]*tensor.Tensor[int32, backendT]{wordBatch(b), chars})
	assert.Equal(t, []int64{2, 5, 1}, lengths.Data())
}

func TestBiLSTMEmbedder_CustomPadding(t *testing.T) {
	b := cpu.New()
	embed := nn.NewConcatenate[int32, backendT](nn.NewEmbedding(10, 2, b))
	m := nn.NewBiLSTMEmbedder[backendT](embed, 2, 2, b, nn.WithPadding(9))

	ids := tensor.MustFromSlice([]int32{0, 1, 9, 9}, tensor.Shape{2, 2}, b)
	assert.Equal(t, []int64{2, 0}, m.Lengths([]*tensor.Tensor[int32, backendT]{ids}).Data())
}

func TestBiLSTMEmbedder_MatchesUnbatchedLSTM(t *testing.T) {
	b := cpu.New()
	m, embed := newWordEmbedder(t, b)
	words := wordBatch(b)

	out := m.Forward([]*tensor.Tensor[int32, backendT]{words})
	require.Equal(t, tensor.Shape{3, 5, 6}, out.Shape())
	assert.Equal(t, 6, m.OutputSize())

	embedded := embed.Forward([]*tensor.Tensor[int32, backendT]{words})

	row1 := m.LSTM().Forward(embedded.Narrow(0, 1, 1))
	assert.InDeltaSlice(t, row1.Data(), out.Narrow(0, 1, 1).Data(), 1e-5)

	row0 := m.LSTM().Forward(embedded.Narrow(0, 0, 1).Narrow(1, 0, 2))
	assert.InDeltaSlice(t, row0.Data(), out.Narrow(0, 0, 1).Narrow(1, 0, 2).Data(), 1e-5)
}

func TestBiLSTMEmbedder_ZeroBeyondLength(t *testing.T) {
	b := cpu.New()
	m, _ := newWordEmbedder(t, b)

	out := m.Forward([]*tensor.Tensor[int32, backendT]{wordBatch(b)})

	assert.Equal(t, make([]float32, 3*6), out.Narrow(0, 0, 1).Narrow(1, 2, 3).Data())
	assert.Equal(t, make([]float32, 5*6), out.Narrow(0, 2, 1).Data())
	for _, v := range out.Narrow(0, 1, 1).Narrow(1, 4, 1).Data() {
		assert.NotZero(t, v)
	}
}

func TestBiLSTMEmbedder_PermutationEquivariant(t *testing.T) {
	b := cpu.New()
	m, _ := newWordEmbedder(t, b)
	words := wordBatch(b)

	out := m.Forward([]*tensor.Tensor[int32, backendT]{words})

	for _, order := range [][]int64{{2, 0, 1}, {1, 2, 0}, {0, 2, 1}} {
		perm := tensor.MustFromSlice(order, tensor.Shape{3}, b)
		shuffled := m.Forward([]*tensor.Tensor[int32, backendT]{words.IndexSelect(0, perm)})
		assert.InDeltaSlice(t, out.IndexSelect(0, perm).Data(), shuffled.Data(), 1e-6, "order %v", order)
	}
}

func TestBiLSTMEmbedder_AllPadding(t *testing.T) {
	b := cpu.New()
	m, _ := newWordEmbedder(t, b)

	out := m.Forward([]*tensor.Tensor[int32, backendT]{tensor.Zeros[int32](tensor.Shape{2, 4}, b)})
	assert.Equal(t, tensor.Shape{2, 4, 6}, out.Shape())
	assert.Equal(t, make([]float32, 48), out.Data())
}

func TestBiLSTMEmbedder_MultiChannel(t *testing.T) {
	b := cpu.New()
	nn.Seed(5)
	words := nn.NewEmbedding(10, 4, b, nn.WithPaddingIdx(0))
	chars := nn.NewTimeDistributed[int32, backendT](nn.NewCharCNN(20, 3, b, nn.WithNumFilters(5)))
	embed := nn.NewConcatenate[int32, backendT](words, chars)
	m := nn.NewBiLSTMEmbedder[backendT](embed, 9, 2, b)

	wordIDs := tensor.MustFromSlice([]int32{4, 5, 0, 6, 0, 0}, tensor.Shape{2, 3}, b)
	charIDs := tensor.MustFromSlice([]int32{
		1, 2, 0, 3, 4, 5, 0, 0, 0,
		6, 7, 8, 0, 0, 0, 0, 0, 0,
	}, tensor.Shape{2, 3, 3}, b)

	out := m.Forward([]*tensor.Tensor[int32, backendT]{wordIDs, charIDs})
	assert.Equal(t, tensor.Shape{2, 3, 4}, out.Shape())
	assert.Equal(t, make([]float32, 4), out.Narrow(0, 0, 1).Narrow(1, 2, 1).Data())
	assert.Equal(t, make([]float32, 8), out.Narrow(0, 1, 1).Narrow(1, 1, 2).Data())

	// word and char embeddings, char conv weight and bias, then 2 layers x 2 directions x 4.
	assert.Len(t, m.Parameters(), 20)
}

func TestBiLSTMEmbedder_Preconditions(t *testing.T) {
	b := cpu.New()
	m, _ := newWordEmbedder(t, b)

	assert.Panics(t, func() { m.Forward(nil) })
	assert.Panics(t, func() {
		m.Lengths([]*tensor.Tensor[int32, backendT]{tensor.Zeros[int32](tensor.Shape{3}, b)})
	})

	wrongSize := nn.NewBiLSTMEmbedder[backendT](nn.NewConcatenate[int32, backendT](nn.NewEmbedding(10, 2, b)), 4, 3, b)
	assert.Panics(t, func() { wrongSize.Forward([]*tensor.Tensor[int32, backendT]{wordBatch(b)}) })
}
