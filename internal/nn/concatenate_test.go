package nn_test

import (
	"testing"

	"github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestConcatenate_WidthIsSum(t *testing.T) {
	b := cpu.New()
	words := nn.NewEmbedding(10, 3, b)
	tags := nn.NewEmbedding(5, 4, b)
	cat := nn.NewConcatenate[int32, backendT](words, tags)

	wordIDs := tensor.MustFromSlice([]int32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)
	tagIDs := tensor.MustFromSlice([]int32{0, 1, 2, 3, 4, 0}, tensor.Shape{2, 3}, b)

	out := cat.Forward([]*tensor.Tensor[int32, backendT]{wordIDs, tagIDs})
	assert.Equal(t, tensor.Shape{2, 3, 7}, out.Shape())

	assert.Equal(t, words.Forward(wordIDs).Data(), out.Narrow(2, 0, 3).Data())
	assert.Equal(t, tags.Forward(tagIDs).Data(), out.Narrow(2, 3, 4).Data())

	assert.Len(t, cat.Parameters(), 2)
	assert.Equal(t, 2, cat.Len())
}

func TestConcatenate_FloatEncoders(t *testing.T) {
	b := cpu.New()
	cat := nn.NewConcatenate[float32, backendT](identity{}, nn.NewLinear(2, 5, b))
	x := ramp(tensor.Shape{4, 2}, 1, b)

	out := cat.Forward([]*tensor.Tensor[float32, backendT]{x, x})
	assert.Equal(t, tensor.Shape{4, 7}, out.Shape())
	assert.Len(t, cat.Parameters(), 2)
}

func TestConcatenate_Preconditions(t *testing.T) {
	b := cpu.New()
	cat := nn.NewConcatenate[int32, backendT](nn.NewEmbedding(4, 2, b), nn.NewEmbedding(4, 2, b))
	ids := tensor.MustFromSlice([]int32{1, 2}, tensor.Shape{1, 2}, b)

	assert.Panics(t, func() { cat.Forward([]*tensor.Tensor[int32, backendT]{ids}) })
	assert.Panics(t, func() { nn.NewConcatenate[int32, backendT]() })
}

func TestConcatenate_ResetParameters(t *testing.T) {
	b := cpu.New()
	e := nn.NewEmbedding(4, 2, b)
	cat := nn.NewConcatenate[int32, backendT](e, nn.NewCharCNN(4, 2, b))

	before := e.Weight.Tensor().Clone().Data()
	cat.ResetParameters()
	assert.NotEqual(t, before, e.Weight.Tensor().Data())
}
