package nn_test

import (
	"testing"

	"github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestCNNEncoder_ShapeIndependentOfLength(t *testing.T) {
	b := cpu.New()
	enc := nn.NewCNNEncoder(4, b)
	assert.Equal(t, nn.DefaultNumFilters, enc.NumFilters())

	for _, seq := range []int{1, 2, 3, 7, 20} {
		out := enc.Forward(ramp(tensor.Shape{3, seq, 4}, 0.01, b))
		assert.Equal(t, tensor.Shape{3, nn.DefaultNumFilters}, out.Shape(), "seq %d", seq)
	}
}

func TestCNNEncoder_MaxOverTime(t *testing.T) {
	b := cpu.New()
	enc := nn.NewCNNEncoder(1, b, nn.WithNumFilters(1), nn.WithFilterWidth(2))
	setParam(t, enc.Conv().Weight(), []float32{1, 1})
	setParam(t, enc.Conv().Bias(), []float32{0})

	// Padded time axis is [0 1 2 3 0]; window sums are 1 3 5 3.
	x := tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3, 1}, b)
	assert.Equal(t, []float32{5}, enc.Forward(x).Data())

	// Every window that overlaps the sequence counts, including the
	// partial ones at the edges.
	setParam(t, enc.Conv().Weight(), []float32{-1, 0})
	x = tensor.MustFromSlice([]float32{-4, 1, 1}, tensor.Shape{1, 3, 1}, b)
	assert.Equal(t, []float32{4}, enc.Forward(x).Data())
}

func TestCNNEncoder_FilterSpansFeatures(t *testing.T) {
	b := cpu.New()
	enc := nn.NewCNNEncoder(2, b, nn.WithNumFilters(2), nn.WithFilterWidth(1))
	// Filter 0 reads feature 0, filter 1 reads feature 1.
	setParam(t, enc.Conv().Weight(), []float32{1, 0, 0, 1})
	setParam(t, enc.Conv().Bias(), []float32{0, 10})

	x := tensor.MustFromSlice([]float32{
		1, 9,
		7, 2,
		3, 4,
	}, tensor.Shape{1, 3, 2}, b)
	assert.Equal(t, []float32{7, 19}, enc.Forward(x).Data())
}

func TestCNNEncoder_Preconditions(t *testing.T) {
	b := cpu.New()
	enc := nn.NewCNNEncoder(4, b, nn.WithNumFilters(3))

	assert.Panics(t, func() { enc.Forward(ramp(tensor.Shape{2, 5, 3}, 1, b)) })
	assert.Panics(t, func() { enc.Forward(ramp(tensor.Shape{5, 4}, 1, b)) })
	assert.Panics(t, func() { enc.Forward(tensor.Zeros[float32](tensor.Shape{2, 0, 4}, b)) })
	assert.Panics(t, func() { nn.NewCNNEncoder(4, b, nn.WithFilterWidth(0)) })
}

func TestCharCNN_Forward(t *testing.T) {
	b := cpu.New()
	chars := nn.NewCharCNN(30, 8, b, nn.WithNumFilters(12))
	ids := tensor.MustFromSlice([]int32{3, 4, 5, 0, 0, 7, 0, 0}, tensor.Shape{2, 4}, b)

	out := chars.Forward(ids)
	assert.Equal(t, tensor.Shape{2, 12}, out.Shape())
	assert.Equal(t, 12, chars.OutputSize())
	assert.Len(t, chars.Parameters(), 3)
}
