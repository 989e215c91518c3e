package nn_test

import (
	"testing"

	"github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendT = *cpu.CPUBackend

// ramp returns a tensor holding scale, 2*scale, 3*scale, ...
func ramp(shape tensor.Shape, scale float32, b backendT) *tensor.Tensor[float32, backendT] {
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32(i+1) * scale
	}
	return tensor.MustFromSlice(data, shape, b)
}

func setParam(t *testing.T, p *nn.Parameter[backendT], data []float32) {
	t.Helper()
	v, err := tensor.FromSlice(data, p.Tensor().Shape(), p.Tensor().Backend())
	require.NoError(t, err)
	require.NoError(t, p.SetTensor(v))
}

// identity is a parameter-free float encoder used to probe wrappers.
type identity struct{}

func (identity) Forward(x *tensor.Tensor[float32, backendT]) *tensor.Tensor[float32, backendT] {
	return x
}

func TestLinear_Forward(t *testing.T) {
	b := cpu.New()
	l := nn.NewLinear(2, 3, b)
	setParam(t, l.Weight(), []float32{1, 2, 3, 4, 5, 6})
	setParam(t, l.Bias(), []float32{1, 1, 1})

	x := tensor.MustFromSlice([]float32{1, 1, 0, 1}, tensor.Shape{1, 2, 2}, b)
	out := l.Forward(x)

	assert.Equal(t, tensor.Shape{1, 2, 3}, out.Shape())
	assert.Equal(t, []float32{4, 8, 12, 3, 5, 7}, out.Data())
	assert.Len(t, l.Parameters(), 2)
	assert.Panics(t, func() { l.Forward(ramp(tensor.Shape{2, 3}, 1, b)) })
}

func TestEmbedding_PaddingRow(t *testing.T) {
	b := cpu.New()
	nn.Seed(1)
	e := nn.NewEmbedding(5, 3, b, nn.WithPaddingIdx(0))

	ids := tensor.MustFromSlice([]int32{0, 2, 0, 4}, tensor.Shape{2, 2}, b)
	out := e.Forward(ids)

	assert.Equal(t, tensor.Shape{2, 2, 3}, out.Shape())
	data := out.Data()
	assert.Equal(t, []float32{0, 0, 0}, data[0:3])
	assert.Equal(t, []float32{0, 0, 0}, data[6:9])
	assert.NotEqual(t, []float32{0, 0, 0}, data[3:6])

	e.ResetParameters()
	assert.Equal(t, []float32{0, 0, 0}, e.Forward(tensor.MustFromSlice([]int32{0}, tensor.Shape{1}, b)).Data())
}

func TestConv2D_OutputShape(t *testing.T) {
	b := cpu.New()
	c := nn.NewConv2D(2, 4, 3, 3, 1, 1, 1, true, b)

	out := c.Forward(ramp(tensor.Shape{2, 2, 5, 6}, 0.1, b))
	assert.Equal(t, tensor.Shape{2, 4, 5, 6}, out.Shape())
	assert.Equal(t, [2]int{5, 6}, c.ComputeOutputSize(5, 6))
	assert.Len(t, c.Parameters(), 2)

	assert.Panics(t, func() { c.Forward(ramp(tensor.Shape{2, 3, 5, 6}, 1, b)) })
	assert.Panics(t, func() { nn.NewConv2D(1, 1, 0, 1, 1, 0, 0, false, b) })
}

func TestStateDict_RoundTrip(t *testing.T) {
	b := cpu.New()
	nn.Seed(10)
	src := nn.NewCNNEncoder(4, b, nn.WithNumFilters(5))
	nn.Seed(20)
	dst := nn.NewCNNEncoder(4, b, nn.WithNumFilters(5))

	x := ramp(tensor.Shape{2, 6, 4}, 0.05, b)
	require.NotEqual(t, src.Forward(x).Data(), dst.Forward(x).Data())

	dict := nn.StateDict[backendT](src)
	assert.Contains(t, dict, "0.conv2d.weight")
	assert.Contains(t, dict, "1.conv2d.bias")

	require.NoError(t, nn.LoadStateDict[backendT](dst, dict))
	assert.Equal(t, src.Forward(x).Data(), dst.Forward(x).Data())
}

func TestLoadStateDict_Errors(t *testing.T) {
	b := cpu.New()
	enc := nn.NewCNNEncoder(4, b, nn.WithNumFilters(5))
	other := nn.NewCNNEncoder(3, b, nn.WithNumFilters(5))
	lstm := nn.NewLSTM(4, 2, 1, false, b)

	err := nn.LoadStateDict[backendT](enc, nn.StateDict[backendT](lstm))
	assert.Error(t, err)

	err = nn.LoadStateDict[backendT](enc, nn.StateDict[backendT](other))
	assert.ErrorContains(t, err, "shape")

	dict := nn.StateDict[backendT](enc)
	dict["9.unknown"] = dict["0.conv2d.weight"]
	delete(dict, "0.conv2d.weight")
	assert.ErrorContains(t, nn.LoadStateDict[backendT](enc, dict), "missing")
}
