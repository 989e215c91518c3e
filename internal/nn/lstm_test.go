package nn_test

import (
	"math"
	"testing"

	"github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLSTM_Parameters(t *testing.T) {
	b := cpu.New()
	l := nn.NewLSTM(5, 3, 2, true, b)

	params := l.Parameters()
	require.Len(t, params, 16)
	assert.Equal(t, "lstm.weight_ih_l0", params[0].Name())
	assert.Equal(t, tensor.Shape{12, 5}, params[0].Tensor().Shape())
	assert.Equal(t, "lstm.weight_hh_l0_reverse", params[5].Name())
	assert.Equal(t, "lstm.weight_ih_l1", params[8].Name())
	assert.Equal(t, tensor.Shape{12, 6}, params[8].Tensor().Shape())
	assert.Equal(t, tensor.Shape{12}, params[15].Tensor().Shape())

	bound := float32(1 / math.Sqrt(3))
	for _, p := range params {
		for _, v := range p.Tensor().Data() {
			assert.LessOrEqual(t, v, bound)
			assert.GreaterOrEqual(t, v, -bound)
		}
	}
	assert.Equal(t, 6, l.OutputSize())
}

func TestLSTM_KnownValues(t *testing.T) {
	b := cpu.New()
	l := nn.NewLSTM(1, 1, 1, false, b)
	params := l.Parameters()
	// Only the cell-gate bias is non-zero, so i = f = o = 0.5 and g = tanh(1).
	setParam(t, params[0], []float32{0, 0, 0, 0})
	setParam(t, params[1], []float32{0, 0, 0, 0})
	setParam(t, params[2], []float32{0, 0, 1, 0})
	setParam(t, params[3], []float32{0, 0, 0, 0})

	out := l.Forward(tensor.MustFromSlice([]float32{3, -2}, tensor.Shape{1, 2, 1}, b))

	g := math.Tanh(1)
	c1 := 0.5 * g
	c2 := 0.5*c1 + 0.5*g
	assert.Equal(t, tensor.Shape{1, 2, 1}, out.Shape())
	assert.InDeltaSlice(t, []float32{
		float32(0.5 * math.Tanh(c1)),
		float32(0.5 * math.Tanh(c2)),
	}, out.Data(), 1e-6)
}

func TestLSTM_PackedMatchesPerSequence(t *testing.T) {
	b := cpu.New()
	nn.Seed(7)
	l := nn.NewLSTM(2, 3, 2, true, b)
	x := ramp(tensor.Shape{2, 4, 2}, 0.1, b)

	packed := l.ForwardPacked(nn.PackPadded(x, []int{4, 2}))
	assert.Equal(t, []int{2, 2, 1, 1}, packed.BatchSizes)
	out := nn.PadPacked(packed, 4)
	require.Equal(t, tensor.Shape{2, 4, 6}, out.Shape())

	full := l.Forward(x.Narrow(0, 0, 1))
	assert.InDeltaSlice(t, full.Data(), out.Narrow(0, 0, 1).Data(), 1e-5)

	// The second sequence only sees its first two steps, in both directions.
	short := l.Forward(x.Narrow(0, 1, 1).Narrow(1, 0, 2))
	assert.InDeltaSlice(t, short.Data(), out.Narrow(0, 1, 1).Narrow(1, 0, 2).Data(), 1e-5)
	assert.Equal(t, make([]float32, 12), out.Narrow(0, 1, 1).Narrow(1, 2, 2).Data())
}

func TestLSTM_ReverseDirectionSeesFuture(t *testing.T) {
	b := cpu.New()
	nn.Seed(8)
	l := nn.NewLSTM(1, 2, 1, true, b)

	a := l.Forward(tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3, 1}, b))
	c := l.Forward(tensor.MustFromSlice([]float32{1, 2, -3}, tensor.Shape{1, 3, 1}, b))

	// Forward half of step 0 is unchanged, backward half is not.
	assert.Equal(t, a.Narrow(1, 0, 1).Narrow(2, 0, 2).Data(), c.Narrow(1, 0, 1).Narrow(2, 0, 2).Data())
	assert.NotEqual(t, a.Narrow(1, 0, 1).Narrow(2, 2, 2).Data(), c.Narrow(1, 0, 1).Narrow(2, 2, 2).Data())
}

func TestLSTM_Preconditions(t *testing.T) {
	b := cpu.New()
	l := nn.NewLSTM(3, 2, 1, false, b)

	assert.Panics(t, func() { l.Forward(ramp(tensor.Shape{2, 3}, 1, b)) })
	assert.Panics(t, func() { l.Forward(ramp(tensor.Shape{1, 2, 4}, 1, b)) })
	assert.Panics(t, func() { nn.NewLSTM(3, 0, 1, false, b) })
}
