package nn_test

import (
	"slices"
	"testing"

	"github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resettable interface {
	Parameters() []*nn.Parameter[backendT]
	ResetParameters()
}

func snapshot(params []*nn.Parameter[backendT]) [][]float32 {
	values := make([][]float32, len(params))
	for i, p := range params {
		values[i] = slices.Clone(p.Tensor().Data())
	}
	return values
}

// assertRedrawn checks that reset keeps every *Parameter and gives each new values.
func assertRedrawn(t *testing.T, m resettable) {
	t.Helper()
	before := m.Parameters()
	values := snapshot(before)

	m.ResetParameters()

	after := m.Parameters()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Same(t, before[i], after[i], "parameter %s", before[i].Name())
		assert.NotEqual(t, values[i], after[i].Tensor().Data(), "parameter %s", before[i].Name())
	}
}

func TestResetParameters_KeepsHandles(t *testing.T) {
	b := cpu.New()
	nn.Seed(11)

	tests := []struct {
		name   string
		module resettable
	}{
		{"conv2d", nn.NewConv2D(2, 3, 2, 2, 1, 0, 0, true, b)},
		{"embedding", nn.NewEmbedding(6, 3, b)},
		{"lstm", nn.NewLSTM(3, 2, 2, true, b)},
		{"cnn encoder", nn.NewCNNEncoder(4, b, nn.WithNumFilters(3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRedrawn(t, tt.module)
		})
	}
}

func TestLinear_ResetKeepsHandles(t *testing.T) {
	b := cpu.New()
	l := nn.NewLinear(3, 4, b)
	weight, bias := l.Weight(), l.Bias()
	setParam(t, bias, []float32{1, 2, 3, 4})

	l.ResetParameters()

	assert.Same(t, weight, l.Weight())
	assert.Same(t, bias, l.Bias())
	assert.Equal(t, []float32{0, 0, 0, 0}, bias.Tensor().Data())
}

func TestTimeDistributed_ResetDelegates(t *testing.T) {
	b := cpu.New()
	nn.Seed(12)
	td := nn.NewTimeDistributed[int32, backendT](nn.NewCharCNN(8, 3, b, nn.WithNumFilters(4)))

	require.NotEmpty(t, td.Parameters())
	assertRedrawn(t, td)
}

func TestBiLSTMEmbedder_ResetDelegates(t *testing.T) {
	b := cpu.New()
	m, embed := newWordEmbedder(t, b)

	require.Len(t, m.Parameters(), len(embed.Parameters())+len(m.LSTM().Parameters()))
	assertRedrawn(t, m)
}

func TestBiLSTMEmbedder_HandleWritesReachForward(t *testing.T) {
	b := cpu.New()
	m, _ := newWordEmbedder(t, b)
	x := []*tensor.Tensor[int32, backendT]{wordBatch(b)}

	params := m.Parameters()
	m.ResetParameters()
	before := slices.Clone(m.Forward(x).Data())

	weight := params[0]
	require.Equal(t, "embedding.weight", weight.Name())
	require.NoError(t, weight.SetTensor(tensor.Zeros[float32](weight.Tensor().Shape(), b)))

	assert.NotEqual(t, before, m.Forward(x).Data())
}

func TestNewBiLSTMEmbedder_ResetsEmbedder(t *testing.T) {
	b := cpu.New()
	nn.Seed(13)
	words := nn.NewEmbeddingWithWeight(tensor.Ones(tensor.Shape{10, 4}, b))
	embed := nn.NewConcatenate[int32, backendT](words)

	nn.NewBiLSTMEmbedder[backendT](embed, 4, 3, b)

	assert.NotEqual(t, tensor.Ones(tensor.Shape{10, 4}, b).Data(), words.Weight.Tensor().Data())
}
