package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// LSTM is a multi-layer, optionally bidirectional long short-term memory
// network.
//
// Each layer and direction owns a cell with the gate layout (input, forget,
// cell, output):
//
//	i = sigmoid(x W_ii + b_ii + h W_hi + b_hi)
//	f = sigmoid(x W_if + b_if + h W_hf + b_hf)
//	g = tanh(x W_ig + b_ig + h W_hg + b_hg)
//	o = sigmoid(x W_io + b_io + h W_ho + b_ho)
//	c' = f * c + i * g
//	h' = o * tanh(c')
//
// The four gate matrices are stored stacked: weight_ih is [4*hidden, input]
// and weight_hh is [4*hidden, hidden]. For a bidirectional LSTM each layer's
// output is the concatenation [forward, backward] of size 2*hidden, which
// becomes the next layer's input.
//
// States start at zero for every sequence and are not returned; the module
// only produces the per-step hidden outputs of the last layer.
type LSTM[B tensor.Backend] struct {
	inputSize     int
	hiddenSize    int
	numLayers     int
	bidirectional bool

	cells [][]*lstmCell[B] // [layer][direction]

	backend B
}

type lstmCell[B tensor.Backend] struct {
	weightIH *Parameter[B] // [4*hidden, in]
	weightHH *Parameter[B] // [4*hidden, hidden]
	biasIH   *Parameter[B] // [4*hidden]
	biasHH   *Parameter[B] // [4*hidden]
	inSize   int
}

// NewLSTM creates an LSTM.
func NewLSTM[B tensor.Backend](inputSize, hiddenSize, numLayers int, bidirectional bool, backend B) *LSTM[B] {
	if inputSize <= 0 || hiddenSize <= 0 || numLayers <= 0 {
		panic(fmt.Sprintf("lstm: invalid config input_size=%d, hidden_size=%d, num_layers=%d",
			inputSize, hiddenSize, numLayers))
	}

	l := &LSTM[B]{
		inputSize:     inputSize,
		hiddenSize:    hiddenSize,
		numLayers:     numLayers,
		bidirectional: bidirectional,
		backend:       backend,
	}

	l.cells = make([][]*lstmCell[B], numLayers)
	for layer := range l.cells {
		inSize := inputSize
		if layer > 0 {
			inSize = hiddenSize * l.NumDirections()
		}
		l.cells[layer] = make([]*lstmCell[B], l.NumDirections())
		for dir := range l.cells[layer] {
			l.cells[layer][dir] = &lstmCell[B]{inSize: inSize}
		}
	}
	l.ResetParameters()
	return l
}

// NumDirections returns 2 for a bidirectional LSTM, 1 otherwise.
func (l *LSTM[B]) NumDirections() int {
	if l.bidirectional {
		return 2
	}
	return 1
}

// OutputSize returns the size of each output step: hidden * directions.
func (l *LSTM[B]) OutputSize() int {
	return l.hiddenSize * l.NumDirections()
}

// ResetParameters draws every weight and bias from U(-1/sqrt(hidden), 1/sqrt(hidden)).
func (l *LSTM[B]) ResetParameters() {
	bound := fanInBound(l.hiddenSize)
	gates := 4 * l.hiddenSize

	for layer, dirs := range l.cells {
		for dir, cell := range dirs {
			suffix := fmt.Sprintf("l%d", layer)
			if dir == 1 {
				suffix += "_reverse"
			}
			cell.weightIH = reinit(cell.weightIH, "lstm.weight_ih_"+suffix,
				UniformInit(bound, tensor.Shape{gates, cell.inSize}, l.backend))
			cell.weightHH = reinit(cell.weightHH, "lstm.weight_hh_"+suffix,
				UniformInit(bound, tensor.Shape{gates, l.hiddenSize}, l.backend))
			cell.biasIH = reinit(cell.biasIH, "lstm.bias_ih_"+suffix,
				UniformInit(bound, tensor.Shape{gates}, l.backend))
			cell.biasHH = reinit(cell.biasHH, "lstm.bias_hh_"+suffix,
				UniformInit(bound, tensor.Shape{gates}, l.backend))
		}
	}
}

// Parameters returns all weights, layer by layer, forward direction first.
func (l *LSTM[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, dirs := range l.cells {
		for _, cell := range dirs {
			params = append(params, cell.weightIH, cell.weightHH, cell.biasIH, cell.biasHH)
		}
	}
	return params
}

// Forward runs the LSTM over a dense batch where every sequence spans the
// full seq axis.
//
// Input:  [batch, seq, input]
// Output: [batch, seq, hidden * directions]
func (l *LSTM[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if input.Dim() != 3 {
		panic(fmt.Sprintf("lstm: expected 3D input [batch, seq, features], got shape %v", input.Shape()))
	}

	batch, seq := input.Size(0), input.Size(1)
	lengths := make([]int, batch)
	for i := range lengths {
		lengths[i] = seq
	}

	out := l.ForwardPacked(PackPadded(input, lengths))
	return PadPacked(out, seq)
}

// ForwardPacked runs the LSTM over packed sequences. Padded steps are never
// computed, so each sequence's backward direction starts at its own last
// step.
func (l *LSTM[B]) ForwardPacked(packed PackedSequence[B]) PackedSequence[B] {
	if packed.Data.Dim() != 2 || packed.Data.Size(1) != l.inputSize {
		panic(fmt.Sprintf("lstm: expected packed data [rows, %d], got shape %v", l.inputSize, packed.Data.Shape()))
	}

	x := packed.Data
	for _, dirs := range l.cells {
		outputs := make([]*tensor.Tensor[float32, B], len(dirs))
		for dir, cell := range dirs {
			outputs[dir] = cell.run(x, packed, l.hiddenSize, dir == 1)
		}
		x = tensor.Cat(outputs, 1)
	}

	return PackedSequence[B]{
		Data:       x,
		BatchSizes: packed.BatchSizes,
		Lengths:    packed.Lengths,
	}
}

// run computes one direction of one layer over packed input x [rows, in]
// and returns the packed hidden outputs [rows, hidden].
func (c *lstmCell[B]) run(x *tensor.Tensor[float32, B], packed PackedSequence[B], hidden int, reverse bool) *tensor.Tensor[float32, B] {
	backend := x.Backend()
	steps := packed.MaxLength()
	if steps == 0 {
		return tensor.Zeros[float32](tensor.Shape{0, hidden}, backend)
	}

	// Input projections for every packed row at once: [rows, 4*hidden].
	projected := x.MatMul(c.weightIH.Tensor().T()).AddBias(c.biasIH.Tensor(), 1)
	weightHH := c.weightHH.Tensor().T()
	offsets := packed.offsets()

	maxBatch := packed.BatchSizes[0]
	h := tensor.Zeros[float32](tensor.Shape{maxBatch, hidden}, backend)
	cell := tensor.Zeros[float32](tensor.Shape{maxBatch, hidden}, backend)

	outputs := make([]*tensor.Tensor[float32, B], steps)
	for k := 0; k < steps; k++ {
		s := k
		if reverse {
			s = steps - 1 - k
		}
		n := packed.BatchSizes[s]

		hPrev := h.Narrow(0, 0, n)
		cPrev := cell.Narrow(0, 0, n)

		// shape: (n, 4*hidden)
		gates := projected.Narrow(0, offsets[s], n).
			Add(hPrev.MatMul(weightHH).AddBias(c.biasHH.Tensor(), 1))

		i := gates.Narrow(1, 0, hidden).Sigmoid()
		f := gates.Narrow(1, hidden, hidden).Sigmoid()
		g := gates.Narrow(1, 2*hidden, hidden).Tanh()
		o := gates.Narrow(1, 3*hidden, hidden).Sigmoid()

		cNew := f.Mul(cPrev).Add(i.Mul(g))
		hNew := o.Mul(cNew.Tanh())

		outputs[s] = hNew
		h = replaceHead(h, hNew)
		cell = replaceHead(cell, cNew)
	}
	return tensor.Cat(outputs, 0)
}

// replaceHead returns full with its first head.Size(0) rows replaced by head.
func replaceHead[B tensor.Backend](full, head *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	n, total := head.Size(0), full.Size(0)
	if n == total {
		return head
	}
	return tensor.Cat([]*tensor.Tensor[float32, B]{head, full.Narrow(0, n, total-n)}, 0)
}

// String returns a string representation of the layer.
func (l *LSTM[B]) String() string {
	return fmt.Sprintf("LSTM(%d, %d, num_layers=%d, bidirectional=%v)",
		l.inputSize, l.hiddenSize, l.numLayers, l.bidirectional)
}
