package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// Default CNNEncoder hyper-parameters.
const (
	DefaultNumFilters  = 100
	DefaultFilterWidth = 3
)

// CNNEncoder encodes a sequence of vectors into one fixed-size vector: a
// convolution whose filters span filterWidth steps and the full feature
// axis, followed by max-over-time pooling.
//
// The time axis is zero-padded by filterWidth-1 on both sides, so every
// window that overlaps the sequence contributes and sequences of any
// length >= 1 are accepted.
//
// Input:  [batch, seq, inputSize]
// Output: [batch, numFilters]
type CNNEncoder[B tensor.Backend] struct {
	inputSize   int
	numFilters  int
	filterWidth int

	conv *Conv2D[B]
}

// CNNOption configures a CNNEncoder.
type CNNOption func(*cnnConfig)

type cnnConfig struct {
	numFilters  int
	filterWidth int
}

// WithNumFilters sets the number of convolution filters (output size).
func WithNumFilters(n int) CNNOption {
	return func(c *cnnConfig) {
		c.numFilters = n
	}
}

// WithFilterWidth sets how many time steps each filter spans.
func WithFilterWidth(w int) CNNOption {
	return func(c *cnnConfig) {
		c.filterWidth = w
	}
}

// NewCNNEncoder creates a CNNEncoder for inputs with inputSize features.
func NewCNNEncoder[B tensor.Backend](inputSize int, backend B, opts ...CNNOption) *CNNEncoder[B] {
	cfg := cnnConfig{numFilters: DefaultNumFilters, filterWidth: DefaultFilterWidth}
	for _, opt := range opts {
		opt(&cfg)
	}
	if inputSize <= 0 || cfg.numFilters <= 0 || cfg.filterWidth <= 0 {
		panic(fmt.Sprintf("cnn_encoder: invalid config input_size=%d, num_filters=%d, filter_width=%d",
			inputSize, cfg.numFilters, cfg.filterWidth))
	}

	return &CNNEncoder[B]{
		inputSize:   inputSize,
		numFilters:  cfg.numFilters,
		filterWidth: cfg.filterWidth,
		conv: NewConv2D(1, cfg.numFilters, cfg.filterWidth, inputSize, 1,
			cfg.filterWidth-1, 0, true, backend),
	}
}

// Forward convolves over time and max-pools each filter.
func (e *CNNEncoder[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if input.Dim() != 3 {
		panic(fmt.Sprintf("cnn_encoder: expected 3D input [batch, seq, features], got shape %v", input.Shape()))
	}
	if input.Size(-1) != e.inputSize {
		panic(fmt.Sprintf("cnn_encoder: expected input size %d, got %d", e.inputSize, input.Size(-1)))
	}
	if input.Size(1) == 0 {
		panic("cnn_encoder: sequence length must be >= 1")
	}

	// shape: (batch, 1, seq, inputSize)
	x := input.Unsqueeze(1)
	// shape: (batch, numFilters, seq + filterWidth - 1, 1)
	convolved := e.conv.Forward(x)
	if convolved.Size(-1) != 1 {
		panic(fmt.Sprintf("cnn_encoder: unexpected convolution output %v", convolved.Shape()))
	}
	// shape: (batch, numFilters, seq + filterWidth - 1)
	convolved = convolved.Squeeze(-1)
	// shape: (batch, numFilters)
	return convolved.MaxDim(-1)
}

// Parameters returns the convolution weight and bias.
func (e *CNNEncoder[B]) Parameters() []*Parameter[B] {
	return e.conv.Parameters()
}

// ResetParameters re-initialises the convolution.
func (e *CNNEncoder[B]) ResetParameters() {
	e.conv.ResetParameters()
}

// NumFilters returns the output size.
func (e *CNNEncoder[B]) NumFilters() int { return e.numFilters }

// Conv returns the underlying convolution.
func (e *CNNEncoder[B]) Conv() *Conv2D[B] { return e.conv }

// String returns a string representation of the layer.
func (e *CNNEncoder[B]) String() string {
	return fmt.Sprintf("CNNEncoder(input_size=%d, num_filters=%d, filter_width=%d)",
		e.inputSize, e.numFilters, e.filterWidth)
}
