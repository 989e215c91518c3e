package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// ContextWindow concatenates, for every time step, the features of the
// window steps before it, the step itself and the window steps after it.
// Steps outside the sequence contribute zero frames.
//
// Input:  [batch, seq, features]
// Output: [batch, seq, (2*window+1) * features]
//
// A window of 0 is the identity.
type ContextWindow[B tensor.Backend] struct {
	window int
}

// NewContextWindow creates a ContextWindow. Panics if window is negative.
func NewContextWindow[B tensor.Backend](window int) *ContextWindow[B] {
	if window < 0 {
		panic(fmt.Sprintf("context_window: window must be >= 0, got %d", window))
	}
	return &ContextWindow[B]{window: window}
}

// Forward builds the windowed features.
func (w *ContextWindow[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if input.Dim() != 3 {
		panic(fmt.Sprintf("context_window: expected 3D input [batch, seq, features], got shape %v", input.Shape()))
	}
	if w.window == 0 {
		return input
	}

	batch, seq, features := input.Size(0), input.Size(1), input.Size(2)
	span := 2*w.window + 1

	if seq == 0 {
		return tensor.Zeros[float32](tensor.Shape{batch, 0, span * features}, input.Backend())
	}

	// shape: (batch, seq + 2*window, features)
	pad := tensor.Zeros[float32](tensor.Shape{batch, w.window, features}, input.Backend())
	padded := tensor.Cat([]*tensor.Tensor[float32, B]{pad, input, pad}, 1)

	frames := make([]*tensor.Tensor[float32, B], seq)
	for i := range frames {
		// shape: (batch, span * features)
		frames[i] = padded.Narrow(1, i, span).Reshape(batch, span*features)
	}
	return tensor.Stack(frames, 1)
}

// Parameters returns nil; the window has no weights.
func (w *ContextWindow[B]) Parameters() []*Parameter[B] {
	return nil
}

// Window returns the half-width of the window.
func (w *ContextWindow[B]) Window() int {
	return w.window
}

// OutputSize returns the feature size produced for inputs with the given
// number of features.
func (w *ContextWindow[B]) OutputSize(features int) int {
	return (2*w.window + 1) * features
}

// String returns a string representation of the layer.
func (w *ContextWindow[B]) String() string {
	return fmt.Sprintf("ContextWindow(window=%d)", w.window)
}
