package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// Parameter represents a trainable tensor of a module, such as a weight or bias.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter creates a new named parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// SetTensor replaces the parameter value. The new tensor must have the same shape.
func (p *Parameter[B]) SetTensor(t *tensor.Tensor[float32, B]) error {
	if !t.Shape().Equal(p.tensor.Shape()) {
		return fmt.Errorf("parameter %s: shape %v does not match %v", p.name, t.Shape(), p.tensor.Shape())
	}
	p.tensor = t
	return nil
}

// reinit stores t as the value of p, allocating p on first use.
// An existing p keeps its identity, so handles from Parameters stay bound.
func reinit[B tensor.Backend](p *Parameter[B], name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	if p == nil {
		return NewParameter(name, t)
	}
	p.tensor = t
	return p
}

// String returns a short description of the parameter.
func (p *Parameter[B]) String() string {
	return fmt.Sprintf("Parameter(%s, %v)", p.name, p.tensor.Shape())
}
