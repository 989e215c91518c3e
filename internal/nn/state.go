package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// StateDict returns a map of parameter keys to raw tensors.
//
// Keys are "<index>.<name>", where index is the parameter's position in
// owner.Parameters(); the order is stable for a given module structure.
func StateDict[B tensor.Backend](owner ParameterOwner[B]) map[string]*tensor.RawTensor {
	params := owner.Parameters()
	dict := make(map[string]*tensor.RawTensor, len(params))
	for i, p := range params {
		dict[stateKey(i, p)] = p.Tensor().Raw()
	}
	return dict
}

// LoadStateDict copies values from dict into owner's parameters.
// Every parameter must be present with a matching shape.
func LoadStateDict[B tensor.Backend](owner ParameterOwner[B], dict map[string]*tensor.RawTensor) error {
	params := owner.Parameters()
	if len(dict) != len(params) {
		return fmt.Errorf("state dict has %d entries, module has %d parameters", len(dict), len(params))
	}

	for i, p := range params {
		key := stateKey(i, p)
		raw, ok := dict[key]
		if !ok {
			return fmt.Errorf("state dict: missing parameter %q", key)
		}
		if raw.DType() != tensor.Float32 {
			return fmt.Errorf("state dict: parameter %q has dtype %s, expected float32", key, raw.DType())
		}

		t := tensor.New[float32](raw.Clone(), p.Tensor().Backend())
		if err := p.SetTensor(t); err != nil {
			return fmt.Errorf("state dict: %w", err)
		}
	}
	return nil
}

func stateKey[B tensor.Backend](i int, p *Parameter[B]) string {
	return fmt.Sprintf("%d.%s", i, p.Name())
}
