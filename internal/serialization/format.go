package serialization

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

const (
	// MaxHeaderSize bounds the JSON header; anything larger is rejected.
	MaxHeaderSize = 100 << 20

	metadataKey = "__metadata__"
)

// SafeTensors dtype names.
const (
	DTypeF32  = "F32"
	DTypeF16  = "F16"
	DTypeI32  = "I32"
	DTypeI64  = "I64"
	DTypeBool = "BOOL"
)

// TensorInfo describes one tensor entry of a SafeTensors header.
type TensorInfo struct {
	Name        string   `json:"-"`
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Size returns the number of bytes the tensor occupies in the data section.
func (ti TensorInfo) Size() int64 {
	return ti.DataOffsets[1] - ti.DataOffsets[0]
}

// dtypeName returns the SafeTensors name for dt, or F16 for float32 when half is set.
func dtypeName(dt tensor.DataType, half bool) (string, error) {
	switch dt {
	case tensor.Float32:
		if half {
			return DTypeF16, nil
		}
		return DTypeF32, nil
	case tensor.Int32:
		return DTypeI32, nil
	case tensor.Int64:
		return DTypeI64, nil
	case tensor.Bool:
		return DTypeBool, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}
}

// parseDType maps a SafeTensors dtype to the in-memory dtype and the
// number of bytes per stored element.
func parseDType(name string) (tensor.DataType, int, error) {
	switch name {
	case DTypeF32:
		return tensor.Float32, 4, nil
	case DTypeF16:
		return tensor.Float32, 2, nil
	case DTypeI32:
		return tensor.Int32, 4, nil
	case DTypeI64:
		return tensor.Int64, 8, nil
	case DTypeBool:
		return tensor.Bool, 1, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, name)
	}
}
