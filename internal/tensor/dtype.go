// Package tensor provides the core tensor types and forward operations for seqnn.
package tensor

import "fmt"

// DType is the element constraint: float32 activations, integer token ids
// and lengths, and bool masks.
type DType interface {
	~float32 | ~int32 | ~int64 | ~bool
}

// DataType identifies an element type at runtime.
type DataType int

// Element types carried by RawTensor.
const (
	Float32 DataType = iota
	Int32
	Int64
	Bool
)

var dataTypes = [...]struct {
	name string
	size int
}{
	Float32: {"float32", 4},
	Int32:   {"int32", 4},
	Int64:   {"int64", 8},
	Bool:    {"bool", 1},
}

func (dt DataType) valid() bool {
	return dt >= 0 && int(dt) < len(dataTypes)
}

// Size returns the width of one element in bytes.
func (dt DataType) Size() int {
	if !dt.valid() {
		panic(fmt.Sprintf("tensor: unknown data type %d", int(dt)))
	}
	return dataTypes[dt].size
}

func (dt DataType) String() string {
	if !dt.valid() {
		return "unknown"
	}
	return dataTypes[dt].name
}

// DataTypeOf maps the type parameter T to its DataType.
func DataTypeOf[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case int32:
		return Int32
	case int64:
		return Int64
	case bool:
		return Bool
	}
	panic(fmt.Sprintf("tensor: unsupported element type %T", zero))
}
