package serialization

import "errors"

// Common errors.
var (
	ErrInvalidHeader    = errors.New("invalid safetensors header")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrOutOfBounds      = errors.New("tensor extends beyond data section")
	ErrWriterClosed     = errors.New("writer is closed")
)
