package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative.
//
// Zero-sized dimensions are allowed: an empty batch of packed rows is a
// legitimate intermediate value.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// NormalizeDim converts a possibly negative dimension index into the range
// [0, rank). Panics if the index is out of range.
func NormalizeDim(dim, rank int) int {
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		panic(fmt.Sprintf("dimension %d out of range for rank %d", dim, rank))
	}
	return dim
}

// InferShape resolves a single -1 wildcard in newShape against numElements.
func InferShape(newShape []int, numElements int) Shape {
	out := make(Shape, len(newShape))
	wildcard := -1
	known := 1
	for i, d := range newShape {
		switch {
		case d == -1:
			if wildcard >= 0 {
				panic(fmt.Sprintf("reshape: more than one -1 in %v", newShape))
			}
			wildcard = i
		case d < 0:
			panic(fmt.Sprintf("reshape: invalid dimension %d in %v", d, newShape))
		default:
			known *= d
		}
		out[i] = d
	}

	if wildcard >= 0 {
		if known == 0 || numElements%known != 0 {
			panic(fmt.Sprintf("reshape: cannot infer -1 in %v for %d elements", newShape, numElements))
		}
		out[wildcard] = numElements / known
	}
	if out.NumElements() != numElements {
		panic(fmt.Sprintf("reshape: shape %v incompatible with %d elements", newShape, numElements))
	}
	return out
}
