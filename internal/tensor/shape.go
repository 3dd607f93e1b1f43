package tensor

import "fmt"

// Shape represents the logical dimensions of a tensor.
// Tensor3 uses {C, H, W}, Tensor4 uses {K, C, H, W}.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
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

// stridesFor computes the per-axis strides of a buffer whose axes are laid out
// in the given sequence, outermost first. The result is indexed by logical
// axis, not by layout position.
func stridesFor(s Shape, layout []int) []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(layout) - 1; i >= 0; i-- {
		axis := layout[i]
		strides[axis] = step
		step *= s[axis]
	}
	return strides
}
