package value

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int64

// NumElements returns the total number of elements. A scalar (empty shape)
// has one element.
func (s Shape) NumElements() int64 {
	n := int64(1)
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is non-negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return &ShapeError{Shape: s, Msg: fmt.Sprintf("dimension %d is negative (%d)", i, dim)}
		}
	}
	return nil
}

// Equal reports whether two shapes are identical.
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

// ComputeStrides calculates row-major element strides for the shape.
func (s Shape) ComputeStrides() []int64 {
	strides := make([]int64, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// contiguous reports whether strides describe a dense row-major layout of
// the shape.
func (s Shape) contiguous(strides []int64) bool {
	if len(strides) != len(s) {
		return false
	}
	expect := s.ComputeStrides()
	for i := range expect {
		if s[i] > 1 && strides[i] != expect[i] {
			return false
		}
	}
	return true
}
