package value

import (
	"fmt"
	"unsafe"

	"github.com/onnxgo/ort/internal/memory"
)

// extractSlice builds a zero-copy typed slice over a tensor core's native
// buffer. Device-placed buffers cannot be aliased from Go.
func extractSlice[T Scalar](c *Core) ([]T, error) {
	if c.device != memory.CPU {
		return nil, fmt.Errorf("value: buffer lives on %s and is not host-visible", c.device)
	}
	shape, err := c.Shape()
	if err != nil {
		return nil, err
	}
	n := shape.NumElements()
	if n == 0 {
		return nil, nil
	}
	p, err := c.dataPtr()
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(p), n), nil
}

// Extract returns a zero-copy view over the tensor's native buffer. It is
// infallible because T already proves compatibility with the core's tag;
// it panics if the buffer is device-placed or the engine fails to hand
// back the buffer it owns. For tensors that may live on a device, use
// TryExtract (or a View) instead: those return the error.
// Writes through the returned slice mutate the tensor: only do that as the
// sole owner, or go through ViewMut when the value is shared.
func (t Tensor[T]) Extract() []T {
	data, err := extractSlice[T](t.core)
	if err != nil {
		panic(fmt.Sprintf("value: extract %s tensor: %v", TypeOf[T](), err))
	}
	return data
}

// ExtractScalar returns the single element of a scalar (or one-element)
// tensor.
func (t Tensor[T]) ExtractScalar() (T, error) {
	var zero T
	data := t.Extract()
	if len(data) != 1 {
		shape, _ := t.Shape()
		return zero, &ShapeError{Shape: shape, Msg: "not a scalar"}
	}
	return data[0], nil
}

// TryExtract is the fallible counterpart of Extract for element-erased
// tensors: it performs the same element-tag check as a downcast, then
// produces the zero-copy view.
func TryExtract[T Scalar](t DynTensor) ([]T, error) {
	typed, err := Downcast[T](t)
	if err != nil {
		return nil, err
	}
	return extractSlice[T](typed.core)
}

// TryExtractValue narrows a fully erased value and extracts in one step,
// checking both the container discriminant and the element tag.
func TryExtractValue[T Scalar](v Value) ([]T, error) {
	typed, err := DowncastValue[T](v)
	if err != nil {
		return nil, err
	}
	return extractSlice[T](typed.core)
}
