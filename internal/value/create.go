package value

import (
	"fmt"
	"unsafe"

	"github.com/d4l3k/go-bfloat16"
	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/handle"
	"github.com/onnxgo/ort/internal/memory"
	"github.com/x448/float16"
)

// Construction entry points and the contiguity cloning policy:
//
//   - NewTensor takes a raw (shape, contiguous buffer) pair and never
//     clones; the buffer is pinned for the life of the value.
//   - NewTensorFromView takes a borrowed view whose lifetime cannot be tied
//     to the value, so it always clones.
//   - NewTensorStrided takes an owned strided array and clones only when
//     the layout is not dense row-major.
//   - NewTensorAllocated produces an uninitialized engine-owned buffer
//     through an allocator, inheriting its device placement.

// sliceBytes returns the address and byte length of a scalar slice.
func sliceBytes[T Scalar](data []T) (unsafe.Pointer, uintptr) {
	if len(data) == 0 {
		return nil, 0
	}
	var zero T
	return unsafe.Pointer(unsafe.SliceData(data)), uintptr(len(data)) * unsafe.Sizeof(zero)
}

// createTensor wraps a Go buffer as a native tensor without copying.
// The buffer is pinned via the core's keepAlive marker.
func createTensor[T Scalar](shape Shape, data []T) (Tensor[T], error) {
	eng, err := api.Active()
	if err != nil {
		return Tensor[T]{}, err
	}
	if err := shape.Validate(); err != nil {
		return Tensor[T]{}, err
	}
	if n := shape.NumElements(); n != int64(len(data)) {
		return Tensor[T]{}, &ShapeError{
			Shape: shape,
			Msg:   fmt.Sprintf("requires %d elements, but buffer has %d", n, len(data)),
		}
	}
	info, err := memory.NewCPUInfo()
	if err != nil {
		return Tensor[T]{}, err
	}
	defer info.Close()

	ptr, byteLen := sliceBytes(data)
	raw, st := eng.CreateTensorWithData(info.Raw(), ptr, byteLen, shape, TypeOf[T]().element())
	if err := api.AsError(eng, st); err != nil {
		return Tensor[T]{}, fmt.Errorf("value: create tensor: %w", err)
	}
	core := wrapTensor(eng, handle.Own(raw, eng.ReleaseValue), TypeOf[T]())
	core.keepAlive = data
	return Tensor[T]{core: core}, nil
}

// NewTensor creates a tensor over a raw (shape, contiguous buffer) pair.
// The buffer is never copied: it is assumed contiguous and is kept alive
// for as long as the native value references it. Mutating it afterwards
// mutates the tensor.
func NewTensor[T Scalar](shape Shape, data []T) (Tensor[T], error) {
	return createTensor(shape, data)
}

// NewTensorFromView creates a tensor from a borrowed view of caller-owned
// data. The view's lifetime cannot be proven to outlive the value, so the
// data is always cloned.
func NewTensorFromView[T Scalar](shape Shape, view []T) (Tensor[T], error) {
	clone := make([]T, len(view))
	copy(clone, view)
	return createTensor(shape, clone)
}

// NewTensorStrided creates a tensor from an owned strided array. When the
// strides describe a dense row-major layout the buffer is used as-is
// (zero-copy); otherwise the elements are compacted into a fresh contiguous
// buffer.
func NewTensorStrided[T Scalar](shape Shape, strides []int64, data []T) (Tensor[T], error) {
	if err := shape.Validate(); err != nil {
		return Tensor[T]{}, err
	}
	if len(strides) != len(shape) {
		return Tensor[T]{}, &ShapeError{
			Shape: shape,
			Msg:   fmt.Sprintf("%d strides for %d dimensions", len(strides), len(shape)),
		}
	}
	if shape.contiguous(strides) {
		return createTensor(shape, data)
	}
	if err := validateStrided(shape, strides, int64(len(data))); err != nil {
		return Tensor[T]{}, err
	}
	return createTensor(shape, compact(shape, strides, data))
}

// validateStrided checks that every (shape, strides) offset stays within
// the source buffer.
func validateStrided(shape Shape, strides []int64, srcLen int64) error {
	if shape.NumElements() == 0 {
		return nil
	}
	max := int64(0)
	for d := range shape {
		if strides[d] < 0 {
			return &ShapeError{Shape: shape, Msg: fmt.Sprintf("stride %d is negative", d)}
		}
		max += (shape[d] - 1) * strides[d]
	}
	if max >= srcLen {
		return &ShapeError{
			Shape: shape,
			Msg:   fmt.Sprintf("strided layout reaches offset %d in a buffer of %d elements", max, srcLen),
		}
	}
	return nil
}

// compact gathers a strided array into a fresh dense row-major buffer.
func compact[T Scalar](shape Shape, strides []int64, src []T) []T {
	out := make([]T, shape.NumElements())
	index := make([]int64, len(shape))
	for i := range out {
		offset := int64(0)
		for d := range index {
			offset += index[d] * strides[d]
		}
		out[i] = src[offset]
		for d := len(index) - 1; d >= 0; d-- {
			index[d]++
			if index[d] < shape[d] {
				break
			}
			index[d] = 0
		}
	}
	return out
}

// NewTensorAllocated creates an uninitialized tensor whose buffer is
// produced by the given allocator. The tensor inherits the allocator's
// device placement; a rejected request surfaces as an AllocationError.
func NewTensorAllocated[T Scalar](alloc *memory.Allocator, shape Shape) (Tensor[T], error) {
	eng, err := api.Active()
	if err != nil {
		return Tensor[T]{}, err
	}
	if err := shape.Validate(); err != nil {
		return Tensor[T]{}, err
	}
	raw, st := eng.CreateTensorAllocated(alloc.Raw(), shape, TypeOf[T]().element())
	if err := api.AsError(eng, st); err != nil {
		return Tensor[T]{}, &memory.AllocationError{
			Size: int(shape.NumElements() * TypeOf[T]().Size()),
			Err:  err,
		}
	}
	core := wrapTensor(eng, handle.Own(raw, eng.ReleaseValue), TypeOf[T]())
	if info := alloc.Info(); info != nil {
		core.device = info.Device()
	}
	return Tensor[T]{core: core}, nil
}

// NewSequence creates a sequence from the given members. The engine copies
// the members; the caller keeps ownership of the originals.
func NewSequence(members ...Facade) (DynSequence, error) {
	eng, err := api.Active()
	if err != nil {
		return DynSequence{}, err
	}
	raws := make([]api.Value, len(members))
	for i, m := range members {
		raws[i] = m.coreRef().Raw()
	}
	raw, st := eng.CreateSequence(raws)
	if err := api.AsError(eng, st); err != nil {
		return DynSequence{}, fmt.Errorf("value: create sequence: %w", err)
	}
	return DynSequence{core: wrap(eng, handle.Own(raw, eng.ReleaseValue), api.KindSequence)}, nil
}

// NewMap creates a map from parallel key and value slices. The slices are
// wrapped as temporary tensors which are released on every exit path, error
// paths included.
func NewMap[K Scalar, V Scalar](keys []K, values []V) (Map[K, V], error) {
	eng, err := api.Active()
	if err != nil {
		return Map[K, V]{}, err
	}
	kt, err := NewTensor(Shape{int64(len(keys))}, keys)
	if err != nil {
		return Map[K, V]{}, err
	}
	defer kt.Close()
	vt, err := NewTensor(Shape{int64(len(values))}, values)
	if err != nil {
		return Map[K, V]{}, err
	}
	defer vt.Close()

	raw, st := eng.CreateMap(kt.core.Raw(), vt.core.Raw())
	if err := api.AsError(eng, st); err != nil {
		return Map[K, V]{}, fmt.Errorf("value: create map: %w", err)
	}
	return Map[K, V]{core: wrap(eng, handle.Own(raw, eng.ReleaseValue), api.KindMap)}, nil
}

// NewFloat16Tensor converts float32 data to half precision and creates a
// tensor over the converted buffer.
func NewFloat16Tensor(shape Shape, data []float32) (Tensor[float16.Float16], error) {
	conv := make([]float16.Float16, len(data))
	for i, f := range data {
		conv[i] = float16.Fromfloat32(f)
	}
	return createTensor(shape, conv)
}

// NewBFloat16Tensor converts float32 data to bfloat16 and creates a tensor
// over the converted buffer.
func NewBFloat16Tensor(shape Shape, data []float32) (Tensor[bfloat16.BF16], error) {
	conv := make([]bfloat16.BF16, len(data))
	for i, f := range data {
		conv[i] = bfloat16.FromFloat32(f)
	}
	return createTensor(shape, conv)
}
