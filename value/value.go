// Copyright 2025 The onnxgo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package value provides the public API for the typed value model: typed
// and type-erased facades over native engine values, with checked
// downcasts, lossless upcasts, zero-copy extraction and borrow-scoped
// views.
//
// The facade lattice, ordered by specialization:
//   - Value: fully erased, for heterogeneous storage
//   - DynTensor, DynSequence, DynMap: container known, element erased
//   - Tensor[T], Map[K, V]: fully specialized
//
// Example:
//
//	t, _ := value.NewTensor(value.Shape{2, 2}, []float32{1, 2, 3, 4})
//	defer t.Close()
//	v := t.Erase()                         // store as Value
//	back, err := value.DowncastValue[float32](v) // recover, checked
package value

import (
	"github.com/d4l3k/go-bfloat16"
	"github.com/onnxgo/ort/internal/memory"
	"github.com/onnxgo/ort/internal/value"
	"github.com/x448/float16"
)

// Scalar is the constraint for supported tensor element types.
type Scalar = value.Scalar

// DataType is the runtime element type tag of a tensor value.
type DataType = value.DataType

// Element type tags.
const (
	Float32  DataType = value.Float32
	Float64  DataType = value.Float64
	Int8     DataType = value.Int8
	Int16    DataType = value.Int16
	Int32    DataType = value.Int32
	Int64    DataType = value.Int64
	Uint8    DataType = value.Uint8
	Uint16   DataType = value.Uint16
	Uint32   DataType = value.Uint32
	Uint64   DataType = value.Uint64
	Bool     DataType = value.Bool
	Float16  DataType = value.Float16
	BFloat16 DataType = value.BFloat16
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} is a 3D tensor with dimensions 2×3×4.
type Shape = value.Shape

// Value is the fully erased facade.
type Value = value.Value

// DynTensor is the container-known, element-erased tensor facade.
type DynTensor = value.DynTensor

// Tensor is the fully specialized tensor facade.
type Tensor[T Scalar] = value.Tensor[T]

// DynSequence is the sequence facade.
type DynSequence = value.DynSequence

// DynMap is the container-known, key/value-erased map facade.
type DynMap = value.DynMap

// Map is the fully specialized map facade.
type Map[K Scalar, V Scalar] = value.Map[K, V]

// Facade is implemented by every projection over a native value.
type Facade = value.Facade

// View is a shared, read-only borrow of a tensor's buffer.
type View[T Scalar] = value.View[T]

// ViewMut is an exclusive, mutable borrow of a tensor's buffer.
type ViewMut[T Scalar] = value.ViewMut[T]

// Inputs is an ordered, possibly named bundle of values for a session run.
type Inputs = value.Inputs

// TypeMismatchError reports a failed downcast.
type TypeMismatchError = value.TypeMismatchError

// ShapeError reports an invalid shape or layout.
type ShapeError = value.ShapeError

// ErrViewHeld is returned when a view acquisition conflicts with an
// outstanding view.
var ErrViewHeld = value.ErrViewHeld

// TypeOf infers the runtime tag for a compile-time element type.
func TypeOf[T Scalar]() DataType { return value.TypeOf[T]() }

// NewTensor creates a tensor over a raw (shape, contiguous buffer) pair
// without copying. The buffer must stay untouched unless the caller is the
// sole owner.
func NewTensor[T Scalar](shape Shape, data []T) (Tensor[T], error) {
	return value.NewTensor(shape, data)
}

// NewTensorFromView creates a tensor from a borrowed view of caller-owned
// data; the data is always cloned.
func NewTensorFromView[T Scalar](shape Shape, view []T) (Tensor[T], error) {
	return value.NewTensorFromView(shape, view)
}

// NewTensorStrided creates a tensor from an owned strided array, cloning
// only when the layout is not dense row-major.
func NewTensorStrided[T Scalar](shape Shape, strides []int64, data []T) (Tensor[T], error) {
	return value.NewTensorStrided(shape, strides, data)
}

// NewTensorAllocated creates an uninitialized tensor through the given
// allocator, inheriting its device placement.
func NewTensorAllocated[T Scalar](alloc *memory.Allocator, shape Shape) (Tensor[T], error) {
	return value.NewTensorAllocated[T](alloc, shape)
}

// NewSequence creates a sequence from the given members.
func NewSequence(members ...Facade) (DynSequence, error) {
	return value.NewSequence(members...)
}

// NewMap creates a map from parallel key and value slices.
func NewMap[K Scalar, V Scalar](keys []K, values []V) (Map[K, V], error) {
	return value.NewMap(keys, values)
}

// NewFloat16Tensor converts float32 data to half precision and creates a
// tensor over the converted buffer.
func NewFloat16Tensor(shape Shape, data []float32) (Tensor[float16.Float16], error) {
	return value.NewFloat16Tensor(shape, data)
}

// NewBFloat16Tensor converts float32 data to bfloat16 and creates a tensor
// over the converted buffer.
func NewBFloat16Tensor(shape Shape, data []float32) (Tensor[bfloat16.BF16], error) {
	return value.NewBFloat16Tensor(shape, data)
}

// DowncastValue narrows a fully erased value straight to a tensor of T,
// checking both the container discriminant and the element tag.
func DowncastValue[T Scalar](v Value) (Tensor[T], error) {
	return value.DowncastValue[T](v)
}

// Downcast specializes a container-known tensor to element type T.
func Downcast[T Scalar](t DynTensor) (Tensor[T], error) {
	return value.Downcast[T](t)
}

// DowncastMap specializes a map to key type K and value type V.
func DowncastMap[K Scalar, V Scalar](m DynMap) (Map[K, V], error) {
	return value.DowncastMap[K, V](m)
}

// TryExtract downcasts an element-erased tensor and extracts its elements
// in one step.
func TryExtract[T Scalar](t DynTensor) ([]T, error) {
	return value.TryExtract[T](t)
}

// TryExtractValue narrows a fully erased value and extracts in one step.
func TryExtractValue[T Scalar](v Value) ([]T, error) {
	return value.TryExtractValue[T](v)
}

// NewInputs returns an empty input bundle.
func NewInputs() *Inputs { return value.NewInputs() }

// AddTensor converts a raw (shape, buffer) pair into a bundle-owned tensor
// and appends it under name.
func AddTensor[T Scalar](in *Inputs, name string, shape Shape, data []T) *Inputs {
	return value.AddTensor(in, name, shape, data)
}
