package value

import (
	"fmt"
	"sync"
)

// Borrow-scoped aliases over a tensor's native buffer. At most one
// exclusive view, or any number of shared views, may be alive against a
// value at once; acquisition is non-blocking and fails with ErrViewHeld on
// conflict. A view must be closed to release its borrow.

// View is a shared, read-only alias. It deliberately exposes no mutable
// slice: mutation through a shared view is an interface-level
// impossibility, not a runtime check.
type View[T Scalar] struct {
	core  *Core
	data  []T
	shape Shape
	once  sync.Once
}

// ViewMut is an exclusive alias with mutable access.
type ViewMut[T Scalar] struct {
	core  *Core
	data  []T
	shape Shape
	once  sync.Once
}

// View acquires a shared view. Fails with ErrViewHeld while an exclusive
// view is outstanding.
func (t Tensor[T]) View() (*View[T], error) {
	if err := t.core.acquireShared(); err != nil {
		return nil, err
	}
	data, err := extractSlice[T](t.core)
	if err != nil {
		t.core.releaseShared()
		return nil, err
	}
	shape, err := t.core.Shape()
	if err != nil {
		t.core.releaseShared()
		return nil, err
	}
	return &View[T]{core: t.core, data: data, shape: shape}, nil
}

// ViewMut acquires an exclusive view. Fails with ErrViewHeld while any
// view is outstanding.
func (t Tensor[T]) ViewMut() (*ViewMut[T], error) {
	if err := t.core.acquireExclusive(); err != nil {
		return nil, err
	}
	data, err := extractSlice[T](t.core)
	if err != nil {
		t.core.releaseExclusive()
		return nil, err
	}
	shape, err := t.core.Shape()
	if err != nil {
		t.core.releaseExclusive()
		return nil, err
	}
	return &ViewMut[T]{core: t.core, data: data, shape: shape}, nil
}

// offset computes the flat index for multi-dimensional indices.
func offset(shape Shape, indices []int64) int64 {
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}
	strides := shape.ComputeStrides()
	off := int64(0)
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, shape[i]))
		}
		off += idx * strides[i]
	}
	return off
}

// Shape returns the viewed tensor's dimensions.
func (v *View[T]) Shape() Shape { return v.shape }

// Len returns the number of elements.
func (v *View[T]) Len() int { return len(v.data) }

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (v *View[T]) At(indices ...int64) T {
	return v.data[offset(v.shape, indices)]
}

// Copy returns the elements as a fresh slice the caller may mutate freely.
func (v *View[T]) Copy() []T {
	out := make([]T, len(v.data))
	copy(out, v.data)
	return out
}

// Close releases the shared borrow. Idempotent.
func (v *View[T]) Close() {
	v.once.Do(v.core.releaseShared)
}

// Shape returns the viewed tensor's dimensions.
func (v *ViewMut[T]) Shape() Shape { return v.shape }

// Data returns the mutable zero-copy element slice. Mutable extraction is
// only reachable through an exclusive view.
func (v *ViewMut[T]) Data() []T { return v.data }

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (v *ViewMut[T]) At(indices ...int64) T {
	return v.data[offset(v.shape, indices)]
}

// Set writes the element at the given indices.
// Panics if indices are out of bounds.
func (v *ViewMut[T]) Set(value T, indices ...int64) {
	v.data[offset(v.shape, indices)] = value
}

// Close releases the exclusive borrow. Idempotent.
func (v *ViewMut[T]) Close() {
	v.once.Do(v.core.releaseExclusive)
}
