package value

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/handle"
	"github.com/onnxgo/ort/internal/memory"
)

// Core is the type-erased runtime container every facade projects over: a
// foreign handle plus a cached discriminant and, when knowable, an element
// tag. The discriminant and tag never change for the life of the core; a
// downcast only narrows the caller's static knowledge of them.
type Core struct {
	h   *handle.Ref[api.Value]
	eng api.Engine

	kind      api.ValueKind
	elem      DataType
	elemKnown bool

	// device is the placement of the backing buffer. The zero value is
	// CPU, which covers every host-side constructor; allocator-backed
	// tensors inherit the allocator's placement.
	device memory.DeviceKind

	// keepAlive pins a Go-owned backing buffer for as long as the native
	// value references it. Nil when the engine owns the buffer.
	keepAlive any

	// views enforces the shared/exclusive view discipline.
	views sync.RWMutex
}

// wrap takes ownership of a foreign handle with a known discriminant.
// It never fails.
func wrap(eng api.Engine, h *handle.Ref[api.Value], kind api.ValueKind) *Core {
	return &Core{h: h, eng: eng, kind: kind}
}

// wrapTensor takes ownership of a tensor handle with a known element tag.
func wrapTensor(eng api.Engine, h *handle.Ref[api.Value], elem DataType) *Core {
	return &Core{h: h, eng: eng, kind: api.KindTensor, elem: elem, elemKnown: true}
}

// newCore queries the engine for the discriminant and element tag of an
// owned handle, e.g. a session output. The handle is released if the query
// fails.
func newCore(eng api.Engine, raw api.Value) (*Core, error) {
	h := handle.Own(raw, eng.ReleaseValue)
	kind, st := eng.ValueKindOf(raw)
	if err := api.AsError(eng, st); err != nil {
		h.Close()
		return nil, fmt.Errorf("value: query discriminant: %w", err)
	}
	c := wrap(eng, h, kind)
	if kind == api.KindTensor {
		elem, _, st := eng.TensorInfo(raw)
		if err := api.AsError(eng, st); err != nil {
			h.Close()
			return nil, fmt.Errorf("value: query element type: %w", err)
		}
		if dt, ok := dataTypeOf(elem); ok {
			c.elem = dt
			c.elemKnown = true
		}
	}
	return c, nil
}

// Kind returns the container discriminant.
func (c *Core) Kind() api.ValueKind { return c.kind }

// ElemType returns the element tag and whether it is known. Only tensor
// cores carry one.
func (c *Core) ElemType() (DataType, bool) { return c.elem, c.elemKnown }

// Device returns the placement of the backing buffer.
func (c *Core) Device() memory.DeviceKind { return c.device }

// Raw returns the native handle for engine calls.
func (c *Core) Raw() api.Value { return c.h.Raw() }

// Owned reports whether this core owns its native handle.
func (c *Core) Owned() bool { return c.h.Owned() }

// Shape queries the engine for the tensor's dimensions.
func (c *Core) Shape() (Shape, error) {
	_, dims, st := c.eng.TensorInfo(c.h.Raw())
	if err := api.AsError(c.eng, st); err != nil {
		return nil, fmt.Errorf("value: query shape: %w", err)
	}
	return Shape(dims), nil
}

// dataPtr returns the native buffer address of a tensor core.
func (c *Core) dataPtr() (unsafe.Pointer, error) {
	p, st := c.eng.TensorData(c.h.Raw())
	if err := api.AsError(c.eng, st); err != nil {
		return nil, fmt.Errorf("value: query data: %w", err)
	}
	return p, nil
}

// Close releases the native handle. Idempotent; a no-op for borrowed
// handles. The pinned backing buffer (if any) becomes collectible once the
// core itself is unreachable.
func (c *Core) Close() {
	c.h.Close()
}

// desc renders the runtime type for mismatch messages.
func (c *Core) desc() string {
	return typeDesc(c.kind.String(), c.elem, c.elemKnown)
}

// View discipline: non-blocking. A shared acquisition fails only while an
// exclusive view is outstanding; an exclusive acquisition fails while any
// view is outstanding.

func (c *Core) acquireShared() error {
	if !c.views.TryRLock() {
		return ErrViewHeld
	}
	return nil
}

func (c *Core) releaseShared() { c.views.RUnlock() }

func (c *Core) acquireExclusive() error {
	if !c.views.TryLock() {
		return ErrViewHeld
	}
	return nil
}

func (c *Core) releaseExclusive() { c.views.Unlock() }
