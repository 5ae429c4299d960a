package memory

import (
	"fmt"
	"unsafe"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/handle"
)

// AllocationError reports a rejected native allocation request.
type AllocationError struct {
	Size int
	Err  error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocation of %d bytes failed: %v", e.Size, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// Allocator is a capability object bound to a device placement. It produces
// and frees native buffers; tensors created through it live on its device.
type Allocator struct {
	h    *handle.Ref[api.Allocator]
	eng  api.Engine
	info *Info // nil for the engine default allocator
}

// DefaultAllocator returns the engine's shared default allocator. The
// handle is borrowed: the engine owns it for the life of the process, so
// Close on the returned allocator is a no-op.
func DefaultAllocator() (*Allocator, error) {
	eng, err := api.Active()
	if err != nil {
		return nil, err
	}
	raw, st := eng.DefaultAllocator()
	if err := api.AsError(eng, st); err != nil {
		return nil, fmt.Errorf("memory: default allocator: %w", err)
	}
	return &Allocator{h: handle.Borrow(raw), eng: eng}, nil
}

// NewSessionAllocator returns an allocator scoped to a committed session
// and a memory descriptor. The descriptor must outlive the allocator.
// Unlike the default allocator, the handle is owned: Close releases it.
func NewSessionAllocator(eng api.Engine, s api.Session, info *Info) (*Allocator, error) {
	raw, st := eng.SessionAllocator(s, info.Raw())
	if err := api.AsError(eng, st); err != nil {
		return nil, fmt.Errorf("memory: session allocator for %s: %w", info, err)
	}
	return &Allocator{h: handle.Own(raw, eng.ReleaseAllocator), eng: eng, info: info}, nil
}

// Info returns the descriptor the allocator is bound to, or nil for the
// engine default allocator.
func (a *Allocator) Info() *Info { return a.info }

// Raw returns the native handle for engine calls.
func (a *Allocator) Raw() api.Allocator { return a.h.Raw() }

// Alloc requests size bytes from the native allocator.
func (a *Allocator) Alloc(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, &AllocationError{Size: size, Err: fmt.Errorf("size must be positive")}
	}
	p, st := a.eng.AllocatorAlloc(a.h.Raw(), uintptr(size))
	if err := api.AsError(a.eng, st); err != nil {
		return nil, &AllocationError{Size: size, Err: err}
	}
	return p, nil
}

// Free returns a buffer obtained from Alloc to the native allocator.
func (a *Allocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	a.eng.AllocatorFree(a.h.Raw(), p)
}

// Close releases the allocator handle. Idempotent; a no-op for borrowed
// engine-owned allocators.
func (a *Allocator) Close() { a.h.Close() }
