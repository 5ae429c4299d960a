// Package handle provides scoped ownership wrappers for opaque native
// resources handed out by the inference engine.
//
// Every resource crossing the foreign boundary is held through a Ref: an
// owned Ref releases the resource exactly once when closed, a borrowed Ref
// never releases it. Nothing else in this module calls a release function
// directly.
package handle

import "sync/atomic"

// Ref wraps an opaque native address together with its ownership.
type Ref[T ~uintptr] struct {
	raw     T
	release func(T)
	owned   bool
	closed  atomic.Bool
}

// Own wraps raw as an owned handle. release is invoked exactly once, on the
// first Close call.
func Own[T ~uintptr](raw T, release func(T)) *Ref[T] {
	return &Ref[T]{raw: raw, release: release, owned: true}
}

// Borrow wraps raw as a borrowed handle. Close is a no-op for borrowed
// handles; the true owner is responsible for the release.
func Borrow[T ~uintptr](raw T) *Ref[T] {
	return &Ref[T]{raw: raw}
}

// Raw returns the underlying native address.
// Panics if an owned handle has already been closed.
func (r *Ref[T]) Raw() T {
	if r.closed.Load() {
		panic("handle: use after close")
	}
	return r.raw
}

// Owned reports whether this wrapper owns the resource.
func (r *Ref[T]) Owned() bool {
	return r.owned
}

// Closed reports whether the resource has been released.
func (r *Ref[T]) Closed() bool {
	return r.closed.Load()
}

// Close releases the resource if this handle owns it. Safe to call any
// number of times and on every exit path; only the first call on an owned
// handle reaches the engine.
func (r *Ref[T]) Close() {
	if !r.owned {
		return
	}
	if r.closed.CompareAndSwap(false, true) {
		r.release(r.raw)
	}
}
