package ffi

import "unsafe"

// cstr copies a Go string into a NUL-terminated byte slice. The slice
// must be kept alive for the duration of the native call.
func cstr(s string) *byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return &buf[0]
}

// cstrs converts a string slice into an array of NUL-terminated C
// strings. Both returned slices must stay alive for the call: the second
// holds the backing buffers the first points into.
func cstrs(ss []string) ([]*byte, [][]byte) {
	ptrs := make([]*byte, len(ss))
	bufs := make([][]byte, len(ss))
	for i, s := range ss {
		bufs[i] = make([]byte, len(s)+1)
		copy(bufs[i], s)
		ptrs[i] = &bufs[i][0]
	}
	return ptrs, bufs
}

// goString copies a NUL-terminated C string into a Go string.
func goString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
