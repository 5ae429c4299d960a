//go:build darwin || linux || freebsd

package ffi

import (
	"runtime"

	"github.com/ebitengine/purego"
)

func loadLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func lookupSymbol(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}

func defaultLibraryName() string {
	if runtime.GOOS == "darwin" {
		return "libonnxengine.dylib"
	}
	return "libonnxengine.so"
}
