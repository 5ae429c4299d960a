//go:build windows

package ffi

import "golang.org/x/sys/windows"

func loadLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	return uintptr(h), err
}

func lookupSymbol(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}

func defaultLibraryName() string {
	return "onnxengine.dll"
}
