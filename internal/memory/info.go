// Package memory provides memory descriptors and allocator capability
// objects. A descriptor identifies where tensor data lives (device kind,
// device id, allocation strategy, host visibility); an allocator is bound
// to a descriptor and produces native buffers with that placement.
package memory

import (
	"fmt"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/handle"
)

// DeviceKind identifies a class of compute device.
type DeviceKind int

// Supported device kinds.
const (
	CPU DeviceKind = iota
	CUDA
	DirectML
	CANN
)

// String returns a human-readable device name.
func (d DeviceKind) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case DirectML:
		return "DirectML"
	case CANN:
		return "CANN"
	default:
		return "Unknown"
	}
}

// allocatorName is the engine-side identifier for the device's allocator.
func (d DeviceKind) allocatorName() string {
	switch d {
	case CUDA:
		return "Cuda"
	case DirectML:
		return "Dml"
	case CANN:
		return "Cann"
	default:
		return "Cpu"
	}
}

// Info is a memory descriptor: the input to both value construction and
// allocator queries. Tensors created through an allocator bound to an Info
// inherit its device placement.
type Info struct {
	h        *handle.Ref[api.MemoryInfo]
	eng      api.Engine
	device   DeviceKind
	deviceID int
	alloc    api.AllocatorKind
	mem      api.MemKind
}

// NewInfo creates a memory descriptor for the given placement.
func NewInfo(device DeviceKind, deviceID int, alloc api.AllocatorKind, mem api.MemKind) (*Info, error) {
	eng, err := api.Active()
	if err != nil {
		return nil, err
	}
	raw, st := eng.CreateMemoryInfo(device.allocatorName(), alloc, deviceID, mem)
	if err := api.AsError(eng, st); err != nil {
		return nil, fmt.Errorf("memory: create descriptor: %w", err)
	}
	return &Info{
		h:        handle.Own(raw, eng.ReleaseMemoryInfo),
		eng:      eng,
		device:   device,
		deviceID: deviceID,
		alloc:    alloc,
		mem:      mem,
	}, nil
}

// NewCPUInfo creates the default host descriptor (arena-allocated CPU
// memory).
func NewCPUInfo() (*Info, error) {
	return NewInfo(CPU, 0, api.AllocatorArena, api.MemDefault)
}

// Device returns the descriptor's device kind.
func (i *Info) Device() DeviceKind { return i.device }

// DeviceID returns the descriptor's device ordinal.
func (i *Info) DeviceID() int { return i.deviceID }

// MemType returns the descriptor's memory placement.
func (i *Info) MemType() api.MemKind { return i.mem }

// HostVisible reports whether buffers with this placement can be read and
// written directly from Go.
func (i *Info) HostVisible() bool {
	return i.device == CPU || i.mem == api.MemCPUInput || i.mem == api.MemCPUOutput
}

// Raw returns the native handle for engine calls.
func (i *Info) Raw() api.MemoryInfo { return i.h.Raw() }

// Close releases the native descriptor. Idempotent.
func (i *Info) Close() { i.h.Close() }

// String describes the placement, e.g. "CUDA:0 (device)".
func (i *Info) String() string {
	strategy := "device"
	if i.alloc == api.AllocatorArena {
		strategy = "arena"
	}
	return fmt.Sprintf("%s:%d (%s)", i.device, i.deviceID, strategy)
}
