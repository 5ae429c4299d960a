// Copyright 2025 The onnxgo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package memory provides the public API for memory descriptors and
// allocators. A descriptor identifies where tensor data lives; an
// allocator bound to a descriptor produces native buffers with that
// placement.
package memory

import (
	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/memory"
)

// DeviceKind identifies a class of compute device.
type DeviceKind = memory.DeviceKind

// Device kinds.
const (
	CPU      DeviceKind = memory.CPU
	CUDA     DeviceKind = memory.CUDA
	DirectML DeviceKind = memory.DirectML
	CANN     DeviceKind = memory.CANN
)

// AllocatorKind selects the native allocation strategy.
type AllocatorKind = api.AllocatorKind

// Allocation strategies.
const (
	AllocatorDevice AllocatorKind = api.AllocatorDevice
	AllocatorArena  AllocatorKind = api.AllocatorArena
)

// MemKind distinguishes host-visible from device-only placements.
type MemKind = api.MemKind

// Memory placements.
const (
	MemDefault   MemKind = api.MemDefault
	MemCPUInput  MemKind = api.MemCPUInput
	MemCPUOutput MemKind = api.MemCPUOutput
)

// Info is a memory descriptor.
type Info = memory.Info

// Allocator is a capability object bound to a device placement.
type Allocator = memory.Allocator

// AllocationError reports a rejected native allocation request.
type AllocationError = memory.AllocationError

// NewInfo creates a memory descriptor for the given placement.
func NewInfo(device DeviceKind, deviceID int, alloc AllocatorKind, mem MemKind) (*Info, error) {
	return memory.NewInfo(device, deviceID, alloc, mem)
}

// NewCPUInfo creates the default host descriptor (arena-allocated CPU
// memory).
func NewCPUInfo() (*Info, error) { return memory.NewCPUInfo() }

// DefaultAllocator returns the engine's shared default allocator.
func DefaultAllocator() (*Allocator, error) { return memory.DefaultAllocator() }
