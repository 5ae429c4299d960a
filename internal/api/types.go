// Package api defines the contract consumed from the native inference
// engine: opaque handle types, status codes, value and element type
// enumerations, and the Engine interface every implementation (the purego
// loader, the test double) satisfies.
package api

// Opaque native handles. The engine hands these out; they are only
// meaningful when passed back to the same engine.

// Status is an opaque pointer to a native status object. The zero Status
// means success; any other value carries a code and a message and must be
// released.
type Status uintptr

// Env is an opaque pointer to a native engine environment.
type Env uintptr

// Session is an opaque pointer to a committed, runnable session.
type Session uintptr

// SessionOptions is an opaque pointer to a session builder's native
// configuration object.
type SessionOptions uintptr

// Value is an opaque pointer to a native value (tensor, sequence or map).
type Value uintptr

// Allocator is an opaque pointer to a native memory allocator.
type Allocator uintptr

// MemoryInfo is an opaque pointer to a native memory descriptor.
type MemoryInfo uintptr

// ErrorCode classifies a native failure.
type ErrorCode int32

// Native error code classes.
const (
	CodeOK ErrorCode = iota
	CodeFail
	CodeInvalidArgument
	CodeNoSuchFile
	CodeNoModel
	CodeEngineError
	CodeRuntimeException
	CodeInvalidProtobuf
	CodeModelLoaded
	CodeNotImplemented
	CodeInvalidGraph
	CodeEPFail
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeFail:
		return "fail"
	case CodeInvalidArgument:
		return "invalid argument"
	case CodeNoSuchFile:
		return "no such file"
	case CodeNoModel:
		return "no model"
	case CodeEngineError:
		return "engine error"
	case CodeRuntimeException:
		return "runtime exception"
	case CodeInvalidProtobuf:
		return "invalid protobuf"
	case CodeModelLoaded:
		return "model loaded"
	case CodeNotImplemented:
		return "not implemented"
	case CodeInvalidGraph:
		return "invalid graph"
	case CodeEPFail:
		return "execution provider failure"
	default:
		return "unknown"
	}
}

// ValueKind is the runtime discriminant of a native value's container.
type ValueKind int32

// Container kinds.
const (
	KindUnknown ValueKind = iota
	KindTensor
	KindSequence
	KindMap
)

// String returns a human-readable container name.
func (k ValueKind) String() string {
	switch k {
	case KindTensor:
		return "tensor"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ElementType is the engine's wire enumeration for tensor element types.
// The numbering follows the native ABI and must not be reordered.
type ElementType int32

// Native element types.
const (
	ElementUndefined ElementType = iota
	ElementFloat32
	ElementUint8
	ElementInt8
	ElementUint16
	ElementInt16
	ElementInt32
	ElementInt64
	ElementString
	ElementBool
	ElementFloat16
	ElementFloat64
	ElementUint32
	ElementUint64
	ElementComplex64
	ElementComplex128
	ElementBFloat16
)

// LoggingLevel is the engine's logging verbosity.
type LoggingLevel int32

// Logging levels, most to least verbose.
const (
	LogVerbose LoggingLevel = iota
	LogInfo
	LogWarning
	LogError
	LogFatal
)

// AllocatorKind selects the native allocation strategy.
type AllocatorKind int32

// Allocation strategies.
const (
	AllocatorDevice AllocatorKind = iota
	AllocatorArena
)

// MemKind distinguishes host-visible from device-only placements.
type MemKind int32

// Memory placements. MemCPUInput and MemCPUOutput are host-visible staging
// areas for devices that cannot read host memory directly.
const (
	MemDefault   MemKind = 0
	MemCPUInput  MemKind = -2
	MemCPUOutput MemKind = -1
)
