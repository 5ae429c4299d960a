package api

import "unsafe"

// Engine is the capability surface consumed from the native inference
// engine. Implementations translate these calls into the engine's C ABI
// (internal/ffi) or emulate them in memory (internal/enginetest).
//
// Conventions: every fallible call returns a Status out-parameter folded
// into a Go return value; the zero Status means success and anything else
// must be turned into an error with AsError (which releases it). Release
// functions never fail and must tolerate being the last reference.
type Engine interface {
	// Status introspection.
	StatusCode(Status) ErrorCode
	StatusMessage(Status) string
	ReleaseStatus(Status)

	// Environment lifecycle and build queries.
	CreateEnv(level LoggingLevel, name string) (Env, Status)
	ReleaseEnv(Env)
	BuildInfo() string
	AvailableProviders() ([]string, Status)

	// Memory descriptors and allocators.
	CreateMemoryInfo(allocatorName string, alloc AllocatorKind, deviceID int, mem MemKind) (MemoryInfo, Status)
	ReleaseMemoryInfo(MemoryInfo)
	DefaultAllocator() (Allocator, Status)
	SessionAllocator(Session, MemoryInfo) (Allocator, Status)
	ReleaseAllocator(Allocator)
	AllocatorAlloc(Allocator, uintptr) (unsafe.Pointer, Status)
	AllocatorFree(Allocator, unsafe.Pointer)

	// Value construction and introspection.
	CreateTensorWithData(info MemoryInfo, data unsafe.Pointer, byteLen uintptr, shape []int64, elem ElementType) (Value, Status)
	CreateTensorAllocated(alloc Allocator, shape []int64, elem ElementType) (Value, Status)
	CreateSequence(elems []Value) (Value, Status)
	CreateMap(keys, values Value) (Value, Status)
	ValueKindOf(Value) (ValueKind, Status)
	TensorInfo(Value) (ElementType, []int64, Status)
	TensorData(Value) (unsafe.Pointer, Status)
	ValueCount(Value) (int, Status)
	ValueAt(Value, int, Allocator) (Value, Status)
	ReleaseValue(Value)

	// Session options and execution provider binding.
	CreateSessionOptions() (SessionOptions, Status)
	SetIntraOpThreads(SessionOptions, int) Status
	SetInterOpThreads(SessionOptions, int) Status
	SetGraphOptimization(SessionOptions, int) Status
	SetMemoryPattern(SessionOptions, bool) Status
	SetCPUMemArena(SessionOptions, bool) Status
	AppendProvider(opts SessionOptions, name string, optKeys, optVals []string) Status
	ReleaseSessionOptions(SessionOptions)

	// Session lifecycle.
	CreateSession(env Env, modelPath string, opts SessionOptions) (Session, Status)
	CreateSessionFromBytes(env Env, model []byte, opts SessionOptions) (Session, Status)
	InputCount(Session) (int, Status)
	OutputCount(Session) (int, Status)
	InputName(Session, int) (string, Status)
	OutputName(Session, int) (string, Status)
	InputInfo(Session, int) (ElementType, []int64, Status)
	OutputInfo(Session, int) (ElementType, []int64, Status)
	Run(s Session, inputNames []string, inputs []Value, outputNames []string) ([]Value, Status)
	ReleaseSession(Session)
}
