// Package ffi loads the native engine's shared library and binds its C
// API function table into an api.Engine.
package ffi

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/onnxgo/ort/internal/api"
)

// PathEnvVar overrides the shared library location when set.
const PathEnvVar = "ORT_DYLIB_PATH"

// entryPoint is the one exported symbol; everything else is reached
// through the function table it hands back.
const entryPoint = "EngineGetApiBase"

// apiBase mirrors the struct the entry point returns.
type apiBase struct {
	getAPI           uintptr // fn(version uint32) -> *table
	getVersionString uintptr // fn() -> *char
}

// typeShapeInfo is an opaque handle to the engine's tensor metadata
// object, private to this package.
type typeShapeInfo uintptr

// Runtime is the purego-backed engine binding. All function pointers are
// registered once at load; a Runtime is immutable and safe for concurrent
// use afterwards.
type Runtime struct {
	lib     uintptr
	version string

	getErrorCode    func(api.Status) api.ErrorCode
	getErrorMessage func(api.Status) unsafe.Pointer
	releaseStatus   func(api.Status)

	createEnv          func(int32, *byte, *api.Env) api.Status
	releaseEnv         func(api.Env)
	getBuildInfoString func() unsafe.Pointer

	getAvailableProviders     func(***byte, *int32) api.Status
	releaseAvailableProviders func(**byte, int32) api.Status

	createMemoryInfo    func(*byte, int32, int32, int32, *api.MemoryInfo) api.Status
	releaseMemoryInfo   func(api.MemoryInfo)
	getDefaultAllocator func(*api.Allocator) api.Status
	createAllocator     func(api.Session, api.MemoryInfo, *api.Allocator) api.Status
	releaseAllocator    func(api.Allocator)
	allocatorAlloc      func(api.Allocator, uintptr, *unsafe.Pointer) api.Status
	allocatorFree       func(api.Allocator, unsafe.Pointer)

	createTensorWithData func(api.MemoryInfo, unsafe.Pointer, uintptr, *int64, uintptr, int32, *api.Value) api.Status
	createTensorAsValue  func(api.Allocator, *int64, uintptr, int32, *api.Value) api.Status
	createValue          func(*api.Value, uintptr, int32, *api.Value) api.Status

	getValueType         func(api.Value, *int32) api.Status
	getTensorShape       func(api.Value, *typeShapeInfo) api.Status
	getTensorElementType func(typeShapeInfo, *int32) api.Status
	getDimensionsCount   func(typeShapeInfo, *uintptr) api.Status
	getDimensions        func(typeShapeInfo, *int64, uintptr) api.Status
	releaseShapeInfo     func(typeShapeInfo)
	getTensorMutableData func(api.Value, *unsafe.Pointer) api.Status
	getValueCount        func(api.Value, *uintptr) api.Status
	getValue             func(api.Value, int32, api.Allocator, *api.Value) api.Status
	releaseValue         func(api.Value)

	createSessionOptions    func(*api.SessionOptions) api.Status
	setIntraOpNumThreads    func(api.SessionOptions, int32) api.Status
	setInterOpNumThreads    func(api.SessionOptions, int32) api.Status
	setGraphOptimization    func(api.SessionOptions, int32) api.Status
	enableMemPattern        func(api.SessionOptions) api.Status
	disableMemPattern       func(api.SessionOptions) api.Status
	enableCpuMemArena       func(api.SessionOptions) api.Status
	disableCpuMemArena      func(api.SessionOptions) api.Status
	appendExecutionProvider func(api.SessionOptions, *byte, **byte, **byte, uintptr) api.Status
	releaseSessionOptions   func(api.SessionOptions)

	createSession            func(api.Env, *byte, api.SessionOptions, *api.Session) api.Status
	createSessionFromArray   func(api.Env, unsafe.Pointer, uintptr, api.SessionOptions, *api.Session) api.Status
	sessionGetInputCount     func(api.Session, *uintptr) api.Status
	sessionGetOutputCount    func(api.Session, *uintptr) api.Status
	sessionGetInputName      func(api.Session, uintptr, api.Allocator, **byte) api.Status
	sessionGetOutputName     func(api.Session, uintptr, api.Allocator, **byte) api.Status
	sessionGetInputTypeInfo  func(api.Session, uintptr, *typeShapeInfo) api.Status
	sessionGetOutputTypeInfo func(api.Session, uintptr, *typeShapeInfo) api.Status
	run                      func(api.Session, uintptr, **byte, *api.Value, uintptr, **byte, uintptr, *api.Value) api.Status
	releaseSession           func(api.Session)
}

// Load opens the shared library at path and binds the function table.
func Load(path string) (*Runtime, error) {
	lib, err := loadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("ffi: load %s: %w", path, err)
	}
	sym, err := lookupSymbol(lib, entryPoint)
	if err != nil {
		return nil, fmt.Errorf("ffi: %s has no %s: %w", path, entryPoint, err)
	}

	var getAPIBase func() *apiBase
	purego.RegisterFunc(&getAPIBase, sym)
	base := getAPIBase()
	if base == nil {
		return nil, fmt.Errorf("ffi: %s returned nil", entryPoint)
	}

	var getAPI func(uint32) unsafe.Pointer
	purego.RegisterFunc(&getAPI, base.getAPI)
	table := getAPI(apiVersion)
	if table == nil {
		return nil, fmt.Errorf("ffi: engine does not provide api version %d", apiVersion)
	}

	var getVersion func() unsafe.Pointer
	purego.RegisterFunc(&getVersion, base.getVersionString)

	r := &Runtime{lib: lib, version: goString(getVersion())}
	r.bind(table)
	return r, nil
}

// LoadDefault loads the library named by the ORT_DYLIB_PATH environment
// variable, falling back to the platform's default library name resolved
// through the system search path.
func LoadDefault() (*Runtime, error) {
	path := os.Getenv(PathEnvVar)
	if path == "" {
		path = defaultLibraryName()
	}
	return Load(path)
}

// Version returns the engine's version string.
func (r *Runtime) Version() string { return r.version }

// slot returns the function pointer stored at index i of the table.
func slot(table unsafe.Pointer, i int) uintptr {
	return *(*uintptr)(unsafe.Add(table, uintptr(i)*unsafe.Sizeof(uintptr(0))))
}

func (r *Runtime) bind(table unsafe.Pointer) {
	purego.RegisterFunc(&r.getErrorCode, slot(table, slotGetErrorCode))
	purego.RegisterFunc(&r.getErrorMessage, slot(table, slotGetErrorMessage))
	purego.RegisterFunc(&r.releaseStatus, slot(table, slotReleaseStatus))

	purego.RegisterFunc(&r.createEnv, slot(table, slotCreateEnv))
	purego.RegisterFunc(&r.releaseEnv, slot(table, slotReleaseEnv))
	purego.RegisterFunc(&r.getBuildInfoString, slot(table, slotGetBuildInfoString))
	purego.RegisterFunc(&r.getAvailableProviders, slot(table, slotGetAvailableProviders))
	purego.RegisterFunc(&r.releaseAvailableProviders, slot(table, slotReleaseAvailableProviders))

	purego.RegisterFunc(&r.createMemoryInfo, slot(table, slotCreateMemoryInfo))
	purego.RegisterFunc(&r.releaseMemoryInfo, slot(table, slotReleaseMemoryInfo))
	purego.RegisterFunc(&r.getDefaultAllocator, slot(table, slotGetDefaultAllocator))
	purego.RegisterFunc(&r.createAllocator, slot(table, slotCreateAllocator))
	purego.RegisterFunc(&r.releaseAllocator, slot(table, slotReleaseAllocator))
	purego.RegisterFunc(&r.allocatorAlloc, slot(table, slotAllocatorAlloc))
	purego.RegisterFunc(&r.allocatorFree, slot(table, slotAllocatorFree))

	purego.RegisterFunc(&r.createTensorWithData, slot(table, slotCreateTensorWithData))
	purego.RegisterFunc(&r.createTensorAsValue, slot(table, slotCreateTensorAsValue))
	purego.RegisterFunc(&r.createValue, slot(table, slotCreateValue))

	purego.RegisterFunc(&r.getValueType, slot(table, slotGetValueType))
	purego.RegisterFunc(&r.getTensorShape, slot(table, slotGetTensorTypeAndShape))
	purego.RegisterFunc(&r.getTensorElementType, slot(table, slotGetTensorElementType))
	purego.RegisterFunc(&r.getDimensionsCount, slot(table, slotGetDimensionsCount))
	purego.RegisterFunc(&r.getDimensions, slot(table, slotGetDimensions))
	purego.RegisterFunc(&r.releaseShapeInfo, slot(table, slotReleaseTensorTypeAndShapeInfo))
	purego.RegisterFunc(&r.getTensorMutableData, slot(table, slotGetTensorMutableData))
	purego.RegisterFunc(&r.getValueCount, slot(table, slotGetValueCount))
	purego.RegisterFunc(&r.getValue, slot(table, slotGetValue))
	purego.RegisterFunc(&r.releaseValue, slot(table, slotReleaseValue))

	purego.RegisterFunc(&r.createSessionOptions, slot(table, slotCreateSessionOptions))
	purego.RegisterFunc(&r.setIntraOpNumThreads, slot(table, slotSetIntraOpNumThreads))
	purego.RegisterFunc(&r.setInterOpNumThreads, slot(table, slotSetInterOpNumThreads))
	purego.RegisterFunc(&r.setGraphOptimization, slot(table, slotSetGraphOptimizationLevel))
	purego.RegisterFunc(&r.enableMemPattern, slot(table, slotEnableMemPattern))
	purego.RegisterFunc(&r.disableMemPattern, slot(table, slotDisableMemPattern))
	purego.RegisterFunc(&r.enableCpuMemArena, slot(table, slotEnableCpuMemArena))
	purego.RegisterFunc(&r.disableCpuMemArena, slot(table, slotDisableCpuMemArena))
	purego.RegisterFunc(&r.appendExecutionProvider, slot(table, slotAppendExecutionProvider))
	purego.RegisterFunc(&r.releaseSessionOptions, slot(table, slotReleaseSessionOptions))

	purego.RegisterFunc(&r.createSession, slot(table, slotCreateSession))
	purego.RegisterFunc(&r.createSessionFromArray, slot(table, slotCreateSessionFromArray))
	purego.RegisterFunc(&r.sessionGetInputCount, slot(table, slotSessionGetInputCount))
	purego.RegisterFunc(&r.sessionGetOutputCount, slot(table, slotSessionGetOutputCount))
	purego.RegisterFunc(&r.sessionGetInputName, slot(table, slotSessionGetInputName))
	purego.RegisterFunc(&r.sessionGetOutputName, slot(table, slotSessionGetOutputName))
	purego.RegisterFunc(&r.sessionGetInputTypeInfo, slot(table, slotSessionGetInputTypeInfo))
	purego.RegisterFunc(&r.sessionGetOutputTypeInfo, slot(table, slotSessionGetOutputTypeInfo))
	purego.RegisterFunc(&r.run, slot(table, slotRun))
	purego.RegisterFunc(&r.releaseSession, slot(table, slotReleaseSession))
}

// Status introspection.

func (r *Runtime) StatusCode(st api.Status) api.ErrorCode {
	return r.getErrorCode(st)
}

func (r *Runtime) StatusMessage(st api.Status) string {
	return goString(r.getErrorMessage(st))
}

func (r *Runtime) ReleaseStatus(st api.Status) { r.releaseStatus(st) }

// Environment.

func (r *Runtime) CreateEnv(level api.LoggingLevel, name string) (api.Env, api.Status) {
	cname := cstr(name)
	var env api.Env
	st := r.createEnv(int32(level), cname, &env)
	runtime.KeepAlive(cname)
	return env, st
}

func (r *Runtime) ReleaseEnv(env api.Env) { r.releaseEnv(env) }

func (r *Runtime) BuildInfo() string {
	return goString(r.getBuildInfoString())
}

func (r *Runtime) AvailableProviders() ([]string, api.Status) {
	var names **byte
	var count int32
	if st := r.getAvailableProviders(&names, &count); st != api.StatusOK {
		return nil, st
	}
	out := make([]string, count)
	for i := range out {
		p := *(**byte)(unsafe.Add(unsafe.Pointer(names), uintptr(i)*unsafe.Sizeof(uintptr(0))))
		out[i] = goString(unsafe.Pointer(p))
	}
	// The engine owns the list; hand it back regardless of copy success.
	if st := r.releaseAvailableProviders(names, count); st != api.StatusOK {
		r.releaseStatus(st)
	}
	return out, api.StatusOK
}

// Memory.

func (r *Runtime) CreateMemoryInfo(allocatorName string, alloc api.AllocatorKind, deviceID int, mem api.MemKind) (api.MemoryInfo, api.Status) {
	cname := cstr(allocatorName)
	var info api.MemoryInfo
	st := r.createMemoryInfo(cname, int32(alloc), int32(deviceID), int32(mem), &info)
	runtime.KeepAlive(cname)
	return info, st
}

func (r *Runtime) ReleaseMemoryInfo(info api.MemoryInfo) { r.releaseMemoryInfo(info) }

func (r *Runtime) DefaultAllocator() (api.Allocator, api.Status) {
	var a api.Allocator
	st := r.getDefaultAllocator(&a)
	return a, st
}

func (r *Runtime) SessionAllocator(s api.Session, info api.MemoryInfo) (api.Allocator, api.Status) {
	var a api.Allocator
	st := r.createAllocator(s, info, &a)
	return a, st
}

func (r *Runtime) ReleaseAllocator(a api.Allocator) { r.releaseAllocator(a) }

func (r *Runtime) AllocatorAlloc(a api.Allocator, size uintptr) (unsafe.Pointer, api.Status) {
	var p unsafe.Pointer
	st := r.allocatorAlloc(a, size, &p)
	return p, st
}

func (r *Runtime) AllocatorFree(a api.Allocator, p unsafe.Pointer) {
	r.allocatorFree(a, p)
}

// Values.

func (r *Runtime) CreateTensorWithData(info api.MemoryInfo, data unsafe.Pointer, byteLen uintptr, shape []int64, elem api.ElementType) (api.Value, api.Status) {
	var v api.Value
	st := r.createTensorWithData(info, data, byteLen, unsafe.SliceData(shape), uintptr(len(shape)), int32(elem), &v)
	runtime.KeepAlive(shape)
	return v, st
}

func (r *Runtime) CreateTensorAllocated(alloc api.Allocator, shape []int64, elem api.ElementType) (api.Value, api.Status) {
	var v api.Value
	st := r.createTensorAsValue(alloc, unsafe.SliceData(shape), uintptr(len(shape)), int32(elem), &v)
	runtime.KeepAlive(shape)
	return v, st
}

func (r *Runtime) CreateSequence(elems []api.Value) (api.Value, api.Status) {
	var v api.Value
	st := r.createValue(unsafe.SliceData(elems), uintptr(len(elems)), int32(api.KindSequence), &v)
	runtime.KeepAlive(elems)
	return v, st
}

func (r *Runtime) CreateMap(keys, values api.Value) (api.Value, api.Status) {
	pair := [2]api.Value{keys, values}
	var v api.Value
	st := r.createValue(&pair[0], 2, int32(api.KindMap), &v)
	runtime.KeepAlive(pair)
	return v, st
}

func (r *Runtime) ValueKindOf(v api.Value) (api.ValueKind, api.Status) {
	var kind int32
	st := r.getValueType(v, &kind)
	return api.ValueKind(kind), st
}

func (r *Runtime) TensorInfo(v api.Value) (api.ElementType, []int64, api.Status) {
	var info typeShapeInfo
	if st := r.getTensorShape(v, &info); st != api.StatusOK {
		return api.ElementUndefined, nil, st
	}
	return r.readShapeInfo(info)
}

// readShapeInfo drains and releases a shape-info handle.
func (r *Runtime) readShapeInfo(info typeShapeInfo) (api.ElementType, []int64, api.Status) {
	defer r.releaseShapeInfo(info)

	var elem int32
	if st := r.getTensorElementType(info, &elem); st != api.StatusOK {
		return api.ElementUndefined, nil, st
	}
	var ndims uintptr
	if st := r.getDimensionsCount(info, &ndims); st != api.StatusOK {
		return api.ElementUndefined, nil, st
	}
	dims := make([]int64, ndims)
	if ndims > 0 {
		if st := r.getDimensions(info, unsafe.SliceData(dims), ndims); st != api.StatusOK {
			return api.ElementUndefined, nil, st
		}
	}
	return api.ElementType(elem), dims, api.StatusOK
}

func (r *Runtime) TensorData(v api.Value) (unsafe.Pointer, api.Status) {
	var p unsafe.Pointer
	st := r.getTensorMutableData(v, &p)
	return p, st
}

func (r *Runtime) ValueCount(v api.Value) (int, api.Status) {
	var n uintptr
	st := r.getValueCount(v, &n)
	return int(n), st
}

func (r *Runtime) ValueAt(v api.Value, index int, alloc api.Allocator) (api.Value, api.Status) {
	var out api.Value
	st := r.getValue(v, int32(index), alloc, &out)
	return out, st
}

func (r *Runtime) ReleaseValue(v api.Value) { r.releaseValue(v) }

// Session options.

func (r *Runtime) CreateSessionOptions() (api.SessionOptions, api.Status) {
	var o api.SessionOptions
	st := r.createSessionOptions(&o)
	return o, st
}

func (r *Runtime) SetIntraOpThreads(o api.SessionOptions, n int) api.Status {
	return r.setIntraOpNumThreads(o, int32(n))
}

func (r *Runtime) SetInterOpThreads(o api.SessionOptions, n int) api.Status {
	return r.setInterOpNumThreads(o, int32(n))
}

func (r *Runtime) SetGraphOptimization(o api.SessionOptions, level int) api.Status {
	return r.setGraphOptimization(o, int32(level))
}

func (r *Runtime) SetMemoryPattern(o api.SessionOptions, on bool) api.Status {
	if on {
		return r.enableMemPattern(o)
	}
	return r.disableMemPattern(o)
}

func (r *Runtime) SetCPUMemArena(o api.SessionOptions, on bool) api.Status {
	if on {
		return r.enableCpuMemArena(o)
	}
	return r.disableCpuMemArena(o)
}

func (r *Runtime) AppendProvider(o api.SessionOptions, name string, optKeys, optVals []string) api.Status {
	cname := cstr(name)
	keyPtrs, keyBufs := cstrs(optKeys)
	valPtrs, valBufs := cstrs(optVals)
	var keys, vals **byte
	if len(keyPtrs) > 0 {
		keys = &keyPtrs[0]
		vals = &valPtrs[0]
	}
	st := r.appendExecutionProvider(o, cname, keys, vals, uintptr(len(optKeys)))
	runtime.KeepAlive(cname)
	runtime.KeepAlive(keyBufs)
	runtime.KeepAlive(valBufs)
	return st
}

func (r *Runtime) ReleaseSessionOptions(o api.SessionOptions) { r.releaseSessionOptions(o) }

// Sessions.

func (r *Runtime) CreateSession(env api.Env, modelPath string, opts api.SessionOptions) (api.Session, api.Status) {
	cpath := cstr(modelPath)
	var s api.Session
	st := r.createSession(env, cpath, opts, &s)
	runtime.KeepAlive(cpath)
	return s, st
}

func (r *Runtime) CreateSessionFromBytes(env api.Env, model []byte, opts api.SessionOptions) (api.Session, api.Status) {
	var s api.Session
	var p unsafe.Pointer
	if len(model) > 0 {
		p = unsafe.Pointer(unsafe.SliceData(model))
	}
	st := r.createSessionFromArray(env, p, uintptr(len(model)), opts, &s)
	runtime.KeepAlive(model)
	return s, st
}

func (r *Runtime) InputCount(s api.Session) (int, api.Status) {
	var n uintptr
	st := r.sessionGetInputCount(s, &n)
	return int(n), st
}

func (r *Runtime) OutputCount(s api.Session) (int, api.Status) {
	var n uintptr
	st := r.sessionGetOutputCount(s, &n)
	return int(n), st
}

func (r *Runtime) InputName(s api.Session, index int) (string, api.Status) {
	return r.sessionName(s, index, r.sessionGetInputName)
}

func (r *Runtime) OutputName(s api.Session, index int) (string, api.Status) {
	return r.sessionName(s, index, r.sessionGetOutputName)
}

// sessionName copies an allocator-owned name and frees the native buffer.
func (r *Runtime) sessionName(s api.Session, index int, get func(api.Session, uintptr, api.Allocator, **byte) api.Status) (string, api.Status) {
	alloc, st := r.DefaultAllocator()
	if st != api.StatusOK {
		return "", st
	}
	var p *byte
	if st := get(s, uintptr(index), alloc, &p); st != api.StatusOK {
		return "", st
	}
	name := goString(unsafe.Pointer(p))
	r.allocatorFree(alloc, unsafe.Pointer(p))
	return name, st
}

func (r *Runtime) InputInfo(s api.Session, index int) (api.ElementType, []int64, api.Status) {
	var info typeShapeInfo
	if st := r.sessionGetInputTypeInfo(s, uintptr(index), &info); st != api.StatusOK {
		return api.ElementUndefined, nil, st
	}
	return r.readShapeInfo(info)
}

func (r *Runtime) OutputInfo(s api.Session, index int) (api.ElementType, []int64, api.Status) {
	var info typeShapeInfo
	if st := r.sessionGetOutputTypeInfo(s, uintptr(index), &info); st != api.StatusOK {
		return api.ElementUndefined, nil, st
	}
	return r.readShapeInfo(info)
}

func (r *Runtime) Run(s api.Session, inputNames []string, inputs []api.Value, outputNames []string) ([]api.Value, api.Status) {
	inPtrs, inBufs := cstrs(inputNames)
	outPtrs, outBufs := cstrs(outputNames)
	outputs := make([]api.Value, len(outputNames))

	var inNames, outNames **byte
	if len(inPtrs) > 0 {
		inNames = &inPtrs[0]
	}
	if len(outPtrs) > 0 {
		outNames = &outPtrs[0]
	}
	var inVals *api.Value
	if len(inputs) > 0 {
		inVals = unsafe.SliceData(inputs)
	}
	var outVals *api.Value
	if len(outputs) > 0 {
		outVals = unsafe.SliceData(outputs)
	}
	st := r.run(s, 0, inNames, inVals, uintptr(len(inputs)), outNames, uintptr(len(outputNames)), outVals)
	runtime.KeepAlive(inBufs)
	runtime.KeepAlive(outBufs)
	runtime.KeepAlive(inputs)
	if st != api.StatusOK {
		return nil, st
	}
	return outputs, api.StatusOK
}

func (r *Runtime) ReleaseSession(s api.Session) { r.releaseSession(s) }

var _ api.Engine = (*Runtime)(nil)
