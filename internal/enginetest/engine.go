// Package enginetest provides an in-memory double of the native inference
// engine. It implements api.Engine, tracks every live handle and native
// buffer, and lets tests inject allocation and provider-registration
// failures.
package enginetest

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/onnxgo/ort/internal/api"
)

type status struct {
	code api.ErrorCode
	msg  string
}

type tensor struct {
	elem    api.ElementType
	shape   []int64
	ptr     unsafe.Pointer
	byteLen uintptr
	buf     []byte // non-nil when the engine owns the backing buffer
}

type value struct {
	kind  api.ValueKind
	t     *tensor
	elems []api.Value // sequence members (engine-owned copies)
	keys  api.Value   // map keys tensor (engine-owned copy)
	vals  api.Value   // map values tensor (engine-owned copy)
}

type meminfo struct {
	name     string
	alloc    api.AllocatorKind
	deviceID int
	mem      api.MemKind
}

type options struct {
	intraOp, interOp int
	optLevel         int
	memPattern       bool
	cpuArena         bool
	providers        []string
}

type session struct {
	inputs  []string
	outputs []string
}

// PortInfo describes the declared tensor metadata of a model input or
// output port.
type PortInfo struct {
	Elem  api.ElementType
	Shape []int64
}

// Engine is an api.Engine double. The exported fields configure behavior
// and may be set before the calls they affect; the zero value is usable.
type Engine struct {
	mu   sync.Mutex
	next uintptr

	statuses     map[api.Status]*status
	envs         map[api.Env]string
	meminfos     map[api.MemoryInfo]*meminfo
	defaultAlloc api.Allocator
	allocators   map[api.Allocator]bool // session-scoped allocators
	allocs       map[unsafe.Pointer][]byte
	values       map[api.Value]*value
	options      map[api.SessionOptions]*options
	sessions     map[api.Session]*session

	// Providers lists the provider names this build claims to support.
	Providers []string
	// FailProvider maps a provider name to a failure message returned when
	// a registration is attempted for it.
	FailProvider map[string]string
	// FailAlloc makes allocator-backed creation and raw allocation fail.
	FailAlloc bool
	// ModelInputs and ModelOutputs name the ports of sessions created from
	// any model. Defaults: ["input"] and ["output"].
	ModelInputs  []string
	ModelOutputs []string
	// ModelInputInfo and ModelOutputInfo override per-port metadata by
	// name. Unlisted ports report float32 with one dynamic dimension.
	ModelInputInfo  map[string]PortInfo
	ModelOutputInfo map[string]PortInfo
	// RunFn overrides the default run behavior (positional echo of inputs).
	RunFn func(inputs []api.Value, outputNames []string) ([]api.Value, error)
}

// New returns a fresh engine double with CPU support.
func New() *Engine {
	return &Engine{
		next:         0x1000,
		statuses:     map[api.Status]*status{},
		envs:         map[api.Env]string{},
		meminfos:     map[api.MemoryInfo]*meminfo{},
		allocators:   map[api.Allocator]bool{},
		allocs:       map[unsafe.Pointer][]byte{},
		values:       map[api.Value]*value{},
		options:      map[api.SessionOptions]*options{},
		sessions:     map[api.Session]*session{},
		Providers:    []string{"CPUExecutionProvider"},
		FailProvider: map[string]string{},
	}
}

func (e *Engine) handle() uintptr {
	e.next += 16
	return e.next
}

func (e *Engine) fail(code api.ErrorCode, format string, args ...any) api.Status {
	st := api.Status(e.handle())
	e.statuses[st] = &status{code: code, msg: fmt.Sprintf(format, args...)}
	return st
}

// Inspection helpers for tests.

// LiveValues returns the number of value handles not yet released.
func (e *Engine) LiveValues() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.values)
}

// LiveHandles returns the total count of unreleased handles of every kind,
// statuses and session allocators included. The engine-owned default
// allocator is not counted.
func (e *Engine) LiveHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.values) + len(e.envs) + len(e.meminfos) + len(e.allocators) +
		len(e.options) + len(e.sessions) + len(e.statuses) + len(e.allocs)
}

// LiveAllocators returns the number of session allocators not yet released.
func (e *Engine) LiveAllocators() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.allocators)
}

// TensorPointer returns the backing data pointer of a tensor value, for
// zero-copy identity assertions.
func (e *Engine) TensorPointer(v api.Value) unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if val, ok := e.values[v]; ok && val.t != nil {
		return val.t.ptr
	}
	return nil
}

// AppendedProviders lists the providers registered against opts, in order.
func (e *Engine) AppendedProviders(opts api.SessionOptions) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.options[opts]; ok {
		return append([]string(nil), o.providers...)
	}
	return nil
}

// Status introspection.

func (e *Engine) StatusCode(st api.Status) api.ErrorCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.statuses[st]; ok {
		return s.code
	}
	return api.CodeOK
}

func (e *Engine) StatusMessage(st api.Status) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.statuses[st]; ok {
		return s.msg
	}
	return ""
}

func (e *Engine) ReleaseStatus(st api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.statuses, st)
}

// Environment.

func (e *Engine) CreateEnv(_ api.LoggingLevel, name string) (api.Env, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	env := api.Env(e.handle())
	e.envs[env] = name
	return env, api.StatusOK
}

func (e *Engine) ReleaseEnv(env api.Env) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.envs, env)
}

func (e *Engine) BuildInfo() string {
	return "enginetest fake build"
}

func (e *Engine) AvailableProviders() ([]string, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Providers...), api.StatusOK
}

// Memory.

func (e *Engine) CreateMemoryInfo(name string, alloc api.AllocatorKind, deviceID int, mem api.MemKind) (api.MemoryInfo, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mi := api.MemoryInfo(e.handle())
	e.meminfos[mi] = &meminfo{name: name, alloc: alloc, deviceID: deviceID, mem: mem}
	return mi, api.StatusOK
}

func (e *Engine) ReleaseMemoryInfo(mi api.MemoryInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.meminfos, mi)
}

func (e *Engine) DefaultAllocator() (api.Allocator, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.defaultAlloc == 0 {
		e.defaultAlloc = api.Allocator(e.handle())
	}
	return e.defaultAlloc, api.StatusOK
}

func (e *Engine) SessionAllocator(s api.Session, mi api.MemoryInfo) (api.Allocator, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[s]; !ok {
		return 0, e.fail(api.CodeInvalidArgument, "unknown session handle")
	}
	if _, ok := e.meminfos[mi]; !ok {
		return 0, e.fail(api.CodeInvalidArgument, "unknown memory info handle")
	}
	a := api.Allocator(e.handle())
	e.allocators[a] = true
	return a, api.StatusOK
}

func (e *Engine) ReleaseAllocator(a api.Allocator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.allocators, a)
}

func (e *Engine) allocatorKnownLocked(a api.Allocator) bool {
	return (a != 0 && a == e.defaultAlloc) || e.allocators[a]
}

func (e *Engine) AllocatorAlloc(a api.Allocator, size uintptr) (unsafe.Pointer, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.allocatorKnownLocked(a) {
		return nil, e.fail(api.CodeInvalidArgument, "unknown allocator handle")
	}
	if e.FailAlloc {
		return nil, e.fail(api.CodeFail, "out of memory (requested %d bytes)", size)
	}
	if size == 0 {
		return nil, e.fail(api.CodeInvalidArgument, "zero-size allocation")
	}
	buf := make([]byte, size)
	p := unsafe.Pointer(&buf[0])
	e.allocs[p] = buf
	return p, api.StatusOK
}

func (e *Engine) AllocatorFree(_ api.Allocator, p unsafe.Pointer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.allocs, p)
}

// Values.

func elementSize(elem api.ElementType) uintptr {
	switch elem {
	case api.ElementFloat64, api.ElementInt64, api.ElementUint64:
		return 8
	case api.ElementFloat32, api.ElementInt32, api.ElementUint32:
		return 4
	case api.ElementFloat16, api.ElementBFloat16, api.ElementInt16, api.ElementUint16:
		return 2
	default:
		return 1
	}
}

func numElements(shape []int64) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

func (e *Engine) CreateTensorWithData(mi api.MemoryInfo, data unsafe.Pointer, byteLen uintptr, shape []int64, elem api.ElementType) (api.Value, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.meminfos[mi]; !ok {
		return 0, e.fail(api.CodeInvalidArgument, "unknown memory info handle")
	}
	want := uintptr(numElements(shape)) * elementSize(elem)
	if want != byteLen {
		return 0, e.fail(api.CodeInvalidArgument, "buffer is %d bytes, shape needs %d", byteLen, want)
	}
	v := api.Value(e.handle())
	e.values[v] = &value{
		kind: api.KindTensor,
		t: &tensor{
			elem:    elem,
			shape:   append([]int64(nil), shape...),
			ptr:     data,
			byteLen: byteLen,
		},
	}
	return v, api.StatusOK
}

func (e *Engine) CreateTensorAllocated(a api.Allocator, shape []int64, elem api.ElementType) (api.Value, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.allocatorKnownLocked(a) {
		return 0, e.fail(api.CodeInvalidArgument, "unknown allocator handle")
	}
	if e.FailAlloc {
		return 0, e.fail(api.CodeFail, "out of memory")
	}
	size := uintptr(numElements(shape)) * elementSize(elem)
	if size == 0 {
		size = 1
	}
	buf := make([]byte, size)
	v := api.Value(e.handle())
	e.values[v] = &value{
		kind: api.KindTensor,
		t: &tensor{
			elem:    elem,
			shape:   append([]int64(nil), shape...),
			ptr:     unsafe.Pointer(&buf[0]),
			byteLen: size,
			buf:     buf,
		},
	}
	return v, api.StatusOK
}

// copyValueLocked deep-copies a value of any kind into a new engine-owned
// value, recursing into sequence members and map key/value tensors.
func (e *Engine) copyValueLocked(src *value) api.Value {
	v := api.Value(e.handle())
	out := &value{kind: src.kind}
	switch src.kind {
	case api.KindTensor:
		buf := make([]byte, src.t.byteLen)
		copy(buf, unsafe.Slice((*byte)(src.t.ptr), src.t.byteLen))
		out.t = &tensor{
			elem:    src.t.elem,
			shape:   append([]int64(nil), src.t.shape...),
			ptr:     unsafe.Pointer(&buf[0]),
			byteLen: src.t.byteLen,
			buf:     buf,
		}
	case api.KindSequence:
		out.elems = make([]api.Value, len(src.elems))
		for i, el := range src.elems {
			out.elems[i] = e.copyValueLocked(e.values[el])
		}
	case api.KindMap:
		out.keys = e.copyValueLocked(e.values[src.keys])
		out.vals = e.copyValueLocked(e.values[src.vals])
	}
	e.values[v] = out
	return v
}

func (e *Engine) CreateSequence(elems []api.Value) (api.Value, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(elems) == 0 {
		return 0, e.fail(api.CodeInvalidArgument, "empty sequence")
	}
	copies := make([]api.Value, 0, len(elems))
	for _, el := range elems {
		src, ok := e.values[el]
		if !ok {
			for _, c := range copies {
				e.releaseLocked(c)
			}
			return 0, e.fail(api.CodeInvalidArgument, "sequence element is not a live value")
		}
		copies = append(copies, e.copyValueLocked(src))
	}
	v := api.Value(e.handle())
	e.values[v] = &value{kind: api.KindSequence, elems: copies}
	return v, api.StatusOK
}

func (e *Engine) CreateMap(keys, values api.Value) (api.Value, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k, ok := e.values[keys]
	if !ok || k.kind != api.KindTensor {
		return 0, e.fail(api.CodeInvalidArgument, "map keys are not a tensor value")
	}
	val, ok := e.values[values]
	if !ok || val.kind != api.KindTensor {
		return 0, e.fail(api.CodeInvalidArgument, "map values are not a tensor value")
	}
	if numElements(k.t.shape) != numElements(val.t.shape) {
		return 0, e.fail(api.CodeInvalidArgument, "map keys and values differ in length")
	}
	v := api.Value(e.handle())
	e.values[v] = &value{
		kind: api.KindMap,
		keys: e.copyValueLocked(k),
		vals: e.copyValueLocked(val),
	}
	return v, api.StatusOK
}

func (e *Engine) ValueKindOf(v api.Value) (api.ValueKind, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	val, ok := e.values[v]
	if !ok {
		return api.KindUnknown, e.fail(api.CodeInvalidArgument, "unknown value handle")
	}
	return val.kind, api.StatusOK
}

func (e *Engine) TensorInfo(v api.Value) (api.ElementType, []int64, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	val, ok := e.values[v]
	if !ok {
		return api.ElementUndefined, nil, e.fail(api.CodeInvalidArgument, "unknown value handle")
	}
	if val.kind != api.KindTensor {
		return api.ElementUndefined, nil, e.fail(api.CodeFail, "value is a %s, not a tensor", val.kind)
	}
	return val.t.elem, append([]int64(nil), val.t.shape...), api.StatusOK
}

func (e *Engine) TensorData(v api.Value) (unsafe.Pointer, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	val, ok := e.values[v]
	if !ok {
		return nil, e.fail(api.CodeInvalidArgument, "unknown value handle")
	}
	if val.kind != api.KindTensor {
		return nil, e.fail(api.CodeFail, "value is a %s, not a tensor", val.kind)
	}
	return val.t.ptr, api.StatusOK
}

func (e *Engine) ValueCount(v api.Value) (int, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	val, ok := e.values[v]
	if !ok {
		return 0, e.fail(api.CodeInvalidArgument, "unknown value handle")
	}
	switch val.kind {
	case api.KindSequence:
		return len(val.elems), api.StatusOK
	case api.KindMap:
		return 2, api.StatusOK
	default:
		return 0, e.fail(api.CodeFail, "value is a %s, not a container", val.kind)
	}
}

func (e *Engine) ValueAt(v api.Value, index int, _ api.Allocator) (api.Value, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	val, ok := e.values[v]
	if !ok {
		return 0, e.fail(api.CodeInvalidArgument, "unknown value handle")
	}
	switch val.kind {
	case api.KindSequence:
		if index < 0 || index >= len(val.elems) {
			return 0, e.fail(api.CodeInvalidArgument, "sequence index %d out of range", index)
		}
		return e.copyValueLocked(e.values[val.elems[index]]), api.StatusOK
	case api.KindMap:
		switch index {
		case 0:
			return e.copyValueLocked(e.values[val.keys]), api.StatusOK
		case 1:
			return e.copyValueLocked(e.values[val.vals]), api.StatusOK
		default:
			return 0, e.fail(api.CodeInvalidArgument, "map index %d out of range", index)
		}
	default:
		return 0, e.fail(api.CodeFail, "value is a %s, not a container", val.kind)
	}
}

func (e *Engine) ReleaseValue(v api.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.releaseLocked(v)
}

// releaseLocked frees a value and, recursively, the member copies a
// container value owns.
func (e *Engine) releaseLocked(v api.Value) {
	val, ok := e.values[v]
	if !ok {
		return
	}
	for _, el := range val.elems {
		e.releaseLocked(el)
	}
	if val.kind == api.KindMap {
		e.releaseLocked(val.keys)
		e.releaseLocked(val.vals)
	}
	delete(e.values, v)
}

// Session options.

func (e *Engine) CreateSessionOptions() (api.SessionOptions, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := api.SessionOptions(e.handle())
	e.options[o] = &options{}
	return o, api.StatusOK
}

func (e *Engine) optsLocked(o api.SessionOptions) (*options, api.Status) {
	opt, ok := e.options[o]
	if !ok {
		return nil, e.fail(api.CodeInvalidArgument, "unknown session options handle")
	}
	return opt, api.StatusOK
}

func (e *Engine) SetIntraOpThreads(o api.SessionOptions, n int) api.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	opt, st := e.optsLocked(o)
	if st != api.StatusOK {
		return st
	}
	opt.intraOp = n
	return api.StatusOK
}

func (e *Engine) SetInterOpThreads(o api.SessionOptions, n int) api.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	opt, st := e.optsLocked(o)
	if st != api.StatusOK {
		return st
	}
	opt.interOp = n
	return api.StatusOK
}

func (e *Engine) SetGraphOptimization(o api.SessionOptions, level int) api.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	opt, st := e.optsLocked(o)
	if st != api.StatusOK {
		return st
	}
	opt.optLevel = level
	return api.StatusOK
}

func (e *Engine) SetMemoryPattern(o api.SessionOptions, enabled bool) api.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	opt, st := e.optsLocked(o)
	if st != api.StatusOK {
		return st
	}
	opt.memPattern = enabled
	return api.StatusOK
}

func (e *Engine) SetCPUMemArena(o api.SessionOptions, enabled bool) api.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	opt, st := e.optsLocked(o)
	if st != api.StatusOK {
		return st
	}
	opt.cpuArena = enabled
	return api.StatusOK
}

func (e *Engine) AppendProvider(o api.SessionOptions, name string, _, _ []string) api.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	opt, st := e.optsLocked(o)
	if st != api.StatusOK {
		return st
	}
	if msg, ok := e.FailProvider[name]; ok {
		return e.fail(api.CodeEPFail, "%s: %s", name, msg)
	}
	available := false
	for _, p := range e.Providers {
		if p == name {
			available = true
			break
		}
	}
	if !available {
		return e.fail(api.CodeEPFail, "%s is not supported in this build", name)
	}
	opt.providers = append(opt.providers, name)
	return api.StatusOK
}

func (e *Engine) ReleaseSessionOptions(o api.SessionOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.options, o)
}

// Sessions.

func (e *Engine) createSessionLocked(env api.Env) (api.Session, api.Status) {
	if _, ok := e.envs[env]; !ok {
		return 0, e.fail(api.CodeInvalidArgument, "unknown environment handle")
	}
	inputs := e.ModelInputs
	if inputs == nil {
		inputs = []string{"input"}
	}
	outputs := e.ModelOutputs
	if outputs == nil {
		outputs = []string{"output"}
	}
	s := api.Session(e.handle())
	e.sessions[s] = &session{
		inputs:  append([]string(nil), inputs...),
		outputs: append([]string(nil), outputs...),
	}
	return s, api.StatusOK
}

func (e *Engine) CreateSession(env api.Env, modelPath string, _ api.SessionOptions) (api.Session, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if modelPath == "" {
		return 0, e.fail(api.CodeNoSuchFile, "empty model path")
	}
	return e.createSessionLocked(env)
}

func (e *Engine) CreateSessionFromBytes(env api.Env, model []byte, _ api.SessionOptions) (api.Session, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(model) == 0 {
		return 0, e.fail(api.CodeNoModel, "empty model")
	}
	return e.createSessionLocked(env)
}

func (e *Engine) sessionLocked(s api.Session) (*session, api.Status) {
	sess, ok := e.sessions[s]
	if !ok {
		return nil, e.fail(api.CodeInvalidArgument, "unknown session handle")
	}
	return sess, api.StatusOK
}

func (e *Engine) InputCount(s api.Session) (int, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, st := e.sessionLocked(s)
	if st != api.StatusOK {
		return 0, st
	}
	return len(sess.inputs), api.StatusOK
}

func (e *Engine) OutputCount(s api.Session) (int, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, st := e.sessionLocked(s)
	if st != api.StatusOK {
		return 0, st
	}
	return len(sess.outputs), api.StatusOK
}

func (e *Engine) InputName(s api.Session, i int) (string, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, st := e.sessionLocked(s)
	if st != api.StatusOK {
		return "", st
	}
	if i < 0 || i >= len(sess.inputs) {
		return "", e.fail(api.CodeInvalidArgument, "input index %d out of range", i)
	}
	return sess.inputs[i], api.StatusOK
}

func (e *Engine) OutputName(s api.Session, i int) (string, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, st := e.sessionLocked(s)
	if st != api.StatusOK {
		return "", st
	}
	if i < 0 || i >= len(sess.outputs) {
		return "", e.fail(api.CodeInvalidArgument, "output index %d out of range", i)
	}
	return sess.outputs[i], api.StatusOK
}

func (e *Engine) portInfoLocked(i int, ports []string, overrides map[string]PortInfo, what string) (api.ElementType, []int64, api.Status) {
	if i < 0 || i >= len(ports) {
		return api.ElementUndefined, nil, e.fail(api.CodeInvalidArgument, "%s index %d out of range", what, i)
	}
	if info, ok := overrides[ports[i]]; ok {
		return info.Elem, append([]int64(nil), info.Shape...), api.StatusOK
	}
	return api.ElementFloat32, []int64{-1}, api.StatusOK
}

func (e *Engine) InputInfo(s api.Session, i int) (api.ElementType, []int64, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, st := e.sessionLocked(s)
	if st != api.StatusOK {
		return api.ElementUndefined, nil, st
	}
	return e.portInfoLocked(i, sess.inputs, e.ModelInputInfo, "input")
}

func (e *Engine) OutputInfo(s api.Session, i int) (api.ElementType, []int64, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, st := e.sessionLocked(s)
	if st != api.StatusOK {
		return api.ElementUndefined, nil, st
	}
	return e.portInfoLocked(i, sess.outputs, e.ModelOutputInfo, "output")
}

func (e *Engine) Run(s api.Session, inputNames []string, inputs []api.Value, outputNames []string) ([]api.Value, api.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, st := e.sessionLocked(s)
	if st != api.StatusOK {
		return nil, st
	}
	if len(inputNames) != len(inputs) {
		return nil, e.fail(api.CodeInvalidArgument, "%d input names for %d inputs", len(inputNames), len(inputs))
	}
	for _, name := range inputNames {
		known := false
		for _, in := range sess.inputs {
			if in == name {
				known = true
				break
			}
		}
		if !known {
			return nil, e.fail(api.CodeInvalidArgument, "model has no input named %q", name)
		}
	}
	if e.RunFn != nil {
		outs, err := e.RunFn(inputs, outputNames)
		if err != nil {
			return nil, e.fail(api.CodeRuntimeException, "%v", err)
		}
		return outs, api.StatusOK
	}
	// Default behavior: echo inputs to outputs positionally.
	if len(inputs) == 0 && len(outputNames) > 0 {
		return nil, e.fail(api.CodeInvalidArgument, "no inputs to produce %d outputs from", len(outputNames))
	}
	outs := make([]api.Value, len(outputNames))
	for i := range outputNames {
		src := e.values[inputs[i%len(inputs)]]
		if src == nil {
			return nil, e.fail(api.CodeRuntimeException, "input %d is not a live value", i)
		}
		outs[i] = e.copyValueLocked(src)
	}
	return outs, api.StatusOK
}

func (e *Engine) ReleaseSession(s api.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, s)
}

var _ api.Engine = (*Engine)(nil)
