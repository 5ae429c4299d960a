package session

import (
	"fmt"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/handle"
	"github.com/onnxgo/ort/internal/memory"
	"github.com/onnxgo/ort/internal/modelfile"
	"github.com/onnxgo/ort/internal/value"
)

// Session is a committed, runnable model. It is safe for concurrent Run
// calls; the engine serializes or parallelizes internally.
type Session struct {
	h   *handle.Ref[api.Session]
	eng api.Engine
	env *Environment

	// mapped pins the memory-mapped model bytes for sessions committed
	// with CommitFromMappedFile. The engine reads from the mapping, so it
	// must outlive the session handle.
	mapped *modelfile.File

	inputNames  []string
	outputNames []string
}

func (s *Session) loadNames() error {
	nin, st := s.eng.InputCount(s.h.Raw())
	if err := api.AsError(s.eng, st); err != nil {
		return fmt.Errorf("session: input count: %w", err)
	}
	nout, st := s.eng.OutputCount(s.h.Raw())
	if err := api.AsError(s.eng, st); err != nil {
		return fmt.Errorf("session: output count: %w", err)
	}
	s.inputNames = make([]string, nin)
	for i := range s.inputNames {
		name, st := s.eng.InputName(s.h.Raw(), i)
		if err := api.AsError(s.eng, st); err != nil {
			return fmt.Errorf("session: input name %d: %w", i, err)
		}
		s.inputNames[i] = name
	}
	s.outputNames = make([]string, nout)
	for i := range s.outputNames {
		name, st := s.eng.OutputName(s.h.Raw(), i)
		if err := api.AsError(s.eng, st); err != nil {
			return fmt.Errorf("session: output name %d: %w", i, err)
		}
		s.outputNames[i] = name
	}
	return nil
}

// InputNames returns the model's input names in graph order. The returned
// slice is a copy.
func (s *Session) InputNames() []string {
	return append([]string(nil), s.inputNames...)
}

// OutputNames returns the model's output names in graph order. The
// returned slice is a copy.
func (s *Session) OutputNames() []string {
	return append([]string(nil), s.outputNames...)
}

// Environment returns the environment the session was built against.
func (s *Session) Environment() *Environment { return s.env }

// PortInfo is the declared metadata of one model input or output.
// Dimensions the model leaves dynamic are reported as -1.
type PortInfo struct {
	Name  string
	Type  value.DataType
	Shape value.Shape
}

// InputInfo returns the declared metadata of the input at index.
func (s *Session) InputInfo(i int) (PortInfo, error) {
	if i < 0 || i >= len(s.inputNames) {
		return PortInfo{}, fmt.Errorf("session: input index %d out of range [0,%d)", i, len(s.inputNames))
	}
	elem, dims, st := s.eng.InputInfo(s.h.Raw(), i)
	if err := api.AsError(s.eng, st); err != nil {
		return PortInfo{}, fmt.Errorf("session: input info %d: %w", i, err)
	}
	return s.portInfo(s.inputNames[i], elem, dims)
}

// OutputInfo returns the declared metadata of the output at index.
func (s *Session) OutputInfo(i int) (PortInfo, error) {
	if i < 0 || i >= len(s.outputNames) {
		return PortInfo{}, fmt.Errorf("session: output index %d out of range [0,%d)", i, len(s.outputNames))
	}
	elem, dims, st := s.eng.OutputInfo(s.h.Raw(), i)
	if err := api.AsError(s.eng, st); err != nil {
		return PortInfo{}, fmt.Errorf("session: output info %d: %w", i, err)
	}
	return s.portInfo(s.outputNames[i], elem, dims)
}

func (s *Session) portInfo(name string, elem api.ElementType, dims []int64) (PortInfo, error) {
	dt, ok := value.DataTypeFrom(elem)
	if !ok {
		return PortInfo{}, fmt.Errorf("session: port %q has unsupported element type %d", name, elem)
	}
	return PortInfo{Name: name, Type: dt, Shape: value.Shape(dims)}, nil
}

// Allocator returns an allocator scoped to this session and the given
// memory descriptor. The caller owns it: Close releases the native handle,
// and it must not outlive the session.
func (s *Session) Allocator(info *memory.Info) (*memory.Allocator, error) {
	return memory.NewSessionAllocator(s.eng, s.h.Raw(), info)
}

// Run feeds the bundled inputs to the model and returns every output.
// Unnamed bundle entries resolve positionally against the model's input
// order.
func (s *Session) Run(in *value.Inputs) (*Outputs, error) {
	return s.RunSelected(in, s.outputNames)
}

// RunSelected runs the model and returns only the named outputs, in the
// requested order.
func (s *Session) RunSelected(in *value.Inputs, outputNames []string) (*Outputs, error) {
	if err := in.Err(); err != nil {
		return nil, fmt.Errorf("session: run: %w", err)
	}
	names, err := s.resolveInputNames(in)
	if err != nil {
		return nil, err
	}
	for _, name := range outputNames {
		if !contains(s.outputNames, name) {
			return nil, fmt.Errorf("session: run: model has no output %q", name)
		}
	}
	raws, st := s.eng.Run(s.h.Raw(), names, in.Handles(), outputNames)
	if err := api.AsError(s.eng, st); err != nil {
		return nil, fmt.Errorf("session: run: %w", err)
	}
	return wrapOutputs(s.eng, outputNames, raws)
}

// resolveInputNames fills the bundle's positional gaps from the model's
// input order and checks every named entry against the model.
func (s *Session) resolveInputNames(in *value.Inputs) ([]string, error) {
	names := in.Names()
	for i, name := range names {
		if name == "" {
			if i >= len(s.inputNames) {
				return nil, fmt.Errorf("session: run: positional input %d, but model has %d inputs", i, len(s.inputNames))
			}
			names[i] = s.inputNames[i]
			continue
		}
		if !contains(s.inputNames, name) {
			return nil, fmt.Errorf("session: run: model has no input %q", name)
		}
	}
	return names, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Close releases the native session and, for mapped models, the mapping.
// Idempotent.
func (s *Session) Close() {
	s.h.Close()
	if s.mapped != nil {
		_ = s.mapped.Close()
		s.mapped = nil
	}
}

// Outputs is the owned result set of one run. Closing it releases every
// output that has not been detached.
type Outputs struct {
	names  []string
	values []value.Value
	taken  []bool
}

// wrapOutputs takes ownership of the raw output handles. If wrapping any
// of them fails, every handle is released before returning.
func wrapOutputs(eng api.Engine, names []string, raws []api.Value) (*Outputs, error) {
	if len(raws) != len(names) {
		for _, raw := range raws {
			eng.ReleaseValue(raw)
		}
		return nil, fmt.Errorf("session: run returned %d outputs for %d names", len(raws), len(names))
	}
	out := &Outputs{
		names:  append([]string(nil), names...),
		values: make([]value.Value, len(raws)),
		taken:  make([]bool, len(raws)),
	}
	for i, raw := range raws {
		v, err := value.FromHandle(eng, raw)
		if err != nil {
			for j := 0; j < i; j++ {
				out.values[j].Close()
			}
			for _, rest := range raws[i+1:] {
				eng.ReleaseValue(rest)
			}
			return nil, fmt.Errorf("session: wrap output %q: %w", names[i], err)
		}
		out.values[i] = v
	}
	return out, nil
}

// Len returns the number of outputs.
func (o *Outputs) Len() int { return len(o.values) }

// Names returns the output names in order. The returned slice is a copy.
func (o *Outputs) Names() []string {
	return append([]string(nil), o.names...)
}

// At returns the output at index. The result set keeps ownership.
func (o *Outputs) At(i int) value.Value { return o.values[i] }

// Get returns the output with the given name.
func (o *Outputs) Get(name string) (value.Value, bool) {
	for i, n := range o.names {
		if n == name {
			return o.values[i], true
		}
	}
	return value.Value{}, false
}

// Take transfers ownership of the output at index to the caller: Close on
// the result set will no longer release it.
func (o *Outputs) Take(i int) value.Value {
	o.taken[i] = true
	return o.values[i]
}

// Close releases every output still owned by the result set. Idempotent.
func (o *Outputs) Close() {
	for i, v := range o.values {
		if !o.taken[i] {
			v.Close()
		}
	}
}
