package value

import (
	"fmt"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/memory"
)

// The facade lattice, ordered by specialization:
//
//	Value (fully erased)
//	├── DynTensor ── Tensor[T]
//	├── DynSequence
//	└── DynMap ───── Map[K, V]
//
// Every facade is a zero-size projection over exactly one Core. Upcasts
// relabel without a runtime check and always succeed; downcasts compare the
// core's discriminant (and element tag, when the target names one) and fail
// with a TypeMismatchError that leaves the source untouched.

// Facade is implemented by every projection over a value core.
type Facade interface {
	coreRef() *Core
}

// Value is the fully erased facade: the top of the lattice. Heterogeneous
// values are stored and exchanged as Values.
type Value struct {
	core *Core
}

// DynTensor is the container-known, element-erased tensor facade.
type DynTensor struct {
	core *Core
}

// Tensor is the fully specialized tensor facade: the compile-time element
// type T is proven to match the core's tag.
type Tensor[T Scalar] struct {
	core *Core
}

// DynSequence is the sequence facade. Sequence members are values.
type DynSequence struct {
	core *Core
}

// DynMap is the container-known, key/value-erased map facade.
type DynMap struct {
	core *Core
}

// Map is the fully specialized map facade with key type K and value type V.
type Map[K Scalar, V Scalar] struct {
	core *Core
}

func (v Value) coreRef() *Core        { return v.core }
func (t DynTensor) coreRef() *Core    { return t.core }
func (t Tensor[T]) coreRef() *Core    { return t.core }
func (s DynSequence) coreRef() *Core  { return s.core }
func (m DynMap) coreRef() *Core       { return m.core }
func (m Map[K, V]) coreRef() *Core    { return m.core }

// FromHandle wraps an owned native handle (e.g. a session output) into a
// fully erased Value, recovering the discriminant and element tag from the
// engine. The handle is released if recovery fails.
func FromHandle(eng api.Engine, raw api.Value) (Value, error) {
	c, err := newCore(eng, raw)
	if err != nil {
		return Value{}, err
	}
	return Value{core: c}, nil
}

// A zero Value carries no core (for example the miss return of
// Outputs.Get); its accessors treat it as an already-closed value.

// Kind returns the runtime container discriminant, or KindUnknown for a
// zero Value.
func (v Value) Kind() api.ValueKind {
	if v.core == nil {
		return api.KindUnknown
	}
	return v.core.kind
}

// ElemType returns the element tag and whether it is known.
func (v Value) ElemType() (DataType, bool) {
	if v.core == nil {
		return 0, false
	}
	return v.core.ElemType()
}

// Device returns the placement of the backing buffer.
func (v Value) Device() memory.DeviceKind {
	if v.core == nil {
		return memory.CPU
	}
	return v.core.Device()
}

// Close releases the underlying native value. Idempotent; a no-op on a
// zero Value.
func (v Value) Close() {
	if v.core == nil {
		return
	}
	v.core.Close()
}

func (v Value) desc() string {
	if v.core == nil {
		return "zero value"
	}
	return v.core.desc()
}

// Downcasts from the fully erased facade. Container-level narrowing checks
// only the discriminant; the element tag survives erased inside the core.

// AsTensor narrows the value to the tensor container.
func (v Value) AsTensor() (DynTensor, error) {
	if v.core == nil || v.core.kind != api.KindTensor {
		return DynTensor{}, &TypeMismatchError{Want: "tensor", Got: v.desc()}
	}
	return DynTensor{core: v.core}, nil
}

// AsSequence narrows the value to the sequence container.
func (v Value) AsSequence() (DynSequence, error) {
	if v.core == nil || v.core.kind != api.KindSequence {
		return DynSequence{}, &TypeMismatchError{Want: "sequence", Got: v.desc()}
	}
	return DynSequence{core: v.core}, nil
}

// AsMap narrows the value to the map container.
func (v Value) AsMap() (DynMap, error) {
	if v.core == nil || v.core.kind != api.KindMap {
		return DynMap{}, &TypeMismatchError{Want: "map", Got: v.desc()}
	}
	return DynMap{core: v.core}, nil
}

// DowncastValue narrows a fully erased value straight to a tensor of T,
// checking both the container discriminant and the element tag.
func DowncastValue[T Scalar](v Value) (Tensor[T], error) {
	want := TypeOf[T]()
	if v.core == nil || v.core.kind != api.KindTensor || !v.core.elemKnown || v.core.elem != want {
		return Tensor[T]{}, &TypeMismatchError{
			Want: typeDesc("tensor", want, true),
			Got:  v.desc(),
		}
	}
	return Tensor[T]{core: v.core}, nil
}

// Downcast specializes a container-known tensor to element type T, checking
// only the element tag.
func Downcast[T Scalar](t DynTensor) (Tensor[T], error) {
	want := TypeOf[T]()
	if !t.core.elemKnown || t.core.elem != want {
		return Tensor[T]{}, &TypeMismatchError{
			Want: typeDesc("tensor", want, true),
			Got:  t.core.desc(),
		}
	}
	return Tensor[T]{core: t.core}, nil
}

// DynTensor operations.

// Shape returns the tensor's dimensions.
func (t DynTensor) Shape() (Shape, error) { return t.core.Shape() }

// ElemType returns the element tag and whether it is known.
func (t DynTensor) ElemType() (DataType, bool) { return t.core.ElemType() }

// Device returns the placement of the backing buffer.
func (t DynTensor) Device() memory.DeviceKind { return t.core.Device() }

// Upcast erases the tensor back to a value. Always succeeds; the element
// tag is retained by the core, so a later downcast recovers it losslessly.
func (t DynTensor) Upcast() Value { return Value{core: t.core} }

// Close releases the underlying native value. Idempotent.
func (t DynTensor) Close() { t.core.Close() }

// Tensor operations.

// Shape returns the tensor's dimensions.
func (t Tensor[T]) Shape() (Shape, error) { return t.core.Shape() }

// DataType returns the element tag proven by T.
func (t Tensor[T]) DataType() DataType { return TypeOf[T]() }

// Device returns the placement of the backing buffer.
func (t Tensor[T]) Device() memory.DeviceKind { return t.core.Device() }

// Upcast erases the element type, keeping the container knowledge. Always
// succeeds; a pure relabeling with no data movement.
func (t Tensor[T]) Upcast() DynTensor { return DynTensor{core: t.core} }

// Erase relabels the tensor as a fully erased value, for storage in a
// heterogeneous bundle. Always succeeds.
func (t Tensor[T]) Erase() Value { return Value{core: t.core} }

// Close releases the underlying native value. Idempotent.
func (t Tensor[T]) Close() { t.core.Close() }

// DynSequence operations.

// Len returns the number of members.
func (s DynSequence) Len() (int, error) {
	n, st := s.core.eng.ValueCount(s.core.Raw())
	if err := api.AsError(s.core.eng, st); err != nil {
		return 0, fmt.Errorf("sequence length: %w", err)
	}
	return n, nil
}

// At returns the member at index as a new owned value. The caller closes it
// independently of the sequence.
func (s DynSequence) At(index int) (Value, error) {
	alloc, err := memory.DefaultAllocator()
	if err != nil {
		return Value{}, err
	}
	raw, st := s.core.eng.ValueAt(s.core.Raw(), index, alloc.Raw())
	if err := api.AsError(s.core.eng, st); err != nil {
		return Value{}, fmt.Errorf("sequence member %d: %w", index, err)
	}
	return FromHandle(s.core.eng, raw)
}

// Upcast erases the sequence back to a value. Always succeeds.
func (s DynSequence) Upcast() Value { return Value{core: s.core} }

// Close releases the underlying native value. Idempotent.
func (s DynSequence) Close() { s.core.Close() }

// DynMap operations.

// Keys returns the map's keys as a new owned tensor value.
func (m DynMap) Keys() (Value, error) { return m.member(0, "keys") }

// Values returns the map's values as a new owned tensor value.
func (m DynMap) Values() (Value, error) { return m.member(1, "values") }

func (m DynMap) member(index int, what string) (Value, error) {
	alloc, err := memory.DefaultAllocator()
	if err != nil {
		return Value{}, err
	}
	raw, st := m.core.eng.ValueAt(m.core.Raw(), index, alloc.Raw())
	if err := api.AsError(m.core.eng, st); err != nil {
		return Value{}, fmt.Errorf("map %s: %w", what, err)
	}
	return FromHandle(m.core.eng, raw)
}

// Upcast erases the map back to a value. Always succeeds.
func (m DynMap) Upcast() Value { return Value{core: m.core} }

// Close releases the underlying native value. Idempotent.
func (m DynMap) Close() { m.core.Close() }

// DowncastMap specializes a map to key type K and value type V, checking
// the element tags of the key and value tensors.
func DowncastMap[K Scalar, V Scalar](m DynMap) (Map[K, V], error) {
	gotK, gotV, err := m.memberTypes()
	if err != nil {
		return Map[K, V]{}, err
	}
	wantK, wantV := TypeOf[K](), TypeOf[V]()
	if gotK != wantK || gotV != wantV {
		return Map[K, V]{}, &TypeMismatchError{
			Want: fmt.Sprintf("map<%s, %s>", wantK, wantV),
			Got:  fmt.Sprintf("map<%s, %s>", gotK, gotV),
		}
	}
	return Map[K, V]{core: m.core}, nil
}

// memberTypes queries the element tags of the key and value tensors.
func (m DynMap) memberTypes() (DataType, DataType, error) {
	keys, err := m.Keys()
	if err != nil {
		return 0, 0, err
	}
	defer keys.Close()
	vals, err := m.Values()
	if err != nil {
		return 0, 0, err
	}
	defer vals.Close()
	k, kok := keys.ElemType()
	v, vok := vals.ElemType()
	if !kok || !vok {
		return 0, 0, &TypeMismatchError{Want: "map with tensor members", Got: m.core.desc()}
	}
	return k, v, nil
}

// Map operations.

// Extract copies the map's entries into a Go map.
func (m Map[K, V]) Extract() (map[K]V, error) {
	dyn := DynMap{core: m.core}
	keysVal, err := dyn.Keys()
	if err != nil {
		return nil, err
	}
	defer keysVal.Close()
	valsVal, err := dyn.Values()
	if err != nil {
		return nil, err
	}
	defer valsVal.Close()

	keys, err := DowncastValue[K](keysVal)
	if err != nil {
		return nil, err
	}
	vals, err := DowncastValue[V](valsVal)
	if err != nil {
		return nil, err
	}
	ks := keys.Extract()
	vs := vals.Extract()
	if len(ks) != len(vs) {
		return nil, &ShapeError{Msg: fmt.Sprintf("map has %d keys for %d values", len(ks), len(vs))}
	}
	out := make(map[K]V, len(ks))
	for i := range ks {
		out[ks[i]] = vs[i]
	}
	return out, nil
}

// Upcast erases the key and value types, keeping container knowledge.
// Always succeeds.
func (m Map[K, V]) Upcast() DynMap { return DynMap{core: m.core} }

// Erase relabels the map as a fully erased value. Always succeeds.
func (m Map[K, V]) Erase() Value { return Value{core: m.core} }

// Close releases the underlying native value. Idempotent.
func (m Map[K, V]) Close() { m.core.Close() }
