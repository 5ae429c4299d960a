package value

import (
	"errors"
	"testing"

	"github.com/onnxgo/ort/internal/api"
)

func TestDowncastChecksElementTag(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{2, 2}, []float32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	dyn := tensor.Upcast()

	if _, err := Downcast[int32](dyn); err == nil {
		t.Fatal("Downcast[int32] of a float32 tensor succeeded")
	} else {
		var mismatch *TypeMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Downcast error = %T, want TypeMismatchError", err)
		}
		if mismatch.Want != "tensor<int32>" || mismatch.Got != "tensor<float32>" {
			t.Errorf("mismatch = %q -> %q, want tensor<float32> -> tensor<int32>", mismatch.Got, mismatch.Want)
		}
	}

	// A failed downcast leaves the source usable.
	back, err := Downcast[float32](dyn)
	if err != nil {
		t.Fatalf("Downcast[float32] after failed downcast: %v", err)
	}
	if back.Extract()[3] != 4 {
		t.Error("tensor contents changed across downcast attempts")
	}
}

func TestUpcastDowncastRoundTrip(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{3}, []int64{10, 20, 30})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	// Tensor -> DynTensor -> Value -> Tensor: the tag survives full erasure.
	erased := tensor.Upcast().Upcast()
	if erased.Kind() != api.KindTensor {
		t.Fatalf("erased Kind = %v, want tensor", erased.Kind())
	}
	recovered, err := DowncastValue[int64](erased)
	if err != nil {
		t.Fatalf("DowncastValue after erasure: %v", err)
	}
	if recovered.Extract()[2] != 30 {
		t.Error("round trip changed contents")
	}
}

func TestValueContainerNarrowing(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{1}, []float32{1})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()
	v := tensor.Erase()

	if _, err := v.AsTensor(); err != nil {
		t.Errorf("AsTensor on a tensor value: %v", err)
	}
	if _, err := v.AsSequence(); err == nil {
		t.Error("AsSequence on a tensor value succeeded")
	}
	if _, err := v.AsMap(); err == nil {
		t.Error("AsMap on a tensor value succeeded")
	}
}

func TestSequenceMembers(t *testing.T) {
	newTestEngine(t)

	a, err := NewTensor(Shape{2}, []float32{1, 2})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer a.Close()
	b, err := NewTensor(Shape{2}, []float32{3, 4})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer b.Close()

	seq, err := NewSequence(a, b)
	if err != nil {
		t.Fatalf("NewSequence: %v", err)
	}
	defer seq.Close()

	n, err := seq.Len()
	if err != nil || n != 2 {
		t.Fatalf("Len() = %d, %v, want 2, nil", n, err)
	}

	member, err := seq.At(1)
	if err != nil {
		t.Fatalf("At(1): %v", err)
	}
	defer member.Close()

	got, err := TryExtractValue[float32](member)
	if err != nil {
		t.Fatalf("TryExtractValue: %v", err)
	}
	if got[0] != 3 || got[1] != 4 {
		t.Errorf("member contents = %v, want [3 4]", got)
	}
}

func TestSequenceOfMapMembers(t *testing.T) {
	eng := newTestEngine(t)

	m, err := NewMap([]int64{0, 1}, []float32{0.3, 0.7})
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}

	seq, err := NewSequence(m)
	if err != nil {
		t.Fatalf("NewSequence over a map member: %v", err)
	}

	member, err := seq.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	dyn, err := member.AsMap()
	if err != nil {
		t.Fatalf("AsMap: %v", err)
	}
	typed, err := DowncastMap[int64, float32](dyn)
	if err != nil {
		t.Fatalf("DowncastMap: %v", err)
	}
	entries, err := typed.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if entries[1] != 0.7 {
		t.Errorf("entries = %v, want entries[1]=0.7", entries)
	}

	// Closing the container releases its nested member copies too.
	member.Close()
	seq.Close()
	m.Close()
	if eng.LiveValues() != 0 {
		t.Errorf("LiveValues = %d after closing all values, want 0", eng.LiveValues())
	}
}

func TestMapDowncastAndExtract(t *testing.T) {
	newTestEngine(t)

	m, err := NewMap([]int64{1, 2, 3}, []float32{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	defer m.Close()

	dyn := m.Upcast()
	if _, err := DowncastMap[int64, int64](dyn); err == nil {
		t.Error("DowncastMap with wrong value type succeeded")
	}

	typed, err := DowncastMap[int64, float32](dyn)
	if err != nil {
		t.Fatalf("DowncastMap: %v", err)
	}
	entries, err := typed.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(entries) != 3 || entries[2] != 0.2 {
		t.Errorf("entries = %v, want map with entries[2]=0.2", entries)
	}
}

func TestExtractScalar(t *testing.T) {
	newTestEngine(t)

	scalar, err := NewTensor(Shape{}, []float64{3.5})
	if err != nil {
		t.Fatalf("NewTensor(scalar): %v", err)
	}
	defer scalar.Close()

	got, err := scalar.ExtractScalar()
	if err != nil || got != 3.5 {
		t.Fatalf("ExtractScalar() = %v, %v, want 3.5, nil", got, err)
	}

	vec, err := NewTensor(Shape{2}, []float64{1, 2})
	if err != nil {
		t.Fatalf("NewTensor(vector): %v", err)
	}
	defer vec.Close()

	if _, err := vec.ExtractScalar(); err == nil {
		t.Error("ExtractScalar on a 2-element tensor succeeded")
	}
}

func TestTryExtractChecksTag(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{2}, []uint8{1, 2})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	if _, err := TryExtract[float32](tensor.Upcast()); err == nil {
		t.Error("TryExtract[float32] of a uint8 tensor succeeded")
	}
	got, err := TryExtract[uint8](tensor.Upcast())
	if err != nil || got[1] != 2 {
		t.Fatalf("TryExtract[uint8]() = %v, %v", got, err)
	}
}

func TestCloseReleasesNativeValue(t *testing.T) {
	eng := newTestEngine(t)

	tensor, err := NewTensor(Shape{2}, []float32{1, 2})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	if eng.LiveValues() != 1 {
		t.Fatalf("LiveValues = %d after create, want 1", eng.LiveValues())
	}

	tensor.Close()
	tensor.Close() // idempotent

	if eng.LiveValues() != 0 {
		t.Errorf("LiveValues = %d after Close, want 0", eng.LiveValues())
	}
}

func TestZeroValueIsInert(t *testing.T) {
	var zero Value

	zero.Close()
	zero.Close()

	if zero.Kind() != api.KindUnknown {
		t.Errorf("Kind = %v, want unknown", zero.Kind())
	}
	if _, ok := zero.ElemType(); ok {
		t.Error("ElemType on a zero Value reported a known tag")
	}

	var mismatch *TypeMismatchError
	if _, err := zero.AsTensor(); !errors.As(err, &mismatch) {
		t.Errorf("AsTensor = %v, want TypeMismatchError", err)
	}
	if _, err := DowncastValue[float32](zero); !errors.As(err, &mismatch) {
		t.Errorf("DowncastValue = %v, want TypeMismatchError", err)
	}
}

func TestFromHandleQueriesKindAndTag(t *testing.T) {
	eng := newTestEngine(t)

	tensor, err := NewTensor(Shape{2}, []int32{5, 6})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	// Simulate an engine-produced handle (e.g. a session output).
	raw, st := eng.ValueAt(mustSequence(t, tensor).core.Raw(), 0, 0)
	if st != api.StatusOK {
		t.Fatalf("ValueAt status = %v", st)
	}
	v, err := FromHandle(eng, raw)
	if err != nil {
		t.Fatalf("FromHandle: %v", err)
	}
	defer v.Close()

	if v.Kind() != api.KindTensor {
		t.Errorf("Kind = %v, want tensor", v.Kind())
	}
	if dt, ok := v.ElemType(); !ok || dt != Int32 {
		t.Errorf("ElemType = %v (known=%v), want Int32", dt, ok)
	}
}

func mustSequence(t *testing.T, members ...Facade) DynSequence {
	t.Helper()
	seq, err := NewSequence(members...)
	if err != nil {
		t.Fatalf("NewSequence: %v", err)
	}
	t.Cleanup(seq.Close)
	return seq
}
