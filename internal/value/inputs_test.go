package value

import (
	"testing"
)

func TestInputsMixedNamedAndPositional(t *testing.T) {
	newTestEngine(t)

	a, err := NewTensor(Shape{1}, []float32{1})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer a.Close()

	in := NewInputs().Add("x", a).AddPositional(a)
	AddTensor(in, "y", Shape{2}, []int64{1, 2})

	if err := in.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if in.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", in.Len())
	}
	names := in.Names()
	if names[0] != "x" || names[1] != "" || names[2] != "y" {
		t.Errorf("Names() = %v, want [x <positional> y]", names)
	}
	if len(in.Handles()) != 3 {
		t.Errorf("Handles() length = %d, want 3", len(in.Handles()))
	}
	in.Close()
}

func TestInputsRejectDuplicateNames(t *testing.T) {
	newTestEngine(t)

	a, err := NewTensor(Shape{1}, []float32{1})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer a.Close()

	in := NewInputs().Add("x", a).Add("x", a)
	if in.Err() == nil {
		t.Error("duplicate name not reported")
	}
}

func TestInputsCloseReleasesOnlyOwned(t *testing.T) {
	eng := newTestEngine(t)

	borrowed, err := NewTensor(Shape{1}, []float32{1})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}

	in := NewInputs().Add("borrowed", borrowed)
	AddTensor(in, "owned", Shape{1}, []float32{2})

	if eng.LiveValues() != 2 {
		t.Fatalf("LiveValues = %d, want 2", eng.LiveValues())
	}

	in.Close()

	// The bundle-owned tensor is gone; the borrowed one is the caller's.
	if eng.LiveValues() != 1 {
		t.Errorf("LiveValues after bundle Close = %d, want 1", eng.LiveValues())
	}
	borrowed.Close()
	if eng.LiveValues() != 0 {
		t.Errorf("LiveValues after caller Close = %d, want 0", eng.LiveValues())
	}
}

func TestInputsRecordConstructionErrors(t *testing.T) {
	newTestEngine(t)

	in := NewInputs()
	AddTensor(in, "bad", Shape{3}, []float32{1}) // length mismatch

	if in.Err() == nil {
		t.Error("construction error not recorded")
	}
	if in.Len() != 0 {
		t.Errorf("Len() = %d after failed add, want 0", in.Len())
	}
}
