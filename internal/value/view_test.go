package value

import (
	"errors"
	"testing"
)

func TestSharedViewsCoexist(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{2, 2}, []float32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	v1, err := tensor.View()
	if err != nil {
		t.Fatalf("first View: %v", err)
	}
	v2, err := tensor.View()
	if err != nil {
		t.Fatalf("second View alongside the first: %v", err)
	}

	if v1.At(1, 0) != 3 || v2.At(0, 1) != 2 {
		t.Error("shared views disagree with tensor contents")
	}

	v1.Close()
	v2.Close()
}

func TestExclusiveViewExcludes(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{4}, []int32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	mut, err := tensor.ViewMut()
	if err != nil {
		t.Fatalf("ViewMut: %v", err)
	}

	if _, err := tensor.View(); !errors.Is(err, ErrViewHeld) {
		t.Errorf("View while exclusive held = %v, want ErrViewHeld", err)
	}
	if _, err := tensor.ViewMut(); !errors.Is(err, ErrViewHeld) {
		t.Errorf("ViewMut while exclusive held = %v, want ErrViewHeld", err)
	}

	mut.Set(42, 2)
	if mut.At(2) != 42 {
		t.Error("Set through exclusive view not visible")
	}

	mut.Close()
	mut.Close() // idempotent

	// Writes are visible after release, and the borrow is gone.
	v, err := tensor.View()
	if err != nil {
		t.Fatalf("View after exclusive release: %v", err)
	}
	defer v.Close()
	if v.At(2) != 42 {
		t.Error("write lost after exclusive view closed")
	}
}

func TestExclusiveBlockedByShared(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{2}, []float64{1, 2})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	shared, err := tensor.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	if _, err := tensor.ViewMut(); !errors.Is(err, ErrViewHeld) {
		t.Errorf("ViewMut while shared held = %v, want ErrViewHeld", err)
	}

	shared.Close()

	mut, err := tensor.ViewMut()
	if err != nil {
		t.Fatalf("ViewMut after shared release: %v", err)
	}
	mut.Close()
}

func TestViewCopyIsIndependent(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{3}, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	v, err := tensor.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	defer v.Close()

	snapshot := v.Copy()
	snapshot[0] = 99
	if v.At(0) != 1 {
		t.Error("mutating the copy reached the tensor")
	}
}

func TestViewAtBoundsPanic(t *testing.T) {
	newTestEngine(t)

	tensor, err := NewTensor(Shape{2, 2}, []float32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	defer tensor.Close()

	v, err := tensor.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	defer v.Close()

	defer func() {
		if recover() == nil {
			t.Error("At with out-of-range index did not panic")
		}
	}()
	v.At(2, 0)
}
