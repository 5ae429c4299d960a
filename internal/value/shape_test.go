package value

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int64
	}{
		{Shape{2, 3, 4}, 24},
		{Shape{5}, 5},
		{Shape{}, 1}, // scalar
		{Shape{3, 0, 2}, 0},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("Validate(Shape{2, 3}) = %v, want nil", err)
	}
	if err := (Shape{2, -1}).Validate(); err == nil {
		t.Error("Validate accepted a negative dimension")
	}
}

func TestShapeComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int64{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Fatalf("ComputeStrides() = %v, want %v", strides, want)
		}
	}
}

func TestShapeContiguous(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		strides []int64
		want    bool
	}{
		{"dense row-major", Shape{2, 3}, []int64{3, 1}, true},
		{"transposed", Shape{2, 3}, []int64{1, 2}, false},
		{"inner slice", Shape{2, 2}, []int64{3, 1}, false},
		{"unit dims ignored", Shape{1, 3}, []int64{100, 1}, true},
		{"rank mismatch", Shape{2, 3}, []int64{1}, false},
	}
	for _, tt := range tests {
		if got := tt.shape.contiguous(tt.strides); got != tt.want {
			t.Errorf("%s: contiguous(%v, %v) = %v, want %v", tt.name, tt.shape, tt.strides, got, tt.want)
		}
	}
}

func TestDataTypeOfScalarTypes(t *testing.T) {
	if got := TypeOf[float32](); got != Float32 {
		t.Errorf("TypeOf[float32]() = %v, want Float32", got)
	}
	if got := TypeOf[int64](); got != Int64 {
		t.Errorf("TypeOf[int64]() = %v, want Int64", got)
	}
	if got := TypeOf[bool](); got != Bool {
		t.Errorf("TypeOf[bool]() = %v, want Bool", got)
	}
	if Float16.Size() != 2 || BFloat16.Size() != 2 {
		t.Error("half-precision types must be 2 bytes")
	}
	if Float64.Size() != 8 || Uint8.Size() != 1 {
		t.Error("wrong element sizes for float64/uint8")
	}
}
