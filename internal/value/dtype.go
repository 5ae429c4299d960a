// Package value implements the typed value model: a type-erased core over
// a native value handle, the facade lattice built on top of it
// (Value → DynTensor/DynSequence/DynMap → Tensor[T]/Map[K,V]), and the
// downcast/upcast, extraction and view operations between them.
package value

import (
	"github.com/d4l3k/go-bfloat16"
	"github.com/onnxgo/ort/internal/api"
	"github.com/x448/float16"
)

// Scalar is the constraint for supported tensor element types.
// float16.Float16 and bfloat16.BF16 carry half-precision values in their
// IEEE/bfloat bit patterns.
type Scalar interface {
	float32 | float64 | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 | bool |
		float16.Float16 | bfloat16.BF16
}

// DataType is the runtime element type tag of a tensor value.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Bool
	Float16
	BFloat16
)

// Size returns the byte size of one element.
func (dt DataType) Size() int64 {
	switch dt {
	case Float64, Int64, Uint64:
		return 8
	case Float32, Int32, Uint32:
		return 4
	case Int16, Uint16, Float16, BFloat16:
		return 2
	case Int8, Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the element type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Bool:
		return "bool"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	default:
		return "unknown"
	}
}

// element maps the tag onto the engine's wire enumeration.
func (dt DataType) element() api.ElementType {
	switch dt {
	case Float32:
		return api.ElementFloat32
	case Float64:
		return api.ElementFloat64
	case Int8:
		return api.ElementInt8
	case Int16:
		return api.ElementInt16
	case Int32:
		return api.ElementInt32
	case Int64:
		return api.ElementInt64
	case Uint8:
		return api.ElementUint8
	case Uint16:
		return api.ElementUint16
	case Uint32:
		return api.ElementUint32
	case Uint64:
		return api.ElementUint64
	case Bool:
		return api.ElementBool
	case Float16:
		return api.ElementFloat16
	case BFloat16:
		return api.ElementBFloat16
	default:
		return api.ElementUndefined
	}
}

// dataTypeOf recovers the tag from the engine's wire enumeration.
func dataTypeOf(elem api.ElementType) (DataType, bool) {
	switch elem {
	case api.ElementFloat32:
		return Float32, true
	case api.ElementFloat64:
		return Float64, true
	case api.ElementInt8:
		return Int8, true
	case api.ElementInt16:
		return Int16, true
	case api.ElementInt32:
		return Int32, true
	case api.ElementInt64:
		return Int64, true
	case api.ElementUint8:
		return Uint8, true
	case api.ElementUint16:
		return Uint16, true
	case api.ElementUint32:
		return Uint32, true
	case api.ElementUint64:
		return Uint64, true
	case api.ElementBool:
		return Bool, true
	case api.ElementFloat16:
		return Float16, true
	case api.ElementBFloat16:
		return BFloat16, true
	default:
		return 0, false
	}
}

// DataTypeFrom recovers the tag from the engine's wire enumeration. The
// second result is false for tags this layer does not model.
func DataTypeFrom(elem api.ElementType) (DataType, bool) {
	return dataTypeOf(elem)
}

// TypeOf infers the runtime tag for a compile-time element type.
func TypeOf[T Scalar]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case bool:
		return Bool
	case float16.Float16:
		return Float16
	case bfloat16.BF16:
		return BFloat16
	default:
		panic("unsupported element type")
	}
}
