package value

import (
	"errors"
	"fmt"
)

// TypeMismatchError reports a failed downcast or extraction: the requested
// target does not match the value's runtime discriminant or element tag.
// The source value is left untouched and remains usable.
type TypeMismatchError struct {
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot downcast %s to %s", e.Got, e.Want)
}

// ShapeError reports a shape incompatible with a buffer length or with the
// target container type.
type ShapeError struct {
	Shape Shape
	Msg   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid shape %v: %s", []int64(e.Shape), e.Msg)
}

// ErrViewHeld is returned when a view acquisition conflicts with an
// outstanding view on the same value: an exclusive view while any view is
// alive, or a shared view while an exclusive view is alive.
var ErrViewHeld = errors.New("value: conflicting view outstanding")

// typeDesc renders a (container, element) pair for mismatch messages,
// e.g. "tensor<float32>" or "sequence".
func typeDesc(kind string, elem DataType, elemKnown bool) string {
	if kind == "tensor" && elemKnown {
		return fmt.Sprintf("tensor<%s>", elem)
	}
	return kind
}
