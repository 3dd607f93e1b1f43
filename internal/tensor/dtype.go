// Package tensor provides the host-side tensor containers exchanged with the DLA.
package tensor

import "unsafe"

// Element is a constraint for the integer element types the DLA moves in and
// out of its banks.
type Element interface {
	~int8 | ~int16 | ~int32
}

// DataType represents runtime type information for tensor elements.
type DataType int

// Supported element types.
const (
	Int8 DataType = iota
	Int16
	Int32
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32:
		return 4
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	default:
		return "unknown"
	}
}

// DataTypeOf infers the DataType of the element type T.
func DataTypeOf[T Element]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	}
	// Named types built on the basic ones.
	switch unsafe.Sizeof(dummy) {
	case 1:
		return Int8
	case 2:
		return Int16
	default:
		return Int32
	}
}
