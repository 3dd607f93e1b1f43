// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/dla/internal/tensor"
)

// Element is a constraint for tensor element types (int8, int16, int32).
type Element = tensor.Element

// DataType represents the element type of a tensor at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Int8  DataType = tensor.Int8
	Int16 DataType = tensor.Int16
	Int32 DataType = tensor.Int32
)

// Shape represents logical dimensions: {C, H, W} or {K, C, H, W}.
type Shape = tensor.Shape

// Order3 declares the flat layout of a Tensor3.
type Order3 = tensor.Order3

// Tensor3 orders, outermost axis first.
const (
	CHW Order3 = tensor.CHW
	CWH Order3 = tensor.CWH
	HCW Order3 = tensor.HCW
	HWC Order3 = tensor.HWC
	WCH Order3 = tensor.WCH
	WHC Order3 = tensor.WHC
)

// Order4 declares the flat layout of a Tensor4.
type Order4 = tensor.Order4

// Tensor4 orders, outermost axis first.
const (
	KCHW Order4 = tensor.KCHW
	KHWC Order4 = tensor.KHWC
	HWKC Order4 = tensor.HWKC
	HWCK Order4 = tensor.HWCK
	CKHW Order4 = tensor.CKHW
	CHWK Order4 = tensor.CHWK
)

// Errors returned by tensor constructors and views.
var (
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrInvalidRange  = tensor.ErrInvalidRange
	ErrInvalidOrder  = tensor.ErrInvalidOrder
	ErrEmptySequence = tensor.ErrEmptySequence
)

// Tensor3 is a feature map over (channels, height, width).
//
// Example:
//
//	t, _ := tensor.NewTensor3[int8](3, 4, 4, tensor.HWC)
//	t.Set(0, 1, 2, 7)
//	buf := t.ToBufferWithOrder(tensor.CHW)
type Tensor3[T Element] = tensor.Tensor3[T]

// Tensor4 is a kernel bank over (kernels, channels, height, width).
type Tensor4[T Element] = tensor.Tensor4[T]

// NewTensor3 creates a zero-filled Tensor3.
func NewTensor3[T Element](channels, height, width int, order Order3) (*Tensor3[T], error) {
	return tensor.NewTensor3[T](channels, height, width, order)
}

// Tensor3FromBuffer creates a Tensor3 from a flat buffer in the given order.
func Tensor3FromBuffer[T Element](channels, height, width int, buf []T, order Order3) (*Tensor3[T], error) {
	return tensor.Tensor3FromBuffer(channels, height, width, buf, order)
}

// NewTensor4 creates a zero-filled Tensor4.
func NewTensor4[T Element](kernels, channels, height, width int, order Order4) (*Tensor4[T], error) {
	return tensor.NewTensor4[T](kernels, channels, height, width, order)
}

// Tensor4FromBuffer creates a Tensor4 from a flat buffer in the given order.
func Tensor4FromBuffer[T Element](kernels, channels, height, width int, buf []T, order Order4) (*Tensor4[T], error) {
	return tensor.Tensor4FromBuffer(kernels, channels, height, width, buf, order)
}

// StackKernels builds a Tensor4 from one Tensor3 per kernel.
func StackKernels[T Element](kernels []*Tensor3[T], order Order4) (*Tensor4[T], error) {
	return tensor.StackKernels(kernels, order)
}

// ConcatInterleaved joins same-shape tensors by interleaving their channels.
func ConcatInterleaved[T Element](ts []*Tensor3[T]) (*Tensor3[T], error) {
	return tensor.ConcatInterleaved(ts)
}

// ParseOrder3 parses an order name such as "hwc".
func ParseOrder3(s string) (Order3, error) { return tensor.ParseOrder3(s) }

// ParseOrder4 parses an order name such as "kchw".
func ParseOrder4(s string) (Order4, error) { return tensor.ParseOrder4(s) }
