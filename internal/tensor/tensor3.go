package tensor

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrShapeMismatch = errors.New("buffer length does not match tensor shape")
	ErrInvalidRange  = errors.New("invalid slice range")
	ErrInvalidOrder  = errors.New("invalid order")
	ErrEmptySequence = errors.New("empty tensor sequence")
)

// Tensor3 holds elements over (channels, height, width).
//
// The declared order tags how the flat buffer is laid out. A Tensor3 may be a
// view into another tensor's storage (see SliceChannels), in which case its
// strides and offset describe the window.
type Tensor3[T Element] struct {
	data   []T
	shape  Shape // {C, H, W}
	stride []int // indexed by logical axis
	offset int
	order  Order3
}

// NewTensor3 creates a zero-filled tensor.
func NewTensor3[T Element](channels, height, width int, order Order3) (*Tensor3[T], error) {
	shape := Shape{channels, height, width}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !order.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrder, order)
	}
	return &Tensor3[T]{
		data:   make([]T, shape.NumElements()),
		shape:  shape,
		stride: stridesFor(shape, order.layout()),
		order:  order,
	}, nil
}

// Tensor3FromBuffer creates a tensor from a flat buffer laid out in the given
// order. The buffer is copied.
func Tensor3FromBuffer[T Element](channels, height, width int, buf []T, order Order3) (*Tensor3[T], error) {
	t, err := NewTensor3[T](channels, height, width, order)
	if err != nil {
		return nil, err
	}
	if len(buf) != len(t.data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, got %d",
			ErrShapeMismatch, t.shape, len(t.data), len(buf))
	}
	copy(t.data, buf)
	return t, nil
}

// Channels returns the channel count.
func (t *Tensor3[T]) Channels() int { return t.shape[axis3C] }

// Height returns the height.
func (t *Tensor3[T]) Height() int { return t.shape[axis3H] }

// Width returns the width.
func (t *Tensor3[T]) Width() int { return t.shape[axis3W] }

// Size returns the spatial size (height × width) of one channel.
func (t *Tensor3[T]) Size() int { return t.Height() * t.Width() }

// Len returns the total number of elements.
func (t *Tensor3[T]) Len() int { return t.shape.NumElements() }

// Shape returns {C, H, W}.
func (t *Tensor3[T]) Shape() Shape { return t.shape.Clone() }

// Order returns the declared buffer order.
func (t *Tensor3[T]) Order() Order3 { return t.order }

// DType returns the element type tag.
func (t *Tensor3[T]) DType() DataType { return DataTypeOf[T]() }

func (t *Tensor3[T]) index(c, h, w int) int {
	if c < 0 || c >= t.Channels() || h < 0 || h >= t.Height() || w < 0 || w >= t.Width() {
		panic(fmt.Sprintf("tensor3: index (%d, %d, %d) out of range %v", c, h, w, t.shape))
	}
	return t.offset + c*t.stride[axis3C] + h*t.stride[axis3H] + w*t.stride[axis3W]
}

// At returns the element at (c, h, w).
func (t *Tensor3[T]) At(c, h, w int) T {
	return t.data[t.index(c, h, w)]
}

// Set stores v at (c, h, w). Views write through to the parent storage.
func (t *Tensor3[T]) Set(c, h, w int, v T) {
	t.data[t.index(c, h, w)] = v
}

// ToBuffer returns a flat copy in the tensor's own order.
func (t *Tensor3[T]) ToBuffer() []T {
	return t.ToBufferWithOrder(t.order)
}

// ToBufferWithOrder returns a flat copy laid out in the given order. It
// panics with ErrInvalidOrder if order is not a declared order.
func (t *Tensor3[T]) ToBufferWithOrder(order Order3) []T {
	out := make([]T, t.Len())
	dst := stridesFor(t.shape, order.layout())
	for c := 0; c < t.Channels(); c++ {
		for h := 0; h < t.Height(); h++ {
			for w := 0; w < t.Width(); w++ {
				out[c*dst[axis3C]+h*dst[axis3H]+w*dst[axis3W]] = t.At(c, h, w)
			}
		}
	}
	return out
}

// SliceChannels returns a view over channels [from, to). The view shares
// storage with t.
func (t *Tensor3[T]) SliceChannels(from, to int) (*Tensor3[T], error) {
	if from < 0 || to > t.Channels() || from >= to {
		return nil, fmt.Errorf("%w: channels [%d, %d) of %d", ErrInvalidRange, from, to, t.Channels())
	}
	shape := t.shape.Clone()
	shape[axis3C] = to - from
	stride := make([]int, len(t.stride))
	copy(stride, t.stride)
	return &Tensor3[T]{
		data:   t.data,
		shape:  shape,
		stride: stride,
		offset: t.offset + from*t.stride[axis3C],
		order:  t.order,
	}, nil
}

// Clone returns a compact copy that no longer shares storage.
func (t *Tensor3[T]) Clone() *Tensor3[T] {
	out, _ := Tensor3FromBuffer(t.Channels(), t.Height(), t.Width(), t.ToBuffer(), t.order)
	return out
}

// Equal reports whether both tensors hold the same logical elements,
// regardless of their declared orders.
func (t *Tensor3[T]) Equal(other *Tensor3[T]) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	a := t.ToBufferWithOrder(CHW)
	b := other.ToBufferWithOrder(CHW)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ConcatInterleaved joins same-shape tensors along the channel axis by
// interleaving: output channel c*len(ts)+i is channel c of ts[i]. The result
// uses the order of the first tensor.
func ConcatInterleaved[T Element](ts []*Tensor3[T]) (*Tensor3[T], error) {
	if len(ts) == 0 {
		return nil, ErrEmptySequence
	}
	first := ts[0]
	for i, t := range ts[1:] {
		if !t.shape.Equal(first.shape) {
			return nil, fmt.Errorf("%w: tensor %d has shape %v, want %v",
				ErrShapeMismatch, i+1, t.shape, first.shape)
		}
	}

	n := len(ts)
	out, err := NewTensor3[T](first.Channels()*n, first.Height(), first.Width(), first.order)
	if err != nil {
		return nil, err
	}
	for i, t := range ts {
		for c := 0; c < t.Channels(); c++ {
			for h := 0; h < t.Height(); h++ {
				for w := 0; w < t.Width(); w++ {
					out.Set(c*n+i, h, w, t.At(c, h, w))
				}
			}
		}
	}
	return out, nil
}
