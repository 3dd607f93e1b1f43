package tensor

import "fmt"

// Tensor4 holds a bank of convolution kernels over
// (kernels, channels, height, width).
type Tensor4[T Element] struct {
	data   []T
	shape  Shape // {K, C, H, W}
	stride []int
	offset int
	order  Order4
}

// NewTensor4 creates a zero-filled kernel bank to be filled with Set.
func NewTensor4[T Element](kernels, channels, height, width int, order Order4) (*Tensor4[T], error) {
	shape := Shape{kernels, channels, height, width}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !order.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrder, order)
	}
	return &Tensor4[T]{
		data:   make([]T, shape.NumElements()),
		shape:  shape,
		stride: stridesFor(shape, order.layout()),
		order:  order,
	}, nil
}

// Tensor4FromBuffer creates a kernel bank from a flat buffer laid out in the
// given order. The buffer is copied.
func Tensor4FromBuffer[T Element](kernels, channels, height, width int, buf []T, order Order4) (*Tensor4[T], error) {
	t, err := NewTensor4[T](kernels, channels, height, width, order)
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

// StackKernels builds a kernel bank from one Tensor3 per kernel. All kernels
// must share the same shape.
func StackKernels[T Element](kernels []*Tensor3[T], order Order4) (*Tensor4[T], error) {
	if len(kernels) == 0 {
		return nil, ErrEmptySequence
	}
	first := kernels[0]
	out, err := NewTensor4[T](len(kernels), first.Channels(), first.Height(), first.Width(), order)
	if err != nil {
		return nil, err
	}
	for k, kt := range kernels {
		if !kt.shape.Equal(first.shape) {
			return nil, fmt.Errorf("%w: kernel %d has shape %v, want %v",
				ErrShapeMismatch, k, kt.shape, first.shape)
		}
		for c := 0; c < kt.Channels(); c++ {
			for h := 0; h < kt.Height(); h++ {
				for w := 0; w < kt.Width(); w++ {
					out.Set(k, c, h, w, kt.At(c, h, w))
				}
			}
		}
	}
	return out, nil
}

// Kernels returns the kernel (filter) count.
func (t *Tensor4[T]) Kernels() int { return t.shape[axis4K] }

// Channels returns the per-kernel channel depth.
func (t *Tensor4[T]) Channels() int { return t.shape[axis4C] }

// Height returns the kernel height.
func (t *Tensor4[T]) Height() int { return t.shape[axis4H] }

// Width returns the kernel width.
func (t *Tensor4[T]) Width() int { return t.shape[axis4W] }

// Size returns the spatial size (height × width) of one kernel plane.
func (t *Tensor4[T]) Size() int { return t.Height() * t.Width() }

// Len returns the total number of elements.
func (t *Tensor4[T]) Len() int { return t.shape.NumElements() }

// Shape returns {K, C, H, W}.
func (t *Tensor4[T]) Shape() Shape { return t.shape.Clone() }

// Order returns the declared buffer order.
func (t *Tensor4[T]) Order() Order4 { return t.order }

func (t *Tensor4[T]) index(k, c, h, w int) int {
	if k < 0 || k >= t.Kernels() || c < 0 || c >= t.Channels() ||
		h < 0 || h >= t.Height() || w < 0 || w >= t.Width() {
		panic(fmt.Sprintf("tensor4: index (%d, %d, %d, %d) out of range %v", k, c, h, w, t.shape))
	}
	return t.offset + k*t.stride[axis4K] + c*t.stride[axis4C] + h*t.stride[axis4H] + w*t.stride[axis4W]
}

// At returns the element at (k, c, h, w).
func (t *Tensor4[T]) At(k, c, h, w int) T {
	return t.data[t.index(k, c, h, w)]
}

// Set stores v at (k, c, h, w).
func (t *Tensor4[T]) Set(k, c, h, w int, v T) {
	t.data[t.index(k, c, h, w)] = v
}

// ToBuffer returns a flat copy in the tensor's own order.
func (t *Tensor4[T]) ToBuffer() []T {
	return t.ToBufferWithOrder(t.order)
}

// ToBufferWithOrder returns a flat copy laid out in the given order. It
// panics with ErrInvalidOrder if order is not a declared order.
func (t *Tensor4[T]) ToBufferWithOrder(order Order4) []T {
	out := make([]T, t.Len())
	dst := stridesFor(t.shape, order.layout())
	for k := 0; k < t.Kernels(); k++ {
		for c := 0; c < t.Channels(); c++ {
			for h := 0; h < t.Height(); h++ {
				for w := 0; w < t.Width(); w++ {
					i := k*dst[axis4K] + c*dst[axis4C] + h*dst[axis4H] + w*dst[axis4W]
					out[i] = t.At(k, c, h, w)
				}
			}
		}
	}
	return out
}

func (t *Tensor4[T]) slice(axis, from, to int) (*Tensor4[T], error) {
	if from < 0 || to > t.shape[axis] || from >= to {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrInvalidRange, from, to, t.shape[axis])
	}
	shape := t.shape.Clone()
	shape[axis] = to - from
	stride := make([]int, len(t.stride))
	copy(stride, t.stride)
	return &Tensor4[T]{
		data:   t.data,
		shape:  shape,
		stride: stride,
		offset: t.offset + from*t.stride[axis],
		order:  t.order,
	}, nil
}

// SliceKernels returns a view over kernels [from, to).
func (t *Tensor4[T]) SliceKernels(from, to int) (*Tensor4[T], error) {
	v, err := t.slice(axis4K, from, to)
	if err != nil {
		return nil, fmt.Errorf("kernels: %w", err)
	}
	return v, nil
}

// SliceChannels returns a view over channels [from, to) of every kernel.
func (t *Tensor4[T]) SliceChannels(from, to int) (*Tensor4[T], error) {
	v, err := t.slice(axis4C, from, to)
	if err != nil {
		return nil, fmt.Errorf("channels: %w", err)
	}
	return v, nil
}

// Equal reports whether both tensors hold the same logical elements.
func (t *Tensor4[T]) Equal(other *Tensor4[T]) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	a := t.ToBufferWithOrder(KCHW)
	b := other.ToBufferWithOrder(KCHW)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
