package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kchwRamp returns a (k, c, h, w) tensor where element (k, c, h, w) =
// k*1000 + c*100 + h*10 + w.
func kchwRamp(t *testing.T, k, c, h, w int, order Order4) *Tensor4[int32] {
	t.Helper()
	out, err := NewTensor4[int32](k, c, h, w, order)
	require.NoError(t, err)
	for ki := 0; ki < k; ki++ {
		for ci := 0; ci < c; ci++ {
			for hi := 0; hi < h; hi++ {
				for wi := 0; wi < w; wi++ {
					out.Set(ki, ci, hi, wi, int32(ki*1000+ci*100+hi*10+wi))
				}
			}
		}
	}
	return out
}

func TestNewTensor4(t *testing.T) {
	k, err := NewTensor4[int8](4, 3, 2, 2, KCHW)
	require.NoError(t, err)

	assert.Equal(t, 4, k.Kernels())
	assert.Equal(t, 3, k.Channels())
	assert.Equal(t, 2, k.Height())
	assert.Equal(t, 2, k.Width())
	assert.Equal(t, 4, k.Size())
	assert.Equal(t, 48, k.Len())
	assert.Equal(t, Shape{4, 3, 2, 2}, k.Shape())
	assert.Equal(t, KCHW, k.Order())

	_, err = NewTensor4[int8](1, 1, 0, 1, KCHW)
	assert.Error(t, err)
	_, err = NewTensor4[int8](1, 1, 1, 1, Order4(-1))
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestTensor4_HWKCLayout(t *testing.T) {
	// 2 kernels, 2 channels, 1x2 window.
	k := kchwRamp(t, 2, 2, 1, 2, KCHW)

	// HWKC: for each pixel, for each kernel, all channels.
	want := []int32{
		0, 100, 1000, 1100, // w0
		1, 101, 1001, 1101, // w1
	}
	assert.Equal(t, want, k.ToBufferWithOrder(HWKC))
}

func TestTensor4_RoundTripAllOrders(t *testing.T) {
	orders := []Order4{KCHW, KHWC, HWKC, HWCK, CKHW, CHWK}
	src := kchwRamp(t, 3, 2, 2, 3, KCHW)

	for _, from := range orders {
		for _, to := range orders {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				x, err := Tensor4FromBuffer(3, 2, 2, 3, src.ToBufferWithOrder(from), from)
				require.NoError(t, err)

				y, err := Tensor4FromBuffer(3, 2, 2, 3, x.ToBufferWithOrder(to), to)
				require.NoError(t, err)

				assert.True(t, src.Equal(y))
			})
		}
	}
}

func TestTensor4FromBuffer_ShapeMismatch(t *testing.T) {
	_, err := Tensor4FromBuffer(2, 2, 2, 2, make([]int8, 15), KCHW)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestStackKernels(t *testing.T) {
	k0, err := Tensor3FromBuffer(2, 1, 1, []int8{1, 2}, CHW)
	require.NoError(t, err)
	k1, err := Tensor3FromBuffer(2, 1, 1, []int8{3, 4}, HWC)
	require.NoError(t, err)

	bank, err := StackKernels([]*Tensor3[int8]{k0, k1}, HWKC)
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 2, 1, 1}, bank.Shape())
	assert.Equal(t, HWKC, bank.Order())
	assert.Equal(t, []int8{1, 2, 3, 4}, bank.ToBufferWithOrder(KCHW))
	assert.Equal(t, []int8{1, 3, 2, 4}, bank.ToBufferWithOrder(CKHW))
}

func TestStackKernels_Errors(t *testing.T) {
	_, err := StackKernels[int8](nil, KCHW)
	require.ErrorIs(t, err, ErrEmptySequence)

	a, err := NewTensor3[int8](2, 1, 1, CHW)
	require.NoError(t, err)
	b, err := NewTensor3[int8](3, 1, 1, CHW)
	require.NoError(t, err)
	_, err = StackKernels([]*Tensor3[int8]{a, b}, KCHW)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestTensor4_SliceKernels(t *testing.T) {
	k := kchwRamp(t, 4, 2, 1, 1, HWKC)

	v, err := k.SliceKernels(2, 4)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2, 1, 1}, v.Shape())
	assert.Equal(t, []int32{2000, 2100, 3000, 3100}, v.ToBufferWithOrder(KCHW))

	_, err = k.SliceKernels(3, 5)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestTensor4_SliceChannels(t *testing.T) {
	k := kchwRamp(t, 2, 4, 1, 2, KCHW)

	v, err := k.SliceChannels(1, 3)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2, 1, 2}, v.Shape())
	assert.Equal(t, []int32{
		100, 101, 200, 201,
		1100, 1101, 1200, 1201,
	}, v.ToBufferWithOrder(KCHW))

	// Composed slices keep addressing the parent storage.
	vv, err := v.SliceKernels(1, 2)
	require.NoError(t, err)
	vv.Set(0, 0, 0, 0, -1)
	assert.Equal(t, int32(-1), k.At(1, 1, 0, 0))

	_, err = k.SliceChannels(0, 0)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParseOrder4(t *testing.T) {
	for _, name := range []string{"kchw", "KHWC", "hwkc", "HwCk", "ckhw", "chwk"} {
		o, err := ParseOrder4(name)
		require.NoError(t, err, name)
		assert.True(t, o.Valid())
	}

	_, err := ParseOrder4("kkkk")
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestShape(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, 0, Shape{}.NumElements())
	assert.NoError(t, s.Validate())
	assert.Error(t, Shape{2, -1}.Validate())
	assert.True(t, s.Equal(s.Clone()))
	assert.False(t, s.Equal(Shape{2, 3}))

	// HWC strides, indexed by logical axis {C, H, W}.
	assert.Equal(t, []int{1, 12, 3}, stridesFor(Shape{3, 2, 4}, HWC.layout()))
}
