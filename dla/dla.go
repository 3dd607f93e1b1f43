// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dla

import (
	"log/slog"

	internaldla "github.com/born-ml/dla/internal/dla"
	"github.com/born-ml/dla/internal/layers"
	"github.com/born-ml/dla/internal/mmio"
	"github.com/born-ml/dla/internal/tensor"
)

// Bus is the volatile 8/16/32-bit access contract the driver runs on.
type Bus = mmio.Bus

// DirectBus returns a Bus that dereferences physical addresses. Use it on
// bare-metal targets where the accelerator is mapped at its physical address.
func DirectBus() Bus { return mmio.Direct{} }

// Device is the handshake contract driven by the layer functions.
type Device = internaldla.Device

// Driver is the register-level Device implementation.
type Driver = internaldla.Driver

// NewDriver creates a driver for the accelerator mapped at mem.
func NewDriver(bus Bus, mem MemoryConfig) (*Driver, error) {
	return internaldla.NewDriver(bus, mem)
}

// State is the driver's handshake state.
type State = internaldla.State

// Driver states.
const (
	StateIdle       State = internaldla.StateIdle
	StateConfigured State = internaldla.StateConfigured
	StateRunning    State = internaldla.StateRunning
	StateDone       State = internaldla.StateDone
)

// MemoryConfig describes the register window and SRAM banks.
type MemoryConfig = internaldla.MemoryConfig

// DefaultMemoryConfig returns the Headsail memory map.
func DefaultMemoryConfig() MemoryConfig { return internaldla.DefaultMemoryConfig() }

// LayerConfig is everything programmed into the accelerator for one layer.
type LayerConfig = internaldla.LayerConfig

// InputSize describes the input feature map.
type InputSize = internaldla.InputSize

// KernelSize describes the kernel bank.
type KernelSize = internaldla.KernelSize

// Padding is the zero padding per axis.
type Padding = internaldla.Padding

// Stride is the convolution step per axis.
type Stride = internaldla.Stride

// SimdBitMode selects the accelerator's output element width.
type SimdBitMode = internaldla.SimdBitMode

// SIMD modes.
const (
	EightBits     SimdBitMode = internaldla.EightBits
	SixteenBits   SimdBitMode = internaldla.SixteenBits
	ThirtyTwoBits SimdBitMode = internaldla.ThirtyTwoBits
)

// Output is the set of layer result element types.
type Output = internaldla.Output

// Banks is the SRAM partition of one layer.
type Banks = internaldla.Banks

// Region is a byte range of the SRAM.
type Region = internaldla.Region

// AllocateBanks partitions the SRAM for tensors of the given element counts.
func AllocateBanks(mem MemoryConfig, inputSize, kernelSize, outputSize int) (Banks, error) {
	return internaldla.AllocateBanks(mem, inputSize, kernelSize, outputSize)
}

// ConvOutputDims computes a convolution's output width and height.
func ConvOutputDims(inW, inH, kW, kH int, padding *Padding, stride *Stride) (w, h int, err error) {
	return internaldla.ConvOutputDims(inW, inH, kW, kH, padding, stride)
}

// Errors.
var (
	ErrBankOverflow    = internaldla.ErrBankOverflow
	ErrInvalidGeometry = internaldla.ErrInvalidGeometry
	ErrState           = internaldla.ErrState
	ErrConfig          = internaldla.ErrConfig
)

// Typed errors.
type (
	ConfigError     = internaldla.ConfigError
	CapacityError   = internaldla.CapacityError
	GroupError      = internaldla.GroupError
	ValidationError = internaldla.ValidationError
)

// Option configures a layer call.
type Option = layers.Option

// WithPadding sets the zero padding per axis.
func WithPadding(p Padding) Option { return layers.WithPadding(p) }

// WithStride sets the convolution stride.
func WithStride(s Stride) Option { return layers.WithStride(s) }

// WithMACClip sets the right shift applied to MAC results.
func WithMACClip(bits uint32) Option { return layers.WithMACClip(bits) }

// WithPPClip sets the right shift applied after post-processing.
func WithPPClip(bits uint32) Option { return layers.WithPPClip(bits) }

// WithSimdMode overrides the SIMD mode derived from the output type.
func WithSimdMode(m SimdBitMode) Option { return layers.WithSimdMode(m) }

// WithOutputOrder declares the order of the device's output bank.
func WithOutputOrder(o tensor.Order3) Option { return layers.WithOutputOrder(o) }

// WithMemoryConfig sets the SRAM layout used for bank allocation.
func WithMemoryConfig(m MemoryConfig) Option { return layers.WithMemoryConfig(m) }

// WithLogger sets the logger for layer diagnostics.
func WithLogger(l *slog.Logger) Option { return layers.WithLogger(l) }

// RunLayers executes one convolution-class layer end to end.
func RunLayers[T Output](dev Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8],
	bias []int16, biasEnabled, reluEnabled bool, opts ...Option,
) (*tensor.Tensor3[T], error) {
	return layers.RunLayers[T](dev, input, kernels, bias, biasEnabled, reluEnabled, opts...)
}

// Conv2D runs a plain convolution.
func Conv2D[T Output](dev Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], opts ...Option) (*tensor.Tensor3[T], error) {
	return layers.Conv2D[T](dev, input, kernels, opts...)
}

// Conv2DReLU runs a convolution followed by ReLU.
func Conv2DReLU[T Output](dev Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], opts ...Option) (*tensor.Tensor3[T], error) {
	return layers.Conv2DReLU[T](dev, input, kernels, opts...)
}

// Conv2DBias runs a convolution with one bias per kernel.
func Conv2DBias[T Output](dev Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], bias []int16, opts ...Option) (*tensor.Tensor3[T], error) {
	return layers.Conv2DBias[T](dev, input, kernels, bias, opts...)
}

// Conv2DBiasReLU runs a convolution with bias followed by ReLU.
func Conv2DBiasReLU[T Output](dev Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], bias []int16, opts ...Option) (*tensor.Tensor3[T], error) {
	return layers.Conv2DBiasReLU[T](dev, input, kernels, bias, opts...)
}

// GroupedConv2D runs a grouped convolution with bias.
func GroupedConv2D[T Output](dev Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], bias []int16, groups int, opts ...Option) (*tensor.Tensor3[T], error) {
	return layers.GroupedConv2D[T](dev, input, kernels, bias, groups, opts...)
}

// Dense runs a fully connected layer as one full-input convolution.
func Dense(dev Device, outputs int, input *tensor.Tensor3[int8], weights []int8, opts ...Option) ([]int32, error) {
	return layers.Dense(dev, outputs, input, weights, opts...)
}

// ReLU applies ReLU element-wise on the accelerator.
func ReLU(dev Device, input *tensor.Tensor3[int8], opts ...Option) (*tensor.Tensor3[int8], error) {
	return layers.ReLU(dev, input, opts...)
}

// Bias adds one bias per channel element-wise on the accelerator.
func Bias(dev Device, input *tensor.Tensor3[int8], bias []int16, opts ...Option) (*tensor.Tensor3[int8], error) {
	return layers.Bias(dev, input, bias, opts...)
}
