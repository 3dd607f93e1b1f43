// Package layers runs convolution-class layers on the DLA: it sizes the
// output, partitions the SRAM, programs the device, moves tensors in their
// device layouts and waits for completion.
package layers

import (
	"log/slog"

	"github.com/born-ml/dla/internal/dla"
	"github.com/born-ml/dla/internal/tensor"
)

// Option configures a layer invocation.
type Option func(*options)

type options struct {
	padding     *dla.Padding
	stride      *dla.Stride
	macClip     uint32
	ppClip      uint32
	simd        *dla.SimdBitMode
	outputOrder tensor.Order3
	mem         *dla.MemoryConfig
	logger      *slog.Logger
}

func buildOptions(opts []Option) options {
	o := options{outputOrder: tensor.HWC}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithPadding sets the zero padding per axis. The default is no padding.
func WithPadding(p dla.Padding) Option {
	return func(o *options) { o.padding = &p }
}

// WithStride sets the convolution stride. The default is 1 on both axes.
func WithStride(s dla.Stride) Option {
	return func(o *options) { o.stride = &s }
}

// WithMACClip sets the right shift applied to MAC results.
func WithMACClip(bits uint32) Option {
	return func(o *options) { o.macClip = bits }
}

// WithPPClip sets the right shift applied after post-processing.
func WithPPClip(bits uint32) Option {
	return func(o *options) { o.ppClip = bits }
}

// WithSimdMode overrides the SIMD mode. By default the mode matching the
// requested output element type is used.
func WithSimdMode(m dla.SimdBitMode) Option {
	return func(o *options) { o.simd = &m }
}

// WithOutputOrder declares the order in which the device writes the output
// bank. The default is HWC.
func WithOutputOrder(order tensor.Order3) Option {
	return func(o *options) { o.outputOrder = order }
}

// WithMemoryConfig sets the SRAM layout used for bank allocation. When unset,
// the device's own memory map is used if it reports one.
func WithMemoryConfig(m dla.MemoryConfig) Option {
	return func(o *options) { o.mem = &m }
}

// WithLogger sets the logger for layer diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// memoryConfigurer is implemented by devices that know their memory map.
type memoryConfigurer interface {
	MemoryConfig() dla.MemoryConfig
}

func (o *options) memoryConfig(dev dla.Device) dla.MemoryConfig {
	if o.mem != nil {
		return *o.mem
	}
	if mc, ok := dev.(memoryConfigurer); ok {
		return mc.MemoryConfig()
	}
	return dla.DefaultMemoryConfig()
}
