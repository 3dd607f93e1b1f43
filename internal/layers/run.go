package layers

import (
	"fmt"

	"github.com/born-ml/dla/internal/dla"
	"github.com/born-ml/dla/internal/tensor"
)

// Device layouts for the tensors written to the accelerator.
const (
	inputOrder  = tensor.HWC
	kernelOrder = tensor.HWKC
)

// RunLayers executes one convolution-class layer end to end and returns the
// output as a tensor of element type T. The element type selects the
// accelerator's output read path (and, unless overridden, its SIMD mode).
//
// The bias is only checked and written when biasEnabled is set.
//
// The call busy-waits on the device's completion flag with no timeout: a
// device that never completes blocks the caller forever. The device must not
// be used by anyone else until RunLayers returns.
func RunLayers[T dla.Output](
	dev dla.Device,
	input *tensor.Tensor3[int8],
	kernels *tensor.Tensor4[int8],
	bias []int16,
	biasEnabled, reluEnabled bool,
	opts ...Option,
) (*tensor.Tensor3[T], error) {
	o := buildOptions(opts)

	if input == nil || kernels == nil {
		return nil, &dla.ConfigError{Field: "tensors", Details: "input and kernels are required"}
	}
	if kernels.Channels() != input.Channels() {
		return nil, &dla.ConfigError{
			Field:   "kernels",
			Details: fmt.Sprintf("kernel depth %d does not match input channels %d", kernels.Channels(), input.Channels()),
		}
	}
	if !o.outputOrder.Valid() {
		return nil, &dla.ConfigError{Field: "output_order", Details: o.outputOrder.String()}
	}
	if biasEnabled && len(bias) != kernels.Kernels() {
		return nil, &dla.ConfigError{
			Field:   "bias",
			Details: fmt.Sprintf("got %d values for %d kernels", len(bias), kernels.Kernels()),
		}
	}

	outW, outH, err := dla.ConvOutputDims(input.Width(), input.Height(), kernels.Width(), kernels.Height(), o.padding, o.stride)
	if err != nil {
		return nil, fmt.Errorf("run layer: %w", err)
	}
	outLen := outW * outH * kernels.Kernels()

	banks, err := dla.AllocateBanks(o.memoryConfig(dev), input.Len(), kernels.Len(), outLen)
	if err != nil {
		return nil, fmt.Errorf("run layer: %w", err)
	}

	reader := dla.ReaderFor[T]()
	simd := reader.SimdMode()
	if o.simd != nil {
		simd = *o.simd
	}

	cfg := dla.LayerConfig{
		InputBank:  banks.Input,
		KernelBank: banks.Kernel,
		OutputBank: banks.Output,
		BiasAddr:   banks.BiasAddr,
		InputSize: dla.InputSize{
			Channels: input.Channels(),
			Width:    input.Width(),
			Height:   input.Height(),
		},
		KernelSize: dla.KernelSize{
			SChannels: 1,
			Kernels:   kernels.Kernels(),
			Width:     kernels.Width(),
			Height:    kernels.Height(),
		},
		Padding:     derefOr(o.padding, dla.Padding{}),
		Stride:      derefOr(o.stride, dla.Stride{X: 1, Y: 1}),
		BiasEnabled: biasEnabled,
		ReLUEnabled: reluEnabled,
		PPEnabled:   biasEnabled || reluEnabled,
		MACClip:     o.macClip,
		PPClip:      o.ppClip,
		SimdMode:    simd,
	}
	o.logger.Debug("dla layer",
		"input", input.Shape(), "kernels", kernels.Shape(),
		"output", []int{kernels.Kernels(), outH, outW},
		"banks", banks.Regions(), "simd", simd,
		"bias", biasEnabled, "relu", reluEnabled)

	if err := dev.InitLayer(cfg); err != nil {
		return nil, fmt.Errorf("init layer: %w", err)
	}
	if err := dev.WriteInput(input.ToBufferWithOrder(inputOrder)); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}
	if err := dev.WriteKernel(kernels.ToBufferWithOrder(kernelOrder)); err != nil {
		return nil, fmt.Errorf("write kernel: %w", err)
	}
	if biasEnabled {
		if err := dev.WriteBias(bias); err != nil {
			return nil, fmt.Errorf("write bias: %w", err)
		}
	}

	if err := dev.KernelDataReady(true); err != nil {
		return nil, err
	}
	if err := dev.InputDataReady(true); err != nil {
		return nil, err
	}

	polls := 1
	for !dev.HandleHandshake() {
		polls++
	}

	buf, err := reader.ReadOutput(dev, outLen)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	o.logger.Debug("dla layer done", "polls", polls, "elements", len(buf))

	out, err := tensor.Tensor3FromBuffer(kernels.Kernels(), outH, outW, buf, o.outputOrder)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return out, nil
}

func derefOr[V any](p *V, def V) V {
	if p == nil {
		return def
	}
	return *p
}
