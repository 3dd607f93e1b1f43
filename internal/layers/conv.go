package layers

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/born-ml/dla/internal/dla"
	"github.com/born-ml/dla/internal/tensor"
)

// Conv2D runs a plain convolution.
func Conv2D[T dla.Output](dev dla.Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], opts ...Option) (*tensor.Tensor3[T], error) {
	return RunLayers[T](dev, input, kernels, nil, false, false, opts...)
}

// Conv2DReLU runs a convolution followed by ReLU.
func Conv2DReLU[T dla.Output](dev dla.Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], opts ...Option) (*tensor.Tensor3[T], error) {
	return RunLayers[T](dev, input, kernels, nil, false, true, opts...)
}

// Conv2DBias runs a convolution and adds one bias per kernel.
func Conv2DBias[T dla.Output](dev dla.Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], bias []int16, opts ...Option) (*tensor.Tensor3[T], error) {
	return RunLayers[T](dev, input, kernels, bias, true, false, opts...)
}

// Conv2DBiasReLU runs a convolution, adds one bias per kernel, then applies
// ReLU.
func Conv2DBiasReLU[T dla.Output](dev dla.Device, input *tensor.Tensor3[int8], kernels *tensor.Tensor4[int8], bias []int16, opts ...Option) (*tensor.Tensor3[T], error) {
	return RunLayers[T](dev, input, kernels, bias, true, true, opts...)
}

// GroupedConv2D splits the input channels and the kernels into groups equal
// shares, convolves each share with its own bias slice and joins the results
// with tensor.ConcatInterleaved.
//
// Kernels may carry either the per-group depth (channels/groups) or the full
// input depth, in which case each group uses its own channel window. Padding,
// stride and the other options apply to every group. Groups run one after
// another on the same device.
//
// Example: 8 input channels, 16 kernels, groups = 2 runs two layers of
// 4 channels × 8 kernels and yields 16 output channels.
func GroupedConv2D[T dla.Output](
	dev dla.Device,
	input *tensor.Tensor3[int8],
	kernels *tensor.Tensor4[int8],
	bias []int16,
	groups int,
	opts ...Option,
) (*tensor.Tensor3[T], error) {
	if input == nil || kernels == nil {
		return nil, &dla.ConfigError{Field: "tensors", Details: "input and kernels are required"}
	}
	if groups <= 0 || input.Channels()%groups != 0 || kernels.Kernels()%groups != 0 {
		return nil, &dla.GroupError{Groups: groups, Channels: input.Channels(), Kernels: kernels.Kernels()}
	}
	if len(bias) != kernels.Kernels() {
		return nil, &dla.ConfigError{
			Field:   "bias",
			Details: fmt.Sprintf("got %d values for %d kernels", len(bias), kernels.Kernels()),
		}
	}

	groupChannels := input.Channels() / groups
	groupKernels := kernels.Kernels() / groups
	fullDepth := kernels.Channels() == input.Channels() && groups > 1
	if !fullDepth && kernels.Channels() != groupChannels {
		return nil, &dla.ConfigError{
			Field: "kernels",
			Details: fmt.Sprintf("kernel depth %d must be %d (per group) or %d (full input)",
				kernels.Channels(), groupChannels, input.Channels()),
		}
	}

	biasGroups := lo.Chunk(bias, groupKernels)
	outputs := make([]*tensor.Tensor3[T], 0, groups)
	for g := 0; g < groups; g++ {
		inputGroup, err := input.SliceChannels(g*groupChannels, (g+1)*groupChannels)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", g, err)
		}
		kernelGroup, err := kernels.SliceKernels(g*groupKernels, (g+1)*groupKernels)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", g, err)
		}
		if fullDepth {
			kernelGroup, err = kernelGroup.SliceChannels(g*groupChannels, (g+1)*groupChannels)
			if err != nil {
				return nil, fmt.Errorf("group %d: %w", g, err)
			}
		}
		out, err := RunLayers[T](dev, inputGroup, kernelGroup, biasGroups[g], true, false, opts...)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", g, err)
		}
		outputs = append(outputs, out)
	}

	return tensor.ConcatInterleaved(outputs)
}
