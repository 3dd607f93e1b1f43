package layers

import (
	"fmt"

	"github.com/born-ml/dla/internal/dla"
	"github.com/born-ml/dla/internal/tensor"
)

// Dense runs a fully connected layer as a single convolution whose kernels
// cover the whole input. weights holds outputs × C × H × W values in KCHW
// order. A weight buffer that does not match the input shape is reported as
// a configuration error.
func Dense(dev dla.Device, outputs int, input *tensor.Tensor3[int8], weights []int8, opts ...Option) ([]int32, error) {
	if input == nil {
		return nil, &dla.ConfigError{Field: "input", Details: "input is required"}
	}
	kernels, err := tensor.Tensor4FromBuffer(outputs, input.Channels(), input.Height(), input.Width(), weights, tensor.KCHW)
	if err != nil {
		return nil, &dla.ConfigError{Field: "weights", Details: "cannot build dense kernels", Err: err}
	}

	out, err := Conv2D[int32](dev, input, kernels, opts...)
	if err != nil {
		return nil, err
	}
	return out.ToBuffer(), nil
}

// identityKernels returns C 1×1 kernels where kernel k passes channel k
// through unchanged.
func identityKernels(channels int) (*tensor.Tensor4[int8], error) {
	k, err := tensor.NewTensor4[int8](channels, channels, 1, 1, tensor.KCHW)
	if err != nil {
		return nil, &dla.ConfigError{Field: "input", Details: "cannot build identity kernels", Err: err}
	}
	for c := 0; c < channels; c++ {
		k.Set(c, c, 0, 0, 1)
	}
	return k, nil
}

// postProcessOnly forces the settings that make the MAC stage a pass-through.
// It is appended after the caller's options so it always wins.
func postProcessOnly(opts []Option) []Option {
	out := make([]Option, 0, len(opts)+2)
	out = append(out, opts...)
	return append(out, WithMACClip(0), WithSimdMode(dla.EightBits))
}

// ReLU applies ReLU element-wise by running the input through identity
// kernels with only the post-processing stage active. Use WithPPClip to
// scale the result.
func ReLU(dev dla.Device, input *tensor.Tensor3[int8], opts ...Option) (*tensor.Tensor3[int8], error) {
	if input == nil {
		return nil, &dla.ConfigError{Field: "input", Details: "input is required"}
	}
	kernels, err := identityKernels(input.Channels())
	if err != nil {
		return nil, err
	}
	return RunLayers[int8](dev, input, kernels, nil, false, true, postProcessOnly(opts)...)
}

// Bias adds one bias per channel element-wise, using the same identity
// kernel pass as ReLU.
func Bias(dev dla.Device, input *tensor.Tensor3[int8], bias []int16, opts ...Option) (*tensor.Tensor3[int8], error) {
	if input == nil {
		return nil, &dla.ConfigError{Field: "input", Details: "input is required"}
	}
	if len(bias) != input.Channels() {
		return nil, &dla.ConfigError{
			Field:   "bias",
			Details: fmt.Sprintf("got %d values for %d channels", len(bias), input.Channels()),
		}
	}
	kernels, err := identityKernels(input.Channels())
	if err != nil {
		return nil, err
	}
	return RunLayers[int8](dev, input, kernels, bias, true, false, postProcessOnly(opts)...)
}
