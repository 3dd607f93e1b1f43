// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the host-side tensors exchanged with the DLA.
//
// # Overview
//
// Two containers cover everything a convolution layer moves:
//   - Tensor3[T]: a feature map over (channels, height, width)
//   - Tensor4[T]: a kernel bank over (kernels, channels, height, width)
//
// Each tensor carries an order tag that declares how its logical indices map
// to a flat buffer. The tag is a host/device agreement only; nothing in the
// buffer describes it.
//
// # Basic Usage
//
//	import "github.com/born-ml/dla/tensor"
//
//	func main() {
//	    // 4x4 image with 3 channels, pixels stored channel-last.
//	    in, err := tensor.Tensor3FromBuffer(3, 4, 4, pixels, tensor.HWC)
//	    if err != nil {
//	        return err
//	    }
//
//	    // Same data, channel-major.
//	    chw := in.ToBufferWithOrder(tensor.CHW)
//	}
//
// # Views
//
// SliceChannels (and Tensor4.SliceKernels) return views that share storage
// with their parent; writes through a view are visible in the parent.
// ConcatInterleaved joins same-shape tensors channel by channel.
//
// # Supported Element Types
//
//   - int8: inputs, kernels, post-processed outputs
//   - int16: biases, medium-width outputs
//   - int32: raw MAC outputs
package tensor
