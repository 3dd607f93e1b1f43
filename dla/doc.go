// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dla drives the Headsail neural-network accelerator one layer at a
// time.
//
// # Overview
//
// A layer call:
//  1. Computes the output geometry from input, kernel, padding and stride
//  2. Partitions the accelerator SRAM into input, kernel, output and bias banks
//  3. Programs a LayerConfig into the control registers
//  4. Writes the input (HWC) and kernels (HWKC), plus the bias vector
//  5. Raises the ready flags and polls until the device reports completion
//  6. Reads the output in the width of the requested element type
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/dla/dla"
//	    "github.com/born-ml/dla/tensor"
//	)
//
//	func main() {
//	    dev, _ := dla.NewDriver(dla.DirectBus(), dla.DefaultMemoryConfig())
//
//	    out, err := dla.Conv2DBiasReLU[int8](dev, input, kernels, bias,
//	        dla.WithPadding(dla.Padding{X: 1, Y: 1}),
//	        dla.WithPPClip(4),
//	    )
//	}
//
// # Output Widths
//
// The type parameter of each layer function picks the read path: int8,
// int16 or int32. Unless WithSimdMode says otherwise, the accelerator is
// configured for the same width.
//
// # Concurrency
//
// There is no interrupt and no timeout: a layer call spins on the completion
// flag until the device answers. A device handle must be used by one
// goroutine at a time; grouped convolutions run their groups sequentially.
package dla
