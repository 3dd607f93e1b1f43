// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sim provides a software model of the DLA for development hosts.
//
// # Overview
//
// The simulator is an mmio.Bus: it exposes the same register window and SRAM
// banks as the hardware, so the regular driver runs against it unmodified.
// When the driver raises both ready flags the simulator executes the layer:
//   - Im2col over the HWC input and HWKC kernels
//   - Matrix product on gonum
//   - MAC clip, bias, ReLU and post-processing clip
//   - Saturation to the SIMD output width
//
// The completion flag rises after Config.Latency status polls, which makes
// the busy-wait loop of the layer orchestrator observable in tests.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/dla/backend/sim"
//	    "github.com/born-ml/dla/dla"
//	)
//
//	func main() {
//	    acc, _ := sim.New(sim.DefaultConfig())
//	    dev, _ := dla.NewDriver(acc, dla.DefaultMemoryConfig())
//
//	    out, err := dla.Conv2D[int32](dev, input, kernels)
//	}
package sim
