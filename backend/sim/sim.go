// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sim

import (
	"github.com/born-ml/dla/internal/mmio"
	internalsim "github.com/born-ml/dla/internal/sim"
)

// Accelerator is a simulated DLA behind the Headsail memory map.
type Accelerator = internalsim.Accelerator

// Config controls latency, memory map and MAC parallelism.
type Config = internalsim.Config

// Compile-time check that Accelerator is a bus the driver can use.
var _ mmio.Bus = (*Accelerator)(nil)

// DefaultConfig returns the default simulator configuration.
func DefaultConfig() Config {
	return internalsim.DefaultConfig()
}

// New creates a simulated accelerator.
//
// Example:
//
//	acc, err := sim.New(sim.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	dev, err := dla.NewDriver(acc, dla.DefaultMemoryConfig())
func New(cfg Config) (*Accelerator, error) {
	return internalsim.New(cfg)
}
