// Package sim implements a software model of the DLA that sits behind the
// same register and SRAM map as the real block. It lets the driver and the
// layer orchestrator run unmodified on a development host.
package sim

import (
	"fmt"

	"github.com/born-ml/dla/internal/dla"
	"github.com/born-ml/dla/internal/mmio"
	"github.com/born-ml/dla/internal/parallel"
)

// Config controls the simulated accelerator.
type Config struct {
	Memory   dla.MemoryConfig
	Latency  int             // Status polls a layer takes to complete (min 1).
	Parallel parallel.Config // Worker split for the MAC engine.
}

// DefaultConfig returns a simulator with the Headsail memory map that
// completes each layer on the fourth poll.
func DefaultConfig() Config {
	return Config{
		Memory:   dla.DefaultMemoryConfig(),
		Latency:  4,
		Parallel: parallel.DefaultConfig(),
	}
}

// Accelerator is an mmio.Bus exposing the DLA register window and SRAM.
// Like the hardware it is not safe for concurrent use.
type Accelerator struct {
	cfg  Config
	bus  *mmio.Memory
	sram *mmio.Region

	pending int // Polls left before STATUS reports done, 0 when idle.
	polls   int
	jobs    int
	err     error
}

// Verify that Accelerator implements mmio.Bus.
var _ mmio.Bus = (*Accelerator)(nil)

// New creates a simulated accelerator.
func New(cfg Config) (*Accelerator, error) {
	if err := cfg.Memory.Validate(); err != nil {
		return nil, err
	}
	bus := mmio.NewMemory()
	if _, err := bus.Map(cfg.Memory.RegisterBase, dla.RegWindowSize); err != nil {
		return nil, fmt.Errorf("sim: register window: %w", err)
	}
	sram, err := bus.Map(cfg.Memory.MemoryBase, cfg.Memory.TotalSize())
	if err != nil {
		return nil, fmt.Errorf("sim: sram: %w", err)
	}
	return &Accelerator{cfg: cfg, bus: bus, sram: sram}, nil
}

// Polls returns how many times STATUS has been read.
func (a *Accelerator) Polls() int { return a.polls }

// Jobs returns how many layers have been executed.
func (a *Accelerator) Jobs() int { return a.jobs }

// Err returns the error of the last layer, if its configuration could not
// be executed. The hardware would produce garbage in that case; the
// simulator leaves the output bank untouched.
func (a *Accelerator) Err() error { return a.err }

// SRAM exposes the simulated bank memory.
func (a *Accelerator) SRAM() []byte { return a.sram.Data }

func (a *Accelerator) regAddr(off uintptr) uintptr { return a.cfg.Memory.RegisterBase + off }

func (a *Accelerator) field(f dla.Field) int {
	return int(mmio.ReadField(a.bus, a.regAddr(f.Reg), f.Shift, f.Width))
}

// Read8 implements mmio.Bus.
func (a *Accelerator) Read8(addr uintptr) uint8 { return a.bus.Read8(addr) }

// Write8 implements mmio.Bus.
func (a *Accelerator) Write8(addr uintptr, v uint8) { a.bus.Write8(addr, v) }

// Read16 implements mmio.Bus.
func (a *Accelerator) Read16(addr uintptr) uint16 { return a.bus.Read16(addr) }

// Write16 implements mmio.Bus.
func (a *Accelerator) Write16(addr uintptr, v uint16) { a.bus.Write16(addr, v) }

// Read32 implements mmio.Bus. Reading STATUS advances a running layer.
func (a *Accelerator) Read32(addr uintptr) uint32 {
	if addr == a.regAddr(dla.RegStatus) {
		a.polls++
		if a.pending > 0 {
			a.pending--
			if a.pending == 0 {
				a.bus.Write32(addr, dla.StatusDone)
			}
		}
	}
	return a.bus.Read32(addr)
}

// Write32 implements mmio.Bus. Writing CTRL acknowledges a finished layer or
// starts a new one once both ready flags are set.
func (a *Accelerator) Write32(addr uintptr, v uint32) {
	if addr != a.regAddr(dla.RegCtrl) {
		a.bus.Write32(addr, v)
		return
	}

	status := a.regAddr(dla.RegStatus)
	if v&dla.CtrlAck != 0 {
		a.bus.Write32(addr, 0)
		a.bus.Write32(status, 0)
		a.pending = 0
		return
	}

	a.bus.Write32(addr, v)
	ready := dla.CtrlKernelReady | dla.CtrlInputReady
	if v&ready == ready && a.bus.Read32(status) == 0 {
		a.start()
	}
}

func (a *Accelerator) start() {
	a.jobs++
	a.err = a.execute()
	a.pending = max(a.cfg.Latency, 1)
	a.bus.Write32(a.regAddr(dla.RegStatus), dla.StatusBusy)
}
