package dla

import (
	"encoding/binary"
	"fmt"

	"github.com/born-ml/dla/internal/mmio"
)

// State is the driver's view of where the accelerator is in the handshake.
type State int

// Driver states. Transitions:
//
//	Idle/Done --InitLayer--> Configured --both ready flags--> Running
//	Running --HandleHandshake()==true--> Done
const (
	StateIdle State = iota
	StateConfigured
	StateRunning
	StateDone
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Driver programs a DLA through its register window and moves tensors in and
// out of its SRAM banks.
type Driver struct {
	bus   mmio.Bus
	mem   MemoryConfig
	state State
	cfg   LayerConfig

	kernelReady bool
	inputReady  bool
}

// Verify that Driver implements Device.
var _ Device = (*Driver)(nil)

// NewDriver creates a driver for the accelerator mapped at mem.
func NewDriver(bus mmio.Bus, mem MemoryConfig) (*Driver, error) {
	if err := mem.Validate(); err != nil {
		return nil, err
	}
	return &Driver{bus: bus, mem: mem}, nil
}

// State returns the current handshake state.
func (d *Driver) State() State { return d.state }

// MemoryConfig returns the memory map the driver was created with.
func (d *Driver) MemoryConfig() MemoryConfig { return d.mem }

func (d *Driver) reg(off uintptr) uintptr { return d.mem.RegisterBase + off }

func (d *Driver) expect(op string, states ...State) error {
	for _, s := range states {
		if d.state == s {
			return nil
		}
	}
	return fmt.Errorf("%s: %w (state %s)", op, ErrState, d.state)
}

type fieldValue struct {
	f Field
	v int
}

func pack(values ...fieldValue) uint32 {
	var r uint32
	for _, fv := range values {
		r |= (uint32(fv.v) & fv.f.Max()) << fv.f.Shift //nolint:gosec // validated by LayerConfig.Validate
	}
	return r
}

// InitLayer validates cfg and writes it to the configuration registers.
// Every register is rewritten, so calling it twice with the same config is
// harmless.
func (d *Driver) InitLayer(cfg LayerConfig) error {
	if err := d.expect("init layer", StateIdle, StateConfigured, StateDone); err != nil {
		return err
	}
	if err := cfg.Validate(d.mem); err != nil {
		return err
	}

	d.bus.Write32(d.reg(RegCtrl), 0)
	d.bus.Write32(d.reg(RegBanks), pack(
		fieldValue{FieldInputBank, cfg.InputBank},
		fieldValue{FieldKernelBank, cfg.KernelBank},
		fieldValue{FieldOutputBank, cfg.OutputBank},
	))
	d.bus.Write32(d.reg(RegInputSize), pack(
		fieldValue{FieldInputWidth, cfg.InputSize.Width},
		fieldValue{FieldInputHeight, cfg.InputSize.Height},
		fieldValue{FieldInputChannels, cfg.InputSize.Channels},
	))
	d.bus.Write32(d.reg(RegKernelSize), pack(
		fieldValue{FieldKernelWidth, cfg.KernelSize.Width},
		fieldValue{FieldKernelHeight, cfg.KernelSize.Height},
		fieldValue{FieldKernelCount, cfg.KernelSize.Kernels},
		fieldValue{FieldKernelSChannels, cfg.KernelSize.SChannels},
	))
	d.bus.Write32(d.reg(RegPadding), pack(
		fieldValue{FieldPadX, cfg.Padding.X},
		fieldValue{FieldPadY, cfg.Padding.Y},
	))
	d.bus.Write32(d.reg(RegStride), pack(
		fieldValue{FieldStrideX, cfg.Stride.X},
		fieldValue{FieldStrideY, cfg.Stride.Y},
	))
	d.bus.Write32(d.reg(RegMACClip), cfg.MACClip)
	d.bus.Write32(d.reg(RegPPClip), cfg.PPClip)

	var pp uint32
	if cfg.PPEnabled {
		pp |= PPEnable
	}
	if cfg.ReLUEnabled {
		pp |= PPReLU
	}
	if cfg.BiasEnabled {
		pp |= PPBias
	}
	d.bus.Write32(d.reg(RegPPCtrl), pp)
	d.bus.Write32(d.reg(RegSimd), uint32(cfg.SimdMode)) //nolint:gosec // validated
	d.bus.Write32(d.reg(RegBiasAddr), cfg.BiasAddr)

	d.cfg = cfg
	d.kernelReady = false
	d.inputReady = false
	d.state = StateConfigured
	return nil
}

// regionStarts returns the byte offsets of every region of the current layer.
func (d *Driver) regionStarts() []int {
	starts := []int{
		d.cfg.InputBank * d.mem.BankSize,
		d.cfg.KernelBank * d.mem.BankSize,
		d.cfg.OutputBank * d.mem.BankSize,
	}
	if d.cfg.BiasEnabled {
		starts = append(starts, int(d.cfg.BiasAddr))
	}
	return starts
}

// capacity returns the bytes available from start up to the next region of
// the current layer or the end of SRAM.
func (d *Driver) capacity(start int) int {
	end := d.mem.TotalSize()
	for _, s := range d.regionStarts() {
		if s > start && s < end {
			end = s
		}
	}
	return end - start
}

func (d *Driver) checkWrite(region string, start, got, want int) error {
	capacity := d.capacity(start)
	if got != want || got > capacity {
		return &CapacityError{Region: region, Got: got, Want: want, Capacity: capacity}
	}
	return nil
}

// writeBytes stores buf at addr, one word at a time where possible.
func (d *Driver) writeBytes(addr uintptr, buf []byte) {
	i := 0
	for ; i+4 <= len(buf); i += 4 {
		d.bus.Write32(addr+uintptr(i), binary.LittleEndian.Uint32(buf[i:]))
	}
	for ; i < len(buf); i++ {
		d.bus.Write8(addr+uintptr(i), buf[i])
	}
}

func int8Bytes(buf []int8) []byte {
	out := make([]byte, len(buf))
	for i, v := range buf {
		out[i] = byte(v)
	}
	return out
}

// WriteInput copies the input feature map (HWC, int8) to the input bank.
func (d *Driver) WriteInput(buf []int8) error {
	if err := d.expect("write input", StateConfigured); err != nil {
		return err
	}
	start := d.cfg.InputBank * d.mem.BankSize
	if err := d.checkWrite("input", start, len(buf)*InputElemBytes, d.cfg.InputSize.Len()*InputElemBytes); err != nil {
		return err
	}
	d.writeBytes(d.mem.bankAddr(d.cfg.InputBank), int8Bytes(buf))
	return nil
}

// WriteKernel copies the kernel bank (HWKC, int8) to the kernel bank.
func (d *Driver) WriteKernel(buf []int8) error {
	if err := d.expect("write kernel", StateConfigured); err != nil {
		return err
	}
	want := d.cfg.kernelLen() * KernelElemBytes
	start := d.cfg.KernelBank * d.mem.BankSize
	if err := d.checkWrite("kernel", start, len(buf)*KernelElemBytes, want); err != nil {
		return err
	}
	d.writeBytes(d.mem.bankAddr(d.cfg.KernelBank), int8Bytes(buf))
	return nil
}

// WriteBias copies one int16 bias per kernel to the bias address.
func (d *Driver) WriteBias(buf []int16) error {
	if err := d.expect("write bias", StateConfigured); err != nil {
		return err
	}
	start := int(d.cfg.BiasAddr)
	if err := d.checkWrite("bias", start, len(buf)*BiasElemBytes, d.cfg.KernelSize.Kernels*BiasElemBytes); err != nil {
		return err
	}
	raw := make([]byte, len(buf)*BiasElemBytes)
	for i, v := range buf {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
	}
	d.writeBytes(d.mem.MemoryBase+uintptr(start), raw)
	return nil
}

func (d *Driver) setReady(op string, bit uint32, flag *bool, ready bool) error {
	if err := d.expect(op, StateConfigured, StateRunning); err != nil {
		return err
	}
	if ready {
		mmio.Mask(d.bus, d.reg(RegCtrl), bit)
	} else {
		mmio.Unmask(d.bus, d.reg(RegCtrl), bit)
	}
	*flag = ready
	if d.kernelReady && d.inputReady {
		d.state = StateRunning
	} else {
		d.state = StateConfigured
	}
	return nil
}

// KernelDataReady sets or clears the kernel-ready flag.
func (d *Driver) KernelDataReady(ready bool) error {
	return d.setReady("kernel data ready", CtrlKernelReady, &d.kernelReady, ready)
}

// InputDataReady sets or clears the input-ready flag.
func (d *Driver) InputDataReady(ready bool) error {
	return d.setReady("input data ready", CtrlInputReady, &d.inputReady, ready)
}

// HandleHandshake samples STATUS once. When the layer is done it
// acknowledges completion, which also drops both ready flags.
func (d *Driver) HandleHandshake() bool {
	if d.state != StateRunning {
		return false
	}
	if d.bus.Read32(d.reg(RegStatus))&StatusDone == 0 {
		return false
	}
	d.bus.Write32(d.reg(RegCtrl), CtrlAck)
	d.kernelReady = false
	d.inputReady = false
	d.state = StateDone
	return true
}

func (d *Driver) outputAddr(op string, n, elemBytes int) (uintptr, error) {
	if err := d.expect(op, StateDone); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &ConfigError{Field: "count", Details: fmt.Sprintf("negative element count %d", n)}
	}
	start := d.cfg.OutputBank * d.mem.BankSize
	if capacity := d.capacity(start); n*elemBytes > capacity {
		return 0, &CapacityError{Region: "output", Got: n * elemBytes, Capacity: capacity}
	}
	return d.mem.bankAddr(d.cfg.OutputBank), nil
}

// ReadOutputI8 reads n 8-bit output elements.
func (d *Driver) ReadOutputI8(n int) ([]int8, error) {
	addr, err := d.outputAddr("read output i8", n, 1)
	if err != nil {
		return nil, err
	}
	out := make([]int8, n)
	for i := range out {
		out[i] = int8(d.bus.Read8(addr + uintptr(i)))
	}
	return out, nil
}

// ReadOutputI16 reads n 16-bit output elements.
func (d *Driver) ReadOutputI16(n int) ([]int16, error) {
	addr, err := d.outputAddr("read output i16", n, 2)
	if err != nil {
		return nil, err
	}
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(d.bus.Read16(addr + uintptr(2*i)))
	}
	return out, nil
}

// ReadOutputI32 reads n 32-bit output elements.
func (d *Driver) ReadOutputI32(n int) ([]int32, error) {
	addr, err := d.outputAddr("read output i32", n, 4)
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(d.bus.Read32(addr + uintptr(4*i)))
	}
	return out, nil
}
