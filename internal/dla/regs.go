package dla

// Register offsets from MemoryConfig.RegisterBase. All registers are 32 bits.
const (
	RegCtrl       uintptr = 0x00
	RegStatus     uintptr = 0x04
	RegBanks      uintptr = 0x08
	RegInputSize  uintptr = 0x0C
	RegKernelSize uintptr = 0x10
	RegPadding    uintptr = 0x14
	RegStride     uintptr = 0x18
	RegMACClip    uintptr = 0x1C
	RegPPClip     uintptr = 0x20
	RegPPCtrl     uintptr = 0x24
	RegSimd       uintptr = 0x28
	RegBiasAddr   uintptr = 0x2C

	// RegWindowSize is the size of the register window in bytes.
	RegWindowSize = 0x30
)

// CTRL bits.
const (
	CtrlKernelReady uint32 = 1 << iota
	CtrlInputReady
	CtrlAck
)

// STATUS bits.
const (
	StatusDone uint32 = 1 << iota
	StatusBusy
)

// PP_CTRL bits.
const (
	PPEnable uint32 = 1 << iota
	PPReLU
	PPBias
)

// Field locates a bit-field inside a register.
type Field struct {
	Reg   uintptr
	Shift uint
	Width uint
}

// Max returns the largest value the field can hold.
func (f Field) Max() uint32 {
	return uint32(1)<<f.Width - 1
}

// Register bit-fields.
var (
	FieldInputBank  = Field{RegBanks, 0, 4}
	FieldKernelBank = Field{RegBanks, 4, 4}
	FieldOutputBank = Field{RegBanks, 8, 4}

	FieldInputWidth    = Field{RegInputSize, 0, 10}
	FieldInputHeight   = Field{RegInputSize, 10, 10}
	FieldInputChannels = Field{RegInputSize, 20, 12}

	FieldKernelWidth     = Field{RegKernelSize, 0, 8}
	FieldKernelHeight    = Field{RegKernelSize, 8, 8}
	FieldKernelCount     = Field{RegKernelSize, 16, 12}
	FieldKernelSChannels = Field{RegKernelSize, 28, 4}

	FieldPadX = Field{RegPadding, 0, 8}
	FieldPadY = Field{RegPadding, 8, 8}

	FieldStrideX = Field{RegStride, 0, 8}
	FieldStrideY = Field{RegStride, 8, 8}

	FieldMACClip = Field{RegMACClip, 0, 5}
	FieldPPClip  = Field{RegPPClip, 0, 5}
	FieldSimd    = Field{RegSimd, 0, 2}
)
